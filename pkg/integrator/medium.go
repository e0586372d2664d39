package integrator

import (
	"slices"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// Phase records whether the last boundary crossing went into or out of an object
type Phase int

const (
	Entering Phase = iota
	Exiting
)

func (p Phase) String() string {
	if p == Entering {
		return "entering"
	}
	return "exiting"
}

// Medium is one transparent object a ray is nested inside
type Medium struct {
	ID              int
	RefractionIndex float64
}

// MediumStack is an immutable nesting record, innermost medium on top. Push
// and Pop return new stacks and never modify the receiver, so sibling
// recursive branches can share one.
type MediumStack struct {
	media []Medium
}

// NewMediumStack creates a stack holding media, outermost first
func NewMediumStack(media ...Medium) MediumStack {
	return MediumStack{media: slices.Clone(media)}
}

// Len returns the nesting depth
func (s MediumStack) Len() int {
	return len(s.media)
}

// Top returns the innermost medium
func (s MediumStack) Top() (Medium, bool) {
	if len(s.media) == 0 {
		return Medium{}, false
	}
	return s.media[len(s.media)-1], true
}

// Contains reports whether the object with the given id is on the stack
func (s MediumStack) Contains(id int) bool {
	return slices.ContainsFunc(s.media, func(m Medium) bool { return m.ID == id })
}

// Push returns a new stack with m on top
func (s MediumStack) Push(m Medium) MediumStack {
	// Clip forces append to copy, so the receiver's backing array is never shared for writing
	return MediumStack{media: append(slices.Clip(s.media), m)}
}

// Pop returns a new stack without the innermost medium, and that medium.
// Popping an empty stack returns it unchanged.
func (s MediumStack) Pop() (MediumStack, Medium, bool) {
	top, ok := s.Top()
	if !ok {
		return s, Medium{}, false
	}
	return MediumStack{media: slices.Clip(s.media[:len(s.media)-1])}, top, true
}

// IDs returns the object ids from outermost to innermost
func (s MediumStack) IDs() []int {
	ids := make([]int, len(s.media))
	for i, m := range s.media {
		ids[i] = m.ID
	}
	return ids
}

// MediumState is the nesting bookkeeping carried down one recursive ray
type MediumState struct {
	Phase Phase
	Stack MediumStack
}

// InitialMediumState is the state of a primary ray: outside every object
func InitialMediumState() MediumState {
	return MediumState{Phase: Exiting}
}

// Transition advances the state across a boundary of hit, coming from a
// surface of current (nil for primary rays). etaT is the transmission index in
// effect before the crossing. It returns the new state together with the
// incidence and transmission indices that apply at hit.
func (m MediumState) Transition(current, hit *geometry.ObjectInfo, etaT, backgroundIndex float64) (MediumState, float64, float64) {
	hitMedium := Medium{ID: hit.ID, RefractionIndex: hit.Material.RefractionIndex}

	switch {
	case m.Phase == Entering && current != nil && hit.ID == current.ID:
		// Leaving the far side of the object just entered
		stack, popped, ok := m.Stack.Pop()
		etaI := backgroundIndex
		if ok {
			etaI = popped.RefractionIndex
		}
		return MediumState{Phase: Exiting, Stack: stack}, etaI, topIndex(stack, backgroundIndex)

	case m.Stack.Len() == 0:
		// Re-entering from the background
		return MediumState{Phase: Entering, Stack: NewMediumStack(hitMedium)}, backgroundIndex, hitMedium.RefractionIndex

	case !m.Stack.Contains(hit.ID):
		return MediumState{Phase: Entering, Stack: m.Stack.Push(hitMedium)}, etaT, hitMedium.RefractionIndex

	default:
		// Hit an enclosing object from inside: leave the innermost medium
		stack, _, _ := m.Stack.Pop()
		return MediumState{Phase: Exiting, Stack: stack}, etaT, topIndex(stack, backgroundIndex)
	}
}

func topIndex(stack MediumStack, backgroundIndex float64) float64 {
	if top, ok := stack.Top(); ok {
		return top.RefractionIndex
	}
	return backgroundIndex
}
