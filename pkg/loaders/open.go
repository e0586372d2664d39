package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// OpenScene resolves a scene reference: a built-in id, a discovered
// "file:<name>" id inside sceneDir, or a path to a scene file. Built-in
// scenes take backgroundIndex as their background refraction index when it
// is positive.
func OpenScene(ref, sceneDir string, backgroundIndex float64) (*scene.Scene, error) {
	if ref == "" {
		return nil, fmt.Errorf("no scene given")
	}

	if name, ok := strings.CutPrefix(ref, "file:"); ok {
		if strings.ContainsAny(name, `/\`) || name == ".." {
			return nil, fmt.Errorf("invalid scene name %q", name)
		}
		return LoadScene(filepath.Join(sceneDir, name+scene.SceneFileExt), backgroundIndex)
	}

	if strings.HasSuffix(strings.ToLower(ref), scene.SceneFileExt) {
		return LoadScene(ref, backgroundIndex)
	}

	s, err := scene.NewBuiltin(ref)
	if err != nil {
		return nil, err
	}
	if backgroundIndex > 0 {
		s.BackgroundIndex = backgroundIndex
	}
	return s, nil
}
