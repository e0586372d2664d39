package loaders

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// requiredCommands must each appear at least once in a scene file
var requiredCommands = []string{"eye", "viewdir", "updir", "hfov", "imsize", "bkgcolor"}

// ParseOptions controls scene parsing
type ParseOptions struct {
	// BaseDir resolves relative texture and mesh paths
	BaseDir string
	// BackgroundIndex is used unless bkgcolor supplies its own index
	BackgroundIndex float64
}

// SceneParser holds the state accumulated while reading a scene file
type SceneParser struct {
	opts     ParseOptions
	builder  *scene.Builder
	viewport scene.Viewport
	seen     map[string]bool

	material    material.Material
	hasMaterial bool
	texture     material.Texture
	textures    map[string]material.Texture

	vertices  []core.Vec3
	normals   []core.Vec3
	texCoords []core.Vec2
}

// NewSceneParser creates a parser with no material selected
func NewSceneParser(opts ParseOptions) *SceneParser {
	if opts.BackgroundIndex == 0 {
		opts.BackgroundIndex = 1.0
	}
	return &SceneParser{
		opts:     opts,
		builder:  scene.NewBuilder().SetBackgroundIndex(opts.BackgroundIndex),
		seen:     make(map[string]bool),
		textures: make(map[string]material.Texture),
	}
}

// ParseScene parses a scene description from an io.Reader
func ParseScene(reader io.Reader, opts ParseOptions) (*scene.Scene, error) {
	parser := NewSceneParser(opts)

	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return parser.finalize()
}

// LoadScene loads and parses a scene file. Relative paths inside it resolve
// against the file's directory.
func LoadScene(filename string, backgroundIndex float64) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	return ParseScene(file, ParseOptions{
		BaseDir:         filepath.Dir(filename),
		BackgroundIndex: backgroundIndex,
	})
}

func (p *SceneParser) processLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	keyword, args := fields[0], fields[1:]
	if err := p.routeCommand(keyword, args); err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	p.seen[keyword] = true
	return nil
}

func (p *SceneParser) routeCommand(keyword string, args []string) error {
	switch keyword {
	case "eye":
		v, err := parseVec3(args)
		p.viewport.Eye = v
		return err
	case "viewdir":
		v, err := parseNonZeroVec3(args)
		p.viewport.ViewDir = v
		return err
	case "updir":
		v, err := parseNonZeroVec3(args)
		p.viewport.UpDir = v
		return err
	case "hfov":
		return p.parseHFov(args)
	case "imsize":
		return p.parseImageSize(args)
	case "bkgcolor":
		return p.parseBackground(args)
	case "mtlcolor":
		return p.parseMaterial(args)
	case "texture":
		return p.parseTexture(args)
	case "light":
		return p.parseLight(args)
	case "sphere":
		return p.parseSphere(args)
	case "v":
		v, err := parseVec3(args)
		if err == nil {
			p.vertices = append(p.vertices, v)
		}
		return err
	case "vn":
		v, err := parseNonZeroVec3(args)
		if err == nil {
			p.normals = append(p.normals, v.Normalize())
		}
		return err
	case "vt":
		floats, err := parseFloats(args, 2)
		if err == nil {
			p.texCoords = append(p.texCoords, core.NewVec2(floats[0], floats[1]))
		}
		return err
	case "f":
		return p.parseFace(args)
	case "mesh":
		return p.parseMesh(args)
	default:
		return fmt.Errorf("unknown command")
	}
}

func (p *SceneParser) finalize() (*scene.Scene, error) {
	var missing []string
	for _, cmd := range requiredCommands {
		if !p.seen[cmd] {
			missing = append(missing, cmd)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCommand, strings.Join(missing, ", "))
	}

	if p.viewport.ViewDir.Normalize().Cross(p.viewport.UpDir.Normalize()).Length() < 1e-9 {
		return nil, fmt.Errorf("viewdir and updir must not be parallel")
	}

	return p.builder.SetViewport(p.viewport).Build(), nil
}

func (p *SceneParser) parseHFov(args []string) error {
	floats, err := parseFloats(args, 1)
	if err != nil {
		return err
	}
	if floats[0] <= 0 || floats[0] >= 180 {
		return fmt.Errorf("field of view %v must be in (0, 180)", floats[0])
	}
	p.viewport.HFov = floats[0]
	return nil
}

func (p *SceneParser) parseImageSize(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected 2 values, got %d", len(args))
	}
	var size [2]int
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid integer %q", arg)
		}
		if n < 2 {
			return fmt.Errorf("image dimension %d must be at least 2", n)
		}
		size[i] = n
	}
	p.viewport.Width, p.viewport.Height = size[0], size[1]
	return nil
}

// parseBackground reads "r g b [eta]"
func (p *SceneParser) parseBackground(args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("expected 3 or 4 values, got %d", len(args))
	}
	floats, err := parseFloats(args, len(args))
	if err != nil {
		return err
	}
	color := core.NewColor(floats[0], floats[1], floats[2])

	eta := p.opts.BackgroundIndex
	if len(floats) == 4 {
		if floats[3] <= 0 {
			return fmt.Errorf("refraction index %v must be positive", floats[3])
		}
		eta = floats[3]
	}
	p.builder.SetBackground(color, eta)
	return nil
}

// parseMaterial reads "Odr Odg Odb Osr Osg Osb ka kd ks n [opacity eta]"
func (p *SceneParser) parseMaterial(args []string) error {
	if len(args) != 10 && len(args) != 12 {
		return fmt.Errorf("expected 10 or 12 values, got %d", len(args))
	}
	floats, err := parseFloats(args, len(args))
	if err != nil {
		return err
	}

	if floats[9] <= 0 {
		return fmt.Errorf("specular exponent %v must be positive", floats[9])
	}
	mat := material.NewPhong(
		core.NewColor(floats[0], floats[1], floats[2]),
		core.NewColor(floats[3], floats[4], floats[5]),
		floats[6], floats[7], floats[8], floats[9],
	)

	if len(floats) == 12 {
		opacity, eta := floats[10], floats[11]
		if opacity < 0 || opacity > 1 {
			return fmt.Errorf("opacity %v must be in [0, 1]", opacity)
		}
		if eta <= 0 {
			return fmt.Errorf("refraction index %v must be positive", eta)
		}
		mat = mat.WithTransparency(opacity, eta)
	}

	p.material = mat
	p.hasMaterial = true
	p.texture = nil
	return nil
}

func (p *SceneParser) parseTexture(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected a file name")
	}
	path := p.resolve(args[0])

	if tex, ok := p.textures[path]; ok {
		p.texture = tex
		return nil
	}
	tex, err := LoadTexture(path)
	if err != nil {
		return err
	}
	p.textures[path] = tex
	p.texture = tex
	return nil
}

// parseLight reads "x y z w r g b"
func (p *SceneParser) parseLight(args []string) error {
	floats, err := parseFloats(args, 7)
	if err != nil {
		return err
	}
	v := core.NewVec3(floats[0], floats[1], floats[2])
	color := core.NewColor(floats[4], floats[5], floats[6])

	if floats[3] == 0 {
		if v.Length() == 0 {
			return fmt.Errorf("directional light needs a non-zero direction")
		}
		p.builder.AddLight(lights.NewDirectional(v, color))
	} else {
		p.builder.AddLight(lights.NewPositional(v, color))
	}
	return nil
}

func (p *SceneParser) parseSphere(args []string) error {
	if !p.hasMaterial {
		return fmt.Errorf("no mtlcolor declared before object")
	}
	floats, err := parseFloats(args, 4)
	if err != nil {
		return err
	}
	if floats[3] <= 0 {
		return fmt.Errorf("radius %v must be positive", floats[3])
	}
	p.builder.AddSphere(core.NewVec3(floats[0], floats[1], floats[2]), floats[3], p.material, p.texture)
	return nil
}

// faceVertex is one "v", "v/t", "v//n" or "v/t/n" reference, zero-based,
// with -1 for an absent index
type faceVertex struct {
	v, t, n int
}

func (p *SceneParser) parseFace(args []string) error {
	if !p.hasMaterial {
		return fmt.Errorf("no mtlcolor declared before object")
	}
	if len(args) != 3 {
		return fmt.Errorf("expected 3 vertices, got %d", len(args))
	}

	var refs [3]faceVertex
	for i, arg := range args {
		ref, err := p.parseFaceVertex(arg)
		if err != nil {
			return err
		}
		refs[i] = ref
	}

	tri := p.builder.AddTriangle(
		p.vertices[refs[0].v], p.vertices[refs[1].v], p.vertices[refs[2].v],
		p.material, p.texture,
	)
	if refs[0].n >= 0 && refs[1].n >= 0 && refs[2].n >= 0 {
		tri.SetVertexNormals(p.normals[refs[0].n], p.normals[refs[1].n], p.normals[refs[2].n])
	}
	if refs[0].t >= 0 && refs[1].t >= 0 && refs[2].t >= 0 {
		tri.SetTexCoords(p.texCoords[refs[0].t], p.texCoords[refs[1].t], p.texCoords[refs[2].t])
	}
	return nil
}

func (p *SceneParser) parseFaceVertex(arg string) (faceVertex, error) {
	parts := strings.Split(arg, "/")
	if len(parts) > 3 {
		return faceVertex{}, fmt.Errorf("invalid face vertex %q", arg)
	}

	ref := faceVertex{v: -1, t: -1, n: -1}
	counts := [3]int{len(p.vertices), len(p.texCoords), len(p.normals)}
	targets := [3]*int{&ref.v, &ref.t, &ref.n}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return faceVertex{}, fmt.Errorf("invalid face vertex %q", arg)
			}
			continue
		}
		index, err := strconv.Atoi(part)
		if err != nil {
			return faceVertex{}, fmt.Errorf("invalid index %q in %q", part, arg)
		}
		if index < 1 || index > counts[i] {
			return faceVertex{}, fmt.Errorf("index %d in %q out of range [1, %d]", index, arg, counts[i])
		}
		*targets[i] = index - 1
	}
	return ref, nil
}

func (p *SceneParser) parseMesh(args []string) error {
	if !p.hasMaterial {
		return fmt.Errorf("no mtlcolor declared before object")
	}
	if len(args) != 1 {
		return fmt.Errorf("expected a file name")
	}

	meshes, err := LoadMeshes(p.resolve(args[0]))
	if err != nil {
		return err
	}
	for _, mesh := range meshes {
		if _, err := p.builder.AddMesh(mesh, p.material, p.texture); err != nil {
			return err
		}
	}
	return nil
}

func (p *SceneParser) resolve(path string) string {
	if filepath.IsAbs(path) || p.opts.BaseDir == "" {
		return path
	}
	return filepath.Join(p.opts.BaseDir, path)
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}
	values := make([]float64, n)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		values[i] = v
	}
	return values, nil
}

func parseVec3(args []string) (core.Vec3, error) {
	floats, err := parseFloats(args, 3)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(floats[0], floats[1], floats[2]), nil
}

func parseNonZeroVec3(args []string) (core.Vec3, error) {
	v, err := parseVec3(args)
	if err == nil && v.Length() == 0 {
		return core.Vec3{}, fmt.Errorf("vector must be non-zero")
	}
	return v, err
}
