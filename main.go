package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

const sceneDir = "scenes"

// options holds the command line flags
type options struct {
	configPath   string
	builtin      string
	depth        int
	epsilon      float64
	bgIndex      float64
	workers      int
	tileSize     int
	out          string
	format       string
	preview      bool
	previewWidth int
	background   string
	quiet        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "raytracer [scene-file]",
		Short: "Whitted ray tracer for spheres and triangles",
		Long: "Renders a scene description file (or a built-in scene) with recursive\n" +
			"Whitted ray tracing: Phong shading, shadows, Fresnel reflection and\n" +
			"refraction through nested transparent objects.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML render configuration")
	flags.StringVarP(&opts.builtin, "builtin", "b", "", "Render a built-in scene instead of a file (see 'list')")
	flags.IntVarP(&opts.depth, "depth", "d", 4, "Recursion depth for reflection and transmission rays")
	flags.Float64Var(&opts.epsilon, "epsilon", 1e-3, "Bias applied to shadow, reflection and transmission rays")
	flags.Float64Var(&opts.bgIndex, "background-index", 1.0, "Refraction index of the space between objects")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Tiles rendered in parallel (0 = CPU count, 1 = sequential)")
	flags.IntVar(&opts.tileSize, "tile-size", 32, "Tile edge length in pixels")
	flags.StringVarP(&opts.out, "out", "o", "", "Output file (default: scene name with the format's extension)")
	flags.StringVarP(&opts.format, "format", "f", "ppm", "Output format: ppm or png")
	flags.BoolVarP(&opts.preview, "preview", "p", false, "Draw the image in the terminal when done")
	flags.IntVar(&opts.previewWidth, "preview-width", 80, "Terminal columns used by --preview")
	flags.StringVar(&opts.background, "background", "", "Override the background color (#rrggbb)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")

	cmd.AddCommand(newListCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in scenes and scene files in ./" + sceneDir,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := scene.ListAllScenes(sceneDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, group := range groups {
				fmt.Fprintf(out, "%s:\n", group.Name)
				for _, s := range group.Scenes {
					line := fmt.Sprintf("  %-24s %s", s.ID, s.DisplayName)
					if s.Description != "" {
						line += " - " + s.Description
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

// resolveConfig loads the config file, if any, and applies explicitly set flags on top
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Render.RecursionDepth = opts.depth
	}
	if flags.Changed("epsilon") {
		cfg.Render.Epsilon = opts.epsilon
	}
	if flags.Changed("background-index") {
		cfg.Render.BackgroundRefractionIndex = opts.bgIndex
	}
	if flags.Changed("workers") {
		cfg.Render.Workers = opts.workers
	}
	if flags.Changed("tile-size") {
		cfg.Render.TileSize = opts.tileSize
	}
	if flags.Changed("out") {
		cfg.Output.Path = opts.out
	}
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("preview") {
		cfg.Output.Preview = opts.preview
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createScene loads the scene named on the command line and returns it
// with the base name used for the default output file
func createScene(args []string, builtin string, backgroundIndex float64) (*scene.Scene, string, error) {
	switch {
	case len(args) == 1 && builtin != "":
		return nil, "", fmt.Errorf("give either a scene file or --builtin, not both")
	case len(args) == 1:
		s, err := loaders.LoadScene(args[0], backgroundIndex)
		if err != nil {
			return nil, "", err
		}
		return s, strings.TrimSuffix(args[0], filepath.Ext(args[0])), nil
	case builtin != "":
		s, err := loaders.OpenScene(builtin, sceneDir, backgroundIndex)
		if err != nil {
			return nil, "", err
		}
		name := strings.TrimPrefix(builtin, "file:")
		if strings.HasPrefix(builtin, "file:") {
			return s, filepath.Join(sceneDir, name), nil
		}
		return s, filepath.Join("output", name), nil
	default:
		return nil, "", fmt.Errorf("no scene given: pass a scene file or --builtin (see 'list')")
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	var logger core.Logger = renderer.NewDefaultLogger()
	if opts.quiet {
		logger = renderer.NopLogger{}
	}

	s, baseName, err := createScene(args, opts.builtin, cfg.Render.BackgroundRefractionIndex)
	if err != nil {
		return err
	}
	if opts.background != "" {
		bg, err := core.ParseHexColor(opts.background)
		if err != nil {
			return fmt.Errorf("invalid --background: %w", err)
		}
		s.Background = bg
	}

	raytracer, err := renderer.NewRaytracer(s,
		integrator.NewWhittedIntegrator(integrator.Config{
			MaxDepth: cfg.Render.RecursionDepth,
			Epsilon:  cfg.Render.Epsilon,
		}),
		renderer.Config{TileSize: cfg.Render.TileSize, NumWorkers: cfg.Render.Workers},
		logger)
	if err != nil {
		return err
	}

	fb, _, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}

	outPath := cfg.Output.Path
	if outPath == "" {
		outPath = baseName + "." + cfg.Output.Format
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}
	if err := fb.Save(outPath, cfg.Output.Format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", outPath)

	if cfg.Output.Preview {
		return fb.Preview(cmd.OutOrStdout(), opts.previewWidth)
	}
	return nil
}
