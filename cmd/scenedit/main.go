// Package main is the entry point for the scenedit editor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spf13/cobra"

	"github.com/dshills/scenedit/internal/app"
	"github.com/dshills/scenedit/internal/config"
	"github.com/dshills/scenedit/internal/frontend"
	"github.com/dshills/scenedit/internal/gpu"
	"github.com/dshills/scenedit/internal/gpu/wgpustate"
	"github.com/dshills/scenedit/internal/renderpass"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scenedit",
		Short:         "Scene editor with a terminal viewport",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to configuration file (default: user config dir)")
	root.AddCommand(newRunCmd(), newPassesCmd(), newVersionCmd())
	return root
}

// loadConfig loads the --config file, or the user config file when it
// exists. It returns the path that was read, "" for defaults only.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if p := config.DefaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

type runFlags struct {
	headless bool
	frames   int
	fps      int
	watch    bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEditor(cmd, f)
		},
	}
	cmd.Flags().BoolVar(&f.headless, "headless", false, "render off screen without a terminal")
	cmd.Flags().IntVar(&f.frames, "frames", 0, "stop after this many frames (headless default 1)")
	cmd.Flags().IntVar(&f.fps, "fps", 30, "continuous redraw rate, 0 redraws only on input")
	cmd.Flags().BoolVar(&f.watch, "watch", true, "reload the configuration file when it changes")
	return cmd
}

func runEditor(cmd *cobra.Command, f runFlags) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var fe frontend.Frontend
	if f.headless {
		fe = frontend.NewHeadless(cfg.Render.Width, cfg.Render.Height).Hold()
		if f.frames <= 0 {
			f.frames = 1
		}
	} else {
		term, err := frontend.NewTerminal()
		if err != nil {
			return fmt.Errorf("create terminal: %w", err)
		}
		fe = term
	}

	var interval time.Duration
	if f.fps > 0 {
		interval = time.Second / time.Duration(f.fps)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	editor, err := app.New(ctx, app.Options{
		Config:        cfg,
		ConfigPath:    path,
		WatchConfig:   f.watch && path != "",
		Frontend:      fe,
		FrameInterval: interval,
		MaxFrames:     f.frames,
	})
	if err != nil {
		return err
	}

	err = editor.Run(ctx)
	closeErr := editor.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	if f.headless {
		snap := editor.Metrics().Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "%d frames, %.1f fps average, %d captures\n",
			snap.FrameCount, snap.AvgFPS(), snap.Captures)
	}
	return nil
}

func newPassesCmd() *cobra.Command {
	var reverse, webgpu bool
	cmd := &cobra.Command{
		Use:   "passes",
		Short: "Print the render pass catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("reverse-depth") {
				cfg, _, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				reverse = cfg.Render.ReverseDepth
			}
			return printPasses(cmd.OutOrStdout(), reverse, webgpu)
		},
	}
	cmd.Flags().BoolVar(&reverse, "reverse-depth", false, "use the reversed depth convention")
	cmd.Flags().BoolVar(&webgpu, "webgpu", false, "drive every pass through the WebGPU state tracker")
	return cmd
}

func printPasses(w io.Writer, reverse, webgpu bool) error {
	depth := renderpass.DepthConvention{Reverse: reverse}
	catalog := renderpass.NewCatalog(depth, renderpass.DefaultShaders())
	fmt.Fprintf(w, "depth: %s, clear %g\n\n", depth, depth.ClearValue())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHADER\tPRIMITIVE\tCULL\tDEPTH\tSTENCIL\tBLEND")
	for _, name := range catalog.Names() {
		rp := catalog.MustGet(name)
		p := rp.Pipeline

		depthCol := "off"
		if ds := p.DepthStencil; ds.DepthTest {
			depthCol = ds.DepthCompare.String()
			if ds.DepthWrite {
				depthCol += "+write"
			}
		}
		stencilCol := "off"
		if ds := p.DepthStencil; ds.StencilTest {
			stencilCol = fmt.Sprintf("%s ref=%d", ds.Front.Compare, ds.Front.Reference)
		}
		blendCol := "off"
		if cb := p.ColorBlend; cb.Enabled {
			blendCol = fmt.Sprintf("%s/%s", cb.Color.Src, cb.Color.Dst)
			if cb.Constant[3] != 0 {
				blendCol += fmt.Sprintf(" a=%g", cb.Constant[3])
			}
		} else if p.ColorBlend.WriteMask == 0 {
			blendCol = "no color"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name, rp.Shader, p.Rasterization.Primitive, p.Rasterization.Cull, depthCol, stencilCol, blendCol)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if webgpu {
		return printWebGPU(w, catalog)
	}
	return nil
}

// encoderLog records the dynamic state a wgpustate.Tracker sets for one
// pass.
type encoderLog struct {
	ref      uint32
	constant wgpu.Color
	ranges   []string
}

func (e *encoderLog) SetStencilReference(ref uint32) { e.ref = ref }
func (e *encoderLog) SetBlendConstant(c *wgpu.Color) { e.constant = *c }
func (e *encoderLog) SetViewport(_, _, _, _, minDepth, maxDepth float32) {
	e.ranges = append(e.ranges, fmt.Sprintf("[%g,%g]", minDepth, maxDepth))
}

// printWebGPU drives every pass through a WebGPU state tracker and
// prints the dynamic state it sets.
func printWebGPU(w io.Writer, catalog *renderpass.Catalog) error {
	enc := &encoderLog{}
	draws := 0
	tracker := wgpustate.NewTracker(enc, wgpustate.DefaultFormats(), 1, 1, func(string, wgpustate.State, gpu.DrawCall) {
		draws++
	})

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PASS\tSTENCIL REF\tBLEND CONSTANT\tDEPTH RANGE")
	for _, name := range catalog.Names() {
		*enc = encoderLog{}
		d := renderpass.Draw(catalog.MustGet(name), nil)
		if d.Begin != nil {
			d.Begin(tracker)
		}
		tracker.Execute(d)
		if err := tracker.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		tracker.Draw(gpu.DrawCall{Mesh: name})
		if d.End != nil {
			d.End(tracker)
		}

		ranges := "-"
		if len(enc.ranges) > 0 {
			ranges = strings.Join(enc.ranges, " ")
		}
		fmt.Fprintf(tw, "%s\t%d\t%g\t%s\n", name, enc.ref, enc.constant.A, ranges)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d passes translate to WebGPU state, %d pipelines, %d draws\n",
		catalog.Len(), tracker.Cached(), draws)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scenedit %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		},
	}
}
