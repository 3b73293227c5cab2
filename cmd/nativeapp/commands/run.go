package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agiangrant/nativeapp"
	"github.com/agiangrant/nativeapp/engine/native"
	"github.com/agiangrant/nativeapp/engine/nop"
	"github.com/agiangrant/nativeapp/engine/recorder"
	"github.com/agiangrant/nativeapp/internal/script"
)

// Run implements the 'nativeapp run' command
func Run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", nativeapp.ConfigFile, "Path to nativeapp.toml")
	scriptPath := fs.String("script", "", "Input script to replay")
	frames := fs.Int("frames", -1, "Frames to draw (0 = until the script ends; default: config)")
	fps := fs.Int("fps", -1, "Frame rate (0 = unpaced; default: config)")
	layer := fs.String("layer", "", "CAMetalLayer address for the native engine (e.g. 0x1040)")
	view := fs.String("view", "", "UIView address for the native engine (e.g. 0x1040)")
	fs.Parse(args)

	config, err := nativeapp.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *frames >= 0 {
		config.Run.Frames = *frames
	}
	if *fps >= 0 {
		config.Run.FPS = *fps
	}

	log, err := config.Log.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	nativeapp.SetLogger(log)

	var sc *script.Script
	if *scriptPath != "" {
		if sc, err = script.Load(*scriptPath); err != nil {
			return err
		}
	}

	desc := nativeapp.ViewDescriptor{
		MaximumFrames: config.Engine.MaximumFrames,
		Revision:      nativeapp.Revision(config.Engine.Revision),
	}
	if desc.View, err = parseRef(*view); err != nil {
		return fmt.Errorf("invalid --view: %w", err)
	}
	if desc.Layer, err = parseRef(*layer); err != nil {
		return fmt.Errorf("invalid --layer: %w", err)
	}

	var rec recorder.Factory
	var factory nativeapp.EngineFactory
	switch config.Engine.Kind {
	case nativeapp.EngineNative:
		if factory, err = native.Open(config.Engine.LibPath); err != nil {
			return err
		}
	case nativeapp.EngineRecorder:
		factory = rec.EngineFactory()
	default:
		factory = nop.Factory()
	}

	app, err := nativeapp.Create(desc, nativeapp.WithEngineFactory(factory), nativeapp.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		app:    app,
		script: sc,
		fps:    config.Run.FPS,
		frames: config.Run.Frames,
		log:    log,
	}
	runErr := r.run(ctx)
	if err := app.Destroy(); err != nil && runErr == nil {
		runErr = err
	}

	printStats(os.Stdout, app.Stats())
	if last := rec.Last(); last != nil {
		fmt.Println("")
		fmt.Println("Engine log:")
		fmt.Print(last.Log())
	}
	return runErr
}

// runner drives one App with a frame clock and an optional input script.
type runner struct {
	app    *nativeapp.App
	script *script.Script
	fps    int
	frames int
	log    *zap.Logger
}

// run draws frames and replays the script concurrently. With frames == 0 the
// frame loop stops once the script has been replayed.
func (r *runner) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	scriptDone := make(chan struct{})

	g.Go(func() error {
		defer close(scriptDone)
		return r.play(ctx)
	})
	g.Go(func() error {
		return r.draw(ctx, scriptDone)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *runner) play(ctx context.Context) error {
	if r.script == nil {
		return nil
	}

	start := time.Now()
	for _, e := range r.script.Events {
		if wait := e.At() - time.Since(start); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := e.Apply(r.app); err != nil {
			return fmt.Errorf("script event at %dms: %w", e.AtMs, err)
		}
	}
	r.log.Debug("script finished", zap.Int("events", len(r.script.Events)))
	return nil
}

func (r *runner) draw(ctx context.Context, scriptDone <-chan struct{}) error {
	var tick <-chan time.Time
	if r.fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(r.fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; r.frames == 0 || n < r.frames; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if r.frames == 0 {
			select {
			case <-scriptDone:
				// One last frame so the final input is drawn
				return r.app.DrawFrame()
			default:
			}
		}

		if err := r.app.DrawFrame(); err != nil {
			return err
		}
	}
	return nil
}

func parseRef(s string) (nativeapp.NativeRef, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return nativeapp.NativeRef(v), nil
}

func printStats(w io.Writer, s nativeapp.Stats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run summary:")
	fmt.Fprintf(w, "  frames:     %d\n", s.Frames)
	fmt.Fprintf(w, "  touches:    %d\n", s.Touches)
	fmt.Fprintf(w, "  text bytes: %d\n", s.TextBytes)
	fmt.Fprintf(w, "  backspaces: %d\n", s.Backspaces)
}
