package scripting

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/command"
)

// Sketch describes a finished script run.
type Sketch struct {
	Ops       int
	Segments  int
	DrawingID string // set when saved to the gallery
	Posted    bool   // set when posted to the guestbook
}

// Runner executes sketch scripts against an App's surfaces. With a title
// the result is posted to the guestbook from the message canvas; without
// one it is saved to the gallery from the drawing canvas.
type Runner struct {
	app   *command.App
	log   *zap.Logger
	check ValidateInput
}

// NewRunner creates a runner for app.
func NewRunner(app *command.App, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{app: app, log: log}
}

// RunFile runs the Lua file at path.
func (r *Runner) RunFile(ctx context.Context, path, title string) (Sketch, error) {
	if err := r.check.ValidateScriptPath(path); err != nil {
		return Sketch{}, err
	}
	return r.run(ctx, title, func(vm *VM) error { return vm.LoadScript(path) })
}

// RunString runs Lua source held in memory.
func (r *Runner) RunString(ctx context.Context, name, src, title string) (Sketch, error) {
	return r.run(ctx, title, func(vm *VM) error { return vm.LoadString(name, src) })
}

func (r *Runner) run(ctx context.Context, title string, load func(*VM) error) (Sketch, error) {
	if err := r.check.ValidateTitle(title); err != nil {
		return Sketch{}, err
	}

	target := command.SurfaceDraw
	if title != "" {
		target = command.SurfaceMessage
	}
	surface, err := r.app.Surface(target)
	if err != nil {
		return Sketch{}, err
	}
	surface.PointerUp()
	surface.Clear()

	vm := NewVM(ctx, r.log)
	defer vm.Close()

	pen := NewPenAPI(surface)
	pen.Register(vm)

	if err := load(vm); err != nil {
		vm.LogError("load", err)
		return Sketch{}, err
	}
	if vm.HasHandler("draw") {
		b := surface.Bounds()
		if err := vm.CallHandler("draw", lua.LNumber(b.Dx()), lua.LNumber(b.Dy())); err != nil {
			vm.LogError("draw", err)
			return Sketch{}, err
		}
	}
	surface.PointerUp()

	out := Sketch{Ops: pen.Ops(), Segments: surface.Segments()}
	if title != "" {
		if _, err := r.app.SaveMessageDrawing(ctx, title); err != nil {
			return out, fmt.Errorf("post sketch: %w", err)
		}
		out.Posted = true
	} else {
		d, _, err := r.app.SaveDrawing(ctx)
		if err != nil {
			return out, fmt.Errorf("save sketch: %w", err)
		}
		out.DrawingID = d.ID
	}

	r.log.Info("sketch finished",
		zap.Int("ops", out.Ops),
		zap.Int("segments", out.Segments),
		zap.Bool("posted", out.Posted),
	)
	return out, nil
}
