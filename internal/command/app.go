// Package command holds the user-facing operations of the blog. An App
// validates input, mutates the model with write-through persistence and
// reports which screen regions went stale.
package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/view"
)

// Observer receives command and image measurements.
type Observer interface {
	ObserveCommand(command string, err error, duration time.Duration)
	ObserveImage(surface string, size int)
}

type nopObserver struct{}

func (nopObserver) ObserveCommand(string, error, time.Duration) {}
func (nopObserver) ObserveImage(string, int) {}

// SurfaceID names one of the two drawing surfaces.
type SurfaceID string

const (
	// SurfaceDraw is the standalone drawing canvas.
	SurfaceDraw SurfaceID = "draw"
	// SurfaceMessage is the guestbook composer canvas.
	SurfaceMessage SurfaceID = "message"
)

// Options configures an App. Zero fields get defaults.
type Options struct {
	Now         func() time.Time
	NewID       func() string
	Canvas      canvas.Options
	MaxDrawings int
	Observer    Observer
	Log         *zap.Logger
}

// Result tells the presentation layer what to refresh after a command.
type Result struct {
	Stale      []view.Region
	ClearTitle bool
	ClearForm  bool
}

func stale(regions ...view.Region) Result {
	return Result{Stale: regions}
}

// Has reports whether r is stale.
func (r Result) Has(region view.Region) bool {
	for _, s := range r.Stale {
		if s == region {
			return true
		}
	}
	return false
}

// App is the application context: the model plus the transient selection
// and drawing surfaces. It is not safe for concurrent use.
type App struct {
	model *blog.Model
	log   *zap.Logger
	obs   Observer
	now   func() time.Time
	newID func() string

	maxDrawings int

	activeArticle string
	activeView    view.Name

	drawing  *canvas.Surface
	composer *canvas.Surface
}

// New creates an App over model, starting on the home view.
func New(model *blog.Model, opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.MaxDrawings < 0 {
		return nil, fmt.Errorf("max drawings must not be negative")
	}

	drawing, err := canvas.New(opts.Canvas)
	if err != nil {
		return nil, fmt.Errorf("create drawing surface: %w", err)
	}
	composer, err := canvas.New(opts.Canvas)
	if err != nil {
		return nil, fmt.Errorf("create message surface: %w", err)
	}

	return &App{
		model:       model,
		log:         opts.Log,
		obs:         opts.Observer,
		now:         opts.Now,
		newID:       opts.NewID,
		maxDrawings: opts.MaxDrawings,
		activeView:  view.Home,
		drawing:     drawing,
		composer:    composer,
	}, nil
}

func (a *App) timestamp() time.Time {
	return a.now().UTC().Truncate(time.Millisecond)
}

func (a *App) observe(command string, start time.Time, err *error) {
	a.obs.ObserveCommand(command, *err, time.Since(start))
}

// Surface returns the drawing surface named id.
func (a *App) Surface(id SurfaceID) (*canvas.Surface, error) {
	switch id {
	case SurfaceDraw:
		return a.drawing, nil
	case SurfaceMessage:
		return a.composer, nil
	default:
		return nil, fmt.Errorf("unknown surface %q", id)
	}
}

// ActiveArticleID returns the open article, or "" when none is open.
func (a *App) ActiveArticleID() string { return a.activeArticle }

// ActiveView returns the current top-level view.
func (a *App) ActiveView() view.Name { return a.activeView }

// State snapshots the model and selection for the view builders.
func (a *App) State() view.State {
	return view.StateFrom(a.model.Snapshot(), a.activeArticle, a.activeView, a.now())
}

// Screen builds the current screen.
func (a *App) Screen() view.Screen {
	return view.Build(a.State())
}
