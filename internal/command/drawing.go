package command

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/view"
)

// SaveDrawing stores the standalone canvas as a new drawing. The canvas is
// left as it is. When a retention limit is set, the oldest drawings beyond
// it are dropped; a failure to drop them is logged and does not undo the
// save.
func (a *App) SaveDrawing(ctx context.Context) (d blog.Drawing, res Result, err error) {
	defer a.observe("save_drawing", time.Now(), &err)

	image, err := a.drawing.ExportImage()
	if err != nil {
		return blog.Drawing{}, Result{}, err
	}
	a.obs.ObserveImage(string(SurfaceDraw), len(image))

	d = blog.Drawing{ID: a.newID(), Image: image, CreatedAt: a.timestamp()}
	if err := a.model.AppendDrawing(ctx, d); err != nil {
		return blog.Drawing{}, Result{}, err
	}
	a.log.Info("drawing saved", zap.String("drawing_id", d.ID), zap.Int("bytes", len(image)))

	if a.maxDrawings > 0 {
		for len(a.model.Drawings()) > a.maxDrawings {
			old, ok, shiftErr := a.model.ShiftDrawing(ctx)
			if shiftErr != nil {
				a.log.Warn("drawing retention failed",
					zap.String("drawing_id", d.ID), zap.Int("max_drawings", a.maxDrawings), zap.Error(shiftErr))
				break
			}
			if !ok {
				break
			}
			a.log.Info("drawing dropped by retention", zap.String("drawing_id", old.ID))
		}
	}

	return d, stale(view.RegionGallery), nil
}

// SaveMessageDrawing posts the composer canvas to the guestbook under
// title. On success the composer canvas is cleared and the title field
// should be emptied.
func (a *App) SaveMessageDrawing(ctx context.Context, title string) (res Result, err error) {
	defer a.observe("save_message_drawing", time.Now(), &err)

	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, blog.ErrTitleRequired
	}

	image, err := a.composer.ExportImage()
	if err != nil {
		return Result{}, err
	}
	a.obs.ObserveImage(string(SurfaceMessage), len(image))

	msg := blog.NewDrawingMessage(a.newID(), a.timestamp(), title, image)
	if err := a.model.PrependMessage(ctx, msg); err != nil {
		return Result{}, err
	}
	a.composer.Clear()

	a.log.Info("drawing message added", zap.String("message_id", msg.ID), zap.Int("bytes", len(image)))
	res = stale(view.RegionMessages, view.RegionMessageCanvas)
	res.ClearTitle = true
	return res, nil
}
