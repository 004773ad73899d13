package command

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/store"
	"github.com/fishblog/fishblog/internal/view"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// failingStore fails every write when fail is set. With failKey set it
// lets passes writes to that key through and fails the rest.
type failingStore struct {
	store.Store
	fail    bool
	failKey string
	passes  int
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	if f.failKey != "" && key == f.failKey {
		if f.passes == 0 {
			return errors.New("disk full")
		}
		f.passes--
	}
	return f.Store.Set(ctx, key, value)
}

type recordingObserver struct {
	commands map[string]error
	images   map[string]int
}

func (r *recordingObserver) ObserveCommand(command string, err error, _ time.Duration) {
	r.commands[command] = err
}

func (r *recordingObserver) ObserveImage(surface string, size int) {
	r.images[surface] = size
}

type fixture struct {
	app   *App
	model *blog.Model
	store *failingStore
	obs   *recordingObserver
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	ctx := context.Background()
	fs := &failingStore{Store: store.NewMemory()}
	model := blog.NewModel(fs, nil)
	model.LoadAll(ctx)

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	_, err := model.SeedIfEmpty(ctx, t0, ids)
	require.NoError(t, err)

	obs := &recordingObserver{commands: map[string]error{}, images: map[string]int{}}
	opts.Now = func() time.Time { return t0.Add(90 * time.Minute) }
	opts.NewID = ids
	opts.Observer = obs
	if opts.Canvas.Width == 0 {
		opts.Canvas = canvas.Options{Width: 40, Height: 30}
	}

	app, err := New(model, opts)
	require.NoError(t, err)
	return fixture{app: app, model: model, store: fs, obs: obs}
}

func scribble(t *testing.T, s *canvas.Surface) {
	t.Helper()
	require.NoError(t, s.PointerDown(canvas.Point{X: 5, Y: 5}, canvas.Point{}))
	_, err := s.PointerMove(canvas.Point{X: 30, Y: 20}, canvas.Point{})
	require.NoError(t, err)
	s.PointerUp()
}

func TestOpenArticle_CountsEveryOpen(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d opens", n), func(t *testing.T) {
			f := newFixture(t, Options{})
			for range n {
				res, err := f.app.OpenArticle(ctx, "id-1")
				require.NoError(t, err)
				assert.True(t, res.Has(view.RegionArticleDetail))
			}
			a, _ := f.model.Article("id-1")
			assert.Equal(t, n, a.Views)
		})
	}
}

func TestOpenArticle_UnknownIsNoop(t *testing.T) {
	f := newFixture(t, Options{})
	res, err := f.app.OpenArticle(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, res.Stale)
	assert.Empty(t, f.app.ActiveArticleID())
}

func TestToggleLike_RoundTripRestoresState(t *testing.T) {
	ctx := context.Background()
	for _, preLiked := range []bool{false, true} {
		t.Run(fmt.Sprintf("liked=%v", preLiked), func(t *testing.T) {
			f := newFixture(t, Options{})
			_, err := f.app.OpenArticle(ctx, "id-2")
			require.NoError(t, err)
			if preLiked {
				_, err := f.app.ToggleLike(ctx)
				require.NoError(t, err)
			}

			before, _ := f.model.Article("id-2")
			beforeLiked := f.model.Likes().Has("id-2")

			_, err = f.app.ToggleLike(ctx)
			require.NoError(t, err)
			mid, _ := f.model.Article("id-2")
			assert.Equal(t, !beforeLiked, f.model.Likes().Has("id-2"))
			assert.Equal(t, 1, abs(mid.Likes-before.Likes))

			_, err = f.app.ToggleLike(ctx)
			require.NoError(t, err)
			after, _ := f.model.Article("id-2")
			assert.Equal(t, before.Likes, after.Likes)
			assert.Equal(t, beforeLiked, f.model.Likes().Has("id-2"))
		})
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func TestToggleLike_NoActiveArticle(t *testing.T) {
	f := newFixture(t, Options{})
	res, err := f.app.ToggleLike(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Stale)
	assert.Zero(t, f.model.Likes().Len())
}

func TestToggleLike_DeletedActiveArticle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	_, err := f.app.OpenArticle(ctx, "id-1")
	require.NoError(t, err)
	_, err = f.model.DeleteArticle(ctx, "id-1")
	require.NoError(t, err)

	res, err := f.app.ToggleLike(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Stale)
	assert.Zero(t, f.model.Likes().Len())
}

func TestSubmitComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	res, err := f.app.SubmitComment(ctx, "bob", "hi")
	require.NoError(t, err)
	assert.Empty(t, res.Stale, "no open article")
	assert.Empty(t, f.model.Comments())

	_, err = f.app.OpenArticle(ctx, "id-1")
	require.NoError(t, err)

	_, err = f.app.SubmitComment(ctx, "   ", "hi")
	assert.ErrorIs(t, err, blog.ErrNameRequired)
	_, err = f.app.SubmitComment(ctx, "bob", "\t")
	assert.ErrorIs(t, err, blog.ErrContentRequired)
	assert.ErrorIs(t, err, blog.ErrValidation)
	assert.Empty(t, f.model.Comments())

	res, err = f.app.SubmitComment(ctx, "  bob ", " nice post ")
	require.NoError(t, err)
	assert.True(t, res.ClearForm)
	for _, r := range []view.Region{view.RegionArticleDetail, view.RegionComments, view.RegionArticleList} {
		assert.True(t, res.Has(r), r)
	}

	comments := f.model.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author)
	assert.Equal(t, "nice post", comments[0].Content)
	assert.Equal(t, "id-1", comments[0].ArticleID)
	assert.Equal(t, t0.Add(90*time.Minute), comments[0].CreatedAt)
}

func TestSubmitMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	_, err := f.app.SubmitMessage(ctx, "", "hi")
	assert.ErrorIs(t, err, blog.ErrNameRequired)
	_, err = f.app.SubmitMessage(ctx, "bob", "")
	assert.ErrorIs(t, err, blog.ErrContentRequired)
	assert.NotErrorIs(t, err, blog.ErrNameRequired)
	_, err = f.app.SubmitMessage(ctx, "", "")
	assert.ErrorIs(t, err, blog.ErrNameRequired, "name is checked first")
	assert.Empty(t, f.model.Messages())

	_, err = f.app.SubmitMessage(ctx, "ann", "first")
	require.NoError(t, err)
	_, err = f.app.SubmitMessage(ctx, "bob", "hi")
	require.NoError(t, err)

	msgs := f.model.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "bob", msgs[0].Text.Name)
	assert.Equal(t, "hi", msgs[0].Text.Content)
	assert.NoError(t, f.obs.commands["submit_message"])
}

func TestDeleteArticle_KeepsComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	_, err := f.app.OpenArticle(ctx, "id-1")
	require.NoError(t, err)
	_, err = f.app.SubmitComment(ctx, "bob", "hi")
	require.NoError(t, err)

	res, err := f.app.DeleteArticle(ctx, "id-1")
	require.NoError(t, err)
	assert.True(t, res.Has(view.RegionArticleDetail))
	assert.Empty(t, f.app.ActiveArticleID())

	for _, item := range view.BuildArticleList(f.app.State()).Items {
		assert.NotEqual(t, "id-1", item.ID)
	}

	raw, found, err := f.store.Get(ctx, blog.KeyComments)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), `"articleId":"id-1"`)
}

func TestSaveDrawing_DoesNotClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	surface, err := f.app.Surface(SurfaceDraw)
	require.NoError(t, err)
	scribble(t, surface)
	before, err := surface.ExportImage()
	require.NoError(t, err)

	d, res, err := f.app.SaveDrawing(ctx)
	require.NoError(t, err)
	assert.True(t, res.Has(view.RegionGallery))
	assert.Equal(t, before, d.Image)

	after, err := surface.ExportImage()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, surface.Segments())

	got, ok := f.app.DrawingByID(d.ID)
	require.True(t, ok)
	assert.Equal(t, d, got)
	assert.Equal(t, len(d.Image), f.obs.images["draw"])
}

func TestSaveDrawing_Retention(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{MaxDrawings: 2})

	var ids []string
	for range 3 {
		d, _, err := f.app.SaveDrawing(ctx)
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	drawings := f.model.Drawings()
	require.Len(t, drawings, 2)
	assert.Equal(t, ids[1], drawings[0].ID)
	assert.Equal(t, ids[2], drawings[1].ID)
}

func TestSaveDrawing_RetentionFailureKeepsSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{MaxDrawings: 1})

	first, _, err := f.app.SaveDrawing(ctx)
	require.NoError(t, err)

	f.store.failKey, f.store.passes = blog.KeyDrawings, 1
	second, res, err := f.app.SaveDrawing(ctx)
	require.NoError(t, err)
	assert.True(t, res.Has(view.RegionGallery))
	assert.NoError(t, f.obs.commands["save_drawing"])

	drawings := f.model.Drawings()
	require.Len(t, drawings, 2)
	assert.Equal(t, first.ID, drawings[0].ID)
	assert.Equal(t, second.ID, drawings[1].ID)

	raw, ok, err := f.store.Store.Get(ctx, blog.KeyDrawings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), second.ID)
}

func TestSaveMessageDrawing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	composer, err := f.app.Surface(SurfaceMessage)
	require.NoError(t, err)
	scribble(t, composer)

	_, err = f.app.SaveMessageDrawing(ctx, "   ")
	assert.ErrorIs(t, err, blog.ErrTitleRequired)
	assert.Empty(t, f.model.Messages())
	assert.Equal(t, 1, composer.Segments(), "rejected save keeps the canvas")

	image, err := composer.ExportImage()
	require.NoError(t, err)

	res, err := f.app.SaveMessageDrawing(ctx, " sunset ")
	require.NoError(t, err)
	assert.True(t, res.ClearTitle)
	assert.True(t, res.Has(view.RegionMessages))
	assert.Zero(t, composer.Segments())

	msgs := f.model.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, blog.KindDrawing, msgs[0].Kind())
	assert.Equal(t, "sunset", msgs[0].Drawing.Title)
	assert.Equal(t, image, msgs[0].Drawing.Image)

	_, ok := f.app.MessageDrawingByID(msgs[0].ID)
	assert.True(t, ok)
}

func TestMessageDrawingByID_IgnoresTextEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	_, err := f.app.SubmitMessage(ctx, "ann", "hello")
	require.NoError(t, err)

	_, ok := f.app.MessageDrawingByID(f.model.Messages()[0].ID)
	assert.False(t, ok)
}

func TestSurfacesAreIndependent(t *testing.T) {
	f := newFixture(t, Options{})
	drawing, _ := f.app.Surface(SurfaceDraw)
	composer, _ := f.app.Surface(SurfaceMessage)
	scribble(t, drawing)

	assert.Zero(t, composer.Segments())
	_, err := f.app.Surface("other")
	assert.Error(t, err)
}

func TestSwitchView_ClosesDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	_, err := f.app.OpenArticle(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, f.app.Screen().Detail)

	_, err = f.app.SwitchView("message")
	require.NoError(t, err)
	assert.Equal(t, view.Message, f.app.ActiveView())
	scr := f.app.Screen()
	assert.Nil(t, scr.Detail)
	assert.NotNil(t, scr.Messages)

	_, err = f.app.SwitchView("settings")
	assert.Error(t, err)
	assert.Equal(t, view.Message, f.app.ActiveView())
}

func TestCloseArticle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	assert.Empty(t, f.app.CloseArticle().Stale)

	_, err := f.app.OpenArticle(ctx, "id-2")
	require.NoError(t, err)
	res := f.app.CloseArticle()
	assert.True(t, res.Has(view.RegionArticleDetail))
	assert.Empty(t, f.app.ActiveArticleID())
}

func TestStorageWriteFailureIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.store.fail = true

	_, err := f.app.SubmitMessage(ctx, "bob", "hi")
	assert.ErrorIs(t, err, blog.ErrStorageWrite)
	assert.Empty(t, f.model.Messages())
	assert.ErrorIs(t, f.obs.commands["submit_message"], blog.ErrStorageWrite)

	_, err = f.app.OpenArticle(ctx, "id-1")
	assert.ErrorIs(t, err, blog.ErrStorageWrite)
	assert.Empty(t, f.app.ActiveArticleID())

	composer, _ := f.app.Surface(SurfaceMessage)
	scribble(t, composer)
	_, err = f.app.SaveMessageDrawing(ctx, "t")
	assert.ErrorIs(t, err, blog.ErrStorageWrite)
	assert.Equal(t, 1, composer.Segments(), "failed save keeps the canvas")
}
