package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/store"
	"github.com/fishblog/fishblog/internal/view"
)

type brokenStore struct {
	store.Store
	fail bool
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.Store.Set(ctx, key, value)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func newTestServer(t *testing.T) (http.Handler, *brokenStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	bs := &brokenStore{Store: store.NewMemory()}
	model := blog.NewModel(bs, nil)
	model.LoadAll(ctx)

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	_, err := model.SeedIfEmpty(ctx, now, ids)
	require.NoError(t, err)

	app, err := command.New(model, command.Options{
		Now:    func() time.Time { return now },
		NewID:  ids,
		Canvas: canvas.Options{Width: 40, Height: 30},
	})
	require.NoError(t, err)

	return New(app, nil, nil).Handler(), bs
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)

	rec, _ := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestArticles_OpenLikeComment(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodGet, "/api/articles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list view.ArticleList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Welcome to my blog", list.Items[0].Title)

	rec, env = do(t, h, http.MethodPost, "/api/articles/id-1/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply commandReply
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	require.NotNil(t, reply.Screen.Detail)
	assert.Equal(t, "id-1", reply.Screen.Detail.ID)
	assert.Equal(t, 1, reply.Screen.Detail.Views)

	_, env = do(t, h, http.MethodPost, "/api/like", nil)
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.True(t, reply.Screen.Detail.IsLiked)
	assert.Equal(t, 1, reply.Screen.Detail.Likes)

	_, env = do(t, h, http.MethodPost, "/api/comments", textRequest{Name: "Ann", Content: "hi"})
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.True(t, reply.ClearForm)
	assert.Equal(t, 1, reply.Screen.Detail.Comments.Count)
}

func TestArticles_NotFound(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/articles/nope/open", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "article not found", env.Error)

	rec, _ = do(t, h, http.MethodDelete, "/api/articles/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/api/articles/id-2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationIsBadRequest(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/messages", textRequest{Name: " ", Content: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name required", env.Error)

	rec, env = do(t, h, http.MethodPost, "/api/messages/drawing", titleRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title required", env.Error)

	rec, _ = do(t, h, http.MethodPost, "/api/view/settings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStorageFailureIsServerError(t *testing.T) {
	h, bs := newTestServer(t)
	bs.fail = true

	rec, env := do(t, h, http.MethodPost, "/api/messages", textRequest{Name: "Ann", Content: "hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, blog.ErrStorageWrite.Error(), env.Error)

	bs.fail = false
	_, env = do(t, h, http.MethodGet, "/api/messages", nil)
	var list view.MessageList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list.Items)
}

func TestCanvas_StrokeAndExport(t *testing.T) {
	h, _ := newTestServer(t)

	origin := canvas.Point{X: 100, Y: 50}
	rec, env := do(t, h, http.MethodPost, "/api/canvas/draw/down", pointerRequest{Point: canvas.Point{X: 105, Y: 55}, Origin: origin})
	require.Equal(t, http.StatusOK, rec.Code)
	var state canvasReply
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "stroking", state.State)

	_, env = do(t, h, http.MethodPost, "/api/canvas/draw/move", pointerRequest{Point: canvas.Point{X: 120, Y: 60}, Origin: origin})
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.True(t, state.Drew)
	assert.Equal(t, 1, state.Segments)

	rec, _ = do(t, h, http.MethodGet, "/api/canvas/draw.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec, _ = do(t, h, http.MethodPost, "/api/canvas/draw/up", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/canvas/draw/wiggle", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/canvas/wall/up", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCanvas_RejectsUnrepresentablePoint(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/canvas/draw/down", pointerRequest{Point: canvas.Point{X: 1e300, Y: 5}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "coordinate out of range")

	rec, _ = do(t, h, http.MethodPost, "/api/canvas/draw/down", pointerRequest{Point: canvas.Point{X: 10, Y: 10}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/canvas/draw/move", pointerRequest{Point: canvas.Point{X: 1e300, Y: 5}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "coordinate out of range")

	_, env = do(t, h, http.MethodPost, "/api/canvas/draw/move", pointerRequest{Point: canvas.Point{X: 30, Y: 10}})
	var state canvasReply
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.True(t, state.Drew)
	assert.Equal(t, 1, state.Segments)
}

func TestCanvas_SetPen(t *testing.T) {
	h, _ := newTestServer(t)

	color, width := "#ff0000", 8.0
	rec, env := do(t, h, http.MethodPut, "/api/canvas/message/pen", penRequest{Color: &color, Width: &width})
	require.Equal(t, http.StatusOK, rec.Code)
	var state canvasReply
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, "#ff0000", state.Color)
	assert.Equal(t, 8.0, state.Width)

	bad := "red"
	rec, _ = do(t, h, http.MethodPut, "/api/canvas/message/pen", penRequest{Color: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	huge := 1e300
	rec, _ = do(t, h, http.MethodPut, "/api/canvas/message/pen", penRequest{Width: &huge})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrawings_SaveAndFetch(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/drawings", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved struct {
		Drawing blog.Drawing `json:"drawing"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	require.NotEmpty(t, saved.Drawing.ID)
	assert.True(t, strings.HasPrefix(saved.Drawing.Image, "data:image/png;base64,"))

	rec, _ = do(t, h, http.MethodGet, "/api/drawings/"+saved.Drawing.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/drawings/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env = do(t, h, http.MethodGet, "/api/drawings", nil)
	var gallery view.Gallery
	require.NoError(t, json.Unmarshal(env.Data, &gallery))
	assert.Len(t, gallery.Items, 1)
}

func TestMessageDrawing_Enlarge(t *testing.T) {
	h, _ := newTestServer(t)

	rec, env := do(t, h, http.MethodPost, "/api/messages/drawing", titleRequest{Title: "fish"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply commandReply
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.True(t, reply.ClearTitle)

	_, env = do(t, h, http.MethodGet, "/api/messages", nil)
	var list view.MessageList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Items, 1)

	rec, _ = do(t, h, http.MethodGet, "/api/messages/"+list.Items[0].ID+"/drawing", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, _ = do(t, h, http.MethodPost, "/api/messages", textRequest{Name: "Ann", Content: "hello"})
	_, env = do(t, h, http.MethodGet, "/api/messages", nil)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	rec, _ = do(t, h, http.MethodGet, "/api/messages/"+list.Items[0].ID+"/drawing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "text entries have no drawing")
}

func TestSwitchView(t *testing.T) {
	h, _ := newTestServer(t)

	_, _ = do(t, h, http.MethodPost, "/api/articles/id-1/open", nil)
	rec, env := do(t, h, http.MethodPost, "/api/view/draw", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply commandReply
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Equal(t, view.Draw, reply.Screen.View)
	assert.Nil(t, reply.Screen.Detail)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovererReturnsEnvelope(t *testing.T) {
	h := Recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestEvents_StreamStaleRegions(t *testing.T) {
	h, _ := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	first, err := lines.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", first)

	body := strings.NewReader(`{"name":"Ann","content":"hello"}`)
	post, err := srv.Client().Post(srv.URL+"/api/messages", "application/json", body)
	require.NoError(t, err)
	_ = post.Body.Close()
	require.Equal(t, http.StatusOK, post.StatusCode)

	var data string
	for data == "" {
		line, err := lines.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}

	var u struct {
		Command string        `json:"command"`
		Stale   []view.Region `json:"stale"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &u))
	assert.Equal(t, "submit_message", u.Command)
	assert.Equal(t, []view.Region{view.RegionMessages}, u.Stale)
}
