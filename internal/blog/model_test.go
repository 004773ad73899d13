package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishblog/fishblog/internal/store"
)

// flakyStore wraps a store and fails writes to the keys in failKeys.
type flakyStore struct {
	store.Store
	failKeys map[string]bool
	getErr   error
	writes   []string
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.writes = append(f.writes, key)
	if f.failKeys[key] {
		return fmt.Errorf("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func seededModel(t *testing.T, s store.Store) *Model {
	t.Helper()
	m := NewModel(s, nil)
	m.LoadAll(context.Background())
	seeded, err := m.SeedIfEmpty(context.Background(), t0, seqIDs())
	require.NoError(t, err)
	require.True(t, seeded)
	return m
}

func readDoc(t *testing.T, s store.Store, key string, dst any) {
	t.Helper()
	raw, found, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found, "document %s missing", key)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestLoadAll_EmptyStore(t *testing.T) {
	m := NewModel(store.NewMemory(), nil)
	m.LoadAll(context.Background())

	assert.Empty(t, m.Articles())
	assert.Empty(t, m.Comments())
	assert.Empty(t, m.Messages())
	assert.Empty(t, m.Drawings())
	assert.Zero(t, m.Likes().Len())
}

func TestLoadAll_UnparsableDocumentsBecomeEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, KeyArticles, []byte("{not json")))
	require.NoError(t, s.Set(ctx, KeyComments, []byte("null")))
	require.NoError(t, s.Set(ctx, KeyLikes, []byte(`["a1"]`)))

	m := NewModel(s, nil)
	m.LoadAll(ctx)

	assert.Empty(t, m.Articles())
	assert.NotNil(t, m.Comments())
	assert.True(t, m.Likes().Has("a1"))
}

func TestLoadAll_ReadErrorsBecomeEmpty(t *testing.T) {
	m := NewModel(&flakyStore{Store: store.NewMemory(), getErr: errors.New("io")}, nil)
	m.LoadAll(context.Background())
	assert.Empty(t, m.Articles())
}

func TestLoadAll_ReadsOriginalDocumentShapes(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, KeyArticles, []byte(`[{"id":"1","title":"T","content":"C","image":null,"views":2,"likes":1,"createdAt":"2024-05-01T10:00:00.000Z"}]`)))
	require.NoError(t, s.Set(ctx, KeyMessages, []byte(`[
		{"id":"m2","type":"drawing","title":"cat","image":"data:image/png;base64,AA==","createdAt":"2024-05-02T10:00:00.000Z"},
		{"id":"m1","name":"Ann","content":"hi","createdAt":"2024-05-01T10:00:00.000Z"}]`)))

	m := NewModel(s, nil)
	m.LoadAll(ctx)

	a, ok := m.Article("1")
	require.True(t, ok)
	assert.False(t, a.HasImage())
	assert.Equal(t, 2, a.Views)

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, KindDrawing, msgs[0].Kind())
	assert.Equal(t, "cat", msgs[0].Drawing.Title)
	assert.Equal(t, KindText, msgs[1].Kind())
	assert.Equal(t, "Ann", msgs[1].Text.Name)
}

func TestSeedIfEmpty(t *testing.T) {
	s := store.NewMemory()
	m := seededModel(t, s)

	articles := m.Articles()
	require.Len(t, articles, 2)
	assert.Equal(t, t0, articles[0].CreatedAt)
	assert.Equal(t, t0.Add(-24*time.Hour), articles[1].CreatedAt)
	for _, a := range articles {
		assert.Zero(t, a.Views)
		assert.Zero(t, a.Likes)
	}

	var stored []Article
	readDoc(t, s, KeyArticles, &stored)
	assert.Len(t, stored, 2)

	seeded, err := m.SeedIfEmpty(context.Background(), t0, seqIDs())
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, m.Articles(), 2)
}

func TestAccessorsReturnCopies(t *testing.T) {
	m := seededModel(t, store.NewMemory())

	articles := m.Articles()
	articles[0].Title = "changed"
	a, _ := m.Article("id-1")
	assert.NotEqual(t, "changed", a.Title)
}

func TestAppendComment_Persists(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	m := seededModel(t, s)

	c := Comment{ID: "c1", ArticleID: "id-1", Author: "Bob", Content: "nice", CreatedAt: t0}
	require.NoError(t, m.AppendComment(ctx, c))

	var stored []Comment
	readDoc(t, s, KeyComments, &stored)
	require.Len(t, stored, 1)
	assert.Equal(t, "id-1", stored[0].ArticleID)
	assert.Equal(t, 1, m.CommentCount("id-1"))
	assert.Zero(t, m.CommentCount("missing"))
}

func TestPrependMessage_NewestFirst(t *testing.T) {
	ctx := context.Background()
	m := seededModel(t, store.NewMemory())

	require.NoError(t, m.PrependMessage(ctx, NewTextMessage("m1", t0, "A", "one")))
	require.NoError(t, m.PrependMessage(ctx, NewTextMessage("m2", t0.Add(time.Second), "B", "two")))

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, "m1", msgs[1].ID)
}

func TestAppendAndShiftDrawing(t *testing.T) {
	ctx := context.Background()
	m := seededModel(t, store.NewMemory())

	_, ok, err := m.ShiftDrawing(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.AppendDrawing(ctx, Drawing{ID: "d1", Image: "x", CreatedAt: t0}))
	require.NoError(t, m.AppendDrawing(ctx, Drawing{ID: "d2", Image: "y", CreatedAt: t0}))

	oldest, ok, err := m.ShiftDrawing(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "d1", oldest.ID)

	_, found := m.Drawing("d2")
	assert.True(t, found)
	_, found = m.Drawing("d1")
	assert.False(t, found)
}

func TestIncrementViews(t *testing.T) {
	ctx := context.Background()
	m := seededModel(t, store.NewMemory())

	for range 3 {
		_, ok, err := m.IncrementViews(ctx, "id-2")
		require.NoError(t, err)
		require.True(t, ok)
	}
	a, _ := m.Article("id-2")
	assert.Equal(t, 3, a.Views)

	_, ok, err := m.IncrementViews(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleLike_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	m := seededModel(t, s)

	liked, found, err := m.ToggleLike(ctx, "id-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, liked)

	a, _ := m.Article("id-1")
	assert.Equal(t, 1, a.Likes)

	var ids []string
	readDoc(t, s, KeyLikes, &ids)
	assert.Equal(t, []string{"id-1"}, ids)

	liked, _, err = m.ToggleLike(ctx, "id-1")
	require.NoError(t, err)
	assert.False(t, liked)

	a, _ = m.Article("id-1")
	assert.Zero(t, a.Likes)
	readDoc(t, s, KeyLikes, &ids)
	assert.Empty(t, ids)
}

func TestToggleLike_UnlikeNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, KeyArticles, []byte(`[{"id":"1","title":"T","content":"C","views":0,"likes":0,"createdAt":"2024-05-01T10:00:00.000Z"}]`)))
	require.NoError(t, s.Set(ctx, KeyLikes, []byte(`["1"]`)))

	m := NewModel(s, nil)
	m.LoadAll(ctx)

	liked, found, err := m.ToggleLike(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, liked)

	a, _ := m.Article("1")
	assert.Zero(t, a.Likes)
	var stored []Article
	readDoc(t, s, KeyArticles, &stored)
	require.Len(t, stored, 1)
	assert.Zero(t, stored[0].Likes)

	liked, _, err = m.ToggleLike(ctx, "1")
	require.NoError(t, err)
	assert.True(t, liked)
	a, _ = m.Article("1")
	assert.Equal(t, 1, a.Likes)
}

func TestToggleLike_UnknownArticle(t *testing.T) {
	m := seededModel(t, store.NewMemory())
	_, found, err := m.ToggleLike(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, m.Likes().Len())
}

func TestToggleLike_LikesWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{Store: store.NewMemory(), failKeys: map[string]bool{}}
	m := seededModel(t, fs)

	fs.failKeys[KeyLikes] = true
	_, _, err := m.ToggleLike(ctx, "id-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageWrite)

	a, _ := m.Article("id-1")
	assert.Zero(t, a.Likes)
	assert.False(t, m.Likes().Has("id-1"))

	var stored []Article
	readDoc(t, fs.Store, KeyArticles, &stored)
	assert.Zero(t, stored[0].Likes, "articles document restored")
}

func TestMutationsLeaveModelUnchangedOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{Store: store.NewMemory(), failKeys: map[string]bool{}}
	m := seededModel(t, fs)
	for _, k := range []string{KeyArticles, KeyComments, KeyMessages, KeyDrawings} {
		fs.failKeys[k] = true
	}

	err := m.AppendComment(ctx, Comment{ID: "c"})
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.Empty(t, m.Comments())

	err = m.PrependMessage(ctx, NewTextMessage("m", t0, "a", "b"))
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.Empty(t, m.Messages())

	err = m.AppendDrawing(ctx, Drawing{ID: "d"})
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.Empty(t, m.Drawings())

	_, _, err = m.IncrementViews(ctx, "id-1")
	assert.ErrorIs(t, err, ErrStorageWrite)
	a, _ := m.Article("id-1")
	assert.Zero(t, a.Views)

	_, err = m.DeleteArticle(ctx, "id-1")
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.Len(t, m.Articles(), 2)
}

func TestDeleteArticle_KeepsComments(t *testing.T) {
	ctx := context.Background()
	m := seededModel(t, store.NewMemory())
	require.NoError(t, m.AppendComment(ctx, Comment{ID: "c1", ArticleID: "id-1", Author: "a", Content: "b", CreatedAt: t0}))

	deleted, err := m.DeleteArticle(ctx, "id-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok := m.Article("id-1")
	assert.False(t, ok)
	assert.Len(t, m.Comments(), 1)

	deleted, err = m.DeleteArticle(ctx, "id-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMessageJSONShapes(t *testing.T) {
	text, err := json.Marshal(NewTextMessage("m1", t0, "Ann", "hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1","name":"Ann","content":"hi","createdAt":"2025-03-14T09:30:00Z"}`, string(text))

	drawing, err := json.Marshal(NewDrawingMessage("m2", t0, "sun", "data:x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m2","type":"drawing","title":"sun","image":"data:x","createdAt":"2025-03-14T09:30:00Z"}`, string(drawing))
}

func TestLikeSetJSON(t *testing.T) {
	raw, err := json.Marshal(LikeSet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	var s LikeSet
	require.NoError(t, json.Unmarshal([]byte(`["a","b","a"]`), &s))
	assert.True(t, s.Has("b"))
	assert.False(t, s.without("a").Has("a"))
	assert.Equal(t, 3, s.with("b").Len())
}

func TestValidationErrors(t *testing.T) {
	assert.ErrorIs(t, ErrNameRequired, ErrValidation)
	assert.ErrorIs(t, ErrTitleRequired, ErrValidation)
	assert.NotErrorIs(t, ErrNameRequired, ErrContentRequired)
	assert.Equal(t, "content required", ErrContentRequired.Error())
}
