// Package blog holds the in-memory blog model and keeps it written through
// to a key-value store.
package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/store"
)

// Storage keys. Each holds one JSON document.
const (
	KeyArticles = "articles"
	KeyComments = "comments"
	KeyLikes    = "userLikes"
	KeyDrawings = "drawings"
	KeyMessages = "messages"
)

// Model is the single source of truth for blog content. Every mutation is
// persisted before it becomes visible in memory; a failed write leaves the
// model unchanged.
//
// Model is not safe for concurrent use.
type Model struct {
	store store.Store
	log   *zap.Logger

	articles []Article
	comments []Comment
	messages []Message
	drawings []Drawing
	likes    LikeSet
}

// Snapshot is a read-only copy of the model's collections.
type Snapshot struct {
	Articles []Article
	Comments []Comment
	Messages []Message
	Drawings []Drawing
	Likes    LikeSet
}

// NewModel creates an empty model backed by s.
func NewModel(s store.Store, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{
		store:    s,
		log:      log,
		articles: []Article{},
		comments: []Comment{},
		messages: []Message{},
		drawings: []Drawing{},
	}
}

// LoadAll reads every collection from the store. A missing or unreadable
// document loads as an empty collection; errors are logged, never returned.
func (m *Model) LoadAll(ctx context.Context) {
	m.articles = loadSlice[Article](ctx, m, KeyArticles)
	m.comments = loadSlice[Comment](ctx, m, KeyComments)
	m.messages = loadSlice[Message](ctx, m, KeyMessages)
	m.drawings = loadSlice[Drawing](ctx, m, KeyDrawings)
	m.likes = NewLikeSet(loadSlice[string](ctx, m, KeyLikes)...)

	m.log.Debug("model loaded",
		zap.Int("articles", len(m.articles)),
		zap.Int("comments", len(m.comments)),
		zap.Int("messages", len(m.messages)),
		zap.Int("drawings", len(m.drawings)),
		zap.Int("likes", m.likes.Len()),
	)
}

func loadSlice[T any](ctx context.Context, m *Model, key string) []T {
	raw, found, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Warn("read failed, using empty collection", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if !found {
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		m.log.Warn("unparsable document, using empty collection", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

func (m *Model) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.store.Set(ctx, key, raw); err != nil {
		m.log.Error("write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save %s: %w: %w", key, ErrStorageWrite, err)
	}
	return nil
}

// Snapshot copies the current collections.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Articles: m.Articles(),
		Comments: slices.Clone(m.comments),
		Messages: slices.Clone(m.messages),
		Drawings: slices.Clone(m.drawings),
		Likes:    NewLikeSet(m.likes.ids...),
	}
}

// Articles returns a copy of the articles in stored order.
func (m *Model) Articles() []Article {
	out := make([]Article, len(m.articles))
	for i, a := range m.articles {
		if a.Image != nil {
			img := *a.Image
			a.Image = &img
		}
		out[i] = a
	}
	return out
}

// Article looks up an article by ID.
func (m *Model) Article(id string) (Article, bool) {
	i := m.articleIndex(id)
	if i < 0 {
		return Article{}, false
	}
	return m.Articles()[i], true
}

func (m *Model) articleIndex(id string) int {
	return slices.IndexFunc(m.articles, func(a Article) bool { return a.ID == id })
}

// Comments returns a copy of all comments in stored order.
func (m *Model) Comments() []Comment { return slices.Clone(m.comments) }

// Messages returns a copy of the guestbook, newest first.
func (m *Model) Messages() []Message { return slices.Clone(m.messages) }

// Drawings returns a copy of saved drawings, oldest first.
func (m *Model) Drawings() []Drawing { return slices.Clone(m.drawings) }

// Likes returns a copy of the like set.
func (m *Model) Likes() LikeSet { return NewLikeSet(m.likes.ids...) }

// Drawing looks up a saved drawing by ID.
func (m *Model) Drawing(id string) (Drawing, bool) {
	i := slices.IndexFunc(m.drawings, func(d Drawing) bool { return d.ID == id })
	if i < 0 {
		return Drawing{}, false
	}
	return m.drawings[i], true
}

// Message looks up a guestbook entry by ID.
func (m *Model) Message(id string) (Message, bool) {
	i := slices.IndexFunc(m.messages, func(msg Message) bool { return msg.ID == id })
	if i < 0 {
		return Message{}, false
	}
	return m.messages[i], true
}

// AppendComment adds c to the end of the comment log.
func (m *Model) AppendComment(ctx context.Context, c Comment) error {
	next := append(slices.Clone(m.comments), c)
	if err := m.save(ctx, KeyComments, next); err != nil {
		return err
	}
	m.comments = next
	return nil
}

// PrependMessage inserts msg at the head of the guestbook.
func (m *Model) PrependMessage(ctx context.Context, msg Message) error {
	next := append([]Message{msg}, m.messages...)
	if err := m.save(ctx, KeyMessages, next); err != nil {
		return err
	}
	m.messages = next
	return nil
}

// AppendDrawing adds d after the existing drawings.
func (m *Model) AppendDrawing(ctx context.Context, d Drawing) error {
	next := append(slices.Clone(m.drawings), d)
	if err := m.save(ctx, KeyDrawings, next); err != nil {
		return err
	}
	m.drawings = next
	return nil
}

// ShiftDrawing removes the oldest drawing. It reports false when there is
// nothing to remove.
func (m *Model) ShiftDrawing(ctx context.Context) (Drawing, bool, error) {
	if len(m.drawings) == 0 {
		return Drawing{}, false, nil
	}
	oldest := m.drawings[0]
	next := slices.Clone(m.drawings[1:])
	if err := m.save(ctx, KeyDrawings, next); err != nil {
		return Drawing{}, false, err
	}
	m.drawings = next
	return oldest, true, nil
}

// IncrementViews adds one view to the article. It reports false when the
// article does not exist.
func (m *Model) IncrementViews(ctx context.Context, id string) (Article, bool, error) {
	i := m.articleIndex(id)
	if i < 0 {
		return Article{}, false, nil
	}

	next := m.Articles()
	next[i].Views++
	if err := m.save(ctx, KeyArticles, next); err != nil {
		return Article{}, false, err
	}
	m.articles = next
	return next[i], true, nil
}

// ToggleLike flips the like state of an article and moves its like count
// by one in the same direction, never below zero. Both documents are
// written before either change is applied in memory. It reports the new liked state, or found
// false when the article does not exist.
func (m *Model) ToggleLike(ctx context.Context, id string) (liked, found bool, err error) {
	i := m.articleIndex(id)
	if i < 0 {
		return false, false, nil
	}

	nextArticles := m.Articles()
	var nextLikes LikeSet
	if m.likes.Has(id) {
		if nextArticles[i].Likes > 0 {
			nextArticles[i].Likes--
		} else {
			m.log.Warn("liked article has no likes to remove", zap.String("article_id", id))
		}
		nextLikes = m.likes.without(id)
	} else {
		nextArticles[i].Likes++
		nextLikes = m.likes.with(id)
	}

	if err := m.save(ctx, KeyArticles, nextArticles); err != nil {
		return false, true, err
	}
	if err := m.save(ctx, KeyLikes, nextLikes); err != nil {
		if rbErr := m.save(ctx, KeyArticles, m.articles); rbErr != nil {
			m.log.Error("failed to restore articles after like write failure",
				zap.String("article_id", id), zap.Error(rbErr))
		}
		return false, true, err
	}

	m.articles = nextArticles
	m.likes = nextLikes
	return m.likes.Has(id), true, nil
}

// DeleteArticle removes an article. Its comments are kept.
func (m *Model) DeleteArticle(ctx context.Context, id string) (bool, error) {
	i := m.articleIndex(id)
	if i < 0 {
		return false, nil
	}

	next := slices.Delete(m.Articles(), i, i+1)
	if err := m.save(ctx, KeyArticles, next); err != nil {
		return false, err
	}
	m.articles = next
	return true, nil
}

// CommentCount returns how many comments reference articleID.
func (m *Model) CommentCount(articleID string) int {
	n := 0
	for _, c := range m.comments {
		if c.ArticleID == articleID {
			n++
		}
	}
	return n
}
