// Package view projects the blog model into read-only view models. Every
// function here is pure: it never mutates its inputs and returns the same
// result for the same state.
package view

import (
	"fmt"
	"slices"
	"time"

	"github.com/fishblog/fishblog/internal/blog"
)

// Name identifies a top-level view.
type Name string

const (
	Home     Name = "home"
	Articles Name = "articles"
	Draw     Name = "draw"
	Message  Name = "message"
	Manage   Name = "manage"
)

// Names lists the top-level views in navigation order.
var Names = []Name{Home, Articles, Draw, Message, Manage}

// ParseName validates a view name.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if !slices.Contains(Names, n) {
		return "", fmt.Errorf("unknown view %q", s)
	}
	return n, nil
}

// Region is a part of the screen that a command can make stale.
type Region string

const (
	RegionNav           Region = "nav"
	RegionArticleList   Region = "article_list"
	RegionArticleDetail Region = "article_detail"
	RegionComments      Region = "comments"
	RegionMessages      Region = "messages"
	RegionGallery       Region = "gallery"
	RegionManage        Region = "manage"
	RegionCanvas        Region = "canvas"
	RegionMessageCanvas Region = "message_canvas"
)

// Like button glyphs.
const (
	LikedGlyph    = "❤️"
	NotLikedGlyph = "👍"
)

// Empty-state placeholders.
const (
	EmptyArticles = "No articles yet."
	EmptyComments = "No comments yet. Be the first to comment!"
	EmptyMessages = "No messages yet. Be the first to leave one!"
	EmptyDrawings = "No saved drawings yet. Start creating!"
)

// State is everything the builders read.
type State struct {
	Articles        []blog.Article
	Comments        []blog.Comment
	Messages        []blog.Message
	Drawings        []blog.Drawing
	Likes           blog.LikeSet
	ActiveArticleID string
	ActiveView      Name
	Now             time.Time
}

// StateFrom wraps a model snapshot.
func StateFrom(s blog.Snapshot, activeArticleID string, active Name, now time.Time) State {
	return State{
		Articles:        s.Articles,
		Comments:        s.Comments,
		Messages:        s.Messages,
		Drawings:        s.Drawings,
		Likes:           s.Likes,
		ActiveArticleID: activeArticleID,
		ActiveView:      active,
		Now:             now,
	}
}

// ArticleSummary is one row of the article list.
type ArticleSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Preview  string `json:"preview"`
	Views    int    `json:"views"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	Image    string `json:"image,omitempty"`
}

// ArticleList is the article list view model.
type ArticleList struct {
	Items       []ArticleSummary `json:"items"`
	Placeholder string           `json:"placeholder,omitempty"`
}

// CommentItem is one rendered comment.
type CommentItem struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// CommentList is the comment list of the active article.
type CommentList struct {
	Count       int           `json:"count"`
	Items       []CommentItem `json:"items"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// ArticleDetail is the open article.
type ArticleDetail struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Paragraphs []string    `json:"paragraphs"`
	Image      string      `json:"image,omitempty"`
	Date       string      `json:"date"`
	Views      int         `json:"views"`
	Likes      int         `json:"likes"`
	IsLiked    bool        `json:"isLiked"`
	LikeGlyph  string      `json:"likeGlyph"`
	Comments   CommentList `json:"comments"`
}

// MessageItem is one guestbook entry rendered for its variant.
type MessageItem struct {
	ID      string           `json:"id"`
	Kind    blog.MessageKind `json:"kind"`
	Heading string           `json:"heading"`
	Body    string           `json:"body"`
	Image   string           `json:"image,omitempty"`
	Date    string           `json:"date"`
}

// MessageList is the guestbook view model.
type MessageList struct {
	Items       []MessageItem `json:"items"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// DrawingItem is one gallery tile.
type DrawingItem struct {
	ID    string `json:"id"`
	Image string `json:"image,omitempty"`
	Size  int    `json:"size"`
	Date  string `json:"date"`
}

// Gallery is the saved drawing view model.
type Gallery struct {
	Items       []DrawingItem `json:"items"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// ManageItem is one row of the manage panel.
type ManageItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Views    int    `json:"views"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
}

// ManagePanel lists articles for deletion.
type ManagePanel struct {
	Items       []ManageItem `json:"items"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// HomePanel is the landing view.
type HomePanel struct {
	Title    string `json:"title"`
	Welcome  string `json:"welcome"`
	Articles int    `json:"articles"`
	Messages int    `json:"messages"`
	Drawings int    `json:"drawings"`
}

// Screen is the complete presentation for the active view. Only the models
// the active view needs are filled in. Detail is set while an article is open.
type Screen struct {
	View     Name           `json:"view"`
	Home     *HomePanel     `json:"home,omitempty"`
	Articles *ArticleList   `json:"articles,omitempty"`
	Detail   *ArticleDetail `json:"detail,omitempty"`
	Messages *MessageList   `json:"messages,omitempty"`
	Gallery  *Gallery       `json:"gallery,omitempty"`
	Manage   *ManagePanel   `json:"manage,omitempty"`
}

func newestFirst(articles []blog.Article) []blog.Article {
	sorted := slices.Clone(articles)
	slices.SortStableFunc(sorted, func(a, b blog.Article) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

func commentCounts(comments []blog.Comment) map[string]int {
	counts := make(map[string]int, len(comments))
	for _, c := range comments {
		counts[c.ArticleID]++
	}
	return counts
}

func imageOf(a blog.Article) string {
	if a.HasImage() {
		return *a.Image
	}
	return ""
}

// BuildArticleList returns articles newest first with derived fields.
func BuildArticleList(s State) ArticleList {
	counts := commentCounts(s.Comments)
	items := make([]ArticleSummary, 0, len(s.Articles))
	for _, a := range newestFirst(s.Articles) {
		items = append(items, ArticleSummary{
			ID:       a.ID,
			Title:    a.Title,
			Date:     RelativeTime(a.CreatedAt, s.Now),
			Preview:  Preview(a.Content),
			Views:    a.Views,
			Likes:    a.Likes,
			Comments: counts[a.ID],
			Image:    imageOf(a),
		})
	}

	list := ArticleList{Items: items}
	if len(items) == 0 {
		list.Placeholder = EmptyArticles
	}
	return list
}

// BuildCommentList returns the active article's comments, newest first.
func BuildCommentList(s State) CommentList {
	var matched []blog.Comment
	for _, c := range s.Comments {
		if s.ActiveArticleID != "" && c.ArticleID == s.ActiveArticleID {
			matched = append(matched, c)
		}
	}
	slices.SortStableFunc(matched, func(a, b blog.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	items := make([]CommentItem, 0, len(matched))
	for _, c := range matched {
		items = append(items, CommentItem{
			ID:      c.ID,
			Author:  c.Author,
			Content: c.Content,
			Date:    RelativeTime(c.CreatedAt, s.Now),
		})
	}

	list := CommentList{Count: len(items), Items: items}
	if len(items) == 0 {
		list.Placeholder = EmptyComments
	}
	return list
}

// BuildArticleDetail returns the open article. ok is false when no article
// is open or the open one no longer exists.
func BuildArticleDetail(s State) (ArticleDetail, bool) {
	if s.ActiveArticleID == "" {
		return ArticleDetail{}, false
	}
	i := slices.IndexFunc(s.Articles, func(a blog.Article) bool { return a.ID == s.ActiveArticleID })
	if i < 0 {
		return ArticleDetail{}, false
	}
	a := s.Articles[i]

	liked := s.Likes.Has(a.ID)
	glyph := NotLikedGlyph
	if liked {
		glyph = LikedGlyph
	}

	return ArticleDetail{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Paragraphs: Paragraphs(a.Content),
		Image:      imageOf(a),
		Date:       RelativeTime(a.CreatedAt, s.Now),
		Views:      a.Views,
		Likes:      a.Likes,
		IsLiked:    liked,
		LikeGlyph:  glyph,
		Comments:   BuildCommentList(s),
	}, true
}

// MessageHeading is the heading line shown for a guestbook entry.
func MessageHeading(m blog.Message) string {
	if m.Kind() == blog.KindDrawing {
		return m.Drawing.Title + " - drawing"
	}
	return m.Text.Name
}

// BuildMessageList returns the guestbook in stored order.
func BuildMessageList(s State) MessageList {
	items := make([]MessageItem, 0, len(s.Messages))
	for _, m := range s.Messages {
		item := MessageItem{
			ID:      m.ID,
			Kind:    m.Kind(),
			Heading: MessageHeading(m),
			Date:    RelativeTime(m.CreatedAt, s.Now),
		}
		if m.Kind() == blog.KindDrawing {
			item.Image = m.Drawing.Image
		} else {
			item.Body = m.Text.Content
		}
		items = append(items, item)
	}

	list := MessageList{Items: items}
	if len(items) == 0 {
		list.Placeholder = EmptyMessages
	}
	return list
}

// BuildDrawingGallery returns saved drawings oldest first.
func BuildDrawingGallery(s State) Gallery {
	items := make([]DrawingItem, 0, len(s.Drawings))
	for _, d := range s.Drawings {
		items = append(items, DrawingItem{
			ID:    d.ID,
			Image: d.Image,
			Size:  len(d.Image),
			Date:  RelativeTime(d.CreatedAt, s.Now),
		})
	}

	g := Gallery{Items: items}
	if len(items) == 0 {
		g.Placeholder = EmptyDrawings
	}
	return g
}

// BuildManagePanel lists articles newest first for deletion.
func BuildManagePanel(s State) ManagePanel {
	counts := commentCounts(s.Comments)
	items := make([]ManageItem, 0, len(s.Articles))
	for _, a := range newestFirst(s.Articles) {
		items = append(items, ManageItem{
			ID:       a.ID,
			Title:    a.Title,
			Date:     RelativeTime(a.CreatedAt, s.Now),
			Views:    a.Views,
			Likes:    a.Likes,
			Comments: counts[a.ID],
		})
	}

	p := ManagePanel{Items: items}
	if len(items) == 0 {
		p.Placeholder = EmptyArticles
	}
	return p
}

// BuildHome returns the landing panel.
func BuildHome(s State) HomePanel {
	return HomePanel{
		Title:    "FISH blog",
		Welcome:  "Welcome! Read the articles, draw something or leave a message.",
		Articles: len(s.Articles),
		Messages: len(s.Messages),
		Drawings: len(s.Drawings),
	}
}

// Build assembles the screen for the active view. An unknown or empty
// view name falls back to Home.
func Build(s State) Screen {
	name := s.ActiveView
	if !slices.Contains(Names, name) {
		name = Home
	}

	scr := Screen{View: name}
	switch name {
	case Home:
		h := BuildHome(s)
		scr.Home = &h
	case Articles:
		l := BuildArticleList(s)
		scr.Articles = &l
	case Draw:
		g := BuildDrawingGallery(s)
		scr.Gallery = &g
	case Message:
		m := BuildMessageList(s)
		scr.Messages = &m
	case Manage:
		p := BuildManagePanel(s)
		scr.Manage = &p
	}

	if d, ok := BuildArticleDetail(s); ok {
		scr.Detail = &d
	}
	return scr
}
