package blog

import (
	"encoding/json"
	"fmt"
	"time"
)

// Article is a blog post. Content is plain text; newlines separate paragraphs.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"` // data URI or URL, nil when absent
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasImage reports whether the article carries a cover image.
func (a Article) HasImage() bool {
	return a.Image != nil && *a.Image != ""
}

// Comment belongs to an article by ID. Comments outlive deleted articles.
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Drawing is a saved standalone canvas export.
type Drawing struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageKind distinguishes guestbook entry variants.
type MessageKind string

const (
	KindText    MessageKind = "text"
	KindDrawing MessageKind = "drawing"
)

// TextMessage is a plain guestbook entry.
type TextMessage struct {
	Name    string
	Content string
}

// DrawingMessage is a guestbook entry drawn on the message canvas.
type DrawingMessage struct {
	Title string
	Image string
}

// Message is a guestbook entry. Exactly one of Text and Drawing is set.
type Message struct {
	ID        string
	CreatedAt time.Time
	Text      *TextMessage
	Drawing   *DrawingMessage
}

// NewTextMessage builds a text guestbook entry.
func NewTextMessage(id string, at time.Time, name, content string) Message {
	return Message{ID: id, CreatedAt: at, Text: &TextMessage{Name: name, Content: content}}
}

// NewDrawingMessage builds a drawing guestbook entry.
func NewDrawingMessage(id string, at time.Time, title, image string) Message {
	return Message{ID: id, CreatedAt: at, Drawing: &DrawingMessage{Title: title, Image: image}}
}

// Kind returns the variant of the message.
func (m Message) Kind() MessageKind {
	if m.Drawing != nil {
		return KindDrawing
	}
	return KindText
}

// messageDoc is the stored shape: text entries carry name/content, drawing
// entries carry type "drawing" with title/image.
type messageDoc struct {
	ID        string    `json:"id"`
	Type      string    `json:"type,omitempty"`
	Name      string    `json:"name,omitempty"`
	Content   string    `json:"content,omitempty"`
	Title     string    `json:"title,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	doc := messageDoc{ID: m.ID, CreatedAt: m.CreatedAt}
	switch {
	case m.Drawing != nil:
		doc.Type = string(KindDrawing)
		doc.Title = m.Drawing.Title
		doc.Image = m.Drawing.Image
	case m.Text != nil:
		doc.Name = m.Text.Name
		doc.Content = m.Text.Content
	default:
		return nil, fmt.Errorf("message %s has no variant", m.ID)
	}
	return json.Marshal(doc)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var doc messageDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	m.ID = doc.ID
	m.CreatedAt = doc.CreatedAt
	m.Text, m.Drawing = nil, nil
	if doc.Type == string(KindDrawing) {
		m.Drawing = &DrawingMessage{Title: doc.Title, Image: doc.Image}
	} else {
		m.Text = &TextMessage{Name: doc.Name, Content: doc.Content}
	}
	return nil
}
