package command

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/blog"
	"github.com/fishblog/fishblog/internal/view"
)

// ToggleLike likes or unlikes the open article. With no open article it
// does nothing.
func (a *App) ToggleLike(ctx context.Context) (res Result, err error) {
	defer a.observe("toggle_like", time.Now(), &err)

	if a.activeArticle == "" {
		return Result{}, nil
	}
	liked, found, err := a.model.ToggleLike(ctx, a.activeArticle)
	if err != nil || !found {
		return Result{}, err
	}

	a.log.Debug("like toggled", zap.String("article_id", a.activeArticle), zap.Bool("liked", liked))
	return stale(view.RegionArticleDetail, view.RegionArticleList, view.RegionManage), nil
}

// SubmitComment adds a comment to the open article. Name and content are
// trimmed and both required.
func (a *App) SubmitComment(ctx context.Context, name, content string) (res Result, err error) {
	defer a.observe("submit_comment", time.Now(), &err)

	name, content = strings.TrimSpace(name), strings.TrimSpace(content)
	if name == "" {
		return Result{}, blog.ErrNameRequired
	}
	if content == "" {
		return Result{}, blog.ErrContentRequired
	}
	if _, ok := a.model.Article(a.activeArticle); !ok {
		return Result{}, nil
	}

	c := blog.Comment{
		ID:        a.newID(),
		ArticleID: a.activeArticle,
		Author:    name,
		Content:   content,
		CreatedAt: a.timestamp(),
	}
	if err := a.model.AppendComment(ctx, c); err != nil {
		return Result{}, err
	}

	a.log.Info("comment added", zap.String("article_id", c.ArticleID), zap.String("comment_id", c.ID))
	res = stale(view.RegionArticleDetail, view.RegionComments, view.RegionArticleList, view.RegionManage)
	res.ClearForm = true
	return res, nil
}

// SubmitMessage adds a text entry to the top of the guestbook. The name is
// checked before the content.
func (a *App) SubmitMessage(ctx context.Context, name, content string) (res Result, err error) {
	defer a.observe("submit_message", time.Now(), &err)

	name, content = strings.TrimSpace(name), strings.TrimSpace(content)
	if name == "" {
		return Result{}, blog.ErrNameRequired
	}
	if content == "" {
		return Result{}, blog.ErrContentRequired
	}

	msg := blog.NewTextMessage(a.newID(), a.timestamp(), name, content)
	if err := a.model.PrependMessage(ctx, msg); err != nil {
		return Result{}, err
	}

	a.log.Info("message added", zap.String("message_id", msg.ID))
	res = stale(view.RegionMessages)
	res.ClearForm = true
	return res, nil
}

// OpenArticle selects an article and counts a view. Every open counts.
// Unknown IDs are ignored.
func (a *App) OpenArticle(ctx context.Context, id string) (res Result, err error) {
	defer a.observe("open_article", time.Now(), &err)

	_, found, err := a.model.IncrementViews(ctx, id)
	if err != nil || !found {
		return Result{}, err
	}

	a.activeArticle = id
	return stale(view.RegionArticleDetail, view.RegionComments, view.RegionArticleList, view.RegionManage), nil
}

// CloseArticle closes the detail view.
func (a *App) CloseArticle() Result {
	if a.activeArticle == "" {
		return Result{}
	}
	a.activeArticle = ""
	return stale(view.RegionArticleDetail)
}

// DeleteArticle removes an article. Its comments stay in storage.
func (a *App) DeleteArticle(ctx context.Context, id string) (res Result, err error) {
	defer a.observe("delete_article", time.Now(), &err)

	deleted, err := a.model.DeleteArticle(ctx, id)
	if err != nil || !deleted {
		return Result{}, err
	}

	a.log.Info("article deleted", zap.String("article_id", id))
	res = stale(view.RegionArticleList, view.RegionManage)
	if a.activeArticle == id {
		a.activeArticle = ""
		res.Stale = append(res.Stale, view.RegionArticleDetail)
	}
	return res, nil
}

// SwitchView changes the top-level view and closes any open article.
func (a *App) SwitchView(name string) (res Result, err error) {
	defer a.observe("switch_view", time.Now(), &err)

	v, err := view.ParseName(name)
	if err != nil {
		return Result{}, err
	}

	a.activeView = v
	a.activeArticle = ""
	return stale(view.RegionNav, view.RegionArticleDetail), nil
}

// DrawingByID looks up a saved drawing for the enlarged view.
func (a *App) DrawingByID(id string) (blog.Drawing, bool) {
	return a.model.Drawing(id)
}

// MessageDrawingByID looks up a drawing guestbook entry for the enlarged
// view. Text entries are not found.
func (a *App) MessageDrawingByID(id string) (blog.Message, bool) {
	msg, ok := a.model.Message(id)
	if !ok || msg.Kind() != blog.KindDrawing {
		return blog.Message{}, false
	}
	return msg, true
}
