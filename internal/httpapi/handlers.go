package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/canvas"
	"github.com/fishblog/fishblog/internal/command"
	"github.com/fishblog/fishblog/internal/view"
)

type commandReply struct {
	Stale      []view.Region `json:"stale"`
	ClearTitle bool          `json:"clearTitle,omitempty"`
	ClearForm  bool          `json:"clearForm,omitempty"`
	Screen     view.Screen   `json:"screen"`
}

type canvasReply struct {
	Surface  string  `json:"surface"`
	State    string  `json:"state"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	Segments int     `json:"segments"`
	Drew     bool    `json:"drew,omitempty"`
}

type textRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type pointerRequest struct {
	Point  canvas.Point `json:"point"`
	Origin canvas.Point `json:"origin"`
}

type penRequest struct {
	Color *string  `json:"color"`
	Width *float64 `json:"width"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	Error(w, status, message(err))
}

func (s *Server) reply(w http.ResponseWriter, cmd string, res command.Result) {
	s.events.Publish(cmd, res.Stale)
	stale := res.Stale
	if stale == nil {
		stale = []view.Region{}
	}
	JSON(w, http.StatusOK, commandReply{
		Stale:      stale,
		ClearTitle: res.ClearTitle,
		ClearForm:  res.ClearForm,
		Screen:     s.app.Screen(),
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) screen(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, s.app.Screen())
}

func (s *Server) switchView(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.SwitchView(mux.Vars(r)["name"])
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.reply(w, "switch_view", res)
}

func (s *Server) listArticles(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, view.BuildArticleList(s.app.State()))
}

func (s *Server) openArticle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := s.app.OpenArticle(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.app.ActiveArticleID() != id {
		Error(w, http.StatusNotFound, "article not found")
		return
	}
	s.reply(w, "open_article", res)
}

func (s *Server) closeArticle(w http.ResponseWriter, _ *http.Request) {
	s.reply(w, "close_article", s.app.CloseArticle())
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.DeleteArticle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(res.Stale) == 0 {
		Error(w, http.StatusNotFound, "article not found")
		return
	}
	s.reply(w, "delete_article", res)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.ToggleLike(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, "toggle_like", res)
}

func (s *Server) submitComment(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.app.SubmitComment(r.Context(), req.Name, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, "submit_comment", res)
}

func (s *Server) listMessages(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, view.BuildMessageList(s.app.State()))
}

func (s *Server) submitMessage(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.app.SubmitMessage(r.Context(), req.Name, req.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, "submit_message", res)
}

func (s *Server) saveMessageDrawing(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.app.SaveMessageDrawing(r.Context(), req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, "save_message_drawing", res)
}

func (s *Server) getMessageDrawing(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.app.MessageDrawingByID(mux.Vars(r)["id"])
	if !ok {
		Error(w, http.StatusNotFound, "drawing message not found")
		return
	}
	JSON(w, http.StatusOK, msg)
}

func (s *Server) surface(r *http.Request) (command.SurfaceID, *canvas.Surface, error) {
	id := command.SurfaceID(mux.Vars(r)["surface"])
	surf, err := s.app.Surface(id)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return id, surf, nil
}

func canvasState(id command.SurfaceID, surf *canvas.Surface) canvasReply {
	return canvasReply{
		Surface:  string(id),
		State:    surf.State().String(),
		Color:    surf.Color(),
		Width:    surf.Width(),
		Segments: surf.Segments(),
	}
}

func (s *Server) pointerEvent(w http.ResponseWriter, r *http.Request) {
	id, surf, err := s.surface(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var drew bool
	switch event := mux.Vars(r)["event"]; event {
	case "down", "move":
		var req pointerRequest
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if event == "down" {
			err = surf.PointerDown(req.Point, req.Origin)
		} else {
			drew, err = surf.PointerMove(req.Point, req.Origin)
		}
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	case "up":
		surf.PointerUp()
	case "leave":
		surf.PointerLeave()
	case "clear":
		surf.Clear()
	default:
		s.fail(w, r, fmt.Errorf("%w: unknown pointer event %q", errBadRequest, event))
		return
	}

	out := canvasState(id, surf)
	out.Drew = drew
	JSON(w, http.StatusOK, out)
}

func (s *Server) setPen(w http.ResponseWriter, r *http.Request) {
	id, surf, err := s.surface(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req penRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Color != nil {
		if err := surf.SetColor(*req.Color); err != nil {
			s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	if req.Width != nil {
		if err := surf.SetWidth(*req.Width); err != nil {
			s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	JSON(w, http.StatusOK, canvasState(id, surf))
}

func (s *Server) canvasPNG(w http.ResponseWriter, r *http.Request) {
	_, surf, err := s.surface(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uri, err := surf.ExportImage()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := canvas.PNG(uri)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) listDrawings(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, view.BuildDrawingGallery(s.app.State()))
}

func (s *Server) saveDrawing(w http.ResponseWriter, r *http.Request) {
	d, res, err := s.app.SaveDrawing(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.events.Publish("save_drawing", res.Stale)
	stale := res.Stale
	if stale == nil {
		stale = []view.Region{}
	}
	JSON(w, http.StatusCreated, map[string]any{"drawing": d, "stale": stale})
}

func (s *Server) getDrawing(w http.ResponseWriter, r *http.Request) {
	d, ok := s.app.DrawingByID(mux.Vars(r)["id"])
	if !ok {
		Error(w, http.StatusNotFound, "drawing not found")
		return
	}
	JSON(w, http.StatusOK, d)
}
