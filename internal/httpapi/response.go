package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fishblog/fishblog/internal/blog"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// JSON writes data inside the envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

// Error writes an error message inside the envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: msg})
}

// errBadRequest marks malformed requests that never reached a command.
var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	if errors.Is(err, blog.ErrValidation) || errors.Is(err, errBadRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// message hides storage details from clients.
func message(err error) string {
	if errors.Is(err, blog.ErrStorageWrite) {
		return blog.ErrStorageWrite.Error()
	}
	var verr *blog.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}
