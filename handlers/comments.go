package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cinehub/models"
	interactionsvc "cinehub/services/interactions"
)

type commentService interface {
	AddComment(ctx context.Context, userID string, tmdbID int, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, commentID string, tmdbID int, userID string) error
	GetMovieComments(ctx context.Context, tmdbID, page, pageSize int) (models.PagedResult[models.Comment], error)
}

var _ commentService = (*interactionsvc.Service)(nil)

// CommentsHandler serves per-title comment threads.
type CommentsHandler struct {
	Service commentService
}

func NewCommentsHandler(s commentService) *CommentsHandler {
	return &CommentsHandler{Service: s}
}

// Add attaches a comment to a title.
func (h *CommentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathTmdbID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var request struct {
		Content string `json:"content"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := h.Service.AddComment(r.Context(), requestUserID(r), tmdbID, request.Content)
	if err != nil {
		if errors.Is(err, interactionsvc.ErrInvalidComment) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Delete removes the acting user's own comment.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["commentID"]
	if commentID == "" {
		http.Error(w, "missing comment id", http.StatusBadRequest)
		return
	}
	tmdbID := queryInt(r, "tmdbId", 0)

	err := h.Service.DeleteComment(r.Context(), commentID, tmdbID, requestUserID(r))
	if err != nil {
		switch {
		case errors.Is(err, interactionsvc.ErrNotFound):
			http.Error(w, "comment not found", http.StatusNotFound)
		case errors.Is(err, interactionsvc.ErrNotOwner):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List returns one page of a title's comments, newest first.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathTmdbID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 20)

	result, err := h.Service.GetMovieComments(r.Context(), tmdbID, page, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
