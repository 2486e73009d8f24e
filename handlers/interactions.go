package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cinehub/models"
	interactionsvc "cinehub/services/interactions"
)

type interactionService interface {
	ToggleLike(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error)
	ToggleDislike(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error)
	ToggleWatchlist(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error)
	GetUserInteraction(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int) (models.UserInteraction, error)
	GetUserWatchlist(ctx context.Context, userID string, page, pageSize int) (models.PagedResult[models.MovieItem], error)
}

var _ interactionService = (*interactionsvc.Service)(nil)

// InteractionsHandler serves the like/dislike/watchlist write path.
type InteractionsHandler struct {
	Service interactionService
}

func NewInteractionsHandler(s interactionService) *InteractionsHandler {
	return &InteractionsHandler{Service: s}
}

type toggleRequest struct {
	Title string `json:"title"`
}

type toggleResponse struct {
	State bool `json:"state"`
}

func decodeToggle(r *http.Request) (toggleRequest, error) {
	var request toggleRequest
	if r.Body == nil || r.ContentLength == 0 {
		return request, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&request)
	return request, err
}

func (h *InteractionsHandler) toggle(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error)) {

	mediaType, err := pathMediaType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tmdbID, err := pathTmdbID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	request, err := decodeToggle(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := fn(r.Context(), mediaType, requestUserID(r), tmdbID, request.Title)
	if err != nil {
		if errors.Is(err, interactionsvc.ErrUnauthorized) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{State: state})
}

// ToggleLike flips the acting user's liked flag for a title.
func (h *InteractionsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.ToggleLike)
}

// ToggleDislike flips the acting user's disliked flag for a title.
func (h *InteractionsHandler) ToggleDislike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.ToggleDislike)
}

// ToggleWatchlist flips the acting user's watchlisted flag for a title.
func (h *InteractionsHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.ToggleWatchlist)
}

// GetInteraction returns the acting user's flags for one title.
func (h *InteractionsHandler) GetInteraction(w http.ResponseWriter, r *http.Request) {
	mediaType, err := pathMediaType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tmdbID, err := pathTmdbID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	interaction, err := h.Service.GetUserInteraction(r.Context(), mediaType, requestUserID(r), tmdbID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, interaction)
}

// Watchlist returns one page of the acting user's watchlisted titles.
func (h *InteractionsHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 20)

	result, err := h.Service.GetUserWatchlist(r.Context(), requestUserID(r), page, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
