package handlers

import (
	"net/http"
)

// GenresHandler serves the cached genre catalog.
type GenresHandler struct {
	Service movieService
}

func NewGenresHandler(s movieService) *GenresHandler {
	return &GenresHandler{Service: s}
}

// List returns all genres for a media kind. `forceRefresh=true` bypasses the
// cache and refetches from the provider.
func (h *GenresHandler) List(w http.ResponseWriter, r *http.Request) {
	mediaType, err := pathMediaType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	genres, err := h.Service.GetGenres(r.Context(), mediaType, queryBool(r, "forceRefresh"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}
