package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinehub/models"
	moviesvc "cinehub/services/movies"
	"cinehub/services/tmdb"
)

type movieService interface {
	GetTrending(ctx context.Context, mediaType models.MediaType, window models.TimeWindow, userID string) (models.PagedResult[models.MovieItem], error)
	Search(ctx context.Context, mediaType models.MediaType, query string, page int, userID string) (models.PagedResult[models.MovieItem], error)
	GetAll(ctx context.Context, mediaType models.MediaType, page int, sortBy models.SortOption, withGenres []int, year, userID string) (models.PagedResult[models.MovieItem], error)
	GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool, userID string) (models.MovieDetails, error)
	GetGenres(ctx context.Context, mediaType models.MediaType, forceRefresh bool) ([]models.Genre, error)
	GetCredits(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]models.Cast, error)
	GetVideos(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]models.Video, error)
	SyncFromProvider(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (models.MovieDetails, error)
}

var _ movieService = (*moviesvc.Service)(nil)

// MoviesHandler serves the catalog read path.
type MoviesHandler struct {
	Service movieService
}

func NewMoviesHandler(s movieService) *MoviesHandler {
	return &MoviesHandler{Service: s}
}

func pathMediaType(r *http.Request) (models.MediaType, error) {
	return models.ParseMediaType(mux.Vars(r)["mediaType"])
}

func pathTmdbID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid title id")
	}
	return id, nil
}

// Trending returns the current trending page for a media kind and window.
func (h *MoviesHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType, err := pathMediaType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	window, err := models.ParseTimeWindow(r.URL.Query().Get("window"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.GetTrending(r.Context(), mediaType, window, requestUserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Search runs a free-text provider search.
func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	mediaType, err := pathMediaType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get("query")
	page := queryInt(r, "page", 1)

	result, err := h.Service.Search(r.Context(), mediaType, query, page, requestUserID(r))
	if err != nil {
		if errors.Is(err, moviesvc.ErrInvalidQuery) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetAll returns a filtered, sorted discovery page.
func (h *MoviesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	mediaType, err := pathMediaType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sortBy, err := models.ParseSortOption(r.URL.Query().Get("sortBy"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var withGenres []int
	if raw := r.URL.Query().Get("withGenres"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				http.Error(w, "invalid genre filter", http.StatusBadRequest)
				return
			}
			withGenres = append(withGenres, id)
		}
	}

	page := queryInt(r, "page", 1)
	year := r.URL.Query().Get("year")

	result, err := h.Service.GetAll(r.Context(), mediaType, page, sortBy, withGenres, year, requestUserID(r))
	if err != nil {
		if errors.Is(err, tmdb.ErrInvalidYear) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Details returns the full detail view of one title.
func (h *MoviesHandler) Details(w http.ResponseWriter, r *http.Request) {
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

	details, err := h.Service.GetDetails(r.Context(), mediaType, tmdbID, queryBool(r, "expand"), requestUserID(r))
	if err != nil {
		var statusErr *tmdb.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			http.Error(w, "title not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Sync force-refreshes one title from the provider, bypassing the cache.
func (h *MoviesHandler) Sync(w http.ResponseWriter, r *http.Request) {
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

	details, err := h.Service.SyncFromProvider(r.Context(), mediaType, tmdbID, queryBool(r, "expand"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Credits returns the cast list of one title.
func (h *MoviesHandler) Credits(w http.ResponseWriter, r *http.Request) {
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

	cast, err := h.Service.GetCredits(r.Context(), mediaType, tmdbID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, cast)
}

// Videos returns the trailer and clip list of one title.
func (h *MoviesHandler) Videos(w http.ResponseWriter, r *http.Request) {
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

	videos, err := h.Service.GetVideos(r.Context(), mediaType, tmdbID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}
