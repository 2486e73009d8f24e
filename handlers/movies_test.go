package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"cinehub/models"
	moviesvc "cinehub/services/movies"
)

type fakeMovieService struct {
	page    models.PagedResult[models.MovieItem]
	details models.MovieDetails
	genres  []models.Genre
	err     error

	lastUserID string
	lastWindow models.TimeWindow
}

func (f *fakeMovieService) GetTrending(ctx context.Context, mediaType models.MediaType, window models.TimeWindow, userID string) (models.PagedResult[models.MovieItem], error) {
	f.lastUserID = userID
	f.lastWindow = window
	return f.page, f.err
}

func (f *fakeMovieService) Search(ctx context.Context, mediaType models.MediaType, query string, page int, userID string) (models.PagedResult[models.MovieItem], error) {
	return f.page, f.err
}

func (f *fakeMovieService) GetAll(ctx context.Context, mediaType models.MediaType, page int, sortBy models.SortOption, withGenres []int, year, userID string) (models.PagedResult[models.MovieItem], error) {
	return f.page, f.err
}

func (f *fakeMovieService) GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool, userID string) (models.MovieDetails, error) {
	return f.details, f.err
}

func (f *fakeMovieService) GetGenres(ctx context.Context, mediaType models.MediaType, forceRefresh bool) ([]models.Genre, error) {
	return f.genres, f.err
}

func (f *fakeMovieService) GetCredits(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]models.Cast, error) {
	return nil, f.err
}

func (f *fakeMovieService) GetVideos(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]models.Video, error) {
	return nil, f.err
}

func (f *fakeMovieService) SyncFromProvider(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (models.MovieDetails, error) {
	return f.details, f.err
}

func TestTrendingHandler(t *testing.T) {
	svc := &fakeMovieService{
		page: models.NewPagedResult([]models.MovieItem{{TmdbID: 603, Title: "The Matrix"}}, 1, 1, 20),
	}
	handler := NewMoviesHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movie/trending?window=week", nil)
	req.Header.Set(userHeader, "alice")
	req = mux.SetURLVars(req, map[string]string{"mediaType": "movie"})
	rec := httptest.NewRecorder()

	handler.Trending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != "alice" {
		t.Fatalf("expected user forwarded from header, got %q", svc.lastUserID)
	}
	if svc.lastWindow != models.TimeWindowWeek {
		t.Fatalf("expected week window, got %q", svc.lastWindow)
	}

	var resp models.PagedResult[models.MovieItem]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Title != "The Matrix" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTrendingHandlerRejectsBadMediaType(t *testing.T) {
	handler := NewMoviesHandler(&fakeMovieService{})

	req := httptest.NewRequest(http.MethodGet, "/api/books/trending", nil)
	req = mux.SetURLVars(req, map[string]string{"mediaType": "books"})
	rec := httptest.NewRecorder()

	handler.Trending(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestTrendingHandlerDefaultsUser(t *testing.T) {
	svc := &fakeMovieService{}
	handler := NewMoviesHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/movie/trending", nil)
	req = mux.SetURLVars(req, map[string]string{"mediaType": "movie"})
	rec := httptest.NewRecorder()

	handler.Trending(rec, req)

	if svc.lastUserID != models.DefaultUserID {
		t.Fatalf("expected default profile, got %q", svc.lastUserID)
	}
}

func TestSearchHandlerMapsInvalidQuery(t *testing.T) {
	handler := NewMoviesHandler(&fakeMovieService{err: moviesvc.ErrInvalidQuery})

	req := httptest.NewRequest(http.MethodGet, "/api/movie/search?query=", nil)
	req = mux.SetURLVars(req, map[string]string{"mediaType": "movie"})
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid query, got %d", rec.Code)
	}
}

func TestSearchHandlerMapsUpstreamFailure(t *testing.T) {
	handler := NewMoviesHandler(&fakeMovieService{err: errors.New("provider down")})

	req := httptest.NewRequest(http.MethodGet, "/api/movie/search?query=matrix", nil)
	req = mux.SetURLVars(req, map[string]string{"mediaType": "movie"})
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestDetailsHandlerRejectsBadID(t *testing.T) {
	handler := NewMoviesHandler(&fakeMovieService{})

	req := httptest.NewRequest(http.MethodGet, "/api/movie/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"mediaType": "movie", "id": "abc"})
	rec := httptest.NewRecorder()

	handler.Details(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
