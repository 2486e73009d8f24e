// Package movies implements the cache-aside aggregation read path: cache
// check, provider fetch on miss, reconciliation into local storage, and
// per-user interaction overlay.
package movies

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"cinehub/internal/database"
	"cinehub/models"
	"cinehub/services/cache"
	"cinehub/services/tmdb"
	"cinehub/utils"
)

const (
	trendingTTL = 15 * time.Minute
	searchTTL   = 30 * time.Minute
	discoverTTL = 15 * time.Minute
	detailsTTL  = time.Hour
	genresTTL   = 24 * time.Hour

	providerPageSize = 20
	maxQueryLength   = 100
)

// ErrInvalidQuery is returned before any provider call when a search query is
// empty or too long.
var ErrInvalidQuery = errors.New("search query must be between 1 and 100 characters")

type providerClient interface {
	FetchTrending(ctx context.Context, mediaType models.MediaType, window models.TimeWindow) (*tmdb.PagedResponse, error)
	GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (*tmdb.MovieDetails, error)
	Search(ctx context.Context, query string, mediaType models.MediaType, page int) (*tmdb.PagedResponse, error)
	Discover(ctx context.Context, mediaType models.MediaType, sortBy models.SortOption, withGenres []int, year string, page int) (*tmdb.PagedResponse, error)
	GetGenres(ctx context.Context, mediaType models.MediaType) ([]tmdb.GenreResult, error)
	GetCredits(ctx context.Context, mediaType models.MediaType, tmdbID int) (*tmdb.Credits, error)
	GetVideos(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]tmdb.VideoResult, error)
}

var _ providerClient = (*tmdb.Client)(nil)

// Service orchestrates cached catalog reads.
type Service struct {
	provider providerClient
	cache    *cache.Store
	db       *database.DB
}

// NewService creates the aggregation service.
func NewService(provider providerClient, cacheStore *cache.Store, db *database.DB) *Service {
	return &Service{
		provider: provider,
		cache:    cacheStore,
		db:       db,
	}
}

// GetTrending returns one page of trending titles, served from cache within
// the TTL window. When userID is set, interaction flags are overlaid after
// the cached payload is read back.
func (s *Service) GetTrending(ctx context.Context, mediaType models.MediaType, window models.TimeWindow, userID string) (models.PagedResult[models.MovieItem], error) {
	key := fmt.Sprintf("trending_%s:%s", mediaType, window)

	result, err := cache.GetOrSet(ctx, s.cache, key, trendingTTL, func(ctx context.Context) (models.PagedResult[models.MovieItem], error) {
		page, err := s.provider.FetchTrending(ctx, mediaType, window)
		if err != nil {
			return models.PagedResult[models.MovieItem]{}, err
		}
		return toPagedResult(page, mediaType), nil
	})
	if err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}

	if err := s.enrichItems(ctx, userID, result.Data); err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}
	return result, nil
}

// Search returns one page of titles matching the query. The query is
// normalized before it becomes part of the cache key, so accents and spacing
// variants share an entry.
func (s *Service) Search(ctx context.Context, mediaType models.MediaType, query string, page int, userID string) (models.PagedResult[models.MovieItem], error) {
	query = utils.NormalizeQuery(query)
	if query == "" || len(query) > maxQueryLength {
		return models.PagedResult[models.MovieItem]{}, ErrInvalidQuery
	}
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("search:%s:%s:%d", mediaType, query, page)

	result, err := cache.GetOrSet(ctx, s.cache, key, searchTTL, func(ctx context.Context) (models.PagedResult[models.MovieItem], error) {
		resp, err := s.provider.Search(ctx, query, mediaType, page)
		if err != nil {
			return models.PagedResult[models.MovieItem]{}, err
		}
		return toPagedResult(resp, mediaType), nil
	})
	if err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}

	if err := s.enrichItems(ctx, userID, result.Data); err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}
	return result, nil
}

// GetAll returns one discover page. The genre filter is sorted before it is
// encoded into the cache key so filter order does not fragment the cache.
func (s *Service) GetAll(ctx context.Context, mediaType models.MediaType, page int, sortBy models.SortOption, withGenres []int, year, userID string) (models.PagedResult[models.MovieItem], error) {
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("%s_all:%d:%s:%s:%s", mediaType, page, sortBy, genreFilterKey(withGenres), year)

	result, err := cache.GetOrSet(ctx, s.cache, key, discoverTTL, func(ctx context.Context) (models.PagedResult[models.MovieItem], error) {
		resp, err := s.provider.Discover(ctx, mediaType, sortBy, withGenres, year, page)
		if err != nil {
			return models.PagedResult[models.MovieItem]{}, err
		}
		return toPagedResult(resp, mediaType), nil
	})
	if err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}

	if err := s.enrichItems(ctx, userID, result.Data); err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}
	return result, nil
}

// GetDetails returns the full detail view for one title. A cache miss
// triggers a synchronous upsert of the local movie and genre rows before the
// payload is cached, so interactions can reference the title immediately.
func (s *Service) GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool, userID string) (models.MovieDetails, error) {
	key := detailsKey(mediaType, tmdbID)

	cached, ok := cache.Get[models.MovieDetails](s.cache, key)
	if !ok {
		raw, err := s.provider.GetDetails(ctx, mediaType, tmdbID, expand)
		if err != nil {
			return models.MovieDetails{}, err
		}

		movie, err := s.db.Movies.EnsureMovie(ctx, seedFromDetails(raw, mediaType))
		if err != nil {
			return models.MovieDetails{}, fmt.Errorf("reconcile %s %d: %w", mediaType, tmdbID, err)
		}

		genres, err := s.db.Movies.GenresForMovie(ctx, tmdbID)
		if err != nil {
			return models.MovieDetails{}, err
		}

		cached = buildDetails(raw, movie, genres, mediaType)
		cache.Set(s.cache, key, cached, detailsTTL)
	}

	if err := s.enrichDetails(ctx, userID, &cached); err != nil {
		return models.MovieDetails{}, err
	}
	return cached, nil
}

// GetGenres returns the canonical locally stored genre list, fetching and
// synchronizing from the provider on a cache miss or when forceRefresh
// bypasses the cache.
func (s *Service) GetGenres(ctx context.Context, mediaType models.MediaType, forceRefresh bool) ([]models.Genre, error) {
	key := fmt.Sprintf("genres:%s", mediaType)

	if !forceRefresh {
		if cached, ok := cache.Get[[]models.Genre](s.cache, key); ok {
			return cached, nil
		}
	}

	raw, err := s.provider.GetGenres(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	seeds := make([]database.GenreSeed, len(raw))
	for i, g := range raw {
		seeds[i] = database.GenreSeed{TmdbID: g.ID, Name: g.Name}
	}
	if err := s.db.Genres.UpsertAll(ctx, mediaType, seeds); err != nil {
		return nil, fmt.Errorf("sync genres for %s: %w", mediaType, err)
	}

	genres, err := s.db.Genres.ListByMediaType(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	cache.Set(s.cache, key, genres, genresTTL)
	return genres, nil
}

// GetCredits returns the cast for one title.
func (s *Service) GetCredits(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]models.Cast, error) {
	key := fmt.Sprintf("%s:%d:credits", mediaType, tmdbID)

	return cache.GetOrSet(ctx, s.cache, key, detailsTTL, func(ctx context.Context) ([]models.Cast, error) {
		credits, err := s.provider.GetCredits(ctx, mediaType, tmdbID)
		if err != nil {
			return nil, err
		}
		return toCast(credits.Cast), nil
	})
}

// GetVideos returns the promotional videos for one title.
func (s *Service) GetVideos(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]models.Video, error) {
	key := fmt.Sprintf("%s:%d:videos", mediaType, tmdbID)

	return cache.GetOrSet(ctx, s.cache, key, detailsTTL, func(ctx context.Context) ([]models.Video, error) {
		videos, err := s.provider.GetVideos(ctx, mediaType, tmdbID)
		if err != nil {
			return nil, err
		}
		return toVideos(videos), nil
	})
}

// SyncFromProvider force-refreshes one title from the provider, bypassing the
// cache on the way in and invalidating every cached view of the item after
// the upsert commits.
func (s *Service) SyncFromProvider(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (models.MovieDetails, error) {
	raw, err := s.provider.GetDetails(ctx, mediaType, tmdbID, expand)
	if err != nil {
		return models.MovieDetails{}, err
	}

	seed := seedFromDetails(raw, mediaType)
	if _, err := s.db.Movies.EnsureMovie(ctx, seed); err != nil {
		return models.MovieDetails{}, fmt.Errorf("sync %s %d: %w", mediaType, tmdbID, err)
	}
	movie, err := s.db.Movies.Upsert(ctx, seed)
	if err != nil {
		return models.MovieDetails{}, fmt.Errorf("sync %s %d: %w", mediaType, tmdbID, err)
	}

	genres, err := s.db.Movies.GenresForMovie(ctx, tmdbID)
	if err != nil {
		return models.MovieDetails{}, err
	}

	InvalidateItem(s.cache, mediaType, tmdbID)
	log.Printf("[movies] synced %s %d (%s)", mediaType, tmdbID, movie.Title)

	return buildDetails(raw, movie, genres, mediaType), nil
}

// InvalidateItem removes every cached view of one title: the item's key
// namespace plus its details entry.
func InvalidateItem(store *cache.Store, mediaType models.MediaType, tmdbID int) {
	store.RemoveByPrefix(fmt.Sprintf("%s:%d:", mediaType, tmdbID))
	store.Remove(detailsKey(mediaType, tmdbID))
}

func detailsKey(mediaType models.MediaType, tmdbID int) string {
	return fmt.Sprintf("%s_details:%d", mediaType, tmdbID)
}

// enrichItems overlays the requesting user's interaction flags onto a result
// page with one batch lookup. Never cached: flags must reflect current state.
func (s *Service) enrichItems(ctx context.Context, userID string, items []models.MovieItem) error {
	if userID == "" || len(items) == 0 {
		return nil
	}

	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.TmdbID
	}

	interactions, err := s.db.Interactions.ListForUser(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("enrich items for user %s: %w", userID, err)
	}

	for i := range items {
		if interaction, ok := interactions[items[i].TmdbID]; ok {
			items[i].IsLiked = interaction.IsLiked
			items[i].IsDisliked = interaction.IsDisliked
			items[i].IsWatchlisted = interaction.IsWatchlisted
		}
	}
	return nil
}

func (s *Service) enrichDetails(ctx context.Context, userID string, details *models.MovieDetails) error {
	if userID == "" {
		return nil
	}

	interaction, err := s.db.Interactions.Get(ctx, userID, details.TmdbID)
	if errors.Is(err, database.ErrInteractionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enrich details for user %s: %w", userID, err)
	}

	details.IsLiked = interaction.IsLiked
	details.IsDisliked = interaction.IsDisliked
	details.IsWatchlisted = interaction.IsWatchlisted
	return nil
}

// genreFilterKey encodes the genre filter deterministically: sorted and
// comma-joined, so [28,12] and [12,28] share a cache entry.
func genreFilterKey(withGenres []int) string {
	if len(withGenres) == 0 {
		return "all"
	}
	sorted := make([]int, len(withGenres))
	copy(sorted, withGenres)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func toPagedResult(resp *tmdb.PagedResponse, fallback models.MediaType) models.PagedResult[models.MovieItem] {
	items := make([]models.MovieItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		mediaType := fallback
		if r.MediaType != "" {
			if parsed, err := models.ParseMediaType(r.MediaType); err == nil {
				mediaType = parsed
			}
		}
		items = append(items, models.MovieItem{
			TmdbID:       r.ID,
			Title:        r.DisplayTitle(),
			Overview:     r.Overview,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			ReleaseDate:  r.DisplayDate(),
			VoteAverage:  r.VoteAverage,
			MediaType:    mediaType,
			GenreIDs:     r.GenreIDs,
		})
	}
	return models.PagedResult[models.MovieItem]{
		Data:       items,
		Page:       resp.Page,
		PageSize:   providerPageSize,
		TotalPages: resp.TotalPages,
		TotalCount: resp.TotalResults,
	}
}

func seedFromDetails(raw *tmdb.MovieDetails, mediaType models.MediaType) database.MovieSeed {
	seed := database.MovieSeed{
		TmdbID:      raw.ID,
		Title:       raw.DisplayTitle(),
		VoteAverage: raw.VoteAverage,
		PosterPath:  raw.PosterPath,
		ReleaseDate: raw.DisplayDate(),
		MediaType:   mediaType,
	}
	for _, g := range raw.Genres {
		seed.Genres = append(seed.Genres, database.GenreSeed{TmdbID: g.ID, Name: g.Name})
	}
	return seed
}

func buildDetails(raw *tmdb.MovieDetails, movie *models.Movie, genres []models.Genre, mediaType models.MediaType) models.MovieDetails {
	details := models.MovieDetails{
		MovieItem: models.MovieItem{
			TmdbID:       raw.ID,
			Title:        raw.DisplayTitle(),
			Overview:     raw.Overview,
			PosterPath:   raw.PosterPath,
			BackdropPath: raw.BackdropPath,
			ReleaseDate:  raw.DisplayDate(),
			VoteAverage:  raw.VoteAverage,
			MediaType:    mediaType,
		},
		Tagline:   raw.Tagline,
		Runtime:   raw.Runtime,
		Status:    raw.Status,
		VoteCount: raw.VoteCount,
		Genres:    genres,
	}
	if movie != nil {
		details.LikeCount = movie.LikeCount
		details.DislikeCount = movie.DislikeCount
	}
	if raw.Credits != nil {
		details.Cast = toCast(raw.Credits.Cast)
	}
	details.Videos = toVideos(raw.VideoList())
	return details
}

func toCast(raw []tmdb.CastResult) []models.Cast {
	cast := make([]models.Cast, 0, len(raw))
	for _, c := range raw {
		cast = append(cast, models.Cast{
			TmdbID:      c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
			Order:       c.Order,
		})
	}
	return cast
}

func toVideos(raw []tmdb.VideoResult) []models.Video {
	videos := make([]models.Video, 0, len(raw))
	for _, v := range raw {
		videos = append(videos, models.Video{
			Key:      v.Key,
			Name:     v.Name,
			Site:     v.Site,
			Type:     v.Type,
			Official: v.Official,
		})
	}
	return videos
}
