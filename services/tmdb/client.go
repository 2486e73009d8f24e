// Package tmdb implements the rate-limited client for the upstream catalog
// API. All calls go through a shared limiter, a retry policy for transient
// failures, and a circuit breaker that fails fast after repeated outages.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"cinehub/config"
	"cinehub/internal/ratelimit"
	"cinehub/models"
)

const (
	retryAttempts  = 3
	retryBaseDelay = 2 * time.Second

	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second

	posterSize   = "w500"
	backdropSize = "original"
)

// ErrInvalidYear is returned before any network call when a discover year
// filter is not a 4-digit integer between 1900 and 2100.
var ErrInvalidYear = errors.New("year must be a numeric value between 1900 and 2100")

// StatusError reports a non-2xx response from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb api status %d: %s", e.Code, e.Body)
}

// Client handles catalog API interactions under global rate limiting.
type Client struct {
	httpClient   *http.Client
	limiter      *ratelimit.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	apiKey       string
	baseURL      string
	imageBaseURL string
}

// NewClient creates a provider client. The limiter is injected so one
// process-wide budget is shared by every consumer.
func NewClient(settings config.TmdbSettings, limiter *ratelimit.Limiter) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// 4xx responses are answers from a healthy upstream, not outages.
		// Only transient failures count toward opening the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || !transientHTTP(err)
		},
	})

	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      limiter,
		breaker:      breaker,
		apiKey:       settings.APIKey,
		baseURL:      strings.TrimRight(settings.BaseURL, "/"),
		imageBaseURL: settings.ImageBaseURL,
	}
}

// kindURL is the single place provider paths are templated from a media type.
func (c *Client) kindURL(mediaType models.MediaType, parts ...string) string {
	segments := append([]string{"/3", string(mediaType)}, parts...)
	return c.baseURL + strings.Join(segments, "/")
}

func transientHTTP(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb api request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// get fetches a provider URL under the limiter, breaker, and retry policy.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire rate limit: %w", err)
	}
	defer c.limiter.Release()

	return c.breaker.Execute(func() ([]byte, error) {
		return retry.DoWithData(
			func() ([]byte, error) { return c.doRequest(ctx, rawURL) },
			retry.Context(ctx),
			retry.Attempts(retryAttempts),
			retry.Delay(retryBaseDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.RetryIf(transientHTTP),
			retry.LastErrorOnly(true),
		)
	})
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FetchTrending returns one page of trending titles for the window.
func (c *Client) FetchTrending(ctx context.Context, mediaType models.MediaType, window models.TimeWindow) (*PagedResponse, error) {
	rawURL := fmt.Sprintf("%s/3/trending/%s/%s?api_key=%s", c.baseURL, mediaType, window, c.apiKey)

	var page PagedResponse
	if err := c.getJSON(ctx, rawURL, &page); err != nil {
		return nil, fmt.Errorf("fetch trending %s/%s: %w", mediaType, window, err)
	}
	c.enrichPage(&page, mediaType)
	return &page, nil
}

// GetDetails returns the full details for one title. When expand is set, the
// provider is asked to append credits, images, videos, keywords, and external
// IDs in the same response.
func (c *Client) GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (*MovieDetails, error) {
	rawURL := c.kindURL(mediaType, strconv.Itoa(tmdbID)) + "?api_key=" + c.apiKey
	if expand {
		rawURL += "&append_to_response=" + url.QueryEscape("credits,images,videos,keywords,external_ids")
	}

	var details MovieDetails
	if err := c.getJSON(ctx, rawURL, &details); err != nil {
		return nil, fmt.Errorf("get %s details for %d: %w", mediaType, tmdbID, err)
	}
	c.enrichDetails(&details)
	return &details, nil
}

// Search returns one page of titles matching the query.
func (c *Client) Search(ctx context.Context, query string, mediaType models.MediaType, page int) (*PagedResponse, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	rawURL := fmt.Sprintf("%s/3/search/%s?%s", c.baseURL, mediaType, params.Encode())

	var result PagedResponse
	if err := c.getJSON(ctx, rawURL, &result); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	c.enrichPage(&result, mediaType)
	return &result, nil
}

// Discover returns one page of titles matching the sort and filters. The year
// filter is validated before any network call.
func (c *Client) Discover(ctx context.Context, mediaType models.MediaType, sortBy models.SortOption, withGenres []int, year string, page int) (*PagedResponse, error) {
	if year != "" && !validYear(year) {
		return nil, fmt.Errorf("invalid year %q: %w", year, ErrInvalidYear)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", toSortQuery(sortBy))
	if len(withGenres) > 0 {
		ids := make([]string, len(withGenres))
		for i, id := range withGenres {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if year != "" {
		if mediaType == models.MediaTypeTV {
			params.Set("first_air_date_year", year)
		} else {
			params.Set("primary_release_year", year)
		}
	}
	rawURL := fmt.Sprintf("%s/3/discover/%s?%s", c.baseURL, mediaType, params.Encode())

	var result PagedResponse
	if err := c.getJSON(ctx, rawURL, &result); err != nil {
		return nil, fmt.Errorf("discover %s: %w", mediaType, err)
	}
	c.enrichPage(&result, mediaType)
	return &result, nil
}

// GetGenres returns the provider's full genre list for the media type.
func (c *Client) GetGenres(ctx context.Context, mediaType models.MediaType) ([]GenreResult, error) {
	rawURL := fmt.Sprintf("%s/3/genre/%s/list?api_key=%s", c.baseURL, mediaType, c.apiKey)

	var result genreListResponse
	if err := c.getJSON(ctx, rawURL, &result); err != nil {
		return nil, fmt.Errorf("get genres for %s: %w", mediaType, err)
	}
	return result.Genres, nil
}

// GetCredits returns the cast for one title.
func (c *Client) GetCredits(ctx context.Context, mediaType models.MediaType, tmdbID int) (*Credits, error) {
	rawURL := c.kindURL(mediaType, strconv.Itoa(tmdbID), "credits") + "?api_key=" + c.apiKey

	var credits Credits
	if err := c.getJSON(ctx, rawURL, &credits); err != nil {
		return nil, fmt.Errorf("get credits for %s %d: %w", mediaType, tmdbID, err)
	}
	for i := range credits.Cast {
		credits.Cast[i].ProfilePath = c.fullImageURL(credits.Cast[i].ProfilePath, posterSize)
	}
	return &credits, nil
}

// GetVideos returns the promotional videos for one title.
func (c *Client) GetVideos(ctx context.Context, mediaType models.MediaType, tmdbID int) ([]VideoResult, error) {
	rawURL := c.kindURL(mediaType, strconv.Itoa(tmdbID), "videos") + "?api_key=" + c.apiKey

	var result videoListResponse
	if err := c.getJSON(ctx, rawURL, &result); err != nil {
		return nil, fmt.Errorf("get videos for %s %d: %w", mediaType, tmdbID, err)
	}
	return result.Results, nil
}

func (c *Client) enrichPage(page *PagedResponse, mediaType models.MediaType) {
	for i := range page.Results {
		r := &page.Results[i]
		r.PosterPath = c.fullImageURL(r.PosterPath, posterSize)
		r.BackdropPath = c.fullImageURL(r.BackdropPath, backdropSize)
		if r.MediaType == "" && mediaType != models.MediaTypeMulti {
			r.MediaType = string(mediaType)
		}
	}
}

func (c *Client) enrichDetails(details *MovieDetails) {
	details.PosterPath = c.fullImageURL(details.PosterPath, posterSize)
	details.BackdropPath = c.fullImageURL(details.BackdropPath, backdropSize)
	if details.Credits != nil {
		for i := range details.Credits.Cast {
			details.Credits.Cast[i].ProfilePath = c.fullImageURL(details.Credits.Cast[i].ProfilePath, posterSize)
		}
	}
}

// fullImageURL rewrites a relative provider image path against the configured
// image base and size. Already-absolute paths and empty paths pass through.
func (c *Client) fullImageURL(path, size string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return c.imageBaseURL + size + path
}

// toSortQuery translates the internal sort enum to the provider's dotted
// syntax by replacing the last underscore with a dot.
func toSortQuery(sortBy models.SortOption) string {
	s := string(sortBy)
	if i := strings.LastIndex(s, "_"); i >= 0 {
		s = s[:i] + "." + s[i+1:]
	}
	return s
}

func validYear(year string) bool {
	if len(year) != 4 {
		return false
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return n >= 1900 && n <= 2100
}
