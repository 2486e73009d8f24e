package models

import "fmt"

// MediaType discriminates between the two catalog kinds tracked locally, plus
// the provider's cross-kind search bucket.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeMulti MediaType = "multi"
)

// ParseMediaType validates a raw media type string from a request path.
func ParseMediaType(raw string) (MediaType, error) {
	switch MediaType(raw) {
	case MediaTypeMovie, MediaTypeTV, MediaTypeMulti:
		return MediaType(raw), nil
	default:
		return "", fmt.Errorf("invalid media type %q", raw)
	}
}

// Storable reports whether entities of this media type are persisted locally.
// Multi is a search-only bucket and never reaches the entity store.
func (m MediaType) Storable() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// TimeWindow selects the trending aggregation window on the provider.
type TimeWindow string

const (
	TimeWindowDay  TimeWindow = "day"
	TimeWindowWeek TimeWindow = "week"
)

// ParseTimeWindow defaults to the daily window when raw is empty.
func ParseTimeWindow(raw string) (TimeWindow, error) {
	switch TimeWindow(raw) {
	case "":
		return TimeWindowDay, nil
	case TimeWindowDay, TimeWindowWeek:
		return TimeWindow(raw), nil
	default:
		return "", fmt.Errorf("invalid time window %q", raw)
	}
}

// SortOption is the internal sort enum for discover queries. Values use
// underscore separators; the provider client translates the trailing
// underscore to the provider's dotted syntax.
type SortOption string

const (
	SortPopularityDesc  SortOption = "popularity_desc"
	SortPopularityAsc   SortOption = "popularity_asc"
	SortReleaseDateDesc SortOption = "primary_release_date_desc"
	SortReleaseDateAsc  SortOption = "primary_release_date_asc"
	SortVoteAverageDesc SortOption = "vote_average_desc"
	SortVoteAverageAsc  SortOption = "vote_average_asc"
	SortTitleAsc        SortOption = "original_title_asc"
)

// ParseSortOption defaults to popularity descending when raw is empty.
func ParseSortOption(raw string) (SortOption, error) {
	switch SortOption(raw) {
	case "":
		return SortPopularityDesc, nil
	case SortPopularityDesc, SortPopularityAsc,
		SortReleaseDateDesc, SortReleaseDateAsc,
		SortVoteAverageDesc, SortVoteAverageAsc,
		SortTitleAsc:
		return SortOption(raw), nil
	default:
		return "", fmt.Errorf("invalid sort option %q", raw)
	}
}
