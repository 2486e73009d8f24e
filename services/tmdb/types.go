package tmdb

// PagedResponse is the provider's pagination envelope.
type PagedResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is one listing entry. Movie titles arrive under "title" and
// "release_date"; TV titles under "name" and "first_air_date".
type MovieResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
}

// DisplayTitle returns the movie or TV title, whichever is present.
func (m MovieResult) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// DisplayDate returns the release or first-air date, whichever is present.
func (m MovieResult) DisplayDate() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// MovieDetails is the provider's full detail payload, optionally expanded
// with credits and videos via append_to_response.
type MovieDetails struct {
	ID           int                `json:"id"`
	Title        string             `json:"title,omitempty"`
	Name         string             `json:"name,omitempty"`
	Overview     string             `json:"overview,omitempty"`
	Tagline      string             `json:"tagline,omitempty"`
	PosterPath   string             `json:"poster_path,omitempty"`
	BackdropPath string             `json:"backdrop_path,omitempty"`
	ReleaseDate  string             `json:"release_date,omitempty"`
	FirstAirDate string             `json:"first_air_date,omitempty"`
	VoteAverage  float64            `json:"vote_average"`
	VoteCount    int                `json:"vote_count"`
	Runtime      int                `json:"runtime,omitempty"`
	Status       string             `json:"status,omitempty"`
	Genres       []GenreResult      `json:"genres,omitempty"`
	Credits      *Credits           `json:"credits,omitempty"`
	Videos       *videoListResponse `json:"videos,omitempty"`
}

// DisplayTitle returns the movie or TV title, whichever is present.
func (m MovieDetails) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// DisplayDate returns the release or first-air date, whichever is present.
func (m MovieDetails) DisplayDate() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// VideoList returns the expanded videos, or nil when not requested.
func (m MovieDetails) VideoList() []VideoResult {
	if m.Videos == nil {
		return nil
	}
	return m.Videos.Results
}

// GenreResult is one provider genre entry.
type GenreResult struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []GenreResult `json:"genres"`
}

// Credits holds the credited cast for a title.
type Credits struct {
	ID   int          `json:"id,omitempty"`
	Cast []CastResult `json:"cast"`
}

// CastResult is one credited cast member.
type CastResult struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

type videoListResponse struct {
	Results []VideoResult `json:"results"`
}

// VideoResult is one promotional video entry.
type VideoResult struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}
