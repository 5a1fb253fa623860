package store

// SearchFilters is the facet filter set of a session. Nil fields impose
// no constraint.
type SearchFilters struct {
	SeriesName *string
	Season     *int
	Episode    *int
	Quality    *string
	Language   *string
}

// Any reports whether at least one filter is set.
func (f SearchFilters) Any() bool {
	return f.SeriesName != nil || f.Season != nil || f.Episode != nil ||
		f.Quality != nil || f.Language != nil
}

// Session is the active per-user search state in memory. One session per
// user, last-write-wins; a new qualifying text message replaces it wholesale.
type Session struct {
	UserID  int64
	ChatID  int64
	Query   string
	Filters SearchFilters
	Page    int
	State   string // "ACTIVE" | "FACET_PICKING"

	// Facet whose value list is currently shown (FACET_PICKING only)
	PickingFacet string

	// Message carrying the results; edited in place on every re-render
	MessageID int64
}

const (
	StateActive       = "ACTIVE"
	StateFacetPicking = "FACET_PICKING"
)

// Facet codes used in callback payloads. Series name and episode are not
// exposed as button facets (cardinality too high, episode too granular).
const (
	FacetSeason   = "s"
	FacetEpisode  = "e"
	FacetQuality  = "q"
	FacetLanguage = "l"
)
