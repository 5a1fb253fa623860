package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"autofilter-be/internal/dto"
	"autofilter-be/internal/pkg/logger"
	"autofilter-be/internal/repository/memory"
	"autofilter-be/internal/repository/specification"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/transport"
	"autofilter-be/pkg/store"
)

type ISearchService interface {
	// StartSearch opens (or replaces) the user's session from a free-text
	// query. Sub-minimum queries are silently ignored.
	StartSearch(ctx context.Context, msg *dto.IncomingMessage) error

	// HandleCallback applies a decoded session action. Download actions
	// are not handled here.
	HandleCallback(ctx context.Context, cb *dto.IncomingCallback, action dto.CallbackAction) error
}

// Facets exposed as filter buttons. Series name and episode stay out:
// series cardinality is unbounded and episode is too granular to click
// through.
var buttonFacets = []struct {
	Code  string
	Label string
}{
	{store.FacetSeason, "Season"},
	{store.FacetQuality, "Quality"},
	{store.FacetLanguage, "Language"},
}

type searchService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessionRepo    *memory.SessionRepository
	bot            transport.Transport
	logger         logger.ILogger
	pageSize       int
	minQueryLength int
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	bot transport.Transport,
	log logger.ILogger,
	pageSize int,
	minQueryLength int,
) ISearchService {
	return &searchService{
		uowFactory:     uowFactory,
		sessionRepo:    sessionRepo,
		bot:            bot,
		logger:         log,
		pageSize:       pageSize,
		minQueryLength: minQueryLength,
	}
}

func (s *searchService) StartSearch(ctx context.Context, msg *dto.IncomingMessage) error {
	// Characters, not bytes; a two-rune CJK query is still too short
	query := strings.TrimSpace(msg.Text)
	if utf8.RuneCountInString(query) < s.minQueryLength {
		return nil
	}

	session := &store.Session{
		UserID: msg.UserID,
		ChatID: msg.ChatID,
		Query:  query,
		Page:   1,
		State:  store.StateActive,
	}

	text, buttons, err := s.renderActive(ctx, session)
	if err != nil {
		return err
	}

	messageID, err := s.bot.SendMessage(ctx, session.ChatID, text, buttons)
	if err != nil {
		return err
	}

	session.MessageID = messageID
	s.sessionRepo.Save(session)
	return nil
}

func (s *searchService) HandleCallback(ctx context.Context, cb *dto.IncomingCallback, action dto.CallbackAction) error {
	session, found := s.sessionRepo.Get(cb.UserID)
	if !found {
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "Search expired. Send a new query.")
	}

	switch action.Kind {
	case dto.ActionFacetOpen:
		return s.openFacet(ctx, cb, session, action.Facet)
	case dto.ActionFacetValue:
		return s.setFacetValue(ctx, cb, session, action.Facet, action.Value)
	case dto.ActionFacetClear:
		return s.clearFacet(ctx, cb, session, action.Facet)
	case dto.ActionBack:
		session.State = store.StateActive
		session.PickingFacet = ""
		return s.rerender(ctx, cb, session, "")
	case dto.ActionPageNext:
		return s.pageNext(ctx, cb, session)
	case dto.ActionPagePrev:
		return s.pagePrev(ctx, cb, session)
	case dto.ActionCancel:
		return s.cancel(ctx, cb, session)
	default:
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "Unknown action.")
	}
}

func (s *searchService) openFacet(ctx context.Context, cb *dto.IncomingCallback, session *store.Session, facet string) error {
	column := facetColumn(facet)
	if column == "" {
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "Unknown filter.")
	}

	values, err := s.facetValues(ctx, session, facet)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		// Transition refused, state unchanged
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "No options for this filter.")
	}

	session.State = store.StateFacetPicking
	session.PickingFacet = facet
	return s.rerender(ctx, cb, session, "")
}

func (s *searchService) setFacetValue(ctx context.Context, cb *dto.IncomingCallback, session *store.Session, facet, value string) error {
	applyFilter(&session.Filters, facet, value)
	session.Page = 1
	session.State = store.StateActive
	session.PickingFacet = ""
	return s.rerender(ctx, cb, session, "")
}

func (s *searchService) clearFacet(ctx context.Context, cb *dto.IncomingCallback, session *store.Session, facet string) error {
	clearFilter(&session.Filters, facet)
	session.Page = 1
	session.State = store.StateActive
	session.PickingFacet = ""
	return s.rerender(ctx, cb, session, "")
}

func (s *searchService) pageNext(ctx context.Context, cb *dto.IncomingCallback, session *store.Session) error {
	total, err := s.countMatches(ctx, session)
	if err != nil {
		return err
	}
	if session.Page >= totalPages(total, s.pageSize) {
		// Refused, page unchanged
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "Already on the last page.")
	}
	session.Page++
	return s.rerender(ctx, cb, session, "")
}

func (s *searchService) pagePrev(ctx context.Context, cb *dto.IncomingCallback, session *store.Session) error {
	if session.Page <= 1 {
		// Clamped at the first page
		return s.bot.AnswerCallback(ctx, cb.CallbackID, "Already on the first page.")
	}
	session.Page--
	return s.rerender(ctx, cb, session, "")
}

func (s *searchService) cancel(ctx context.Context, cb *dto.IncomingCallback, session *store.Session) error {
	if err := s.bot.DeleteMessage(ctx, session.ChatID, session.MessageID); err != nil {
		s.logger.Warn("search", "failed to delete results message", map[string]interface{}{
			"chat_id": session.ChatID,
			"error":   err.Error(),
		})
	}
	s.sessionRepo.Delete(session.UserID)
	return s.bot.AnswerCallback(ctx, cb.CallbackID, "Search closed.")
}

// rerender redraws the results message for the session's current state
// and persists the session.
func (s *searchService) rerender(ctx context.Context, cb *dto.IncomingCallback, session *store.Session, toast string) error {
	var (
		text    string
		buttons [][]transport.Button
		err     error
	)
	if session.State == store.StateFacetPicking {
		text, buttons, err = s.renderFacetPicking(ctx, session)
	} else {
		text, buttons, err = s.renderActive(ctx, session)
	}
	if err != nil {
		return err
	}

	if err := s.bot.EditMessage(ctx, session.ChatID, session.MessageID, text, buttons); err != nil {
		return err
	}
	s.sessionRepo.Save(session)
	return s.bot.AnswerCallback(ctx, cb.CallbackID, toast)
}

func (s *searchService) renderActive(ctx context.Context, session *store.Session) (string, [][]transport.Button, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.FileRepository()

	baseSpecs := s.querySpecs(session.Query, session.Filters)

	total, err := repo.Count(ctx, baseSpecs...)
	if err != nil {
		return "", nil, err
	}

	if total == 0 {
		text := fmt.Sprintf("No results for \"%s\".", session.Query)
		if session.Filters.Any() {
			text = fmt.Sprintf("No results for \"%s\" with the active filters.", session.Query)
		}
		return text, nil, nil
	}

	pages := totalPages(total, s.pageSize)
	if session.Page > pages {
		session.Page = pages
	}

	pageSpecs := append(baseSpecs,
		specification.OrderBy{Field: "indexed_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Pagination{Limit: s.pageSize, Offset: (session.Page - 1) * s.pageSize},
	)
	files, err := repo.FindAll(ctx, pageSpecs...)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Results for \"%s\"", session.Query)
	if desc := filterSummary(session.Filters); desc != "" {
		fmt.Fprintf(&sb, " [%s]", desc)
	}
	fmt.Fprintf(&sb, "\n%d file(s), page %d/%d\n", total, session.Page, pages)

	var buttons [][]transport.Button
	for _, f := range files {
		buttons = append(buttons, []transport.Button{{
			Text: fmt.Sprintf("%s (%s)", f.FileName, formatSize(f.Size)),
			Data: dto.DownloadData(f.FileRef),
		}})
	}

	var facetRow []transport.Button
	for _, facet := range buttonFacets {
		values, err := s.facetValues(ctx, session, facet.Code)
		if err != nil {
			return "", nil, err
		}
		if len(values) == 0 {
			continue
		}
		label := facet.Label
		if current := filterValue(session.Filters, facet.Code); current != "" {
			label = fmt.Sprintf("%s: %s", facet.Label, current)
		}
		facetRow = append(facetRow, transport.Button{
			Text: label,
			Data: dto.FacetOpenData(facet.Code),
		})
	}
	if len(facetRow) > 0 {
		buttons = append(buttons, facetRow)
	}

	if pages > 1 {
		buttons = append(buttons, []transport.Button{
			{Text: "◀ Prev", Data: dto.PagePrevData()},
			{Text: "Next ▶", Data: dto.PageNextData()},
		})
	}
	buttons = append(buttons, []transport.Button{
		{Text: "✖ Close", Data: dto.CancelData()},
	})

	return sb.String(), buttons, nil
}

func (s *searchService) renderFacetPicking(ctx context.Context, session *store.Session) (string, [][]transport.Button, error) {
	facet := session.PickingFacet
	values, err := s.facetValues(ctx, session, facet)
	if err != nil {
		return "", nil, err
	}

	text := fmt.Sprintf("Pick a %s for \"%s\":", facetLabel(facet), session.Query)

	var buttons [][]transport.Button
	for _, v := range values {
		buttons = append(buttons, []transport.Button{{
			Text: v,
			Data: dto.FacetValueData(facet, v),
		}})
	}
	if filterValue(session.Filters, facet) != "" {
		buttons = append(buttons, []transport.Button{{
			Text: "Clear filter",
			Data: dto.FacetClearData(facet),
		}})
	}
	buttons = append(buttons, []transport.Button{{
		Text: "◀ Back",
		Data: dto.BackData(),
	}})

	return text, buttons, nil
}

// facetValues lists the candidate values for a facet, conditioned on
// the query and every other active filter but never on the facet
// itself.
func (s *searchService) facetValues(ctx context.Context, session *store.Session, facet string) ([]string, error) {
	column := facetColumn(facet)
	if column == "" {
		return nil, nil
	}

	others := session.Filters
	clearFilter(&others, facet)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.FileRepository().DistinctValues(ctx, column, s.querySpecs(session.Query, others)...)
}

func (s *searchService) countMatches(ctx context.Context, session *store.Session) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.FileRepository().Count(ctx, s.querySpecs(session.Query, session.Filters)...)
}

func (s *searchService) querySpecs(query string, filters store.SearchFilters) []specification.Specification {
	var specs []specification.Specification
	if query != "" {
		specs = append(specs, specification.TextQuery{Query: query})
	}
	return append(specs, specification.FromFilters(filters)...)
}

func facetColumn(facet string) string {
	switch facet {
	case store.FacetSeason:
		return "season"
	case store.FacetEpisode:
		return "episode"
	case store.FacetQuality:
		return "quality"
	case store.FacetLanguage:
		return "language"
	}
	return ""
}

func facetLabel(facet string) string {
	for _, f := range buttonFacets {
		if f.Code == facet {
			return strings.ToLower(f.Label)
		}
	}
	return "filter"
}

// applyFilter sets one filter field from its callback value. Malformed
// numeric values are ignored, leaving the field unset.
func applyFilter(f *store.SearchFilters, facet, value string) {
	switch facet {
	case store.FacetSeason:
		if v, err := strconv.Atoi(value); err == nil {
			f.Season = &v
		} else {
			f.Season = nil
		}
	case store.FacetEpisode:
		if v, err := strconv.Atoi(value); err == nil {
			f.Episode = &v
		} else {
			f.Episode = nil
		}
	case store.FacetQuality:
		f.Quality = &value
	case store.FacetLanguage:
		f.Language = &value
	}
}

func clearFilter(f *store.SearchFilters, facet string) {
	switch facet {
	case store.FacetSeason:
		f.Season = nil
	case store.FacetEpisode:
		f.Episode = nil
	case store.FacetQuality:
		f.Quality = nil
	case store.FacetLanguage:
		f.Language = nil
	}
}

func filterValue(f store.SearchFilters, facet string) string {
	switch facet {
	case store.FacetSeason:
		if f.Season != nil {
			return strconv.Itoa(*f.Season)
		}
	case store.FacetEpisode:
		if f.Episode != nil {
			return strconv.Itoa(*f.Episode)
		}
	case store.FacetQuality:
		if f.Quality != nil {
			return *f.Quality
		}
	case store.FacetLanguage:
		if f.Language != nil {
			return *f.Language
		}
	}
	return ""
}

func filterSummary(f store.SearchFilters) string {
	var parts []string
	if f.Season != nil {
		parts = append(parts, fmt.Sprintf("season %d", *f.Season))
	}
	if f.Episode != nil {
		parts = append(parts, fmt.Sprintf("episode %d", *f.Episode))
	}
	if f.Quality != nil {
		parts = append(parts, *f.Quality)
	}
	if f.Language != nil {
		parts = append(parts, *f.Language)
	}
	return strings.Join(parts, ", ")
}

func totalPages(total int64, pageSize int) int {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMG"[exp])
}
