package dto

import "strings"

// ActionKind enumerates the callback payload vocabulary. Payloads are
// decoded once at the boundary; services never see raw strings.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionDownload
	ActionFacetOpen
	ActionFacetValue
	ActionFacetClear
	ActionPageNext
	ActionPagePrev
	ActionBack
	ActionCancel
)

// CallbackAction is the decoded form of a callback payload.
type CallbackAction struct {
	Kind    ActionKind
	FileRef string // ActionDownload
	Facet   string // ActionFacetOpen, ActionFacetValue, ActionFacetClear
	Value   string // ActionFacetValue
}

// Payload grammar. The clear marker cannot collide with real facet
// values because none start with a tilde.
const (
	downloadPrefix   = "dl_"
	facetOpenPrefix  = "f_"
	facetValuePrefix = "fv_"
	clearMarker      = "~clear"

	payloadPageNext = "pg_next"
	payloadPagePrev = "pg_prev"
	payloadBack     = "back"
	payloadCancel   = "cancel"
)

// ParseCallback decodes a raw callback payload. Unrecognized payloads
// come back as ActionUnknown and are ignored upstream.
func ParseCallback(data string) CallbackAction {
	switch data {
	case payloadPageNext:
		return CallbackAction{Kind: ActionPageNext}
	case payloadPagePrev:
		return CallbackAction{Kind: ActionPagePrev}
	case payloadBack:
		return CallbackAction{Kind: ActionBack}
	case payloadCancel:
		return CallbackAction{Kind: ActionCancel}
	}

	if ref, ok := strings.CutPrefix(data, downloadPrefix); ok && ref != "" {
		return CallbackAction{Kind: ActionDownload, FileRef: ref}
	}

	if rest, ok := strings.CutPrefix(data, facetValuePrefix); ok {
		// Facet codes are single segment; the value may itself contain
		// underscores, so split only at the first one.
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			if parts[1] == clearMarker {
				return CallbackAction{Kind: ActionFacetClear, Facet: parts[0]}
			}
			return CallbackAction{Kind: ActionFacetValue, Facet: parts[0], Value: parts[1]}
		}
		return CallbackAction{Kind: ActionUnknown}
	}

	if facet, ok := strings.CutPrefix(data, facetOpenPrefix); ok && facet != "" {
		return CallbackAction{Kind: ActionFacetOpen, Facet: facet}
	}

	return CallbackAction{Kind: ActionUnknown}
}

// Encoders for building inline keyboards.

func DownloadData(fileRef string) string {
	return downloadPrefix + fileRef
}

func FacetOpenData(facet string) string {
	return facetOpenPrefix + facet
}

func FacetValueData(facet, value string) string {
	return facetValuePrefix + facet + "_" + value
}

func FacetClearData(facet string) string {
	return facetValuePrefix + facet + "_" + clearMarker
}

func PageNextData() string { return payloadPageNext }
func PagePrevData() string { return payloadPagePrev }
func BackData() string     { return payloadBack }
func CancelData() string   { return payloadCancel }
