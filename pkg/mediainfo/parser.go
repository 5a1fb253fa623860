package mediainfo

import (
	"regexp"
	"strconv"
	"strings"
)

// Tags is the structured metadata recovered from a media filename or
// caption. SeriesName is always populated by Extract; the other fields
// stay nil when nothing was recovered.
type Tags struct {
	SeriesName string
	Season     *int
	Episode    *int
	Quality    *string
	Language   *string
}

// Common release patterns:
//   [Source] Series Name S01E01 [1080p][SUB].mkv
//   Series.Name.S02.05.[720p].mp4
var (
	// series candidate, optional season marker, episode number, optional
	// bracketed quality and language tags
	primaryPattern = regexp.MustCompile(`(?i)^(.*?)(?:s(\d+))?[ex]?(\d+)(?:.*?\[(\d{3,4}p)\].*?)?(?:.*?\[(sub|dub)\].*?)?$`)

	// everything before the first season/episode marker
	fallbackPattern = regexp.MustCompile(`(?i)^(.*?)(?:s\d+|[ex]\d+)`)

	// leading release-group tag, e.g. "[HorribleSubs] "
	groupTagPattern = regexp.MustCompile(`^\[.*?\]\s*`)
)

// Extract parses a filename (or caption) into structured tags. It is
// total: the worst case returns the extension-stripped name as the
// series and leaves every other field empty.
func Extract(name string) Tags {
	// Dots and underscores are separators in release names
	normalized := strings.NewReplacer(".", " ", "_", " ").Replace(name)

	var tags Tags

	if m := primaryPattern.FindStringSubmatch(normalized); m != nil {
		tags.SeriesName = cleanSeriesName(m[1])
		if m[2] != "" {
			if v, err := strconv.Atoi(m[2]); err == nil {
				tags.Season = &v
			}
		}
		if m[3] != "" {
			if v, err := strconv.Atoi(m[3]); err == nil {
				tags.Episode = &v
			}
		}
		if m[4] != "" {
			q := strings.ToLower(m[4])
			tags.Quality = &q
		}
		if m[5] != "" {
			l := strings.ToUpper(m[5])
			tags.Language = &l
		}
	}

	if tags.SeriesName == "" {
		if m := fallbackPattern.FindStringSubmatch(normalized); m != nil {
			tags.SeriesName = cleanSeriesName(m[1])
		}
	}

	if tags.SeriesName == "" && name != "" {
		tags.SeriesName = strings.TrimSpace(trimExtension(name))
	}

	// Substring scan on the raw lower-cased name fills gaps the structured
	// match left; it never overrides a structured match.
	lower := strings.ToLower(name)
	if tags.Quality == nil {
		for _, q := range []string{"1080p", "720p", "480p"} {
			if strings.Contains(lower, q) {
				quality := q
				tags.Quality = &quality
				break
			}
		}
	}
	if tags.Language == nil {
		var lang string
		switch {
		case strings.Contains(lower, "dual audio"):
			lang = "DUAL"
		case strings.Contains(lower, "dub"):
			lang = "DUB"
		case strings.Contains(lower, "sub"):
			lang = "SUB"
		}
		if lang != "" {
			tags.Language = &lang
		}
	}

	return tags
}

// Merge fills fields missing from the filename-derived tags with the
// caption-derived ones, field by field. A populated field is never
// overwritten; the caption's series name is used only when the filename
// yielded none.
func Merge(fromName, fromCaption Tags) Tags {
	merged := fromName
	if merged.SeriesName == "" {
		merged.SeriesName = fromCaption.SeriesName
	}
	if merged.Season == nil {
		merged.Season = fromCaption.Season
	}
	if merged.Episode == nil {
		merged.Episode = fromCaption.Episode
	}
	if merged.Quality == nil {
		merged.Quality = fromCaption.Quality
	}
	if merged.Language == nil {
		merged.Language = fromCaption.Language
	}
	return merged
}

func cleanSeriesName(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	candidate = groupTagPattern.ReplaceAllString(candidate, "")
	return strings.TrimSpace(candidate)
}

func trimExtension(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}
