package mediainfo

import (
	"testing"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		wantSeries   string
		wantSeason   *int
		wantEpisode  *int
		wantQuality  *string
		wantLanguage *string
	}{
		{
			name:         "full release name",
			filename:     "[Group] Naruto S02E05 [720p][SUB].mkv",
			wantSeries:   "Naruto",
			wantSeason:   intPtr(2),
			wantEpisode:  intPtr(5),
			wantQuality:  strPtr("720p"),
			wantLanguage: strPtr("SUB"),
		},
		{
			name:        "dot separated without extension",
			filename:    "One.Piece.S01E12",
			wantSeries:  "One Piece",
			wantSeason:  intPtr(1),
			wantEpisode: intPtr(12),
		},
		{
			name:       "no structured markers falls back to bare name",
			filename:   "Naruto Shippuden 12.mkv",
			wantSeries: "Naruto Shippuden 12",
		},
		{
			// The lazy pattern backtracks through unbracketed trailing
			// text until the extension digit matches as the episode;
			// everything before it stays in the series name. The substring
			// scan still recovers the quality.
			name:        "unbracketed quality swallows trailing digits",
			filename:    "Bleach S01E01 1080p.mp4",
			wantSeries:  "Bleach S01E01 1080p mp",
			wantEpisode: intPtr(4),
			wantQuality: strPtr("1080p"),
		},
		{
			name:         "dual audio substring scan",
			filename:     "Death Note S01E03 dual audio.mkv",
			wantSeries:   "Death Note",
			wantLanguage: strPtr("DUAL"),
		},
		{
			name:         "dub wins over sub in substring scan",
			filename:     "Frieren E07 dubsub.mkv",
			wantSeries:   "Frieren",
			wantLanguage: strPtr("DUB"),
		},
		{
			name:        "episode without season marker",
			filename:    "Attack on Titan 25 [480p].mkv",
			wantSeries:  "Attack on Titan",
			wantEpisode: intPtr(25),
			wantQuality: strPtr("480p"),
		},
		{
			name:       "empty input",
			filename:   "",
			wantSeries: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.filename)

			if got.SeriesName != tt.wantSeries {
				t.Errorf("SeriesName = %q, want %q", got.SeriesName, tt.wantSeries)
			}
			checkIntField(t, "Season", got.Season, tt.wantSeason)
			checkIntField(t, "Episode", got.Episode, tt.wantEpisode)
			checkStrField(t, "Quality", got.Quality, tt.wantQuality)
			checkStrField(t, "Language", got.Language, tt.wantLanguage)
		})
	}
}

func TestExtractNeverEmptyForNonEmptyInput(t *testing.T) {
	inputs := []string{
		"x.mkv",
		"???",
		"S01E01.mkv",
		"just some words",
	}
	for _, in := range inputs {
		if got := Extract(in); got.SeriesName == "" {
			t.Errorf("Extract(%q).SeriesName is empty, want fallback to filename", in)
		}
	}
}

func TestMerge(t *testing.T) {
	fromName := Tags{
		SeriesName: "Naruto",
		Season:     intPtr(2),
	}
	fromCaption := Tags{
		SeriesName: "Naruto Shippuden",
		Season:     intPtr(9),
		Episode:    intPtr(5),
		Quality:    strPtr("720p"),
	}

	merged := Merge(fromName, fromCaption)

	if merged.SeriesName != "Naruto" {
		t.Errorf("SeriesName = %q, want filename value kept", merged.SeriesName)
	}
	if merged.Season == nil || *merged.Season != 2 {
		t.Errorf("Season = %v, want filename value kept", merged.Season)
	}
	if merged.Episode == nil || *merged.Episode != 5 {
		t.Errorf("Episode = %v, want caption value filled in", merged.Episode)
	}
	if merged.Quality == nil || *merged.Quality != "720p" {
		t.Errorf("Quality = %v, want caption value filled in", merged.Quality)
	}
	if merged.Language != nil {
		t.Errorf("Language = %v, want nil", merged.Language)
	}
}

func TestMergeSeriesFromCaptionWhenNameYieldsNone(t *testing.T) {
	merged := Merge(Tags{}, Tags{SeriesName: "Bleach"})
	if merged.SeriesName != "Bleach" {
		t.Errorf("SeriesName = %q, want caption value", merged.SeriesName)
	}
}

func checkIntField(t *testing.T, field string, got, want *int) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Errorf("%s = %v, want %v", field, got, want)
		return
	}
	if got != nil && *got != *want {
		t.Errorf("%s = %d, want %d", field, *got, *want)
	}
}

func checkStrField(t *testing.T, field string, got, want *string) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Errorf("%s = %v, want %v", field, got, want)
		return
	}
	if got != nil && *got != *want {
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}
