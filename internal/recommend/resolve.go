package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"marquee/internal/llm"
	"marquee/internal/logging"
	"marquee/internal/media"
)

// Mode selects how the generative client interprets the user's input.
type Mode int

const (
	ModeExact Mode = iota
	ModeSimilar
	ModeDescription
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeSimilar:
		return "similar"
	case ModeDescription:
		return "description"
	default:
		return "unknown"
	}
}

func (m Mode) temperature() float64 {
	if m == ModeExact {
		return 0.2
	}
	return 0.7
}

// maxSuggestions bounds how many titles one suggestion call may resolve.
const maxSuggestions = 20

// TitleYear is one title suggested by the generative client. Year is zero
// when unknown.
type TitleYear struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// UnmarshalJSON accepts the year as a number, a numeric string or null.
func (t *TitleYear) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title string          `json:"title"`
		Year  json.RawMessage `json:"year"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Title = strings.TrimSpace(raw.Title)
	t.Year = 0
	value := strings.Trim(strings.TrimSpace(string(raw.Year)), `"`)
	if value == "" || value == "null" {
		return nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	t.Year = year
	return nil
}

func taskPrompt(kind media.Kind, mode Mode) string {
	noun := "movies"
	if kind == media.KindTV {
		noun = "TV shows"
	}
	const format = `Reply with a JSON array only, no prose. Each element is {"title": "<original or English title>", "year": <release year or null>}.`
	switch mode {
	case ModeExact:
		return fmt.Sprintf("The user is looking for one specific title among %s. "+
			"Identify the single title they mean, correcting spelling if needed. "+format, noun)
	case ModeSimilar:
		return fmt.Sprintf("The user names a title and wants %s similar to it. "+
			"Start with the named title itself, then suggest up to 15 similar %s by tone, theme and style. "+format, noun, noun)
	default:
		return fmt.Sprintf("The user describes a mood, theme or story. "+
			"Suggest up to 15 well-known %s that fit the description. "+format, noun)
	}
}

// SuggestTitles asks the generative client for titles matching input. Any
// transport or parse failure yields an empty list.
func (s *Service) SuggestTitles(ctx context.Context, kind media.Kind, input string, mode Mode) []TitleYear {
	if s.completer == nil {
		return nil
	}
	conversation := []llm.Message{{Role: llm.RoleUser, Content: input}}
	content, err := s.completer.Complete(ctx, conversation, taskPrompt(kind, mode), mode.temperature())
	if err != nil {
		logging.WarnWithContext(ctx, s.logger, "title suggestion failed", "suggest_failed",
			logging.String("mode", mode.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no titles suggested"),
		)
		return nil
	}
	suggestions, err := decodeSuggestions(content)
	if err != nil {
		logging.WarnWithContext(ctx, s.logger, "title suggestion unparseable", "suggest_malformed",
			logging.String("mode", mode.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no titles suggested"),
		)
		return nil
	}
	out := make([]TitleYear, 0, len(suggestions))
	for _, suggestion := range suggestions {
		if suggestion.Title == "" {
			continue
		}
		out = append(out, suggestion)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// ResolveIDs looks up catalog ids for titles concurrently and returns them in
// suggestion order. Failed or empty lookups and duplicates are dropped.
func (s *Service) ResolveIDs(ctx context.Context, kind media.Kind, titles []TitleYear) []int64 {
	if len(titles) == 0 {
		return []int64{}
	}
	resolved := make([]int64, len(titles))

	var g errgroup.Group
	g.SetLimit(s.settings.Workers)
	for i, title := range titles {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.settings.RequestTimeout)
			defer cancel()
			id, ok, err := s.catalog.IDByTitleYear(callCtx, kind, title.Title, title.Year)
			if err != nil {
				logging.WarnWithContext(ctx, s.logger, "title lookup failed", "title_lookup_failed",
					logging.String("title", title.Title),
					logging.Int("year", title.Year),
					logging.Error(err),
				)
				return nil
			}
			if ok {
				resolved[i] = id
			}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]int64, 0, len(resolved))
	for _, id := range resolved {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return dedupe(ids)
}

// decodeSuggestions accepts an array of suggestions or a lone object.
func decodeSuggestions(content string) ([]TitleYear, error) {
	var suggestions []TitleYear
	err := llm.DecodeJSON(content, &suggestions)
	if err == nil {
		return suggestions, nil
	}
	var single TitleYear
	if llm.DecodeJSON(content, &single) == nil && single.Title != "" {
		return []TitleYear{single}, nil
	}
	return nil, err
}
