package recommend

import (
	"context"

	"marquee/internal/locale"
	"marquee/internal/media"
	"marquee/internal/store"
)

// ReadOrdered batch-reads cached rows and returns them in the order of ids.
// Ids without a row are dropped.
func (s *Service) ReadOrdered(ctx context.Context, kind media.Kind, ids []int64) ([]store.CachedMedia, error) {
	if len(ids) == 0 {
		return []store.CachedMedia{}, nil
	}
	rows, err := s.store.GetByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	return orderByIDs(rows, ids), nil
}

func orderByIDs(rows []store.CachedMedia, ids []int64) []store.CachedMedia {
	byID := make(map[int64]store.CachedMedia, len(rows))
	for _, row := range rows {
		byID[row.TMDBID] = row
	}
	ordered := make([]store.CachedMedia, 0, len(rows))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			continue
		}
		ordered = append(ordered, row)
		delete(byID, id)
	}
	return ordered
}

// Project builds the card for loc, falling back to the other locale for any
// empty localized field.
func Project(m store.CachedMedia, loc string) media.Card {
	loc = locale.Normalize(loc)
	pick := func(en, fr string) string {
		primary, fallback := en, fr
		if loc == locale.French {
			primary, fallback = fr, en
		}
		if primary != "" {
			return primary
		}
		return fallback
	}
	names := m.GenreNamesEN
	if loc == locale.French && len(m.GenreNamesFR) > 0 || len(names) == 0 {
		names = m.GenreNamesFR
	}
	if names == nil {
		names = []string{}
	}
	return media.Card{
		TMDBID:      m.TMDBID,
		Kind:        m.Kind,
		IMDbID:      m.IMDbID,
		Title:       pick(m.TitleEN, m.TitleFR),
		GenreNames:  names,
		ReleaseYear: m.ReleaseYear,
		IMDbRating:  m.IMDbRating,
		IMDbVotes:   m.IMDbVotes,
		PosterURL:   m.PosterURL,
		TrailerURL:  pick(m.TrailerURLEN, m.TrailerURLFR),
		Overview:    pick(m.OverviewEN, m.OverviewFR),
	}
}

// ProjectAll projects rows in order.
func ProjectAll(rows []store.CachedMedia, loc string) []media.Card {
	cards := make([]media.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, Project(row, loc))
	}
	return cards
}
