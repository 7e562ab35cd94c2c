package chat

import (
	"fmt"
	"strings"

	"marquee/internal/genres"
	"marquee/internal/locale"
	"marquee/internal/media"
)

const (
	classifierTemperature = 0.2
	filtersTemperature    = 0.2
)

const classifierPrompt = `You are the intent classifier of a movie and TV show recommendation assistant.
Classify the user's latest request, using earlier turns only as context, into exactly one intent:
- "exact_title": the user wants one specific title they name or describe precisely.
- "similar_media": the user wants titles similar to a title they name.
- "filters_parsing": the user asks for titles by genre, IMDb rating, vote count, release years, original language or sort order.
- "free_description": the user describes a mood, theme or plot they feel like watching.
- "error": small talk, unrelated requests, or anything too vague to act on.
Set "media_type" to "movie" or "tv" when the conversation makes it clear, otherwise null.
"message_to_user" is one short friendly sentence in the user's language. For "error", ask a clarifying question.
Reply with a JSON object only:
{"intent": "...", "media_type": "movie" | "tv" | null, "message_to_user": "..."}`

func filtersPrompt(kind media.Kind) string {
	noun := "movies"
	if kind == media.KindTV {
		noun = "TV shows"
	}
	return fmt.Sprintf(`Extract search filters for %s from the conversation. The latest user message wins over earlier ones unless it clearly refines them.
Reply with a JSON object only, omitting any key the user did not ask for:
{"genre_name": one of [%s],
 "min_imdb_rating": number between 0 and 10,
 "min_imdb_votes": integer,
 "min_release_year": integer,
 "max_release_year": integer,
 "original_language": ISO 639-1 code such as "fr", "en", "es", "ja",
 "sort_by": "popularity.desc" | "vote_average.desc" | "vote_count.desc"}`,
		noun, strings.Join(genres.Known(kind), ", "))
}

func mediaKindHint(kind media.Kind) string {
	return fmt.Sprintf("The user has selected '%s' as media type.", kind)
}

func genericFailureMessage(loc string) string {
	if loc == locale.French {
		return "Désolé, quelque chose s'est mal passé de mon côté. Pouvez-vous réessayer ?"
	}
	return "Sorry, something went wrong on my side. Could you try again?"
}

func clarifyKindMessage(loc string) string {
	if loc == locale.French {
		return "Vous cherchez plutôt un film ou une série ?"
	}
	return "Are you looking for a movie or a TV show?"
}
