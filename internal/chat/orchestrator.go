package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"marquee/internal/llm"
	"marquee/internal/locale"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/metrics"
	"marquee/internal/store"
)

// DefaultContextWindow is how many trailing transcript turns the classifier sees.
const DefaultContextWindow = 4

// ErrClassification wraps classifier transport and parse failures. The user
// receives a generic reply; the wrapped cause is for logs only.
var ErrClassification = errors.New("chat: intent classification failed")

// ErrEmptyQuery rejects blank user messages.
var ErrEmptyQuery = errors.New("chat: query required")

// Recommender is the pipeline surface the orchestrator dispatches to.
type Recommender interface {
	ByFilters(ctx context.Context, userID int64, kind media.Kind, filters media.Filters, locale string) ([]media.Card, error)
	Similar(ctx context.Context, userID int64, kind media.Kind, query, locale string) ([]media.Card, error)
	ByTitle(ctx context.Context, kind media.Kind, query, locale string) ([]media.Card, error)
	FromDescription(ctx context.Context, userID int64, kind media.Kind, query, locale string) ([]media.Card, error)
}

// Sessions persists chat transcripts.
type Sessions interface {
	GetOrCreateSession(ctx context.Context, userID int64, sessionID string) (*store.Session, error)
	SaveConversation(ctx context.Context, session *store.Session) error
}

var _ Sessions = (*store.Store)(nil)

// ChatRequest is one user turn. An empty SessionID starts a new session.
// MediaKind is the client-side selection, if any.
type ChatRequest struct {
	SessionID string     `json:"session_id"`
	UserID    int64      `json:"-"`
	Query     string     `json:"query"`
	Locale    string     `json:"-"`
	MediaKind media.Kind `json:"media_kind,omitempty"`
}

// Reply is what the user sees for one turn.
type Reply struct {
	SessionID string         `json:"session_id"`
	Message   string         `json:"message"`
	Results   []media.Card   `json:"results"`
	Filters   *media.Filters `json:"filters,omitempty"`
	MediaKind media.Kind     `json:"media_kind,omitempty"`
	Intent    Intent         `json:"intent"`
}

type classification struct {
	Intent        string  `json:"intent"`
	MediaType     *string `json:"media_type"`
	MediaKind     *string `json:"media_kind"`
	MessageToUser string  `json:"message_to_user"`
}

// turn carries the state a handler needs.
type turn struct {
	req    ChatRequest
	kind   media.Kind
	window []llm.Message
}

type handlerResult struct {
	cards   []media.Card
	filters *media.Filters
}

type handler func(ctx context.Context, t turn) (handlerResult, error)

// Orchestrator runs the classify → dispatch → reply cycle.
type Orchestrator struct {
	sessions    Sessions
	recommender Recommender
	completer   llm.Completer
	window      int
	logger      *slog.Logger
	handlers    map[Intent]handler
}

// New builds an Orchestrator. A non-positive window uses DefaultContextWindow.
func New(sessions Sessions, recommender Recommender, completer llm.Completer, window int, logger *slog.Logger) *Orchestrator {
	if window <= 0 {
		window = DefaultContextWindow
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		sessions:    sessions,
		recommender: recommender,
		completer:   completer,
		window:      window,
		logger:      logging.NewComponentLogger(logger, "chat"),
	}
	o.handlers = map[Intent]handler{
		IntentExactTitle:      o.handleExactTitle,
		IntentSimilarMedia:    o.handleSimilar,
		IntentFiltersParsing:  o.handleFilters,
		IntentFreeDescription: o.handleDescription,
	}
	return o
}

// Chat handles one user turn. On a classifier failure it returns the generic
// reply together with an error wrapping ErrClassification; the user turn and
// the generic reply are both saved so turns keep alternating.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (Reply, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return Reply{}, ErrEmptyQuery
	}
	req.Locale = locale.Normalize(req.Locale)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	ctx = logging.WithSession(ctx, req.SessionID, req.UserID)
	logger := logging.WithContext(ctx, o.logger)

	session, err := o.sessions.GetOrCreateSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	session.Conversation = append(session.Conversation, store.Turn{Role: llm.RoleUser, Content: req.Query})
	window := o.contextWindow(session.Conversation)

	class, intent, err := o.classify(ctx, window, req.MediaKind)
	if err != nil {
		metrics.RecordIntent(intentUnclassified)
		logging.WarnWithContext(ctx, o.logger, "intent classification failed", "classification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "generic reply sent"),
		)
		message := genericFailureMessage(req.Locale)
		session.Conversation = append(session.Conversation, store.Turn{Role: llm.RoleAssistant, Content: message})
		if saveErr := o.sessions.SaveConversation(ctx, session); saveErr != nil {
			return Reply{}, errors.Join(fmt.Errorf("%w: %w", ErrClassification, err), saveErr)
		}
		return Reply{
			SessionID: req.SessionID,
			Message:   message,
			Results:   []media.Card{},
			Intent:    IntentError,
		}, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	metrics.RecordIntent(intent.String())

	kind := resolveKind(class, req.MediaKind)
	reply := Reply{
		SessionID: req.SessionID,
		Message:   strings.TrimSpace(class.MessageToUser),
		Results:   []media.Card{},
		MediaKind: kind,
		Intent:    intent,
	}

	if h, ok := o.handlers[intent]; ok && kind.Valid() {
		res, err := h(ctx, turn{req: req, kind: kind, window: window})
		if err != nil {
			logging.ErrorWithContext(ctx, o.logger, "recommendation failed", "pipeline_failed",
				logging.String("intent", intent.String()),
				logging.Error(err),
			)
			return Reply{}, fmt.Errorf("%s: %w", intent, err)
		}
		if res.cards != nil {
			reply.Results = res.cards
		}
		reply.Filters = res.filters
	} else if intent != IntentError && !kind.Valid() {
		reply.Message = clarifyKindMessage(req.Locale)
	}
	if reply.Message == "" {
		reply.Message = clarifyKindMessage(req.Locale)
	}

	session.Conversation = append(session.Conversation, store.Turn{Role: llm.RoleAssistant, Content: reply.Message})
	if err := o.sessions.SaveConversation(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	logger.Info("chat turn complete",
		logging.String("intent", intent.String()),
		logging.String(logging.FieldMediaKind, string(kind)),
		logging.Int("results", len(reply.Results)),
	)
	return reply, nil
}

// contextWindow returns the trailing turns the classifier sees.
func (o *Orchestrator) contextWindow(conversation []store.Turn) []llm.Message {
	start := max(0, len(conversation)-o.window)
	window := make([]llm.Message, 0, len(conversation)-start)
	for _, t := range conversation[start:] {
		window = append(window, llm.Message{Role: t.Role, Content: t.Content})
	}
	return window
}

func (o *Orchestrator) classify(ctx context.Context, window []llm.Message, selected media.Kind) (classification, Intent, error) {
	messages := window
	if selected.Valid() {
		messages = append(append([]llm.Message(nil), window...), llm.Message{Role: llm.RoleUser, Content: mediaKindHint(selected)})
	}
	content, err := o.completer.Complete(ctx, messages, classifierPrompt, classifierTemperature)
	if err != nil {
		return classification{}, "", err
	}
	var class classification
	if err := llm.DecodeJSON(content, &class); err != nil {
		return classification{}, "", err
	}
	intent, ok := ParseIntent(class.Intent)
	if !ok {
		return classification{}, "", fmt.Errorf("unknown intent %q", class.Intent)
	}
	return class, intent, nil
}

// resolveKind prefers the classifier's media type and falls back to the
// client's selection.
func resolveKind(class classification, selected media.Kind) media.Kind {
	for _, candidate := range []*string{class.MediaType, class.MediaKind} {
		if candidate == nil {
			continue
		}
		if kind, err := media.ParseKind(*candidate); err == nil {
			return kind
		}
	}
	if selected.Valid() {
		return selected
	}
	return ""
}
