package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zhouzirui/objectchat/backend/internal/model/chat"
	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
	"github.com/zhouzirui/objectchat/backend/internal/service/ai"
)

// NoObjectPrompt is returned whenever no object is active and the message is
// not a usable switch command.
const NoObjectPrompt = "Please specify an object to chat with by saying 'Chat with [object name]'"

// Resolver maps an object name to a persona.
type Resolver interface {
	Resolve(ctx context.Context, objectName string) persona.Persona
}

// Completion is the gateway capability the orchestrator consumes.
type Completion interface {
	Available() bool
	Complete(ctx context.Context, prompt string, p ai.Params) (string, error)
}

// ReplyBank produces a canned reply for an object. Never fails.
type ReplyBank interface {
	Response(objectName string) string
}

// SessionStore is the persistence surface the orchestrator needs for
// authenticated turns.
type SessionStore interface {
	CreateSession(ctx context.Context, s chat.Session) error
	GetSession(ctx context.Context, sessionID, userID string) (chat.Session, error)
	AppendMessages(ctx context.Context, sessionID string, msgs []chat.Message) error
	Transcript(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// TurnRequest is one inbound chat turn.
type TurnRequest struct {
	Message   string
	ClientID  string // anonymous context key; issued when empty
	UserID    string // non-empty for authenticated callers
	SessionID string
}

// TurnResult carries the chosen reply and the updated conversation pointers.
// PersistErr reports a best-effort persistence failure that did not suppress
// the reply.
type TurnResult struct {
	Reply      string
	Object     string
	SessionID  string
	ClientID   string
	PersistErr error
}

// Service is the conversation orchestrator.
type Service struct {
	resolver  Resolver
	completer Completion
	bank      ReplyBank
	contexts  ContextStore
	sessions  SessionStore

	locks keyedLocks

	tracer        trace.Tracer
	fallbackCount metric.Int64Counter
	switchCount   metric.Int64Counter
}

// NewService wires the orchestrator. sessions may be nil when running without
// relational persistence; authenticated turns then behave as anonymous ones.
func NewService(resolver Resolver, completer Completion, bank ReplyBank, contexts ContextStore, sessions SessionStore) *Service {
	meter := otel.Meter("objectchat/chat")
	fallbackCount, _ := meter.Int64Counter("chat.template_fallbacks")
	switchCount, _ := meter.Int64Counter("chat.object_switches")

	return &Service{
		resolver:      resolver,
		completer:     completer,
		bank:          bank,
		contexts:      contexts,
		sessions:      sessions,
		locks:         keyedLocks{entries: make(map[string]*lockEntry)},
		tracer:        otel.Tracer("objectchat/chat"),
		fallbackCount: fallbackCount,
		switchCount:   switchCount,
	}
}

// HandleTurn runs one synchronous chat turn.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	ctx, span := s.tracer.Start(ctx, "chat.turn")
	defer span.End()

	if req.UserID != "" && s.sessions != nil {
		span.SetAttributes(attribute.Bool("chat.authenticated", true))
		return s.handleAuthenticatedTurn(ctx, req)
	}
	return s.handleAnonymousTurn(ctx, req)
}

func (s *Service) handleAnonymousTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	// One in-flight turn per client.
	release := s.locks.acquire("anon:" + clientID)
	defer release()

	convCtx, active, err := s.contexts.Get(ctx, clientID)
	if err != nil {
		// A broken context store degrades to a fresh conversation.
		slog.Warn("failed to load anonymous context", "client", clientID, "error", err)
		convCtx, active = Context{}, false
	}

	if cmd, ok := ParseCommand(req.Message).(SwitchObject); ok {
		if cmd.Name == "" {
			return TurnResult{Reply: NoObjectPrompt, ClientID: clientID}, nil
		}
		if !active || convCtx.Object != cmd.Name {
			p := s.resolver.Resolve(ctx, cmd.Name)
			s.switchCount.Add(ctx, 1)

			fresh := Context{Object: cmd.Name, Persona: p, UpdatedAt: time.Now().UTC()}
			if err := s.contexts.Put(ctx, clientID, fresh); err != nil {
				slog.Warn("failed to store anonymous context", "client", clientID, "error", err)
			}
			return TurnResult{Reply: p.Introduction, Object: cmd.Name, ClientID: clientID}, nil
		}
		// Same object as the active one: handled as a normal message.
	}

	if !active || convCtx.Object == "" {
		return TurnResult{Reply: NoObjectPrompt, ClientID: clientID}, nil
	}

	reply := s.generateReply(ctx, convCtx.Object, convCtx.Persona, convCtx.History, req.Message)

	convCtx.History = append(convCtx.History,
		chat.Turn{Role: chat.RoleUser, Content: req.Message},
		chat.Turn{Role: chat.RoleAssistant, Content: reply},
	)
	convCtx.UpdatedAt = time.Now().UTC()
	if err := s.contexts.Put(ctx, clientID, convCtx); err != nil {
		slog.Warn("failed to store anonymous context", "client", clientID, "error", err)
	}

	return TurnResult{Reply: reply, Object: convCtx.Object, ClientID: clientID}, nil
}

func (s *Service) handleAuthenticatedTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	// Serializing per user also serializes per session, guarding against
	// concurrent double-submits.
	release := s.locks.acquire("user:" + req.UserID)
	defer release()

	var (
		active  *chat.Session
		history []chat.Turn
	)
	if req.SessionID != "" {
		session, err := s.sessions.GetSession(ctx, req.SessionID, req.UserID)
		if err != nil {
			return TurnResult{}, err
		}
		messages, err := s.sessions.Transcript(ctx, session.ID)
		if err != nil {
			return TurnResult{}, err
		}
		history = make([]chat.Turn, len(messages))
		for i, msg := range messages {
			history[i] = chat.Turn{Role: msg.Role, Content: msg.Content}
		}
		active = &session
	}

	if cmd, ok := ParseCommand(req.Message).(SwitchObject); ok {
		if cmd.Name == "" {
			return TurnResult{Reply: NoObjectPrompt}, nil
		}
		if active == nil || active.ObjectName != cmd.Name {
			return s.openSession(ctx, req.UserID, cmd.Name), nil
		}
		// Same object as the active session: handled as a normal message.
	}

	if active == nil {
		return TurnResult{Reply: NoObjectPrompt}, nil
	}

	reply := s.generateReply(ctx, active.ObjectName, active.Persona, history, req.Message)

	now := time.Now().UTC()
	persistErr := s.sessions.AppendMessages(ctx, active.ID, []chat.Message{
		{ID: uuid.NewString(), SessionID: active.ID, Role: chat.RoleUser, Content: req.Message, CreatedAt: now},
		{ID: uuid.NewString(), SessionID: active.ID, Role: chat.RoleAssistant, Content: reply, CreatedAt: now},
	})
	if persistErr != nil {
		// Best-effort persistence: the computed reply is still returned.
		slog.Warn("failed to persist turn", "session", active.ID, "error", persistErr)
	}

	return TurnResult{Reply: reply, Object: active.ObjectName, SessionID: active.ID, PersistErr: persistErr}, nil
}

// openSession resolves a persona and persists a new session whose first
// message is the introduction. Persistence failure never suppresses the
// introduction reply.
func (s *Service) openSession(ctx context.Context, userID, objectName string) TurnResult {
	p := s.resolver.Resolve(ctx, objectName)
	s.switchCount.Add(ctx, 1)

	now := time.Now().UTC()
	session := chat.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		ObjectName: objectName,
		Title:      "Chat with " + objectName,
		Persona:    p,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	persistErr := s.sessions.CreateSession(ctx, session)
	if persistErr == nil {
		persistErr = s.sessions.AppendMessages(ctx, session.ID, []chat.Message{
			{ID: uuid.NewString(), SessionID: session.ID, Role: chat.RoleAssistant, Content: p.Introduction, CreatedAt: now},
		})
	}

	result := TurnResult{Reply: p.Introduction, Object: objectName, PersistErr: persistErr}
	if persistErr == nil {
		result.SessionID = session.ID
	} else {
		slog.Warn("failed to persist new session", "user", userID, "object", objectName, "error", persistErr)
	}
	return result
}

// generateReply runs the LLM path with truncation, falling back to the
// template bank on any gateway failure. Template replies are never truncated.
func (s *Service) generateReply(ctx context.Context, objectName string, p persona.Persona, history []chat.Turn, message string) string {
	if s.completer != nil && s.completer.Available() {
		prompt := buildPrompt(systemPrompt(objectName, p), history, message)
		if text, err := s.completer.Complete(ctx, prompt, turnParams); err == nil {
			return truncateReply(text)
		}
	}

	s.fallbackCount.Add(ctx, 1)
	return s.bank.Response(objectName)
}

// keyedLocks serializes turns per conversation key. Entries are removed once
// the last holder releases.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) acquire(key string) (release func()) {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
