// Package ws serves the realtime WebSocket endpoint. Clients subscribe to hub topics and
// receive their messages as JSON frames; they can also toggle reactions over the socket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/delivery/http/middleware"
	"eventify/internal/domain"
	"eventify/internal/realtime"
)

// Frame types exchanged with clients.
const (
	FrameSubscribe      = "subscribe"
	FrameUnsubscribe    = "unsubscribe"
	FrameReactionToggle = "reaction.toggle"
	FramePing           = "ping"
	FramePong           = "pong"
	FrameAck            = "ack"
	FrameError          = "error"
)

const (
	maxDecodeErrorsPerConn = 3
	maxFramePayloadBytes   = 4 << 10
	maxSubscriptions       = 32
	requestTimeout         = 5 * time.Second
)

// Frame is the JSON envelope of every message in both directions.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Topic     string          `json:"topic,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type topicPayload struct {
	Topic string `json:"topic"`
}

type reactionPayload struct {
	EventID  string `json:"event_id"`
	Reaction string `json:"reaction"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Snapshotter returns the current event list sent to new events subscribers.
type Snapshotter interface {
	Snapshot() []*domain.Event
}

// Handler upgrades authenticated requests to WebSocket sessions.
type Handler struct {
	Logger      *slog.Logger
	verifier    domain.TokenVerifier
	broadcaster domain.Broadcaster
	catalog     Snapshotter
	reactions   domain.ReactionService
}

func NewHandler(logger *slog.Logger, verifier domain.TokenVerifier, broadcaster domain.Broadcaster, catalog Snapshotter, reactions domain.ReactionService) *Handler {
	return &Handler{
		Logger:      logger,
		verifier:    verifier,
		broadcaster: broadcaster,
		catalog:     catalog,
		reactions:   reactions,
	}
}

// ServeHTTP authenticates with a bearer header or the access_token query parameter, then upgrades.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		helpers.WriteJSONError(w, http.StatusMethodNotAllowed, helpers.ErrCodeBadRequest, "method not allowed")
		return
	}
	token := accessTokenFromRequest(r)
	if token == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing access token")
		return
	}
	principal, err := h.verifier.Verify(token)
	if err != nil {
		h.Logger.DebugContext(r.Context(), "websocket token rejected", "remote", r.RemoteAddr, "err", err)
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
		return
	}
	r = r.WithContext(middleware.SetPrincipal(r.Context(), principal))
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveConn(conn, principal)
	}).ServeHTTP(w, r)
}

func accessTokenFromRequest(r *http.Request) string {
	if token, problem := middleware.BearerToken(r); problem == "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

type peer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *peer) writeFrame(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

type session struct {
	h         *Handler
	ctx       context.Context
	principal *domain.Principal
	peer      *peer
	subs      map[string]domain.Subscription
	wg        sync.WaitGroup
}

func (h *Handler) serveConn(conn *websocket.Conn, principal *domain.Principal) {
	ctx := conn.Request().Context()
	s := &session{
		h:         h,
		ctx:       ctx,
		principal: principal,
		peer:      &peer{encoder: json.NewEncoder(conn)},
		subs:      make(map[string]domain.Subscription),
	}
	h.Logger.InfoContext(ctx, "websocket connected", "user_id", principal.UserID)
	defer func() {
		for _, sub := range s.subs {
			sub.Close()
		}
		s.wg.Wait()
		_ = conn.Close()
		h.Logger.InfoContext(ctx, "websocket disconnected", "user_id", principal.UserID)
	}()

	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
				return
			}
			decodeErrors++
			_ = s.writeError("", helpers.ErrCodeBadRequest, "invalid frame")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			decoder = json.NewDecoder(conn)
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, "payload too large")
			continue
		}

		switch frame.Type {
		case FrameSubscribe:
			s.handleSubscribe(frame)
		case FrameUnsubscribe:
			s.handleUnsubscribe(frame)
		case FrameReactionToggle:
			s.handleReaction(frame)
		case FramePing:
			_ = s.peer.writeFrame(Frame{Type: FramePong, RequestID: frame.RequestID})
		default:
			_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, "unsupported frame type")
		}
	}
}

func (s *session) handleSubscribe(frame Frame) {
	topic, ok := s.topicOf(frame)
	if !ok {
		return
	}
	if err := s.authorize(topic); err != nil {
		_ = s.writeError(frame.RequestID, helpers.ErrCodeForbidden, err.Error())
		return
	}
	if _, exists := s.subs[topic]; exists {
		_ = s.ack(frame.RequestID, topic, nil)
		return
	}
	if len(s.subs) >= maxSubscriptions {
		_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, "too many subscriptions")
		return
	}

	sub := s.h.broadcaster.Subscribe(topic)
	s.subs[topic] = sub
	_ = s.ack(frame.RequestID, topic, nil)
	if topic == domain.TopicEvents && s.h.catalog != nil {
		_ = s.peer.writeFrame(Frame{Type: realtime.TypeSnapshot, Topic: topic, Payload: mustJSON(s.h.catalog.Snapshot())})
	}
	s.wg.Add(1)
	go s.forward(sub)
}

func (s *session) forward(sub domain.Subscription) {
	defer s.wg.Done()
	for msg := range sub.C() {
		frame := Frame{Type: msg.Type, Topic: msg.Topic, Payload: mustJSON(msg.Payload)}
		if err := s.peer.writeFrame(frame); err != nil {
			s.h.Logger.DebugContext(s.ctx, "websocket write failed", "user_id", s.principal.UserID, "err", err)
			return
		}
	}
}

func (s *session) handleUnsubscribe(frame Frame) {
	topic, ok := s.topicOf(frame)
	if !ok {
		return
	}
	if sub, exists := s.subs[topic]; exists {
		sub.Close()
		delete(s.subs, topic)
	}
	_ = s.ack(frame.RequestID, topic, nil)
}

func (s *session) handleReaction(frame Frame) {
	var p reactionPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, "invalid reaction payload")
		return
	}
	eventID, err := uuid.Parse(p.EventID)
	if err != nil {
		_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, "event_id must be a UUID")
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	toggle, err := s.h.reactions.Toggle(ctx, eventID.String(), s.principal.UserID, domain.ReactionType(p.Reaction))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		s.h.Logger.ErrorContext(ctx, "reaction toggle failed", "user_id", s.principal.UserID, "err", err)
		_ = s.writeError(frame.RequestID, helpers.ErrCodeInternalError, "reaction failed")
		return
	}
	_ = s.ack(frame.RequestID, domain.ReactionsTopic(toggle.EventID), toggle)
}

// topicOf validates the topic of a subscribe or unsubscribe frame, writing an error frame on failure.
func (s *session) topicOf(frame Frame) (string, bool) {
	var p topicPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil || p.Topic == "" {
		_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, "topic is required")
		return "", false
	}
	topic, err := normalizeTopic(p.Topic)
	if err != nil {
		_ = s.writeError(frame.RequestID, helpers.ErrCodeBadRequest, err.Error())
		return "", false
	}
	return topic, true
}

func (s *session) authorize(topic string) error {
	if strings.HasPrefix(topic, domain.RegistrationsTopic("")) && s.principal.Role != domain.RoleAdmin {
		return errors.New("admin role required for registration updates")
	}
	return nil
}

func (s *session) ack(requestID, topic string, payload any) error {
	frame := Frame{Type: FrameAck, RequestID: requestID, Topic: topic}
	if payload != nil {
		frame.Payload = mustJSON(payload)
	}
	return s.peer.writeFrame(frame)
}

func (s *session) writeError(requestID, code, message string) error {
	return s.peer.writeFrame(Frame{
		Type:      FrameError,
		RequestID: requestID,
		Payload:   mustJSON(errorPayload{Code: code, Message: message}),
	})
}

// normalizeTopic accepts "events", "registrations:<eventID>" and "reactions:<eventID>".
func normalizeTopic(topic string) (string, error) {
	if topic == domain.TopicEvents {
		return topic, nil
	}
	kind, id, found := strings.Cut(topic, ":")
	if !found {
		return "", errors.New("unknown topic")
	}
	eventID, err := uuid.Parse(id)
	if err != nil {
		return "", errors.New("topic event id must be a UUID")
	}
	switch kind + ":" {
	case domain.RegistrationsTopic(""):
		return domain.RegistrationsTopic(eventID.String()), nil
	case domain.ReactionsTopic(""):
		return domain.ReactionsTopic(eventID.String()), nil
	}
	return "", errors.New("unknown topic")
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`null`)
	}
	return b
}
