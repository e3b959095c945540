// Package server exposes the two HTTP entry points that feed the workflow
// queues: the platform event webhook and the OAuth authorization callback.
// Handlers validate, enqueue, and return immediately; all slow work happens
// in the workers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/services/lark"
	"scribe/internal/workflow"
)

// meetingEndedEventType is the platform event this service subscribes to.
const meetingEndedEventType = "vc.meeting.all_meeting_ended_v1"

// Intake is the queue surface the handlers feed.
type Intake interface {
	EnqueueMeeting(workflow.MeetingEvent)
	EnqueueAuthorization(workflow.Authorization)
}

// TokenExchanger trades an OAuth code for a user access token.
type TokenExchanger interface {
	ExchangeUserToken(ctx context.Context, code string) (lark.UserToken, error)
}

// Server is the event-intake HTTP server.
type Server struct {
	bind      string
	logger    *slog.Logger
	intake    Intake
	exchanger TokenExchanger

	listener net.Listener
	server   *http.Server
}

// New constructs the intake server.
func New(cfg *config.Config, intake Intake, exchanger TokenExchanger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		bind:      cfg.Server.Bind,
		logger:    logging.NewComponentLogger(logger, "server"),
		intake:    intake,
		exchanger: exchanger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/event", srv.handleEvent)
	mux.HandleFunc(workflow.CallbackPath, srv.handleOAuthCallback)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("intake listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("intake server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("intake server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// eventEnvelope covers both the one-time URL verification handshake and the
// regular v2 event callback shape.
type eventEnvelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Header    struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
	} `json:"header"`
	Event struct {
		Meeting struct {
			MeetingNo     string `json:"meeting_no"`
			Topic         string `json:"topic"`
			MeetingSource int    `json:"meeting_source"`
			StartTime     string `json:"start_time"`
			EndTime       string `json:"end_time"`
			Owner         struct {
				ID struct {
					OpenID string `json:"open_id"`
				} `json:"id"`
			} `json:"owner"`
		} `json:"meeting"`
	} `json:"event"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		http.Error(w, "malformed event", http.StatusBadRequest)
		return
	}

	if envelope.Type == "url_verification" {
		writeJSON(w, map[string]string{"challenge": envelope.Challenge})
		return
	}

	if envelope.Header.EventType != meetingEndedEventType {
		s.logger.Debug("ignoring event",
			logging.String(logging.FieldEventType, envelope.Header.EventType))
		writeJSON(w, map[string]string{})
		return
	}

	meeting := envelope.Event.Meeting
	event := workflow.MeetingEvent{
		EventID:   envelope.Header.EventID,
		MeetingNo: meeting.MeetingNo,
		Topic:     meeting.Topic,
		Source:    workflow.Source(meeting.MeetingSource),
		StartTime: meeting.StartTime,
		EndTime:   meeting.EndTime,
		OwnerID:   meeting.Owner.ID.OpenID,
	}
	if strings.TrimSpace(event.MeetingNo) == "" || strings.TrimSpace(event.OwnerID) == "" {
		http.Error(w, "incomplete meeting event", http.StatusBadRequest)
		return
	}

	s.intake.EnqueueMeeting(event)
	s.logger.Info("meeting event enqueued",
		logging.String("event_id", event.EventID),
		logging.String("meeting_no", event.MeetingNo))
	writeJSON(w, map[string]string{})
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	code := query.Get("code")
	stateStr := query.Get("state")
	if code == "" || stateStr == "" {
		http.Error(w, "missing code or state", http.StatusBadRequest)
		return
	}

	token, err := s.exchanger.ExchangeUserToken(r.Context(), code)
	if err != nil {
		s.logger.Error("token exchange failed", logging.Error(err))
		http.Error(w, "authorization failed", http.StatusBadGateway)
		return
	}

	s.intake.EnqueueAuthorization(workflow.Authorization{
		State:       stateStr,
		AccessToken: token.AccessToken,
		OpenID:      token.OpenID,
	})
	s.logger.Info("authorization enqueued", logging.String("open_id", token.OpenID))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body>Authorization received. Minutes generation has started; you can close this page.</body></html>")
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
