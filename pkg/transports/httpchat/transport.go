// Package httpchat serves planning sessions over HTTP: a one-shot JSON
// endpoint and a websocket endpoint that keeps one conversation per
// connection.
package httpchat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/arielhakim/voyago/pkg/agent"
	"github.com/arielhakim/voyago/pkg/errorsx"
)

// SessionFactory hands out a fresh, independent session per caller.
type SessionFactory func() *agent.Session

type Transport struct {
	addr     string
	factory  SessionFactory
	srv      *http.Server
	upgrader websocket.Upgrader
}

func New(addr string, factory SessionFactory) *Transport {
	t := &Transport{
		addr:    addr,
		factory: factory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	t.srv = &http.Server{
		Addr:              addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return t
}

func (t *Transport) Name() string { return "httpchat" }

// Handler builds the router; exported so tests can drive it with httptest.
func (t *Transport) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", t.handleHealth)
	r.Post("/v1/chat", t.handleChat)
	r.Get("/v1/chat/ws", t.handleWS)
	return r
}

// Start serves until ctx is cancelled or the listener fails.
func (t *Transport) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- t.srv.ListenAndServe()
	}()
	slog.Info("httpchat_listening", "addr", t.addr)
	select {
	case <-ctx.Done():
		return t.Stop()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (t *Transport) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.srv.Shutdown(ctx)
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type errorResponse struct {
	Error      string `json:"error"`
	ReasonCode string `json:"reason_code"`
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Transport) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", ReasonCode: string(errorsx.ReasonTransportSend)})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required", ReasonCode: string(errorsx.ReasonTransportSend)})
		return
	}
	sess := t.factory()
	text, err := sess.Run(r.Context(), req.Prompt)
	if err != nil {
		slog.Error("httpchat_run_error", "session_id", sess.ID(),
			"reason_code", string(errorsx.Reason(err)), "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), ReasonCode: string(errorsx.Reason(err))})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{SessionID: sess.ID(), Text: text})
}

// handleWS keeps one session per connection so follow-up prompts share
// conversation history.
func (t *Transport) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	sess := t.factory()
	slog.Info("httpchat_ws_open", "session_id", sess.ID())
	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		prompt := strings.TrimSpace(string(payload))
		if prompt == "" {
			continue
		}
		text, err := sess.Run(r.Context(), prompt)
		if err != nil {
			_ = conn.WriteJSON(errorResponse{Error: err.Error(), ReasonCode: string(errorsx.Reason(err))})
			continue
		}
		if err := conn.WriteJSON(chatResponse{SessionID: sess.ID(), Text: text}); err != nil {
			slog.Warn("httpchat_ws_write_error", "session_id", sess.ID(), "error",
				errorsx.Wrap(err, errorsx.ReasonTransportSend))
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
