package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/EzequielDigiacomo/sigdef-admin/progress"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// MessageJobSnapshot is the first message a subscriber receives: the job as it stands.
const MessageJobSnapshot = "job_snapshot"

type WebSocketHandler struct {
	hub      *progress.Hub
	jobs     services.TeardownJobs
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *progress.Hub, jobs services.TeardownJobs, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		jobs: jobs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeTeardown streams the progress of one teardown job. Clients connect to
// /ws/teardown/{jobID}.
func (h *WebSocketHandler) ServeTeardown(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := h.jobs.Get(jobID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Warn("failed to upgrade websocket connection", "job_id", jobID, "error", err)
		return
	}

	room := services.TeardownRoom(jobID)
	client := progress.NewClient(h.hub, conn, room)
	if snapshot, err := json.Marshal(progress.Message{Type: MessageJobSnapshot, Payload: job, RoomID: room}); err == nil {
		client.Send <- snapshot
	}
	if !h.hub.Subscribe(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client subscribed", "room", room)
}
