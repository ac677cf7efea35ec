package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"vantage/internal/llm"
)

// ProgressEvent is pushed to websocket subscribers as the pipeline moves
// through its phases for one document.
type ProgressEvent struct {
	SyllabusID string    `json:"syllabusId"`
	Stage      string    `json:"stage"` // extract | translate | repair | done | error
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProgressHub fans pipeline phase events out to websocket subscribers keyed
// by syllabus id. Subscribers that fall behind are dropped rather than
// blocking the pipeline.
type ProgressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan ProgressEvent]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{subs: map[string]map[chan ProgressEvent]struct{}{}}
}

// Publish sends an event to every subscriber of the syllabus id.
func (h *ProgressHub) Publish(syllabusID, stage, detail string) {
	ev := ProgressEvent{
		SyllabusID: syllabusID,
		Stage:      stage,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[syllabusID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *ProgressHub) subscribe(syllabusID string) chan ProgressEvent {
	ch := make(chan ProgressEvent, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[syllabusID] == nil {
		h.subs[syllabusID] = map[chan ProgressEvent]struct{}{}
	}
	h.subs[syllabusID][ch] = struct{}{}
	return ch
}

func (h *ProgressHub) unsubscribe(syllabusID string, ch chan ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.subs[syllabusID]; set != nil {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, syllabusID)
		}
	}
	close(ch)
}

// progressHook adapts the hub to the llm.PromptHook interface so generation
// phases surface as progress events.
type progressHook struct {
	hub        *ProgressHub
	syllabusID string
}

func (p progressHook) Before(_ context.Context, phase, _ string) {
	p.hub.Publish(p.syllabusID, phase, "")
}

func (p progressHook) After(_ context.Context, phase, _ string, err error) {
	if err != nil {
		p.hub.Publish(p.syllabusID, "error", phase+": "+err.Error())
	}
}

// withProgress attaches a hook to ctx that mirrors generation phases into
// the hub for the given syllabus id.
func withProgress(ctx context.Context, hub *ProgressHub, syllabusID string) context.Context {
	return llm.WithHook(ctx, progressHook{hub: hub, syllabusID: syllabusID})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleProgress upgrades to a websocket and streams progress events for one
// syllabus id until the client disconnects.
func (s *Server) handleProgress(c *gin.Context) {
	syllabusID := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.progress.subscribe(syllabusID)
	defer s.progress.unsubscribe(syllabusID, ch)

	// Reader goroutine: only there to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-ch:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Stage == "done" || ev.Stage == "error" {
				return
			}
		case <-done:
			return
		}
	}
}
