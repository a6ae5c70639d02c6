package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourorg/unitsphere/internal/domain"
)

const feedWriteTimeout = 5 * time.Second

// AnnouncementFeed pushes newly posted announcements to WebSocket
// subscribers. Subscribers that cannot keep up are dropped.
type AnnouncementFeed struct {
	logger         *slog.Logger
	allowedOrigins []string

	mu   sync.Mutex
	subs map[*websocket.Conn]chan *domain.Announcement
}

// NewAnnouncementFeed creates a new announcement feed
func NewAnnouncementFeed(logger *slog.Logger, allowedOrigins []string) *AnnouncementFeed {
	return &AnnouncementFeed{
		logger:         logger,
		allowedOrigins: allowedOrigins,
		subs:           make(map[*websocket.Conn]chan *domain.Announcement),
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (f *AnnouncementFeed) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range f.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			f.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// Broadcast queues an announcement for every connected subscriber.
func (f *AnnouncementFeed) Broadcast(announcement *domain.Announcement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn, ch := range f.subs {
		select {
		case ch <- announcement:
		default:
			f.logger.Warn("dropping slow feed subscriber")
			close(ch)
			delete(f.subs, conn)
			conn.Close()
		}
	}
}

// ServeHTTP handles GET /ws/announcements
func (f *AnnouncementFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := f.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	ch := make(chan *domain.Announcement, 16)
	f.mu.Lock()
	f.subs[ws] = ch
	f.mu.Unlock()

	f.logger.Debug("feed subscriber connected", slog.String("remote", r.RemoteAddr))

	// Reader goroutine notices client close; we never expect inbound data.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		f.mu.Lock()
		if _, ok := f.subs[ws]; ok {
			close(ch)
			delete(f.subs, ws)
		}
		f.mu.Unlock()
		ws.Close()
	}()

	for {
		select {
		case announcement, ok := <-ch:
			if !ok {
				return
			}
			ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := ws.WriteJSON(announcement); err != nil {
				f.logger.Debug("feed write failed", slog.String("error", err.Error()))
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
