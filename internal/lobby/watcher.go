// Package lobby maintains the live session socket. The service pushes
// lobby events (players joining, the host starting the game) over a
// WebSocket at /ws/{session_code}; the watcher relays them to a sink and
// lets the host announce the game start on the same socket.
package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/frightfate/frightfate/internal/models"
)

// Event types pushed by the service over the session socket.
const (
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventGameStarted  = "game_started"
)

// Event is one message from the session socket. Raw carries the full
// payload for consumers that need fields beyond the common ones.
type Event struct {
	Type        string `json:"type"`
	PlayerName  string `json:"player_name,omitempty"`
	SessionCode string `json:"session_code,omitempty"`
	Theme       string `json:"theme,omitempty"`
	PlayerCount int    `json:"player_count,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Sink receives relayed socket traffic. Calls arrive on the watcher's
// read goroutine. Closed is called exactly once, with nil on a clean
// shutdown.
type Sink interface {
	LobbyEvent(ev Event)
	LobbyClosed(err error)
}

// Config holds socket keepalive and buffering settings.
type Config struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultConfig returns the shipped socket settings. The read timeout
// exceeds the ping interval so a healthy peer never times out.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     16,
	}
}

// Watcher is one live session socket.
type Watcher struct {
	id   string
	conn *websocket.Conn
	cfg  Config
	sink Sink
	code string

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	closedMu  sync.Mutex
	notified  bool
}

// SocketURL derives the session socket address from the API base URL.
func SocketURL(baseURL, sessionCode string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in base url", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + url.PathEscape(sessionCode)
	return u.String(), nil
}

// Dial connects the session socket and starts the read and write pumps.
func Dial(ctx context.Context, baseURL, sessionCode string, sink Sink, cfg Config) (*Watcher, error) {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	code := models.NormalizeSessionCode(sessionCode)

	addr, err := SocketURL(baseURL, code)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial session socket %s: %w", addr, err)
	}

	w := &Watcher{
		id:   uuid.New().String(),
		conn: conn,
		cfg:  cfg,
		sink: sink,
		code: code,
		send: make(chan []byte, cfg.SendBuffer),
		done: make(chan struct{}),
	}

	go w.writePump()
	go w.readPump()

	log.Info().
		Str("connection_id", w.id).
		Str("session_code", code).
		Msg("session socket connected")
	return w, nil
}

// Send marshals v and queues it for the socket. It fails rather than
// blocks when the write queue is full.
func (w *Watcher) Send(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal socket message: %w", err)
	}
	select {
	case <-w.done:
		return fmt.Errorf("session socket %s is closed", w.code)
	default:
	}
	select {
	case w.send <- payload:
		return nil
	default:
		return fmt.Errorf("session socket %s write queue full", w.code)
	}
}

// AnnounceStart broadcasts the host's game-start signal to the lobby.
func (w *Watcher) AnnounceStart(theme models.Theme) error {
	return w.Send(Event{
		Type:        EventGameStarted,
		SessionCode: w.code,
		Theme:       string(theme),
	})
}

// Close shuts the socket down. Idempotent; the sink's Closed callback
// still fires exactly once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		deadline := time.Now().Add(w.cfg.WriteTimeout)
		w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		w.conn.Close()
	})
}

// notifyClosed delivers the terminal callback at most once.
func (w *Watcher) notifyClosed(err error) {
	w.closedMu.Lock()
	already := w.notified
	w.notified = true
	w.closedMu.Unlock()
	if !already {
		w.sink.LobbyClosed(err)
	}
}

func (w *Watcher) writePump() {
	ticker := time.NewTicker(w.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		w.Close()
	}()

	for {
		select {
		case <-w.done:
			return
		case payload := <-w.send:
			w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
			if err := w.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Error().Err(err).Str("session_code", w.code).Msg("session socket write failed")
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("session_code", w.code).Msg("session socket ping failed")
				return
			}
		}
	}
}

func (w *Watcher) readPump() {
	defer w.Close()

	w.conn.SetReadLimit(w.cfg.MaxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
		return nil
	})

	for {
		_, payload, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.notifyClosed(nil)
				return
			}
			select {
			case <-w.done:
				// Local Close raced the read; not a peer failure.
				w.notifyClosed(nil)
			default:
				log.Warn().Err(err).Str("session_code", w.code).Msg("session socket read failed")
				w.notifyClosed(err)
			}
			return
		}
		w.conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Warn().Err(err).Str("session_code", w.code).Msg("unparseable session socket message")
			continue
		}
		ev.Raw = json.RawMessage(payload)
		w.sink.LobbyEvent(ev)
	}
}
