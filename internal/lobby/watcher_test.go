package lobby

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frightfate/frightfate/internal/models"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	evCh   chan Event
	closed chan error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		evCh:   make(chan Event, 16),
		closed: make(chan error, 1),
	}
}

func (s *recordingSink) LobbyEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	s.evCh <- ev
}

func (s *recordingSink) LobbyClosed(err error) { s.closed <- err }

func (s *recordingSink) waitEvent(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-s.evCh:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for lobby event")
		return Event{}
	}
}

func (s *recordingSink) waitClosed(t *testing.T) error {
	t.Helper()
	select {
	case err := <-s.closed:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close callback")
		return nil
	}
}

// lobbyServer is a minimal in-process stand-in for the service socket.
type lobbyServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu   sync.Mutex
	conn *websocket.Conn
	got  chan []byte
}

func newLobbyServer(t *testing.T) (*lobbyServer, *httptest.Server) {
	srv := &lobbyServer{t: t, got: make(chan []byte, 16)}
	ts := httptest.NewServer(http.HandlerFunc(srv.handle))
	t.Cleanup(ts.Close)
	return srv, ts
}

func (s *lobbyServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.got <- payload
	}
}

func (s *lobbyServer) push(t *testing.T, ev Event) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotNil(t, s.conn, "no client connected yet")
	require.NoError(t, s.conn.WriteJSON(ev))
}

func (s *lobbyServer) waitMessage(t *testing.T) []byte {
	t.Helper()
	select {
	case payload := <-s.got:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client message")
		return nil
	}
}

func TestSocketURL(t *testing.T) {
	tests := map[string]struct {
		baseURL string
		want    string
		wantErr bool
	}{
		"http becomes ws": {
			baseURL: "http://localhost:8000",
			want:    "ws://localhost:8000/ws/ABCD12",
		},
		"https becomes wss": {
			baseURL: "https://fright.example.com",
			want:    "wss://fright.example.com/ws/ABCD12",
		},
		"trailing slash collapses": {
			baseURL: "http://localhost:8000/",
			want:    "ws://localhost:8000/ws/ABCD12",
		},
		"base path is kept": {
			baseURL: "http://localhost:8000/fright",
			want:    "ws://localhost:8000/fright/ws/ABCD12",
		},
		"unsupported scheme": {
			baseURL: "ftp://localhost",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := SocketURL(tt.baseURL, "ABCD12")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatcherRelaysEvents(t *testing.T) {
	srv, ts := newLobbyServer(t)
	sink := newRecordingSink()

	w, err := Dial(context.Background(), ts.URL, "abcd12", sink, Config{})
	require.NoError(t, err)
	defer w.Close()

	srv.push(t, Event{Type: EventPlayerJoined, PlayerName: "noor", PlayerCount: 2})

	ev := sink.waitEvent(t)
	assert.Equal(t, EventPlayerJoined, ev.Type)
	assert.Equal(t, "noor", ev.PlayerName)
	assert.Equal(t, 2, ev.PlayerCount)
	assert.NotEmpty(t, ev.Raw)
}

func TestWatcherSkipsUnparseableMessages(t *testing.T) {
	srv, ts := newLobbyServer(t)
	sink := newRecordingSink()

	w, err := Dial(context.Background(), ts.URL, "abcd12", sink, Config{})
	require.NoError(t, err)
	defer w.Close()

	srv.push(t, Event{Type: EventPlayerJoined, PlayerName: "first"})
	sink.waitEvent(t)

	srv.mu.Lock()
	require.NoError(t, srv.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	srv.mu.Unlock()

	srv.push(t, Event{Type: EventPlayerLeft, PlayerName: "second"})
	ev := sink.waitEvent(t)
	assert.Equal(t, EventPlayerLeft, ev.Type)
}

func TestAnnounceStartReachesServer(t *testing.T) {
	srv, ts := newLobbyServer(t)
	sink := newRecordingSink()

	w, err := Dial(context.Background(), ts.URL, "abcd12", sink, Config{})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AnnounceStart(models.ThemeDeepSeaTerror))

	var got Event
	require.NoError(t, json.Unmarshal(srv.waitMessage(t), &got))
	assert.Equal(t, EventGameStarted, got.Type)
	assert.Equal(t, "ABCD12", got.SessionCode)
	assert.Equal(t, string(models.ThemeDeepSeaTerror), got.Theme)
}

func TestCloseIsIdempotentAndClean(t *testing.T) {
	_, ts := newLobbyServer(t)
	sink := newRecordingSink()

	w, err := Dial(context.Background(), ts.URL, "abcd12", sink, Config{})
	require.NoError(t, err)

	w.Close()
	w.Close()

	assert.NoError(t, sink.waitClosed(t))
	assert.Error(t, w.Send(Event{Type: EventPlayerJoined}))
}

func TestServerCloseNotifiesSink(t *testing.T) {
	srv, ts := newLobbyServer(t)
	sink := newRecordingSink()

	w, err := Dial(context.Background(), ts.URL, "abcd12", sink, Config{})
	require.NoError(t, err)
	defer w.Close()

	srv.mu.Lock()
	srv.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "lobby over"), time.Now().Add(time.Second))
	srv.conn.Close()
	srv.mu.Unlock()

	assert.NoError(t, sink.waitClosed(t))
}

func TestDialFailure(t *testing.T) {
	sink := newRecordingSink()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := Dial(ctx, "http://127.0.0.1:1", "abcd12", sink, Config{})
	assert.Error(t, err)
}
