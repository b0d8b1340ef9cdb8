package dlcf_library

import (
	"testing"
	"time"
)

func newTestClient(h *WsServer, userID uint64, name string) *Client {
	return &Client{
		hub:    h,
		send:   make(chan []byte, 8),
		UserID: userID,
		Name:   name,
		rooms:  make(map[string]bool),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestWsServer_PublishAfterDisconnect(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	stays := newTestClient(h, 1, "stays")
	goes := newTestClient(h, 2, "goes")
	h.register <- stays
	h.register <- goes

	h.JoinRoom(stays, "community_7")
	h.JoinRoom(goes, "community_7")

	h.unregister <- goes
	waitFor(t, func() bool { return !h.InRoom(goes, "community_7") })

	h.Publish("community_7", []byte(`{"type":"message"}`))

	select {
	case <-stays.send:
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber never received the message")
	}
}

// A connection can be torn down between a publisher's room snapshot and its
// send. The closed flag is set under the same lock that closes the channel,
// so Publish must skip such a client instead of panicking.
func TestWsServer_PublishSkipsClosedClient(t *testing.T) {
	h := NewWsServer()

	dead := newTestClient(h, 3, "dead")
	h.mu.Lock()
	h.clients[dead] = true
	h.rooms["community_9"] = map[*Client]bool{dead: true}
	dead.rooms["community_9"] = true
	dead.closed = true
	close(dead.send)
	h.mu.Unlock()

	// must not panic on the closed send channel
	h.Publish("community_9", []byte(`{"type":"message"}`))
}

func TestWsServer_SendToUserSkipsClosedClient(t *testing.T) {
	h := NewWsServer()

	dead := newTestClient(h, 4, "dead")
	h.mu.Lock()
	h.clients[dead] = true
	h.userClients[4] = []*Client{dead}
	dead.closed = true
	close(dead.send)
	h.mu.Unlock()

	h.SendToUser(4, []byte(`{"type":"error"}`))
}

func TestWsServer_JoinRoomRejectsClosedClient(t *testing.T) {
	h := NewWsServer()
	go h.Run()

	c := newTestClient(h, 5, "gone")
	h.register <- c
	h.unregister <- c
	waitFor(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return c.closed
	})

	h.JoinRoom(c, "community_1")
	if h.InRoom(c, "community_1") {
		t.Fatal("closed connection must not rejoin a room")
	}
}
