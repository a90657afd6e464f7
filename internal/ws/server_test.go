package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bingo-battle/internal/app/room"
	"bingo-battle/internal/game"
	"bingo-battle/internal/presence"
	"bingo-battle/internal/store"

	"github.com/gorilla/websocket"
)

type fixedSource struct{ slot int64 }

func (s fixedSource) Int63() int64 { return s.slot << 32 }
func (fixedSource) Seed(int64) {}

type frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	OK        bool            `json:"ok"`
	Error     string          `json:"error"`
	Slot      *int            `json:"slot"`
	Room      json.RawMessage `json:"room"`
	Winner    *int            `json:"winner"`
	Boards    json.RawMessage `json:"boards"`
	raw       []byte
}

type roomSnapshot struct {
	RoomID    string `json:"roomId"`
	Status    string `json:"status"`
	TurnIndex int    `json:"turnIndex"`
	Players   []struct {
		Name      string `json:"name"`
		Finalized bool   `json:"finalized"`
		Selected  []int  `json:"selected"`
	} `json:"players"`
}

func (f frame) room(t *testing.T) roomSnapshot {
	t.Helper()
	var r roomSnapshot
	if err := json.Unmarshal(f.Room, &r); err != nil {
		t.Fatalf("decode room from %s: %v", f.raw, err)
	}
	return r
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *room.Service) {
	t.Helper()
	svc := room.NewService(store.NewMemoryStore(), presence.NewMemoryRegistry(), game.NewEngine(fixedSource{slot: 0}), "http://bingo.test")
	hub := NewHub()
	svc.SetBroadcaster(hub)
	srv := NewServer(svc, hub, opts)
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return ts, svc
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType, requestID string, payload any) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"type": msgType, "request_id": requestID, "payload": payload})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("decode frame %s: %v", raw, err)
	}
	f.raw = raw
	return f
}

// readUntil returns the first frame of type want, plus everything skipped
// on the way.
func readUntil(t *testing.T, conn *websocket.Conn, want string) (frame, []frame) {
	t.Helper()
	var skipped []frame
	for i := 0; i < 64; i++ {
		f := readFrame(t, conn)
		if f.Type == want {
			return f, skipped
		}
		skipped = append(skipped, f)
	}
	t.Fatalf("no %s frame after 64 reads", want)
	return frame{}, nil
}

func board(reversed bool) []int {
	b := make([]int, game.BoardSize)
	for i := range b {
		if reversed {
			b[i] = game.BoardSize - i
		} else {
			b[i] = i + 1
		}
	}
	return b
}

func TestSocketGameFlow(t *testing.T) {
	ts, svc := newTestServer(t, Options{})
	created, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	roomID := created.RoomID
	schema := compileWSSchema(t)

	a := dial(t, ts)
	b := dial(t, ts)

	send(t, a, TypeJoinRoom, "j1", map[string]any{"roomId": roomID, "name": "Ann"})
	ack, _ := readUntil(t, a, TypeAck)
	if !ack.OK || ack.Slot == nil || *ack.Slot != 0 || ack.RequestID != "j1" {
		t.Fatalf("unexpected join ack %s", ack.raw)
	}
	send(t, b, TypeJoinRoom, "j2", map[string]any{"roomId": strings.ToLower(roomID), "name": "Bob"})
	ack, _ = readUntil(t, b, TypeAck)
	if !ack.OK || *ack.Slot != 1 {
		t.Fatalf("unexpected join ack %s", ack.raw)
	}
	update, _ := readUntil(t, a, TypeRoomUpdate)
	if got := update.room(t); len(got.Players) != 2 || got.Players[1].Name != "Bob" {
		t.Fatalf("A did not see B join: %s", update.raw)
	}

	send(t, a, TypeFinalizeBoard, "f1", map[string]any{"roomId": roomID, "board": board(false)})
	if ack, _ := readUntil(t, a, TypeAck); !ack.OK {
		t.Fatalf("finalize a failed: %s", ack.raw)
	}
	send(t, b, TypeFinalizeBoard, "f2", map[string]any{"roomId": roomID, "board": board(true)})
	ack, _ = readUntil(t, b, TypeAck)
	if got := ack.room(t); got.Status != "playing" || got.TurnIndex != 0 {
		t.Fatalf("expected playing with A first: %s", ack.raw)
	}

	conns := []*websocket.Conn{a, b}
	selected := [2]map[int]bool{{}, {}}
	turn := 0
	var over frame
	for moves := 0; moves <= 2*game.BoardSize; moves++ {
		index := 0
		for selected[turn][index] {
			index++
		}
		send(t, conns[turn], TypeMakeMove, "m", map[string]any{"roomId": roomID, "index": index})
		ack, skipped := readUntil(t, conns[turn], TypeAck)
		if !ack.OK {
			t.Fatalf("move rejected: %s", ack.raw)
		}
		for _, f := range skipped {
			if f.Type == TypeRoomUpdate {
				if err := validateFrame(t, schema, f.raw); err != nil {
					t.Fatalf("room update violates schema: %v\n%s", err, f.raw)
				}
				if strings.Contains(string(f.raw), `"board"`) {
					t.Fatalf("room update leaked a board: %s", f.raw)
				}
			}
		}
		got := ack.room(t)
		for slot, p := range got.Players {
			for _, i := range p.Selected {
				selected[slot][i] = true
			}
		}
		if got.Status == "finished" {
			over, _ = readUntil(t, conns[1-turn], TypeGameOver)
			break
		}
		turn = got.TurnIndex
	}
	if over.Type != TypeGameOver {
		t.Fatal("game never finished")
	}
	if err := validateFrame(t, schema, over.raw); err != nil {
		t.Fatalf("gameOver violates schema: %v\n%s", err, over.raw)
	}
	if over.Winner == nil {
		t.Fatalf("gameOver without winner: %s", over.raw)
	}
	var boards []struct {
		Board    []int `json:"board"`
		Selected []int `json:"selected"`
	}
	if err := json.Unmarshal(over.Boards, &boards); err != nil || len(boards) != 2 {
		t.Fatalf("decode boards: %v %s", err, over.raw)
	}
	if boards[0].Board[0] != 1 || boards[1].Board[0] != 25 {
		t.Fatalf("reveal should carry both boards: %s", over.raw)
	}
}

func TestSocketErrorAcks(t *testing.T) {
	ts, svc := newTestServer(t, Options{})
	created, _ := svc.Create(context.Background())
	conn := dial(t, ts)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Error != "invalid_request" || f.OK {
		t.Fatalf("expected invalid_request, got %s", f.raw)
	}

	longID := strings.Repeat("a", 65)
	send(t, conn, TypeJoinRoom, longID, map[string]any{"roomId": created.RoomID})
	if f := readFrame(t, conn); f.Error != "invalid_request_id" || f.RequestID != longID {
		t.Fatalf("expected invalid_request_id echoing the id, got %s", f.raw)
	}

	tests := []struct {
		name    string
		msgType string
		payload any
		want    string
	}{
		{"unknown type", "shuffle", map[string]any{}, "unknown_action"},
		{"missing room", TypeJoinRoom, map[string]any{"roomId": "ZZZZZZ", "name": "Ann"}, "room_not_found"},
		{"empty room id", TypeJoinRoom, map[string]any{"name": "Ann"}, "invalid_request"},
		{"finalize before join", TypeFinalizeBoard, map[string]any{"roomId": created.RoomID, "board": board(false)}, "not_in_room"},
		{"move without index", TypeMakeMove, map[string]any{"roomId": created.RoomID}, "invalid_request"},
		{"move before game", TypeMakeMove, map[string]any{"roomId": created.RoomID, "index": 3}, "invalid_state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msgType, "req", tt.payload)
			f := readFrame(t, conn)
			if f.Type != TypeAck || f.Error != tt.want || f.RequestID != "req" {
				t.Fatalf("expected %s, got %s", tt.want, f.raw)
			}
		})
	}
}

func TestSocketJoinTwiceRejected(t *testing.T) {
	ts, svc := newTestServer(t, Options{})
	first, _ := svc.Create(context.Background())
	second, _ := svc.Create(context.Background())
	conn := dial(t, ts)

	send(t, conn, TypeJoinRoom, "j1", map[string]any{"roomId": first.RoomID})
	if ack, _ := readUntil(t, conn, TypeAck); !ack.OK {
		t.Fatalf("join failed: %s", ack.raw)
	}
	send(t, conn, TypeJoinRoom, "j2", map[string]any{"roomId": second.RoomID})
	if ack, _ := readUntil(t, conn, TypeAck); ack.Error != "invalid_state" {
		t.Fatalf("expected invalid_state, got %s", ack.raw)
	}
}

func TestSocketDisconnectNotifiesOpponent(t *testing.T) {
	ts, svc := newTestServer(t, Options{})
	created, _ := svc.Create(context.Background())
	a := dial(t, ts)
	b := dial(t, ts)

	send(t, a, TypeJoinRoom, "j1", map[string]any{"roomId": created.RoomID, "name": "Ann"})
	readUntil(t, a, TypeAck)
	send(t, b, TypeJoinRoom, "j2", map[string]any{"roomId": created.RoomID, "name": "Bob"})
	readUntil(t, b, TypeAck)
	readUntil(t, a, TypeRoomUpdate)

	_ = b.Close()

	update, _ := readUntil(t, a, TypeRoomUpdate)
	got := update.room(t)
	if len(got.Players) != 1 || got.Players[0].Name != "Ann" || got.Status != "waiting" {
		t.Fatalf("unexpected room after disconnect: %s", update.raw)
	}
}

func TestSocketRejectsForeignOrigin(t *testing.T) {
	ts, _ := newTestServer(t, Options{AllowedOrigins: []string{"https://bingo.example"}})
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}

	header = http.Header{"Origin": []string{"https://bingo.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("allowed origin should connect: %v", err)
	}
	_ = conn.Close()
}
