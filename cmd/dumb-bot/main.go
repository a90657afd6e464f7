package main

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"bingo-battle/internal/config"
	"bingo-battle/internal/game"
	"bingo-battle/internal/game/viewmodel"
	"bingo-battle/internal/logging"
	"bingo-battle/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type outgoing struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Payload   any    `json:"payload"`
}

type incoming struct {
	Type   string                  `json:"type"`
	OK     bool                    `json:"ok"`
	Error  string                  `json:"error"`
	Slot   *int                    `json:"slot"`
	Room   *viewmodel.RoomView     `json:"room"`
	Winner *int                    `json:"winner"`
	Boards []viewmodel.BoardReveal `json:"boards"`
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := &bot{conn: conn, rnd: rnd, roomID: cfg.RoomID, delay: cfg.MoveDelay, slot: -1}
	b.send(ws.TypeJoinRoom, map[string]any{"roomId": cfg.RoomID, "name": cfg.Name})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}
		var msg incoming
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if done := b.handle(msg); done {
			return
		}
	}
}

type bot struct {
	conn      *websocket.Conn
	rnd       *rand.Rand
	roomID    string
	delay     time.Duration
	slot      int
	finalized bool
	seq       int
}

func (b *bot) handle(msg incoming) bool {
	switch msg.Type {
	case ws.TypeAck:
		if msg.Error != "" {
			log.Warn().Str("error", msg.Error).Msg("request rejected")
			return msg.Error == game.ErrRoomFull.Error() || msg.Error == game.ErrNotFound.Error()
		}
		if msg.Slot != nil {
			b.slot = *msg.Slot
			log.Info().Str("room_id", b.roomID).Int("slot", b.slot).Msg("joined")
			if !b.finalized {
				b.finalized = true
				b.send(ws.TypeFinalizeBoard, map[string]any{"roomId": b.roomID, "board": shuffledBoard(b.rnd)})
			}
		}
	case ws.TypeRoomUpdate:
		if msg.Room == nil || b.slot < 0 {
			return false
		}
		b.syncSlot(*msg.Room)
		if index, ok := decide(b.rnd, *msg.Room, b.slot); ok {
			time.Sleep(b.delay)
			b.send(ws.TypeMakeMove, map[string]any{"roomId": b.roomID, "index": index})
		}
	case ws.TypeGameOver:
		won := msg.Winner != nil && *msg.Winner == b.slot
		log.Info().Str("room_id", b.roomID).Bool("won", won).Msg("game over")
		return true
	}
	return false
}

// syncSlot follows the bot down to slot 0 when the opponent leaves.
func (b *bot) syncSlot(room viewmodel.RoomView) {
	if b.slot >= len(room.Players) {
		b.slot = len(room.Players) - 1
	}
}

func (b *bot) send(msgType string, payload any) {
	b.seq++
	msg, err := json.Marshal(outgoing{Type: msgType, RequestID: "bot_" + strconv.Itoa(b.seq), Payload: payload})
	if err != nil {
		return
	}
	if err := b.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Error().Err(err).Msg("write failed")
	}
}

// decide picks a random unmarked cell when it is slot's turn.
func decide(rnd *rand.Rand, room viewmodel.RoomView, slot int) (int, bool) {
	if room.Status != string(game.StatusPlaying) || room.TurnIndex != slot {
		return 0, false
	}
	if slot < 0 || slot >= len(room.Players) {
		return 0, false
	}
	taken := make(map[int]bool, game.BoardSize)
	for _, i := range room.Players[slot].Selected {
		taken[i] = true
	}
	free := make([]int, 0, game.BoardSize)
	for i := 0; i < game.BoardSize; i++ {
		if !taken[i] {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return 0, false
	}
	return free[rnd.Intn(len(free))], true
}

func shuffledBoard(rnd *rand.Rand) []int {
	board := make([]int, game.BoardSize)
	for i := range board {
		board[i] = i + 1
	}
	rnd.Shuffle(len(board), func(i, j int) { board[i], board[j] = board[j], board[i] })
	return board
}
