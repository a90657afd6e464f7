package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"bingo-battle/internal/game"
	"bingo-battle/internal/game/viewmodel"
	"bingo-battle/internal/store"

	"github.com/rs/zerolog/log"
)

const createAttempts = 8

type Service struct {
	store    RoomStore
	registry Registry
	engine   *game.Engine
	locks    *roomLocks
	baseURL  string

	broadcaster Broadcaster

	now     func() time.Time
	newCode func() string
}

func NewService(st RoomStore, reg Registry, engine *game.Engine, baseURL string) *Service {
	if engine == nil {
		engine = game.NewEngine(nil)
	}
	return &Service{
		store:       st,
		registry:    reg,
		engine:      engine,
		locks:       newRoomLocks(),
		baseURL:     strings.TrimRight(baseURL, "/"),
		broadcaster: noopBroadcaster{},
		now:         func() time.Time { return time.Now().UTC() },
		newCode:     store.NewRoomCode,
	}
}

// SetBroadcaster wires the websocket hub after construction, since the hub
// itself needs the service to dispatch client actions.
func (s *Service) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = noopBroadcaster{}
	}
	s.broadcaster = b
}

func (s *Service) Create(ctx context.Context) (*CreateResult, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		code := s.newCode()
		err := s.store.CreateRoom(ctx, game.NewRoom(code, s.now()))
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("event", "room_create_failed").Msg("create room failed")
			return nil, ErrServer
		}
		log.Info().Str("event", "room_created").Str("room_id", code).Msg("room created")
		return &CreateResult{RoomID: code, Link: s.baseURL + "/?room=" + code}, nil
	}
	log.Error().Str("event", "room_create_failed").Int("attempts", createAttempts).Msg("room code collisions exhausted")
	return nil, ErrServer
}

func (s *Service) Get(ctx context.Context, roomID string) (*viewmodel.RoomView, error) {
	if roomID == "" {
		return nil, ErrInvalidRequest
	}
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, s.mapErr(err, roomID, "get")
	}
	view := viewmodel.BuildRoomView(r)
	return &view, nil
}

func (s *Service) Join(ctx context.Context, roomID, name, connID string) (*Result, error) {
	if roomID == "" || connID == "" {
		return nil, ErrInvalidRequest
	}
	if bound, ok, err := s.registry.Lookup(ctx, connID); err != nil {
		return nil, s.mapErr(err, roomID, "join")
	} else if ok && bound != "" {
		return nil, game.ErrInvalidState
	}

	unlock := s.locks.lock(roomID)
	defer unlock()

	slot := -1
	r, err := s.store.UpdateRoom(ctx, roomID, func(r *game.Room) error {
		var err error
		slot, err = s.engine.Join(r, name, connID)
		return err
	})
	if err != nil {
		return nil, s.mapErr(err, roomID, "join")
	}
	if err := s.registry.Bind(ctx, connID, roomID); err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Str("connection_id", connID).Msg("registry bind failed")
	}
	s.broadcaster.Admit(roomID, connID)
	log.Info().
		Str("event", "player_joined").
		Str("room_id", roomID).
		Str("connection_id", connID).
		Int("slot", slot).
		Msg("player joined")
	return s.publish(r, slot), nil
}

func (s *Service) Finalize(ctx context.Context, roomID, connID string, board []int) (*Result, error) {
	if roomID == "" || connID == "" {
		return nil, ErrInvalidRequest
	}
	unlock := s.locks.lock(roomID)
	defer unlock()

	slot := -1
	r, err := s.store.UpdateRoom(ctx, roomID, func(r *game.Room) error {
		var err error
		slot, err = s.engine.Finalize(r, connID, board)
		return err
	})
	if err != nil {
		return nil, s.mapErr(err, roomID, "finalize")
	}
	ev := log.Info().Str("event", "board_finalized").Str("room_id", roomID).Int("slot", slot)
	if r.Status == game.StatusPlaying {
		ev = ev.Int("first_turn", r.TurnIndex)
	}
	ev.Msg("board finalized")
	return s.publish(r, slot), nil
}

func (s *Service) Move(ctx context.Context, roomID, connID string, index int) (*Result, error) {
	if roomID == "" || connID == "" {
		return nil, ErrInvalidRequest
	}
	unlock := s.locks.lock(roomID)
	defer unlock()

	var res game.MoveResult
	r, err := s.store.UpdateRoom(ctx, roomID, func(r *game.Room) error {
		var err error
		res, err = s.engine.Move(r, connID, index)
		return err
	})
	if err != nil {
		return nil, s.mapErr(err, roomID, "move")
	}
	log.Debug().
		Str("event", "move_applied").
		Str("room_id", roomID).
		Int("slot", res.Slot).
		Int("index", res.Index).
		Int("number", res.Number).
		Int("mirrored_index", res.MirroredIndex).
		Int("mover_lines", res.MoverLines).
		Int("opponent_lines", res.OpponentLines).
		Msg("move applied")
	if res.Finished {
		log.Info().Str("event", "game_over").Str("room_id", roomID).Int("winner", res.Winner).Msg("game over")
	}
	return s.publish(r, res.Slot), nil
}

// Disconnect removes connID from whatever room it joined. It is a no-op for
// connections that never joined or whose room is gone.
func (s *Service) Disconnect(ctx context.Context, connID string) error {
	if connID == "" {
		return ErrInvalidRequest
	}
	roomID, ok, err := s.registry.Lookup(ctx, connID)
	if err != nil {
		log.Warn().Err(err).Str("connection_id", connID).Msg("registry lookup failed")
	}
	if !ok || roomID == "" {
		r, err := s.store.FindRoomByConnection(ctx, connID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return s.mapErr(err, "", "disconnect")
		}
		roomID = r.RoomID
	}
	if err := s.registry.Unbind(ctx, connID); err != nil {
		log.Warn().Err(err).Str("connection_id", connID).Msg("registry unbind failed")
	}

	unlock := s.locks.lock(roomID)
	defer unlock()

	s.broadcaster.Evict(roomID, connID)
	r, err := s.store.UpdateRoom(ctx, roomID, func(r *game.Room) error {
		if !game.RemoveConnection(r, connID) {
			return game.ErrNotInRoom
		}
		return nil
	})
	if errors.Is(err, game.ErrNotInRoom) || errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return s.mapErr(err, roomID, "disconnect")
	}
	log.Info().
		Str("event", "player_disconnected").
		Str("room_id", roomID).
		Str("connection_id", connID).
		Int("remaining", len(r.Players)).
		Msg("player disconnected")
	s.publish(r, -1)
	return nil
}

// publish broadcasts the new snapshot, followed by the reveal when the room
// just finished. Callers hold the room lock.
func (s *Service) publish(r *game.Room, slot int) *Result {
	out := &Result{Room: viewmodel.BuildRoomView(r), Slot: slot}
	s.broadcaster.RoomUpdate(r.RoomID, out.Room)
	if reveal, ok := viewmodel.BuildReveal(r); ok {
		out.Reveal = &reveal
		s.broadcaster.GameOver(r.RoomID, reveal)
	}
	return out
}

func (s *Service) mapErr(err error, roomID, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return game.ErrNotFound
	case game.IsRuleError(err), errors.Is(err, ErrInvalidRequest):
		return err
	}
	log.Error().Err(err).Str("room_id", roomID).Str("op", op).Msg("room store failure")
	return ErrServer
}

type noopBroadcaster struct{}

func (noopBroadcaster) Admit(string, string) {}
func (noopBroadcaster) Evict(string, string) {}
func (noopBroadcaster) RoomUpdate(string, viewmodel.RoomView) {}
func (noopBroadcaster) GameOver(string, viewmodel.RevealView) {}
