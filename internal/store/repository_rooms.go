package store

import (
	"context"
	"encoding/json"
	"time"

	"bingo-battle/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const roomColumns = `room_id, status, turn_index, winner, players, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*game.Room, error) {
	var (
		r       game.Room
		status  string
		winner  pgtype.Int4
		players []byte
	)
	if err := row.Scan(&r.RoomID, &status, &r.TurnIndex, &winner, &players, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	r.Status = game.Status(status)
	r.Winner = intPtrVal(winner)
	if err := json.Unmarshal(players, &r.Players); err != nil {
		return nil, err
	}
	if r.Players == nil {
		r.Players = []*game.Player{}
	}
	return &r, nil
}

func (s *Store) CreateRoom(ctx context.Context, r *game.Room) error {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.RoomID, string(r.Status), r.TurnIndex, int4PtrParam(r.Winner), players, r.Version, r.CreatedAt, r.UpdatedAt,
	)
	return mapConflict(err)
}

func (s *Store) GetRoom(ctx context.Context, roomID string) (*game.Room, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE room_id = $1`, roomID)
	return scanRoom(row)
}

// UpdateRoom loads the room under a row lock, lets fn mutate it and writes it
// back in the same transaction. If fn returns an error nothing is written and
// the error is returned unchanged.
func (s *Store) UpdateRoom(ctx context.Context, roomID string, fn func(*game.Room) error) (*game.Room, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE room_id = $1 FOR UPDATE`, roomID)
	r, err := scanRoom(row)
	if err != nil {
		return nil, err
	}
	prev := r.Version
	if err := fn(r); err != nil {
		return nil, err
	}
	r.Version = prev + 1
	r.UpdatedAt = time.Now().UTC()
	players, err := json.Marshal(r.Players)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx,
		`UPDATE rooms SET status = $2, turn_index = $3, winner = $4, players = $5, version = $6, updated_at = $7
		 WHERE room_id = $1 AND version = $8`,
		r.RoomID, string(r.Status), r.TurnIndex, int4PtrParam(r.Winner), players, r.Version, r.UpdatedAt, prev,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, ErrConflict
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// FindRoomByConnection returns the room that has connID in a player slot.
func (s *Store) FindRoomByConnection(ctx context.Context, connID string) (*game.Room, error) {
	filter, err := json.Marshal([]map[string]string{{"connection_id": connID}})
	if err != nil {
		return nil, err
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE players @> $1::jsonb ORDER BY updated_at DESC LIMIT 1`,
		string(filter),
	)
	return scanRoom(row)
}

// DeleteIdleRooms removes empty rooms that have not changed since cutoff.
func (s *Store) DeleteIdleRooms(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx,
		`DELETE FROM rooms WHERE updated_at < $1 AND jsonb_array_length(players) = 0`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
