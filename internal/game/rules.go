package game

import "errors"

var (
	ErrNotFound        = errors.New("room_not_found")
	ErrRoomFull        = errors.New("room_full")
	ErrNotInRoom       = errors.New("not_in_room")
	ErrInvalidState    = errors.New("invalid_state")
	ErrNotYourTurn     = errors.New("not_your_turn")
	ErrInvalidMove     = errors.New("invalid_move")
	ErrAlreadySelected = errors.New("already_selected")
	ErrInvalidBoard    = errors.New("invalid_board")
)

var domainErrors = []error{
	ErrNotFound,
	ErrRoomFull,
	ErrNotInRoom,
	ErrInvalidState,
	ErrNotYourTurn,
	ErrInvalidMove,
	ErrAlreadySelected,
	ErrInvalidBoard,
}

// IsRuleError reports whether err is one of the validation errors above.
func IsRuleError(err error) bool {
	for _, e := range domainErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// ValidateBoard accepts exactly 25 distinct positive integers.
func ValidateBoard(board []int) error {
	if len(board) != BoardSize {
		return ErrInvalidBoard
	}
	seen := make(map[int]struct{}, BoardSize)
	for _, n := range board {
		if n <= 0 {
			return ErrInvalidBoard
		}
		if _, dup := seen[n]; dup {
			return ErrInvalidBoard
		}
		seen[n] = struct{}{}
	}
	return nil
}

func ValidateFinalize(r *Room, slot int) error {
	if slot < 0 {
		return ErrNotInRoom
	}
	if r.Players[slot].Finalized {
		return ErrInvalidState
	}
	if r.Status == StatusPlaying || r.Status == StatusFinished {
		return ErrInvalidState
	}
	return nil
}

func ValidateMove(r *Room, slot, index int) error {
	if r.Status != StatusPlaying {
		return ErrInvalidState
	}
	if slot < 0 {
		return ErrNotInRoom
	}
	if slot != r.TurnIndex {
		return ErrNotYourTurn
	}
	mover := r.Players[slot]
	if index < 0 || index >= len(mover.Board) {
		return ErrInvalidMove
	}
	if mover.HasSelected(index) {
		return ErrAlreadySelected
	}
	return nil
}
