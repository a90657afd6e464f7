package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Engine applies player actions to a Room. Every method validates fully
// before mutating, so a returned error means the room was left untouched.
type Engine struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewEngine(src rand.Source) *Engine {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Engine{rnd: rand.New(src)}
}

type MoveResult struct {
	Slot          int
	Index         int
	Number        int
	MirroredIndex int
	MoverLines    int
	OpponentLines int
	Finished      bool
	Winner        int
}

// Join binds connID to the next free slot and returns that slot.
func (e *Engine) Join(r *Room, name, connID string) (int, error) {
	if r.Full() {
		return -1, ErrRoomFull
	}
	if r.SlotOf(connID) >= 0 {
		return -1, ErrInvalidState
	}
	slot := len(r.Players)
	r.Players = append(r.Players, &Player{
		ConnectionID: connID,
		Name:         normalizeName(name, slot),
		Board:        []int{},
		Selected:     []int{},
	})
	r.Status = StatusWaiting
	return slot, nil
}

// Finalize locks in the board for connID's slot and starts the game once
// both players have finalized.
func (e *Engine) Finalize(r *Room, connID string, board []int) (int, error) {
	slot := r.SlotOf(connID)
	if err := ValidateFinalize(r, slot); err != nil {
		return slot, err
	}
	if err := ValidateBoard(board); err != nil {
		return slot, err
	}
	p := r.Players[slot]
	p.Board = append([]int(nil), board...)
	p.Finalized = true
	if r.AllFinalized() {
		r.Status = StatusPlaying
		r.TurnIndex = e.coinFlip()
		r.Winner = nil
	}
	return slot, nil
}

// Move marks index on the mover's board, mirrors the called number onto the
// opponent's board, and either ends the game or passes the turn.
func (e *Engine) Move(r *Room, connID string, index int) (MoveResult, error) {
	slot := r.SlotOf(connID)
	if err := ValidateMove(r, slot, index); err != nil {
		return MoveResult{}, err
	}
	mover := r.Players[slot]
	oppSlot := 1 - slot
	opp := r.Players[oppSlot]

	number := mover.Board[index]
	mover.Selected = append(mover.Selected, index)

	mirrored := opp.IndexOf(number)
	if mirrored >= 0 && !opp.HasSelected(mirrored) {
		opp.Selected = append(opp.Selected, mirrored)
	} else {
		mirrored = -1
	}

	res := MoveResult{
		Slot:          slot,
		Index:         index,
		Number:        number,
		MirroredIndex: mirrored,
		MoverLines:    CountCompletedLines(mover.Selected),
		OpponentLines: CountCompletedLines(opp.Selected),
		Winner:        -1,
	}
	// The mover is checked first, so a mirrored mark that completes both
	// boards at once goes to the mover.
	switch {
	case res.MoverLines >= LinesToWin:
		res.Winner = slot
	case res.OpponentLines >= LinesToWin:
		res.Winner = oppSlot
	}
	if res.Winner >= 0 {
		res.Finished = true
		r.Status = StatusFinished
		w := res.Winner
		r.Winner = &w
		return res, nil
	}
	r.TurnIndex = oppSlot
	return res, nil
}

// RemoveConnection drops the player bound to connID. The surviving player
// keeps their board but starts over with no marks, and the room goes back
// to waiting.
func RemoveConnection(r *Room, connID string) bool {
	slot := r.SlotOf(connID)
	if slot < 0 {
		return false
	}
	r.Players = append(r.Players[:slot], r.Players[slot+1:]...)
	for _, p := range r.Players {
		p.Selected = []int{}
	}
	r.Status = StatusWaiting
	r.TurnIndex = 0
	r.Winner = nil
	return true
}

func (e *Engine) coinFlip() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(MaxPlayers)
}

func normalizeName(name string, slot int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Player %d", slot+1)
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return name
}
