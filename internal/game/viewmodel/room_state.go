package viewmodel

import "bingo-battle/internal/game"

// PlayerView is what every room member may see about a player before the
// game ends. Boards are deliberately absent.
type PlayerView struct {
	Name      string `json:"name"`
	Finalized bool   `json:"finalized"`
	Selected  []int  `json:"selected"`
}

type RoomView struct {
	RoomID    string       `json:"roomId"`
	Status    string       `json:"status"`
	TurnIndex int          `json:"turnIndex"`
	Players   []PlayerView `json:"players"`
}

type BoardReveal struct {
	Board    []int `json:"board"`
	Selected []int `json:"selected"`
}

type RevealView struct {
	Winner *int          `json:"winner"`
	Boards []BoardReveal `json:"boards"`
}

func BuildRoomView(r *game.Room) RoomView {
	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		if p == nil {
			continue
		}
		players = append(players, PlayerView{
			Name:      p.Name,
			Finalized: p.Finalized,
			Selected:  copyInts(p.Selected),
		})
	}
	return RoomView{
		RoomID:    r.RoomID,
		Status:    string(r.Status),
		TurnIndex: r.TurnIndex,
		Players:   players,
	}
}

// BuildReveal discloses every board. It only succeeds once the room is
// finished.
func BuildReveal(r *game.Room) (RevealView, bool) {
	if r.Status != game.StatusFinished {
		return RevealView{}, false
	}
	boards := make([]BoardReveal, 0, len(r.Players))
	for _, p := range r.Players {
		if p == nil {
			continue
		}
		boards = append(boards, BoardReveal{
			Board:    copyInts(p.Board),
			Selected: copyInts(p.Selected),
		})
	}
	var winner *int
	if r.Winner != nil {
		w := *r.Winner
		winner = &w
	}
	return RevealView{Winner: winner, Boards: boards}, true
}

func copyInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
