package game

import "time"

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusReady    Status = "ready"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	MaxPlayers   = 2
	GridWidth    = 5
	BoardSize    = GridWidth * GridWidth
	LinesToWin   = 5
	maxNameRunes = 32
)

type Player struct {
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
	Board        []int  `json:"board"`
	Selected     []int  `json:"selected"`
	Finalized    bool   `json:"finalized"`
}

func (p *Player) HasSelected(index int) bool {
	for _, i := range p.Selected {
		if i == index {
			return true
		}
	}
	return false
}

// IndexOf returns the board position holding number, or -1.
func (p *Player) IndexOf(number int) int {
	for i, n := range p.Board {
		if n == number {
			return i
		}
	}
	return -1
}

func (p *Player) clone() *Player {
	cp := *p
	cp.Board = append([]int(nil), p.Board...)
	cp.Selected = append([]int(nil), p.Selected...)
	return &cp
}

type Room struct {
	RoomID    string    `json:"room_id"`
	Players   []*Player `json:"players"`
	TurnIndex int       `json:"turn_index"`
	Status    Status    `json:"status"`
	Winner    *int      `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

func NewRoom(id string, now time.Time) *Room {
	return &Room{
		RoomID:    id,
		Players:   []*Player{},
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SlotOf returns the slot bound to connID, or -1.
func (r *Room) SlotOf(connID string) int {
	if connID == "" {
		return -1
	}
	for i, p := range r.Players {
		if p != nil && p.ConnectionID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) Full() bool {
	return len(r.Players) >= MaxPlayers
}

func (r *Room) AllFinalized() bool {
	if len(r.Players) < MaxPlayers {
		return false
	}
	for _, p := range r.Players {
		if !p.Finalized {
			return false
		}
	}
	return true
}

func (r *Room) Clone() *Room {
	cp := *r
	cp.Players = make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		cp.Players = append(cp.Players, p.clone())
	}
	if r.Winner != nil {
		w := *r.Winner
		cp.Winner = &w
	}
	return &cp
}
