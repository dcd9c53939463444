package model

import "fmt"

const (
	HumanPlayerID   = "player_1"
	HumanPlayerName = "You"
)

type Status string

const (
	S_ACTIVE Status = "ACTIVE"
	S_KICKED Status = "KICKED"
)

func (s Status) String() string {
	return string(s)
}

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsAI   bool   `json:"isAi"`
	Status Status `json:"status"`
}

func NewPlayer(idx int, name string, isAI bool) Player {
	return Player{
		ID:     fmt.Sprintf("player_%d", idx),
		Name:   name,
		IsAI:   isAI,
		Status: S_ACTIVE,
	}
}

func NewHumanPlayer() Player {
	return Player{
		ID:     HumanPlayerID,
		Name:   HumanPlayerName,
		IsAI:   false,
		Status: S_ACTIVE,
	}
}

func (p Player) IsActive() bool {
	return p.Status == S_ACTIVE
}

func (p Player) IsHuman() bool {
	return p.ID == HumanPlayerID
}

func (p Player) RoleName() string {
	if p.IsAI {
		return "AI"
	}
	return "Human"
}

func (p Player) String() string {
	return p.Name + "(" + p.ID + ")"
}

// PlayerView is a player as seen by the human. IsAI stays nil until the role is revealed.
type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsAI   *bool  `json:"isAi,omitempty"`
	Status Status `json:"status"`
}

func (p Player) View(reveal bool) PlayerView {
	view := PlayerView{
		ID:     p.ID,
		Name:   p.Name,
		Status: p.Status,
	}
	if reveal || p.IsHuman() || p.Status == S_KICKED {
		isAI := p.IsAI
		view.IsAI = &isAI
	}
	return view
}
