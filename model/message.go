package model

const (
	SystemPlayerID   = "system"
	SystemPlayerName = "System"
)

type Message struct {
	ID         string `json:"id"`
	AuthorID   string `json:"authorPlayerId"`
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
	IsAI       bool   `json:"isAiOriginated"`
	IsSystem   bool   `json:"isSystem"`
	Round      int    `json:"round"`
}

func NewPlayerMessage(id string, player Player, text string, round int) Message {
	return Message{
		ID:         id,
		AuthorID:   player.ID,
		AuthorName: player.Name,
		Text:       text,
		IsAI:       player.IsAI,
		Round:      round,
	}
}

func NewSystemMessage(text string) Message {
	return Message{
		AuthorID:   SystemPlayerID,
		AuthorName: SystemPlayerName,
		Text:       text,
		IsSystem:   true,
	}
}

// View hides whether a chat line came from an AI.
func (m Message) View() Message {
	m.IsAI = false
	return m
}

type Vote struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"votedForId"`
}
