package model

// ChatRequest asks an NPC for a chat reply to the latest message.
type ChatRequest struct {
	SpeakerID     string   `json:"speakerId" binding:"required"`
	Message       string   `json:"message" binding:"required"`
	ChatHistory   string   `json:"chatHistory"`
	GameMode      GameMode `json:"gameMode,omitempty"`
	ResponderID   string   `json:"responderId,omitempty"`
	ResponderName string   `json:"responderName,omitempty"`
	ResponderIsAI bool     `json:"responderIsAi,omitempty"`
}

type ChatResponse struct {
	Response           string `json:"response"`
	UpdatedChatHistory string `json:"updatedChatHistory"`
}

type VoteTarget struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
	IsAI *bool  `json:"isAi,omitempty"`
}

// VoteRequest asks an NPC whom to vote for. EligibleTargets is already filtered by the caller.
type VoteRequest struct {
	VoterID         string       `json:"voterId" binding:"required"`
	VoterName       string       `json:"voterName"`
	EligibleTargets []VoteTarget `json:"eligibleTargets" binding:"required,min=1,dive"`
	ChatHistory     string       `json:"chatHistory"`
	GameMode        GameMode     `json:"gameMode"`
}

type VoteResponse struct {
	VotedForPlayerID string `json:"votedForPlayerId"`
}

// BroadcastPacket is one frame pushed to stream subscribers and the realtime log.
type BroadcastPacket struct {
	ID      string   `json:"id"`
	Idx     int      `json:"idx"`
	Event   string   `json:"event"`
	Round   int      `json:"round"`
	Phase   Phase    `json:"phase"`
	Message *Message `json:"message,omitempty"`
	FromID  *string  `json:"fromId,omitempty"`
	ToID    *string  `json:"toId,omitempty"`
	State   *View    `json:"state,omitempty"`
}
