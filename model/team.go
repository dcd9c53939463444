package model

type GameMode string

const (
	M_FIND_AI      GameMode = "find-ai"
	M_HIDE_FROM_AI GameMode = "hide-from-ai"
)

func GameModeFromString(s string) (GameMode, bool) {
	switch s {
	case "find-ai":
		return M_FIND_AI, true
	case "hide-from-ai":
		return M_HIDE_FROM_AI, true
	}
	return "", false
}

func (m GameMode) String() string {
	return string(m)
}

type Team string

const (
	T_HUMAN Team = "HUMAN"
	T_AI    Team = "AI"
	T_NONE  Team = "NONE"
)

func (t Team) String() string {
	return string(t)
}

type Reason string

const (
	R_ALL_AI_FOUND       Reason = "ALL_AI_FOUND"
	R_HUMANS_OUTNUMBERED Reason = "HUMANS_OUTNUMBERED"
	R_HUMAN_FOUND        Reason = "HUMAN_FOUND"
	R_HUMAN_SURVIVED     Reason = "HUMAN_SURVIVED"
	R_ROUND_LIMIT        Reason = "ROUND_LIMIT"
	R_SESSION_CLOSED     Reason = "SESSION_CLOSED"
)

type Result struct {
	Winner    Team   `json:"winner"`
	Reason    Reason `json:"reason"`
	Round     int    `json:"round"`
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
	HumansWin bool   `json:"humansWin"`
}

func NewResult(mode GameMode, winner Team, reason Reason, round int) Result {
	result := Result{
		Winner:    winner,
		Reason:    reason,
		Round:     round,
		HumansWin: winner == T_HUMAN,
	}
	if result.HumansWin {
		result.Headline = "Humans Win!"
	} else {
		result.Headline = "AI Wins!"
	}
	switch {
	case reason == R_SESSION_CLOSED:
		result.Headline = "Game Over"
		result.Summary = "The session was closed before the game was decided."
	case mode == M_HIDE_FROM_AI && result.HumansWin:
		result.Summary = "Incredible! You survived and fooled all the AIs."
	case mode == M_HIDE_FROM_AI:
		result.Summary = "The AI collective mind was too strong. They found you."
	case result.HumansWin:
		result.Summary = "Congratulations! You successfully identified all the AI players."
	case reason == R_ROUND_LIMIT:
		result.Summary = "The rounds ran out while AI players were still hiding. Undecided games go to the AI."
	default:
		result.Summary = "The AI managed to deceive the humans. Better luck next time!"
	}
	return result
}
