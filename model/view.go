package model

import "sort"

// View is the game as the human player is allowed to see it.
type View struct {
	GameID          string         `json:"gameId"`
	Mode            GameMode       `json:"gameMode"`
	Phase           Phase          `json:"phase"`
	Round           int            `json:"round"`
	TimeRemaining   int            `json:"timeRemaining"`
	Players         []PlayerView   `json:"players"`
	Messages        []Message      `json:"messages"`
	Typing          []string       `json:"typing"`
	Votes           []Vote         `json:"votes"`
	VoteCounts      map[string]int `json:"voteCounts"`
	HumanVote       *string        `json:"humanVote,omitempty"`
	AliveAICount    int            `json:"aliveAiCount"`
	AliveHumanCount int            `json:"aliveHumanCount"`
	LastEliminated  *PlayerView    `json:"lastEliminated,omitempty"`
	Result          *Result        `json:"result,omitempty"`
}

func NewView(state GameState) View {
	reveal := state.IsFinished()
	view := View{
		GameID:          state.ID,
		Mode:            state.Mode,
		Phase:           state.Phase,
		Round:           state.CurrentRound,
		TimeRemaining:   state.TimeRemaining,
		Players:         make([]PlayerView, 0, len(state.Players)),
		Messages:        make([]Message, 0, len(state.Messages)),
		Typing:          make([]string, 0, len(state.Typing)),
		Votes:           state.Votes(),
		VoteCounts:      state.VoteCounts(),
		AliveAICount:    state.AliveAICount,
		AliveHumanCount: state.AliveHumanCount,
		Result:          state.Result,
	}
	for _, player := range state.Players {
		view.Players = append(view.Players, player.View(reveal))
	}
	for _, message := range state.Messages {
		if reveal {
			view.Messages = append(view.Messages, message)
		} else {
			view.Messages = append(view.Messages, message.View())
		}
	}
	for id, typing := range state.Typing {
		if typing {
			view.Typing = append(view.Typing, id)
		}
	}
	sort.Strings(view.Typing)
	if target, ok := state.PendingVotes[state.HumanID]; ok {
		view.HumanVote = &target
	}
	if state.LastEliminated != nil {
		eliminated := state.LastEliminated.View(true)
		view.LastEliminated = &eliminated
	}
	return view
}
