package model

type ActionType string

const (
	A_TICK         ActionType = "TICK"
	A_SEND_MESSAGE ActionType = "SEND_MESSAGE"
	A_SET_TYPING   ActionType = "SET_TYPING"
	A_CONFIRM_VOTE ActionType = "CONFIRM_VOTE"
	A_CAST_VOTE    ActionType = "CAST_VOTE"
	A_CONTINUE     ActionType = "CONTINUE"
	A_CLOSE        ActionType = "CLOSE"
)

func (a ActionType) String() string {
	return string(a)
}

// Action is a discrete request to change the game state.
// Phase and Round record when the action was issued; the scheduler drops it once either has moved on.
type Action struct {
	Type     ActionType
	Phase    Phase
	Round    int
	PlayerID string
	TargetID string
	Message  *Message
	Typing   bool
}

func NewTickAction(phase Phase, round int) Action {
	return Action{Type: A_TICK, Phase: phase, Round: round}
}

func NewMessageAction(phase Phase, round int, message Message) Action {
	return Action{Type: A_SEND_MESSAGE, Phase: phase, Round: round, PlayerID: message.AuthorID, Message: &message}
}

func NewTypingAction(phase Phase, round int, playerID string, typing bool) Action {
	return Action{Type: A_SET_TYPING, Phase: phase, Round: round, PlayerID: playerID, Typing: typing}
}

func NewVoteAction(phase Phase, round int, voterID, targetID string) Action {
	return Action{Type: A_CAST_VOTE, Phase: phase, Round: round, PlayerID: voterID, TargetID: targetID}
}

type EventType string

const (
	E_TICK              EventType = "TICK"
	E_PHASE_CHANGED     EventType = "PHASE_CHANGED"
	E_MESSAGE_ADDED     EventType = "MESSAGE_ADDED"
	E_TYPING_CHANGED    EventType = "TYPING_CHANGED"
	E_VOTE_CAST         EventType = "VOTE_CAST"
	E_PLAYER_ELIMINATED EventType = "PLAYER_ELIMINATED"
	E_NO_ELIMINATION    EventType = "NO_ELIMINATION"
	E_GAME_FINISHED     EventType = "GAME_FINISHED"
)

func (e EventType) String() string {
	return string(e)
}

// Event describes one consequence of an applied action.
type Event struct {
	Type     EventType
	Phase    Phase
	Round    int
	PlayerID string
	TargetID string
	Message  *Message
	Player   *Player
	Result   *Result
}
