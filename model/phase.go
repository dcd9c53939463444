package model

type Phase string

const (
	P_CHAT        Phase = "CHAT"
	P_VOTE_PROMPT Phase = "VOTE_PROMPT"
	P_VOTING      Phase = "VOTING"
	P_ELIMINATION Phase = "ELIMINATION"
	P_RESULTS     Phase = "RESULTS"
)

var phaseTransitions = map[Phase][]Phase{
	P_CHAT:        {P_VOTE_PROMPT, P_VOTING, P_RESULTS},
	P_VOTE_PROMPT: {P_VOTING, P_RESULTS},
	P_VOTING:      {P_ELIMINATION, P_CHAT, P_RESULTS},
	P_ELIMINATION: {P_CHAT, P_RESULTS},
}

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether the state machine allows moving from p to target.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, phase := range phaseTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}

// IsTimed reports whether the phase counts down on every tick.
func (p Phase) IsTimed() bool {
	switch p {
	case P_CHAT, P_VOTING, P_ELIMINATION:
		return true
	}
	return false
}

func (p Phase) IsTerminal() bool {
	return p == P_RESULTS
}
