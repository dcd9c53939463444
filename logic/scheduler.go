package logic

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
)

var (
	ErrStaleAction    = errors.New("action was issued for an earlier phase or round")
	ErrPhaseMismatch  = errors.New("action is not allowed in the current phase")
	ErrInvalidPlayer  = errors.New("player is unknown or no longer active")
	ErrInvalidTarget  = errors.New("vote target is not eligible")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrVoteLocked     = errors.New("vote was already cast this round")
	ErrGameFinished   = errors.New("game is finished")
	ErrUnknownAction  = errors.New("unknown action")
	ErrNotHumanPlayer = errors.New("only the human player can do this")
)

const (
	votingStartedText = "Time's up! Please cast your votes."
	noEliminationText = "No one was eliminated this round."
)

// Scheduler is the pure transition function of a game. Apply never mutates its input
// and never blocks, so the orchestrator can call it under a lock.
type Scheduler struct {
	setting *model.Setting
}

func NewScheduler(setting *model.Setting) *Scheduler {
	return &Scheduler{setting: setting}
}

func (s *Scheduler) Apply(state model.GameState, action model.Action) (model.GameState, []model.Event, error) {
	if state.IsFinished() {
		return state, nil, ErrGameFinished
	}
	if isStale(state, action) {
		return state, nil, ErrStaleAction
	}
	next := state.Clone()
	var (
		events []model.Event
		err    error
	)
	switch action.Type {
	case model.A_TICK:
		events = s.applyTick(&next)
	case model.A_SEND_MESSAGE:
		events, err = s.applyMessage(&next, action)
	case model.A_SET_TYPING:
		events, err = s.applyTyping(&next, action)
	case model.A_CONFIRM_VOTE:
		events, err = s.applyConfirmVote(&next, action)
	case model.A_CAST_VOTE:
		events, err = s.applyVote(&next, action)
	case model.A_CONTINUE:
		events, err = s.applyContinue(&next)
	case model.A_CLOSE:
		events = s.finish(&next, model.T_NONE, model.R_SESSION_CLOSED)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
	}
	if err != nil {
		return state, nil, err
	}
	return next, events, nil
}

// isStale reports whether an action stamped with a phase and round has been overtaken.
// Actions without a phase are applied against whatever phase is current.
func isStale(state model.GameState, action model.Action) bool {
	if action.Phase == "" {
		return false
	}
	return action.Phase != state.Phase || action.Round != state.CurrentRound
}

func (s *Scheduler) applyTick(state *model.GameState) []model.Event {
	if !state.Phase.IsTimed() {
		return nil
	}
	state.TimeRemaining = max(0, state.TimeRemaining-1)
	events := []model.Event{newEvent(state, model.E_TICK)}
	if state.TimeRemaining > 0 {
		return events
	}
	switch state.Phase {
	case model.P_CHAT:
		events = append(events, s.endChat(state)...)
	case model.P_VOTING:
		events = append(events, s.resolveVoting(state)...)
	case model.P_ELIMINATION:
		events = append(events, s.leaveElimination(state)...)
	}
	return events
}

func (s *Scheduler) applyMessage(state *model.GameState, action model.Action) ([]model.Event, error) {
	if state.Phase != model.P_CHAT {
		return nil, ErrPhaseMismatch
	}
	if action.Message == nil || !state.IsActive(action.PlayerID) {
		return nil, ErrInvalidPlayer
	}
	message := *action.Message
	message.Text = util.NormalizeText(message.Text, s.setting.MaxMessageLength)
	if message.Text == "" {
		return nil, ErrEmptyMessage
	}
	message.Round = state.CurrentRound
	if message.ID == "" {
		message.ID = state.NextMessageID("msg")
	}
	state.Messages = append(state.Messages, message)

	events := make([]model.Event, 0, 2)
	if state.Typing[message.AuthorID] {
		delete(state.Typing, message.AuthorID)
		event := newEvent(state, model.E_TYPING_CHANGED)
		event.PlayerID = message.AuthorID
		events = append(events, event)
	}
	event := newEvent(state, model.E_MESSAGE_ADDED)
	event.PlayerID = message.AuthorID
	event.Message = &message
	return append(events, event), nil
}

func (s *Scheduler) applyTyping(state *model.GameState, action model.Action) ([]model.Event, error) {
	if state.Phase != model.P_CHAT {
		return nil, ErrPhaseMismatch
	}
	if !state.IsActive(action.PlayerID) {
		return nil, ErrInvalidPlayer
	}
	if state.Typing[action.PlayerID] == action.Typing {
		return nil, nil
	}
	if action.Typing {
		state.Typing[action.PlayerID] = true
	} else {
		delete(state.Typing, action.PlayerID)
	}
	event := newEvent(state, model.E_TYPING_CHANGED)
	event.PlayerID = action.PlayerID
	return []model.Event{event}, nil
}

func (s *Scheduler) applyConfirmVote(state *model.GameState, action model.Action) ([]model.Event, error) {
	if state.Phase != model.P_VOTE_PROMPT {
		return nil, ErrPhaseMismatch
	}
	if action.PlayerID != "" && action.PlayerID != state.HumanID {
		return nil, ErrNotHumanPlayer
	}
	return s.enterVoting(state), nil
}

func (s *Scheduler) applyVote(state *model.GameState, action model.Action) ([]model.Event, error) {
	if state.Phase != model.P_VOTING {
		return nil, ErrPhaseMismatch
	}
	if !state.IsActive(action.PlayerID) {
		return nil, ErrInvalidPlayer
	}
	if action.TargetID == action.PlayerID || !state.IsActive(action.TargetID) {
		return nil, ErrInvalidTarget
	}
	if _, voted := state.PendingVotes[action.PlayerID]; voted && !s.setting.AllowVoteChange {
		return nil, ErrVoteLocked
	}
	state.PendingVotes[action.PlayerID] = action.TargetID

	event := newEvent(state, model.E_VOTE_CAST)
	event.PlayerID = action.PlayerID
	event.TargetID = action.TargetID
	events := []model.Event{event}
	if s.setting.Rule.Kind != model.RULE_THRESHOLD {
		return events, nil
	}
	tally := util.Tally(state.PendingVotes, state.Players, s.setting.Rule)
	if tally.Eliminated == nil {
		return events, nil
	}
	return append(events, s.eliminate(state, tally)...), nil
}

func (s *Scheduler) applyContinue(state *model.GameState) ([]model.Event, error) {
	if state.Phase != model.P_ELIMINATION {
		return nil, ErrPhaseMismatch
	}
	return s.leaveElimination(state), nil
}

func (s *Scheduler) endChat(state *model.GameState) []model.Event {
	clear(state.Typing)
	if team, reason := util.CalcWinSideTeam(state.Players, state.Mode); team != model.T_NONE {
		return s.finish(state, team, reason)
	}
	if s.setting.AutoStartVote {
		return s.enterVoting(state)
	}
	events := s.enterPhase(state, model.P_VOTE_PROMPT, 0)
	text := fmt.Sprintf("Voting Round %d is about to begin!", state.CurrentRound+1)
	return append(events, s.addSystemMessage(state, text))
}

func (s *Scheduler) enterVoting(state *model.GameState) []model.Event {
	state.CurrentRound++
	clear(state.PendingVotes)
	clear(state.Typing)
	state.LastEliminated = nil
	events := s.enterPhase(state, model.P_VOTING, s.setting.VoteDuration)
	return append(events, s.addSystemMessage(state, votingStartedText))
}

// resolveVoting settles a voting phase whose timer ran out.
func (s *Scheduler) resolveVoting(state *model.GameState) []model.Event {
	tally := util.Tally(state.PendingVotes, state.Players, s.setting.Rule)
	if tally.Eliminated != nil {
		return s.eliminate(state, tally)
	}
	clear(state.PendingVotes)
	events := []model.Event{
		newEvent(state, model.E_NO_ELIMINATION),
		s.addSystemMessage(state, noEliminationText),
	}
	return append(events, s.enterReveal(state)...)
}

func (s *Scheduler) eliminate(state *model.GameState, tally util.TallyResult) []model.Event {
	state.Players = tally.Players
	state.RecountAlive()
	eliminated := *tally.Eliminated
	state.LastEliminated = &eliminated
	clear(state.PendingVotes)

	event := newEvent(state, model.E_PLAYER_ELIMINATED)
	event.PlayerID = eliminated.ID
	event.Player = &eliminated
	events := []model.Event{event, s.addSystemMessage(state, tally.SystemMessage.Text)}

	if team, reason := util.CalcWinSideTeam(state.Players, state.Mode); team != model.T_NONE {
		return append(events, s.finish(state, team, reason)...)
	}
	return append(events, s.enterReveal(state)...)
}

func (s *Scheduler) enterReveal(state *model.GameState) []model.Event {
	if s.setting.RevealDuration <= 0 {
		return s.leaveElimination(state)
	}
	return s.enterPhase(state, model.P_ELIMINATION, s.setting.RevealDuration)
}

func (s *Scheduler) leaveElimination(state *model.GameState) []model.Event {
	if state.CurrentRound >= s.setting.MaxRounds {
		team, reason := util.CalcRoundLimitWinner(state.Players, state.Mode)
		return s.finish(state, team, reason)
	}
	if s.setting.ClearChatEachRound {
		state.Messages = []model.Message{}
	}
	clear(state.PendingVotes)
	clear(state.Typing)
	state.LastEliminated = nil
	return s.enterPhase(state, model.P_CHAT, s.setting.ChatDuration)
}

func (s *Scheduler) finish(state *model.GameState, team model.Team, reason model.Reason) []model.Event {
	clear(state.Typing)
	result := model.NewResult(state.Mode, team, reason, state.CurrentRound)
	state.Result = &result
	events := s.enterPhase(state, model.P_RESULTS, 0)
	event := newEvent(state, model.E_GAME_FINISHED)
	event.Result = &result
	return append(events, event)
}

func (s *Scheduler) enterPhase(state *model.GameState, phase model.Phase, duration int) []model.Event {
	if !state.Phase.CanTransitionTo(phase) {
		slog.Error("unexpected phase transition", "id", state.ID, "from", state.Phase, "to", phase)
	}
	state.Phase = phase
	state.TimeRemaining = duration
	return []model.Event{newEvent(state, model.E_PHASE_CHANGED)}
}

func (s *Scheduler) addSystemMessage(state *model.GameState, text string) model.Event {
	message := model.NewSystemMessage(text)
	message.ID = state.NextMessageID(model.SystemPlayerID)
	message.Round = state.CurrentRound
	state.Messages = append(state.Messages, message)
	event := newEvent(state, model.E_MESSAGE_ADDED)
	event.PlayerID = model.SystemPlayerID
	event.Message = &message
	return event
}

func newEvent(state *model.GameState, eventType model.EventType) model.Event {
	return model.Event{Type: eventType, Phase: state.Phase, Round: state.CurrentRound}
}
