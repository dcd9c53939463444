package logic

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/service"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/oklog/ulid/v2"
)

var ErrGameClosed = errors.New("game is closed")

type Subscriber func(packet model.BroadcastPacket)

// Game owns one session: it serialises every action through the scheduler and
// turns the resulting events into timers, NPC work and broadcasts.
type Game struct {
	ID       string
	Settings model.GameSettings

	config    *model.Config
	setting   *model.Setting
	scheduler *Scheduler
	gateway   Gateway
	clock     Clock
	humanizer *Humanizer

	mu        sync.Mutex
	state     model.GameState
	closed    bool
	started   bool
	updatedAt time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once

	timersMu sync.Mutex
	timers   map[uint64]Timer
	timerSeq uint64

	subscribersMu sync.Mutex
	subscribers   map[uint64]Subscriber
	subscriberSeq uint64

	jsonLogger                   *service.JSONLogger
	gameLogger                   *service.GameLogger
	realtimeBroadcaster          *service.RealtimeBroadcaster
	realtimeBroadcasterPacketIdx int
}

func NewGame(config *model.Config, setting *model.Setting, settings model.GameSettings, gateway Gateway) (*Game, error) {
	settings, err := settings.Normalize()
	if err != nil {
		return nil, err
	}
	humanizer := NewHumanizer(setting)
	players, err := util.GenerateRoster(settings.PlayerCount, settings.AIs(), settings.GameMode, humanizer.Rand())
	if err != nil {
		return nil, err
	}
	id := ulid.Make().String()
	ctx, cancel := context.WithCancel(context.Background())
	slog.Info("created game", "id", id, "mode", settings.GameMode, "players", settings.PlayerCount, "ais", settings.AIs())
	return &Game{
		ID:          id,
		Settings:    settings,
		config:      config,
		setting:     setting,
		scheduler:   NewScheduler(setting),
		gateway:     gateway,
		clock:       NewRealClock(),
		humanizer:   humanizer,
		state:       model.NewInitializeGameState(id, settings.GameMode, players, setting.ChatDuration),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		timers:      make(map[uint64]Timer),
		subscribers: make(map[uint64]Subscriber),
	}, nil
}

// SetClock replaces the real clock. It must be called before Start.
func (g *Game) SetClock(clock Clock) {
	g.clock = clock
}

func (g *Game) SetJSONLogger(jsonLogger *service.JSONLogger) {
	g.jsonLogger = jsonLogger
}

func (g *Game) SetGameLogger(gameLogger *service.GameLogger) {
	g.gameLogger = gameLogger
}

func (g *Game) SetRealtimeBroadcaster(realtimeBroadcaster *service.RealtimeBroadcaster) {
	g.realtimeBroadcaster = realtimeBroadcaster
}

func (g *Game) Start() {
	g.mu.Lock()
	if g.started || g.closed {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.updatedAt = g.clock.Now()
	players := append([]model.Player(nil), g.state.Players...)
	g.mu.Unlock()

	slog.Info("starting game", "id", g.ID)
	if g.jsonLogger != nil {
		g.jsonLogger.TrackStartGame(g.ID, g.Settings, players)
	}
	if g.gameLogger != nil {
		g.gameLogger.TrackStartGame(g.ID, players)
	}
	if g.realtimeBroadcaster != nil {
		g.realtimeBroadcaster.TrackStartGame(g.ID, players)
	}

	g.mu.Lock()
	g.broadcast(g.newPacket("start"))
	g.mu.Unlock()
	g.scheduleTick()
}

// Close ends the session early, stops every pending timer and cancels in-flight gateway calls.
func (g *Game) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	if !g.state.IsFinished() {
		g.applyLocked(model.Action{Type: model.A_CLOSE})
	}
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	g.stopTimers()
	g.markDone()
	slog.Info("closed game", "id", g.ID)
}

func (g *Game) Done() <-chan struct{} {
	return g.done
}

func (g *Game) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.IsFinished()
}

// UpdatedAt is the time of the last human action, used to reap idle sessions.
func (g *Game) UpdatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updatedAt
}

func (g *Game) State() model.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

func (g *Game) View() model.View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.NewView(g.state)
}

// Subscribe registers fn for every broadcast packet and returns a function that removes it.
// fn runs while the game is locked and must not block or call back into the game.
func (g *Game) Subscribe(fn Subscriber) func() {
	g.subscribersMu.Lock()
	defer g.subscribersMu.Unlock()
	g.subscriberSeq++
	key := g.subscriberSeq
	g.subscribers[key] = fn
	return func() {
		g.subscribersMu.Lock()
		defer g.subscribersMu.Unlock()
		delete(g.subscribers, key)
	}
}

func (g *Game) SendMessage(text string) error {
	g.mu.Lock()
	human := g.state.Human()
	g.mu.Unlock()
	message := model.NewPlayerMessage(ulid.Make().String(), human, text, 0)
	return g.dispatchHuman(model.NewMessageAction("", 0, message))
}

func (g *Game) ConfirmVote() error {
	return g.dispatchHuman(model.Action{Type: model.A_CONFIRM_VOTE, PlayerID: model.HumanPlayerID})
}

func (g *Game) CastVote(targetID string) error {
	return g.dispatchHuman(model.NewVoteAction("", 0, model.HumanPlayerID, targetID))
}

func (g *Game) Continue() error {
	return g.dispatchHuman(model.Action{Type: model.A_CONTINUE, PlayerID: model.HumanPlayerID})
}

func (g *Game) dispatchHuman(action model.Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGameClosed
	}
	if err := g.applyLocked(action); err != nil {
		slog.Warn("rejected human action", "id", g.ID, "action", action.Type, "error", err)
		return err
	}
	g.updatedAt = g.clock.Now()
	return nil
}

// dispatch applies an action raised by a timer or an NPC.
func (g *Game) dispatch(action model.Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGameClosed
	}
	err := g.applyLocked(action)
	if errors.Is(err, ErrStaleAction) || errors.Is(err, ErrInvalidPlayer) || errors.Is(err, ErrGameFinished) {
		slog.Debug("discarded action", "id", g.ID, "action", action.Type, "player", action.PlayerID, "error", err)
	} else if err != nil {
		slog.Warn("failed to apply action", "id", g.ID, "action", action.Type, "player", action.PlayerID, "error", err)
	}
	return err
}

func (g *Game) applyLocked(action model.Action) error {
	next, events, err := g.scheduler.Apply(g.state, action)
	if err != nil {
		return err
	}
	g.state = next
	for _, event := range events {
		g.handleEvent(event)
	}
	return nil
}

func (g *Game) scheduleTick() {
	g.after(g.setting.TickInterval, func() {
		if err := g.dispatch(model.NewTickAction("", 0)); err != nil {
			return
		}
		g.scheduleTick()
	})
}

// after runs f once d has elapsed unless the game is closed first.
func (g *Game) after(d time.Duration, f func()) {
	g.timersMu.Lock()
	defer g.timersMu.Unlock()
	if g.ctx.Err() != nil {
		return
	}
	g.timerSeq++
	key := g.timerSeq
	g.timers[key] = g.clock.AfterFunc(d, func() {
		g.timersMu.Lock()
		delete(g.timers, key)
		g.timersMu.Unlock()
		if g.ctx.Err() != nil {
			return
		}
		f()
	})
}

func (g *Game) stopTimers() {
	g.timersMu.Lock()
	defer g.timersMu.Unlock()
	for key, timer := range g.timers {
		timer.Stop()
		delete(g.timers, key)
	}
}

func (g *Game) markDone() {
	g.doneOnce.Do(func() {
		close(g.done)
	})
}
