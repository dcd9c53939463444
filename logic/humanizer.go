package logic

import (
	"time"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
)

// Humanizer adds human-looking noise to NPC behaviour. A zero seed turns the noise off:
// no skipped replies, no gut-feeling votes and every delay at its lower bound.
type Humanizer struct {
	rnd     util.Rand
	noisy   bool
	setting *model.Setting
}

func NewHumanizer(setting *model.Setting) *Humanizer {
	return &Humanizer{
		rnd:     util.NewLockedRand(util.NewRand(setting.NPC.Seed)),
		noisy:   setting.NPC.Seed != 0,
		setting: setting,
	}
}

func (h *Humanizer) Rand() util.Rand {
	return h.rnd
}

func (h *Humanizer) NoticeDelay() time.Duration {
	return h.delay(h.setting.NPC.NoticeDelay)
}

func (h *Humanizer) ComposeDelay() time.Duration {
	return h.delay(h.setting.NPC.ComposeDelay)
}

// VoteDelay staggers the order-th of count voters across the configured range.
func (h *Humanizer) VoteDelay(order, count int) time.Duration {
	delay := h.setting.NPC.VoteDelay
	if h.noisy {
		return util.RandomDuration(h.rnd, delay.Min, delay.Max)
	}
	if count <= 1 || delay.Max <= delay.Min {
		return delay.Min
	}
	step := (delay.Max - delay.Min) / time.Duration(count)
	return delay.Min + step*time.Duration(order)
}

func (h *Humanizer) SkipReply() bool {
	return h.noisy && h.rnd.Float64() < h.setting.NPC.SkipChance
}

func (h *Humanizer) GutFeeling() bool {
	return h.noisy && h.rnd.Float64() < h.setting.NPC.GutFeelingChance
}

func (h *Humanizer) Pick(players []model.Player) model.Player {
	return util.SelectRandomPlayer(h.rnd, players)
}

func (h *Humanizer) delay(r model.DelayRange) time.Duration {
	if !h.noisy {
		return r.Min
	}
	return util.RandomDuration(h.rnd, r.Min, r.Max)
}
