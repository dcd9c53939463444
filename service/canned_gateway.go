package service

import (
	"context"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
)

// CannedGateway answers from a fixed reply list and votes at random. It needs no network.
type CannedGateway struct {
	rnd util.Rand
}

func NewCannedGateway(rnd util.Rand) *CannedGateway {
	return &CannedGateway{rnd: rnd}
}

func (c *CannedGateway) ChatReply(ctx context.Context, request model.ChatRequest) (model.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatResponse{}, err
	}
	reply := util.CannedReply(c.rnd)
	return model.ChatResponse{
		Response:           reply,
		UpdatedChatHistory: util.AppendChatHistory(request.ChatHistory, request.SpeakerID, request.Message, reply),
	}, nil
}

func (c *CannedGateway) VoteDecision(ctx context.Context, request model.VoteRequest) (model.VoteResponse, error) {
	if err := ctx.Err(); err != nil {
		return model.VoteResponse{}, err
	}
	if len(request.EligibleTargets) == 0 {
		return model.VoteResponse{}, ErrNoEligible
	}
	target := request.EligibleTargets[c.rnd.IntN(len(request.EligibleTargets))]
	return model.VoteResponse{VotedForPlayerID: target.ID}, nil
}
