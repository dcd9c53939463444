package logic

import (
	"context"

	"github.com/aiwolfdial/whos-the-ai/model"
)

// Gateway produces NPC chat replies and vote decisions. Implementations must honour ctx.
type Gateway interface {
	ChatReply(ctx context.Context, request model.ChatRequest) (model.ChatResponse, error)
	VoteDecision(ctx context.Context, request model.VoteRequest) (model.VoteResponse, error)
}
