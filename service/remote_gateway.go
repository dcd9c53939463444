package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/tidwall/gjson"
)

const (
	ActionChatReply    = "chatReply"
	ActionVoteDecision = "voteDecision"
)

var ErrRemoteGateway = errors.New("remote gateway failed")

// RemoteGateway forwards requests to another server's /api/ai endpoint.
// Bodies are the request fields plus "action"; answers come back under "result".
type RemoteGateway struct {
	url    string
	client *http.Client
	rnd    util.Rand
}

func NewRemoteGateway(url string, client *http.Client, rnd util.Rand) *RemoteGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteGateway{url: url, client: client, rnd: rnd}
}

func (r *RemoteGateway) ChatReply(ctx context.Context, request model.ChatRequest) (model.ChatResponse, error) {
	body := struct {
		Action string `json:"action"`
		model.ChatRequest
	}{Action: ActionChatReply, ChatRequest: request}
	result, err := r.post(ctx, body)
	if err != nil {
		return model.ChatResponse{}, err
	}
	reply := strings.TrimSpace(result.Get("response").String())
	if reply == "" {
		reply = util.CannedReply(r.rnd)
		slog.Warn("remote reply was empty, using canned reply", "responder", request.ResponderID)
	}
	history := result.Get("updatedChatHistory").String()
	if history == "" {
		history = util.AppendChatHistory(request.ChatHistory, request.SpeakerID, request.Message, reply)
	}
	return model.ChatResponse{Response: reply, UpdatedChatHistory: history}, nil
}

func (r *RemoteGateway) VoteDecision(ctx context.Context, request model.VoteRequest) (model.VoteResponse, error) {
	body := struct {
		Action string `json:"action"`
		model.VoteRequest
	}{Action: ActionVoteDecision, VoteRequest: request}
	result, err := r.post(ctx, body)
	if err != nil {
		return model.VoteResponse{}, err
	}
	id := result.Get("votedForPlayerId").String()
	eligible := func(target model.VoteTarget) bool { return target.ID == id }
	if len(request.EligibleTargets) > 0 && !slices.ContainsFunc(request.EligibleTargets, eligible) {
		id = request.EligibleTargets[r.rnd.IntN(len(request.EligibleTargets))].ID
		slog.Warn("remote vote named no eligible player, picking at random", "voter", request.VoterID, "target", id)
	}
	return model.VoteResponse{VotedForPlayerID: id}, nil
}

func (r *RemoteGateway) post(ctx context.Context, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: status %d: %s", ErrRemoteGateway, resp.StatusCode, gjson.GetBytes(data, "error").String())
	}
	result := gjson.GetBytes(data, "result")
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: response has no result", ErrRemoteGateway)
	}
	return result, nil
}
