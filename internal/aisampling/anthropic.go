// Package aisampling provides the dev-mode fallback for tools.SamplingPeer
// (SPEC_FULL.md DOMAIN STACK: "anthropic-sdk-go -> dev-mode sampling
// fallback only"). Production MCP/A2A clients supply their own sampling
// capability; this adapter exists so the intelligence handlers have
// something to call against in local/dev deployments that set
// PIERRE_DEV_SAMPLING_BACKEND=anthropic, without dragging in the teacher's
// full llm/agentx abstraction (unneeded: a single vendor, single call
// shape, no streaming, no tool-use round trip).
package aisampling

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/tools"
)

var registry = errx.NewRegistry("AISAMPLING")

var (
	// ErrSamplingFailed wraps any transport/API failure talking to Anthropic.
	ErrSamplingFailed = registry.Register("SAMPLING_FAILED", errx.TypeExternal, 502, "sampling request failed")
)

const defaultModel = "claude-3-5-haiku-20241022"

// Peer implements tools.SamplingPeer against the Anthropic Messages API.
// It ignores the CallContext collaborators: a sampling call is a single
// text-in/text-out round trip with no store or provider access.
type Peer struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// New builds a Peer from an API key. Returns nil if apiKey is empty so
// callers can wire it unconditionally and let the nil interface value
// disable sampling.
func New(apiKey string) *Peer {
	if apiKey == "" {
		return nil
	}
	return &Peer{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   defaultModel,
		timeout: 20 * time.Second,
	}
}

// Sample asks Claude to answer prompt and returns its text reply.
func (p *Peer) Sample(cc tools.CallContext, prompt string) (string, error) {
	ctx := cc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", registry.NewWithCause(ErrSamplingFailed, err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", registry.NewWithMessage(ErrSamplingFailed, "empty sampling response")
	}
	return text, nil
}
