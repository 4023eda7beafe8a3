package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/generator"
	"github.com/tripdesk/backend/internal/llm"
	"github.com/tripdesk/backend/internal/llmcall"
	"github.com/tripdesk/backend/internal/models"
	"github.com/tripdesk/backend/internal/prompt"
)

// PromptResolver fetches the active templates for a task prompt slug plus the
// day-scoped supplementary override. Implemented by prompt.Service.
type PromptResolver interface {
	ResolveForGeneration(ctx context.Context, taskSlug string, dayID uuid.UUID) (*prompt.Resolved, error)
}

// Ledger is the content-addressed record of prior LLM calls. Implemented by
// llmcall.Service.
type Ledger interface {
	Lookup(ctx context.Context, overallRequestHash string) (*models.LlmCall, error)
	Record(ctx context.Context, p llmcall.RecordParams) (*models.LlmCall, error)
}

// ChatClient is the narrow slice of the LLM gateway a generation job uses.
type ChatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// AssociationWriter syncs the resulting call onto the generator's targets.
// Implemented by itinerary.Service.
type AssociationWriter interface {
	AttachCall(ctx context.Context, targets []generator.SyncTarget, callID uuid.UUID) error
}

// Pipeline runs one generation job end to end: resolve prompts, render,
// fingerprint, reuse a cached call when the fingerprint matches, otherwise
// call the provider and record the result.
type Pipeline struct {
	itin     ItineraryReader
	prompts  PromptResolver
	ledger   Ledger
	chat     ChatClient
	assoc    AssociationWriter
	provider string
	model    string
}

func NewPipeline(itin ItineraryReader, prompts PromptResolver, ledger Ledger, chat ChatClient, assoc AssociationWriter, provider, model string) *Pipeline {
	return &Pipeline{
		itin:     itin,
		prompts:  prompts,
		ledger:   ledger,
		chat:     chat,
		assoc:    assoc,
		provider: provider,
		model:    model,
	}
}

func (p *Pipeline) Run(ctx context.Context, job Job) error {
	gen, err := p.selectGenerator(ctx, job)
	if err != nil {
		return err
	}

	resolved, err := p.prompts.ResolveForGeneration(ctx, gen.Slug(), job.DayID)
	if err != nil {
		return err
	}

	rendered, err := prompt.RenderComponents(resolved, gen.Args())
	if err != nil {
		return fmt.Errorf("render prompts for %s: %w", gen.Slug(), err)
	}

	hashes := llmcall.ComputeHashes(p.provider, rendered.System, rendered.Task, rendered.Supplementary, "")

	cached, err := p.ledger.Lookup(ctx, hashes.OverallRequest)
	if err == nil {
		slog.Info("reusing cached llm call", "batch_id", job.BatchID, "hash", hashes.OverallRequest)
		return p.assoc.AttachCall(ctx, gen.SyncTargets(), cached.ID)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	messages := []llm.Message{}
	if rendered.System != "" {
		messages = append(messages, llm.Message{Role: "system", Content: rendered.System})
	}
	messages = append(messages, llm.Message{Role: "user", Content: rendered.UserContent()})

	resp, err := p.chat.Chat(ctx, llm.ChatRequest{
		Provider: p.provider,
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return fmt.Errorf("llm call for %s %s: %w", job.EntityType, job.EntityID, err)
	}

	taskVersionID := resolved.TaskVersionID
	call, err := p.ledger.Record(ctx, llmcall.RecordParams{
		SystemVersionID:        resolved.SystemVersionID,
		TaskVersionID:          &taskVersionID,
		SupplementaryVersionID: resolved.SupplementaryVersionID,
		Provider:               p.provider,
		Model:                  resp.Model,
		RenderedSystem:         rendered.System,
		RenderedTask:           rendered.Task,
		RenderedSupplementary:  rendered.Supplementary,
		Response:               resp.Content,
		InputTokens:            resp.InputTokens,
		OutputTokens:           resp.OutputTokens,
		LatencyMs:              resp.LatencyMs,
	})
	if err != nil {
		return err
	}

	return p.assoc.AttachCall(ctx, gen.SyncTargets(), call.ID)
}

func (p *Pipeline) selectGenerator(ctx context.Context, job Job) (generator.Generator, error) {
	switch job.EntityType {
	case EntityTravel:
		td, err := p.itin.Travel(ctx, job.EntityID)
		if err != nil {
			return nil, err
		}
		return generator.ForTravel(*td), nil
	case EntityActivity:
		ad, err := p.itin.Activity(ctx, job.EntityID)
		if err != nil {
			return nil, err
		}
		gen := generator.ForActivity(*ad)
		if gen == nil {
			return nil, fmt.Errorf("%w: unknown activity type %q", models.ErrValidation, ad.Activity.Type)
		}
		return gen, nil
	}
	return nil, fmt.Errorf("%w: unknown entity type %q", models.ErrValidation, job.EntityType)
}
