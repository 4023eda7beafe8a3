package llmcall

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/backend/internal/models"
)

const callCols = `id, system_version_id, task_version_id, supplementary_version_id,
	provider, model, system_prompt_hash, prompt_hash, supplementary_prompt_hash,
	response_hash, overall_request_hash, response, input_tokens, output_tokens,
	latency_ms, created_at`

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// RecordParams carries the rendered texts of one call. They are hashed here
// and discarded; only the digests, the response and the usage counters are
// persisted.
type RecordParams struct {
	SystemVersionID        *uuid.UUID
	TaskVersionID          *uuid.UUID
	SupplementaryVersionID *uuid.UUID
	Provider               string
	Model                  string
	RenderedSystem         string
	RenderedTask           string
	RenderedSupplementary  string
	Response               string
	InputTokens            int
	OutputTokens           int
	LatencyMs              int64
}

func (s *Service) Record(ctx context.Context, p RecordParams) (*models.LlmCall, error) {
	h := ComputeHashes(p.Provider, p.RenderedSystem, p.RenderedTask, p.RenderedSupplementary, p.Response)

	var call models.LlmCall
	err := s.db.QueryRow(ctx,
		`INSERT INTO llm_calls (system_version_id, task_version_id, supplementary_version_id,
			provider, model, system_prompt_hash, prompt_hash, supplementary_prompt_hash,
			response_hash, overall_request_hash, response, input_tokens, output_tokens, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+callCols,
		p.SystemVersionID, p.TaskVersionID, p.SupplementaryVersionID,
		p.Provider, p.Model, h.System, h.Task, h.Supplementary,
		h.Response, h.OverallRequest, p.Response, p.InputTokens, p.OutputTokens, p.LatencyMs,
	).Scan(
		&call.ID, &call.SystemVersionID, &call.TaskVersionID, &call.SupplementaryVersionID,
		&call.Provider, &call.Model, &call.SystemPromptHash, &call.PromptHash, &call.SupplementaryPromptHash,
		&call.ResponseHash, &call.OverallRequestHash, &call.Response, &call.InputTokens, &call.OutputTokens,
		&call.LatencyMs, &call.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert llm call: %w", err)
	}

	return &call, nil
}

// Lookup returns the most recent call with the given overall request hash.
// A miss is ErrNotFound, which callers treat as "go call the provider".
func (s *Service) Lookup(ctx context.Context, overallRequestHash string) (*models.LlmCall, error) {
	var call models.LlmCall
	err := s.db.QueryRow(ctx,
		"SELECT "+callCols+" FROM llm_calls WHERE overall_request_hash = $1 ORDER BY created_at DESC LIMIT 1",
		overallRequestHash,
	).Scan(
		&call.ID, &call.SystemVersionID, &call.TaskVersionID, &call.SupplementaryVersionID,
		&call.Provider, &call.Model, &call.SystemPromptHash, &call.PromptHash, &call.SupplementaryPromptHash,
		&call.ResponseHash, &call.OverallRequestHash, &call.Response, &call.InputTokens, &call.OutputTokens,
		&call.LatencyMs, &call.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no call for hash %s", models.ErrNotFound, overallRequestHash)
		}
		return nil, fmt.Errorf("lookup llm call: %w", err)
	}
	return &call, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.LlmCall, error) {
	var call models.LlmCall
	err := s.db.QueryRow(ctx, "SELECT "+callCols+" FROM llm_calls WHERE id = $1", id).Scan(
		&call.ID, &call.SystemVersionID, &call.TaskVersionID, &call.SupplementaryVersionID,
		&call.Provider, &call.Model, &call.SystemPromptHash, &call.PromptHash, &call.SupplementaryPromptHash,
		&call.ResponseHash, &call.OverallRequestHash, &call.Response, &call.InputTokens, &call.OutputTokens,
		&call.LatencyMs, &call.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: llm call %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get llm call: %w", err)
	}
	return &call, nil
}
