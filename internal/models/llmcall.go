package models

import (
	"time"

	"github.com/google/uuid"
)

// LlmCall is one recorded request/response pair. The rendered prompt texts are
// hashed at write time and never persisted; only the digests and the response
// survive a reload.
type LlmCall struct {
	ID                      uuid.UUID  `json:"id" db:"id"`
	SystemVersionID         *uuid.UUID `json:"system_version_id,omitempty" db:"system_version_id"`
	TaskVersionID           *uuid.UUID `json:"task_version_id,omitempty" db:"task_version_id"`
	SupplementaryVersionID  *uuid.UUID `json:"supplementary_version_id,omitempty" db:"supplementary_version_id"`
	Provider                string     `json:"provider" db:"provider"`
	Model                   string     `json:"model" db:"model"`
	SystemPromptHash        string     `json:"system_prompt_hash,omitempty" db:"system_prompt_hash"`
	PromptHash              string     `json:"prompt_hash,omitempty" db:"prompt_hash"`
	SupplementaryPromptHash string     `json:"supplementary_prompt_hash,omitempty" db:"supplementary_prompt_hash"`
	ResponseHash            string     `json:"response_hash,omitempty" db:"response_hash"`
	OverallRequestHash      string     `json:"overall_request_hash" db:"overall_request_hash"`
	Response                string     `json:"response" db:"response"`
	InputTokens             int        `json:"input_tokens" db:"input_tokens"`
	OutputTokens            int        `json:"output_tokens" db:"output_tokens"`
	LatencyMs               int64      `json:"latency_ms" db:"latency_ms"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
}
