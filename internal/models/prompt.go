package models

import (
	"time"

	"github.com/google/uuid"
)

type PromptKind string

const (
	PromptKindSystem        PromptKind = "system"
	PromptKindTask          PromptKind = "task"
	PromptKindSupplementary PromptKind = "supplementary"
)

func (k PromptKind) Valid() bool {
	switch k {
	case PromptKindSystem, PromptKindTask, PromptKindSupplementary:
		return true
	}
	return false
}

type Prompt struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Slug            string     `json:"slug" db:"slug"`
	Description     string     `json:"description,omitempty" db:"description"`
	Kind            PromptKind `json:"kind" db:"kind"`
	SystemPromptID  *uuid.UUID `json:"system_prompt_id,omitempty" db:"system_prompt_id"`   // task -> system
	DayID           *uuid.UUID `json:"day_id,omitempty" db:"day_id"`                       // supplementary scope
	ParentPromptID  *uuid.UUID `json:"parent_prompt_id,omitempty" db:"parent_prompt_id"`   // supplementary -> task
	ActiveVersionID *uuid.UUID `json:"active_version_id,omitempty" db:"active_version_id"` // nil until v1 exists
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

type PromptVersion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PromptID    uuid.UUID `json:"prompt_id" db:"prompt_id"`
	Version     int       `json:"version" db:"version"`
	Content     string    `json:"content" db:"content"`
	ChangeNotes string    `json:"change_notes,omitempty" db:"change_notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
