package entity

import "time"

// Request DTOs of the wizard API.

type SelectSourceRequest struct {
	SourceID string `json:"source_id"`
}

type SelectUnitsRequest struct {
	UnitIDs []string `json:"unit_ids"`
}

// SelectSkillRequest carries either the skill-first pair or the legacy
// activity type, never both.
type SelectSkillRequest struct {
	SkillSlug    string `json:"skill_slug,omitempty"`
	FormatSlug   string `json:"format_slug,omitempty"`
	ActivityType string `json:"activity_type,omitempty"`
}

type GenerateRequest struct {
	Options     map[string]any `json:"options,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
}

type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

type SaveContentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type SynthesizeItemRequest struct {
	Path    ItemPath `json:"path"`
	VoiceID string   `json:"voice_id,omitempty"`
}

// WizardSessionDTO is the API view of a wizard session. The streamed partial
// buffer is exposed so a client polling mid-stream sees a stable ordered
// prefix of the final passage list.
type WizardSessionDTO struct {
	ID             string            `json:"session_id"`
	Step           WizardStep        `json:"step"`
	Form           *WizardForm       `json:"form"`
	Result         *GeneratedContent `json:"result,omitempty"`
	Edit           *EditBuffer       `json:"edit,omitempty"`
	StreamPassages []Passage         `json:"stream_passages,omitempty"`
	LastError      string            `json:"last_error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ErrorResponse is the API error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CallbackEventType represents the type of completion webhook event.
type CallbackEventType string

const (
	CallbackEventTypeGenerated CallbackEventType = "generated"
	CallbackEventTypeError     CallbackEventType = "error"
)

// CallbackEvent is one completion webhook delivery.
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	SessionID string            `json:"session_id"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}
