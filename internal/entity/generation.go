package entity

import (
	"context"
	"encoding/json"
	"time"
)

// GenerationRequest is the outbound request assembled from the wizard form.
// Exactly one of the two shapes is used: skill-first (SkillSlug+FormatSlug)
// or legacy (ActivityType).
type GenerationRequest struct {
	SourceID     string         `json:"source_id"`
	UnitIDs      []string       `json:"unit_ids"`
	SkillSlug    string         `json:"skill_slug,omitempty"`
	FormatSlug   string         `json:"format_slug,omitempty"`
	ActivityType string         `json:"activity_type,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
}

// GenerationEnvelope is the non-streaming response of the generation service:
// an announced kind plus one raw payload whose populated collection must
// match it. Normalization resolves the payload into GeneratedContent once.
type GenerationEnvelope struct {
	Kind       ContentKind     `json:"kind"`
	SkillName  string          `json:"skill_name"`
	FormatName string          `json:"format_name"`
	ItemCount  int             `json:"item_count"`
	CreatedAt  time.Time       `json:"created_at"`
	Payload    json.RawMessage `json:"payload"`
}

// StreamEnvelope is one passage-ready event of the streaming generation
// path. PassageID is unique per stream and dedupes retransmissions; the
// passage title is the deterministic ordering key.
type StreamEnvelope struct {
	PassageID string  `json:"passage_id"`
	Passage   Passage `json:"passage"`
}

// StreamCompletion is the terminal event of a successful stream, carrying
// the authoritative full passage list and metadata.
type StreamCompletion struct {
	Passages   []Passage `json:"passages"`
	SkillName  string    `json:"skill_name"`
	FormatName string    `json:"format_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// StreamHandlers receives the three-event protocol of a streamed generation:
// zero or more passage events, then exactly one completion or error event.
type StreamHandlers struct {
	OnPassage  func(ctx context.Context, envelope *StreamEnvelope)
	OnComplete func(ctx context.Context, completion *StreamCompletion)
	OnError    func(ctx context.Context, err error)
}
