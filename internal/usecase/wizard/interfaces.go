package wizard

import (
	"context"

	"github.com/owlingo/console-backend/internal/entity"
)

// GenerationConnector is the generation service boundary. GenerateStream
// pushes zero or more passage events followed by exactly one completion or
// error event; it returns once the stream has ended.
type GenerationConnector interface {
	Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error)
	GenerateStream(ctx context.Context, req *entity.GenerationRequest, handlers entity.StreamHandlers) error
}

// SpeechConnector is the voice-synthesis service boundary.
type SpeechConnector interface {
	Synthesize(ctx context.Context, req *entity.SpeechSynthesizeRequest) (*entity.SpeechSynthesizeResponse, error)
}

// CatalogConnector provides the read-only lookups that populate the wizard's
// selectable options.
type CatalogConnector interface {
	ListSources(ctx context.Context) ([]entity.Source, error)
	ListUnits(ctx context.Context, sourceID string) ([]entity.Unit, error)
	ListSkills(ctx context.Context) ([]entity.Skill, error)
}

// CallbackConnector delivers completion webhooks for asynchronous
// generations that carried a callback URL.
type CallbackConnector interface {
	SendGenerated(ctx context.Context, callbackURL, sessionID string, content *entity.GeneratedContent)
	SendError(ctx context.Context, callbackURL, sessionID, message string)
}
