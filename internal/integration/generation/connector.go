package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/config"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/integration/common"
	pkghttp "github.com/owlingo/console-backend/pkg/http"
	"go.uber.org/zap"
)

// Stream event names of the generation service protocol.
const (
	eventPassage  = "passage"
	eventComplete = "complete"
	eventError    = "error"
)

type Connector struct {
	config config.GenerationConnectorConfig
	// connector serves single-shot generations; streamConnector has the
	// request timeout stretched to the stream timeout.
	connector       *pkghttp.Connector
	streamConnector *pkghttp.Connector
	logger          *zap.Logger
}

func NewConnector(
	cfg config.GenerationConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		streamConnector: common.NewBaseConnector(cfg.HTTPClientConfig, logger,
			pkghttp.WithRequestTimeout(cfg.StreamTimeout),
			pkghttp.WithResponseHeaderTimeout(cfg.StreamTimeout),
		),
		config: cfg,
		logger: logger,
	}
}

// Generate performs a single-shot generation.
func (c *Connector) Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error) {
	ctxzap.Info(ctx, "requesting content generation",
		zap.String("skill", req.SkillSlug),
		zap.String("format", req.FormatSlug),
		zap.String("activity_type", req.ActivityType),
	)

	var resp entity.GenerationEnvelope
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	ctxzap.Info(ctx, "content generated",
		zap.String("kind", string(resp.Kind)),
		zap.Int("item_count", resp.ItemCount),
	)

	return &resp, nil
}

// streamError is the payload of an error event.
type streamError struct {
	Message string `json:"message"`
}

// GenerateStream performs a streamed multi-passage generation. Passage events
// are delivered as they arrive; the stream ends with exactly one complete or
// error event. A stream that closes without a terminal event is reported as
// an error.
func (c *Connector) GenerateStream(ctx context.Context, req *entity.GenerationRequest, handlers entity.StreamHandlers) error {
	ctxzap.Info(ctx, "requesting streamed content generation", zap.String("skill", req.SkillSlug))

	var errStopStream = errors.New("stream terminal event")
	terminal := false

	err := c.streamConnector.DoStreamRequest(ctx, http.MethodPost, c.config.StreamEndpoint, req, func(event pkghttp.StreamEvent) error {
		switch event.Name {
		case eventPassage:
			var envelope entity.StreamEnvelope
			if err := json.Unmarshal(event.Data, &envelope); err != nil {
				return fmt.Errorf("decode passage event: %w", err)
			}
			if handlers.OnPassage != nil {
				handlers.OnPassage(ctx, &envelope)
			}
			return nil

		case eventComplete:
			var completion entity.StreamCompletion
			if err := json.Unmarshal(event.Data, &completion); err != nil {
				return fmt.Errorf("decode completion event: %w", err)
			}
			terminal = true
			if handlers.OnComplete != nil {
				handlers.OnComplete(ctx, &completion)
			}
			return errStopStream

		case eventError:
			var serviceErr streamError
			if err := json.Unmarshal(event.Data, &serviceErr); err != nil {
				serviceErr.Message = string(event.Data)
			}
			terminal = true
			if handlers.OnError != nil {
				handlers.OnError(ctx, fmt.Errorf("generation service: %s", serviceErr.Message))
			}
			return errStopStream

		default:
			ctxzap.Debug(ctx, "unknown stream event ignored", zap.String("event", event.Name))
			return nil
		}
	})

	if err != nil && !errors.Is(err, errStopStream) {
		return fmt.Errorf("generation stream: %w", err)
	}
	if !terminal {
		return fmt.Errorf("generation stream closed without a terminal event")
	}

	ctxzap.Info(ctx, "generation stream finished")
	return nil
}
