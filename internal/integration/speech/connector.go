package speech

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/config"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/integration/common"
	pkghttp "github.com/owlingo/console-backend/pkg/http"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.SpeechConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.SpeechConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Synthesize converts text to speech with word-level timestamps.
func (c *Connector) Synthesize(ctx context.Context, req *entity.SpeechSynthesizeRequest) (*entity.SpeechSynthesizeResponse, error) {
	ctxzap.Debug(ctx, "synthesizing speech",
		zap.Int("text_length", len(req.Text)),
		zap.String("voice_id", req.VoiceID),
	)

	var resp entity.SpeechSynthesizeResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.SynthesizeEndpoint, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	if len(resp.Audio) == 0 {
		return nil, fmt.Errorf("invalid synthesis response: empty audio payload")
	}

	ctxzap.Debug(ctx, "speech synthesized",
		zap.Int("audio_bytes", len(resp.Audio)),
		zap.Float64("duration", resp.Duration),
	)

	return &resp, nil
}
