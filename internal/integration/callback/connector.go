package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/config"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/integration/common"
	pkghttp "github.com/owlingo/console-backend/pkg/http"
	"go.uber.org/zap"
)

type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendGenerated sends a generation-finished event to the callback URL.
func (c *Connector) SendGenerated(ctx context.Context, callbackURL string, sessionID string, content *entity.GeneratedContent) {
	err := c.send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeGenerated,
		SessionID: sessionID,
		Data:      content,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send generated callback", zap.Error(err))
	}
}

// SendError sends a generation-failed event to the callback URL.
func (c *Connector) SendError(ctx context.Context, callbackURL string, sessionID string, message string) {
	err := c.send(ctx, callbackURL, &entity.CallbackEvent{
		Event:     entity.CallbackEventTypeError,
		SessionID: sessionID,
		Error:     message,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send error callback", zap.Error(err))
	}
}

func (c *Connector) send(ctx context.Context, callbackURL string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("session_id", event.SessionID),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Session-ID", event.SessionID),
		pkghttp.WithURL(callbackURL),
	}

	err := c.connector.DoRequest(ctx, http.MethodPost, "", event, nil, opts...)
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s, error: %w", string(event.Event), callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("session_id", event.SessionID),
	)
	return nil
}
