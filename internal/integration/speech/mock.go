package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector fabricates audio payloads and evenly spaced word timestamps.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Synthesize(ctx context.Context, req *entity.SpeechSynthesizeRequest) (*entity.SpeechSynthesizeResponse, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("empty synthesis text provided")
	}

	ctxzap.Info(ctx, "[MOCK] synthesizing speech",
		zap.Int("text_length", len(req.Text)),
		zap.String("voice_id", req.VoiceID),
	)

	words := strings.Fields(req.Text)
	const perWord = 0.4

	timestamps := make([]entity.WordTimestamp, len(words))
	for i, w := range words {
		timestamps[i] = entity.WordTimestamp{
			Word:  w,
			Start: float64(i) * perWord,
			End:   float64(i+1) * perWord,
		}
	}

	return &entity.SpeechSynthesizeResponse{
		Audio:          []byte("mock-audio:" + req.Text),
		WordTimestamps: timestamps,
		Duration:       float64(len(words)) * perWord,
	}, nil
}
