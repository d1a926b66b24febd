package catalog

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector serves a small fixed catalog.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) ListSources(ctx context.Context) ([]entity.Source, error) {
	ctxzap.Info(ctx, "[MOCK] listing sources")
	return []entity.Source{
		{ID: "src-beginner", Name: "English for Beginners", Level: "A1"},
		{ID: "src-intermediate", Name: "Everyday English", Level: "B1"},
	}, nil
}

func (m *MockConnector) ListUnits(ctx context.Context, sourceID string) ([]entity.Unit, error) {
	ctxzap.Info(ctx, "[MOCK] listing units", zap.String("source_id", sourceID))
	return []entity.Unit{
		{ID: "unit-1", SourceID: sourceID, Name: "Greetings", Position: 1},
		{ID: "unit-2", SourceID: sourceID, Name: "Family", Position: 2},
		{ID: "unit-3", SourceID: sourceID, Name: "Food and Drink", Position: 3},
	}, nil
}

func (m *MockConnector) ListSkills(ctx context.Context) ([]entity.Skill, error) {
	ctxzap.Info(ctx, "[MOCK] listing skills")
	return []entity.Skill{
		{
			Slug: "vocabulary",
			Name: "Vocabulary",
			Formats: []entity.SkillFormat{
				{Slug: "quiz", Name: "Quiz", Kind: entity.ContentKindQuiz},
				{Slug: "fill-blank", Name: "Fill in the Blanks", Kind: entity.ContentKindFillBlank},
				{Slug: "word-builder", Name: "Word Builder", Kind: entity.ContentKindWordBuilder},
			},
		},
		{
			Slug: "listening",
			Name: "Listening",
			Formats: []entity.SkillFormat{
				{Slug: "listening-quiz", Name: "Listening Quiz", Kind: entity.ContentKindListeningQuiz},
				{Slug: "listening-fill-blank", Name: "Listening Fill in the Blanks", Kind: entity.ContentKindListeningFillBlank},
			},
		},
		{
			Slug: "reading",
			Name: "Reading",
			Formats: []entity.SkillFormat{
				{Slug: "reading", Name: "Reading Comprehension", Kind: entity.ContentKindReading},
				{Slug: "passage", Name: "Single Passage", Kind: entity.ContentKindPassage},
			},
		},
		{Slug: "mix", Name: "Mixed Practice"},
	}, nil
}
