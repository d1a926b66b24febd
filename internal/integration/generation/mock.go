package generation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector serves canned content for local development without the
// generation service. The streamed path intentionally emits passages out of
// title order to mimic the service's unordered completion.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error) {
	ctxzap.Info(ctx, "[MOCK] generating content",
		zap.String("skill", req.SkillSlug),
		zap.String("format", req.FormatSlug),
	)

	kind := mockKind(req)
	payload, itemCount := mockPayload(kind)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &entity.GenerationEnvelope{
		Kind:       kind,
		SkillName:  "Mock Skill",
		FormatName: "Mock Format",
		ItemCount:  itemCount,
		CreatedAt:  time.Now().UTC(),
		Payload:    raw,
	}, nil
}

func (m *MockConnector) GenerateStream(ctx context.Context, req *entity.GenerationRequest, handlers entity.StreamHandlers) error {
	ctxzap.Info(ctx, "[MOCK] streaming reading generation", zap.String("skill", req.SkillSlug))

	passages := mockPassages()

	// Emit in reverse title order to exercise client-side reordering.
	for i := len(passages) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}

		if handlers.OnPassage != nil {
			handlers.OnPassage(ctx, &entity.StreamEnvelope{
				PassageID: passages[i].ID,
				Passage:   passages[i],
			})
		}
	}

	if handlers.OnComplete != nil {
		handlers.OnComplete(ctx, &entity.StreamCompletion{
			Passages:   passages,
			SkillName:  "Reading",
			FormatName: "Reading Comprehension",
			CreatedAt:  time.Now().UTC(),
		})
	}

	ctxzap.Info(ctx, "[MOCK] stream complete", zap.Int("passages", len(passages)))
	return nil
}

func mockKind(req *entity.GenerationRequest) entity.ContentKind {
	switch req.FormatSlug {
	case "fill-blank":
		return entity.ContentKindFillBlank
	case "sentence-builder":
		return entity.ContentKindSentenceBuilder
	case "word-builder":
		return entity.ContentKindWordBuilder
	case "true-false":
		return entity.ContentKindTrueFalse
	case "passage":
		return entity.ContentKindPassage
	default:
		return entity.ContentKindQuiz
	}
}

func mockPayload(kind entity.ContentKind) (map[string]any, int) {
	switch kind {
	case entity.ContentKindFillBlank:
		items := []entity.FillBlankItem{
			{
				ID:           uuid.NewString(),
				FullSentence: "The cat sat on the mat.",
				MissingWords: []string{"cat"},
				Distractors:  []string{"dog", "bird"},
			},
			{
				ID:           uuid.NewString(),
				FullSentence: "She walks to school every morning.",
				MissingWords: []string{"walks"},
				Distractors:  []string{"runs"},
			},
		}
		return map[string]any{"items": items}, len(items)

	case entity.ContentKindSentenceBuilder:
		sentences := []entity.BuilderSentence{
			{ID: uuid.NewString(), FullSentence: "I like green apples.", Translation: "Me gustan las manzanas verdes."},
			{ID: uuid.NewString(), FullSentence: "The weather is nice today."},
		}
		return map[string]any{"sentences": sentences}, len(sentences)

	case entity.ContentKindWordBuilder:
		words := []entity.BuilderWord{
			{ID: uuid.NewString(), CorrectWord: "apple", Hint: "A red or green fruit."},
			{ID: uuid.NewString(), CorrectWord: "school", Hint: "A place to learn."},
		}
		return map[string]any{"words": words}, len(words)

	case entity.ContentKindTrueFalse:
		questions := []entity.QuizQuestion{
			{ID: uuid.NewString(), Question: "The sun rises in the east.", Options: []string{"True", "False"}, CorrectIndex: 0},
			{ID: uuid.NewString(), Question: "Fish can fly.", Options: []string{"True", "False"}, CorrectIndex: 1},
		}
		return map[string]any{"questions": questions}, len(questions)

	case entity.ContentKindPassage:
		passages := []entity.Passage{
			{
				ID:    uuid.NewString(),
				Title: "A Day at the Market",
				Text:  "Maria went to the market early in the morning. The stalls were full of fresh fruit and vegetables.",
			},
		}
		return map[string]any{"passages": passages}, len(passages)

	default:
		questions := []entity.QuizQuestion{
			{
				ID:           uuid.NewString(),
				Question:     "What color is the sky on a clear day?",
				Options:      []string{"Blue", "Green", "Red", "Yellow"},
				CorrectIndex: 0,
				Explanation:  "Sunlight scatters in the atmosphere and blue light scatters the most.",
			},
			{
				ID:           uuid.NewString(),
				Question:     "How many days are there in a week?",
				Options:      []string{"Five", "Six", "Seven", "Eight"},
				CorrectIndex: 2,
			},
		}
		return map[string]any{"questions": questions}, len(questions)
	}
}

func mockPassages() []entity.Passage {
	return []entity.Passage{
		{
			ID:    uuid.NewString(),
			Title: "Chapter 1: The Visit",
			Text:  "Anna visited her grandmother in the countryside. The old house smelled of fresh bread.",
			Questions: []entity.QuizQuestion{
				{ID: uuid.NewString(), Question: "Who did Anna visit?", Options: []string{"Her grandmother", "Her teacher", "Her friend"}, CorrectIndex: 0},
			},
		},
		{
			ID:    uuid.NewString(),
			Title: "Chapter 2: The Garden",
			Text:  "Behind the house there was a large garden with apple trees and a small pond.",
			Questions: []entity.QuizQuestion{
				{ID: uuid.NewString(), Question: "What was behind the house?", Options: []string{"A garden", "A forest", "A river"}, CorrectIndex: 0},
			},
		},
		{
			ID:    uuid.NewString(),
			Title: "Chapter 3: The Storm",
			Text:  "In the evening a storm came. Anna and her grandmother watched the rain from the porch.",
			Questions: []entity.QuizQuestion{
				{ID: uuid.NewString(), Question: "When did the storm come?", Options: []string{"In the morning", "In the evening", "At noon"}, CorrectIndex: 1},
			},
		},
	}
}
