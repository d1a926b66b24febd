package wizard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/owlingo/console-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEnvelope_Quiz(t *testing.T) {
	content, err := NormalizeEnvelope(quizEnvelope(3))
	require.NoError(t, err)

	assert.NotEmpty(t, content.ID)
	assert.Equal(t, entity.ContentKindQuiz, content.Kind)
	assert.Equal(t, "Vocabulary", content.SkillName)
	require.Len(t, content.Questions, 3)
	for _, q := range content.Questions {
		assert.NotEmpty(t, q.ID)
	}
	assert.False(t, content.CreatedAt.IsZero())
}

func TestNormalizeEnvelope_PreservesCreatedAt(t *testing.T) {
	envelope := quizEnvelope(1)
	envelope.CreatedAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	content, err := NormalizeEnvelope(envelope)
	require.NoError(t, err)
	assert.Equal(t, envelope.CreatedAt, content.CreatedAt)
}

func TestNormalizeEnvelope_UnknownKind(t *testing.T) {
	envelope := quizEnvelope(1)
	envelope.Kind = "interpretive_dance"

	_, err := NormalizeEnvelope(envelope)
	assert.ErrorIs(t, err, entity.ErrUnknownKind)
}

func TestNormalizeEnvelope_EmptyPayload(t *testing.T) {
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindQuiz,
		Payload: json.RawMessage(`{}`),
	}

	_, err := NormalizeEnvelope(envelope)
	assert.ErrorIs(t, err, entity.ErrInvalidContent)
}

func TestNormalizeEnvelope_MalformedPayload(t *testing.T) {
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindQuiz,
		Payload: json.RawMessage(`{"questions": "not a list"`),
	}

	_, err := NormalizeEnvelope(envelope)
	assert.Error(t, err)
}

func TestNormalizeEnvelope_RejectsMultipleCollections(t *testing.T) {
	payload := json.RawMessage(`{
		"questions": [{"question": "Q?", "options": ["a", "b"], "correct_index": 0}],
		"items": [{"full_sentence": "The cat sat", "missing_words": ["cat"]}]
	}`)
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindQuiz,
		Payload: payload,
	}

	_, err := NormalizeEnvelope(envelope)
	assert.ErrorIs(t, err, entity.ErrInvalidContent)
}

func TestNormalizeEnvelope_MismatchedCollection(t *testing.T) {
	// The payload populates a collection that does not match the announced
	// kind, leaving the kind's own collection empty.
	payload := json.RawMessage(`{
		"items": [{"full_sentence": "The cat sat", "missing_words": ["cat"]}]
	}`)
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindQuiz,
		Payload: payload,
	}

	_, err := NormalizeEnvelope(envelope)
	assert.ErrorIs(t, err, entity.ErrInvalidContent)
}

func TestNormalizeEnvelope_FillsMissingDerivedFields(t *testing.T) {
	payload := json.RawMessage(`{
		"items": [{
			"full_sentence": "The cat sat on the mat",
			"missing_words": ["cat"],
			"distractors": ["dog"]
		}]
	}`)
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindFillBlank,
		Payload: payload,
	}

	content, err := NormalizeEnvelope(envelope)
	require.NoError(t, err)

	item := content.Items[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "The ___ sat on the mat", item.DisplaySentence)
	assert.Equal(t, []string{"cat"}, item.AcceptedAnswers)
	assert.ElementsMatch(t, []string{"cat", "dog"}, item.WordBank)
}

func TestNormalizeEnvelope_TrustsProvidedDerivedFields(t *testing.T) {
	payload := json.RawMessage(`{
		"sentences": [{
			"full_sentence": "I like tea",
			"words": ["I", "like", "tea"],
			"shuffled_words": ["tea", "I", "like"]
		}]
	}`)
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindSentenceBuilder,
		Payload: payload,
	}

	content, err := NormalizeEnvelope(envelope)
	require.NoError(t, err)
	assert.Equal(t, []string{"tea", "I", "like"}, content.Sentences[0].ShuffledWords)
}

func TestNormalizeEnvelope_ReadingBuildsFlatQuestions(t *testing.T) {
	payload := json.RawMessage(`{
		"passages": [
			{"title": "Chapter 1", "text": "Once.", "questions": [
				{"question": "First?", "options": ["a", "b"], "correct_index": 0},
				{"question": "Second?", "options": ["a", "b"], "correct_index": 1}
			]},
			{"title": "Chapter 2", "text": "Twice.", "questions": [
				{"question": "Third?", "options": ["a", "b"], "correct_index": 0}
			]}
		]
	}`)
	envelope := &entity.GenerationEnvelope{
		Kind:    entity.ContentKindReading,
		Payload: payload,
	}

	content, err := NormalizeEnvelope(envelope)
	require.NoError(t, err)

	require.Len(t, content.Questions, 3)
	assert.Equal(t, content.Passages[0].Questions[0].ID, content.Questions[0].ID)
	assert.Equal(t, content.Passages[0].Questions[1].ID, content.Questions[1].ID)
	assert.Equal(t, content.Passages[1].Questions[0].ID, content.Questions[2].ID)
}

func TestContentFromCompletion_SortsAndFlattens(t *testing.T) {
	chapter1 := testPassage("Chapter 1", 2)
	chapter2 := testPassage("Chapter 2", 1)

	content := ContentFromCompletion(&entity.StreamCompletion{
		Passages:   []entity.Passage{chapter2, chapter1},
		SkillName:  "Reading",
		FormatName: "Passages",
	})

	assert.Equal(t, entity.ContentKindReading, content.Kind)
	require.Len(t, content.Passages, 2)
	assert.Equal(t, "Chapter 1", content.Passages[0].Title)
	assert.Equal(t, "Chapter 2", content.Passages[1].Title)

	require.Len(t, content.Questions, 3)
	assert.Equal(t, chapter1.Questions[0].ID, content.Questions[0].ID)
	assert.Equal(t, chapter1.Questions[1].ID, content.Questions[1].ID)
	assert.Equal(t, chapter2.Questions[0].ID, content.Questions[2].ID)

	require.NoError(t, content.Validate())
}

func TestContentFromCompletion_AssignsMissingIdentifiers(t *testing.T) {
	content := ContentFromCompletion(&entity.StreamCompletion{
		Passages: []entity.Passage{{
			Title: "Chapter 1",
			Text:  "Some text.",
			Questions: []entity.QuizQuestion{
				{Question: "Q?", Options: []string{"a", "b"}},
			},
		}},
	})

	assert.NotEmpty(t, content.Passages[0].ID)
	assert.NotEmpty(t, content.Passages[0].Questions[0].ID)
}
