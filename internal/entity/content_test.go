package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentKind_Validate(t *testing.T) {
	for _, kind := range []ContentKind{
		ContentKindQuiz, ContentKindListeningQuiz, ContentKindTrueFalse,
		ContentKindFillBlank, ContentKindListeningFillBlank,
		ContentKindSentenceBuilder, ContentKindListeningSentence,
		ContentKindWordBuilder, ContentKindListeningWordBuilder,
		ContentKindPassage, ContentKindReading,
	} {
		assert.NoError(t, kind.Validate(), kind)
	}

	assert.ErrorIs(t, ContentKind("karaoke").Validate(), ErrUnknownKind)
	assert.ErrorIs(t, ContentKind("").Validate(), ErrUnknownKind)
}

func TestGeneratedContent_Validate(t *testing.T) {
	valid := &GeneratedContent{
		Kind:      ContentKindQuiz,
		Questions: []QuizQuestion{{Question: "Q?", Options: []string{"a", "b"}}},
	}
	assert.NoError(t, valid.Validate())

	empty := &GeneratedContent{Kind: ContentKindQuiz}
	assert.ErrorIs(t, empty.Validate(), ErrInvalidContent)

	mixed := &GeneratedContent{
		Kind:      ContentKindQuiz,
		Questions: []QuizQuestion{{Question: "Q?"}},
		Items:     []FillBlankItem{{FullSentence: "x"}},
	}
	assert.ErrorIs(t, mixed.Validate(), ErrInvalidContent)
}

func TestGeneratedContent_ValidateReadingAllowsFlatQuestions(t *testing.T) {
	reading := &GeneratedContent{
		Kind: ContentKindReading,
		Passages: []Passage{{
			Title:     "Chapter 1",
			Questions: []QuizQuestion{{ID: "q-1"}},
		}},
		Questions: []QuizQuestion{{ID: "q-1"}},
	}
	assert.NoError(t, reading.Validate())

	// A third populated collection is still rejected.
	reading.Words = []BuilderWord{{CorrectWord: "x"}}
	assert.ErrorIs(t, reading.Validate(), ErrInvalidContent)
}

func TestGeneratedContent_Clone(t *testing.T) {
	src := &GeneratedContent{
		ID:   "c-1",
		Kind: ContentKindReading,
		Passages: []Passage{{
			ID:    "p-1",
			Title: "Chapter 1",
			Questions: []QuizQuestion{{
				ID:      "q-1",
				Options: []string{"a", "b"},
				Audio:   ItemAudio{Status: AudioStatusReady, Payload: []byte("clip")},
			}},
		}},
		Questions: []QuizQuestion{{ID: "q-1", Options: []string{"a", "b"}}},
	}

	clone := src.Clone()
	require.NotSame(t, src, clone)

	clone.Passages[0].Title = "Changed"
	clone.Passages[0].Questions[0].Options[0] = "z"
	clone.Passages[0].Questions[0].Audio.Payload[0] = 'X'
	clone.Questions[0].ID = "q-mutated"

	assert.Equal(t, "Chapter 1", src.Passages[0].Title)
	assert.Equal(t, "a", src.Passages[0].Questions[0].Options[0])
	assert.Equal(t, []byte("clip"), src.Passages[0].Questions[0].Audio.Payload)
	assert.Equal(t, "q-1", src.Questions[0].ID)
}

func TestGeneratedContent_CloneNil(t *testing.T) {
	var c *GeneratedContent
	assert.Nil(t, c.Clone())
}

func TestGeneratedContent_ItemCount(t *testing.T) {
	assert.Equal(t, 2, (&GeneratedContent{
		Kind:  ContentKindWordBuilder,
		Words: []BuilderWord{{}, {}},
	}).ItemCount())

	assert.Equal(t, 1, (&GeneratedContent{
		Kind:     ContentKindPassage,
		Passages: []Passage{{}},
	}).ItemCount())

	assert.Zero(t, (&GeneratedContent{Kind: "unknown"}).ItemCount())
}

func TestItemPaths(t *testing.T) {
	whole := WholeObjectPath()
	assert.Equal(t, ItemPath{Passage: -1, Question: -1, Item: -1}, whole)

	assert.Equal(t, ItemPath{Passage: -1, Question: -1, Item: 3}, FlatItemPath(3))
	assert.Equal(t, ItemPath{Passage: 2, Question: -1, Item: -1}, PassagePath(2))
	assert.Equal(t, ItemPath{Passage: 1, Question: 0, Item: -1}, PassageQuestionPath(1, 0))
}

func TestWizardForm_IsEmpty(t *testing.T) {
	assert.True(t, (&WizardForm{}).IsEmpty())
	assert.False(t, (&WizardForm{SourceID: "src-1"}).IsEmpty())
	assert.False(t, (&WizardForm{Options: map[string]any{"k": 1}}).IsEmpty())
}

func TestWizardForm_Clone(t *testing.T) {
	form := &WizardForm{
		SourceID: "src-1",
		UnitIDs:  []string{"u-1"},
		Options:  map[string]any{"item_count": 5},
	}

	clone := form.Clone()
	clone.UnitIDs[0] = "mutated"
	clone.Options["item_count"] = 99

	assert.Equal(t, "u-1", form.UnitIDs[0])
	assert.Equal(t, 5, form.Options["item_count"])
}

func TestStepPrecondition(t *testing.T) {
	s := &WizardSession{Step: StepSelectSource, Form: &WizardForm{}}
	assert.ErrorIs(t, s.StepPrecondition(), ErrMissingSelection)

	s.Form.SourceID = "src-1"
	assert.NoError(t, s.StepPrecondition())

	s.Step = StepSelectSkill
	assert.ErrorIs(t, s.StepPrecondition(), ErrMissingSelection)

	s.Form.SkillSlug = SkillMix
	assert.NoError(t, s.StepPrecondition())

	s.Form.SkillSlug = "vocabulary"
	assert.ErrorIs(t, s.StepPrecondition(), ErrMissingSelection)

	s.Form.FormatSlug = "quiz"
	assert.NoError(t, s.StepPrecondition())
}
