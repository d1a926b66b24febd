package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func fillBlankContent() *entity.GeneratedContent {
	item := entity.FillBlankItem{
		ID:           uuid.NewString(),
		FullSentence: "The cat sat on the mat",
		MissingWords: []string{"cat"},
		Distractors:  []string{"dog"},
	}
	deriveFillBlank(&item)
	return &entity.GeneratedContent{
		ID:        uuid.NewString(),
		Kind:      entity.ContentKindFillBlank,
		Items:     []entity.FillBlankItem{item},
		CreatedAt: time.Now().UTC(),
	}
}

func sentenceContent() *entity.GeneratedContent {
	s := entity.BuilderSentence{
		ID:           uuid.NewString(),
		FullSentence: "She walks to school every day",
	}
	deriveSentence(&s)
	return &entity.GeneratedContent{
		ID:        uuid.NewString(),
		Kind:      entity.ContentKindSentenceBuilder,
		Sentences: []entity.BuilderSentence{s},
		CreatedAt: time.Now().UTC(),
	}
}

func wordContent() *entity.GeneratedContent {
	w := entity.BuilderWord{
		ID:          uuid.NewString(),
		CorrectWord: "elephant",
		Hint:        "A large animal",
	}
	deriveWord(&w)
	return &entity.GeneratedContent{
		ID:        uuid.NewString(),
		Kind:      entity.ContentKindWordBuilder,
		Words:     []entity.BuilderWord{w},
		CreatedAt: time.Now().UTC(),
	}
}

func TestStartEdit_OpensBuffer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	s, err := env.uc.StartEdit(ctx, id, 1)
	require.NoError(t, err)

	require.NotNil(t, s.Edit)
	assert.Equal(t, 1, s.Edit.Index)
	require.NotNil(t, s.Edit.Question)
	assert.Equal(t, "What is question B?", s.Edit.Question.Question)
}

func TestStartEdit_IndexOutOfRange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	_, err := env.uc.StartEdit(ctx, id, 3)
	assert.ErrorIs(t, err, entity.ErrItemNotFound)

	_, err = env.uc.StartEdit(ctx, id, -1)
	assert.ErrorIs(t, err, entity.ErrItemNotFound)
}

func TestStartEdit_SingleEditorOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	_, err = env.uc.StartEdit(ctx, id, 1)
	assert.ErrorIs(t, err, entity.ErrEditInProgress)
}

func TestStartEdit_OutsideReview(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := driveToConfigure(t, env)

	_, err := env.uc.StartEdit(ctx, id, 0)
	assert.ErrorIs(t, err, entity.ErrWrongStep)
}

func TestCancelEdit_DiscardsBuffer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CancelEdit(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, s.Edit)
	assert.Equal(t, "What is question A?", s.Result.Questions[0].Question)
}

func TestCancelEdit_NothingOpen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	_, err := env.uc.CancelEdit(ctx, id)
	assert.ErrorIs(t, err, entity.ErrNoEditOpen)
}

func TestCommitEdit_UpdatesQuestion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		Question:     strPtr("Which of these is a fruit?"),
		Options:      []string{"apple", "chair", "cloud", "spoon"},
		CorrectIndex: intPtr(0),
		Explanation:  strPtr("An apple grows on trees."),
	})
	require.NoError(t, err)

	assert.Nil(t, s.Edit)
	q := s.Result.Questions[0]
	assert.Equal(t, "Which of these is a fruit?", q.Question)
	assert.Equal(t, []string{"apple", "chair", "cloud", "spoon"}, q.Options)
	assert.Equal(t, 0, q.CorrectIndex)
	assert.Equal(t, "An apple grows on trees.", q.Explanation)

	// Untouched items keep their identity.
	assert.Equal(t, "What is question B?", s.Result.Questions[1].Question)
}

func TestCommitEdit_RejectsInvalidQuestion(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(1))

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	_, err = env.uc.CommitEdit(ctx, id, &entity.ItemEdit{Question: strPtr("")})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = env.uc.CommitEdit(ctx, id, &entity.ItemEdit{CorrectIndex: intPtr(7)})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	_, err = env.uc.CommitEdit(ctx, id, &entity.ItemEdit{Options: []string{"only one"}})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestCommitEdit_NothingOpen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(1))

	_, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{})
	assert.ErrorIs(t, err, entity.ErrNoEditOpen)
}

func TestCommitEdit_RecomputesFillBlankDerivedFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, fillBlankContent())

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		FullSentence: strPtr("The dog slept on the sofa"),
		MissingWords: []string{"dog", "sofa"},
		Distractors:  []string{"cat"},
	})
	require.NoError(t, err)

	item := s.Result.Items[0]
	assert.Equal(t, "The ___ slept on the ____", item.DisplaySentence)
	assert.Equal(t, []string{"dog", "sofa"}, item.MissingWords)
	assert.Equal(t, []string{"dog", "sofa"}, item.AcceptedAnswers)
	assert.ElementsMatch(t, []string{"dog", "sofa", "cat"}, item.WordBank)
}

func TestCommitEdit_FillBlankDropsAbsentBlankWords(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, fillBlankContent())

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	// The new sentence no longer contains the blank word; the commit still
	// lands, with an empty answer set and the full sentence on display.
	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		FullSentence: strPtr("A bird flew over the house"),
	})
	require.NoError(t, err)

	item := s.Result.Items[0]
	assert.Empty(t, item.MissingWords)
	assert.Equal(t, "A bird flew over the house", item.DisplaySentence)
	assert.Empty(t, item.AcceptedAnswers)
	assert.ElementsMatch(t, []string{"dog"}, item.WordBank)
	assert.Equal(t, entity.AudioStatusPending, item.Audio.Status)
}

func TestCommitEdit_ChangedTextSynthesizesWithoutPriorAudio(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(1))
	path := entity.FlatItemPath(0)

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		Question: strPtr("What sound does a duck make?"),
	})
	require.NoError(t, err)

	slot, err := audioSlot(s.Result, path)
	require.NoError(t, err)
	assert.Equal(t, entity.AudioStatusPending, slot.Status)

	audio := waitForAudioStatus(t, env, id, path, entity.AudioStatusReady)
	assert.Equal(t, []byte("audio:What sound does a duck make?"), audio.Payload)
}

func TestCommitEdit_RecomputesSentenceShuffle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, sentenceContent())

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		FullSentence: strPtr("He reads a book before bed"),
		Translation:  strPtr("Er liest vor dem Schlafen ein Buch"),
	})
	require.NoError(t, err)

	sentence := s.Result.Sentences[0]
	assert.Equal(t, []string{"He", "reads", "a", "book", "before", "bed"}, sentence.Words)
	assert.ElementsMatch(t, sentence.Words, sentence.ShuffledWords)
	assert.NotEqual(t, sentence.Words, sentence.ShuffledWords)
}

func TestCommitEdit_RecomputesWordScramble(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, wordContent())

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		CorrectWord: strPtr("giraffe"),
	})
	require.NoError(t, err)

	word := s.Result.Words[0]
	assert.Equal(t, "giraffe", word.CorrectWord)
	assert.Len(t, word.ScrambledLetters, 7)
	assert.ElementsMatch(t, []string{"g", "i", "r", "a", "f", "f", "e"}, word.ScrambledLetters)
}

func TestCommitEdit_PassageEditRebuildsFlatQuestions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, readingContent("Chapter 1", "Chapter 2"))

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		Title: strPtr("Chapter 1: Revised"),
		Text:  strPtr("A brand new opening."),
	})
	require.NoError(t, err)

	assert.Equal(t, "Chapter 1: Revised", s.Result.Passages[0].Title)
	assert.Equal(t, "A brand new opening.", s.Result.Passages[0].Text)

	require.Len(t, s.Result.Questions, 2)
	assert.Equal(t, s.Result.Passages[0].Questions[0].ID, s.Result.Questions[0].ID)
	assert.Equal(t, s.Result.Passages[1].Questions[0].ID, s.Result.Questions[1].ID)
}

func TestCommitEdit_ChangedTextRegeneratesAudio(t *testing.T) {
	env := newTestEnv()
	content := quizContent(1)
	content.Questions[0].Audio = entity.ItemAudio{
		Status:  entity.AudioStatusReady,
		Payload: []byte("stale audio"),
	}
	ctx := context.Background()
	id := putReviewSession(env, content)
	path := entity.FlatItemPath(0)

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		Question: strPtr("What sound does a cow make?"),
	})
	require.NoError(t, err)

	// The stale clip is dropped immediately.
	slot, err := audioSlot(s.Result, path)
	require.NoError(t, err)
	assert.Equal(t, entity.AudioStatusPending, slot.Status)

	audio := waitForAudioStatus(t, env, id, path, entity.AudioStatusReady)
	assert.Equal(t, []byte("audio:What sound does a cow make?"), audio.Payload)
}

func TestCommitEdit_UnchangedTextKeepsAudio(t *testing.T) {
	env := newTestEnv()
	content := quizContent(1)
	content.Questions[0].Audio = entity.ItemAudio{
		Status:  entity.AudioStatusReady,
		Payload: []byte("existing audio"),
	}
	ctx := context.Background()
	id := putReviewSession(env, content)

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	s, err := env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		Explanation: strPtr("Some new explanation."),
	})
	require.NoError(t, err)

	audio := s.Result.Questions[0].Audio
	assert.Equal(t, entity.AudioStatusReady, audio.Status)
	assert.Equal(t, []byte("existing audio"), audio.Payload)
	assert.Empty(t, env.speech.calls())
}

func TestDeleteItem_RemovesItem(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	s, err := env.uc.DeleteItem(ctx, id, 1)
	require.NoError(t, err)

	require.Len(t, s.Result.Questions, 2)
	assert.Equal(t, "What is question A?", s.Result.Questions[0].Question)
	assert.Equal(t, "What is question C?", s.Result.Questions[1].Question)
}

func TestDeleteItem_LastItemProtected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(1))

	_, err := env.uc.DeleteItem(ctx, id, 0)
	assert.ErrorIs(t, err, entity.ErrLastItem)
}

func TestDeleteItem_BoundsChecked(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(2))

	_, err := env.uc.DeleteItem(ctx, id, 2)
	assert.ErrorIs(t, err, entity.ErrItemNotFound)
}

func TestDeleteItem_RejectedWhileEditOpen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(3))

	_, err := env.uc.StartEdit(ctx, id, 2)
	require.NoError(t, err)

	_, err = env.uc.DeleteItem(ctx, id, 0)
	assert.ErrorIs(t, err, entity.ErrEditInProgress)
}

func TestDeleteItem_ReadingPassageRebuildsFlatQuestions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, readingContent("Chapter 1", "Chapter 2"))

	s, err := env.uc.DeleteItem(ctx, id, 0)
	require.NoError(t, err)

	require.Len(t, s.Result.Passages, 1)
	assert.Equal(t, "Chapter 2", s.Result.Passages[0].Title)
	require.Len(t, s.Result.Questions, 1)
	assert.Equal(t, s.Result.Passages[0].Questions[0].ID, s.Result.Questions[0].ID)
}

func TestAddItem_AppendsBlankAndOpensEdit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(2))

	s, err := env.uc.AddItem(ctx, id)
	require.NoError(t, err)

	// The blank stays in the buffer until the commit.
	require.Len(t, s.Result.Questions, 2)
	require.NotNil(t, s.Edit)
	assert.True(t, s.Edit.Append)
	assert.Equal(t, 2, s.Edit.Index)

	s, err = env.uc.CommitEdit(ctx, id, &entity.ItemEdit{
		Question:     strPtr("A fresh question?"),
		Options:      []string{"yes", "no"},
		CorrectIndex: intPtr(1),
	})
	require.NoError(t, err)

	require.Len(t, s.Result.Questions, 3)
	assert.Equal(t, "A fresh question?", s.Result.Questions[2].Question)
	assert.NotEmpty(t, s.Result.Questions[2].ID)
}

func TestAddItem_CancelLeavesResultUntouched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(2))

	_, err := env.uc.AddItem(ctx, id)
	require.NoError(t, err)

	s, err := env.uc.CancelEdit(ctx, id)
	require.NoError(t, err)

	assert.Nil(t, s.Edit)
	require.Len(t, s.Result.Questions, 2)
	for _, q := range s.Result.Questions {
		assert.NotEmpty(t, q.Question)
	}
}

func TestAddItem_RejectedWhileEditOpen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(2))

	_, err := env.uc.StartEdit(ctx, id, 0)
	require.NoError(t, err)

	_, err = env.uc.AddItem(ctx, id)
	assert.ErrorIs(t, err, entity.ErrEditInProgress)
}
