package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/owlingo/console-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginGeneration_InstallsResultAndMovesToReview(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := driveToConfigure(t, env)

	out, err := env.uc.BeginGeneration(ctx, id, &entity.GenerateRequest{
		Options: map[string]any{entity.OptionItemCount: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StepGenerating, out.Step)
	assert.Nil(t, out.Result)

	final := waitForStep(t, env, id, entity.StepReview)
	require.NotNil(t, final.Result)
	assert.Equal(t, entity.ContentKindQuiz, final.Result.Kind)
	assert.Equal(t, 3, final.Result.ItemCount())
	assert.Empty(t, final.LastError)

	req := env.generation.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "src-1", req.SourceID)
	assert.Equal(t, []string{"unit-1", "unit-2"}, req.UnitIDs)
	assert.Equal(t, "vocabulary", req.SkillSlug)
	assert.Equal(t, "quiz", req.FormatSlug)
}

func TestBeginGeneration_WrongStep(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	s, err := env.uc.StartWizard(ctx)
	require.NoError(t, err)

	_, err = env.uc.BeginGeneration(ctx, s.ID, &entity.GenerateRequest{})
	assert.ErrorIs(t, err, entity.ErrWrongStep)
}

func TestBeginGeneration_FailureReturnsToConfigure(t *testing.T) {
	env := newTestEnv()
	env.generation.generate = func(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error) {
		return nil, errors.New("upstream exploded")
	}
	ctx := context.Background()
	id := driveToConfigure(t, env)

	_, err := env.uc.BeginGeneration(ctx, id, &entity.GenerateRequest{})
	require.NoError(t, err)

	final := waitForStep(t, env, id, entity.StepConfigure)
	assert.Nil(t, final.Result)
	assert.Contains(t, final.LastError, "upstream exploded")
}

func TestBeginGeneration_InvalidEnvelopeReturnsToConfigure(t *testing.T) {
	env := newTestEnv()
	env.generation.generate = func(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error) {
		envlp := quizEnvelope(2)
		envlp.Kind = "mystery_kind"
		return envlp, nil
	}
	ctx := context.Background()
	id := driveToConfigure(t, env)

	_, err := env.uc.BeginGeneration(ctx, id, &entity.GenerateRequest{})
	require.NoError(t, err)

	final := waitForStep(t, env, id, entity.StepConfigure)
	assert.Nil(t, final.Result)
	assert.NotEmpty(t, final.LastError)
}

func TestBeginGeneration_CallbackDelivered(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := driveToConfigure(t, env)

	_, err := env.uc.BeginGeneration(ctx, id, &entity.GenerateRequest{
		CallbackURL: "https://hooks.example.com/done",
	})
	require.NoError(t, err)

	waitForStep(t, env, id, entity.StepReview)
	require.Eventually(t, func() bool {
		return env.callback.generatedCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestInstallResult_StaleGenerationIDDropped(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := driveToConfigure(t, env)

	err := env.uc.withSession(id, func(s *entity.WizardSession) error {
		s.Step = entity.StepGenerating
		s.GenerationID = "gen-current"
		return nil
	})
	require.NoError(t, err)

	env.uc.installResult(ctx, id, "gen-stale", "", quizContent(2), false, "")

	s, err := env.uc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StepGenerating, s.Step)
	assert.Nil(t, s.Result)

	env.uc.installResult(ctx, id, "gen-current", "", quizContent(2), false, "")

	s, err = env.uc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StepReview, s.Step)
	require.NotNil(t, s.Result)
}

func TestFailGeneration_StaleGenerationIDLeavesSessionAlone(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := putReviewSession(env, quizContent(2))

	env.uc.failGeneration(ctx, id, "gen-stale", "", errors.New("late failure"))

	s, err := env.uc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StepReview, s.Step)
	assert.Empty(t, s.LastError)
	require.NotNil(t, s.Result)
}

func TestBeginGeneration_CompletionAfterCancelIsOrphaned(t *testing.T) {
	env := newTestEnv()
	release := make(chan struct{})
	env.generation.generate = func(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error) {
		<-release
		return quizEnvelope(2), nil
	}
	ctx := context.Background()
	id := driveToConfigure(t, env)

	_, err := env.uc.BeginGeneration(ctx, id, &entity.GenerateRequest{})
	require.NoError(t, err)

	require.NoError(t, env.uc.Cancel(ctx, id, true))
	close(release)

	// The completion has no session to land on; nothing must be delivered.
	assert.Never(t, func() bool {
		return env.callback.generatedCount() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}
