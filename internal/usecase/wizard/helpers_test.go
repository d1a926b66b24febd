package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/owlingo/console-backend/internal/entity"
	pkgRetry "github.com/owlingo/console-backend/internal/pkg/retry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Shared fakes for the orchestration tests. All fakes are synchronous and
// record their calls under a mutex so tests can await asynchronous
// completions with require.Eventually.

type fakeGeneration struct {
	mu       sync.Mutex
	requests []*entity.GenerationRequest

	generate func(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error)
	stream   func(ctx context.Context, req *entity.GenerationRequest, handlers entity.StreamHandlers) error
}

func (f *fakeGeneration) record(req *entity.GenerationRequest) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
}

func (f *fakeGeneration) lastRequest() *entity.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeGeneration) Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationEnvelope, error) {
	f.record(req)
	if f.generate != nil {
		return f.generate(ctx, req)
	}
	return quizEnvelope(3), nil
}

func (f *fakeGeneration) GenerateStream(ctx context.Context, req *entity.GenerationRequest, handlers entity.StreamHandlers) error {
	f.record(req)
	if f.stream != nil {
		return f.stream(ctx, req, handlers)
	}
	handlers.OnComplete(ctx, &entity.StreamCompletion{
		Passages:  []entity.Passage{testPassage("Chapter 1", 1)},
		SkillName: "Reading",
	})
	return nil
}

type fakeSpeech struct {
	mu       sync.Mutex
	requests []*entity.SpeechSynthesizeRequest
	err      error

	// failText, when set, fails only the calls synthesizing that exact text.
	failText string

	// block, when set, stalls every synthesis call until it is closed.
	block chan struct{}
}

func (f *fakeSpeech) Synthesize(ctx context.Context, req *entity.SpeechSynthesizeRequest) (*entity.SpeechSynthesizeResponse, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	err := f.err
	failText := f.failText
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if failText != "" && req.Text == failText {
		return nil, errors.New("synthesis rejected for " + req.Text)
	}
	return &entity.SpeechSynthesizeResponse{
		Audio:    []byte("audio:" + req.Text),
		Duration: 1.5,
	}, nil
}

func (f *fakeSpeech) calls() []*entity.SpeechSynthesizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.SpeechSynthesizeRequest(nil), f.requests...)
}

type fakeCatalog struct {
	sources []entity.Source
	err     error
}

func (f *fakeCatalog) ListSources(ctx context.Context) ([]entity.Source, error) {
	return f.sources, f.err
}

func (f *fakeCatalog) ListUnits(ctx context.Context, sourceID string) ([]entity.Unit, error) {
	return nil, f.err
}

func (f *fakeCatalog) ListSkills(ctx context.Context) ([]entity.Skill, error) {
	return nil, f.err
}

type fakeCallback struct {
	mu        sync.Mutex
	generated []string
	failures  []string
}

func (f *fakeCallback) SendGenerated(ctx context.Context, callbackURL, sessionID string, content *entity.GeneratedContent) {
	f.mu.Lock()
	f.generated = append(f.generated, callbackURL)
	f.mu.Unlock()
}

func (f *fakeCallback) SendError(ctx context.Context, callbackURL, sessionID, message string) {
	f.mu.Lock()
	f.failures = append(f.failures, message)
	f.mu.Unlock()
}

func (f *fakeCallback) generatedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generated)
}

type fakeContentRepo struct {
	mu      sync.Mutex
	saved   []*entity.SavedContent
	saveErr error
}

func (f *fakeContentRepo) SaveContent(ctx context.Context, content *entity.GeneratedContent, title, description string) (*entity.SavedContent, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	saved := &entity.SavedContent{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Kind:        content.Kind,
		SkillName:   content.SkillName,
		FormatName:  content.FormatName,
		ItemCount:   content.ItemCount(),
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	f.mu.Lock()
	f.saved = append(f.saved, saved)
	f.mu.Unlock()
	return saved, nil
}

func (f *fakeContentRepo) Get(ctx context.Context, id string) (*entity.SavedContent, error) {
	return nil, entity.ErrContentNotFound
}

func (f *fakeContentRepo) List(ctx context.Context, skip, limit int) ([]*entity.SavedContent, error) {
	return nil, nil
}

func (f *fakeContentRepo) Delete(ctx context.Context, id string) error {
	return entity.ErrContentNotFound
}

func (f *fakeContentRepo) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type testEnv struct {
	uc         *Usecase
	store      *SessionStore
	generation *fakeGeneration
	speech     *fakeSpeech
	catalog    *fakeCatalog
	callback   *fakeCallback
	repo       *fakeContentRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:      NewSessionStore(time.Hour),
		generation: &fakeGeneration{},
		speech:     &fakeSpeech{},
		catalog: &fakeCatalog{
			sources: []entity.Source{{ID: "src-1", Name: "Beginner Course"}},
		},
		callback: &fakeCallback{},
		repo:     &fakeContentRepo{},
	}

	retryCfg := &pkgRetry.RetryConfig{Attempts: 1, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	env.uc = NewUsecase(
		env.store,
		env.repo,
		env.catalog,
		env.generation,
		env.speech,
		env.callback,
		retryCfg,
		"default-voice",
		map[string]any{entity.OptionItemCount: 5},
		zap.NewNop(),
	)
	return env
}

// driveToConfigure walks a fresh session through the selection steps up to
// the configuration step.
func driveToConfigure(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()

	s, err := env.uc.StartWizard(ctx)
	require.NoError(t, err)

	_, err = env.uc.SelectSource(ctx, s.ID, "src-1")
	require.NoError(t, err)

	_, err = env.uc.SelectUnits(ctx, s.ID, []string{"unit-1", "unit-2"})
	require.NoError(t, err)

	_, err = env.uc.SelectSkill(ctx, s.ID, &entity.SelectSkillRequest{
		SkillSlug:  "vocabulary",
		FormatSlug: "quiz",
	})
	require.NoError(t, err)

	return s.ID
}

// putReviewSession installs a session already at the review step carrying the
// given result, bypassing the generation flow.
func putReviewSession(env *testEnv, content *entity.GeneratedContent) string {
	now := time.Now().UTC()
	session := &entity.WizardSession{
		ID:   uuid.NewString(),
		Step: entity.StepReview,
		Form: &entity.WizardForm{
			SourceID:   "src-1",
			UnitIDs:    []string{"unit-1"},
			SkillSlug:  "vocabulary",
			FormatSlug: "quiz",
		},
		Result:    content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	env.store.Put(session)
	return session.ID
}

func waitForStep(t *testing.T, env *testEnv, sessionID string, step entity.WizardStep) *entity.WizardSession {
	t.Helper()
	var out *entity.WizardSession
	require.Eventually(t, func() bool {
		s, err := env.uc.GetSession(context.Background(), sessionID)
		if err != nil {
			return false
		}
		out = s
		return s.Step == step
	}, 3*time.Second, 5*time.Millisecond)
	return out
}

func quizEnvelope(n int) *entity.GenerationEnvelope {
	questions := make([]entity.QuizQuestion, n)
	for i := range questions {
		questions[i] = entity.QuizQuestion{
			Question:     "What is question " + string(rune('A'+i)) + "?",
			Options:      []string{"yes", "no", "maybe"},
			CorrectIndex: i % 3,
		}
	}
	payload, _ := json.Marshal(map[string]any{"questions": questions})
	return &entity.GenerationEnvelope{
		Kind:       entity.ContentKindQuiz,
		SkillName:  "Vocabulary",
		FormatName: "Quiz",
		ItemCount:  n,
		Payload:    payload,
	}
}

func quizContent(n int) *entity.GeneratedContent {
	content := &entity.GeneratedContent{
		ID:        uuid.NewString(),
		Kind:      entity.ContentKindQuiz,
		SkillName: "Vocabulary",
		CreatedAt: time.Now().UTC(),
	}
	for i := 0; i < n; i++ {
		content.Questions = append(content.Questions, entity.QuizQuestion{
			ID:           uuid.NewString(),
			Question:     "What is question " + string(rune('A'+i)) + "?",
			Options:      []string{"yes", "no", "maybe"},
			CorrectIndex: i % 3,
		})
	}
	return content
}

func testPassage(title string, questions int) entity.Passage {
	p := entity.Passage{
		ID:    uuid.NewString(),
		Title: title,
		Text:  "The text of " + title + ".",
	}
	for i := 0; i < questions; i++ {
		p.Questions = append(p.Questions, entity.QuizQuestion{
			ID:           uuid.NewString(),
			Question:     title + " question",
			Options:      []string{"yes", "no"},
			CorrectIndex: 0,
		})
	}
	return p
}

func readingContent(titles ...string) *entity.GeneratedContent {
	content := &entity.GeneratedContent{
		ID:        uuid.NewString(),
		Kind:      entity.ContentKindReading,
		SkillName: "Reading",
		CreatedAt: time.Now().UTC(),
	}
	for _, title := range titles {
		content.Passages = append(content.Passages, testPassage(title, 1))
	}
	for _, p := range content.Passages {
		content.Questions = append(content.Questions, p.Questions...)
	}
	return content
}
