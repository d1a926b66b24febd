package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	pkgRetry "github.com/owlingo/console-backend/internal/pkg/retry"
	"github.com/owlingo/console-backend/internal/repository"
	"go.uber.org/zap"
)

// Usecase is the generation orchestration engine: it owns the wizard state
// machine, the streaming reassembler, the audio pipeline and the edit
// reconciliation engine, all operating on the single authoritative result of
// each wizard session.
type Usecase struct {
	store        *SessionStore
	contentRepo  repository.ContentRepository
	catalog      CatalogConnector
	generation   GenerationConnector
	speech       SpeechConnector
	callback     CallbackConnector
	speechRetry  *pkgRetry.RetryConfig
	defaultVoice string
	mixOptions   map[string]any
	logger       *zap.Logger
}

// NewUsecase creates the wizard orchestration engine.
func NewUsecase(
	store *SessionStore,
	contentRepo repository.ContentRepository,
	catalog CatalogConnector,
	generation GenerationConnector,
	speech SpeechConnector,
	callback CallbackConnector,
	speechRetry *pkgRetry.RetryConfig,
	defaultVoice string,
	mixOptions map[string]any,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		store:        store,
		contentRepo:  contentRepo,
		catalog:      catalog,
		generation:   generation,
		speech:       speech,
		callback:     callback,
		speechRetry:  speechRetry,
		defaultVoice: defaultVoice,
		mixOptions:   mixOptions,
		logger:       logger,
	}
}

// withSession runs fn on the locked session. Mutations made by fn are the
// only way session state changes; fn must not block on the network.
func (uc *Usecase) withSession(id string, fn func(s *entity.WizardSession) error) error {
	h, err := uc.store.handle(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		return entity.ErrSessionNotFound
	}

	if err := fn(h.session); err != nil {
		return err
	}

	if h.session != nil {
		h.session.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// replaceResult installs mutate(current) as the new authoritative result for
// the given content ID. It reads the current value at write time, never a
// value captured before an asynchronous operation began. When the session or
// the targeted result is gone the completion lands on an orphan and this is
// a no-op by construction.
func (uc *Usecase) replaceResult(sessionID, contentID string, mutate func(cur *entity.GeneratedContent) *entity.GeneratedContent) {
	_ = uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Result == nil || s.Result.ID != contentID {
			return nil
		}
		s.Result = mutate(s.Result)
		return nil
	})
}

// snapshot returns a deep copy safe to hand to the API layer.
func snapshot(s *entity.WizardSession) *entity.WizardSession {
	copy := *s
	copy.Form = s.Form.Clone()
	copy.Result = s.Result.Clone()
	copy.StreamPassages = append([]entity.Passage(nil), s.StreamPassages...)
	copy.StreamSeen = nil
	if s.Edit != nil {
		buf := *s.Edit
		copy.Edit = &buf
	}
	return &copy
}

// StartWizard opens a new wizard session at the source-selection step with
// an empty form.
func (uc *Usecase) StartWizard(ctx context.Context) (*entity.WizardSession, error) {
	now := time.Now().UTC()
	session := &entity.WizardSession{
		ID:        uuid.NewString(),
		Step:      entity.StepSelectSource,
		Form:      &entity.WizardForm{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	uc.store.Put(session)

	ctxzap.Info(ctx, "wizard session started", zap.String("session_id", session.ID))

	return snapshot(session), nil
}

// GetSession returns the current session state, including the ordered
// partial passage buffer of an in-flight streamed generation.
func (uc *Usecase) GetSession(ctx context.Context, sessionID string) (*entity.WizardSession, error) {
	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectSource records the chosen source and advances to unit selection.
func (uc *Usecase) SelectSource(ctx context.Context, sessionID, sourceID string) (*entity.WizardSession, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source", entity.ErrMissingSelection)
	}

	if err := uc.verifySource(ctx, sourceID); err != nil {
		return nil, err
	}

	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepSelectSource {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		s.Form.SourceID = sourceID
		s.Form.UnitIDs = nil
		s.Step = entity.StepSelectUnits
		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectUnits records the chosen sub-units (at least one) and advances to
// skill selection.
func (uc *Usecase) SelectUnits(ctx context.Context, sessionID string, unitIDs []string) (*entity.WizardSession, error) {
	if len(unitIDs) == 0 {
		return nil, fmt.Errorf("%w: units", entity.ErrMissingSelection)
	}

	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepSelectUnits {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		s.Form.UnitIDs = append([]string(nil), unitIDs...)
		s.Step = entity.StepSelectSkill
		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectSkill records the skill/format pair or the legacy activity type and
// advances to configuration. Choosing the mix skill bypasses format
// selection and triggers generation directly with the default option set.
func (uc *Usecase) SelectSkill(ctx context.Context, sessionID string, req *entity.SelectSkillRequest) (*entity.WizardSession, error) {
	skillChosen := req.SkillSlug != ""
	legacyChosen := req.ActivityType != ""
	if skillChosen == legacyChosen {
		return nil, fmt.Errorf("%w: exactly one of skill or activity type", entity.ErrInvalidParameter)
	}
	if skillChosen && req.SkillSlug != entity.SkillMix && req.FormatSlug == "" {
		return nil, fmt.Errorf("%w: format", entity.ErrMissingSelection)
	}

	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepSelectSkill {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		s.Form.SkillSlug = req.SkillSlug
		s.Form.FormatSlug = req.FormatSlug
		s.Form.ActivityType = req.ActivityType
		s.Step = entity.StepConfigure
		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.SkillSlug == entity.SkillMix {
		return uc.BeginGeneration(ctx, sessionID, &entity.GenerateRequest{Options: uc.mixOptions})
	}
	return out, nil
}

// Retreat moves back one step. Retreating out of review while a result
// exists discards the result and requires explicit confirmation.
func (uc *Usecase) Retreat(ctx context.Context, sessionID string, confirm bool) (*entity.WizardSession, error) {
	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		switch s.Step {
		case entity.StepReview:
			if s.Result != nil && !confirm {
				return fmt.Errorf("%w: retreating discards the generated result", entity.ErrConfirmationRequired)
			}
			s.Result = nil
			s.Edit = nil
			s.StreamPassages = nil
			s.StreamSeen = nil
			s.Step = entity.StepConfigure
		case entity.StepConfigure:
			s.Step = entity.StepSelectSkill
		case entity.StepSelectSkill:
			s.Step = entity.StepSelectUnits
		case entity.StepSelectUnits:
			s.Step = entity.StepSelectSource
		default:
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel discards the wizard. Once any selection has been made or a result
// exists, cancellation requires explicit confirmation. All state (form,
// result, streaming buffers, edit buffer) is reset before the session is
// dropped, so in-flight completions land on an orphan.
func (uc *Usecase) Cancel(ctx context.Context, sessionID string, confirm bool) error {
	h, err := uc.store.handle(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		return entity.ErrSessionNotFound
	}

	if (!h.session.Form.IsEmpty() || h.session.Result != nil) && !confirm {
		return fmt.Errorf("%w: cancelling discards all selections", entity.ErrConfirmationRequired)
	}

	h.session.Form = &entity.WizardForm{}
	h.session.Result = nil
	h.session.Edit = nil
	h.session.StreamPassages = nil
	h.session.StreamSeen = nil
	h.session = nil
	uc.store.Drop(sessionID)

	ctxzap.Info(ctx, "wizard session cancelled", zap.String("session_id", sessionID))
	return nil
}

// Save hands the approved result to the persistence collaborator. On
// failure the session stays on the review step with the result intact so
// the user may retry without regenerating.
func (uc *Usecase) Save(ctx context.Context, sessionID, title, description string) (*entity.SavedContent, error) {
	var content *entity.GeneratedContent
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepReview {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		if s.Result == nil {
			return entity.ErrNoResult
		}
		if s.Edit != nil {
			return entity.ErrEditInProgress
		}
		content = s.Result.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved, err := uc.contentRepo.SaveContent(ctx, content, title, description)
	if err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	// Terminal exit: drop the session only after the save succeeded.
	if h, herr := uc.store.handle(sessionID); herr == nil {
		h.mu.Lock()
		h.session = nil
		h.mu.Unlock()
		uc.store.Drop(sessionID)
	}

	ctxzap.Info(ctx, "wizard session saved",
		zap.String("session_id", sessionID),
		zap.String("content_id", saved.ID),
	)

	return saved, nil
}

// verifySource checks the source against the catalog; catalog outages do not
// block the wizard, they only disable the existence check.
func (uc *Usecase) verifySource(ctx context.Context, sourceID string) error {
	sources, err := uc.catalog.ListSources(ctx)
	if err != nil {
		ctxzap.Warn(ctx, "catalog lookup failed, skipping source check", zap.Error(err))
		return nil
	}
	for _, src := range sources {
		if src.ID == sourceID {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown source %q", entity.ErrInvalidParameter, sourceID)
}
