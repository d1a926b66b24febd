package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// BeginGeneration validates the configuration step, transitions the session
// into the transient generating state and launches the generation
// asynchronously. Validation failures surface to the caller and leave the
// step unchanged; asynchronous failures return the session to the
// configuration step.
func (uc *Usecase) BeginGeneration(ctx context.Context, sessionID string, req *entity.GenerateRequest) (*entity.WizardSession, error) {
	var (
		out       *entity.WizardSession
		genReq    *entity.GenerationRequest
		genID     string
		streaming bool
		withAudio bool
		voice     string
	)

	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepConfigure {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		if err := s.StepPrecondition(); err != nil {
			return err
		}

		if req.Options != nil {
			if s.Form.Options == nil {
				s.Form.Options = make(map[string]any, len(req.Options))
			}
			for k, v := range req.Options {
				s.Form.Options[k] = v
			}
		}

		genID = uuid.NewString()
		s.GenerationID = genID
		s.Step = entity.StepGenerating
		s.LastError = ""
		s.StreamPassages = nil
		s.StreamSeen = nil

		genReq = BuildRequest(s.Form)
		streaming = UseStreaming(s.Form)
		withAudio = OptionBool(s.Form.Options, entity.OptionGenerateAudio)
		voice = OptionString(s.Form.Options, entity.OptionVoiceID)

		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
		zap.String("session_id", sessionID),
		zap.String("generation_id", genID),
		zap.String("action", "generate-async"),
	)

	go uc.runGeneration(bgCtx, sessionID, genID, genReq, streaming, withAudio, voice, req.CallbackURL)

	return out, nil
}

func (uc *Usecase) runGeneration(
	ctx context.Context,
	sessionID, genID string,
	req *entity.GenerationRequest,
	streaming, withAudio bool,
	voice, callbackURL string,
) {
	if streaming {
		uc.runStreamingGeneration(ctx, sessionID, genID, req, withAudio, voice, callbackURL)
		return
	}

	ctxzap.Info(ctx, "requesting generation",
		zap.String("skill", req.SkillSlug),
		zap.String("format", req.FormatSlug),
		zap.String("activity_type", req.ActivityType),
	)

	envelope, err := uc.generation.Generate(ctx, req)
	if err != nil {
		uc.failGeneration(ctx, sessionID, genID, callbackURL, fmt.Errorf("generate: %w", err))
		return
	}

	content, err := NormalizeEnvelope(envelope)
	if err != nil {
		uc.failGeneration(ctx, sessionID, genID, callbackURL, fmt.Errorf("normalize result: %w", err))
		return
	}

	uc.installResult(ctx, sessionID, genID, callbackURL, content, withAudio, voice)
}

// installResult installs a freshly generated content object as the
// authoritative result and moves the session to review. A completion whose
// generation ID no longer matches lands on an orphan and is dropped.
func (uc *Usecase) installResult(
	ctx context.Context,
	sessionID, genID, callbackURL string,
	content *entity.GeneratedContent,
	withAudio bool,
	voice string,
) {
	installed := false
	_ = uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepGenerating || s.GenerationID != genID {
			return nil
		}
		s.Result = content
		s.Step = entity.StepReview
		s.LastError = ""
		s.StreamPassages = nil
		s.StreamSeen = nil
		installed = true
		return nil
	})

	if !installed {
		ctxzap.Info(ctx, "generation completed for a discarded session, dropping result")
		return
	}

	ctxzap.Info(ctx, "generation result installed",
		zap.String("kind", string(content.Kind)),
		zap.Int("item_count", content.ItemCount()),
	)

	if callbackURL != "" {
		uc.callback.SendGenerated(ctx, callbackURL, sessionID, content)
	}

	if withAudio {
		// Bulk synthesis uses the just-built result as its base.
		go uc.synthesizeAll(ctx, sessionID, content.ID, voice)
	}
}

// failGeneration returns the session to the configuration step and records
// the error; the machine is never left stuck in the generating state.
func (uc *Usecase) failGeneration(ctx context.Context, sessionID, genID, callbackURL string, genErr error) {
	ctxzap.Error(ctx, "generation failed", zap.Error(genErr))

	_ = uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepGenerating || s.GenerationID != genID {
			return nil
		}
		s.Step = entity.StepConfigure
		s.LastError = genErr.Error()
		s.StreamPassages = nil
		s.StreamSeen = nil
		return nil
	})

	if callbackURL != "" {
		uc.callback.SendError(ctx, callbackURL, sessionID, genErr.Error())
	}
}
