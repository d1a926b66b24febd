package wizard

import (
	"context"
	"fmt"
	"sort"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"go.uber.org/zap"
)

// runStreamingGeneration consumes the three-event streamed generation
// protocol. Passage events accumulate on the session in deterministic title
// order so a client polling mid-stream always sees a stable ordered partial
// view; the completion event carries the authoritative passage list from
// which the result is built. Errors discard all accumulated partials.
func (uc *Usecase) runStreamingGeneration(
	ctx context.Context,
	sessionID, genID string,
	req *entity.GenerationRequest,
	withAudio bool,
	voice, callbackURL string,
) {
	ctxzap.Info(ctx, "requesting streamed generation",
		zap.String("skill", req.SkillSlug),
		zap.Int("passage_count", OptionInt(req.Options, entity.OptionPassageCount, 0)),
	)

	handlers := entity.StreamHandlers{
		OnPassage: func(ctx context.Context, envelope *entity.StreamEnvelope) {
			uc.ingestPassage(ctx, sessionID, genID, envelope)
		},
		OnComplete: func(ctx context.Context, completion *entity.StreamCompletion) {
			content := ContentFromCompletion(completion)
			uc.installResult(ctx, sessionID, genID, callbackURL, content, withAudio, voice)
		},
		OnError: func(ctx context.Context, err error) {
			uc.failGeneration(ctx, sessionID, genID, callbackURL, fmt.Errorf("stream: %w", err))
		},
	}

	if err := uc.generation.GenerateStream(ctx, req, handlers); err != nil {
		uc.failGeneration(ctx, sessionID, genID, callbackURL, fmt.Errorf("stream transport: %w", err))
	}
}

// ingestPassage appends one streamed passage to the accumulation buffer and
// re-sorts the whole buffer by title. Ingestion is idempotent: a
// retransmitted envelope for an already-seen passage ID is dropped.
func (uc *Usecase) ingestPassage(ctx context.Context, sessionID, genID string, envelope *entity.StreamEnvelope) {
	_ = uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepGenerating || s.GenerationID != genID {
			return nil
		}

		if s.StreamSeen == nil {
			s.StreamSeen = make(map[string]struct{})
		}
		if _, dup := s.StreamSeen[envelope.PassageID]; dup {
			ctxzap.Debug(ctx, "duplicate stream envelope dropped",
				zap.String("passage_id", envelope.PassageID),
			)
			return nil
		}
		s.StreamSeen[envelope.PassageID] = struct{}{}

		passage := envelope.Passage
		if passage.ID == "" {
			passage.ID = envelope.PassageID
		}

		s.StreamPassages = append(s.StreamPassages, passage)
		sortPassagesByTitle(s.StreamPassages)

		ctxzap.Info(ctx, "stream passage accumulated",
			zap.String("passage_id", envelope.PassageID),
			zap.String("title", passage.Title),
			zap.Int("buffered", len(s.StreamPassages)),
		)
		return nil
	})
}

// sortPassagesByTitle orders passages lexicographically by title. The sort
// is stable so equal titles keep their arrival order between re-sorts.
func sortPassagesByTitle(passages []entity.Passage) {
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Title < passages[j].Title
	})
}
