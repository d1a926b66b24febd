package wizard

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Audio synthesis pipeline: attaches synthesized audio to items by
// structural path. Synthesis failures are absorbed as per-item failed
// status, never surfaced as errors past this boundary.

// SynthesizeItem marks one item pending and launches a single synthesis for
// it. Used both for targeted regeneration after an edit and as the
// user-facing retry of a failed item.
func (uc *Usecase) SynthesizeItem(ctx context.Context, sessionID string, path entity.ItemPath, voiceOverride string) error {
	var contentID, text string
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Result == nil {
			return entity.ErrNoResult
		}

		t, err := audioTextAt(s.Result, path)
		if err != nil {
			return err
		}

		next := s.Result.Clone()
		slot, err := audioSlot(next, path)
		if err != nil {
			return err
		}
		*slot = entity.ItemAudio{Status: entity.AudioStatusPending}
		s.Result = next

		contentID = next.ID
		text = t
		return nil
	})
	if err != nil {
		return err
	}

	bgCtx := uc.audioContext(ctx, sessionID)
	go uc.synthesizeInto(bgCtx, sessionID, contentID, path, text, voiceOverride)

	return nil
}

// synthesizeAll runs bulk synthesis over every audio-bearing item of the
// content object, strictly sequentially: each item's result is written back
// to the authoritative value before the next item begins, so partial
// progress is visible incrementally. One item's failure does not abort the
// remaining items.
func (uc *Usecase) synthesizeAll(ctx context.Context, sessionID, contentID, voice string) {
	var paths []entity.ItemPath
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Result == nil || s.Result.ID != contentID {
			return entity.ErrNoResult
		}

		paths = itemPaths(s.Result)

		next := s.Result.Clone()
		for _, p := range paths {
			if slot, err := audioSlot(next, p); err == nil {
				*slot = entity.ItemAudio{Status: entity.AudioStatusPending}
			}
		}
		s.Result = next
		return nil
	})
	if err != nil {
		ctxzap.Info(ctx, "bulk synthesis skipped, result discarded", zap.Error(err))
		return
	}

	ctxzap.Info(ctx, "bulk audio synthesis started", zap.Int("item_count", len(paths)))

	for _, path := range paths {
		var text string
		found := false
		_ = uc.withSession(sessionID, func(s *entity.WizardSession) error {
			if s.Result == nil || s.Result.ID != contentID {
				return nil
			}
			if t, err := audioTextAt(s.Result, path); err == nil {
				text = t
				found = true
			}
			return nil
		})
		if !found {
			// Result discarded or replaced mid-run; the rest of the loop
			// would only write to an orphan.
			ctxzap.Info(ctx, "bulk synthesis stopped, result discarded")
			return
		}

		uc.synthesizeInto(ctx, sessionID, contentID, path, text, voice)
	}

	ctxzap.Info(ctx, "bulk audio synthesis finished", zap.Int("item_count", len(paths)))
}

// synthesizeInto performs one synthesis call and writes the outcome back to
// the current authoritative result. The write-back is skipped when the
// item's source text changed while the call was in flight, so stale audio is
// never attached to edited text.
func (uc *Usecase) synthesizeInto(ctx context.Context, sessionID, contentID string, path entity.ItemPath, text, voice string) {
	resp, err := uc.synthesize(ctx, text, voice)

	var audio entity.ItemAudio
	if err != nil {
		ctxzap.Warn(ctx, "audio synthesis failed",
			zap.Error(err),
			zap.Int("passage", path.Passage),
			zap.Int("question", path.Question),
			zap.Int("item", path.Item),
		)
		audio = entity.ItemAudio{Status: entity.AudioStatusFailed}
	} else {
		audio = entity.ItemAudio{
			Status:         entity.AudioStatusReady,
			Payload:        resp.Audio,
			WordTimestamps: resp.WordTimestamps,
			Duration:       resp.Duration,
		}
	}

	uc.replaceResult(sessionID, contentID, func(cur *entity.GeneratedContent) *entity.GeneratedContent {
		curText, terr := audioTextAt(cur, path)
		if terr != nil || curText != text {
			return cur
		}
		next := cur.Clone()
		slot, serr := audioSlot(next, path)
		if serr != nil {
			return cur
		}
		*slot = audio
		return next
	})
}

// synthesize wraps the voice-synthesis call with the configured retry
// policy.
func (uc *Usecase) synthesize(ctx context.Context, text, voice string) (*entity.SpeechSynthesizeResponse, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty synthesis text", entity.ErrInvalidParameter)
	}
	if voice == "" {
		voice = uc.defaultVoice
	}

	req := &entity.SpeechSynthesizeRequest{Text: text, VoiceID: voice}

	opts := append(uc.speechRetry.ToRetryOptions(), retry.Context(ctx), retry.LastErrorOnly(true))
	return retry.DoWithData(func() (*entity.SpeechSynthesizeResponse, error) {
		return uc.speech.Synthesize(ctx, req)
	}, opts...)
}

func (uc *Usecase) audioContext(ctx context.Context, sessionID string) context.Context {
	return logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
		zap.String("session_id", sessionID),
		zap.String("action", "synthesize-audio"),
	)
}

// itemPaths enumerates the audio-bearing items of a content object in
// display order: one path per flat item, one per passage for reading
// content, and the whole object for single-passage content.
func itemPaths(content *entity.GeneratedContent) []entity.ItemPath {
	switch content.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		paths := make([]entity.ItemPath, len(content.Questions))
		for i := range content.Questions {
			paths[i] = entity.FlatItemPath(i)
		}
		return paths
	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		paths := make([]entity.ItemPath, len(content.Items))
		for i := range content.Items {
			paths[i] = entity.FlatItemPath(i)
		}
		return paths
	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		paths := make([]entity.ItemPath, len(content.Sentences))
		for i := range content.Sentences {
			paths[i] = entity.FlatItemPath(i)
		}
		return paths
	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		paths := make([]entity.ItemPath, len(content.Words))
		for i := range content.Words {
			paths[i] = entity.FlatItemPath(i)
		}
		return paths
	case entity.ContentKindPassage:
		return []entity.ItemPath{entity.WholeObjectPath()}
	case entity.ContentKindReading:
		paths := make([]entity.ItemPath, len(content.Passages))
		for i := range content.Passages {
			paths[i] = entity.PassagePath(i)
		}
		return paths
	default:
		return nil
	}
}

// audioSlot resolves the audio attachment addressed by a path inside a
// content value the caller owns (a clone about to be installed).
func audioSlot(content *entity.GeneratedContent, path entity.ItemPath) (*entity.ItemAudio, error) {
	switch {
	case path.Passage >= 0:
		if path.Passage >= len(content.Passages) {
			return nil, fmt.Errorf("%w: passage %d", entity.ErrInvalidPath, path.Passage)
		}
		p := &content.Passages[path.Passage]
		if path.Question >= 0 {
			if path.Question >= len(p.Questions) {
				return nil, fmt.Errorf("%w: passage %d question %d", entity.ErrInvalidPath, path.Passage, path.Question)
			}
			return &p.Questions[path.Question].Audio, nil
		}
		return &p.Audio, nil

	case path.Item >= 0:
		i := path.Item
		switch content.Kind {
		case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
			if i < len(content.Questions) {
				return &content.Questions[i].Audio, nil
			}
		case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
			if i < len(content.Items) {
				return &content.Items[i].Audio, nil
			}
		case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
			if i < len(content.Sentences) {
				return &content.Sentences[i].Audio, nil
			}
		case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
			if i < len(content.Words) {
				return &content.Words[i].Audio, nil
			}
		}
		return nil, fmt.Errorf("%w: item %d", entity.ErrInvalidPath, i)

	default:
		// Whole object: single-passage content.
		if len(content.Passages) == 0 {
			return nil, fmt.Errorf("%w: no passage", entity.ErrInvalidPath)
		}
		return &content.Passages[0].Audio, nil
	}
}

// audioTextAt returns the designated synthesis text of the item addressed by
// a path: the spoken prompt of listening questions, the full sentence of
// fill-blank and sentence-builder items, the correct word of word-builder
// items, and the passage text for passages.
func audioTextAt(content *entity.GeneratedContent, path entity.ItemPath) (string, error) {
	switch {
	case path.Passage >= 0:
		if path.Passage >= len(content.Passages) {
			return "", fmt.Errorf("%w: passage %d", entity.ErrInvalidPath, path.Passage)
		}
		p := &content.Passages[path.Passage]
		if path.Question >= 0 {
			if path.Question >= len(p.Questions) {
				return "", fmt.Errorf("%w: passage %d question %d", entity.ErrInvalidPath, path.Passage, path.Question)
			}
			return questionAudioText(&p.Questions[path.Question]), nil
		}
		return p.Text, nil

	case path.Item >= 0:
		i := path.Item
		switch content.Kind {
		case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
			if i < len(content.Questions) {
				return questionAudioText(&content.Questions[i]), nil
			}
		case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
			if i < len(content.Items) {
				return content.Items[i].FullSentence, nil
			}
		case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
			if i < len(content.Sentences) {
				return content.Sentences[i].FullSentence, nil
			}
		case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
			if i < len(content.Words) {
				return content.Words[i].CorrectWord, nil
			}
		}
		return "", fmt.Errorf("%w: item %d", entity.ErrInvalidPath, i)

	default:
		if len(content.Passages) == 0 {
			return "", fmt.Errorf("%w: no passage", entity.ErrInvalidPath)
		}
		return content.Passages[0].Text, nil
	}
}

func questionAudioText(q *entity.QuizQuestion) string {
	if q.AudioText != "" {
		return q.AudioText
	}
	return q.Question
}
