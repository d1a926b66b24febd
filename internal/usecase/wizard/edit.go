package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/owlingo/console-backend/internal/entity"
)

// Edit reconciliation: at most one item edit is open per session. The open
// edit works on a deep-copied buffer; commit validates, recomputes derived
// fields and installs the replacement item atomically on a content clone.

// StartEdit opens an edit buffer for the item at index of the active
// collection. Only one edit may be open at a time.
func (uc *Usecase) StartEdit(ctx context.Context, sessionID string, index int) (*entity.WizardSession, error) {
	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepReview {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		if s.Edit != nil {
			return entity.ErrEditInProgress
		}
		if s.Result == nil {
			return entity.ErrNoResult
		}

		buf, err := newEditBuffer(s.Result, index)
		if err != nil {
			return err
		}
		s.Edit = buf

		out = snapshot(s)
		return nil
	})
	return out, err
}

// CancelEdit discards the open edit buffer without touching the result.
func (uc *Usecase) CancelEdit(ctx context.Context, sessionID string) (*entity.WizardSession, error) {
	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Edit == nil {
			return entity.ErrNoEditOpen
		}
		s.Edit = nil
		out = snapshot(s)
		return nil
	})
	return out, err
}

// CommitEdit applies the field changes to the buffered item, recomputes every
// derived field from the new source text and replaces the item in the result
// atomically. Any change to the item's synthesis text clears its audio state
// to pending and launches a fresh synthesis for that item only.
func (uc *Usecase) CommitEdit(ctx context.Context, sessionID string, edit *entity.ItemEdit) (*entity.WizardSession, error) {
	var (
		out        *entity.WizardSession
		resynth    bool
		contentID  string
		resynthTxt string
		path       entity.ItemPath
		voice      string
	)

	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Edit == nil {
			return entity.ErrNoEditOpen
		}
		if s.Result == nil {
			return entity.ErrNoResult
		}

		buf := s.Edit
		path = editPath(s.Result.Kind, buf.Index)

		var oldText string
		if !buf.Append {
			t, err := audioTextAt(s.Result, path)
			if err != nil {
				return err
			}
			oldText = t
		}

		if err := applyEdit(buf, edit); err != nil {
			return err
		}

		next := s.Result.Clone()
		if err := installEdited(next, buf); err != nil {
			return err
		}

		newText, err := audioTextAt(next, path)
		if err != nil {
			return err
		}
		if newText != oldText {
			slot, err := audioSlot(next, path)
			if err != nil {
				return err
			}
			*slot = entity.ItemAudio{Status: entity.AudioStatusPending}
			if newText != "" {
				resynth = true
				resynthTxt = newText
			}
		}

		s.Result = next
		s.Edit = nil

		contentID = next.ID
		voice = OptionString(s.Form.Options, entity.OptionVoiceID)
		out = snapshot(s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resynth {
		bgCtx := uc.audioContext(ctx, sessionID)
		go uc.synthesizeInto(bgCtx, sessionID, contentID, path, resynthTxt, voice)
	}

	return out, nil
}

// DeleteItem removes the item at index of the active collection. The last
// remaining item cannot be deleted, and deletion is rejected while an edit is
// open so buffered indexes never dangle.
func (uc *Usecase) DeleteItem(ctx context.Context, sessionID string, index int) (*entity.WizardSession, error) {
	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepReview {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		if s.Edit != nil {
			return entity.ErrEditInProgress
		}
		if s.Result == nil {
			return entity.ErrNoResult
		}
		if index < 0 || index >= s.Result.ItemCount() {
			return fmt.Errorf("%w: index %d", entity.ErrItemNotFound, index)
		}
		if s.Result.ItemCount() == 1 {
			return entity.ErrLastItem
		}

		next := s.Result.Clone()
		removeItem(next, index)
		s.Result = next

		out = snapshot(s)
		return nil
	})
	return out, err
}

// AddItem opens an edit buffer holding an empty item of the content's kind.
// The blank stays in the buffer until the edit commits, so cancelling leaves
// the result without a half-filled item.
func (uc *Usecase) AddItem(ctx context.Context, sessionID string) (*entity.WizardSession, error) {
	var out *entity.WizardSession
	err := uc.withSession(sessionID, func(s *entity.WizardSession) error {
		if s.Step != entity.StepReview {
			return fmt.Errorf("%w: %s", entity.ErrWrongStep, s.Step)
		}
		if s.Edit != nil {
			return entity.ErrEditInProgress
		}
		if s.Result == nil {
			return entity.ErrNoResult
		}

		buf := templateBuffer(s.Result)
		if buf == nil {
			return fmt.Errorf("%w: %s", entity.ErrUnknownKind, s.Result.Kind)
		}
		s.Edit = buf

		out = snapshot(s)
		return nil
	})
	return out, err
}

// newEditBuffer deep-copies the item at index into a fresh buffer.
func newEditBuffer(content *entity.GeneratedContent, index int) (*entity.EditBuffer, error) {
	if index < 0 || index >= content.ItemCount() {
		return nil, fmt.Errorf("%w: index %d", entity.ErrItemNotFound, index)
	}

	// Cloning the whole content is the simplest way to get a detached item.
	c := content.Clone()
	buf := &entity.EditBuffer{Index: index}

	switch content.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		buf.Question = &c.Questions[index]
	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		buf.Item = &c.Items[index]
	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		buf.Sentence = &c.Sentences[index]
	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		buf.Word = &c.Words[index]
	case entity.ContentKindPassage, entity.ContentKindReading:
		buf.Passage = &c.Passages[index]
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownKind, content.Kind)
	}

	return buf, nil
}

// editPath maps a flat collection index to the item's structural path.
func editPath(kind entity.ContentKind, index int) entity.ItemPath {
	switch kind {
	case entity.ContentKindPassage, entity.ContentKindReading:
		return entity.PassagePath(index)
	default:
		return entity.FlatItemPath(index)
	}
}

// applyEdit merges the provided fields into the buffered item and recomputes
// its derived fields. Fields not matching the buffer's kind are ignored.
func applyEdit(buf *entity.EditBuffer, edit *entity.ItemEdit) error {
	switch {
	case buf.Question != nil:
		return applyQuestionEdit(buf.Question, edit)
	case buf.Item != nil:
		return applyFillBlankEdit(buf.Item, edit)
	case buf.Sentence != nil:
		return applySentenceEdit(buf.Sentence, edit)
	case buf.Word != nil:
		return applyWordEdit(buf.Word, edit)
	case buf.Passage != nil:
		return applyPassageEdit(buf.Passage, edit)
	default:
		return entity.ErrNoEditOpen
	}
}

func applyQuestionEdit(q *entity.QuizQuestion, edit *entity.ItemEdit) error {
	if edit.Question != nil {
		if *edit.Question == "" {
			return fmt.Errorf("%w: question text", entity.ErrMissingField)
		}
		q.Question = *edit.Question
	}
	if edit.Options != nil {
		if len(edit.Options) < 2 {
			return fmt.Errorf("%w: at least two options", entity.ErrInvalidParameter)
		}
		q.Options = append([]string(nil), edit.Options...)
	}
	if edit.CorrectIndex != nil {
		q.CorrectIndex = *edit.CorrectIndex
	}
	if edit.Explanation != nil {
		q.Explanation = *edit.Explanation
	}
	if edit.AudioText != nil {
		q.AudioText = *edit.AudioText
	}

	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d out of %d options", entity.ErrInvalidParameter, q.CorrectIndex, len(q.Options))
	}
	return nil
}

func applyFillBlankEdit(item *entity.FillBlankItem, edit *entity.ItemEdit) error {
	if edit.FullSentence != nil {
		if *edit.FullSentence == "" {
			return fmt.Errorf("%w: full sentence", entity.ErrMissingField)
		}
		item.FullSentence = *edit.FullSentence
	}
	if edit.MissingWords != nil {
		item.MissingWords = append([]string(nil), edit.MissingWords...)
	}
	if edit.Distractors != nil {
		item.Distractors = append([]string(nil), edit.Distractors...)
	}

	// An edit may leave zero blank words; the item then displays the full
	// sentence with an empty answer set.
	deriveFillBlank(item)
	return nil
}

func applySentenceEdit(s *entity.BuilderSentence, edit *entity.ItemEdit) error {
	if edit.FullSentence != nil {
		if *edit.FullSentence == "" {
			return fmt.Errorf("%w: full sentence", entity.ErrMissingField)
		}
		s.FullSentence = *edit.FullSentence
	}
	if edit.Translation != nil {
		s.Translation = *edit.Translation
	}

	deriveSentence(s)
	return nil
}

func applyWordEdit(w *entity.BuilderWord, edit *entity.ItemEdit) error {
	if edit.CorrectWord != nil {
		if *edit.CorrectWord == "" {
			return fmt.Errorf("%w: correct word", entity.ErrMissingField)
		}
		w.CorrectWord = *edit.CorrectWord
	}
	if edit.Hint != nil {
		w.Hint = *edit.Hint
	}

	deriveWord(w)
	return nil
}

func applyPassageEdit(p *entity.Passage, edit *entity.ItemEdit) error {
	if edit.Title != nil {
		if *edit.Title == "" {
			return fmt.Errorf("%w: passage title", entity.ErrMissingField)
		}
		p.Title = *edit.Title
	}
	if edit.Text != nil {
		if *edit.Text == "" {
			return fmt.Errorf("%w: passage text", entity.ErrMissingField)
		}
		p.Text = *edit.Text
	}
	return nil
}

// installEdited writes the buffered item back at its index, or appends it for
// a buffer opened by AddItem. The caller owns the content value.
func installEdited(content *entity.GeneratedContent, buf *entity.EditBuffer) error {
	i := buf.Index
	if buf.Append {
		if i != content.ItemCount() {
			return fmt.Errorf("%w: index %d", entity.ErrItemNotFound, i)
		}
		return appendEdited(content, buf)
	}
	if i < 0 || i >= content.ItemCount() {
		return fmt.Errorf("%w: index %d", entity.ErrItemNotFound, i)
	}

	switch {
	case buf.Question != nil:
		content.Questions[i] = *buf.Question
	case buf.Item != nil:
		content.Items[i] = *buf.Item
	case buf.Sentence != nil:
		content.Sentences[i] = *buf.Sentence
	case buf.Word != nil:
		content.Words[i] = *buf.Word
	case buf.Passage != nil:
		content.Passages[i] = *buf.Passage
		rebuildFlatQuestions(content)
	default:
		return entity.ErrNoEditOpen
	}
	return nil
}

// removeItem deletes index i of the active collection on a content value the
// caller owns.
func removeItem(content *entity.GeneratedContent, i int) {
	switch content.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		content.Questions = append(content.Questions[:i], content.Questions[i+1:]...)
	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		content.Items = append(content.Items[:i], content.Items[i+1:]...)
	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		content.Sentences = append(content.Sentences[:i], content.Sentences[i+1:]...)
	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		content.Words = append(content.Words[:i], content.Words[i+1:]...)
	case entity.ContentKindPassage, entity.ContentKindReading:
		content.Passages = append(content.Passages[:i], content.Passages[i+1:]...)
		rebuildFlatQuestions(content)
	}
}

// templateBuffer builds an append-mode edit buffer holding an empty item of
// the content's kind, or nil for an unknown kind.
func templateBuffer(content *entity.GeneratedContent) *entity.EditBuffer {
	buf := &entity.EditBuffer{Index: content.ItemCount(), Append: true}
	switch content.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		buf.Question = &entity.QuizQuestion{
			ID:      uuid.NewString(),
			Options: make([]string, 0, 4),
		}
	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		buf.Item = &entity.FillBlankItem{ID: uuid.NewString()}
	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		buf.Sentence = &entity.BuilderSentence{ID: uuid.NewString()}
	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		buf.Word = &entity.BuilderWord{ID: uuid.NewString()}
	case entity.ContentKindPassage, entity.ContentKindReading:
		buf.Passage = &entity.Passage{ID: uuid.NewString()}
	default:
		return nil
	}
	return buf
}

// appendEdited grows the active collection with the buffered item on a
// content value the caller owns.
func appendEdited(content *entity.GeneratedContent, buf *entity.EditBuffer) error {
	switch {
	case buf.Question != nil:
		content.Questions = append(content.Questions, *buf.Question)
	case buf.Item != nil:
		content.Items = append(content.Items, *buf.Item)
	case buf.Sentence != nil:
		content.Sentences = append(content.Sentences, *buf.Sentence)
	case buf.Word != nil:
		content.Words = append(content.Words, *buf.Word)
	case buf.Passage != nil:
		content.Passages = append(content.Passages, *buf.Passage)
		rebuildFlatQuestions(content)
	default:
		return entity.ErrNoEditOpen
	}
	return nil
}

// rebuildFlatQuestions reconciles the flattened question list of reading
// content with its passages after any passage mutation.
func rebuildFlatQuestions(content *entity.GeneratedContent) {
	if content.Kind != entity.ContentKindReading {
		return
	}
	content.Questions = nil
	for _, p := range content.Passages {
		content.Questions = append(content.Questions, p.Questions...)
	}
}
