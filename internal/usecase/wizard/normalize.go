package wizard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/owlingo/console-backend/internal/entity"
)

// envelopePayload is the union of the collection shapes the generation
// service may return. Exactly one collection must be populated and it must
// match the envelope's announced kind.
type envelopePayload struct {
	Questions []entity.QuizQuestion    `json:"questions,omitempty"`
	Items     []entity.FillBlankItem   `json:"items,omitempty"`
	Sentences []entity.BuilderSentence `json:"sentences,omitempty"`
	Words     []entity.BuilderWord     `json:"words,omitempty"`
	Passages  []entity.Passage         `json:"passages,omitempty"`
}

// NormalizeEnvelope resolves a heterogeneous generation response into the
// tagged content value. Normalization happens exactly once; all downstream
// code switches on the kind tag, never on presence of fields.
func NormalizeEnvelope(envelope *entity.GenerationEnvelope) (*entity.GeneratedContent, error) {
	if err := envelope.Kind.Validate(); err != nil {
		return nil, err
	}

	var payload envelopePayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode generation payload: %w", err)
	}

	createdAt := envelope.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	content := &entity.GeneratedContent{
		ID:         uuid.NewString(),
		Kind:       envelope.Kind,
		SkillName:  envelope.SkillName,
		FormatName: envelope.FormatName,
		CreatedAt:  createdAt,
	}

	switch envelope.Kind {
	case entity.ContentKindQuiz, entity.ContentKindListeningQuiz, entity.ContentKindTrueFalse:
		content.Questions = payload.Questions
	case entity.ContentKindFillBlank, entity.ContentKindListeningFillBlank:
		content.Items = payload.Items
	case entity.ContentKindSentenceBuilder, entity.ContentKindListeningSentence:
		content.Sentences = payload.Sentences
	case entity.ContentKindWordBuilder, entity.ContentKindListeningWordBuilder:
		content.Words = payload.Words
	case entity.ContentKindPassage, entity.ContentKindReading:
		content.Passages = payload.Passages
	}

	ensureDerived(content)

	if err := content.Validate(); err != nil {
		return nil, err
	}

	// Reject payloads that populate more than the kind's collection instead
	// of guessing which one the service meant.
	if n := populatedCollections(&payload); n > 1 {
		return nil, fmt.Errorf("%w: %d collections populated for kind %s", entity.ErrInvalidContent, n, envelope.Kind)
	}

	return content, nil
}

// ContentFromCompletion synthesizes the authoritative result of a streamed
// generation: the server-provided passage list re-sorted by title, with the
// flat question list concatenated in that same order.
func ContentFromCompletion(completion *entity.StreamCompletion) *entity.GeneratedContent {
	passages := append([]entity.Passage(nil), completion.Passages...)
	sortPassagesByTitle(passages)

	createdAt := completion.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	content := &entity.GeneratedContent{
		ID:         uuid.NewString(),
		Kind:       entity.ContentKindReading,
		SkillName:  completion.SkillName,
		FormatName: completion.FormatName,
		CreatedAt:  createdAt,
		Passages:   passages,
	}

	ensureDerived(content)

	return content
}

// ensureDerived assigns stable identifiers to items missing them and fills
// derived fields the service omitted. Already-populated derived fields are
// trusted as generated.
func ensureDerived(content *entity.GeneratedContent) {
	for i := range content.Questions {
		ensureQuestion(&content.Questions[i])
	}

	for i := range content.Items {
		item := &content.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.DisplaySentence == "" || len(item.WordBank) == 0 {
			deriveFillBlank(item)
		}
	}

	for i := range content.Sentences {
		s := &content.Sentences[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if len(s.Words) == 0 || len(s.ShuffledWords) == 0 {
			deriveSentence(s)
		}
	}

	for i := range content.Words {
		w := &content.Words[i]
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		if len(w.ScrambledLetters) == 0 {
			deriveWord(w)
		}
	}

	for i := range content.Passages {
		p := &content.Passages[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		for j := range p.Questions {
			ensureQuestion(&p.Questions[j])
		}
	}

	// Reading content carries its passages' questions flattened in passage
	// order alongside the passages themselves.
	rebuildFlatQuestions(content)
}

func ensureQuestion(q *entity.QuizQuestion) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
}

func populatedCollections(payload *envelopePayload) int {
	n := 0
	if len(payload.Questions) > 0 {
		n++
	}
	if len(payload.Items) > 0 {
		n++
	}
	if len(payload.Sentences) > 0 {
		n++
	}
	if len(payload.Words) > 0 {
		n++
	}
	if len(payload.Passages) > 0 {
		n++
	}
	return n
}
