package entity

import (
	"fmt"
	"time"
)

type ContentKind string

// Content kinds supported by the generation service. Listening variants share
// the shape of their base kind but are played back from synthesized audio.
const (
	ContentKindQuiz                 ContentKind = "quiz"
	ContentKindListeningQuiz        ContentKind = "listening_quiz"
	ContentKindTrueFalse            ContentKind = "true_false"
	ContentKindFillBlank            ContentKind = "fill_blank"
	ContentKindListeningFillBlank   ContentKind = "listening_fill_blank"
	ContentKindSentenceBuilder      ContentKind = "sentence_builder"
	ContentKindListeningSentence    ContentKind = "listening_sentence_builder"
	ContentKindWordBuilder          ContentKind = "word_builder"
	ContentKindListeningWordBuilder ContentKind = "listening_word_builder"
	ContentKindPassage              ContentKind = "passage"
	ContentKindReading              ContentKind = "reading"
)

func (ck ContentKind) Validate() error {
	switch ck {
	case ContentKindQuiz, ContentKindListeningQuiz, ContentKindTrueFalse,
		ContentKindFillBlank, ContentKindListeningFillBlank,
		ContentKindSentenceBuilder, ContentKindListeningSentence,
		ContentKindWordBuilder, ContentKindListeningWordBuilder,
		ContentKindPassage, ContentKindReading:
		return nil
	default:
		return fmt.Errorf("%w: unknown content kind %q", ErrUnknownKind, string(ck))
	}
}

// IsListening reports whether playback of the kind is audio-first.
func (ck ContentKind) IsListening() bool {
	switch ck {
	case ContentKindListeningQuiz, ContentKindListeningFillBlank,
		ContentKindListeningSentence, ContentKindListeningWordBuilder:
		return true
	default:
		return false
	}
}

type AudioStatus string

const (
	AudioStatusNone    AudioStatus = ""
	AudioStatusPending AudioStatus = "pending"
	AudioStatusReady   AudioStatus = "ready"
	AudioStatusFailed  AudioStatus = "failed"
)

// WordTimestamp is a word-level timing annotation of a synthesized clip.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ItemAudio is the per-item audio attachment. Status and payload are kept
// consistent: ready always carries a payload, every other status never does.
type ItemAudio struct {
	Status         AudioStatus     `json:"status"`
	Payload        []byte          `json:"payload,omitempty"`
	WordTimestamps []WordTimestamp `json:"word_timestamps,omitempty"`
	Duration       float64         `json:"duration,omitempty"`
}

// QuizQuestion is one multiple-choice item. For listening kinds AudioText
// holds the spoken prompt; otherwise the question text itself is synthesized.
type QuizQuestion struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	Explanation  string    `json:"explanation,omitempty"`
	AudioText    string    `json:"audio_text,omitempty"`
	Audio        ItemAudio `json:"audio"`
}

// FillBlankItem is one fill-in-the-blank sentence. DisplaySentence,
// AcceptedAnswers and WordBank are derived from FullSentence, MissingWords
// and Distractors and must never be stale with respect to them.
type FillBlankItem struct {
	ID              string    `json:"id"`
	FullSentence    string    `json:"full_sentence"`
	MissingWords    []string  `json:"missing_words"`
	Distractors     []string  `json:"distractors,omitempty"`
	DisplaySentence string    `json:"display_sentence"`
	AcceptedAnswers []string  `json:"accepted_answers"`
	WordBank        []string  `json:"word_bank"`
	Audio           ItemAudio `json:"audio"`
}

// BuilderSentence is one sentence-builder item: the learner reorders
// ShuffledWords back into the source order.
type BuilderSentence struct {
	ID            string    `json:"id"`
	FullSentence  string    `json:"full_sentence"`
	Words         []string  `json:"words"`
	ShuffledWords []string  `json:"shuffled_words"`
	Translation   string    `json:"translation,omitempty"`
	Audio         ItemAudio `json:"audio"`
}

// BuilderWord is one word-builder item: the learner reorders scrambled
// letters back into the correct word.
type BuilderWord struct {
	ID               string    `json:"id"`
	CorrectWord      string    `json:"correct_word"`
	ScrambledLetters []string  `json:"scrambled_letters"`
	Hint             string    `json:"hint,omitempty"`
	Audio            ItemAudio `json:"audio"`
}

// Passage is one unit of a reading-comprehension generation with its own
// nested question list. Title is the ordering key for streamed reassembly.
type Passage struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Text      string         `json:"text"`
	Questions []QuizQuestion `json:"questions"`
	Audio     ItemAudio      `json:"audio"`
}

// GeneratedContent is the single authoritative content value of a wizard
// session. It is a tagged union over Kind: exactly one per-kind collection is
// the active one, except that reading content additionally carries the flat
// question list concatenated from its passages in display order.
type GeneratedContent struct {
	ID         string      `json:"id"`
	Kind       ContentKind `json:"kind"`
	SkillName  string      `json:"skill_name"`
	FormatName string      `json:"format_name"`
	CreatedAt  time.Time   `json:"created_at"`

	Questions []QuizQuestion    `json:"questions,omitempty"`
	Items     []FillBlankItem   `json:"items,omitempty"`
	Sentences []BuilderSentence `json:"sentences,omitempty"`
	Words     []BuilderWord     `json:"words,omitempty"`
	Passages  []Passage         `json:"passages,omitempty"`
}

// ItemCount returns the length of the active collection for the content kind.
func (c *GeneratedContent) ItemCount() int {
	switch c.Kind {
	case ContentKindQuiz, ContentKindListeningQuiz, ContentKindTrueFalse:
		return len(c.Questions)
	case ContentKindFillBlank, ContentKindListeningFillBlank:
		return len(c.Items)
	case ContentKindSentenceBuilder, ContentKindListeningSentence:
		return len(c.Sentences)
	case ContentKindWordBuilder, ContentKindListeningWordBuilder:
		return len(c.Words)
	case ContentKindPassage, ContentKindReading:
		return len(c.Passages)
	default:
		return 0
	}
}

// Validate checks the exactly-one-active-collection invariant.
func (c *GeneratedContent) Validate() error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}

	if c.ItemCount() == 0 {
		return fmt.Errorf("%w: empty %s content", ErrInvalidContent, c.Kind)
	}

	populated := 0
	if len(c.Questions) > 0 {
		populated++
	}
	if len(c.Items) > 0 {
		populated++
	}
	if len(c.Sentences) > 0 {
		populated++
	}
	if len(c.Words) > 0 {
		populated++
	}
	if len(c.Passages) > 0 {
		populated++
	}

	// Reading content carries passages plus the flattened question list.
	allowed := 1
	if c.Kind == ContentKindReading && len(c.Questions) > 0 {
		allowed = 2
	}
	if populated > allowed {
		return fmt.Errorf("%w: %d collections populated for kind %s", ErrInvalidContent, populated, c.Kind)
	}

	return nil
}

// Clone returns a deep copy. Every writer of the authoritative content value
// computes a full next-value on a clone and installs it atomically.
func (c *GeneratedContent) Clone() *GeneratedContent {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Questions = cloneQuestions(c.Questions)
	clone.Passages = make([]Passage, len(c.Passages))
	for i, p := range c.Passages {
		clone.Passages[i] = p
		clone.Passages[i].Questions = cloneQuestions(p.Questions)
		clone.Passages[i].Audio = p.Audio.clone()
	}

	clone.Items = make([]FillBlankItem, len(c.Items))
	for i, it := range c.Items {
		clone.Items[i] = it
		clone.Items[i].MissingWords = cloneStrings(it.MissingWords)
		clone.Items[i].Distractors = cloneStrings(it.Distractors)
		clone.Items[i].AcceptedAnswers = cloneStrings(it.AcceptedAnswers)
		clone.Items[i].WordBank = cloneStrings(it.WordBank)
		clone.Items[i].Audio = it.Audio.clone()
	}

	clone.Sentences = make([]BuilderSentence, len(c.Sentences))
	for i, s := range c.Sentences {
		clone.Sentences[i] = s
		clone.Sentences[i].Words = cloneStrings(s.Words)
		clone.Sentences[i].ShuffledWords = cloneStrings(s.ShuffledWords)
		clone.Sentences[i].Audio = s.Audio.clone()
	}

	clone.Words = make([]BuilderWord, len(c.Words))
	for i, w := range c.Words {
		clone.Words[i] = w
		clone.Words[i].ScrambledLetters = cloneStrings(w.ScrambledLetters)
		clone.Words[i].Audio = w.Audio.clone()
	}

	if len(c.Questions) == 0 {
		clone.Questions = nil
	}
	if len(c.Items) == 0 {
		clone.Items = nil
	}
	if len(c.Sentences) == 0 {
		clone.Sentences = nil
	}
	if len(c.Words) == 0 {
		clone.Words = nil
	}
	if len(c.Passages) == 0 {
		clone.Passages = nil
	}

	return &clone
}

func (a ItemAudio) clone() ItemAudio {
	clone := a
	if a.Payload != nil {
		clone.Payload = make([]byte, len(a.Payload))
		copy(clone.Payload, a.Payload)
	}
	if a.WordTimestamps != nil {
		clone.WordTimestamps = make([]WordTimestamp, len(a.WordTimestamps))
		copy(clone.WordTimestamps, a.WordTimestamps)
	}
	return clone
}

func cloneQuestions(questions []QuizQuestion) []QuizQuestion {
	if questions == nil {
		return nil
	}
	clone := make([]QuizQuestion, len(questions))
	for i, q := range questions {
		clone[i] = q
		clone[i].Options = cloneStrings(q.Options)
		clone[i].Audio = q.Audio.clone()
	}
	return clone
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	clone := make([]string, len(values))
	copy(clone, values)
	return clone
}

// ItemPath addresses one audio-bearing item structurally. Indexes that do not
// apply are -1. The zero-value path with all indexes -1 addresses the whole
// object of single-passage content.
type ItemPath struct {
	Passage  int `json:"passage"`
	Question int `json:"question"`
	Item     int `json:"item"`
}

// WholeObjectPath addresses single-passage content as one item.
func WholeObjectPath() ItemPath {
	return ItemPath{Passage: -1, Question: -1, Item: -1}
}

// FlatItemPath addresses index i of the active flat collection.
func FlatItemPath(i int) ItemPath {
	return ItemPath{Passage: -1, Question: -1, Item: i}
}

// PassagePath addresses passage i of reading content.
func PassagePath(i int) ItemPath {
	return ItemPath{Passage: i, Question: -1, Item: -1}
}

// PassageQuestionPath addresses question q nested in passage p.
func PassageQuestionPath(p, q int) ItemPath {
	return ItemPath{Passage: p, Question: q, Item: -1}
}
