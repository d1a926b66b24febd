package entity

import (
	"fmt"
	"time"
)

type WizardStep string

// Wizard steps form a linear sequence. Generating is a transient sub-state
// entered from the configure step; it is never a retreat target.
const (
	StepSelectSource WizardStep = "SELECT_SOURCE"
	StepSelectUnits  WizardStep = "SELECT_UNITS"
	StepSelectSkill  WizardStep = "SELECT_SKILL"
	StepConfigure    WizardStep = "CONFIGURE"
	StepGenerating   WizardStep = "GENERATING"
	StepReview       WizardStep = "REVIEW"
)

// Well-known skill slugs with special wizard behavior.
const (
	// SkillReading is the only skill with a streaming generation path.
	SkillReading = "reading"
	// SkillMix bypasses format selection and generates with default options.
	SkillMix = "mix"
)

// Option keys of the generic wizard options map.
const (
	OptionPassageCount  = "passage_count"
	OptionItemCount     = "item_count"
	OptionGenerateAudio = "generate_audio"
	OptionVoiceID       = "voice_id"
	OptionDifficulty    = "difficulty"
)

// WizardForm accumulates the user's selections across steps. It is created
// empty at wizard open, mutated by each step's selection action, cleared on
// cancel, and never persisted.
type WizardForm struct {
	SourceID     string         `json:"source_id,omitempty"`
	UnitIDs      []string       `json:"unit_ids,omitempty"`
	SkillSlug    string         `json:"skill_slug,omitempty"`
	FormatSlug   string         `json:"format_slug,omitempty"`
	ActivityType string         `json:"activity_type,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
}

// IsEmpty reports whether any selection has been made yet.
func (f *WizardForm) IsEmpty() bool {
	return f.SourceID == "" && len(f.UnitIDs) == 0 &&
		f.SkillSlug == "" && f.FormatSlug == "" &&
		f.ActivityType == "" && len(f.Options) == 0
}

// Clone returns a deep copy of the form.
func (f *WizardForm) Clone() *WizardForm {
	clone := *f
	clone.UnitIDs = cloneStrings(f.UnitIDs)
	if f.Options != nil {
		clone.Options = make(map[string]any, len(f.Options))
		for k, v := range f.Options {
			clone.Options[k] = v
		}
	}
	return &clone
}

// EditBuffer is the scratch copy of one item currently being edited. Exactly
// one of the per-kind pointers is set, matching the content kind. At most one
// buffer is open per session. An append buffer holds a not-yet-installed
// blank item; its index is one past the end of the active collection.
type EditBuffer struct {
	Index    int              `json:"index"`
	Append   bool             `json:"append,omitempty"`
	Question *QuizQuestion    `json:"question,omitempty"`
	Item     *FillBlankItem   `json:"item,omitempty"`
	Sentence *BuilderSentence `json:"sentence,omitempty"`
	Word     *BuilderWord     `json:"word,omitempty"`
	Passage  *Passage         `json:"passage,omitempty"`
}

// WizardSession is the full state of one wizard run: current step, the
// accumulated form, the authoritative generated result, the streaming
// accumulation buffer and the open edit buffer.
type WizardSession struct {
	ID        string            `json:"session_id"`
	Step      WizardStep        `json:"step"`
	Form      *WizardForm       `json:"form"`
	Result    *GeneratedContent `json:"result,omitempty"`
	Edit      *EditBuffer       `json:"edit,omitempty"`
	LastError string            `json:"last_error,omitempty"`

	// GenerationID identifies the in-flight generation; completions carrying
	// a stale ID are dropped instead of being installed.
	GenerationID string `json:"-"`

	// StreamPassages is the ordered partial view of an in-flight streamed
	// generation; StreamSeen dedupes retransmitted envelopes.
	StreamPassages []Passage           `json:"stream_passages,omitempty"`
	StreamSeen     map[string]struct{} `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StepPrecondition checks whether the current step's selection is complete,
// i.e. whether advancing out of it is allowed.
func (s *WizardSession) StepPrecondition() error {
	switch s.Step {
	case StepSelectSource:
		if s.Form.SourceID == "" {
			return fmt.Errorf("%w: source", ErrMissingSelection)
		}
	case StepSelectUnits:
		if len(s.Form.UnitIDs) == 0 {
			return fmt.Errorf("%w: units", ErrMissingSelection)
		}
	case StepSelectSkill:
		skillChosen := s.Form.SkillSlug != "" && (s.Form.FormatSlug != "" || s.Form.SkillSlug == SkillMix)
		if !skillChosen && s.Form.ActivityType == "" {
			return fmt.Errorf("%w: skill and format, or activity type", ErrMissingSelection)
		}
	}
	return nil
}

// ItemEdit carries the editable fields of one item. Only the fields matching
// the content kind are honored; nil pointers leave the field unchanged.
type ItemEdit struct {
	// Quiz-like
	Question     *string  `json:"question,omitempty"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Explanation  *string  `json:"explanation,omitempty"`
	AudioText    *string  `json:"audio_text,omitempty"`

	// Fill-blank
	FullSentence *string  `json:"full_sentence,omitempty"`
	MissingWords []string `json:"missing_words,omitempty"`
	Distractors  []string `json:"distractors,omitempty"`

	// Builders
	CorrectWord *string `json:"correct_word,omitempty"`
	Hint        *string `json:"hint,omitempty"`
	Translation *string `json:"translation,omitempty"`

	// Passage
	Title *string `json:"title,omitempty"`
	Text  *string `json:"text,omitempty"`
}
