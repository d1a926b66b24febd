package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/owlingo/console-backend/internal/entity"
)

const maxTitleLength = 200

// Validator validates wizard and library API requests
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSelectSource validates the source-selection request
func (v *Validator) ValidateSelectSource(req *entity.SelectSourceRequest) error {
	if strings.TrimSpace(req.SourceID) == "" {
		return fmt.Errorf("%w: source_id", entity.ErrMissingField)
	}
	return nil
}

// ValidateSelectUnits validates the unit-selection request
func (v *Validator) ValidateSelectUnits(req *entity.SelectUnitsRequest) error {
	if len(req.UnitIDs) == 0 {
		return fmt.Errorf("%w: unit_ids", entity.ErrMissingField)
	}
	for _, id := range req.UnitIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty unit id", entity.ErrInvalidParameter)
		}
	}
	return nil
}

// ValidateSelectSkill checks that exactly one selection shape is used:
// skill plus format, the mix skill alone, or the legacy activity type.
func (v *Validator) ValidateSelectSkill(req *entity.SelectSkillRequest) error {
	skillChosen := req.SkillSlug != ""
	legacyChosen := req.ActivityType != ""

	if skillChosen == legacyChosen {
		return fmt.Errorf("%w: exactly one of skill_slug or activity_type", entity.ErrInvalidParameter)
	}
	if skillChosen && req.SkillSlug != entity.SkillMix && req.FormatSlug == "" {
		return fmt.Errorf("%w: format_slug", entity.ErrMissingField)
	}
	if legacyChosen && req.FormatSlug != "" {
		return fmt.Errorf("%w: format_slug is not allowed with activity_type", entity.ErrInvalidParameter)
	}
	return nil
}

// ValidateGenerate validates the generation trigger request
func (v *Validator) ValidateGenerate(req *entity.GenerateRequest) error {
	if req.CallbackURL != "" {
		if err := validateURL(req.CallbackURL); err != nil {
			return fmt.Errorf("%w: callback_url: %v", entity.ErrInvalidParameter, err)
		}
	}
	return nil
}

// ValidateSaveContent validates the save request
func (v *Validator) ValidateSaveContent(req *entity.SaveContentRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", entity.ErrInvalidParameter, maxTitleLength)
	}
	return nil
}

// ValidateSynthesizeItem validates a single-item synthesis request
func (v *Validator) ValidateSynthesizeItem(req *entity.SynthesizeItemRequest) error {
	p := req.Path
	if p.Question >= 0 && p.Passage < 0 {
		return fmt.Errorf("%w: question index requires a passage index", entity.ErrInvalidPath)
	}
	if p.Item >= 0 && p.Passage >= 0 {
		return fmt.Errorf("%w: item index conflicts with passage index", entity.ErrInvalidPath)
	}
	return nil
}

// ValidateExportFormat validates the library export format parameter
func (v *Validator) ValidateExportFormat(format string) (entity.ExportFormat, error) {
	f := entity.ExportFormat(format)
	if err := f.Validate(); err != nil {
		return "", fmt.Errorf("%w: format %q (allowed: markdown, pdf, docx)", entity.ErrInvalidParameter, format)
	}
	return f, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
