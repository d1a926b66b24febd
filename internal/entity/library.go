package entity

import "time"

// SavedContent is one approved content object persisted to the library.
type SavedContent struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Kind        ContentKind       `json:"kind"`
	SkillName   string            `json:"skill_name"`
	FormatName  string            `json:"format_name"`
	ItemCount   int               `json:"item_count"`
	Content     *GeneratedContent `json:"content,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
)

func (f ExportFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return nil
	default:
		return ErrInvalidParameter
	}
}
