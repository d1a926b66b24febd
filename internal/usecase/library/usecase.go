package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/pkg/formatter"
	"github.com/owlingo/console-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Usecase serves the saved content library: listing, retrieval and worksheet
// export of approved content objects.
type Usecase struct {
	contentRepo repository.ContentRepository
	formatters  *formatter.Factory
	logger      *zap.Logger
}

func NewUsecase(contentRepo repository.ContentRepository, formatters *formatter.Factory, logger *zap.Logger) *Usecase {
	return &Usecase{
		contentRepo: contentRepo,
		formatters:  formatters,
		logger:      logger,
	}
}

// List returns saved content metadata, newest first.
func (uc *Usecase) List(ctx context.Context, skip, limit int) ([]*entity.SavedContent, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := uc.contentRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return items, nil
}

// Get returns one saved content object with its full body.
func (uc *Usecase) Get(ctx context.Context, id string) (*entity.SavedContent, error) {
	saved, err := uc.contentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes one saved content object.
func (uc *Usecase) Delete(ctx context.Context, id string) error {
	if err := uc.contentRepo.Delete(ctx, id); err != nil {
		return err
	}
	ctxzap.Info(ctx, "saved content deleted", zap.String("content_id", id))
	return nil
}

// ExportResult is one rendered worksheet document.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export renders a saved content object as a printable worksheet in the
// requested format. withAnswers appends the answer key for teacher copies.
func (uc *Usecase) Export(ctx context.Context, id string, format entity.ExportFormat, withAnswers bool) (*ExportResult, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: export format %q", entity.ErrInvalidParameter, format)
	}

	saved, err := uc.contentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	body := formatter.RenderWorksheet(saved)
	if withAnswers {
		if key := formatter.RenderAnswerKey(saved); key != "" {
			body += "\n" + key
		}
	}

	data, err := f.Format(saved.Title, body)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}

	ctxzap.Info(ctx, "saved content exported",
		zap.String("content_id", id),
		zap.String("format", string(format)),
		zap.Int("size", len(data)),
	)

	return &ExportResult{
		Data:        data,
		ContentType: f.ContentType(),
		Filename:    exportFilename(saved.Title) + f.FileExtension(),
	}, nil
}

// exportFilename turns a content title into a safe download filename.
func exportFilename(title string) string {
	name := strings.TrimSpace(strings.ToLower(title))
	if name == "" {
		return "worksheet"
	}
	replacer := strings.NewReplacer(
		" ", "-",
		"/", "-",
		"\\", "-",
		"\"", "",
		"'", "",
	)
	return replacer.Replace(name)
}
