package library

import (
	"context"

	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/usecase/library"
)

type LibraryUsecase interface {
	List(ctx context.Context, skip, limit int) ([]*entity.SavedContent, error)
	Get(ctx context.Context, id string) (*entity.SavedContent, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id string, format entity.ExportFormat, withAnswers bool) (*library.ExportResult, error)
}
