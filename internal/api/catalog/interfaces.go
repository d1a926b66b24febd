package catalog

import (
	"context"

	"github.com/owlingo/console-backend/internal/entity"
)

type CatalogConnector interface {
	ListSources(ctx context.Context) ([]entity.Source, error)
	ListUnits(ctx context.Context, sourceID string) ([]entity.Unit, error)
	ListSkills(ctx context.Context) ([]entity.Skill, error)
}
