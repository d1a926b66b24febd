package wizard

import (
	"context"

	"github.com/owlingo/console-backend/internal/entity"
)

type WizardUsecase interface {
	StartWizard(ctx context.Context) (*entity.WizardSession, error)
	GetSession(ctx context.Context, sessionID string) (*entity.WizardSession, error)
	SelectSource(ctx context.Context, sessionID, sourceID string) (*entity.WizardSession, error)
	SelectUnits(ctx context.Context, sessionID string, unitIDs []string) (*entity.WizardSession, error)
	SelectSkill(ctx context.Context, sessionID string, req *entity.SelectSkillRequest) (*entity.WizardSession, error)
	BeginGeneration(ctx context.Context, sessionID string, req *entity.GenerateRequest) (*entity.WizardSession, error)
	Retreat(ctx context.Context, sessionID string, confirm bool) (*entity.WizardSession, error)
	Cancel(ctx context.Context, sessionID string, confirm bool) error
	Save(ctx context.Context, sessionID, title, description string) (*entity.SavedContent, error)

	StartEdit(ctx context.Context, sessionID string, index int) (*entity.WizardSession, error)
	CommitEdit(ctx context.Context, sessionID string, edit *entity.ItemEdit) (*entity.WizardSession, error)
	CancelEdit(ctx context.Context, sessionID string) (*entity.WizardSession, error)
	DeleteItem(ctx context.Context, sessionID string, index int) (*entity.WizardSession, error)
	AddItem(ctx context.Context, sessionID string) (*entity.WizardSession, error)

	SynthesizeItem(ctx context.Context, sessionID string, path entity.ItemPath, voiceOverride string) error
}
