package wizard

import "github.com/owlingo/console-backend/internal/entity"

// toSessionDTO converts WizardSession entity to WizardSessionDTO
func toSessionDTO(session *entity.WizardSession) *entity.WizardSessionDTO {
	return &entity.WizardSessionDTO{
		ID:             session.ID,
		Step:           session.Step,
		Form:           session.Form,
		Result:         session.Result,
		Edit:           session.Edit,
		StreamPassages: session.StreamPassages,
		LastError:      session.LastError,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}
