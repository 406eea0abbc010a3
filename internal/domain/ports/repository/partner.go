package repository

import (
	"context"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
)

type PartnerRepository interface {
	// Save inserts p and sets p.ID. Duplicate names or API keys yield domain.ErrPartnerAlreadyExists.
	Save(ctx context.Context, tx Tx, p *model.Partner) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Partner, error)
	FindByAPIKey(ctx context.Context, tx Tx, apiKey uuid.UUID) (*model.Partner, error)
	FindByName(ctx context.Context, tx Tx, name string) (*model.Partner, error)
}
