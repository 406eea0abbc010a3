package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

var _ repository.PartnerRepository = (*partnerRepo)(nil)

type partnerRepo struct{ pool *pgxpool.Pool }

func NewPartnerRepo(pool *pgxpool.Pool) *partnerRepo {
	return &partnerRepo{pool: pool}
}

const partnerColumns = `id, name, password, api_key, secret_key, is_valid, is_first_party, created_at`

func (r *partnerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Partner) error {
	const q = `
INSERT INTO partners (name, password, api_key, secret_key, is_valid, is_first_party, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, p.Name, p.PasswordHash, p.APIKey, p.SecretKey, p.IsValid, p.IsFirstParty, p.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&p.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPartnerAlreadyExists
		}
		return dbErr(err, domain.ErrOperationFailed)
	}
	return nil
}

func (r *partnerRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Partner, error) {
	return r.queryOne(ctx, tx, `SELECT `+partnerColumns+` FROM partners WHERE id=$1;`, id)
}

func (r *partnerRepo) FindByAPIKey(ctx context.Context, tx repository.Tx, apiKey uuid.UUID) (*model.Partner, error) {
	return r.queryOne(ctx, tx, `SELECT `+partnerColumns+` FROM partners WHERE api_key=$1;`, apiKey)
}

func (r *partnerRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Partner, error) {
	return r.queryOne(ctx, tx, `SELECT `+partnerColumns+` FROM partners WHERE name=$1;`, name)
}

func (r *partnerRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Partner, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var p model.Partner
	if err := row.Scan(&p.ID, &p.Name, &p.PasswordHash, &p.APIKey, &p.SecretKey, &p.IsValid, &p.IsFirstParty, &p.CreatedAt); err != nil {
		return nil, dbErr(err, domain.ErrNotFound)
	}
	return &p, nil
}
