package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

// PG and card issuer rows are reference data seeded by migrations.

var (
	_ repository.PgRepository         = (*pgRepo)(nil)
	_ repository.CardIssuerRepository = (*cardIssuerRepo)(nil)
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPgRepo(pool *pgxpool.Pool) *pgRepo { return &pgRepo{pool: pool} }

func (r *pgRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Pg, error) {
	return r.queryOne(ctx, tx, `SELECT id, name, status FROM pgs WHERE id=$1;`, id)
}

// FindActive returns the oldest ACTIVE PG.
func (r *pgRepo) FindActive(ctx context.Context, tx repository.Tx) (*model.Pg, error) {
	return r.queryOne(ctx, tx, `SELECT id, name, status FROM pgs WHERE status='ACTIVE' ORDER BY id ASC LIMIT 1;`)
}

func (r *pgRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Pg, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var p model.Pg
	if err := row.Scan(&p.ID, &p.Name, &p.Status); err != nil {
		return nil, dbErr(err, domain.ErrUnsupportedPg)
	}
	return &p, nil
}

type cardIssuerRepo struct{ pool *pgxpool.Pool }

func NewCardIssuerRepo(pool *pgxpool.Pool) *cardIssuerRepo { return &cardIssuerRepo{pool: pool} }

const cardIssuerColumns = `id, pg_id, code, name, color, logo_image_url`

func (r *cardIssuerRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) {
	return r.queryOne(ctx, tx, `SELECT `+cardIssuerColumns+` FROM card_issuers WHERE id=$1;`, id)
}

func (r *cardIssuerRepo) FindByPgAndCode(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error) {
	return r.queryOne(ctx, tx, `SELECT `+cardIssuerColumns+` FROM card_issuers WHERE pg_id=$1 AND code=$2;`, pgID, code)
}

func (r *cardIssuerRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.CardIssuer, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var c model.CardIssuer
	if err := row.Scan(&c.ID, &c.PgID, &c.Code, &c.Name, &c.Color, &c.LogoImageURL); err != nil {
		return nil, dbErr(err, domain.ErrCardIssuerNotFound)
	}
	return &c, nil
}
