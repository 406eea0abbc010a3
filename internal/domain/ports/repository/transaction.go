package repository

import (
	"context"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
)

type TransactionRepository interface {
	// Save inserts t and sets t.ID. A second non-canceled row for the same
	// (partner, partner transaction id) yields domain.ErrAlreadyRunningTransaction.
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Transaction, error)
	// FindByUUID locks the row when called with a transaction handle.
	FindByUUID(ctx context.Context, tx Tx, id uuid.UUID) (*model.Transaction, error)
	// FindRunning returns the non-canceled transaction for the pair or domain.ErrNotFound.
	FindRunning(ctx context.Context, tx Tx, partnerID int64, partnerTransactionID string) (*model.Transaction, error)
	// Transition persists t's status fields only if the stored status still equals from.
	// It reports whether the row was updated.
	Transition(ctx context.Context, tx Tx, t *model.Transaction, from model.TransactionStatus) (bool, error)

	AddHistory(ctx context.Context, tx Tx, h *model.TransactionHistory) error
	ListHistory(ctx context.Context, tx Tx, transactionID int64) ([]*model.TransactionHistory, error)
}
