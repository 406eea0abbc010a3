package repository

import (
	"context"

	"ridi-pay/internal/domain/model"
)

type UserRepository interface {
	// FindByUIdx returns domain.ErrUserNotFound when the user was never created.
	FindByUIdx(ctx context.Context, tx Tx, uIdx int64) (*model.User, error)
	// Save inserts or updates the user.
	Save(ctx context.Context, tx Tx, u *model.User) error
	// LockUser serializes writers on the same user for the lifetime of tx.
	LockUser(ctx context.Context, tx Tx, uIdx int64) error
	AddActionHistory(ctx context.Context, tx Tx, h *model.UserActionHistory) error
}
