package model

import (
	"time"

	"ridi-pay/internal/domain"
)

// User is a RIDI account that has registered a payment method at least once.
// Users are created lazily on first card registration.
type User struct {
	UIdx          int64
	PinHash       *string // bcrypt hash of the 6-digit PIN
	IsOnetouchPay *bool   // nil until the user chooses
	CreatedAt     time.Time
	LeavedAt      *time.Time
}

func NewUser(uIdx int64) (*User, error) {
	if uIdx <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{UIdx: uIdx, CreatedAt: time.Now()}, nil
}

func (u *User) IsZero() bool      { return u == nil || u.UIdx == 0 }
func (u *User) IsLeaved() bool    { return u != nil && u.LeavedAt != nil }
func (u *User) HasPin() bool      { return u != nil && u.PinHash != nil && *u.PinHash != "" }
func (u *User) OnetouchPay() bool { return u != nil && u.IsOnetouchPay != nil && *u.IsOnetouchPay }

// Leave marks the user as leaved. It is terminal.
func (u *User) Leave(at time.Time) {
	if u.LeavedAt == nil {
		u.LeavedAt = &at
	}
}

type UserAction string

const (
	UserActionAddCard            UserAction = "ADD_CARD"
	UserActionDeleteCard         UserAction = "DELETE_CARD"
	UserActionUpdatePin          UserAction = "UPDATE_PIN"
	UserActionEnableOnetouchPay  UserAction = "ENABLE_ONETOUCH_PAY"
	UserActionDisableOnetouchPay UserAction = "DISABLE_ONETOUCH_PAY"
	UserActionLeave              UserAction = "LEAVE"
)

// UserActionHistory is an append-only audit row of user-initiated changes.
type UserActionHistory struct {
	ID        int64
	UIdx      int64
	Action    UserAction
	CreatedAt time.Time
}

func NewUserActionHistory(uIdx int64, action UserAction, at time.Time) *UserActionHistory {
	return &UserActionHistory{UIdx: uIdx, Action: action, CreatedAt: at}
}
