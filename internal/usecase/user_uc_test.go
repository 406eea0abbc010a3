//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
)

func TestUserUseCase_Pin(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject validation before a pin is set", func(t *testing.T) {
		h := newHarness()
		h.registerCard(t, testUIdx)

		if err := h.userUC.ValidatePin(ctx, testUIdx, "123456"); !errors.Is(err, domain.ErrPinNotRegistered) {
			t.Fatalf("expected ErrPinNotRegistered, got %v", err)
		}
	})

	t.Run("should reject a malformed pin", func(t *testing.T) {
		h := newHarness()
		h.registerCard(t, testUIdx)

		for _, pin := range []string{"", "12345", "1234567", "12a456"} {
			if err := h.userUC.UpdatePin(ctx, testUIdx, pin); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("pin %q: expected ErrInvalidArgument, got %v", pin, err)
			}
		}
	})

	t.Run("should block after repeated mismatches and reset on success", func(t *testing.T) {
		h := newHarness()
		h.registerCard(t, testUIdx)
		if err := h.userUC.UpdatePin(ctx, testUIdx, "123456"); err != nil {
			t.Fatalf("UpdatePin failed: %v", err)
		}

		if err := h.userUC.ValidatePin(ctx, testUIdx, "123456"); err != nil {
			t.Fatalf("expected matching pin to validate, got %v", err)
		}
		for i := 1; i < 5; i++ {
			if err := h.userUC.ValidatePin(ctx, testUIdx, "000000"); !errors.Is(err, domain.ErrUnmatchedPin) {
				t.Fatalf("attempt %d: expected ErrUnmatchedPin, got %v", i, err)
			}
		}
		if err := h.userUC.ValidatePin(ctx, testUIdx, "000000"); !errors.Is(err, domain.ErrPinEntryBlocked) {
			t.Fatalf("fifth mismatch: expected ErrPinEntryBlocked, got %v", err)
		}
		if err := h.userUC.ValidatePin(ctx, testUIdx, "123456"); !errors.Is(err, domain.ErrPinEntryBlocked) {
			t.Fatalf("correct pin while blocked: expected ErrPinEntryBlocked, got %v", err)
		}

		h.clock.Advance(10*time.Minute + time.Second)
		if err := h.userUC.ValidatePin(ctx, testUIdx, "123456"); err != nil {
			t.Fatalf("expected pin to validate after the block lapsed, got %v", err)
		}
		if err := h.userUC.ValidatePin(ctx, testUIdx, "000000"); !errors.Is(err, domain.ErrUnmatchedPin) {
			t.Errorf("expected the counter to restart after success, got %v", err)
		}
	})
}

func TestUserUseCase_OnetouchPay(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.registerCard(t, testUIdx)

	if err := h.userUC.SetOnetouchPay(ctx, testUIdx, true); !errors.Is(err, domain.ErrPinNotRegistered) {
		t.Fatalf("expected ErrPinNotRegistered, got %v", err)
	}
	if err := h.userUC.UpdatePin(ctx, testUIdx, "123456"); err != nil {
		t.Fatalf("UpdatePin failed: %v", err)
	}
	if err := h.userUC.SetOnetouchPay(ctx, testUIdx, true); err != nil {
		t.Fatalf("SetOnetouchPay failed: %v", err)
	}
	usr, _ := h.userUC.Get(ctx, testUIdx)
	if !usr.OnetouchPay() {
		t.Error("expected onetouch pay to be enabled")
	}

	got := h.users.Actions()
	want := []model.UserAction{model.UserActionAddCard, model.UserActionUpdatePin, model.UserActionEnableOnetouchPay}
	if len(got) != len(want) || got[2] != want[2] {
		t.Errorf("expected actions %v, got %v", want, got)
	}
}

func TestUserUseCase_Leave(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	pm := h.registerCard(t, testUIdx)

	if err := h.userUC.Leave(ctx, testUIdx); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	stored, _ := h.methods.FindByUUID(ctx, nil, pm.UUID)
	if !stored.IsDeleted() {
		t.Error("expected the payment method to be deleted")
	}
	if err := h.userUC.Leave(ctx, testUIdx); !errors.Is(err, domain.ErrLeavedUser) {
		t.Errorf("expected ErrLeavedUser, got %v", err)
	}
	if err := h.userUC.UpdatePin(ctx, testUIdx, "123456"); !errors.Is(err, domain.ErrLeavedUser) {
		t.Errorf("expected ErrLeavedUser, got %v", err)
	}
	if err := h.userUC.Leave(ctx, 42); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
