//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/usecase"
)

const (
	testUIdx       int64 = 1001
	testPartnerID  int64 = 7
	otherPartnerID int64 = 8
	testCardNumber       = "5123456789012345"
)

// harness wires every use case to in-memory mocks.
type harness struct {
	users    *MockUserRepo
	methods  *MockPaymentMethodRepo
	cards    *MockCardRepo
	catalog  *MockCatalogRepo
	partners *MockPartnerRepo
	txs      *MockTransactionRepo
	subs     *MockSubscriptionRepo
	abuse    *MockAbuseStore
	clock    *FakeClock
	gw       *MockGateway
	tm       *MockTxManager

	blocker   *usecase.AbuseBlocker
	pmUC      usecase.PaymentMethodUseCase
	txUC      usecase.TransactionUseCase
	subUC     usecase.SubscriptionUseCase
	userUC    usecase.UserUseCase
	partnerUC usecase.PartnerUseCase
}

func newHarness() *harness {
	h := &harness{
		users:    NewMockUserRepo(),
		methods:  NewMockPaymentMethodRepo(),
		cards:    NewMockCardRepo(),
		catalog:  NewMockCatalogRepo(),
		partners: NewMockPartnerRepo(),
		txs:      NewMockTransactionRepo(),
		subs:     NewMockSubscriptionRepo(),
		clock:    NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		gw:       NewMockGateway(),
		tm:       NewMockTxManager(),
	}
	logger := newTestLogger()
	h.abuse = NewMockAbuseStore(h.clock)
	h.blocker = usecase.NewAbuseBlocker(h.abuse, h.clock.Now, logger)

	resolver := NewMockResolver(h.gw)
	h.pmUC = usecase.NewPaymentMethodUseCase(h.users, h.methods, h.cards, h.catalog.Issuers(), h.catalog, resolver, MockCipher{}, h.tm, logger)
	h.txUC = usecase.NewTransactionUseCase(h.users, h.txs, h.methods, h.catalog, h.pmUC, resolver, h.tm, logger)
	h.subUC = usecase.NewSubscriptionUseCase(h.users, h.subs, h.methods, h.pmUC, h.txUC, h.tm, logger)
	h.userUC = usecase.NewUserUseCase(h.users, h.methods, MockHasher{}, h.blocker, usecase.PinEntryPolicy, h.tm, logger)
	h.partnerUC = usecase.NewPartnerUseCase(h.partners, MockCipher{}, MockHasher{}, h.blocker, usecase.PasswordEntryPolicy, logger)
	return h
}

func (h *harness) registerCard(t *testing.T, uIdx int64) *model.PaymentMethod {
	t.Helper()
	pm, err := h.pmUC.RegisterCard(context.Background(), uIdx, testCardNumber, "2812", "12", "900101")
	if err != nil {
		t.Fatalf("RegisterCard failed: %v", err)
	}
	return pm
}

func (h *harness) reserve(t *testing.T, pm *model.PaymentMethod, partnerTxID string, amount int64) *model.Transaction {
	t.Helper()
	tx, err := h.txUC.Reserve(context.Background(), usecase.ReserveInput{
		UIdx:                 pm.UIdx,
		PartnerID:            testPartnerID,
		PaymentMethodUUID:    pm.UUID,
		PartnerTransactionID: partnerTxID,
		ProductName:          "전자책 1권",
		Amount:               amount,
	})
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	return tx
}
