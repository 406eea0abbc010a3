//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/adapter"
	"ridi-pay/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(t time.Time) *FakeClock { return &FakeClock{t: t} }

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// =============================
// Adapters
// =============================

// ---- Mock PgGateway ----

type MockGateway struct {
	mu sync.Mutex

	RegisterCardFunc func(ctx context.Context, req adapter.RegisterCardRequest) (*adapter.RegisterCardResult, error)
	ApproveFunc      func(ctx context.Context, req adapter.ApproveRequest) (*adapter.ApproveResult, error)
	CancelFunc       func(ctx context.Context, req adapter.CancelRequest) (*adapter.CancelResult, error)

	Calls struct {
		Register int
		Approve  []adapter.ApproveRequest
		Cancel   []adapter.CancelRequest
	}
}

var _ adapter.PgGateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway { return &MockGateway{} }

func (g *MockGateway) Name() string { return model.PgNameKCP }

func (g *MockGateway) RegisterCard(ctx context.Context, req adapter.RegisterCardRequest) (*adapter.RegisterCardResult, error) {
	g.mu.Lock()
	g.Calls.Register++
	n := g.Calls.Register
	g.mu.Unlock()
	if g.RegisterCardFunc != nil {
		return g.RegisterCardFunc(ctx, req)
	}
	return &adapter.RegisterCardResult{
		IsSuccess:      true,
		ResponseCode:   "0000",
		BillKey:        fmt.Sprintf("BILLKEY-%d", n),
		CardIssuerCode: "CCLG",
	}, nil
}

func (g *MockGateway) ApproveTransaction(ctx context.Context, req adapter.ApproveRequest) (*adapter.ApproveResult, error) {
	g.mu.Lock()
	g.Calls.Approve = append(g.Calls.Approve, req)
	n := len(g.Calls.Approve)
	g.mu.Unlock()
	if g.ApproveFunc != nil {
		return g.ApproveFunc(ctx, req)
	}
	return &adapter.ApproveResult{
		IsSuccess:       true,
		ResponseCode:    "0000",
		ResponseMessage: "정상처리",
		PgTransactionID: fmt.Sprintf("TNO-%d", n),
		Amount:          req.Amount,
		ApprovedAt:      time.Now(),
	}, nil
}

func (g *MockGateway) CancelTransaction(ctx context.Context, req adapter.CancelRequest) (*adapter.CancelResult, error) {
	g.mu.Lock()
	g.Calls.Cancel = append(g.Calls.Cancel, req)
	g.mu.Unlock()
	if g.CancelFunc != nil {
		return g.CancelFunc(ctx, req)
	}
	return &adapter.CancelResult{IsSuccess: true, ResponseCode: "0000", ResponseMessage: "정상처리", CanceledAt: time.Now()}, nil
}

func (g *MockGateway) GetReceiptURL(pgTransactionID, orderNo string, amount int64) string {
	return fmt.Sprintf("https://receipt.test/%s?order=%s&amount=%d", pgTransactionID, orderNo, amount)
}

func (g *MockGateway) ApproveCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls.Approve)
}

func (g *MockGateway) RegisterCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Calls.Register
}

// ---- Mock PgGatewayResolver ----

type MockResolver struct {
	gateways map[string]adapter.PgGateway
}

func NewMockResolver(gws ...adapter.PgGateway) *MockResolver {
	r := &MockResolver{gateways: map[string]adapter.PgGateway{}}
	for _, g := range gws {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *MockResolver) Gateway(name string) (adapter.PgGateway, error) {
	if g, ok := r.gateways[name]; ok {
		return g, nil
	}
	return nil, domain.ErrUnsupportedPg
}

// ---- Mock SecretCipher / SecretHasher ----

// MockCipher is reversible and tags its output so tests can see a value was sealed.
type MockCipher struct{}

func (MockCipher) Encrypt(p []byte) (string, error) { return "enc:" + string(p), nil }

func (MockCipher) Decrypt(blob string) ([]byte, error) {
	if !strings.HasPrefix(blob, "enc:") {
		return nil, domain.ErrCryptoIntegrity
	}
	return []byte(strings.TrimPrefix(blob, "enc:")), nil
}

type MockHasher struct{}

func (MockHasher) Hash(s string) (string, error) { return "hash:" + s, nil }

func (MockHasher) Compare(hash, s string) (bool, error) { return hash == "hash:"+s, nil }

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu      sync.Mutex
	byIdx   map[int64]*model.User
	History []*model.UserActionHistory

	SaveFunc func(ctx context.Context, tx repository.Tx, u *model.User) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byIdx: map[int64]*model.User{}}
}

func (r *MockUserRepo) FindByUIdx(ctx context.Context, tx repository.Tx, uIdx int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byIdx[uIdx]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byIdx[u.UIdx] = &cp
	return nil
}

func (r *MockUserRepo) LockUser(ctx context.Context, tx repository.Tx, uIdx int64) error { return nil }

func (r *MockUserRepo) AddActionHistory(ctx context.Context, tx repository.Tx, h *model.UserActionHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = int64(len(r.History) + 1)
	r.History = append(r.History, h)
	return nil
}

func (r *MockUserRepo) Actions() []model.UserAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.UserAction, 0, len(r.History))
	for _, h := range r.History {
		out = append(out, h.Action)
	}
	return out
}

// ---- Mock PaymentMethodRepository ----

type MockPaymentMethodRepo struct {
	mu     sync.Mutex
	byID   map[int64]*model.PaymentMethod
	nextID int64
	Writes int

	SaveFunc func(ctx context.Context, tx repository.Tx, m *model.PaymentMethod) error
}

var _ repository.PaymentMethodRepository = (*MockPaymentMethodRepo)(nil)

func NewMockPaymentMethodRepo() *MockPaymentMethodRepo {
	return &MockPaymentMethodRepo{byID: map[int64]*model.PaymentMethod{}}
}

func (r *MockPaymentMethodRepo) Save(ctx context.Context, tx repository.Tx, m *model.PaymentMethod) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, m)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	cp := *m
	cp.Cards = nil
	r.byID[m.ID] = &cp
	r.Writes++
	return nil
}

func (r *MockPaymentMethodRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentMethodRepo) FindByUUID(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.UUID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentMethodRepo) ListActiveByUser(ctx context.Context, tx repository.Tx, uIdx int64) ([]*model.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentMethod
	for _, m := range r.byID {
		if m.UIdx == uIdx && m.DeletedAt == nil {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockPaymentMethodRepo) MarkDeleted(ctx context.Context, tx repository.Tx, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.DeletedAt = &at
	r.Writes++
	return nil
}

func (r *MockPaymentMethodRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---- Mock CardRepository ----

type MockCardRepo struct {
	mu     sync.Mutex
	cards  []*model.Card
	nextID int64
}

var _ repository.CardRepository = (*MockCardRepo)(nil)

func NewMockCardRepo() *MockCardRepo { return &MockCardRepo{} }

func (r *MockCardRepo) Save(ctx context.Context, tx repository.Tx, c *model.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.cards = append(r.cards, &cp)
	return nil
}

func (r *MockCardRepo) ListByPaymentMethod(ctx context.Context, tx repository.Tx, paymentMethodID int64) ([]*model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Card
	for _, c := range r.cards {
		if c.PaymentMethodID == paymentMethodID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockCardRepo) FindByPaymentMethodAndPurpose(ctx context.Context, tx repository.Tx, paymentMethodID int64, purpose model.CardPurpose) (*model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.PaymentMethodID == paymentMethodID && c.Purpose == purpose {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock CardIssuerRepository / PgRepository ----

type MockCatalogRepo struct {
	mu      sync.Mutex
	pgs     map[int64]*model.Pg
	issuers map[int64]*model.CardIssuer
}

var (
	_ repository.PgRepository         = (*MockCatalogRepo)(nil)
	_ repository.CardIssuerRepository = (*MockIssuerRepo)(nil)
)

// NewMockCatalogRepo is seeded with an ACTIVE KCP (id 1) and one issuer (code CCLG).
func NewMockCatalogRepo() *MockCatalogRepo {
	return &MockCatalogRepo{
		pgs: map[int64]*model.Pg{
			1: {ID: 1, Name: model.PgNameKCP, Status: model.PgStatusActive},
		},
		issuers: map[int64]*model.CardIssuer{
			1: {ID: 1, PgID: 1, Code: "CCLG", Name: "신한", Color: "#0046ff"},
		},
	}
}

func (r *MockCatalogRepo) SetPgStatus(id int64, s model.PgStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pgs[id].Status = s
}

func (r *MockCatalogRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Pg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pgs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockCatalogRepo) FindActive(ctx context.Context, tx repository.Tx) (*model.Pg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pgs {
		if p.Status == model.PgStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Issuers returns a view of the catalog implementing CardIssuerRepository.
func (r *MockCatalogRepo) Issuers() *MockIssuerRepo { return &MockIssuerRepo{r} }

type MockIssuerRepo struct{ c *MockCatalogRepo }

func (r *MockIssuerRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if i, ok := r.c.issuers[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockIssuerRepo) FindByPgAndCode(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	for _, i := range r.c.issuers {
		if i.PgID == pgID && i.Code == code {
			cp := *i
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock PartnerRepository ----

type MockPartnerRepo struct {
	mu     sync.Mutex
	byID   map[int64]*model.Partner
	nextID int64
}

var _ repository.PartnerRepository = (*MockPartnerRepo)(nil)

func NewMockPartnerRepo() *MockPartnerRepo {
	return &MockPartnerRepo{byID: map[int64]*model.Partner{}}
}

func (r *MockPartnerRepo) Save(ctx context.Context, tx repository.Tx, p *model.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if e.Name == p.Name || e.APIKey == p.APIKey {
			return domain.ErrPartnerAlreadyExists
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *MockPartnerRepo) find(match func(*model.Partner) bool) (*model.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPartnerRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Partner, error) {
	return r.find(func(p *model.Partner) bool { return p.ID == id })
}

func (r *MockPartnerRepo) FindByAPIKey(ctx context.Context, tx repository.Tx, apiKey uuid.UUID) (*model.Partner, error) {
	return r.find(func(p *model.Partner) bool { return p.APIKey == apiKey })
}

func (r *MockPartnerRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Partner, error) {
	return r.find(func(p *model.Partner) bool { return p.Name == name })
}

// ---- Mock TransactionRepository ----

type MockTransactionRepo struct {
	mu        sync.Mutex
	byID      map[int64]*model.Transaction
	histories []*model.TransactionHistory
	nextID    int64

	AddHistoryFunc func(ctx context.Context, tx repository.Tx, h *model.TransactionHistory) error
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{byID: map[int64]*model.Transaction{}}
}

// Save enforces the (partner, partner transaction id) uniqueness among non-canceled rows,
// like the partial unique index does.
func (r *MockTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if e.PartnerID == t.PartnerID && e.PartnerTransactionID == t.PartnerTransactionID && !e.IsCanceled() {
			return domain.ErrAlreadyRunningTransaction
		}
	}
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *MockTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockTransactionRepo) FindByUUID(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.UUID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTransactionRepo) FindRunning(ctx context.Context, tx repository.Tx, partnerID int64, partnerTransactionID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.PartnerID == partnerID && t.PartnerTransactionID == partnerTransactionID && !t.IsCanceled() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Transition and AddHistory fail on a done context, as a pgx statement would.
func (r *MockTransactionRepo) Transition(ctx context.Context, tx repository.Tx, t *model.Transaction, from model.TransactionStatus) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[t.ID]
	if !ok || cur.Status != from {
		return false, nil
	}
	cp := *t
	r.byID[t.ID] = &cp
	return true, nil
}

func (r *MockTransactionRepo) AddHistory(ctx context.Context, tx repository.Tx, h *model.TransactionHistory) error {
	if r.AddHistoryFunc != nil {
		return r.AddHistoryFunc(ctx, tx, h)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = int64(len(r.histories) + 1)
	cp := *h
	r.histories = append(r.histories, &cp)
	return nil
}

func (r *MockTransactionRepo) ListHistory(ctx context.Context, tx repository.Tx, transactionID int64) ([]*model.TransactionHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.TransactionHistory
	for _, h := range r.histories {
		if h.TransactionID == transactionID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu        sync.Mutex
	byID      map[int64]*model.Subscription
	histories []*model.SubscriptionPaymentMethodHistory
	nextID    int64
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{byID: map[int64]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByUUID(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.UUID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) AddPaymentMethodHistory(ctx context.Context, tx repository.Tx, h *model.SubscriptionPaymentMethodHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = int64(len(r.histories) + 1)
	cp := *h
	r.histories = append(r.histories, &cp)
	return nil
}

func (r *MockSubscriptionRepo) ListPaymentMethodHistory(ctx context.Context, tx repository.Tx, subscriptionID int64) ([]*model.SubscriptionPaymentMethodHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SubscriptionPaymentMethodHistory
	for _, h := range r.histories {
		if h.SubscriptionID == subscriptionID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock AbuseCounterStore ----

type abuseEntry struct {
	rec       repository.AbuseRecord
	expiresAt time.Time
}

// MockAbuseStore mimics the Redis script, expiring entries against the injected clock.
type MockAbuseStore struct {
	mu      sync.Mutex
	entries map[string]*abuseEntry
	clock   *FakeClock
	Err     error
}

var _ repository.AbuseCounterStore = (*MockAbuseStore)(nil)

func NewMockAbuseStore(clock *FakeClock) *MockAbuseStore {
	return &MockAbuseStore{entries: map[string]*abuseEntry{}, clock: clock}
}

func (s *MockAbuseStore) live(key string) *abuseEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return e
}

func (s *MockAbuseStore) RecordFailure(ctx context.Context, key string, threshold int, now time.Time, period time.Duration) (repository.AbuseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return repository.AbuseRecord{}, s.Err
	}
	e := s.live(key)
	if e == nil {
		e = &abuseEntry{expiresAt: now.Add(period)}
		s.entries[key] = e
	}
	e.rec.Count++
	if e.rec.Count >= int64(threshold) {
		if e.rec.BlockedAt == nil {
			at := now
			e.rec.BlockedAt = &at
		}
		e.expiresAt = e.rec.BlockedAt.Add(period)
	}
	return e.rec, nil
}

func (s *MockAbuseStore) Get(ctx context.Context, key string) (repository.AbuseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return repository.AbuseRecord{}, s.Err
	}
	if e := s.live(key); e != nil {
		return e.rec, nil
	}
	return repository.AbuseRecord{}, nil
}

func (s *MockAbuseStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.entries, key)
	return nil
}

// ---- Mock TransactionManager ----

// MockTxManager serializes WithTx calls, standing in for the row locks the real
// database takes inside a transaction.
type MockTxManager struct {
	serial sync.Mutex

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.serial.Lock()
	defer m.serial.Unlock()
	if err := fn(ctx, repository.NoTX); err != nil {
		return err
	}
	// commit
	return ctx.Err()
}
