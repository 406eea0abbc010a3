// File: internal/usecase/partner_uc.go
package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/adapter"
	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/logging"
)

// Compile-time check
var _ PartnerUseCase = (*partnerUC)(nil)

type PartnerUseCase interface {
	// Register creates a partner and returns the plaintext secret key. It is not retrievable later.
	Register(ctx context.Context, name, password string, firstParty bool) (*model.Partner, string, error)
	Authenticate(ctx context.Context, apiKey, secretKey string) (*model.Partner, error)
	// Login checks the partner admin password, guarded by the password-entry policy.
	Login(ctx context.Context, name, password string) (*model.Partner, error)
}

type registerPartnerInput struct {
	Name     string `validate:"required,max=32,alphanum"`
	Password string `validate:"required,min=8,max=72"`
}

type partnerUC struct {
	partners repository.PartnerRepository
	vault    adapter.SecretCipher
	hasher   adapter.SecretHasher
	abuse    *AbuseBlocker
	policy   AbusePolicy
	log      *zerolog.Logger
}

func NewPartnerUseCase(
	partners repository.PartnerRepository,
	partnerVault adapter.SecretCipher,
	hasher adapter.SecretHasher,
	abuse *AbuseBlocker,
	passwordPolicy AbusePolicy,
	logger *zerolog.Logger,
) *partnerUC {
	return &partnerUC{
		partners: partners,
		vault:    partnerVault,
		hasher:   hasher,
		abuse:    abuse,
		policy:   passwordPolicy,
		log:      logger,
	}
}

func (u *partnerUC) Register(ctx context.Context, name, password string, firstParty bool) (*model.Partner, string, error) {
	defer logging.TraceDuration(u.log, "PartnerUC.Register")()

	if err := validateInput(registerPartnerInput{Name: name, Password: password}); err != nil {
		return nil, "", err
	}
	if _, err := u.partners.FindByName(ctx, repository.NoTX, name); err == nil {
		return nil, "", domain.ErrPartnerAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}
	secret := uuid.NewString()
	encSecret, err := u.vault.Encrypt([]byte(secret))
	if err != nil {
		return nil, "", err
	}

	p := &model.Partner{
		Name:         name,
		PasswordHash: hash,
		APIKey:       uuid.New(),
		SecretKey:    encSecret,
		IsValid:      true,
		IsFirstParty: firstParty,
		CreatedAt:    time.Now(),
	}
	if err := u.partners.Save(ctx, repository.NoTX, p); err != nil {
		return nil, "", err
	}
	logging.With(ctx, u.log).Info().Int64("partner_id", p.ID).Str("partner", p.Name).Msg("partner registered")
	return p, secret, nil
}

// Authenticate resolves the partner for an API key / secret key pair. Every failure,
// including an undecryptable stored secret, is reported as domain.ErrUnauthorizedPartner.
func (u *partnerUC) Authenticate(ctx context.Context, apiKey, secretKey string) (*model.Partner, error) {
	key, err := uuid.Parse(apiKey)
	if err != nil || secretKey == "" {
		return nil, domain.ErrUnauthorizedPartner
	}
	p, err := u.partners.FindByAPIKey(ctx, repository.NoTX, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorizedPartner
		}
		return nil, err
	}
	if !p.IsValid {
		return nil, domain.ErrUnauthorizedPartner
	}
	stored, err := u.vault.Decrypt(p.SecretKey)
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Int64("partner_id", p.ID).Msg("partner secret decryption failed")
		return nil, domain.ErrUnauthorizedPartner
	}
	if subtle.ConstantTimeCompare(stored, []byte(secretKey)) != 1 {
		return nil, domain.ErrUnauthorizedPartner
	}
	return p, nil
}

func (u *partnerUC) Login(ctx context.Context, name, password string) (*model.Partner, error) {
	defer logging.TraceDuration(u.log, "PartnerUC.Login")()

	blocked, remaining, err := u.abuse.IsBlocked(ctx, u.policy, name)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, blockedError(domain.ErrPasswordEntryBlocked, remaining)
	}

	p, err := u.partners.FindByName(ctx, repository.NoTX, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	matched := false
	if p != nil && p.IsValid {
		if matched, err = u.hasher.Compare(p.PasswordHash, password); err != nil {
			return nil, err
		}
	}
	if !matched {
		nowBlocked, err := u.abuse.RecordFailureAndCheck(ctx, u.policy, name)
		if err != nil {
			return nil, err
		}
		if nowBlocked {
			return nil, blockedError(domain.ErrPasswordEntryBlocked, u.policy.BlockedPeriod)
		}
		return nil, domain.ErrUnmatchedPassword
	}

	if err := u.abuse.Reset(ctx, u.policy, name); err != nil {
		return nil, err
	}
	return p, nil
}
