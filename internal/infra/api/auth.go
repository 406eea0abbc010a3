package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/infra/logging"
	"ridi-pay/internal/usecase"
)

// ===== Partner credentials =====

const (
	headerAPIKey    = "Api-Key"
	headerSecretKey = "Secret-Key"
)

type partnerCtxKey struct{}

func partnerFrom(ctx context.Context) *model.Partner {
	p, _ := ctx.Value(partnerCtxKey{}).(*model.Partner)
	return p
}

// PartnerAuth authenticates partner calls by their Api-Key / Secret-Key headers.
func PartnerAuth(partners usecase.PartnerUseCase, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, secret := r.Header.Get(headerAPIKey), r.Header.Get(headerSecretKey)
			if apiKey == "" || secret == "" {
				writeError(w, r, logger, domain.ErrUnauthorizedPartner)
				return
			}
			p, err := partners.Authenticate(r.Context(), apiKey, secret)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}
			ctx := context.WithValue(r.Context(), partnerCtxKey{}, p)
			ctx = logging.WithPartnerID(ctx, p.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ===== First-party user tokens =====

// UserClaims identifies a RIDI user. Subject holds the u_idx.
type UserClaims struct {
	jwt.RegisteredClaims
}

func (c *UserClaims) UIdx() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type UserTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewUserTokens(secret, issuer string, ttl time.Duration) *UserTokens {
	return &UserTokens{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Mint issues a token for uIdx. The account service normally does this; it is
// exposed for tooling and tests.
func (a *UserTokens) Mint(uIdx int64) (string, error) {
	now := time.Now()
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   strconv.FormatInt(uIdx, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *UserTokens) ParseFromRequest(r *http.Request) (*UserClaims, error) {
	hdr := r.Header.Get("Authorization")
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, errors.New("missing token")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *UserTokens) parse(tok string) (*UserClaims, error) {
	claims := &UserClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(a.issuer))
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserAuth requires a bearer token whose subject matches the {u_idx} path parameter.
func UserAuth(tokens *UserTokens, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.ParseFromRequest(r)
			if err != nil {
				writeError(w, r, logger, domain.ErrUnauthorizedUser)
				return
			}
			uIdx, err := claims.UIdx()
			if err != nil || strconv.FormatInt(uIdx, 10) != chi.URLParam(r, "u_idx") {
				writeError(w, r, logger, domain.ErrUnauthorizedUser)
				return
			}
			next.ServeHTTP(w, r.WithContext(logging.WithUIdx(r.Context(), uIdx)))
		})
	}
}
