package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/infra/logging"
)

var validate = newValidator()

// newValidator reports json field names in validation errors.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	PgCode        string `json:"pg_code,omitempty"`
	PgMessage     string `json:"pg_message,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusOf maps a domain error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorizedPartner), errors.Is(err, domain.ErrUnauthorizedUser):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPgTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrCounterStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	switch domain.Kind(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuthorization, domain.KindBlocked:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	writeErrorBody(w, r, logger, err, errorBody{})
}

// writeTransactionError reports a failed approval or cancellation together with the
// transaction it left behind, so the partner can retry or query it.
func writeTransactionError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error, t *model.Transaction) {
	var body errorBody
	if t != nil {
		body.TransactionID = t.UUID.String()
	}
	writeErrorBody(w, r, logger, err, body)
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error, body errorBody) {
	status := statusOf(err)
	body.Code, body.Message = domain.Code(err), domain.Message(err)
	if pe, ok := domain.AsPgError(err); ok {
		body.PgCode, body.PgMessage = pe.Code, pe.Message
	}
	if status == http.StatusInternalServerError {
		l := logging.With(r.Context(), logger)
		l.Error().Err(err).Msg("request failed")
		body.Message = "internal server error"
	}
	writeJSON(w, status, body)
}

const maxBodyBytes = 64 << 10

// decode reads a JSON body into dst and validates its struct tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrInvalidArgument)
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(fields, ","))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
