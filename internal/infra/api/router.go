package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ridi-pay/internal/usecase"
)

// RouterDeps collects what NewRouter needs besides the handlers.
type RouterDeps struct {
	Partners       usecase.PartnerUseCase
	Tokens         *UserTokens
	Limiter        Limiter
	CardDailyLimit int
	RequestTimeout time.Duration
	Health         func(r *http.Request) error
	Now            func() time.Time
}

func NewRouter(h *Handlers, deps RouterDeps, logger *zerolog.Logger) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(logger), Recover(logger), Timeout(deps.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(req); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/partners/login", h.login)

	r.Route("/users/{u_idx}", func(r chi.Router) {
		r.Use(UserAuth(deps.Tokens, logger))

		r.Get("/", h.getUser)
		r.Delete("/", h.leave)
		r.With(CardRegistrationLimit(deps.Limiter, deps.CardDailyLimit, deps.Now, logger)).
			Post("/cards", h.registerCard)
		r.Delete("/cards/{payment_method_id}", h.deleteCard)
		r.Get("/payment-methods", h.listPaymentMethods)
		r.Put("/pin", h.updatePin)
		r.Post("/pin/validate", h.validatePin)
		r.Put("/onetouch", h.setOnetouchPay)
		r.Put("/subscriptions/{subscription_id}/payment-method", h.changeSubscriptionPaymentMethod)
	})

	r.Group(func(r chi.Router) {
		r.Use(PartnerAuth(deps.Partners, logger))

		r.Post("/payments/reserve", h.reserve)
		r.Post("/payments/{transaction_id}/approve", h.approve)
		r.Post("/payments/{transaction_id}/cancel", h.cancel)
		r.Get("/payments/{transaction_id}/status", h.transactionStatus)

		r.Post("/subscriptions", h.subscribe)
		r.Get("/subscriptions/{subscription_id}", h.getSubscription)
		r.Delete("/subscriptions/{subscription_id}", h.unsubscribe)
		r.Put("/subscriptions/{subscription_id}/resume", h.resume)
		r.Post("/subscriptions/{subscription_id}/pay", h.paySubscription)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "route not found"})
	})
	return r
}
