package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/luxaccount/media-platform/internal/http/handlers"
	"github.com/luxaccount/media-platform/internal/middleware"
)

// RouterOptions carries middleware collaborators the router wires in.
type RouterOptions struct {
	JWTSecret       string
	CORSOrigins     []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		app.TrackVisitors,
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/users", app.UserRegister)
	r.Post("/v1/payments/webhook", app.PaymentWebhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(opts.JWTSecret))

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/me", app.UserMe)
			r.Put("/me", app.UserUpdate)
			r.Delete("/me", app.UserDeactivate)
			r.Get("/{id}", app.UserGet)
		})

		r.Route("/v1/media-requests", func(r chi.Router) {
			r.Post("/", app.RequestCreate)
			r.Get("/", app.RequestList)
			r.Get("/{id}", app.RequestGet)
			r.Post("/{id}/cancel", app.RequestCancel)
			r.Post("/{id}/retry", app.RequestRetry)
			r.Get("/{id}/assets", app.RequestAssets)
			r.Get("/{id}/download", app.RequestDownload)
		})

		r.Route("/v1/payments", func(r chi.Router) {
			r.Post("/checkout-session", app.PaymentCheckout)
			r.Post("/payment-intent", app.PaymentIntent)
			r.Get("/", app.PaymentList)
			r.Get("/{id}", app.PaymentGet)
		})

		r.Get("/v1/metrics/dashboard", app.MetricsDashboard)
	})

	return r
}
