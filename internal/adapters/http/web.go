package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"courtside/internal/adapters/http/middleware"
	accountStore "courtside/internal/adapters/storage/account"
	coachStore "courtside/internal/adapters/storage/coach"
	groupStore "courtside/internal/adapters/storage/group"
	holidayStore "courtside/internal/adapters/storage/holiday"
	invoiceStore "courtside/internal/adapters/storage/invoice"
	periodStore "courtside/internal/adapters/storage/period"
	rateStore "courtside/internal/adapters/storage/rate"
	registerStore "courtside/internal/adapters/storage/register"
	sessionPlanStore "courtside/internal/adapters/storage/sessionplan"
	"courtside/internal/metrics"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	CoachStore       coachStore.Store
	PeriodStore      periodStore.Store
	HolidayStore     holidayStore.Store
	GroupStore       groupStore.Store
	RateStore        rateStore.Store
	RegisterStore    registerStore.Store
	SessionPlanStore sessionPlanStore.Store
	InvoiceStore     invoiceStore.Store
}

// Options configures NewMux.
type Options struct {
	StaticDir          string
	CSRFKey            []byte // 32 bytes
	Secure             bool   // production: Secure cookies, HTTPS-only CSRF
	TrustedOrigins     []string
	RateLimitPerSecond int
	SlowRequestMs      int
	Metrics            *metrics.Metrics
	// Ready reports whether the server can take traffic; nil means always.
	Ready func() error
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global metrics (set by NewMux; nil-safe)
var appMetrics *metrics.Metrics

// readiness probe used by /healthz
var ready func() error

// Global per-IP rate limiter (set by NewMux)
var limiter *middleware.RateLimiter

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; opts.CSRFKey is 32 bytes
// POST: Returns the handler wrapped in the full middleware chain
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	appMetrics = opts.Metrics
	ready = opts.Ready
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Secure

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	registerRoutes(mux)

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = 10
	}
	limiter = middleware.NewRateLimiter(rate, time.Second)

	patternOf := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	// Request flow: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Secure, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Metrics, opts.SlowRequestMs, patternOf),
	)
}

// RunMaintenance drops idle rate-limit visitors every minute until ctx ends.
// PRE: NewMux has been called
func RunMaintenance(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(5 * time.Minute); n > 0 {
				slog.Debug("rate_limit_sweep", "removed", n)
			}
		}
	}
}
