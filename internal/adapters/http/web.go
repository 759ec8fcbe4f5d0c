package web

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"gymhub/internal/adapters/cache"
	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/adapters/http/perf"
	"gymhub/internal/adapters/storage"
	accountStore "gymhub/internal/adapters/storage/account"
	bookingStore "gymhub/internal/adapters/storage/booking"
	equipmentStore "gymhub/internal/adapters/storage/equipment"
	classStore "gymhub/internal/adapters/storage/gymclass"
	memberStore "gymhub/internal/adapters/storage/member"
	outboxStore "gymhub/internal/adapters/storage/outbox"
	paymentStore "gymhub/internal/adapters/storage/payment"
	"gymhub/internal/adapters/storage/report"
	storyStore "gymhub/internal/adapters/storage/story"
	trainerStore "gymhub/internal/adapters/storage/trainer"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/application/projections"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore   accountStore.Store
	MemberStore    memberStore.Store
	TrainerStore   trainerStore.Store
	ClassStore     classStore.Store
	BookingStore   bookingStore.Store
	EquipmentStore equipmentStore.Store
	PaymentStore   paymentStore.Store
	StoryStore     storyStore.Store
	OutboxStore    outboxStore.Store
	ReportStore    projections.ReportStore
}

// NewStores builds every SQLite store over db. Reports run on raw through sqlx
// and bypass query timing.
func NewStores(db storage.SQLDB, raw *sql.DB) *Stores {
	return &Stores{
		AccountStore:   accountStore.NewSQLiteStore(db),
		MemberStore:    memberStore.NewSQLiteStore(db),
		TrainerStore:   trainerStore.NewSQLiteStore(db),
		ClassStore:     classStore.NewSQLiteStore(db),
		BookingStore:   bookingStore.NewSQLiteStore(db),
		EquipmentStore: equipmentStore.NewSQLiteStore(db),
		PaymentStore:   paymentStore.NewSQLiteStore(db),
		StoryStore:     storyStore.NewSQLiteStore(db),
		OutboxStore:    outboxStore.NewSQLiteStore(db),
		ReportStore:    report.NewStore(raw, storage.DriverName),
	}
}

// Options configures the middleware stack built by NewMux.
type Options struct {
	// CSRFKey is the 32-byte gorilla/csrf secret. Empty generates a random
	// key, so form tokens do not survive a restart.
	CSRFKey       []byte
	SecureCookies bool
	CORSOrigins   []string
	SlowRequest   time.Duration
	// Cache holds the admin dashboard. Nil disables caching.
	Cache cache.Store
	// Outbox lets admins retry entries from /admin/outbox. Nil disables retries.
	Outbox *orchestrators.OutboxProcessor
	// Location is the zone class start times are entered in. Nil means UTC.
	Location *time.Location
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// dashboardCache holds computed admin dashboards (set by NewMux).
var dashboardCache cache.Store

// outboxProcessor handles manual retries from the admin outbox page.
var outboxProcessor *orchestrators.OutboxProcessor

// location is the zone class times are entered and displayed in.
var location = time.UTC

// rateLimiter is the per-IP limiter (set by NewMux)
var rateLimiter *middleware.RateLimiter

// SweepJob drops expired sessions and idle rate-limit clients.
// PRE: NewMux has been called
func SweepJob() orchestrators.Job {
	return orchestrators.Job{Name: "sweep_sessions", Run: func(ctx context.Context) error {
		expired := sessions.Sweep()
		idle := rateLimiter.Cleanup(10 * time.Minute)
		if expired > 0 || idle > 0 {
			slog.Debug("sessions_swept", "expired", expired, "idle_clients", idle)
		}
		return nil
	}}
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	dashboardCache = opts.Cache
	outboxProcessor = opts.Outbox
	if opts.Location != nil {
		location = opts.Location
	}
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.SecureCookies

	mux := http.NewServeMux()
	registerRoutes(mux)

	csrfKey := opts.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey = randomKey()
	}

	rateLimiter = middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost last: Timing -> Recover -> RateLimit -> CORS -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, opts.SecureCookies, nil),
		middleware.Auth(sessions),
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Recover,
		middleware.Timing(collector, opts.SlowRequest),
	)
}

func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	slog.Warn("csrf_key_random", "hint", "set GYM_CSRF_KEY so form tokens survive restarts")
	return key
}
