// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"meloon/internal/auth"
	"meloon/internal/log"
	"meloon/internal/middleware/ratelimit"
	"meloon/internal/middleware/security"
	"meloon/internal/middleware/trace"
	"meloon/internal/report"
	"meloon/internal/services"
	"meloon/internal/xlsx"
)

// Pinger reports whether the ledger store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the ledger operations the API exposes.
type Services struct {
	Users        *services.UserService
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Debts        *services.DebtService
	Reminders    *services.ReminderService
	Reports      *report.Engine
	Spreadsheets *xlsx.Service
	Store        Pinger
}

type Options struct {
	APIPrefix    string
	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	RateLimitRPM int
	Logger       *log.Logger
	// TrustedProxies are CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string
}

type Server struct {
	http.Server
	svc    Services
	prefix string
	now    func() time.Time
	tokens tokenConfig

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

func NewServer(addr string, svc Services, opts Options) *Server {
	prefix := strings.TrimSuffix(opts.APIPrefix, "/")
	if prefix == "" {
		prefix = "/v1"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		svc:      svc,
		prefix:   prefix,
		now:      time.Now,
		tokens:   tokenConfig{secret: opts.JWTSecret, issuer: opts.JWTIssuer, ttl: opts.JWTTTL},
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		detector: security.NewDetector(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	api := http.NewServeMux()
	s.routes(api)

	root := http.NewServeMux()
	root.HandleFunc("GET /{$}", s.handleRoot)
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)
	if svc.Users != nil {
		root.HandleFunc("POST "+prefix+"/auth/register", s.handleRegister)
		root.HandleFunc("POST "+prefix+"/auth/login", s.handleLogin)
	}
	root.Handle(prefix+"/", auth.Middleware(opts.JWTSecret, opts.JWTIssuer, writeUnauthorized)(api))

	var h http.Handler = root
	h = s.limiter.Middleware(s.detector.ExtractClientIP, writeRateLimited)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Addr = addr
	s.Handler = h
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 30 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	p := s.prefix
	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" "+p+path, h)
	}

	handle("GET /accounts/list", s.handleAccountList)
	handle("POST /accounts/add", s.handleAccountAdd)
	handle("POST /accounts/update", s.handleAccountUpdate)
	handle("POST /accounts/delete", s.handleAccountDelete)

	handle("GET /categories/list", s.handleCategoryList)
	handle("POST /categories/add", s.handleCategoryAdd)
	handle("POST /categories/update", s.handleCategoryUpdate)
	handle("POST /categories/delete", s.handleCategoryDelete)

	handle("GET /transactions/list", s.handleTransactionList)
	handle("POST /transactions/add", s.handleTransactionAdd)
	handle("POST /transactions/update", s.handleTransactionUpdate)
	handle("POST /transactions/delete", s.handleTransactionDelete)

	handle("GET /debts/summary", s.handleDebtSummary)
	handle("GET /debts/list", s.handleDebtList)
	handle("POST /debts/add", s.handleDebtAdd)
	handle("POST /debts/update", s.handleDebtUpdate)
	handle("POST /debts/delete", s.handleDebtDelete)

	handle("GET /dashboard/summary", s.handleDashboard)
	handle("GET /stats/report", s.handleReport)
	handle("POST /stats/ai_analysis", s.handleAdvice)

	handle("GET /data/export", s.handleExport)
	handle("POST /data/import", s.handleImport)

	handle("GET /reminders/list", s.handleReminderList)
	handle("POST /reminders/add", s.handleReminderAdd)
	handle("POST /reminders/update", s.handleReminderUpdate)
	handle("POST /reminders/delete", s.handleReminderDelete)

	mux.HandleFunc(p+"/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "route not found", nil)
	})
}

// Shutdown drains connections and stops the background limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		s.limiter.Stop()
	})
	return err
}

// Metrics returns request and security counters for operational logging.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.GetMetrics()
}
