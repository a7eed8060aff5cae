package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/audit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/credit"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/database"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/handler"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/ledger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/logger"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/metrics"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/order"
	"github.com/dumplingcollectibles/dumpling-price-automation/internal/refresh"
)

type Server struct {
	httpServer     *http.Server
	dbPool         database.Pool
	ledgerService  ledger.Service
	creditService  credit.Service
	orderService   order.Service
	refreshService refresh.Service
	auditService   audit.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey, webhookSecret string, dbPool database.Pool, ledgerService ledger.Service, creditService credit.Service, orderService order.Service, refreshService refresh.Service, auditService audit.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack, outermost first
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, detector))
	r.Use(RateLimitMiddleware(detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Shopify webhooks, authenticated by HMAC signature
	r.Post("/webhooks/orders", handler.HandleOrderWebhook(webhookSecret, orderService))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Inventory ledger routes
		r.Post("/intake", handler.HandleIntake(ledgerService))
		r.Post("/inventory/adjust", handler.HandleAdjustInventory(ledgerService))

		r.Route("/variants", func(r chi.Router) {
			r.Get("/lookup", handler.HandleLookupVariant(ledgerService))
			r.Get("/{id}", handler.HandleGetVariant(ledgerService))
			r.Get("/{id}/history", handler.HandleGetVariantHistory(ledgerService))
		})

		// Store credit routes
		r.Route("/credit", func(r chi.Router) {
			r.Post("/payout", handler.HandlePayout(creditService))
			r.Post("/adjust", handler.HandleAdjustCredit(creditService))
			r.Get("/balance", handler.HandleGetBalance(creditService))
			r.Get("/history", handler.HandleGetCreditHistory(creditService))
		})

		// Pricing routes
		r.Post("/prices/refresh", handler.HandleRefreshPrices(refreshService))

		// Reconciliation routes
		r.Route("/audit", func(r chi.Router) {
			r.Post("/run", handler.HandleRunAudit(auditService))
			r.Post("/push", handler.HandlePushInventory(auditService))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:         dbPool,
		ledgerService:  ledgerService,
		creditService:  creditService,
		orderService:   orderService,
		refreshService: refreshService,
		auditService:   auditService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health checks and metrics scrapes would drown out real traffic
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
