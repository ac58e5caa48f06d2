package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/sharevault/svm/internal/logger"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
)

var webLogger = logger.GetForComponent("web_server")

// EventQuerier serves recent audit events for the API. Implemented by the
// Postgres event store and the in-memory sink.
type EventQuerier interface {
	RecentDeposits(pool types.PoolID, limit int) ([]types.DepositRecord, error)
	RecentWithdraws(pool types.PoolID, limit int) ([]types.WithdrawRecord, error)
}

// WebServer exposes the accounting core's view operations over HTTP. All
// endpoints are read-only; state-changing operations are in-process only.
type WebServer struct {
	router *mux.Router
	port   string
	core   *vaultcore.Core
	events EventQuerier // optional
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, core *vaultcore.Core, events EventQuerier) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		core:   core,
		events: events,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools/{id}/summary", ws.handlePoolSummary).Methods("GET")
	api.HandleFunc("/pools/{id}/preview", ws.handlePreview).Methods("GET")
	api.HandleFunc("/pools/{id}/events", ws.handlePoolEvents).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "svm-share-vault-module",
			"version": "1.0.0",
		},
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handlePoolSummary returns the pool's accounting summary plus its current
// exchange rate.
func (ws *WebServer) handlePoolSummary(w http.ResponseWriter, r *http.Request) {
	pool, ok := ws.poolFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := ws.core.Summary(pool)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}
	rate, err := ws.core.ExchangeRate(pool)
	if err != nil {
		webLogger.Error().Err(err).Uint64("pool", uint64(pool)).Msg("Failed to compute exchange rate")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to compute exchange rate")
		return
	}

	response := map[string]interface{}{
		"summary":       summary,
		"exchange_rate": rate,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handlePreview quotes one of the four operations without executing it.
// Query parameters: op=deposit|mint|withdraw|redeem, amount=<integer>.
func (ws *WebServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	pool, ok := ws.poolFromRequest(w, r)
	if !ok {
		return
	}

	amount, ok := sdkmath.NewIntFromString(r.URL.Query().Get("amount"))
	if !ok || amount.IsNegative() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	op := r.URL.Query().Get("op")
	var (
		result sdkmath.Int
		err    error
	)
	switch op {
	case "deposit":
		result, err = ws.core.PreviewDeposit(pool, amount)
	case "mint":
		result, err = ws.core.PreviewMint(pool, amount)
	case "withdraw":
		result, err = ws.core.PreviewWithdraw(pool, amount)
	case "redeem":
		result, err = ws.core.PreviewRedeem(pool, amount)
	default:
		ws.writeErrorResponse(w, http.StatusBadRequest, "Unknown op: must be deposit, mint, withdraw, or redeem")
		return
	}
	if err != nil {
		ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	response := map[string]interface{}{
		"pool":   pool,
		"op":     op,
		"amount": amount,
		"result": result,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handlePoolEvents returns the pool's recent deposit and withdraw records.
func (ws *WebServer) handlePoolEvents(w http.ResponseWriter, r *http.Request) {
	pool, ok := ws.poolFromRequest(w, r)
	if !ok {
		return
	}
	if ws.events == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Audit store not configured")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}

	deposits, err := ws.events.RecentDeposits(pool, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to query deposit events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	withdraws, err := ws.events.RecentWithdraws(pool, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to query withdraw events")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	response := map[string]interface{}{
		"pool":      pool,
		"deposits":  deposits,
		"withdraws": withdraws,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) poolFromRequest(w http.ResponseWriter, r *http.Request) (types.PoolID, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return 0, false
	}
	return types.PoolID(id), true
}

func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
