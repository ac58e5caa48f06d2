package main

import (
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sharevault/svm/internal/bank"
	"github.com/sharevault/svm/internal/config"
	"github.com/sharevault/svm/internal/ledger"
	"github.com/sharevault/svm/internal/logger"
	"github.com/sharevault/svm/internal/state"
	"github.com/sharevault/svm/internal/types"
	"github.com/sharevault/svm/internal/vaultcore"
	"github.com/sharevault/svm/internal/web"
)

// main is the entry point for the share vault module.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel)
	log.Info().Msg("Share Vault Module Starting...")

	// --- 2. Audit Store ---
	var (
		sink   vaultcore.EventSink
		events web.EventQuerier
	)
	if config.AuditDBDisabled {
		log.Warn().Msg("Audit database disabled. Audit records go to the structured log only.")
		memSink := state.NewMemorySink()
		sink = memSink
		events = memSink
	} else {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: config.DBPort,
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		sink = state.PostgresSink{}
		events = state.PostgresEvents{}
	}

	// --- 3. Collaborators and Core ---
	shareLedger := ledger.New()
	assetBank := bank.NewMemoryBank()

	if err := registerDemoPools(assetBank); err != nil {
		log.Fatal().Err(err).Msg("Failed to register demo pools")
	}

	core, err := vaultcore.New(vaultcore.Config{
		Ledger: shareLedger,
		Assets: assetBank,
		Source: assetBank,
		Hooks:  vaultcore.NoopHooks{},
		Sink:   sink,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create accounting core")
	}
	log.Info().Msg("Accounting core created successfully")

	// --- 4. Web Server ---
	webServer := web.NewWebServer(config.WebPort, core, events)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting vault dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Block until shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")
}

// registerDemoPools binds the pools listed in DEMO_POOLS
// ("id:denom:decimals" entries separated by ';') so the dashboard has
// something to show on a fresh start. No pools are registered when the
// variable is unset.
func registerDemoPools(assetBank *bank.MemoryBank) error {
	raw := os.Getenv("DEMO_POOLS")
	if raw == "" {
		return nil
	}
	for _, entry := range splitNonEmpty(raw, ";") {
		parts := splitNonEmpty(entry, ":")
		if len(parts) != 3 {
			log.Warn().Str("entry", entry).Msg("Skipping malformed DEMO_POOLS entry")
			continue
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("Skipping DEMO_POOLS entry with bad pool id")
			continue
		}
		decimals, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil {
			log.Warn().Str("entry", entry).Msg("Skipping DEMO_POOLS entry with bad decimals")
			continue
		}
		asset := types.PoolAsset{Denom: parts[1], Decimals: uint8(decimals)}
		if err := assetBank.RegisterPool(types.PoolID(id), asset); err != nil {
			return err
		}
	}
	return nil
}

func splitNonEmpty(s string, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
