package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ProfitPath/PP-Backend/internal/auth"
	"github.com/ProfitPath/PP-Backend/internal/chat"
	"github.com/ProfitPath/PP-Backend/internal/config"
	"github.com/ProfitPath/PP-Backend/internal/db"
	"github.com/ProfitPath/PP-Backend/internal/debug"
	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/logging"
	"github.com/ProfitPath/PP-Backend/internal/marketdata"
	"github.com/ProfitPath/PP-Backend/internal/middleware"
	"github.com/ProfitPath/PP-Backend/internal/portfolio"
	"github.com/ProfitPath/PP-Backend/internal/risk"
	"github.com/ProfitPath/PP-Backend/internal/symbols"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	oauthSessionTTL     = 24 * time.Hour
	sessionPruneEvery   = time.Hour
	shutdownGracePeriod = 10 * time.Second
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Env, cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	conn, err := db.Connect(cfg.DatabaseURL, cfg.DBSchema, cfg.IsProduction())
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(conn, cfg.DBSchema); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, states, err := newServer(cfg, conn, log)
	if err != nil {
		return err
	}
	go pruneSessions(ctx, states, log)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer migrates every table and wires the router.
func newServer(cfg config.Config, conn *gorm.DB, log *slog.Logger) (http.Handler, *auth.StateStore, error) {
	migrations := []struct {
		name string
		init func(*gorm.DB) error
	}{
		{"auth", auth.Init},
		{"symbols", symbols.Init},
		{"risk", risk.Init},
		{"portfolio", portfolio.Init},
		{"chat", chat.Init},
	}
	for _, m := range migrations {
		if err := m.init(conn); err != nil {
			return nil, nil, fmt.Errorf("init %s: %w", m.name, err)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecretKey, cfg.JWTAlgorithm, time.Duration(cfg.JWTExpireMinutes)*time.Minute)
	if err != nil {
		return nil, nil, fmt.Errorf("token manager: %w", err)
	}

	store := auth.NewStore(conn)
	svc := auth.NewService(store, auth.NewHasher(bcrypt.DefaultCost), tokens, log)
	resolver := auth.NewResolver(tokens, store, cfg.CookieName)
	providers := auth.NewProviderRegistry(
		auth.ProviderCredentials{ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret, RedirectURI: cfg.GoogleRedirectURI},
		auth.ProviderCredentials{ClientID: cfg.GitHubClientID, ClientSecret: cfg.GitHubClientSecret, RedirectURI: cfg.GitHubRedirectURI},
	)
	states := auth.NewStateStore(conn, oauthSessionTTL)

	cookieCfg := auth.CookieConfig{
		Name:     cfg.CookieName,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
		Domain:   cfg.CookieDomain,
	}
	authHandler := auth.NewHandler(svc, resolver, providers, states, log, auth.Options{
		Env:              cfg.Env,
		Cookie:           cookieCfg,
		FrontendURL:      cfg.FrontendURL,
		OAuthSuccessPath: cfg.OAuthSuccessPath,
	})

	authMW := middleware.AuthMiddleware(resolver)
	limit := middleware.RateLimit(middleware.NewIPRateLimiter(cfg.AuthRateLimitPerMinute))

	var completer chat.Completer
	if c := chat.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel); c != nil {
		completer = c
	} else {
		log.Warn("OPENAI_API_KEY not set, chat is disabled")
	}
	fmp := marketdata.NewClient(cfg.FMPBaseURL, cfg.FMPAPIKey, cfg.FMPRequestsPerSec, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes(authHandler, authMW, limit))
	r.Mount("/users", auth.SetupUserRoutes(authHandler, authMW))
	r.Mount("/watchlist", symbols.SetupRoutes(symbols.NewHandler(conn, symbols.Watchlist), authMW))
	r.Mount("/pattern-trends", symbols.SetupRoutes(symbols.NewHandler(conn, symbols.PatternTrends), authMW))
	r.Mount("/risk-management", risk.SetupRoutes(risk.NewHandler(conn), authMW))
	r.Mount("/portfolio", portfolio.SetupRoutes(portfolio.NewHandler(conn), authMW))
	r.Mount("/market-data", marketdata.SetupRoutes(marketdata.NewHandler(fmp), authMW))
	r.Mount("/chat", chat.SetupRoutes(chat.NewHandler(chat.NewService(conn, completer, log)), authMW))

	if !cfg.IsProduction() {
		dbg := debug.NewHandler(tokens, auth.CookiePolicy(cfg.Env, cookieCfg), providers, cfg.FrontendURL)
		r.Mount("/debug", debug.SetupRoutes(dbg))
	}

	return r, states, nil
}

func pruneSessions(ctx context.Context, states *auth.StateStore, log *slog.Logger) {
	ticker := time.NewTicker(sessionPruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := states.PruneExpired(ctx)
			if err != nil {
				log.Warn("prune oauth sessions", "err", err)
				continue
			}
			if n > 0 {
				log.Info("pruned oauth sessions", "count", n)
			}
		}
	}
}
