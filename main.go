package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"MyGens/internal/admin"
	"MyGens/internal/auth"
	"MyGens/internal/calc/batch"
	"MyGens/internal/calc/importer"
	"MyGens/internal/calc/report"
	"MyGens/internal/calc/sizing"
	"MyGens/internal/config"
	"MyGens/internal/i18n"
	"MyGens/internal/logger"
	"MyGens/internal/notify"
	"MyGens/internal/repo"
	"MyGens/internal/support"
	"MyGens/internal/web"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(origin string, mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg *config.Config, store repo.Repository) error {
	catalog := sizing.DefaultCatalog()
	if cfg.CatalogFile != "" {
		var err error
		if catalog, err = sizing.LoadCatalog(cfg.CatalogFile); err != nil {
			return err
		}
	}
	calculator := sizing.NewCalculator(catalog)

	bundle, err := i18n.Load(cfg.DefaultLang)
	if err != nil {
		return err
	}

	var notifier support.Notifier
	if cfg.TelegramEnabled() {
		notifier = notify.NewTelegram(cfg.TokenBot, cfg.AdminPeerID)
	}
	supportSvc := &support.Service{Repo: store, Notifier: notifier}

	adminAuth := &auth.Admin{
		JWTKey:       []byte(cfg.TokenKey),
		Login:        cfg.AdminLogin,
		PasswordHash: cfg.AdminPasswordHash,
		SecureCookie: cfg.TLSEnabled(),
	}
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	mux.Use(logger.Middleware)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	sizingH := &sizing.Handler{Calculator: calculator, Repo: store}
	batchH := &batch.Handler{Calculator: calculator}
	importH := &importer.Handler{Calculator: calculator}
	reportH := &report.Handler{Calculator: calculator, Bundle: bundle}
	supportH := &support.Handler{Service: supportSvc}
	adminH := &admin.Handler{Repo: store}

	api.HandleFunc("/tools/sizing/catalog", sizingH.Catalog).Methods("GET")
	api.HandleFunc("/tools/sizing/calc", sizingH.Calc).Methods("POST")
	api.HandleFunc("/tools/sizing/save", sizingH.Save).Methods("POST")
	api.HandleFunc("/tools/sizing/batch", batchH.Sizing).Methods("POST")
	api.HandleFunc("/tools/sizing/import", importH.Sizing).Methods("POST")
	api.HandleFunc("/tools/sizing/report/pdf", reportH.PDF).Methods("POST")
	api.HandleFunc("/tools/sizing/report/xlsx", reportH.XLSX).Methods("POST")
	api.HandleFunc("/support", supportH.Create).Methods("POST")

	api.HandleFunc("/admin/login", adminAuth.LoginHandler).Methods("POST")

	secureApi := api.PathPrefix("/admin").Subrouter()
	secureApi.Use(adminAuth.Middleware)

	secureApi.HandleFunc("/tickets", adminH.ListTickets).Methods("GET")
	secureApi.HandleFunc("/tickets/{id}", adminH.GetTicket).Methods("GET")
	secureApi.HandleFunc("/tickets/{id}", adminH.UpdateTicket).Methods("PATCH")
	secureApi.HandleFunc("/sizings", adminH.ListSizings).Methods("GET")

	site := &web.Handler{Bundle: bundle, Calculator: calculator, Support: supportSvc}
	mux.HandleFunc("/lang/toggle", site.ToggleLanguage).Methods("POST")
	mux.HandleFunc("/sizing-tool", site.Sizing).Methods("GET")
	mux.HandleFunc("/support", site.SupportForm).Methods("GET")
	mux.HandleFunc("/support", site.SupportSubmit).Methods("POST")
	mux.PathPrefix("/static/").Handler(web.Static())
	mux.HandleFunc("/", site.Index).Methods("GET")

	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, db, err := repo.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	mux := mux.NewRouter()
	if err := HandleList(mux, cfg, store); err != nil {
		slog.Error("routes", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           CORS(cfg.CORSOrigin, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("starting server", "addr", server.Addr, "tls", cfg.TLSEnabled(), "db", cfg.DatabaseDriver, "admin", cfg.AdminEnabled())
		var err error
		if cfg.TLSEnabled() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	wg.Wait()
	slog.Info("server stopped")
}
