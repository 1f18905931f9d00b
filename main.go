package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/ballot-box/auth"
	"github.com/danielhkuo/ballot-box/cliparse"
	"github.com/danielhkuo/ballot-box/middleware"
	"github.com/danielhkuo/ballot-box/router"
	"github.com/danielhkuo/ballot-box/store"
	"github.com/danielhkuo/ballot-box/store/memstore"
	"github.com/danielhkuo/ballot-box/store/reststore"
	"github.com/danielhkuo/ballot-box/store/sqlstore"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the configured store backend
	var st store.Store
	switch cfg.StoreBackend {
	case "memory":
		st = memstore.New()
	case "sqlite":
		st, err = sqlstore.Open(sqlstore.DriverSQLite, cfg.DatabaseURL)
	case "postgres":
		st, err = sqlstore.Open(sqlstore.DriverPostgres, cfg.DatabaseURL)
	case "rest":
		st, err = reststore.Open(reststore.Config{
			BaseURL: cfg.BaasURL,
			APIKey:  cfg.BaasAPIKey,
		})
	}
	if err != nil {
		slog.Error("store initialization failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("Store ready", "backend", cfg.StoreBackend)

	// Admin sessions
	sessions, err := auth.NewService(auth.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Secret:        cfg.SessionSecret,
	})
	if err != nil {
		slog.Error("auth initialization failed", "error", err)
		os.Exit(1)
	}
	releaseWatch := sessions.OnChange(func(ev auth.Event) {
		slog.Info("session change", "event", ev.Type, "email", ev.Email)
	})
	defer releaseWatch()

	// Create router
	mux := router.NewRouter(st, sessions, cfg)

	// Create server; CORS wraps the whole mux so browser clients on other
	// origins can reach every endpoint
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
