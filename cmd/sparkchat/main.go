package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sparkchat/internal/retention"
	"sparkchat/pkg/api"
	"sparkchat/pkg/api/handlers"
	"sparkchat/pkg/auth"
	"sparkchat/pkg/banner"
	"sparkchat/pkg/config"
	"sparkchat/pkg/dispatch"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
	"sparkchat/pkg/presence"
	"sparkchat/pkg/security"
	"sparkchat/pkg/shutdown"
	"sparkchat/pkg/store"
	"sparkchat/pkg/uploads"
	"sparkchat/pkg/ws"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.Logging.Level)

	// Flags explicitly set win over env/config.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	dbPath := cfg.Server.DBPath
	if dbPath == "" || setFlags["db"] {
		dbPath = dbVal
	}

	if err := store.Open(dbPath); err != nil {
		log.Fatalf("failed to open pebble at %s: %v", dbPath, err)
	}
	defer func() { _ = store.Close() }()

	gate := auth.NewGate(cfg.Security.Token.Secret, cfg.Security.Token.TTL.Duration())
	router := presence.NewRouter()
	dispatcher := dispatch.New(router)

	up, err := uploads.New(cfg.Uploads.Dir, cfg.Uploads.MaxSize.Int64())
	if err != nil {
		log.Fatalf("failed to prepare uploads dir: %v", err)
	}

	wsHandler := ws.NewHandler(gate, router, func(m models.Message) (models.Message, error) {
		return handlers.SendMessage(dispatcher, m)
	})

	mux := api.NewRouter(api.Deps{
		Gate:       gate,
		Dispatcher: dispatcher,
		Uploads:    up,
		WS:         wsHandler,
	})

	secCfg := security.SecConfig{
		AllowedOrigins: append([]string(nil), cfg.Security.CORS.AllowedOrigins...),
		RPS:            cfg.Security.RateLimit.RPS,
		Burst:          cfg.Security.RateLimit.Burst,
	}
	wrapped := security.Middleware(secCfg)(mux)

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	stopRetention, err := retention.Start(ctx, cfg.Retention)
	if err != nil {
		log.Fatalf("failed to start retention: %v", err)
	}
	defer stopRetention()

	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	banner.Print(cfg, addr, dbPath, strings.Join(srcs, ", "), verStr)

	srv := &http.Server{Addr: addr, Handler: wrapped}
	go func() {
		<-ctx.Done()
		shutCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutCtx)
	}()

	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	var errServe error
	if cert != "" && key != "" {
		errServe = srv.ListenAndServeTLS(cert, key)
	} else {
		errServe = srv.ListenAndServe()
	}
	if errServe != nil && errServe != http.ErrServerClosed {
		log.Fatal(errServe)
	}
	logger.Info("server_stopped")
}
