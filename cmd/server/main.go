package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"study-tracker/internal/config"
	"study-tracker/internal/engine"
	"study-tracker/internal/handlers"
	"study-tracker/internal/remote"
	"study-tracker/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	cache, err := storage.NewCache(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}

	var rs remote.Store
	if cfg.RemoteURL != "" {
		rs = remote.NewHTTPStore(cfg.RemoteURL, cfg.Identity)
	}

	eng, err := engine.New(cache, rs, nil)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Printf("Engine close: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		// Remote is optional; the local cache keeps serving.
		log.Printf("Remote subscription failed, running from local cache: %v", err)
	}

	h := handlers.NewHandlers(eng, cfg.TemplateDir)
	mux := setupRouter(h, cfg.StaticDir)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		log.Printf("Listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/sessions", http.StatusFound)
	})

	mux.HandleFunc("GET /sessions", h.ListSessions)
	mux.HandleFunc("POST /sessions", h.CreateSession)
	mux.HandleFunc("POST /sessions/{id}", h.UpdateSession)
	mux.HandleFunc("POST /sessions/{id}/status", h.UpdateStatus)
	mux.HandleFunc("POST /sessions/{id}/note", h.UpdateNote)
	mux.HandleFunc("POST /sessions/{id}/delete", h.DeleteSession)

	mux.HandleFunc("GET /timer", h.TimerWidget)
	mux.HandleFunc("POST /timer/start/{id}", h.StartTimer)
	mux.HandleFunc("POST /timer/pause", h.PauseTimer)
	mux.HandleFunc("POST /timer/resume", h.ResumeTimer)
	mux.HandleFunc("POST /timer/stop", h.StopTimer)

	mux.HandleFunc("GET /stats", h.Statistics)

	mux.HandleFunc("GET /settings", h.Settings)
	mux.HandleFunc("POST /settings/goal", h.SetGoal)
	mux.HandleFunc("POST /plan/generate", h.GeneratePlan)
	mux.HandleFunc("POST /plan/upload", h.UploadPlan)
	mux.HandleFunc("POST /plan/clear-remote", h.ClearRemote)
	mux.HandleFunc("GET /export", h.ExportPlan)
	mux.HandleFunc("POST /import", h.ImportPlan)

	return mux
}
