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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/areas"
	"swms-portal/internal/config"
	"swms-portal/internal/database"
	"swms-portal/internal/gateway"
	"swms-portal/internal/handlers"
	"swms-portal/internal/nav"
	"swms-portal/internal/session"
	"swms-portal/internal/storage"
	"swms-portal/internal/tasks"
	"swms-portal/internal/viewmodel"
	"swms-portal/internal/websocket"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 SWMS PORTAL STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	log.Println("📂 Loading environment variables...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local storage: Redis when configured, otherwise a JSON file per profile.
	var local storage.Local
	if cfg.RedisURL != "" {
		log.Println("🔌 Connecting to Redis storage...")
		store, err := storage.OpenRedis(cfg.RedisURL, cfg.StorageNamespace)
		if err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Redis storage unavailable")
			log.Printf("   Error: %v", err)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		defer store.Close()
		local = store
		log.Println("✅ Redis storage connected")
	} else {
		store, err := storage.OpenFile(cfg.StoragePath)
		if err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Local storage unavailable")
			log.Printf("   Error: %v", err)
			log.Printf("   Path: %s", cfg.StoragePath)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		local = store
		log.Printf("✅ Local storage at %s", cfg.StoragePath)
	}

	// Completion log: Postgres when configured, otherwise local storage.
	var completions tasks.CompletionLog = tasks.NewLocalLog(local)
	if cfg.DatabaseURL != "" {
		log.Println("🔌 Connecting to database...")
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Database connection failed")
			log.Printf("   Error: %v", err)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		defer db.Close()

		log.Println("🔄 Running database migrations...")
		if err := database.Migrate(db); err != nil {
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Println("❌ FATAL ERROR: Database migrations failed")
			log.Printf("   Error: %v", err)
			log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Fatal(err)
		}
		completions = database.NewCompletionLog(db)
		log.Println("✅ Completion log stored in Postgres")
	} else {
		log.Println("⚠️  DATABASE_URL not set, completion log kept in local storage")
	}

	sessions := session.NewStore(local)

	// Outside a request, a 401 navigates the app-wide history.
	appNav := nav.NewHistory(nav.LoginPath)
	if sess := sessions.Get(); sess.Authenticated() {
		appNav.Navigate(sess.User.LandingRoute())
	}

	client := apiclient.New(cfg.APIBaseURL, sessions, appNav)
	log.Printf("✅ Backend API: %s", cfg.APIBaseURL)

	areaClient := areas.NewClient(cfg.AreaAPIBaseURL, cfg.AreaAPITimeout, cfg.AreaCacheTTL)
	defer areaClient.Close()
	log.Printf("✅ Area API: %s", cfg.AreaAPIBaseURL)

	wsHub := websocket.NewHub()

	views := viewmodel.NewRegistry(ctx, viewmodel.Deps{
		Sessions:    sessions,
		Profile:     gateway.NewProfile(client),
		Schedules:   gateway.NewSchedules(client),
		Complaints:  gateway.NewComplaints(client),
		Users:       gateway.NewUsers(client),
		Areas:       areaClient,
		Completions: completions,
		Publisher:   wsHub,
	}, cfg.RefreshInterval, cfg.DriverPollInterval)
	wsHub.OnRefresh(views.Trigger)
	go wsHub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers.Mount(r, handlers.Deps{
		Sessions:  sessions,
		Auth:      gateway.NewAuth(client, sessions),
		Profile:   gateway.NewProfile(client),
		Areas:     areaClient,
		Views:     views,
		Hub:       wsHub,
		Navigator: appNav,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down portal...")
		views.UnmountAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("❌ Shutdown failed: %v", err)
		}
	}()

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Portal starting on http://localhost:%s", cfg.Port)
	log.Printf("🧭 Current location: %s", appNav.Location())
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Portal failed to start")
		log.Printf("   Error: %v", err)
		log.Printf("   Port: %s", cfg.Port)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
}
