package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/6ogo/learny-backend/internal/auth"
	"github.com/6ogo/learny-backend/internal/database"
	"github.com/6ogo/learny-backend/internal/flashcards"
	"github.com/6ogo/learny-backend/internal/generator"
	"github.com/6ogo/learny-backend/internal/localstore"
	"github.com/6ogo/learny-backend/internal/profile"
	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[server] no .env file found, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Local file store carries the built-in catalog and survives without
	// the database. The catalog is also seeded into Postgres so serverside
	// queries see the same cards new installs do.
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	local, err := localstore.New(dataDir)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}

	cardStore := flashcards.NewStore(db)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cardStore.SeedCatalog(seedCtx, local.Categories(), local.Programs(), local.Flashcards()); err != nil {
		log.Printf("[server] catalog seed failed: %v", err)
	}
	cancelSeed()

	// Initialize services and handlers
	profileStore := profile.NewStore(db)
	profileService := profile.NewService(profileStore)
	cardService := flashcards.NewService(cardStore, profileStore)

	authHandler := auth.NewHandler(db)
	profileHandler := profile.NewHandler(profileService, local)
	cardHandler := flashcards.NewHandler(cardService)
	generateHandler := generator.NewHandler(
		generator.NewService(generator.NewGenerator(), profileStore, cardService, local))

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/reset-request", authHandler.RequestReset).Methods("POST")
	api.HandleFunc("/auth/reset-confirm", authHandler.ConfirmReset).Methods("POST")
	api.HandleFunc("/categories", cardHandler.ListCategories).Methods("GET")

	// Public routes that personalize for signed-in callers: the module
	// listing merges completion state, the profile and generation endpoints
	// fall back to the guest flow without a token.
	api.Handle("/modules", auth.OptionalMiddleware(http.HandlerFunc(cardHandler.ListModules))).Methods("GET")
	api.Handle("/modules/{id}", auth.OptionalMiddleware(http.HandlerFunc(cardHandler.GetModule))).Methods("GET")
	api.Handle("/profile", auth.OptionalMiddleware(http.HandlerFunc(profileHandler.GetProfile))).Methods("GET")
	api.Handle("/generate", auth.OptionalMiddleware(http.HandlerFunc(generateHandler.Generate))).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/profile/achievements/displayed", profileHandler.MarkAchievementDisplayed).Methods("POST")
	protected.HandleFunc("/flashcards", cardHandler.ListCards).Methods("GET")
	protected.HandleFunc("/flashcards", cardHandler.CreateCard).Methods("POST")
	protected.HandleFunc("/flashcards/{id}", cardHandler.UpdateCard).Methods("PUT")
	protected.HandleFunc("/flashcards/{id}", cardHandler.DeleteCard).Methods("DELETE")
	protected.HandleFunc("/flashcards/{id}/answer", cardHandler.AnswerCard).Methods("POST")
	protected.HandleFunc("/flashcards/{id}/learned", cardHandler.SetLearned).Methods("POST")
	protected.HandleFunc("/flashcards/{id}/report", cardHandler.ReportCard).Methods("POST")
	protected.HandleFunc("/sessions", cardHandler.StartSession).Methods("POST")
	protected.HandleFunc("/sessions/{id}/finish", cardHandler.FinishSession).Methods("POST")
	protected.HandleFunc("/activity", cardHandler.GetActivity).Methods("GET")
	protected.HandleFunc("/modules/{id}/exam", cardHandler.GetExam).Methods("GET")
	protected.HandleFunc("/modules/{id}/exam", cardHandler.SubmitExam).Methods("POST")

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminMiddleware(profileStore.IsAdmin))
	admin.HandleFunc("/flashcards/reported", cardHandler.ListReportedCards).Methods("GET")
	admin.HandleFunc("/flashcards/{id}/approve", cardHandler.ApproveCard).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Nightly maintenance: roll daily generation counters and zero streaks
	// broken by inactivity.
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(1).Day().At("00:05").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := profileStore.ResetStaleUsage(ctx)
		if err != nil {
			log.Printf("[server] usage reset failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[server] reset daily usage for %d profiles", n)
		}
	})
	scheduler.Every(1).Day().At("00:15").Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		profile.AuditStreaks(ctx, profileStore)
	})
	scheduler.StartAsync()
	defer scheduler.Stop()

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
