// @title           Dziennik Obecnosci API
// @version         1.0
// @description     QR-based attendance session service: time-bounded sessions, scan recording, leave applications and CSV reports.
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"dziennik-obecnosci/internal/api"
	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/config"
	"dziennik-obecnosci/internal/database"
	"dziennik-obecnosci/internal/models"
	"dziennik-obecnosci/internal/storage"
	"dziennik-obecnosci/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "dziennik-obecnosci/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Nie można zainicjować local storage: %v", err)
	}
	log.Printf("Załączniki będą przechowywane w: %s", cfg.Storage.Path)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool, wsHub)
	sessions := attendance.NewManager(store, cfg.JWT.TokenSecret, cfg.Session.AllowedDurations)
	recorder := attendance.NewRecorder(sessions, store)
	server := api.NewServer(cfg, store, sessions, recorder, localStorage, wsHub)

	go runRetentionSweep(store, cfg.Session.RetentionHours)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Dziennik obecności działa! Dokumentacja dostępna pod /swagger/index.html"))
	})

	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/me", server.GetCurrentUserHandler)

		r.With(api.RequireRole(models.RoleTeacher, models.RoleAdmin)).Group(func(r chi.Router) {
			r.Post("/sessions", server.CreateSessionHandler)
			r.Get("/sessions/{sessionId}", server.GetSessionHandler)
			r.Get("/sessions/{sessionId}/attendance.csv", server.SessionAttendanceCSVHandler)
			r.Get("/attendance", server.ListAttendanceHandler)
			r.Get("/students", server.ListStudentsHandler)

			r.Post("/subjects", server.CreateSubjectHandler)
			r.Get("/subjects", server.ListSubjectsHandler)
			r.Delete("/subjects/{subjectId}", server.DeleteSubjectHandler)
			r.Get("/subjects/{subjectId}/attendance", server.SubjectAttendanceHandler)
			r.Get("/subjects/{subjectId}/attendance.csv", server.SubjectAttendanceCSVHandler)
			r.Get("/subjects/{subjectId}/leave", server.SubjectLeaveApplicationsHandler)

			r.Patch("/leave/{leaveId}", server.UpdateLeaveStatusHandler)
			r.Get("/events", server.GetEventsHandler)
		})

		r.Post("/attendance", server.MarkAttendanceHandler)
		r.Post("/leave", server.SubmitLeaveHandler)
		r.Get("/leave", server.ListLeaveHandler)
		r.Get("/leave/{leaveId}/attachment", server.DownloadAttachmentHandler)
	})

	log.Println("Uruchamianie serwera na porcie :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}

// runRetentionSweep okresowo usuwa wygasłe sesje starsze niż okno retencji.
// Rekordy obecności zostają, sesja jest po wygaśnięciu tylko metadanymi.
func runRetentionSweep(store *database.PostgresStore, retentionHours int) {
	if retentionHours <= 0 {
		return
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-time.Duration(retentionHours) * time.Hour)
		deleted, err := store.DeleteSessionsExpiredBefore(context.Background(), cutoff)
		if err != nil {
			log.Printf("ERROR: Nie udało się wymieść wygasłych sesji: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("Wymieciono %d wygasłych sesji starszych niż %dh", deleted, retentionHours)
		}
	}
}
