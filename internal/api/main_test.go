package api

import (
	"context"
	"log"
	"os"
	"testing"

	"dziennik-obecnosci/internal/attendance"
	"dziennik-obecnosci/internal/auth"
	"dziennik-obecnosci/internal/config"
	"dziennik-obecnosci/internal/database"
	"dziennik-obecnosci/internal/models"
	"dziennik-obecnosci/internal/storage"
	"dziennik-obecnosci/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testServer *Server
var testTeacherClaims *auth.AppClaims
var testStudentClaims *auth.AppClaims

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:14-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	schema, err := os.ReadFile("../../db/init.sql")
	if err != nil {
		log.Fatalf("Could not read schema file: %s", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Could not apply schema: %s", err)
	}

	tempDir, err := os.MkdirTemp("", "api-storage-test")
	if err != nil {
		log.Fatalf("Could not create temp dir: %s", err)
	}
	defer os.RemoveAll(tempDir)

	localStorage, err := storage.NewLocalStorage(tempDir)
	if err != nil {
		log.Fatalf("Could not create local storage: %s", err)
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(pool, wsHub)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "api_test_secret", TokenSecret: "api_test_token_secret"},
		Session: config.SessionConfig{
			AllowedDurations: []int{5, 10, 15, 20},
			RetentionHours:   72,
		},
	}

	manager := attendance.NewManager(store, cfg.JWT.TokenSecret, cfg.Session.AllowedDurations)
	recorder := attendance.NewRecorder(manager, store)
	testServer = NewServer(cfg, store, manager, recorder, localStorage, wsHub)

	testTeacherClaims = seedUser(ctx, pool, cfg, "api_test_teacher", models.RoleTeacher)
	testStudentClaims = seedUser(ctx, pool, cfg, "api_test_student", models.RoleStudent)

	// Roster na potrzeby testów: jeden student powiązany z kontem użytkownika.
	var studentUserID int64
	if err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = 'api_test_student'`).Scan(&studentUserID); err != nil {
		log.Fatalf("Could not look up student user: %s", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO students (student_id, name, user_id) VALUES ('S001', 'Anna Kowalska', $1), ('S002', 'Piotr Nowak', NULL)`,
		studentUserID,
	); err != nil {
		log.Fatalf("Could not seed students: %s", err)
	}

	os.Exit(m.Run())
}

func seedUser(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, username, role string) *auth.AppClaims {
	hashedPassword, _ := auth.HashPassword("password")

	var userID int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		username, hashedPassword, role,
	).Scan(&userID); err != nil {
		log.Fatalf("Could not seed user %s: %s", username, err)
	}

	token, err := auth.GenerateJWT(&models.User{ID: userID, Username: username, Role: role}, cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("Could not generate token: %s", err)
	}

	claims, err := auth.VerifyJWT(token, cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("Could not verify token: %s", err)
	}
	return claims
}
