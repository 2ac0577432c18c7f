package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "learny_user")
	password := getEnv("DB_PASSWORD", "learny_password")
	dbname := getEnv("DB_NAME", "learny")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      VARCHAR(255) UNIQUE NOT NULL,
		name       VARCHAR(255) NOT NULL,
		password   VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS user_profiles (
		user_id            UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		tier               VARCHAR(20) NOT NULL DEFAULT 'free',
		is_admin           BOOLEAN NOT NULL DEFAULT FALSE,
		daily_usage        INT NOT NULL DEFAULT 0,
		daily_usage_date   DATE DEFAULT CURRENT_DATE,
		streak             INT NOT NULL DEFAULT 0 CHECK (streak >= 0),
		last_activity      BIGINT NOT NULL DEFAULT 0,
		total_correct      INT NOT NULL DEFAULT 0,
		total_incorrect    INT NOT NULL DEFAULT 0,
		cards_learned      INT NOT NULL DEFAULT 0 CHECK (cards_learned >= 0),
		completed_programs TEXT[] NOT NULL DEFAULT '{}',
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS user_achievements (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon        VARCHAR(50) NOT NULL DEFAULT '',
		earned_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		displayed   BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(user_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_achievements_user ON user_achievements(user_id);

	CREATE TABLE IF NOT EXISTS categories (
		id   VARCHAR(50) PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS flashcards (
		id              VARCHAR(64) PRIMARY KEY,
		user_id         UUID REFERENCES users(id) ON DELETE CASCADE,
		question        TEXT NOT NULL,
		answer          TEXT NOT NULL,
		category        VARCHAR(50) NOT NULL,
		subcategory     VARCHAR(100),
		difficulty      VARCHAR(20) NOT NULL DEFAULT 'beginner',
		correct_count   INT NOT NULL DEFAULT 0,
		incorrect_count INT NOT NULL DEFAULT 0,
		last_reviewed   TIMESTAMP WITH TIME ZONE,
		next_review     TIMESTAMP WITH TIME ZONE,
		learned         BOOLEAN NOT NULL DEFAULT FALSE,
		review_later    BOOLEAN NOT NULL DEFAULT FALSE,
		report_count    INT NOT NULL DEFAULT 0,
		report_reason   TEXT[] NOT NULL DEFAULT '{}',
		is_approved     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_flashcards_user ON flashcards(user_id);
	CREATE INDEX IF NOT EXISTS idx_flashcards_category ON flashcards(category, subcategory);
	CREATE INDEX IF NOT EXISTS idx_flashcards_due ON flashcards(user_id, next_review);

	CREATE TABLE IF NOT EXISTS flashcard_modules (
		id            VARCHAR(50) PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      VARCHAR(50) NOT NULL,
		difficulty    VARCHAR(20) NOT NULL DEFAULT 'beginner',
		flashcard_ids TEXT[] NOT NULL DEFAULT '{}',
		has_exam      BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_modules_category ON flashcard_modules(category);

	CREATE TABLE IF NOT EXISTS flashcard_sessions (
		id            UUID PRIMARY KEY,
		user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		module_id     VARCHAR(50),
		started_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		ended_at      TIMESTAMP WITH TIME ZONE,
		cards_studied INT NOT NULL DEFAULT 0,
		correct       INT NOT NULL DEFAULT 0,
		incorrect     INT NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON flashcard_sessions(user_id, started_at DESC);

	CREATE TABLE IF NOT EXISTS password_resets (
		token      UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		used       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Columns added after the initial schema shipped. Idempotent for
	// databases created before these migrations.
	alterStatements := []string{
		`ALTER TABLE flashcards ADD COLUMN IF NOT EXISTS report_count INT NOT NULL DEFAULT 0`,
		`ALTER TABLE flashcards ADD COLUMN IF NOT EXISTS report_reason TEXT[] NOT NULL DEFAULT '{}'`,
		`ALTER TABLE flashcards ADD COLUMN IF NOT EXISTS is_approved BOOLEAN NOT NULL DEFAULT TRUE`,
		`ALTER TABLE user_profiles ADD COLUMN IF NOT EXISTS daily_usage_date DATE DEFAULT CURRENT_DATE`,
		`ALTER TABLE flashcard_sessions ADD COLUMN IF NOT EXISTS module_id VARCHAR(50)`,
	}

	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	newIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_flashcards_reported ON flashcards(report_count) WHERE report_count > 0`,
		`CREATE INDEX IF NOT EXISTS idx_resets_user ON password_resets(user_id)`,
	}
	for _, stmt := range newIndexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
