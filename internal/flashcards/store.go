package flashcards

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Cards ───────────────────────────────────────────────

const cardColumns = `id, COALESCE(user_id::text, ''), question, answer, category,
	COALESCE(subcategory, ''), difficulty, correct_count, incorrect_count,
	last_reviewed, next_review, learned, review_later,
	report_count, report_reason, is_approved, created_at, updated_at`

func scanCard(scanner interface{ Scan(...interface{}) error }) (*models.Flashcard, error) {
	var c models.Flashcard
	var reasons pq.StringArray
	err := scanner.Scan(&c.ID, &c.UserID, &c.Question, &c.Answer, &c.Category,
		&c.Subcategory, &c.Difficulty, &c.CorrectCount, &c.IncorrectCount,
		&c.LastReviewed, &c.NextReview, &c.Learned, &c.ReviewLater,
		&c.ReportCount, &reasons, &c.IsApproved, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ReportReasons = []string(reasons)
	if c.ReportReasons == nil {
		c.ReportReasons = []string{}
	}
	return &c, nil
}

func (s *Store) collectCards(rows *sql.Rows) ([]models.Flashcard, error) {
	defer rows.Close()
	cards := []models.Flashcard{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (s *Store) GetCard(ctx context.Context, id string) (*models.Flashcard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards WHERE id = $1`, id)
	return scanCard(row)
}

func (s *Store) ListCardsByUser(ctx context.Context, userID string) ([]models.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return s.collectCards(rows)
}

func (s *Store) ListCardsByIDs(ctx context.Context, ids []string) ([]models.Flashcard, error) {
	if len(ids) == 0 {
		return []models.Flashcard{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list cards by ids: %w", err)
	}
	return s.collectCards(rows)
}

// ListDueCards returns a user's cards due for review.
func (s *Store) ListDueCards(ctx context.Context, userID string, now time.Time) ([]models.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards
		 WHERE user_id = $1 AND NOT learned
		   AND (next_review IS NULL OR next_review <= $2)
		 ORDER BY next_review NULLS FIRST`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	return s.collectCards(rows)
}

func (s *Store) CreateCard(ctx context.Context, c *models.Flashcard) error {
	var owner interface{}
	if c.UserID != "" {
		owner = c.UserID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flashcards
		   (id, user_id, question, answer, category, subcategory, difficulty,
		    learned, review_later, is_approved)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)`,
		c.ID, owner, c.Question, c.Answer, c.Category, c.Subcategory, c.Difficulty,
		c.Learned, c.ReviewLater, c.IsApproved)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	return nil
}

// UpdateCard writes the full card row, no partial updates.
func (s *Store) UpdateCard(ctx context.Context, c *models.Flashcard) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE flashcards SET
		    question = $2, answer = $3, category = $4, subcategory = NULLIF($5, ''),
		    difficulty = $6, correct_count = $7, incorrect_count = $8,
		    last_reviewed = $9, next_review = $10, learned = $11, review_later = $12,
		    report_count = $13, report_reason = $14, is_approved = $15,
		    updated_at = NOW()
		 WHERE id = $1`,
		c.ID, c.Question, c.Answer, c.Category, c.Subcategory,
		c.Difficulty, c.CorrectCount, c.IncorrectCount,
		c.LastReviewed, c.NextReview, c.Learned, c.ReviewLater,
		c.ReportCount, pq.Array(c.ReportReasons), c.IsApproved)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM flashcards WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) ListReportedCards(ctx context.Context) ([]models.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM flashcards
		 WHERE report_count > 0 ORDER BY report_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reported cards: %w", err)
	}
	return s.collectCards(rows)
}

// ApproveCard clears reports and restores approval.
func (s *Store) ApproveCard(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE flashcards SET is_approved = TRUE, report_count = 0, report_reason = '{}',
		    updated_at = NOW()
		 WHERE id = $1`, id)
	return err
}

// ── Modules & Categories ────────────────────────────────

const moduleColumns = `id, name, description, category, difficulty, flashcard_ids, has_exam`

func scanModule(scanner interface{ Scan(...interface{}) error }) (*models.FlashcardModule, error) {
	var m models.FlashcardModule
	var ids pq.StringArray
	err := scanner.Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Difficulty, &ids, &m.HasExam)
	if err != nil {
		return nil, err
	}
	m.FlashcardIDs = []string(ids)
	if m.FlashcardIDs == nil {
		m.FlashcardIDs = []string{}
	}
	return &m, nil
}

func (s *Store) GetModule(ctx context.Context, id string) (*models.FlashcardModule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM flashcard_modules WHERE id = $1`, id)
	return scanModule(row)
}

func (s *Store) ListModules(ctx context.Context, category string) ([]models.FlashcardModule, error) {
	query := `SELECT ` + moduleColumns + ` FROM flashcard_modules ORDER BY name`
	args := []interface{}{}
	if category != "" {
		query = `SELECT ` + moduleColumns + ` FROM flashcard_modules WHERE category = $1 ORDER BY name`
		args = append(args, category)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	modules := []models.FlashcardModule{}
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, *m)
	}
	return modules, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SeedCatalog upserts the compiled-in catalog. Existing rows win.
func (s *Store) SeedCatalog(ctx context.Context, categories []models.Category, modules []models.FlashcardModule, cards []models.Flashcard) error {
	for _, c := range categories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	for _, card := range cards {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO flashcards (id, question, answer, category, subcategory, difficulty, is_approved)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			card.ID, card.Question, card.Answer, card.Category, card.Subcategory,
			card.Difficulty, card.IsApproved); err != nil {
			return fmt.Errorf("seed card %s: %w", card.ID, err)
		}
	}
	for _, m := range modules {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO flashcard_modules (id, name, description, category, difficulty, flashcard_ids, has_exam)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			m.ID, m.Name, m.Description, m.Category, m.Difficulty,
			pq.Array(m.FlashcardIDs), m.HasExam); err != nil {
			return fmt.Errorf("seed module %s: %w", m.ID, err)
		}
	}
	return nil
}

// ── Sessions ────────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, sess *models.StudySession) error {
	var moduleID interface{}
	if sess.ModuleID != "" {
		moduleID = sess.ModuleID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flashcard_sessions (id, user_id, module_id, started_at)
		 VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.UserID, moduleID, sess.StartedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) FinishSession(ctx context.Context, sessionID, userID string, cardsStudied, correct, incorrect int, endedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE flashcard_sessions SET
		    ended_at = $3, cards_studied = $4, correct = $5, incorrect = $6
		 WHERE id = $1 AND user_id = $2 AND ended_at IS NULL`,
		sessionID, userID, endedAt, cardsStudied, correct, incorrect)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AggregateActivity rolls sessions up per day over the trailing window.
func (s *Store) AggregateActivity(ctx context.Context, userID string, days int) ([]models.ActivityDay, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT to_char(started_at::date, 'YYYY-MM-DD') AS day,
		        COUNT(*), COALESCE(SUM(cards_studied), 0),
		        COALESCE(SUM(correct), 0), COALESCE(SUM(incorrect), 0)
		 FROM flashcard_sessions
		 WHERE user_id = $1 AND started_at >= NOW() - ($2 || ' days')::interval
		 GROUP BY started_at::date
		 ORDER BY day`, userID, days)
	if err != nil {
		return nil, fmt.Errorf("aggregate activity: %w", err)
	}
	defer rows.Close()

	activity := []models.ActivityDay{}
	for rows.Next() {
		var a models.ActivityDay
		if err := rows.Scan(&a.Day, &a.Sessions, &a.CardsStudied, &a.Correct, &a.Incorrect); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
