package storage

import (
	"context"
	"database/sql"
	"fmt"

	"trainlog/internal/models"
	"trainlog/internal/storage/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// DBTX is the subset of *sql.DB and *sql.Tx the store needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore keeps the journal in PostgreSQL (driver "pgx") or SQLite
// (driver "sqlite3"). Queries use $n placeholders, which both accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore opens the database and applies pending migrations.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	sqlDriver, dialect, err := driverDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err = runMigrations(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewSQLStore(db), nil
}

func driverDialect(driver string) (string, string, error) {
	switch driver {
	case "postgres":
		return "pgx", "postgres", nil
	case "sqlite3":
		return "sqlite3", "sqlite3", nil
	default:
		return "", "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func runMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLStore) ListQuestions(ctx context.Context) ([]models.Question, error) {
	query := `SELECT id, label, kind, category, role, order_index, is_active
		FROM questions
		ORDER BY order_index, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		var role string
		if err := rows.Scan(&q.ID, &q.Label, &q.Kind, &q.Category, &role, &q.OrderIndex, &q.Active); err != nil {
			return nil, fmt.Errorf("error scanning question: %w", err)
		}
		q.Role = models.Role(role)
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return result, nil
}

func (s *SQLStore) SaveQuestion(ctx context.Context, q *models.Question) error {
	query := `INSERT INTO questions (id, label, kind, category, role, order_index, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			kind = EXCLUDED.kind,
			category = EXCLUDED.category,
			role = EXCLUDED.role,
			order_index = EXCLUDED.order_index,
			is_active = EXCLUDED.is_active`

	_, err := s.db.ExecContext(ctx, query, q.ID, q.Label, q.Kind, q.Category, string(q.Role), q.OrderIndex, q.Active)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) ListEntries(ctx context.Context, userID string) ([]models.Entry, error) {
	query := `SELECT id, user_id, date, session_type, created_at,
			is_pending, activity_id, duration_minutes, calories, avg_heart_rate, max_heart_rate
		FROM entries
		WHERE user_id = $1
		ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make([]models.Entry, 0)
	for rows.Next() {
		var e models.Entry
		err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.SessionType, &e.CreatedAt,
			&e.Pending, &e.ActivityID, &e.DurationMinutes, &e.Calories, &e.AvgHeartRate, &e.MaxHeartRate)
		if err != nil {
			return nil, fmt.Errorf("error scanning entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return result, nil
}

func (s *SQLStore) ListResponses(ctx context.Context, userID string) ([]models.Response, error) {
	query := `SELECT r.id, r.entry_id, r.question_id, r.answer
		FROM responses r
		JOIN entries e ON e.id = r.entry_id
		WHERE e.user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := make([]models.Response, 0)
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.EntryID, &r.QuestionID, &r.Answer); err != nil {
			return nil, fmt.Errorf("error scanning response: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responses: %w", err)
	}
	return result, nil
}

// SaveEntry writes the entry and its responses in one transaction.
func (s *SQLStore) SaveEntry(ctx context.Context, entry *models.Entry, responses []models.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err = insertEntry(ctx, tx, entry, responses); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, db DBTX, entry *models.Entry, responses []models.Response) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, date, session_type, created_at,
			is_pending, activity_id, duration_minutes, calories, avg_heart_rate, max_heart_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UserID, entry.Date.UTC(), entry.SessionType, entry.CreatedAt.UTC(),
		entry.Pending, entry.ActivityID, entry.DurationMinutes, entry.Calories, entry.AvgHeartRate, entry.MaxHeartRate)
	if err != nil {
		return fmt.Errorf("error inserting entry: %w", err)
	}
	return insertResponses(ctx, db, entry.ID, responses)
}

func insertResponses(ctx context.Context, db DBTX, entryID string, responses []models.Response) error {
	for _, r := range responses {
		_, err := db.ExecContext(ctx,
			`INSERT INTO responses (id, entry_id, question_id, answer) VALUES ($1, $2, $3, $4)`,
			r.ID, entryID, r.QuestionID, r.Answer)
		if err != nil {
			return fmt.Errorf("error inserting response: %w", err)
		}
	}
	return nil
}

// UpdateEntry rewrites the entry row and swaps its responses in one
// transaction. created_at is never changed.
func (s *SQLStore) UpdateEntry(ctx context.Context, entry *models.Entry, responses []models.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err = replaceEntry(ctx, tx, entry, responses); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func replaceEntry(ctx context.Context, db DBTX, entry *models.Entry, responses []models.Response) error {
	res, err := db.ExecContext(ctx,
		`UPDATE entries SET date = $1, session_type = $2, is_pending = $3, activity_id = $4,
			duration_minutes = $5, calories = $6, avg_heart_rate = $7, max_heart_rate = $8
		WHERE id = $9 AND user_id = $10`,
		entry.Date.UTC(), entry.SessionType, entry.Pending, entry.ActivityID,
		entry.DurationMinutes, entry.Calories, entry.AvgHeartRate, entry.MaxHeartRate,
		entry.ID, entry.UserID)
	if err != nil {
		return fmt.Errorf("error updating entry: %w", err)
	}
	if err = requireAffected(res); err != nil {
		return err
	}
	if _, err = db.ExecContext(ctx, `DELETE FROM responses WHERE entry_id = $1`, entry.ID); err != nil {
		return fmt.Errorf("error deleting responses: %w", err)
	}
	return insertResponses(ctx, db, entry.ID, responses)
}

// DeleteEntry removes responses explicitly: SQLite only honours ON DELETE
// CASCADE with foreign_keys enabled.
func (s *SQLStore) DeleteEntry(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err = deleteEntry(ctx, tx, userID, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func deleteEntry(ctx context.Context, db DBTX, userID, id string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM responses WHERE entry_id IN (SELECT id FROM entries WHERE id = $1 AND user_id = $2)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("error deleting responses: %w", err)
	}
	res, err := db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
