package mockapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps accounts in a SQLite file so they survive restarts of
// `futureproof mock-api --db`.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLiteStore creates or opens the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL,
		password_hash BLOB NOT NULL,
		has_taken_onboarding INTEGER NOT NULL DEFAULT 0,
		assessment_json TEXT,
		cv_name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`)
	return err
}

func (s *SQLiteStore) CreateUser(u *User, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO users (full_name, email, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.FullName, u.Email, u.Role, passwordHash, now.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

const userColumns = `id, full_name, email, role, password_hash, has_taken_onboarding,
	assessment_json, cv_name, created_at`

func (s *SQLiteStore) UserByEmail(email string) (*User, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *SQLiteStore) UserByID(id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, _, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, err
}

func (s *SQLiteStore) CompleteOnboarding(id int64, answers map[string]string, cvName string) (*User, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	s.mu.Lock()
	res, err := s.db.Exec(`
		UPDATE users SET has_taken_onboarding = 1, assessment_json = ?, cv_name = ?
		WHERE id = ?
	`, string(answersJSON), cvName, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to save onboarding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrUserNotFound
	}
	return s.UserByID(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, []byte, error) {
	var u User
	var hash []byte
	var done int
	var answersJSON sql.NullString
	var createdAt string

	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &hash, &done,
		&answersJSON, &u.CVName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	u.HasTakenOnboarding = done != 0
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		u.CreatedAt = t
	}
	if answersJSON.Valid {
		if err := json.Unmarshal([]byte(answersJSON.String), &u.Assessment); err != nil {
			return nil, nil, fmt.Errorf("failed to decode answers of user %d: %w", u.ID, err)
		}
	}
	return &u, hash, nil
}
