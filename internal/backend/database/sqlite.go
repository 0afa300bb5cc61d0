package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// newID returns a random (version 4) UUID for a new row
func newID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase() (*sql.DB, error) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS page_views (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			viewed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_page_views_path ON page_views(path)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT,
			institution TEXT,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return nil, err
		}
	}

	return s.db, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) RecordPageView(path string, viewedAt time.Time) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec("INSERT INTO page_views (id, path, viewed_at) VALUES (?, ?, ?)",
		id, path, viewedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("insert page view: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) CountPageViews() (map[string]int, error) {
	rows, err := s.db.Query("SELECT path, COUNT(*) FROM page_views GROUP BY path")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var path string
		var count int
		if err := rows.Scan(&path, &count); err != nil {
			return nil, err
		}
		counts[path] = count
	}
	return counts, rows.Err()
}

func (s *SQLiteDatabase) CreateSubmission(submission Submission) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	createdAt := submission.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.Exec(`INSERT INTO submissions (id, name, title, institution, email, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, submission.Name, submission.Title, submission.Institution, submission.Email,
		submission.Message, createdAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) ListSubmissions() ([]*Submission, error) {
	rows, err := s.db.Query(`SELECT id, name, title, institution, email, message, created_at
		FROM submissions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var submissions []*Submission
	for rows.Next() {
		var sub Submission
		var title, institution sql.NullString
		var createdAt string
		if err := rows.Scan(&sub.ID, &sub.Name, &title, &institution, &sub.Email, &sub.Message, &createdAt); err != nil {
			return nil, err
		}
		sub.Title = title.String
		sub.Institution = institution.String
		if sub.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("submission %s has invalid created_at %q: %w", sub.ID, createdAt, err)
		}
		submissions = append(submissions, &sub)
	}
	return submissions, rows.Err()
}
