package database

import (
	"database/sql"
	"time"
)

type DatabaseService interface {
	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	// RecordPageView stores one visit of a page path
	RecordPageView(path string, viewedAt time.Time) (string, error)
	// CountPageViews returns visits per page path
	CountPageViews() (map[string]int, error)

	CreateSubmission(submission Submission) (string, error)
	// ListSubmissions returns all submissions, newest first
	ListSubmissions() ([]*Submission, error)
}
