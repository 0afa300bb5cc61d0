package database

import "time"

type PageView struct {
	ID       string    `db:"id"`
	Path     string    `db:"path"`
	ViewedAt time.Time `db:"viewed_at"`
}

// Submission is a peptide data contribution sent from the submission form
type Submission struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Title       string    `db:"title"`
	Institution string    `db:"institution"`
	Email       string    `db:"email"`
	Message     string    `db:"message"`
	CreatedAt   time.Time `db:"created_at"`
}
