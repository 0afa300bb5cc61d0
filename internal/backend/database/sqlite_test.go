package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestDB(t *testing.T) DatabaseService {
	t.Helper()

	ds, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	_, err = ds.CreateDatabase()
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestSQLite_DoesDatabaseExist(t *testing.T) {
	ds := newTestDB(t)
	if !ds.DoesDatabaseExist() {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestSQLite_CreateDatabase_Idempotent(t *testing.T) {
	ds := newTestDB(t)
	if _, err := ds.CreateDatabase(); err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
}

func TestSQLite_PageViews(t *testing.T) {
	ds := newTestDB(t)
	now := time.Now()

	for _, path := range []string{"/", "/blast", "/blast", "/search", "/blast"} {
		if _, err := ds.RecordPageView(path, now); err != nil {
			t.Fatalf("RecordPageView(%q) error: %v", path, err)
		}
	}

	counts, err := ds.CountPageViews()
	if err != nil {
		t.Fatalf("CountPageViews error: %v", err)
	}
	want := map[string]int{"/": 1, "/blast": 3, "/search": 1}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for path, n := range want {
		if counts[path] != n {
			t.Errorf("counts[%q] = %d, want %d", path, counts[path], n)
		}
	}
}

func TestSQLite_Submissions(t *testing.T) {
	ds := newTestDB(t)
	older := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	id1, err := ds.CreateSubmission(Submission{Name: "A. Researcher", Email: "a@example.org", Message: "new orcokinin", CreatedAt: older})
	if err != nil {
		t.Fatalf("CreateSubmission #1 error: %v", err)
	}
	id2, err := ds.CreateSubmission(Submission{Name: "B. Researcher", Title: "Dr.", Institution: "UW", Email: "b@example.org", Message: "RFamide", CreatedAt: newer})
	if err != nil {
		t.Fatalf("CreateSubmission #2 error: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected distinct IDs, got %q twice", id1)
	}

	submissions, err := ds.ListSubmissions()
	if err != nil {
		t.Fatalf("ListSubmissions error: %v", err)
	}
	if len(submissions) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(submissions))
	}
	if submissions[0].ID != id2 || submissions[1].ID != id1 {
		t.Errorf("expected newest first, got %q then %q", submissions[0].ID, submissions[1].ID)
	}
	if submissions[0].Institution != "UW" || submissions[0].Title != "Dr." {
		t.Errorf("unexpected fields: %+v", submissions[0])
	}
	if !submissions[1].CreatedAt.Equal(older) {
		t.Errorf("CreatedAt = %v, want %v", submissions[1].CreatedAt, older)
	}
}

func TestSQLite_RowIDsAreUniqueUUIDs(t *testing.T) {
	ds := newTestDB(t)
	const n = 64
	seen := make(map[string]struct{}, 2*n)

	for i := 0; i < n; i++ {
		viewID, err := ds.RecordPageView("/index.html", time.Now())
		if err != nil {
			t.Fatalf("RecordPageView error: %v", err)
		}
		submissionID, err := ds.CreateSubmission(Submission{Name: "A", Email: "a@example.org", Message: "m"})
		if err != nil {
			t.Fatalf("CreateSubmission error: %v", err)
		}
		for _, id := range []string{viewID, submissionID} {
			parsed, err := uuid.Parse(id)
			if err != nil || parsed.Version() != 4 {
				t.Fatalf("id %q is not a version 4 UUID: %v", id, err)
			}
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = struct{}{}
		}
	}
}

func TestNewDatabase(t *testing.T) {
	ds, err := NewDatabase("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	defer ds.Close()
	if _, err := ds.RecordPageView("/", time.Now()); err != nil {
		t.Errorf("schema not created: %v", err)
	}

	if _, err := NewDatabase("postgres", "ignored"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
