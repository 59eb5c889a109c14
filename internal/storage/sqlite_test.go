package storage

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleLog(id string, at time.Time) QueryLog {
	return QueryLog{
		ID:         id,
		CreatedAt:  at,
		Query:      "What is Alice Smith's current job?",
		UserID:     "wa-123",
		ProfileID:  "asmith",
		Category:   "experience",
		Refinement: "current",
		Response:   "Alice Smith currently works as Engineer at Acme (2022-Present).",
		Success:    true,
	}
}

func TestSaveAndGetQueryLog(t *testing.T) {
	s := openTestStore(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.SaveQueryLog(sampleLog("q1", at)); err != nil {
		t.Fatalf("SaveQueryLog: %v", err)
	}

	got, err := s.GetQueryLog("q1")
	if err != nil {
		t.Fatalf("GetQueryLog: %v", err)
	}
	if got.ProfileID != "asmith" || got.Category != "experience" || !got.Success {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}
}

func TestGetQueryLog_NotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetQueryLog("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQueryLog = %v, want ErrNotFound", err)
	}
}

func TestSaveQueryLog_Failure(t *testing.T) {
	s := openTestStore(t)
	q := QueryLog{
		ID:        "q2",
		CreatedAt: time.Now(),
		Query:     "who is nobody",
		Success:   false,
		Error:     "Could not identify a profile in your query",
	}
	if err := s.SaveQueryLog(q); err != nil {
		t.Fatalf("SaveQueryLog: %v", err)
	}

	got, err := s.GetQueryLog("q2")
	if err != nil {
		t.Fatalf("GetQueryLog: %v", err)
	}
	if got.Success {
		t.Error("Success = true, want false")
	}
	if got.Error == "" {
		t.Error("Error is empty, want message")
	}
}

func TestListQueryLogs_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"q1", "q2", "q3"} {
		if err := s.SaveQueryLog(sampleLog(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("SaveQueryLog(%s): %v", id, err)
		}
	}

	logs, err := s.ListQueryLogs(10, 0)
	if err != nil {
		t.Fatalf("ListQueryLogs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("got %d logs, want 3", len(logs))
	}
	if logs[0].ID != "q3" || logs[2].ID != "q1" {
		t.Errorf("order = [%s %s %s], want newest first", logs[0].ID, logs[1].ID, logs[2].ID)
	}

	page, err := s.ListQueryLogs(1, 1)
	if err != nil {
		t.Fatalf("ListQueryLogs paged: %v", err)
	}
	if len(page) != 1 || page[0].ID != "q2" {
		t.Errorf("page = %+v, want [q2]", page)
	}
}

func TestDeleteQueryLog(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveQueryLog(sampleLog("q1", time.Now())); err != nil {
		t.Fatalf("SaveQueryLog: %v", err)
	}
	if err := s.DeleteQueryLog("q1"); err != nil {
		t.Fatalf("DeleteQueryLog: %v", err)
	}
	if _, err := s.GetQueryLog("q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQueryLog after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteQueryLog("q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteQueryLog = %v, want ErrNotFound", err)
	}
}

func TestMigrationsApplied(t *testing.T) {
	s := openTestStore(t)
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("querying schema_version: %v", err)
	}
	if count == 0 {
		t.Error("no migrations recorded")
	}
}
