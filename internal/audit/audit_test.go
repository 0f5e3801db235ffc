package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adira-Medica/inventory-app/internal/queue"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), nil)
}

func TestLogActivityAndReadBack(t *testing.T) {
	s := newTestStore(t)

	if !s.LogActivity("create_item", "created item IT-1", "jane", 3, "127.0.0.1") {
		t.Fatal("LogActivity returned false")
	}
	if !s.LogActivity("delete_item", "deleted item 9", "bob", 4, "127.0.0.1") {
		t.Fatal("LogActivity returned false")
	}

	entries, err := s.Activities(Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.Action] = true
	}
	if !seen["create_item"] || !seen["delete_item"] {
		t.Fatalf("entries lost in round trip: %+v", entries)
	}
}

func TestLogActivityAnonymous(t *testing.T) {
	s := newTestStore(t)
	s.LogActivity("login_page_view", "", "", 0, "10.0.0.1")

	entries, err := s.Activities(Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if entries[0].Username != "Anonymous" {
		t.Fatalf("empty username should store as Anonymous, got %q", entries[0].Username)
	}
}

func TestCorruptLogReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "audit.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStore(dir, nil)

	entries, err := s.Activities(Filter{})
	if err != nil {
		t.Fatalf("corrupt file should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty log, got %d entries", len(entries))
	}

	// And appending afterwards recovers the file.
	if !s.LogActivity("recovered", "", "jane", 1, "") {
		t.Fatal("append after corruption failed")
	}
	entries, _ = s.Activities(Filter{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after recovery, got %d", len(entries))
	}
}

func TestActivityFilters(t *testing.T) {
	s := newTestStore(t)
	s.LogActivity("create_item", "a", "jane", 1, "")
	s.LogActivity("delete_item", "b", "jane", 1, "")
	s.LogActivity("create_item", "c", "Robert", 2, "")

	byAction, err := s.Activities(Filter{Action: "create_item"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(byAction) != 2 {
		t.Fatalf("action filter: expected 2, got %d", len(byAction))
	}

	// Username matches as case-insensitive substring.
	byUser, err := s.Activities(Filter{Username: "rob"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(byUser) != 1 || byUser[0].Username != "Robert" {
		t.Fatalf("username filter: got %+v", byUser)
	}

	none, err := s.Activities(Filter{StartDate: "2999-01-01"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("future start date should match nothing, got %d", len(none))
	}
}

func TestAuthLogSeparateFromActivity(t *testing.T) {
	s := newTestStore(t)
	s.LogAuthEvent("login", "jane", 1, false, "wrong password (attempt 1)", "10.0.0.1", "curl/8")
	s.LogActivity("create_item", "x", "jane", 1, "")

	auths, err := s.AuthEvents(Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(auths) != 1 {
		t.Fatalf("expected 1 auth event, got %d", len(auths))
	}
	if auths[0].EventType != "authentication" || auths[0].Success {
		t.Fatalf("unexpected auth entry: %+v", auths[0])
	}

	acts, _ := s.Activities(Filter{})
	if len(acts) != 1 {
		t.Fatalf("auth events must not leak into activity log, got %d", len(acts))
	}
}

func TestClearArchivesLog(t *testing.T) {
	s := newTestStore(t)
	s.LogActivity("create_item", "x", "jane", 1, "")

	archive, err := s.Clear()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if archive == "" || !strings.Contains(filepath.Base(archive), "audit_backup_") {
		t.Fatalf("unexpected archive path %q", archive)
	}
	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	if !strings.Contains(string(data), "create_item") {
		t.Fatal("archive missing original entries")
	}

	entries, _ := s.Activities(Filter{})
	if len(entries) != 0 {
		t.Fatalf("log should be empty after clear, got %d", len(entries))
	}
}

func TestClearWithNoLogIsNoop(t *testing.T) {
	s := newTestStore(t)
	archive, err := s.Clear()
	if err != nil {
		t.Fatalf("clear on missing log: %v", err)
	}
	if archive != "" {
		t.Fatalf("expected no archive, got %q", archive)
	}
}

func TestPublishMirror(t *testing.T) {
	s := newTestStore(t)
	var got []queue.ActivityEvent
	s.Publish = func(ev queue.ActivityEvent) { got = append(got, ev) }

	s.LogActivity("create_item", "x", "jane", 1, "10.0.0.1")
	s.LogAuthEvent("login", "jane", 1, false, "bad password", "10.0.0.1", "ua")

	if len(got) != 2 {
		t.Fatalf("expected 2 mirrored events, got %d", len(got))
	}
	if got[0].Success != true || got[1].Success != false {
		t.Fatalf("success flags not mirrored: %+v", got)
	}
}
