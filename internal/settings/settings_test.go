package settings

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestGetWritesDefaultsOnFirstUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewStore(path, "generated")

	got, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ApplicationName != "AdiraMedica Inventory" || got.SessionTimeout != 30 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.PDFStorage != "generated" {
		t.Fatalf("pdf storage should seed from generatedDir, got %q", got.PDFStorage)
	}

	// Second read comes from the file just written.
	again, err := s.Get()
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again != got {
		t.Fatalf("settings changed between reads: %+v vs %+v", again, got)
	}
}

func TestPutRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewStore(path, "generated")

	in := Settings{
		PDFStorage:      "/srv/pdfs",
		BackupEnabled:   false,
		BackupFrequency: "weekly",
		ApplicationName: "Inventory QA",
		SessionTimeout:  60,
	}
	if err := s.Put(in); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, in)
	}
}

func TestPutRejectsTimeoutOutOfRange(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"), "generated")
	for _, mins := range []int{0, 4, 121} {
		if err := s.Put(Settings{SessionTimeout: mins}); !errors.Is(err, ErrSessionTimeoutRange) {
			t.Fatalf("timeout %d: expected ErrSessionTimeoutRange, got %v", mins, err)
		}
	}
}
