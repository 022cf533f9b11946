package notifications

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Locale != "en" {
		t.Fatalf("expected default locale en, got %q", cfg.Locale)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("expected default page size 50, got %d", cfg.PageSize)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("TALENTLINE_LOCALE", "es-US")

	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-unread", "-page-size", "10", "-candidate", "cand-1"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.OnlyUnread {
		t.Fatal("expected unread flag to be set")
	}
	if cfg.PageSize != 10 {
		t.Fatalf("expected page size override 10, got %d", cfg.PageSize)
	}
	if cfg.CandidateID != "cand-1" {
		t.Fatalf("expected candidate override, got %q", cfg.CandidateID)
	}
	if cfg.Locale != "es-US" {
		t.Fatalf("expected locale from env, got %q", cfg.Locale)
	}
}

func TestRunCountOnEmptyInbox(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Run(context.Background(), Config{
		DBPath:    filepath.Join(dir, "notifications.db"),
		CountOnly: true,
	}, &out)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "0 unread" {
		t.Fatalf("output = %q, want %q", got, "0 unread")
	}
}

func TestPrinterForFallsBackToEnglish(t *testing.T) {
	if printerFor("not-a-locale") == nil {
		t.Fatal("expected a printer for an unparseable locale")
	}
	if printerFor("es-US") == nil {
		t.Fatal("expected a printer for a supported locale")
	}
}
