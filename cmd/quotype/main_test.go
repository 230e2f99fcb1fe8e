package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/quotype/internal/config"
	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/store"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Duration: 30 * time.Second, FetchTimeout: time.Second, QuoteURL: quote.DefaultURL}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []model.Config{
		{Duration: 0, FetchTimeout: time.Second, QuoteURL: "x"},
		{Duration: time.Second, FetchTimeout: 0, QuoteURL: "x"},
		{Duration: time.Second, FetchTimeout: time.Second, QuoteURL: " "},
	}
	for _, cfg := range bad {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
	fileOnly := model.Config{Duration: time.Second, FetchTimeout: time.Second, QuotesFile: "quotes.txt"}
	if err := validateConfig(fileOnly); err != nil {
		t.Fatalf("quotes file should not need a url: %v", err)
	}
}

func TestNewQuoteSource(t *testing.T) {
	src, err := newQuoteSource(model.Config{QuoteURL: "http://localhost/quotes", FetchTimeout: time.Second})
	if err != nil {
		t.Fatalf("http source: %v", err)
	}
	if _, ok := src.(*quote.HTTPSource); !ok {
		t.Fatalf("expected HTTP source, got %T", src)
	}

	path := filepath.Join(t.TempDir(), "quotes.txt")
	if err := os.WriteFile(path, []byte("hello there\n"), 0o644); err != nil {
		t.Fatalf("write quotes: %v", err)
	}
	src, err = newQuoteSource(model.Config{QuotesFile: path})
	if err != nil {
		t.Fatalf("file source: %v", err)
	}
	q, err := src.Quote(context.Background())
	if err != nil || q != "hello there" {
		t.Fatalf("quote = %q, %v", q, err)
	}

	if _, err := newQuoteSource(model.Config{QuotesFile: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for missing quotes file")
	}
}

func TestConfigTemplateIsValidTOML(t *testing.T) {
	isolateXDG(t)
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}

	if err := os.WriteFile(path, []byte("[test]\nduration = 5\n"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template again: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Test.DurationSec == nil || *cfg.Test.DurationSec != 5 {
		t.Fatalf("existing config was overwritten")
	}
}

func TestStatsCommandEmpty(t *testing.T) {
	dir := isolateXDG(t)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"stats", "--db", filepath.Join(dir, "quotype.db")})
	if err := root.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Leaderboard", "No scores yet. Start typing!", "No attempts found."} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestStatsCommandUsesConfigDB(t *testing.T) {
	dir := isolateXDG(t)
	dbPath := filepath.Join(dir, "from-config.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.PushResult(context.Background(), model.Attempt{
		Result:  model.Result{WPM: 55, Accuracy: 91, Timestamp: "then"},
		EndedAt: time.Unix(0, 0),
	}); err != nil {
		t.Fatalf("push: %v", err)
	}
	_ = st.Close()

	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("[test]\ndb = \""+filepath.ToSlash(dbPath)+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"stats"})
	if err := root.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out.String(), "1. 55 WPM, 91 % Accuracy (then)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestStatsCommandRejectsBadLogLevel(t *testing.T) {
	dir := isolateXDG(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "--db", filepath.Join(dir, "q.db"), "--log-level", "loud"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for bad log level")
	}
}
