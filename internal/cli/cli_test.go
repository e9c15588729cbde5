package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zappabad/stocky/internal/config"
	"github.com/zappabad/stocky/internal/session"
	"github.com/zappabad/stocky/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDateCommand(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"0", "02.26 (목)"},
		{"180000", "02.27 (금)"},
		{"540000", "03.01 (일)"},
	}
	for _, tt := range tests {
		got, err := run(t, "date", tt.arg)
		if err != nil {
			t.Fatalf("date %s: unexpected error: %v", tt.arg, err)
		}
		if strings.TrimSpace(got) != tt.want {
			t.Errorf("date %s = %q, want %q", tt.arg, strings.TrimSpace(got), tt.want)
		}
	}

	if _, err := run(t, "date", "soon"); err == nil {
		t.Error("expected an error for a non-numeric play time")
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	got, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(got) != "stocky 1.2.3" {
		t.Errorf("unexpected version output %q", got)
	}
}

func TestResetCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stocky.db")
	cfgPath := filepath.Join(dir, "stocky.yaml")
	body := "store:\n  backend: sqlite\n  sqlite_path: " + dbPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := store.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo := session.NewRepository(st)
	ctx := context.Background()
	if err := repo.SavePlayedMs(ctx, "7", 42000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st.Close()

	out, err := run(t, "--config", cfgPath, "reset", "--user", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "reset user 7") {
		t.Errorf("unexpected output %q", out)
	}

	st, err = store.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer st.Close()
	ms, _ := session.NewRepository(st).LoadPlayedMs(ctx, "7")
	if ms != 0 {
		t.Errorf("expected played ms to be cleared, got %d", ms)
	}
}

func TestResetRequiresUser(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "stocky.yaml")
	if err := os.WriteFile(cfgPath, []byte("store:\n  backend: memory\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", cfgPath, "reset"); err == nil {
		t.Error("expected an error without --user")
	}
}

func TestGameConfigFromConfig(t *testing.T) {
	cfg := &config.Config{
		News:   config.NewsConfig{PreferredTopics: []string{"진호랩"}, RefetchExhausted: true},
		Notify: config.NotifyConfig{Enabled: false, PollInterval: 7e9},
	}
	gc := gameConfig(cfg)
	if len(gc.Scheduler.PreferredTopics) != 1 || gc.Scheduler.PreferredTopics[0] != "진호랩" {
		t.Errorf("unexpected preferred topics %v", gc.Scheduler.PreferredTopics)
	}
	if !gc.Scheduler.RefetchExhausted {
		t.Error("expected refetch of an exhausted pool")
	}
	if gc.EnableNotify {
		t.Error("expected notifications disabled")
	}
	if gc.Notify.PollInterval.Seconds() != 7 {
		t.Errorf("expected 7s poll interval, got %v", gc.Notify.PollInterval)
	}
}
