package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/hopcrawl/internal/database"
	"github.com/nao1215/hopcrawl/internal/model"
)

// seedHistory records two runs of spbu.ru and one of example.com and
// returns the database directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	runs := []*model.Summary{
		{HomeDomain: "spbu.ru", StartedAt: started, FinishedAt: started.Add(time.Minute), Links: 100, VisitedPages: 50, DeadLinks: 5},
		{HomeDomain: "example.com", StartedAt: started, FinishedAt: started.Add(time.Second), Links: 3, VisitedPages: 1},
		{HomeDomain: "spbu.ru", StartedAt: started.Add(24 * time.Hour), FinishedAt: started.Add(25 * time.Hour), Links: 120, VisitedPages: 50, DeadLinks: 2, Interrupted: true},
	}
	for _, s := range runs {
		if _, err := db.SaveRun(t.Context(), s); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return dir
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	if cmd.Use != "history [home-domain]" {
		t.Errorf("expected use 'history [home-domain]', got %q", cmd.Use)
	}
	flag := cmd.Flags().Lookup("limit")
	if flag == nil {
		t.Fatal("expected limit flag")
	}
	if flag.Shorthand != "l" {
		t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
	}
	if flag.DefValue != "20" {
		t.Errorf("expected default '20', got %q", flag.DefValue)
	}
	for _, name := range []string{"diff", "json", "db-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists domains", func(t *testing.T) {
		t.Parallel()
		output, err := executeHistory(t, "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "Crawled domains (2)") {
			t.Errorf("expected domain count, got %q", output)
		}
		if strings.Index(output, "example.com") > strings.Index(output, "spbu.ru") {
			t.Errorf("expected domains in alphabetical order, got %q", output)
		}
	})

	t.Run("lists runs newest first", func(t *testing.T) {
		t.Parallel()
		output, err := executeHistory(t, "--db-dir", seedHistory(t), "https://SPbU.ru/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "Crawl history for spbu.ru (2 runs)") {
			t.Errorf("expected history header, got %q", output)
		}
		interrupted := strings.Index(output, "interrupted")
		complete := strings.Index(output, "complete")
		if interrupted < 0 || complete < 0 || interrupted > complete {
			t.Errorf("expected the interrupted newer run first, got %q", output)
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		t.Parallel()
		output, err := executeHistory(t, "--db-dir", seedHistory(t), "-l", "1", "spbu.ru")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "(1 runs)") {
			t.Errorf("expected one run, got %q", output)
		}
	})

	t.Run("outputs JSON", func(t *testing.T) {
		t.Parallel()
		output, err := executeHistory(t, "--db-dir", seedHistory(t), "--json", "spbu.ru")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var records []struct {
			ID    int64 `json:"id"`
			Links int   `json:"links"`
		}
		if err := json.Unmarshal([]byte(output), &records); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, output)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].ID != 3 || records[0].Links != 120 {
			t.Errorf("unexpected first record: %+v", records[0])
		}
	})

	t.Run("compares latest two runs", func(t *testing.T) {
		t.Parallel()
		output, err := executeHistory(t, "--db-dir", seedHistory(t), "--diff", "spbu.ru")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "Comparing run 3") {
			t.Errorf("expected comparison header, got %q", output)
		}
		if !strings.Contains(output, "+20") {
			t.Errorf("expected links delta +20, got %q", output)
		}
		if !strings.Contains(output, "-3") {
			t.Errorf("expected dead links delta -3, got %q", output)
		}
	})

	t.Run("compare needs two runs", func(t *testing.T) {
		t.Parallel()
		_, err := executeHistory(t, "--db-dir", seedHistory(t), "--diff", "example.com")
		if err == nil {
			t.Fatal("expected error with a single run")
		}
	})

	t.Run("compare needs a domain", func(t *testing.T) {
		t.Parallel()
		_, err := executeHistory(t, "--db-dir", seedHistory(t), "--diff")
		if err == nil {
			t.Fatal("expected error without home domain")
		}
	})

	t.Run("unknown domain", func(t *testing.T) {
		t.Parallel()
		output, err := executeHistory(t, "--db-dir", seedHistory(t), "unknown.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "No crawl runs found for unknown.org") {
			t.Errorf("expected empty history message, got %q", output)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()
		_, err := executeHistory(t, "--db-dir", t.TempDir())
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{in: 5, want: "+5"},
		{in: 0, want: "0"},
		{in: -2, want: "-2"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.in); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
