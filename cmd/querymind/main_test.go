// Package main provides tests for the QueryMind CLI.
package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/querymind-labs/querymind/internal/cli"
	"github.com/querymind-labs/querymind/internal/config"
)

func newCLI(t *testing.T) (*bytes.Buffer, func(args ...string) error) {
	t.Helper()
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return buf, func(args ...string) error {
		cmd.SetArgs(args)
		return cmd.Execute()
	}
}

func fixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer func() { _ = db.Close() }()

	stmts := []string{
		`CREATE TABLE employees (
			id INTEGER PRIMARY KEY,
			full_name TEXT NOT NULL,
			salary REAL,
			status TEXT
		)`,
		`INSERT INTO employees (full_name, salary, status) VALUES
			('Ada Lindgren', 95000, 'active'),
			('Brent Okafor', 72000, 'inactive'),
			('Carla Mendes', 83000, 'active')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to build fixture database: %v", err)
		}
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	buf, run := newCLI(t)

	if err := run("version"); err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "QueryMind") {
		t.Errorf("version output should contain 'QueryMind', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	buf, run := newCLI(t)

	if err := run("--help"); err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"serve", "analyze", "query", "ingest", "search", "version"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dbPath := fixtureDB(t)
	buf, run := newCLI(t)

	if err := run("analyze", dbPath); err != nil {
		t.Errorf("analyze command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "employees") {
		t.Errorf("analyze output should contain 'employees', got: %s", output)
	}
	if !strings.Contains(output, "full_name") {
		t.Errorf("analyze output should contain 'full_name', got: %s", output)
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	dbPath := fixtureDB(t)
	buf, run := newCLI(t)

	if err := run("analyze", dbPath, "--format", "json"); err != nil {
		t.Errorf("analyze --format json command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"tables"`) {
		t.Errorf("json output should contain a tables key, got: %s", output)
	}
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	_, run := newCLI(t)

	if err := run("analyze", filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("analyze of a missing database should return an error")
	}
}

func TestQueryCommand(t *testing.T) {
	dbPath := fixtureDB(t)
	buf, run := newCLI(t)

	if err := run("query", dbPath, "how many employees do we have"); err != nil {
		t.Errorf("query command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "3") {
		t.Errorf("query output should contain the count 3, got: %s", output)
	}
}

func TestQueryCommandShowSQL(t *testing.T) {
	dbPath := fixtureDB(t)
	buf, run := newCLI(t)

	if err := run("query", dbPath, "how many employees", "--sql"); err != nil {
		t.Errorf("query --sql command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "SELECT COUNT(*)") {
		t.Errorf("output should contain the generated SQL, got: %s", output)
	}
	if !strings.Contains(output, "Confidence:") {
		t.Errorf("output should contain the confidence line, got: %s", output)
	}
}

func TestQueryCommandJSON(t *testing.T) {
	dbPath := fixtureDB(t)
	buf, run := newCLI(t)

	if err := run("query", dbPath, "show me all active employees", "--format", "json"); err != nil {
		t.Errorf("query --format json command error = %v", err)
	}

	// Selection keeps only the columns the question matched, so the
	// filter column is what comes back.
	output := buf.String()
	if !strings.Contains(output, `"status": "active"`) {
		t.Errorf("json output should contain the matched status rows, got: %s", output)
	}
	if strings.Count(output, `"status"`) != 2 {
		t.Errorf("expected 2 active rows, got: %s", output)
	}
}

func TestIngestAndSearchCommands(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := filepath.Join(tmpDir, "policy.txt")
	content := "Vacation policy. Employees accrue twenty days of paid vacation per year."
	if err := os.WriteFile(docPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture document: %v", err)
	}
	statePath := filepath.Join(tmpDir, "state.db")

	_, run := newCLI(t)
	if err := run("ingest", docPath, "--state-path", statePath); err != nil {
		t.Fatalf("ingest command error = %v", err)
	}

	buf, run := newCLI(t)
	if err := run("search", "vacation days", "--state-path", statePath); err != nil {
		t.Errorf("search command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "policy.txt") {
		t.Errorf("search output should name the matching document, got: %s", output)
	}
}

func TestIngestCommandUnsupportedFile(t *testing.T) {
	tmpDir := t.TempDir()
	binPath := filepath.Join(tmpDir, "image.png")
	if err := os.WriteFile(binPath, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}

	_, run := newCLI(t)
	err := run("ingest", binPath, "--state-path", filepath.Join(tmpDir, "state.db"))
	if err == nil {
		t.Error("ingesting an unsupported file should return an error")
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			_, run := newCLI(t)
			if err := run("completion", shell); err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	_, run := newCLI(t)

	if err := run("unknown-command"); err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
