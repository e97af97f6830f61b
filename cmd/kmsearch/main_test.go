package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const bundlePath = "../../internal/repository/resource/testdata/bundle.yaml"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `
http:
  port: 18080
database:
  path: ` + filepath.Join(dir, "kmsearch.db") + `
segmenter:
  provider: cluster
logging:
  level: error
`
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_MigrateImportSearch(t *testing.T) {
	cfg := writeConfig(t)
	base := []string{"--env", "local", "--config", cfg}

	out, err := run(t, append(base, "migrate", "up")...)
	if err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if !strings.Contains(out, "applied") {
		t.Errorf("migrate up output = %q", out)
	}

	out, err = run(t, append(base, "import", bundlePath)...)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var stats struct {
		Resources int `json:"resources"`
		Users     int `json:"users"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode import output %q: %v", out, err)
	}
	if stats.Resources != 2 || stats.Users != 2 {
		t.Errorf("stats = %+v", stats)
	}

	out, err = run(t, append(base, "search", "--page-size", "10", "សាលា")...)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var res struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Pagination struct {
				Page     int `json:"page"`
				PageSize int `json:"pageSize"`
				Total    int `json:"total"`
			} `json:"pagination"`
		} `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode search output %q: %v", out, err)
	}
	if res.Meta.Pagination.Total != 1 || res.Meta.Pagination.PageSize != 10 {
		t.Errorf("pagination = %+v", res.Meta.Pagination)
	}
	if len(res.Data) != 1 || res.Data[0]["documentId"] != "res-school" {
		t.Fatalf("data = %v", res.Data)
	}
	if strings.Contains(out, "sok@example.com") || strings.Contains(out, "secrethash") {
		t.Error("search output leaks user secrets")
	}
}

func TestCLI_MigrateDownAndStatus(t *testing.T) {
	cfg := writeConfig(t)
	base := []string{"--env", "local", "--config", cfg}

	if _, err := run(t, append(base, "migrate", "up")...); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	out, err := run(t, append(base, "migrate", "down", "--steps", "1")...)
	if err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if !strings.Contains(out, "reverted 1 migration(s)") {
		t.Errorf("migrate down output = %q", out)
	}

	out, err = run(t, append(base, "migrate", "status")...)
	if err != nil {
		t.Fatalf("migrate status: %v", err)
	}
	if !strings.HasPrefix(out, "schema version 1 of") {
		t.Errorf("status output = %q", out)
	}
}

func TestCLI_ImportRejectsInvalidBundle(t *testing.T) {
	cfg := writeConfig(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("resources:\n  - document_id: a\n    cover: missing\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--env", "local", "--config", cfg, "import", bad); err == nil {
		t.Fatal("expected error for unresolved reference")
	}
}

func TestCLI_Version(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "kmsearch dev") {
		t.Errorf("version output = %q", out)
	}
}
