package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/review"
)

// writeConfig creates a SQLite-backed config without an embedding provider.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	body := "http:\n  port: 8080\n" +
		"database:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "catalog.db") + "\n" +
		"embedding:\n  api_key: \"\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("migrate output = %q", out)
	}

	out, err = run(t, "--config", cfg, "load", "../../testdata/catalog.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var sum review.LoadSummary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	if sum.Products != 3 || sum.Reviews != 3 {
		t.Errorf("summary = %+v", sum)
	}

	out, err = run(t, "--config", cfg, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats review.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Categories != 3 {
		t.Errorf("stats = %+v", stats)
	}

	out, err = run(t, "--config", cfg, "find", "-r", "quiet blender", "--min-rating", "4", "-n", "3")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	var answer map[string]any
	if err := json.Unmarshal([]byte(out), &answer); err != nil {
		t.Fatalf("decode answer %q: %v", out, err)
	}
	if answer["search_method"] != "keyword_review_match" {
		t.Errorf("answer = %v", answer)
	}

	out, err = run(t, "--config", cfg, "tools", "invoke", "find_product_by_name", `{"name":"kettle"}`)
	if err != nil {
		t.Fatalf("tools invoke: %v", err)
	}
	if !strings.Contains(out, "p-kettle") {
		t.Errorf("invoke output = %q", out)
	}
}

func TestToolsList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "tools", "list")
	if err != nil {
		t.Fatalf("tools list: %v", err)
	}
	for _, name := range []string{"find_product_by_name", "find_products_by_user_requirements_using_example_review"} {
		if !strings.Contains(out, name) {
			t.Errorf("list missing %s:\n%s", name, out)
		}
	}

	out, err = run(t, "--config", cfg, "tools", "list", "--json")
	if err != nil {
		t.Fatalf("tools list --json: %v", err)
	}
	var defs []map[string]any
	if err := json.Unmarshal([]byte(out), &defs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(defs) != 6 {
		t.Errorf("definitions = %d, want 6", len(defs))
	}
}

func TestToolsInvoke_UnknownTool(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "tools", "invoke", "nope")
	if !errors.Is(err, review.ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

func TestFind_RequiresRequirements(t *testing.T) {
	if _, err := run(t, "--config", writeConfig(t), "find"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestMissingConfig(t *testing.T) {
	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "stats"); err == nil {
		t.Fatal("expected config error")
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, `{"a":1}`); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("output = %q", buf.String())
	}
	if err := printJSON(&buf, json.RawMessage(`{`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
