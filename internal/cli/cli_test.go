package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func setupEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PLANNER_HTTP_PORT", "PLANNER_REDIS_ADDR", "PLANNER_REDIS_DB", "PLANNER_REDIS_NAMESPACE",
		"PLANNER_CATALOG_FILE", "PLANNER_LOG_LEVEL", "PLANNER_LOG_FORMAT", "PLANNER_SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("PLANNER_STORE", "sqlite")
	t.Setenv("PLANNER_SQLITE_DSN", filepath.Join(t.TempDir(), "planner.db"))
	t.Setenv("PLANNER_DEFAULT_START", "09:00")

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := RootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var idLine = regexp.MustCompile(`(?m)^  ID: (\S+)$`)

func TestGenerateShowDiscard(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "generate", "--hours", "2", "--participants", "8", "--context", "Team offsite")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	match := idLine.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("generate output has no id line:\n%s", out)
	}
	id := match[1]
	if !strings.Contains(out, "Workshop 2h - 8 participants") {
		t.Fatalf("expected default title in output:\n%s", out)
	}
	if !strings.Contains(out, "09:00-09:") {
		t.Fatalf("expected agenda to start at 09:00:\n%s", out)
	}

	again, err := run(t, "generate", "--hours", "2", "--participants", "8", "--context", "Team offsite")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if got := idLine.FindStringSubmatch(again); got == nil || got[1] != id {
		t.Fatalf("expected repeated generate to reuse id %s, got:\n%s", id, again)
	}
	if again != out {
		t.Fatalf("expected identical agenda on repeat\nfirst:\n%s\nsecond:\n%s", out, again)
	}

	shown, err := run(t, "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(shown, "Workshop "+id) || !strings.Contains(shown, "Total: ") {
		t.Fatalf("unexpected show output:\n%s", shown)
	}

	retimed, err := run(t, "retime", id, "--start", "13:30")
	if err != nil {
		t.Fatalf("retime: %v", err)
	}
	if !strings.Contains(retimed, "13:30-13:") {
		t.Fatalf("expected agenda moved to 13:30:\n%s", retimed)
	}

	discarded, err := run(t, "discard", id)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if !strings.Contains(discarded, "✓ Discarded agenda "+id) {
		t.Fatalf("unexpected discard output: %q", discarded)
	}

	if _, err := run(t, "show", id); err == nil {
		t.Fatal("expected show to fail after discard")
	}
}

func TestGenerateRejectsConflictingFlags(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "generate", "--fresh", "--once"); err == nil || !strings.Contains(err.Error(), "cannot be combined") {
		t.Fatalf("expected flag conflict error, got %v", err)
	}
}

func TestUnknownStoreFlag(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "--store", "etcd", "catalog"); err == nil || !strings.Contains(err.Error(), `unknown store "etcd"`) {
		t.Fatalf("expected unknown store error, got %v", err)
	}
}

func TestCatalogListing(t *testing.T) {
	setupEnv(t)

	all, err := run(t, "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{"ID", "welcome (reserved)", "triz", "1-2-4-all"} {
		if !strings.Contains(all, want) {
			t.Fatalf("expected %q in catalog output:\n%s", want, all)
		}
	}

	purposes, err := run(t, "purposes")
	if err != nil {
		t.Fatalf("purposes: %v", err)
	}
	if !strings.Contains(purposes, "articulate-challenge") {
		t.Fatalf("expected purpose ids in output:\n%s", purposes)
	}
}

func TestLibraryFlow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "library", "list")
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	if !strings.Contains(out, "No saved workshops") {
		t.Fatalf("expected empty library, got:\n%s", out)
	}

	generated, err := run(t, "generate", "--hours", "3", "--participants", "10")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id := idLine.FindStringSubmatch(generated)[1]

	saved, err := run(t, "library", "save", id, "--participants", "10", "--name", "Quarterly review")
	if err != nil {
		t.Fatalf("library save: %v", err)
	}
	savedID := strings.TrimSpace(saved[strings.LastIndex(saved, " as ")+len(" as "):])
	if !strings.Contains(saved, "✓ Saved Quarterly review as ") || savedID == "" {
		t.Fatalf("unexpected save output: %q", saved)
	}

	listed, err := run(t, "library", "list")
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	if !strings.Contains(listed, savedID) || !strings.Contains(listed, "completed") {
		t.Fatalf("expected saved entry in list:\n%s", listed)
	}

	shown, err := run(t, "library", "show", savedID)
	if err != nil {
		t.Fatalf("library show: %v", err)
	}
	if !strings.Contains(shown, "Quarterly review [completed]") || !strings.Contains(shown, "10 participants") {
		t.Fatalf("unexpected library show output:\n%s", shown)
	}

	token, err := run(t, "library", "share", savedID)
	if err != nil {
		t.Fatalf("library share: %v", err)
	}
	if strings.TrimSpace(token) == "" {
		t.Fatal("expected a share token")
	}

	if _, err := run(t, "generate", "--hours", "1", "--participants", "4"); err != nil {
		t.Fatalf("generate orphan: %v", err)
	}
	cleaned, err := run(t, "cleanup")
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if !strings.Contains(cleaned, "Removed 0 duplicate entries and 1 orphaned agendas") {
		t.Fatalf("unexpected cleanup output: %q", cleaned)
	}

	if _, err := run(t, "library", "delete", savedID); err != nil {
		t.Fatalf("library delete: %v", err)
	}
	if _, err := run(t, "library", "show", savedID); err == nil {
		t.Fatal("expected show to fail after delete")
	}
}
