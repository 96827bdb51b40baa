package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kanban-cli/internal/editor"
	"kanban-cli/internal/model"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"KANBAN_DIR", "KANBAN_BACKEND", "KANBAN_FORMAT", "KANBAN_CONFIG", "KANBAN_LOG_LEVEL", "KANBAN_LOG_FILE"} {
		t.Setenv(k, "")
	}
	t.Setenv("KANBAN_CONFIG_DIR", t.TempDir())
	return t.TempDir()
}

// mustRun runs the CLI and decodes the {"data": ...} envelope.
func mustRun(t *testing.T, args ...string) any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: kanban %v\nerr: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout: %v\nstdout:\n%s", err, stdout)
	}
	data, ok := env["data"]
	if !ok {
		t.Fatalf("expected data key, got %s", stdout)
	}
	return data
}

func decodeBoard(t *testing.T, v any) model.Board {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var b model.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	return b
}

func TestBoardShowSeedsFreshDir(t *testing.T) {
	dir := isolateEnv(t)
	b := decodeBoard(t, mustRun(t, "--dir", dir, "board", "show"))
	if len(b.Lists) != 2 || b.Lists[0].Title != "To Do" || b.Lists[1].Cards[0].Title != "Task 2" {
		t.Fatalf("unexpected seed board: %+v", b)
	}
}

func TestCardLifecycle(t *testing.T) {
	dir := isolateEnv(t)

	list := mustRun(t, "--dir", dir, "lists", "add", "Done").(map[string]any)
	doneID, _ := list["id"].(string)
	if !strings.HasPrefix(doneID, "list-") {
		t.Fatalf("expected generated list id, got %v", list)
	}

	card := mustRun(t, "--dir", dir, "cards", "add", "1", "Write", "docs", "--description", "first *pass*").(map[string]any)
	cardID, _ := card["id"].(string)
	if !strings.HasPrefix(cardID, "card-") || card["title"] != "Write docs" || card["priority"] != "Medium" {
		t.Fatalf("unexpected card: %v", card)
	}

	// To Do = [Task 1, Write docs]; move Task 1 behind it.
	b := decodeBoard(t, mustRun(t, "--dir", dir, "cards", "move", "1", "0", "1", "1"))
	if b.Lists[0].Cards[0].ID != cardID || b.Lists[0].Cards[1].ID != "1" {
		t.Fatalf("unexpected order after move: %+v", b.Lists[0].Cards)
	}

	b = decodeBoard(t, mustRun(t, "--dir", dir, "cards", "move-to", cardID, doneID, "0"))
	if l, _ := b.FindList(doneID); len(l.Cards) != 1 || l.Cards[0].ID != cardID {
		t.Fatalf("card not in Done: %+v", l)
	}

	updated := mustRun(t, "--dir", dir, "cards", "update", cardID, "--priority", "high", "--label", "green", "--role", "admin").(map[string]any)
	if updated["priority"] != "High" || updated["label"] != "Green" || updated["role"] != "admin" {
		t.Fatalf("unexpected update: %v", updated)
	}
	cleared := mustRun(t, "--dir", dir, "cards", "update", cardID, "--clear-label").(map[string]any)
	if cleared["label"] != nil {
		t.Fatalf("label should be cleared: %v", cleared)
	}

	mustRun(t, "--dir", dir, "cards", "checklist", "add", cardID, "outline")
	mustRun(t, "--dir", dir, "cards", "checklist", "add", cardID, "draft")
	mustRun(t, "--dir", dir, "cards", "checklist", "toggle", cardID, "1")
	withItems := mustRun(t, "--dir", dir, "cards", "checklist", "rm", cardID, "0").(map[string]any)
	items, _ := withItems["checklist"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["text"] != "draft" || items[0].(map[string]any)["completed"] != true {
		t.Fatalf("unexpected checklist: %v", withItems["checklist"])
	}

	b = decodeBoard(t, mustRun(t, "--dir", dir, "members", "add", "Alice"))
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			if !c.HasMember("Alice") {
				t.Fatalf("card %s missing Alice", c.ID)
			}
		}
	}

	mustRun(t, "--dir", dir, "cards", "rm", cardID)
	b = decodeBoard(t, mustRun(t, "--dir", dir, "board", "show"))
	if _, _, ok := b.FindCard(cardID); ok {
		t.Fatalf("card %s should be removed", cardID)
	}
}

func TestRejectionsExitNonZeroAndKeepBoard(t *testing.T) {
	dir := isolateEnv(t)
	before := decodeBoard(t, mustRun(t, "--dir", dir, "board", "show"))

	for _, args := range [][]string{
		{"--dir", dir, "lists", "add", "   "},
		{"--dir", dir, "cards", "add", "1", " "},
		{"--dir", dir, "cards", "update", "1", "--priority", "urgent"},
		{"--dir", dir, "members", "add", " "},
		{"--dir", dir, "cards", "checklist", "add", "1", " "},
	} {
		_, stderr, err := runCLI(t, args)
		if err == nil {
			t.Fatalf("expected error for %v", args)
		}
		if !strings.Contains(string(stderr), "rejected") {
			t.Fatalf("expected rejection message for %v, got %q", args, stderr)
		}
	}

	after := decodeBoard(t, mustRun(t, "--dir", dir, "board", "show"))
	if !jsonEqual(before, after) {
		t.Fatalf("board changed after rejected input:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestNotFoundAndRangeErrors(t *testing.T) {
	dir := isolateEnv(t)
	cases := map[string][]string{
		"card not found: nope": {"--dir", dir, "cards", "rm", "nope"},
		"list not found: zzz":  {"--dir", dir, "cards", "add", "zzz", "title"},
		"out of range":         {"--dir", dir, "cards", "move", "1", "5", "2", "0"},
		"not an integer":       {"--dir", dir, "cards", "move", "1", "x", "2", "0"},
	}
	for want, args := range cases {
		_, stderr, err := runCLI(t, args)
		if err == nil || !strings.Contains(string(stderr), want) {
			t.Fatalf("args %v: expected %q, got err=%v stderr=%q", args, want, err, stderr)
		}
	}
}

func TestExportImportReset(t *testing.T) {
	dir := isolateEnv(t)
	mustRun(t, "--dir", dir, "lists", "add", "Later")
	file := filepath.Join(t.TempDir(), "export.json")

	info := mustRun(t, "--dir", dir, "board", "export", file).(map[string]any)
	if info["lists"] != float64(3) || info["cards"] != float64(2) {
		t.Fatalf("unexpected export summary: %v", info)
	}

	reset := decodeBoard(t, mustRun(t, "--dir", dir, "board", "reset"))
	if len(reset.Lists) != 2 {
		t.Fatalf("reset should restore the default board: %+v", reset)
	}

	imported := decodeBoard(t, mustRun(t, "--dir", dir, "board", "import", file))
	if len(imported.Lists) != 3 || imported.Lists[2].Title != "Later" {
		t.Fatalf("import did not restore the exported board: %+v", imported)
	}
}

func TestImportRejectsInvalidFile(t *testing.T) {
	dir := isolateEnv(t)
	file := filepath.Join(t.TempDir(), "bad.json")
	if err := writeFile(file, `{"lists":[{"id":"a","title":"A"},{"id":"a","title":"B"}]}`); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "board", "import", file}); err == nil {
		t.Fatalf("expected duplicate list ids to be refused")
	}
}

func TestUnreadableBoardIsRefused(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "board.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, stderr, err := runCLI(t, []string{"--dir", dir, "lists", "add", "Later"})
	if err == nil || !strings.Contains(string(stderr), "board unavailable") {
		t.Fatalf("expected refusal, got err=%v stderr=%q", err, stderr)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Fatalf("board path should be untouched: %v", err)
	}
}

func TestBoardStats(t *testing.T) {
	dir := isolateEnv(t)
	mustRun(t, "--dir", dir, "cards", "update", "1", "--priority", "High")
	mustRun(t, "--dir", dir, "cards", "checklist", "add", "1", "step")
	stats := mustRun(t, "--dir", dir, "board", "stats").(map[string]any)

	if stats["lists"] != float64(2) || stats["cards"] != float64(2) || stats["checklistTotal"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}
	byPriority, _ := stats["byPriority"].(map[string]any)
	if byPriority["High"] != float64(1) || byPriority["Medium"] != float64(1) {
		t.Fatalf("unexpected priority counts: %v", byPriority)
	}
}

func TestOutputFormatsAndRender(t *testing.T) {
	dir := isolateEnv(t)

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "lists", "ls"})
	if err != nil || !strings.Contains(string(stdout), "title: To Do") {
		t.Fatalf("yaml output: err=%v\n%s", err, stdout)
	}
	stdout, _, err = runCLI(t, []string{"--dir", dir, "--format", "edn", "cards", "show", "1"})
	if err != nil || !strings.Contains(string(stdout), `:title "Task 1"`) {
		t.Fatalf("edn output: err=%v\n%s", err, stdout)
	}
	stdout, _, err = runCLI(t, []string{"--dir", dir, "cards", "show", "1", "--render"})
	if err != nil || !strings.Contains(string(stdout), "Task") || strings.HasPrefix(string(stdout), "{") {
		t.Fatalf("render output: err=%v\n%s", err, stdout)
	}
}

func TestSQLiteBackend(t *testing.T) {
	dir := isolateEnv(t)
	mustRun(t, "--dir", dir, "--backend", "sqlite", "lists", "add", "Done")
	b := decodeBoard(t, mustRun(t, "--dir", dir, "--backend", "sqlite", "board", "show"))
	if len(b.Lists) != 3 {
		t.Fatalf("sqlite board should keep the new list: %+v", b)
	}
}

func TestWatchOnce(t *testing.T) {
	dir := isolateEnv(t)
	b := decodeBoard(t, mustRun(t, "--dir", dir, "watch", "--once"))
	if len(b.Lists) != 2 {
		t.Fatalf("unexpected board: %+v", b)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "--backend", "sqlite", "watch", "--once"}); err == nil {
		t.Fatalf("watch should require the file backend")
	}
}

func TestApplyEditValues(t *testing.T) {
	c := model.NewCard("c1", "Old", "")
	ed := editor.Begin(c)
	v := formValuesFromCard(c)
	v.Title = "New"
	v.Priority = "High"
	v.Label = "Blue"
	if err := applyEditValues(ed, v); err != nil {
		t.Fatalf("applyEditValues: %v", err)
	}
	got := ed.Card()
	if got.Title != "New" || got.Priority != model.PriorityHigh || got.Label == nil || *got.Label != model.LabelBlue {
		t.Fatalf("unexpected staged card: %+v", got)
	}

	v.Role = "owner"
	if err := applyEditValues(editor.Begin(c), v); err == nil {
		t.Fatalf("expected invalid role to be refused")
	}
}
