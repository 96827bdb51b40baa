package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/config"
	"kanban-cli/internal/model"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBoard() model.Board {
	red := model.LabelRed
	b := model.Board{Lists: []model.List{
		{ID: "todo", Title: "To Do", Cards: []model.Card{
			{
				ID: "c1", Title: "Write docs", Description: "## Intro\nfirst pass",
				Priority: model.PriorityHigh, Label: &red,
				Members:   []string{"Alice", "Bob"},
				Checklist: []model.ChecklistItem{{Text: "outline", Completed: true}, {Text: "draft"}},
				Role:      model.RoleAdmin,
			},
			model.NewCard("c2", "Review", ""),
		}},
		{ID: "doing", Title: "In Progress", Cards: []model.Card{}},
		{ID: "done", Title: "Done", Cards: []model.Card{model.NewCard("c3", "Ship", "v1")}},
	}}
	b.Normalize()
	return b
}

func TestFileAdapter_AbsentThenRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := NewFileAdapter(t.TempDir())

	_, err := a.Load(ctx)
	require.ErrorIs(t, err, board.ErrAbsent)

	want := sampleBoard()
	require.NoError(t, a.Save(ctx, want))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"label": null`)
	assert.Contains(t, string(raw), `"members": []`)
}

func TestFileAdapter_EmptyFileIsAbsent(t *testing.T) {
	a := NewFileAdapter(t.TempDir())
	require.NoError(t, os.WriteFile(a.Path, []byte("  \n"), 0o644))
	_, err := a.Load(context.Background())
	assert.ErrorIs(t, err, board.ErrAbsent)
}

func TestFileAdapter_CorruptData(t *testing.T) {
	cases := map[string]string{
		"malformed":  `{"lists": [`,
		"wrong type": `{"lists": {"id": "x"}}`,
		"bad enum":   `{"lists": [{"id": "l", "title": "L", "cards": [{"id": "c", "title": "t", "priority": "Urgent"}]}]}`,
		"blank id":   `{"lists": [{"id": "", "title": "L"}]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewFileAdapter(t.TempDir())
			require.NoError(t, os.WriteFile(a.Path, []byte(content), 0o644))
			_, err := a.Load(context.Background())
			require.Error(t, err)
			assert.True(t, board.IsCorrupt(err), "expected corrupt error, got %v", err)
		})
	}
}

func TestFileAdapter_LegacyShapeIsNormalized(t *testing.T) {
	a := NewFileAdapter(t.TempDir())
	legacy := `{"lists":[{"id":"1","title":"To Do","cards":[{"id":"1","title":"Task 1","description":""}]}]}`
	require.NoError(t, os.WriteFile(a.Path, []byte(legacy), 0o644))

	got, err := a.Load(context.Background())
	require.NoError(t, err)
	c := got.Lists[0].Cards[0]
	assert.Equal(t, model.PriorityMedium, c.Priority)
	assert.Equal(t, model.RoleViewer, c.Role)
	assert.Empty(t, c.Members)
	assert.NotNil(t, c.Members)
}

func TestFileAdapter_UnreadableFileIsNotCorrupt(t *testing.T) {
	dir := t.TempDir()
	a := NewFileAdapter(dir)
	require.NoError(t, os.Mkdir(a.Path, 0o755))

	_, err := a.Load(context.Background())
	require.Error(t, err)
	assert.False(t, board.IsCorrupt(err))
	assert.NotErrorIs(t, err, board.ErrAbsent)

	s := board.NewStore(a)
	assert.Equal(t, model.SeedBoard(), s.Initialize(context.Background()))
	assert.Error(t, s.PersistErr())

	info, err := os.Stat(a.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "unreadable board path must be left alone")
	matches, err := filepath.Glob(filepath.Join(dir, BoardFileName+".corrupt-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStoreInitialize_QuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	a := NewFileAdapter(dir)
	require.NoError(t, os.WriteFile(a.Path, []byte("not json"), 0o644))

	s := board.NewStore(a)
	got := s.Initialize(context.Background())
	assert.Equal(t, model.SeedBoard(), got)

	reloaded, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SeedBoard(), reloaded)

	matches, err := filepath.Glob(filepath.Join(dir, BoardFileName+".corrupt-*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "not json", string(raw))
}

func TestFileAdapter_WatchSignalsOnSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := NewFileAdapter(t.TempDir())

	ch, err := a.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Save(ctx, sampleBoard()))
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected change signal after save")
	}

	cancel()
	for range ch {
	}
}

func TestSQLiteAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), SQLiteFileName)
	a, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Load(ctx)
	require.ErrorIs(t, err, board.ErrAbsent)

	want := sampleBoard()
	require.NoError(t, a.Save(ctx, want))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Replace-all: a second save with fewer lists drops the old rows.
	smaller := model.Board{Lists: []model.List{want.Lists[2]}}
	require.NoError(t, a.Save(ctx, smaller))
	got, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, got)
}

func TestSQLiteAdapter_EmptyBoardIsNotAbsent(t *testing.T) {
	ctx := context.Background()
	a, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), SQLiteFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Save(ctx, model.Board{}))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Lists)
}

func TestSQLiteAdapter_CorruptRowQuarantined(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), SQLiteFileName)
	a, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Save(ctx, sampleBoard()))
	_, err = a.db.ExecContext(ctx, `UPDATE cards SET json = '{broken' WHERE id = 'c1'`)
	require.NoError(t, err)

	_, err = a.Load(ctx)
	require.True(t, board.IsCorrupt(err), "expected corrupt error, got %v", err)

	s := board.NewStore(a)
	assert.Equal(t, model.SeedBoard(), s.Initialize(ctx))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SeedBoard(), got)

	matches, _ := filepath.Glob(path + ".corrupt-*")
	assert.Len(t, matches, 1)
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	a := NewRedisAdapter(client, "")
	assert.Equal(t, config.DefaultRedisKey, a.Key())

	_, err := a.Load(ctx)
	require.ErrorIs(t, err, board.ErrAbsent)

	want := sampleBoard()
	require.NoError(t, a.Save(ctx, want))
	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := mr.Get(config.DefaultRedisKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"title": "Write docs"`)
}

func TestRedisAdapter_CorruptKeyQuarantined(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	require.NoError(t, mr.Set("team:board", "{oops"))
	a := NewRedisAdapter(client, "team:board")

	s := board.NewStore(a)
	assert.Equal(t, model.SeedBoard(), s.Initialize(ctx))

	var quarantined []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "team:board:corrupt:") {
			quarantined = append(quarantined, k)
		}
	}
	require.Len(t, quarantined, 1)
	raw, err := mr.Get(quarantined[0])
	require.NoError(t, err)
	assert.Equal(t, "{oops", raw)

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.SeedBoard(), got)
}

func TestRedisAdapter_QuarantineMissingKeyIsNoop(t *testing.T) {
	mr, client := newMiniRedis(t)
	a := NewRedisAdapter(client, "k")
	assert.NoError(t, a.Quarantine(context.Background()))
	assert.Empty(t, mr.Keys())
}

func TestRedisAdapter_TransientErrorKeepsStoredBoard(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	a := NewRedisAdapter(client, "team:board")
	want := sampleBoard()
	require.NoError(t, a.Save(ctx, want))

	mr.SetError("ERR backend unavailable")
	s := board.NewStore(a)
	assert.Equal(t, model.SeedBoard(), s.Initialize(ctx))
	assert.Error(t, s.PersistErr())
	mr.SetError("")

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"team:board"}, mr.Keys())
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ad, closeFn, err := Open(ctx, config.Config{Dir: dir, Backend: config.BackendFile})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	fa, ok := ad.(*FileAdapter)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, BoardFileName), fa.Path)

	ad, closeFn, err = Open(ctx, config.Config{Dir: dir, Backend: config.BackendSQLite})
	require.NoError(t, err)
	_, ok = ad.(*SQLiteAdapter)
	assert.True(t, ok)
	require.NoError(t, closeFn())

	mr, _ := newMiniRedis(t)
	ad, closeFn, err = Open(ctx, config.Config{Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Key: "x"}})
	require.NoError(t, err)
	ra, ok := ad.(*RedisAdapter)
	require.True(t, ok)
	assert.Equal(t, "x", ra.Key())
	require.NoError(t, closeFn())

	_, closeFn, err = Open(ctx, config.Config{Backend: "postgres"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
