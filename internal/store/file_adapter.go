package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"

	"github.com/fsnotify/fsnotify"
)

const BoardFileName = "board.json"

// FileAdapter keeps the board as a single JSON document on disk.
type FileAdapter struct {
	Path string
}

func NewFileAdapter(dir string) *FileAdapter {
	return &FileAdapter{Path: filepath.Join(dir, BoardFileName)}
}

func (a *FileAdapter) Load(ctx context.Context) (model.Board, error) {
	if err := ctx.Err(); err != nil {
		return model.Board{}, err
	}
	raw, err := os.ReadFile(a.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Board{}, board.ErrAbsent
		}
		return model.Board{}, fmt.Errorf("read %s: %w", a.Path, err)
	}
	return decodeBoard(raw, a.Path)
}

func (a *FileAdapter) Save(ctx context.Context, b model.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeBoard(b)
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	return atomicWriteFile(a.Path, raw, 0o644)
}

// Quarantine copies the current file aside as board.json.corrupt-<unixms> so the next
// save does not destroy it.
func (a *FileAdapter) Quarantine(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(a.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	dest := fmt.Sprintf("%s.corrupt-%d", a.Path, time.Now().UTC().UnixMilli())
	return CopyFile(a.Path, dest)
}

// Watch signals on the returned channel whenever the board file is written, created,
// renamed into place or removed. The channel closes when ctx is done.
// Bursts are coalesced: at most one pending signal is buffered.
func (a *FileAdapter) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: atomic saves replace the file, which drops a file watch.
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	name := filepath.Clean(a.Path)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
