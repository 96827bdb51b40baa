package board

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"kanban-cli/internal/model"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// uniqueID draws ids until one is unused on b.
func uniqueID(b model.Board, gen func(string) (string, error), prefix string) (string, error) {
	for attempt := 0; attempt < 32; attempt++ {
		id, err := gen(prefix)
		if err != nil {
			return "", err
		}
		id = strings.TrimSpace(id)
		if id != "" && !b.HasID(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique %s id", prefix)
}
