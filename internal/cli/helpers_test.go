package cli

import (
	"bytes"
	"encoding/json"
	"os"
)

func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
