package cli

import (
	"fmt"
	"strconv"
	"strings"

	"kanban-cli/internal/board"
)

// rejectedError reports input the store ignored. The board is unchanged.
type rejectedError struct {
	err error
}

func (e rejectedError) Error() string {
	return "rejected: " + e.err.Error()
}

func (e rejectedError) Unwrap() error { return e.err }

// outcomeErr maps a store result to the command's error. Rejections and failed saves
// exit non-zero even though the store itself treats them as recoverable.
func outcomeErr(s *board.Store, res board.Result, err error) error {
	if err != nil {
		return err
	}
	if res.Rejected != nil {
		return rejectedError{err: res.Rejected}
	}
	if res.Changed {
		if perr := s.PersistErr(); perr != nil {
			return perr
		}
	}
	return nil
}

type usageError struct {
	arg    string
	reason string
}

func (e usageError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.arg, e.reason)
}

func parseIndex(arg, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, usageError{arg: arg, reason: fmt.Sprintf("%q is not an integer", s)}
	}
	return n, nil
}
