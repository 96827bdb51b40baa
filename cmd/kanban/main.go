package main

import (
	"os"
	"strings"

	"kanban-cli/internal/cli"
)

func isCardID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "card-") && len(s) > len("card-")
}

// rewriteDirectCardLookupArgs turns `kanban <card-id>` into `kanban cards show <card-id>`.
// Cobra treats the first positional token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first, so the first positional token is searched for.
func rewriteDirectCardLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}
	valueFlags := map[string]bool{
		"--config":    true,
		"--dir":       true,
		"--backend":   true,
		"--format":    true,
		"--log-level": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "cards", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isCardID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isCardID(a):
			return insert(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteDirectCardLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
