package main

import (
	"os"
	"regexp"
	"strings"

	"kanbanflow/internal/cli"
)

// Demo-board ids (c1, c12) and generated ids (card-xxxxxxxx).
var cardIDRe = regexp.MustCompile(`^(?:c\d+|card-[0-9a-z]+)$`)

// Root persistent flags, split by whether they consume the next token.
var (
	valueFlags = map[string]bool{
		"--config":    true,
		"--actor":     true,
		"--seed":      true,
		"--format":    true,
		"--log-level": true,
		"--out-seed":  true,
	}
	boolFlags = map[string]bool{
		"--pretty": true,
	}
)

func isCardID(s string) bool {
	return cardIDRe.MatchString(strings.TrimSpace(s))
}

// rewriteDirectCardLookupArgs makes `kanbanflow <card-id>` behave like
// `kanbanflow cards show <card-id>`. Cobra treats the first positional token as a
// subcommand, so argv is rewritten before parsing. Persistent flags may come first.
func rewriteDirectCardLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "cards", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isCardID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			// Unknown flags are skipped without consuming a value.
			continue
		}

		if isCardID(a) {
			return rewrite(i)
		}
		return argv
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
