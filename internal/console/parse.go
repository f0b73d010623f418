package console

import (
	"strings"

	"github.com/holsten/loom/internal/loomerrors"
)

// verbAliases maps shorthand verbs to their canonical forms, mirroring the
// single-word convenience aliases a player would expect at a prompt.
var verbAliases = map[string]string{
	"L":    "LOAD",
	"S":    "STEP",
	"ST":   "STATE",
	"R":    "RULES",
	"F":    "FIND",
	"Q":    "QUIT",
	"EXIT": "QUIT",
	"BYE":  "QUIT",
	"?":    "HELP",
	"H":    "HELP",
}

// ParseCommand parses a single line of console input into a Command. An
// empty or whitespace-only line yields the zero Command and a nil error.
func ParseCommand(line string) (Command, error) {
	var cmd Command

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return cmd, nil
	}

	verb := strings.ToUpper(fields[0])
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	args := fields[1:]

	switch verb {
	case "LOAD":
		if len(args) != 1 {
			return cmd, loomerrors.Loadf("LOAD takes exactly one program path")
		}
	case "STEP", "STATE", "RULES", "QUIT", "HELP":
		if len(args) > 0 {
			return cmd, loomerrors.Loadf("%s takes no arguments", verb)
		}
	case "FIND":
		if len(args) < 1 || len(args) > 5 {
			return cmd, loomerrors.Loadf("FIND takes between 1 and 5 atoms")
		}
	case "SIDE":
		if len(args) != 1 {
			return cmd, loomerrors.Loadf("SIDE takes exactly one registration name")
		}
	default:
		return cmd, loomerrors.Loadf("%q is not a known command; try HELP", fields[0])
	}

	cmd.Verb = verb
	cmd.Args = args
	return cmd, nil
}
