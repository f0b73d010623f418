package console

import (
	"bufio"
	"fmt"

	"github.com/holsten/loom/internal/loomerrors"
)

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of input. It will block until one is
	// ready. If there is an error or input is at end (EOF), the returned
	// string will be empty; otherwise it will be non-empty unless blank
	// lines have been allowed with AllowBlank.
	ReadCommand() (string, error)

	// AllowBlank sets whether a blank line is a valid read result.
	AllowBlank(allow bool)

	// Close performs any operations required to clean up resources created
	// by the Reader. It should be called at least once when the Reader is
	// no longer needed.
	Close() error
}

// Get obtains a single Command from cmdStream. It reads a line of input and
// attempts to parse it as a valid command, returning that command if
// successful. If parsing fails, an error message is written to ostream and
// the input is read again until a valid command is obtained.
func Get(cmdStream Reader, ostream *bufio.Writer) (Command, error) {
	var cmd Command
	gotValidCommand := false

	for !gotValidCommand {
		line, err := cmdStream.ReadCommand()
		if err != nil {
			return cmd, fmt.Errorf("could not get input: %w", err)
		}

		cmd, err = ParseCommand(line)
		if err != nil {
			errMsg := fmt.Sprintf("%v\nTry HELP for valid commands\n", loomerrors.Message(err))
			if _, err := ostream.WriteString(errMsg); err != nil {
				return cmd, fmt.Errorf("could not write output: %w", err)
			}
			if err := ostream.Flush(); err != nil {
				return cmd, fmt.Errorf("could not flush output: %w", err)
			}
		} else if cmd.Verb != "" {
			gotValidCommand = true
		}
	}

	return cmd, nil
}
