// Package loom's root package wires the rewrite engine in internal/loom to
// an interactive console, reading commands until QUIT.
package loom

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/holsten/loom/internal/console"
	"github.com/holsten/loom/internal/input"
	loomengine "github.com/holsten/loom/internal/loom"
	"github.com/holsten/loom/internal/loomerrors"
)

// Engine contains the things needed to drive a loaded program from an
// interactive shell attached to an input stream and an output stream.
type Engine struct {
	ctx         *loomengine.Context
	in          console.Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool

	// registeredSides holds the set of side-predicate head names the SIDE
	// console command has told the engine to answer affirmatively, echoing
	// the ground pattern back as the reply. This is a test aid, not a
	// general-purpose oracle.
	registeredSides map[string]bool

	rng *rand.Rand
}

// New creates a new Engine ready to operate on the given input and output
// streams, with no program yet loaded; LOAD must be issued before STEP.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin.
// If nil is given for the output stream, a bufio.Writer is opened on
// stdout.
func New(inputStream io.Reader, outputStream io.Writer, seed int64, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	eng := &Engine{
		out:             bufio.NewWriter(outputStream),
		forceDirect:     forceDirectInput,
		registeredSides: make(map[string]bool),
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	var err error
	if useReadline {
		eng.in, err = input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	eng.rng = rand.New(rand.NewSource(seed))
	ctx, err := loomengine.FromText("", eng.rng)
	if err != nil {
		return nil, fmt.Errorf("initializing empty program: %w", err)
	}
	eng.ctx = ctx

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running console engine")
	}

	if err := eng.in.Close(); err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}
	return nil
}

// RunUntilQuit begins reading commands from the streams and applying them
// until the QUIT command is received.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "loom console\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "============\n"
	introMsg += "Try HELP for commands.\n"

	if err := eng.writeFlush(introMsg); err != nil {
		return err
	}

	eng.running = true
	defer func() { eng.running = false }()

	eng.in.AllowBlank(false)
	for eng.running {
		cmd, err := console.Get(eng.in, eng.out)
		if err != nil {
			return fmt.Errorf("get console command: %w", err)
		}

		if cmd.Verb == "QUIT" {
			eng.running = false
			break
		}

		if err := eng.dispatch(cmd); err != nil {
			if err := eng.writeFlush(loomerrors.Message(err) + "\n"); err != nil {
				return err
			}
		}
	}

	return eng.writeFlush("Goodbye\n")
}

func (eng *Engine) dispatch(cmd Command) error {
	switch cmd.Verb {
	case "HELP":
		return eng.writeFlush(helpText)
	case "LOAD":
		return eng.cmdLoad(cmd.Args[0])
	case "STEP":
		return eng.cmdStep()
	case "STATE", "RULES":
		return eng.writeFlush(eng.ctx.Print())
	case "FIND":
		return eng.cmdFind(cmd.Args)
	case "SIDE":
		eng.registeredSides[cmd.Args[0]] = true
		return eng.writeFlush(fmt.Sprintf("registered canned reply for side predicate %q\n", cmd.Args[0]))
	default:
		return loomerrors.Loadf("%q is not a known command; try HELP", cmd.Verb)
	}
}

// Command is re-exported so callers of this package do not need to import
// internal/console directly.
type Command = console.Command

const helpText = `LOAD <path>   load a program from a text file
STEP          run the driver loop to quiescence
STATE         print current state facts and loaded rules
RULES         same as STATE
FIND <atoms>  positional prefix lookup into state
SIDE <name>   answer side predicates named <name> affirmatively
QUIT          exit the console
`

func (eng *Engine) cmdLoad(path string) error {
	if err := eng.Load(path); err != nil {
		return err
	}
	return eng.writeFlush(fmt.Sprintf("loaded %q: %d rules, %d initial facts\n", path, len(eng.ctx.Program.Rules), len(eng.ctx.Program.InitialState)))
}

// Load reads program text from path and replaces the Engine's current
// Context with a freshly loaded one, preserving the Engine's RNG stream. It
// is exported so a host program can pre-load a program before handing
// control to RunUntilQuit, e.g. via a -p/--program flag.
func (eng *Engine) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return loomerrors.WrapLoad(err, fmt.Sprintf("could not read %q", path), err.Error())
	}

	ctx, err := loomengine.FromText(string(data), eng.rng)
	if err != nil {
		return loomerrors.WrapLoad(err, fmt.Sprintf("could not load program from %q", path), err.Error())
	}

	eng.ctx = ctx
	return nil
}

func (eng *Engine) cmdStep() error {
	cb := eng.sideCallback()
	if err := eng.ctx.Step(cb); err != nil {
		return err
	}
	return eng.writeFlush("ok\n")
}

func (eng *Engine) cmdFind(atoms []string) error {
	phrases := eng.ctx.FindPhrases(atoms[0], atoms[1:]...)
	if len(phrases) == 0 {
		return eng.writeFlush("no match\n")
	}

	var b strings.Builder
	for _, p := range phrases {
		b.WriteString(eng.ctx.PhraseText(p))
		b.WriteString("\n")
	}
	return eng.writeFlush(b.String())
}

func (eng *Engine) sideCallback() loomengine.SideCallback {
	return func(pattern loomengine.Phrase) (loomengine.Phrase, bool) {
		head := eng.ctx.TextOf(pattern.Head().Text)
		if !eng.registeredSides[head] {
			return nil, false
		}
		return pattern, true
	}
}

func (eng *Engine) writeFlush(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return eng.out.Flush()
}
