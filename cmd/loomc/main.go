/*
Loomc starts an interactive loom engine session.

It optionally loads a program file at start, then reads commands from stdin
(LOAD, STEP, STATE, RULES, FIND, SIDE, QUIT) until QUIT is given.

Usage:

	loomc [flags]

The flags are:

	-v, --version
		Give the current version of loom and then exit.

	-p, --program FILE
		Load the given program text file immediately at start.

	-s, --seed INT
		Seed the driver loop's random source. Defaults to 1.

	-d, --direct
	    Force reading directly from the console as opposed to using GNU
		readline based routines for reading command input even if launched
		in a tty with stdin and stdout.

Once a session has started, type HELP for an explanation of the commands. To
exit, type QUIT.
*/
package main

import (
	"fmt"
	"os"

	"github.com/holsten/loom"
	"github.com/holsten/loom/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitRunError indicates an unsuccessful program execution due to a
	// problem during the console session.
	ExitRunError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the engine.
	ExitInitError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	program     *string = pflag.StringP("program", "p", "", "A program text file to load immediately at start")
	seed        *int64  = pflag.Int64P("seed", "s", 1, "Seed for the driver loop's random source")
	forceDirect *bool   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	eng, initErr := loom.New(os.Stdin, os.Stdout, *seed, *forceDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	if *program != "" {
		if err := eng.Load(*program); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	if err := eng.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitRunError
		return
	}
}
