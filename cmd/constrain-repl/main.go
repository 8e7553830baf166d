/*
Constrain-repl starts an interactive token-masking session.

It reads a BNF grammar file and a vocabulary file, builds an engine rooted at
the given start nonterminal, and prints the legal-token set after every
accepted token. Input lines are read from stdin until end of input or the
QUIT command.

Usage:

	constrain-repl [flags]

The flags are:

	-v, --version
		Give the current version of the program and then exit.

	-g, --grammar FILE
		Path to a BNF grammar file. Defaults to "grammar.bnf" in the current
		working directory.

	-t, --vocab FILE
		Path to a newline-delimited vocabulary file. Defaults to "vocab.txt"
		in the current working directory.

	-s, --start NAME
		The start nonterminal to generate from. Defaults to "start".

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading input, even if launched in a tty.

Once a session has started, each line of input is interpreted as a decimal
token id to accept, LIST to print the current legal-token set, RESET to
restart generation, or QUIT to exit.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/constrain/internal/consoleio"
	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/version"
	"github.com/dekarrin/constrain/internal/vocab"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitSessionError indicates an unsuccessful program execution due to a
	// problem during the session.
	ExitSessionError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the engine.
	ExitInitError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarFile *string = pflag.StringP("grammar", "g", "grammar.bnf", "The BNF grammar file to load")
	vocabFile   *string = pflag.StringP("vocab", "t", "vocab.txt", "The newline-delimited vocabulary file to load")
	startName   *string = pflag.StringP("start", "s", "start", "The start nonterminal to generate from")
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

	vocabulary, err := vocab.LoadVocabularyFile(*vocabFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	grammarSrc, err := os.ReadFile(*grammarFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	g, err := grammar.NewGrammar(string(grammarSrc), vocabulary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	engine, err := grammar.NewEngine(g, vocabulary, *startName, grammar.EngineOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	sess, err := consoleio.NewSession(os.Stdin, os.Stdout, engine, vocabulary, *forceDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer sess.Close()

	if err := sess.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitSessionError
		return
	}
}
