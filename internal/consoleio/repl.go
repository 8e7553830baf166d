package consoleio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/vocab"
)

const consoleOutputWidth = 80

// Session drives an interactive grammar-constrained generation loop over an
// input stream and an output stream.
type Session struct {
	engine      *grammar.ParserEngine
	vocabulary  *vocab.Vocabulary
	in          Reader
	out         *bufio.Writer
	forceDirect bool
	running     bool
}

// NewSession builds a Session reading from inputStream and writing to
// outputStream. If inputStream is os.Stdin, outputStream is os.Stdout, and
// forceDirect is false, input is read with an InteractiveReader; otherwise a
// DirectReader is used.
func NewSession(inputStream io.Reader, outputStream io.Writer, engine *grammar.ParserEngine, vocabulary *vocab.Vocabulary, forceDirect bool) (*Session, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	sess := &Session{
		engine:      engine,
		vocabulary:  vocabulary,
		out:         bufio.NewWriter(outputStream),
		forceDirect: forceDirect,
	}

	useReadline := !forceDirect && inputStream == os.Stdin && outputStream == os.Stdout
	if useReadline {
		ir, err := NewInteractiveReader("> ")
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
		sess.in = ir
	} else {
		sess.in = NewDirectReader(inputStream)
	}

	return sess, nil
}

// Close tears down resources associated with the Session's input reader. It
// must not be called while RunUntilQuit is running.
func (s *Session) Close() error {
	if s.running {
		return fmt.Errorf("cannot close a running session")
	}
	return s.in.Close()
}

func (s *Session) writeLine(format string, a ...interface{}) error {
	if _, err := s.out.WriteString(fmt.Sprintf(format, a...) + "\n"); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return s.out.Flush()
}

// RunUntilQuit reads lines of input until QUIT is entered or input reaches
// end of stream. Each line is interpreted as either a decimal token id to
// accept, LIST to print the current legal-token set, RESET to restart
// generation from the start nonterminal, or QUIT to exit.
func (s *Session) RunUntilQuit() error {
	intro := "constrain REPL"
	if s.forceDirect {
		intro += " (direct input mode)"
	}
	if err := s.writeLine("%s\n================", intro); err != nil {
		return err
	}

	s.running = true
	defer func() { s.running = false }()

	if err := s.printLegal(); err != nil {
		return err
	}

	for s.running {
		line, err := s.in.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read line: %w", err)
		}

		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "QUIT":
			s.running = false
			continue
		case "LIST":
			if err := s.printLegal(); err != nil {
				return err
			}
			continue
		case "RESET":
			s.engine.Reset()
			if err := s.writeLine("(reset)"); err != nil {
				return err
			}
			if err := s.printLegal(); err != nil {
				return err
			}
			continue
		}

		tokID, err := strconv.ParseUint(strings.TrimSpace(line), 10, 32)
		if err != nil {
			if err := s.writeLine("Please enter a token id, LIST, RESET, or QUIT"); err != nil {
				return err
			}
			continue
		}

		res := s.engine.AcceptToken(vocab.ID(tokID))
		switch res.Code {
		case grammar.Rejected:
			if err := s.writeLine("rejected: token %d is not legal here", tokID); err != nil {
				return err
			}
		case grammar.Failed:
			return fmt.Errorf("accept token: %w", res.Err)
		case grammar.End:
			if err := s.writeLine("end of generation reached"); err != nil {
				return err
			}
		default:
			if err := s.printLegal(); err != nil {
				return err
			}
		}
	}

	return s.writeLine("Goodbye")
}

func (s *Session) printLegal() error {
	legal, err := s.engine.NextLegalTokens()
	if err != nil {
		return fmt.Errorf("compute legal tokens: %w", err)
	}
	table := FormatLegalTokens(s.vocabulary, legal, consoleOutputWidth)
	return s.writeLine("%s", table)
}
