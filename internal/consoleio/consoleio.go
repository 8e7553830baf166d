// Package consoleio reads interactive commands for a generation session from
// a terminal or any other input stream, and formats legal-token listings for
// display.
package consoleio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Reader reads a single line of user input at a time.
//
// Reader should not be implemented directly; instead, use [NewDirectReader]
// or [NewInteractiveReader].
type Reader interface {
	// ReadLine blocks until a non-blank line of input is available. If at
	// end of input, the returned string is empty and error is io.EOF. Any
	// other error is returned with an empty string.
	ReadLine() (string, error)

	// Close tears down any resources associated with the Reader. It should
	// be called exactly once when the Reader is no longer needed.
	Close() error
}

// DirectReader implements Reader by reading lines from any io.Reader with no
// editing or history support. It is used when input is not a TTY, such as
// when stdin is piped or redirected.
type DirectReader struct {
	r *bufio.Reader
}

// NewDirectReader creates a DirectReader that reads lines from r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{r: bufio.NewReader(r)}
}

// ReadLine implements Reader.
func (dr *DirectReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
	}

	return line, nil
}

// Close implements Reader. DirectReader owns no resources so this is a
// no-op, but callers should still call it so Reader swaps stay transparent.
func (dr *DirectReader) Close() error {
	return nil
}

// InteractiveReader implements Reader using a GNU-readline-alike so that
// line editing and command history work. It should only be used when
// directly connected to a TTY.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewInteractiveReader creates an InteractiveReader with the given prompt.
// The returned reader must have Close called on it before disposal.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &InteractiveReader{rl: rl}, nil
}

// ReadLine implements Reader.
func (ir *InteractiveReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
	}

	return line, nil
}

// Close implements Reader.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// SetPrompt updates the prompt shown before each read.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.rl.SetPrompt(p)
}
