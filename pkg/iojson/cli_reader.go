package iojson

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file was given and stdin is a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f flag or pipe JSON input")

// Reader reads a JSON document from the file named by its flag, or from
// stdin when the flag is empty.
type Reader struct {
	path  string
	stdin io.Reader
	isTTY func() bool
}

// Flag returns the -f/--file flag bound to the reader. name overrides the
// flag name when non-empty.
func (r *Reader) Flag(name string) *cli.StringFlag {
	if name == "" {
		name = "file"
	}
	return &cli.StringFlag{
		Name:        name,
		Aliases:     aliasFor(name),
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &r.path,
	}
}

// Path returns the file named on the command line, if any.
func (r *Reader) Path() string {
	return r.path
}

// ReadBytes returns the raw document.
func (r *Reader) ReadBytes() ([]byte, error) {
	if r.path != "" {
		data, err := os.ReadFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return data, nil
	}

	stdin := r.stdin
	if stdin == nil {
		if r.terminal() {
			return nil, ErrNoInput
		}
		stdin = os.Stdin
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// Decode reads the document and hands it to decode.
func Decode[T any](r *Reader, decode func([]byte) (T, error)) (T, error) {
	data, err := r.ReadBytes()
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(data)
}

func (r *Reader) terminal() bool {
	if r.isTTY != nil {
		return r.isTTY()
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func aliasFor(name string) []string {
	if name == "file" {
		return []string{"f"}
	}
	return nil
}
