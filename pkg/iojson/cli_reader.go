package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned by Read when there is neither a file nor piped stdin.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use --file or pipe JSON")

// FileReader decodes a JSON value of type T from the file given by its flag,
// or from stdin when stdin is not a terminal.
type FileReader[T any] struct {
	path  string
	stdin *os.File
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "read the request from a JSON file (stdin when piped)",
		TakesFile:   true,
		Destination: &fr.path,
	}
}

func (fr *FileReader[T]) input() *os.File {
	if fr.stdin != nil {
		return fr.stdin
	}
	return os.Stdin
}

// Available reports whether Read has an input: a file was given or stdin is
// piped.
func (fr *FileReader[T]) Available() bool {
	return fr.path != "" || !term.IsTerminal(int(fr.input().Fd()))
}

func (fr *FileReader[T]) Read() (T, error) {
	var (
		input  T
		reader io.Reader
	)

	switch {
	case fr.path != "":
		f, err := os.Open(fr.path)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	case term.IsTerminal(int(fr.input().Fd())):
		return input, ErrNoInput
	default:
		reader = fr.input()
	}

	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
