package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/whiskerworthy/dogdiet/internal/ui"
)

// console carries every user-facing notice. Data goes to stdout.
var console = ui.NewConsole(os.Stderr, false)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// errReported marks failures the user has already been shown a notice for.
var errReported = errors.New("reported")

// errInvalidInput marks reported failures caught before any request was sent.
var errInvalidInput = errors.New("invalid input")

func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w: %w", errReported, errInvalidInput, err)
}

// Exit statuses: 1 for failed requests, 2 for input rejected before sending.
const (
	exitFailure      = 1
	exitInvalidInput = 2
)

func exitCode(err error) int {
	if errors.Is(err, errInvalidInput) {
		return exitInvalidInput
	}
	return exitFailure
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWarning(format string, args ...any) {
	console.Prompt(fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	console.Success(fmt.Sprintf(format, args...))
}
