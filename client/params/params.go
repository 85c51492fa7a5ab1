// Package params supplies the transfer parameters of each round.
package params

import (
	"errors"
	"fmt"
	"go_lan_speed/logging"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Params are chosen once and reused for every round
type Params struct {
	FileSize       uint64 `json:"file_size"`
	UDPConnections int    `json:"udp_connections"`
	TCPConnections int    `json:"tcp_connections"`
}

// Validate checks size is positive and connection counts are not negative
func (p Params) Validate() error {
	if p.FileSize == 0 {
		return errors.New("file size must be a positive integer")
	}
	if p.UDPConnections < 0 {
		return fmt.Errorf("invalid number of UDP connections %d", p.UDPConnections)
	}
	if p.TCPConnections < 0 {
		return fmt.Errorf("invalid number of TCP connections %d", p.TCPConnections)
	}
	return nil
}

// Source supplies parameters
type Source interface {
	Params() (Params, error)
}

// Fixed is a source of parameters given up front, e.g. on the command line
type Fixed Params

func (f Fixed) Params() (Params, error) {
	p := Params(f)
	return p, p.Validate()
}

// ErrNoTerminal is returned by Prompt when stdin cannot be prompted
var ErrNoTerminal = errors.New("no terminal to prompt on: pass the file size with -s")

// Prompt asks for parameters interactively until valid values are entered
type Prompt struct {
	// Ask reads one answer. Nil uses the pterm text input on stdin.
	Ask func(prompt string) (string, error)
}

func (p Prompt) Params() (Params, error) {
	ask := p.Ask
	if ask == nil {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return Params{}, ErrNoTerminal
		}
		ask = showTextInput
	}

	size, err := askUint(ask, "File size to download in bytes (positive integer)", false)
	if err != nil {
		return Params{}, err
	}
	udp, err := askUint(ask, "Number of UDP connections (zero or positive integer)", true)
	if err != nil {
		return Params{}, err
	}
	tcp, err := askUint(ask, "Number of TCP connections (zero or positive integer)", true)
	if err != nil {
		return Params{}, err
	}

	params := Params{FileSize: size, UDPConnections: int(udp), TCPConnections: int(tcp)}
	return params, params.Validate()
}

func showTextInput(prompt string) (string, error) {
	raw, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		Show()
	pterm.Println()
	return raw, err
}

// askUint asks again on invalid numbers. A failing input source ends the prompt.
func askUint(ask func(string) (string, error), prompt string, zero bool) (uint64, error) {
	for {
		raw, err := ask(prompt)
		if err != nil {
			return 0, fmt.Errorf("reading %q: %w", prompt, err)
		}

		value, err := ParseCount(raw, zero)
		if err == nil {
			return value, nil
		}
		logging.LogWarning("%v", err)
	}
}

// ParseCount parses a non-negative integer, rejecting zero unless allowed
func ParseCount(raw string, zero bool) (uint64, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid input %q: please enter a numeric value", raw)
	}
	if value == 0 && !zero {
		return 0, errors.New("value must be a positive integer")
	}
	if value > 1<<31-1 && zero {
		return 0, fmt.Errorf("value %d is too large", value)
	}
	return value, nil
}
