package dev

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user a yes/no question. The supervisor's startup logic
// takes a Confirmer so tests run without terminal I/O.
type Confirmer interface {
	Confirm(prompt string, def bool) (bool, error)
}

// StdioConfirmer prompts on out and reads a single answer line from in.
type StdioConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints the prompt with a [Y/n] or [y/N] suffix and parses the
// answer. An empty answer picks the default; anything that is not an
// affirmative counts as a decline.
func (c *StdioConfirmer) Confirm(prompt string, def bool) (bool, error) {
	suffix := "[Y/n]"
	if !def {
		suffix = "[y/N]"
	}
	fmt.Fprintf(c.Out, "? %s %s ", prompt, suffix)

	reader := bufio.NewReader(c.In)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false, err
	}

	return ParseAnswer(answer, def), nil
}

// ParseAnswer interprets a yes/no answer: trimmed, case-insensitive, empty
// picks the default, "y"/"yes" accepts, everything else declines.
func ParseAnswer(answer string, def bool) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	switch answer {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
