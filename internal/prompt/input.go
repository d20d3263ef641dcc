package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// ErrCancelled is returned when the user aborts input with Ctrl+C or EOF.
var ErrCancelled = errors.New("cancelled by user")

// Prompter interface wraps basic prompting functionality for testability
type Prompter interface {
	Prompt(string) (string, error)
	Close() error
}

// LinerPrompter wraps liner.State to implement Prompter interface
type LinerPrompter struct {
	*liner.State
}

// NewLinerPrompter creates a liner-based prompter that completes words from completions.
func NewLinerPrompter(completions []string) *LinerPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var matches []string
		for _, word := range completions {
			if strings.HasPrefix(word, strings.ToLower(input)) {
				matches = append(matches, word)
			}
		}
		return matches
	})
	return &LinerPrompter{State: line}
}

// Prompt reads one line and records non-empty lines in history.
func (p *LinerPrompter) Prompt(prompt string) (string, error) {
	result, err := p.State.Prompt(prompt)
	if err != nil {
		return "", err //nolint:wrapcheck // classified by ReadLine
	}
	if strings.TrimSpace(result) != "" {
		p.AppendHistory(result)
	}
	return result, nil
}

// ReadLine prompts with a colored prompt and trims the answer.
func ReadLine(prompter Prompter, prompt string) (string, error) {
	result, err := prompter.Prompt(color.CyanString(prompt + " "))
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("text input failed: %w", err)
	}
	return strings.TrimSpace(result), nil
}

// Fields splits a line into whitespace-separated words. Single or double
// quotes group words, so patterns containing spaces can be entered.
func Fields(line string) ([]string, error) {
	var fields []string
	var current strings.Builder
	var quote rune
	inField := false

	for _, r := range line {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inField = true
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}
