package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

// askConfirm shows a yes/no question. A zero timeout waits forever.
// Tests replace it.
var askConfirm = func(ctx context.Context, title, description string, timeout time.Duration) (bool, error) {
	var yes bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&yes),
		),
	)
	if timeout > 0 {
		form = form.WithTimeout(timeout)
	}
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return yes, nil
}

// askSecret reads a secret without echo, or a line from stdin when stdin
// is not a terminal. Tests replace it.
var askSecret = func(title string) (string, error) {
	if !isTerminal(os.Stdin) {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, 64<<10))
		if err != nil {
			return "", fmt.Errorf("reading secret from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("value cannot be empty")
			}
			return nil
		}).
		Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// isAbort reports whether err means the user walked away from a prompt.
func isAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted) || errors.Is(err, huh.ErrTimeout)
}
