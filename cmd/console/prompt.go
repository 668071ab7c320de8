package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword prompts on w and reads a line from the terminal without echo.
func readPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// promptPassword returns given when set, otherwise asks on the terminal.
// Without a terminal the empty string is returned and the console decides.
func (e *environment) promptPassword(given, prompt string) (string, error) {
	if given != "" || !e.isTerminal() {
		return given, nil
	}
	return e.readPassword(prompt)
}
