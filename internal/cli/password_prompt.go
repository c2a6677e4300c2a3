package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errPasswordConfirmation = errors.New("passwords do not match")

// PromptNewPassword reads a password twice from the terminal without echo.
func PromptNewPassword(stdin *os.File, out io.Writer) (string, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--prompt requires an interactive terminal")
	}
	return promptNewPassword(func() ([]byte, error) { return term.ReadPassword(fd) }, out)
}

func promptNewPassword(read func() ([]byte, error), out io.Writer) (string, error) {
	fmt.Fprint(out, "New password: ")
	first, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	second, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errPasswordConfirmation
	}
	return string(first), nil
}
