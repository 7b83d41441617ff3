package db

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ErrNoPassword is returned by LookupPassword when there is nowhere to get a
// password from.
var ErrNoPassword = errors.New("password is required: set it in the connection source or PGPASSWORD")

// LookupPassword retrieves the database password when the connection source
// has none, using the following precedence:
// 1. PGPASSWORD environment variable, if set and non-empty
// 2. Interactive prompt, when stdin is a terminal
func LookupPassword() (string, error) {
	if pw := os.Getenv("PGPASSWORD"); pw != "" {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoPassword
	}

	password, err := promptForPassword(fd, "Enter database password: ")
	if err != nil {
		return "", fmt.Errorf("interactive password prompt failed: %w", err)
	}
	return password, nil
}

// promptForPassword prompts the user to enter a password interactively
// The password input is hidden from the terminal
func promptForPassword(fd int, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprintln(os.Stderr) // Print newline after password input

	password := string(passwordBytes)
	if password == "" {
		return "", fmt.Errorf("empty password entered")
	}

	return password, nil
}
