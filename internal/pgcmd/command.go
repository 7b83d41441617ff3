// Package pgcmd builds and runs invocations of the PostgreSQL client tools.
package pgcmd

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command is one external process invocation, kept as an explicit list of
// argument tokens. Nothing is ever interpolated into a shell string.
type Command struct {
	// Name is the executable, looked up in PATH.
	Name string
	Args []string
	// Env holds KEY=value pairs added to the child's environment only.
	Env []string
	// RunAs, when set, runs the command as that OS account through sudo.
	RunAs string
	// Secrets are values replaced by "***" in Redacted.
	Secrets []string
}

// Argv returns the full argument vector, including the sudo prefix.
func (c Command) Argv() []string {
	var argv []string
	if c.RunAs != "" {
		argv = append(argv, "sudo", "-i", "-u", c.RunAs)
	}
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command as a shell would need it typed, with the
// injected environment in front.
func (c Command) String() string {
	return shellquote.Join(c.tokens()...)
}

// Redacted is String with every secret masked.
func (c Command) Redacted() string {
	tokens := c.tokens()
	for i, tok := range tokens {
		for _, secret := range c.Secrets {
			if secret != "" {
				tok = strings.ReplaceAll(tok, secret, "***")
			}
		}
		tokens[i] = tok
	}
	return shellquote.Join(tokens...)
}

func (c Command) tokens() []string {
	tokens := make([]string, 0, len(c.Env)+len(c.Args)+5)
	tokens = append(tokens, c.Env...)
	return append(tokens, c.Argv()...)
}
