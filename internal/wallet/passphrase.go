package wallet

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// EnvPassphrase is the environment variable consulted for the keystore passphrase.
const EnvPassphrase = "FORTUNE_PASSPHRASE"

// Source lazily resolves the keystore passphrase from an explicit value, an
// environment variable, or by prompting on the terminal. The value is cached
// after the first successful retrieval.
type Source struct {
	explicit string
	envVar   string

	once  sync.Once
	value string
	err   error
}

// NewSource returns a Source that prefers explicit, then envVar, then a
// no-echo terminal prompt.
func NewSource(explicit, envVar string) *Source {
	return &Source{explicit: explicit, envVar: strings.TrimSpace(envVar)}
}

// Get returns the cached passphrase or resolves it on first call.
// Whitespace-only passphrases are rejected.
func (s *Source) Get() (string, error) {
	s.once.Do(func() {
		if s.explicit != "" {
			s.value = s.explicit
			return
		}
		if s.envVar != "" {
			if value, ok := os.LookupEnv(s.envVar); ok {
				if strings.TrimSpace(value) == "" {
					s.err = fmt.Errorf("%s is set but empty", s.envVar)
					return
				}
				s.value = value
				return
			}
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			if s.envVar != "" {
				s.err = fmt.Errorf("keystore passphrase required; pass -p, set %s or run interactively", s.envVar)
			} else {
				s.err = errors.New("keystore passphrase required and no terminal available")
			}
			return
		}

		fmt.Fprint(os.Stderr, "Enter keystore passphrase: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			s.err = fmt.Errorf("failed to read passphrase: %w", err)
			return
		}

		passphrase := string(b)
		if strings.TrimSpace(passphrase) == "" {
			s.err = errors.New("keystore passphrase cannot be empty")
			return
		}
		s.value = passphrase
	})
	return s.value, s.err
}
