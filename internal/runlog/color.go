package runlog

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorMode controls ANSI color output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ResolveColor determines whether to emit ANSI color codes.
// Priority: PLUGTRACE_COLOR env > NO_COLOR env > auto-detect stderr TTY.
func ResolveColor() ColorMode {
	if v := os.Getenv("PLUGTRACE_COLOR"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return ColorOn
		case "0", "false", "no", "off":
			return ColorOff
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return ColorOff
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return ColorOn
	}
	return ColorOff
}

// ANSI escape helpers — return the input unchanged when color is off.

func Red(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[31m" + s + "\033[0m"
	}
	return s
}

func Green(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

func Yellow(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[33m" + s + "\033[0m"
	}
	return s
}

func Blue(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[34m" + s + "\033[0m"
	}
	return s
}

func Magenta(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[35m" + s + "\033[0m"
	}
	return s
}

func Cyan(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[36m" + s + "\033[0m"
	}
	return s
}

func Bold(s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[1m" + s + "\033[0m"
	}
	return s
}
