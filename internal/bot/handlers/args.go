package handlers

import (
	"errors"
	"strings"
)

// errMalformedArgs indicates a command was invoked with missing or extra
// arguments. Handlers answer it with the command's usage string.
var errMalformedArgs = errors.New("malformed command arguments")

// stripCommand removes the leading command (with an optional @botname
// suffix) from the message text.
func stripCommand(text, command string) (string, bool) {
	if !strings.HasPrefix(text, command) {
		return "", false
	}
	rest := text[len(command):]
	if strings.HasPrefix(rest, "@") {
		if idx := strings.IndexAny(rest, " \t\n"); idx != -1 {
			rest = rest[idx:]
		} else {
			rest = ""
		}
	}
	if rest != "" && !strings.ContainsAny(rest[:1], " \t\n") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// parsePairArgs extracts exactly two whitespace-separated arguments from a
// command invocation, e.g. "/addfilter old new".
func parsePairArgs(text, command string) (string, string, error) {
	rest, ok := stripCommand(text, command)
	if !ok {
		return "", "", errMalformedArgs
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return "", "", errMalformedArgs
	}
	return fields[0], fields[1], nil
}

// parseSingleArg extracts exactly one argument from a command invocation,
// e.g. "/delfilter old".
func parseSingleArg(text, command string) (string, error) {
	rest, ok := stripCommand(text, command)
	if !ok {
		return "", errMalformedArgs
	}
	fields := strings.Fields(rest)
	if len(fields) != 1 {
		return "", errMalformedArgs
	}
	return fields[0], nil
}

// isNumericReply reports whether text looks like a bare selection reply:
// an optionally signed integer with no other content.
func isNumericReply(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	start := 0
	if text[0] == '-' || text[0] == '+' {
		if len(text) == 1 {
			return false
		}
		start = 1
	}
	for i := start; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}
