package tools

import "strings"

// JoinCommand renders argv as a single POSIX shell command line.
func JoinCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return ShellQuote(cmd)
	}

	var builder strings.Builder
	builder.WriteString(ShellQuote(cmd))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(ShellQuote(arg))
	}

	return builder.String()
}

// ShellQuote wraps value in single quotes so a POSIX shell reads it literally.
func ShellQuote(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
