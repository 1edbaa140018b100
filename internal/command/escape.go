package command

import "strings"

// quoteEscaper escapes the characters that keep their special meaning inside
// POSIX double quotes.
var quoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
)

// IsSwitch reports whether arg is a tool switch such as "-resize" or "+repage".
func IsSwitch(arg string) bool {
	return strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "+")
}

// Escape returns arg as it should appear on a command line. Switches are
// returned unchanged; any other value is wrapped in double quotes.
func Escape(arg string) string {
	if IsSwitch(arg) {
		return arg
	}
	return `"` + quoteEscaper.Replace(arg) + `"`
}

// Line joins name and the escaped args into a single command line.
// The name is written verbatim so that a processor prefix such as "gm" or
// "magick" can be part of it.
func Line(name string, args ...string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(Escape(arg))
	}
	return b.String()
}
