// Package command builds and runs the shell command lines used to drive an
// external image tool.
//
// A command line is built from a command name and a list of argument tokens.
// Switch tokens (those starting with "-" or "+") are written as-is so the
// tool still recognizes them; every other token is double-quoted so that
// paths and values containing spaces or shell metacharacters arrive as a
// single argument.
//
//	line := command.Line("mogrify", "-resize", "50%", "/tmp/my image.png")
//	// mogrify -resize "50%" "/tmp/my image.png"
//
// # Execution
//
// Runner parses a command line with mvdan.cc/sh and executes it in-process;
// external programs are started as ordinary subprocesses. Standard output and
// standard error are captured into one combined buffer. A default timeout can
// be configured per Runner. Each external program runs in its own process
// group; when the timeout expires the whole group is interrupted, then killed
// after a short grace period, and the Result reports TimedOut. Delegates the
// program spawned are stopped with it, so the call returns within the timeout
// plus the grace period.
//
// Runner never retries. Every call makes exactly one attempt.
package command
