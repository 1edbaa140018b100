package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// killGrace is how long a cancelled command gets to exit after the interrupt
// before its process group is killed and its output pipes are closed.
const killGrace = 2 * time.Second

// execHandler runs external programs for the interpreter. Each program is
// started in its own process group so that a timeout stops the program and
// every delegate it spawned, not just the direct child.
func (r *Runner) execHandler(_ interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)

		path, err := interp.LookPathDir(hc.Dir, hc.Env, args[0])
		if err != nil {
			fmt.Fprintln(hc.Stderr, err)
			return interp.ExitStatus(127)
		}

		cmd := exec.CommandContext(ctx, path, args[1:]...)
		cmd.Args[0] = args[0]
		cmd.Dir = hc.Dir
		cmd.Env = execEnv(hc.Env)
		cmd.Stdout = hc.Stdout
		cmd.Stderr = hc.Stderr
		cmd.WaitDelay = killGrace
		setProcessGroup(cmd)

		r.logger.Trace().Strs("argv", args).Msg("exec")

		err = cmd.Run()
		if ctx.Err() != nil {
			// The interrupt may have been ignored, or the direct child may
			// have exited while its children kept running.
			killProcessGroup(cmd)
		}

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &exitErr):
			return exitStatus(exitErr.ExitCode())
		case errors.Is(err, exec.ErrWaitDelay):
			// The program exited but a leftover process held its output open.
			return exitStatus(cmd.ProcessState.ExitCode())
		case cmd.Process == nil:
			fmt.Fprintln(hc.Stderr, err)
			return interp.ExitStatus(126)
		default:
			return err
		}
	}
}

// exitStatus converts a process exit code into an interpreter status.
// Processes ended by a signal report -1 and map to status 1.
func exitStatus(code int) error {
	switch {
	case code == 0:
		return nil
	case code < 0 || code > 255:
		return interp.ExitStatus(1)
	default:
		return interp.ExitStatus(uint8(code))
	}
}

// execEnv lists the exported string variables of env as KEY=VALUE pairs.
func execEnv(env expand.Environ) []string {
	var list []string
	env.Each(func(name string, vr expand.Variable) bool {
		if vr.Exported && vr.Kind == expand.String {
			list = append(list, name+"="+vr.Str)
		}
		return true
	})
	return list
}
