package main

import "time"

// executionResult captures what happened to the spawned tool. It exists
// only to be reported and to determine the launcher's own exit code.
type executionResult struct {
	exitCode int
	elapsed  time.Duration
}

// timedRun spawns the tool, waits for it, and measures the wall-clock
// duration of the spawn/wait cycle. A tool that ran and failed is not
// an error here; only a failure to run it at all is.
func timedRun(env env, cmd *command) (*executionResult, error) {
	start := time.Now()
	runErr := env.run(cmd, env.stdin(), env.stdout(), env.stderr())
	elapsed := time.Since(start)

	exitCode, ok := getExitCode(runErr)
	if !ok {
		return nil, wrapErrorwithSourceLocf(runErr, "failed to run %s", cmd.path)
	}
	return &executionResult{exitCode: exitCode, elapsed: elapsed}, nil
}
