package main

import (
	"fmt"
	"io"
)

// launcherFailureCode is returned for failures of the launcher itself,
// before the real tool ever produced an exit status: empty invocation,
// tool not found, spawn failure, rewrite guard. It deliberately sits
// outside the codes compilers commonly exit with, so the harness can
// tell "the wrapper broke" from "the compiler failed".
const launcherFailureCode = 125

func runLauncher(env env, cfg *runtimeConfig, argv []string) int {
	exitCode, err := runLauncherInternal(env, cfg, argv)
	if err != nil {
		printLauncherError(env.stderr(), err)
		return launcherFailureCode
	}
	return exitCode
}

func runLauncherInternal(env env, cfg *runtimeConfig, argv []string) (exitCode int, err error) {
	inputCmd, err := newLauncherCommand(argv)
	if err != nil {
		return 0, err
	}

	args := inputCmd.args
	if cfg.rewritePaths {
		if args, err = newRewriter(env, cfg).rewrite(args); err != nil {
			return 0, err
		}
		if err := checkArgumentLengths(args); err != nil {
			return 0, err
		}
	}

	toolPath, err := resolveTool(env, inputCmd.path)
	if err != nil {
		return 0, err
	}
	toolCmd := &command{path: toolPath, args: args}

	if cfg.verbose {
		env = &verboseEnv{env}
	}

	if !cfg.debugPerf {
		// Nothing left to do after the tool finishes, so hand the
		// process over entirely. A real exec never returns; test
		// envs redirect exec to run and give us the wait error.
		execErr := env.exec(toolCmd)
		if exitCode, ok := getExitCode(execErr); ok {
			return exitCode, nil
		}
		return 0, wrapErrorwithSourceLocf(execErr, "failed to exec %s", toolCmd.path)
	}

	result, err := timedRun(env, toolCmd)
	if err != nil {
		return 0, err
	}
	diagf(env, "PERF: %s %s: %.2f ms (exit %d)",
		inputCmd.kind(), toolCmd.path, float64(result.elapsed.Microseconds())/1000.0, result.exitCode)
	return result.exitCode, nil
}

func printLauncherError(writer io.Writer, err error) {
	if _, ok := err.(userError); ok {
		fmt.Fprintf(writer, "jackman: %s\n", err)
	} else {
		fmt.Fprintf(writer, "jackman: internal error: %s\n", err)
	}
}
