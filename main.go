// jackman is a transparent compiler/linker launcher for CMake+Ninja builds.
//
// Install it as the build system's launcher, e.g.:
//
//	cmake -DCMAKE_C_COMPILER_LAUNCHER=jackman -DCMAKE_CXX_COMPILER_LAUNCHER=jackman ...
//
// The build executor then invokes `jackman <real-tool> <args...>` for every
// compile and link step. jackman resolves the real tool (skipping itself on
// PATH), optionally traces and times the invocation, and hands off with the
// tool's exact argument vector, so that build output and exit status are
// identical to an unwrapped build.
//
// Configuration is via environment variables only; see config.go.
package main

import (
	"os"
)

func main() {
	env, err := newProcessEnv()
	if err != nil {
		// A launcher-internal failure, before any tool ran; exit
		// with the reserved code, not something a compiler could
		// have produced.
		printLauncherError(os.Stderr, err)
		os.Exit(launcherFailureCode)
	}
	cfg := readConfig(env)
	// Note: runLauncher will exec the real tool unless timing is
	// requested. Only on an error or in timing mode will this
	// os.Exit be reached.
	os.Exit(runLauncher(env, cfg, os.Args))
}
