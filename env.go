package main

import (
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type env interface {
	getenv(key string) string
	environ() []string
	getwd() string
	exepath() string
	stdin() io.Reader
	stdout() io.Writer
	stderr() io.Writer
	run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error
	exec(cmd *command) error
}

type processEnv struct {
	wd  string
	exe string
}

func newProcessEnv() (env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, wrapErrorwithSourceLocf(err, "failed to read working directory")
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, wrapErrorwithSourceLocf(err, "failed to locate own executable")
	}
	if evaled, err := filepath.EvalSymlinks(exe); err == nil {
		exe = evaled
	}
	return &processEnv{wd: wd, exe: exe}, nil
}

var _ env = (*processEnv)(nil)

func (env *processEnv) getenv(key string) string {
	return os.Getenv(key)
}

func (env *processEnv) environ() []string {
	return os.Environ()
}

func (env *processEnv) getwd() string {
	return env.wd
}

func (env *processEnv) exepath() string {
	return env.exe
}

func (env *processEnv) stdin() io.Reader {
	return os.Stdin
}

func (env *processEnv) stdout() io.Writer {
	return os.Stdout
}

func (env *processEnv) stderr() io.Writer {
	return os.Stderr
}

// exec replaces the launcher process with the resolved tool. The tool
// inherits our file descriptors, environment, working directory and
// signal disposition, so the build executor observes exactly what it
// would have observed without the launcher in between.
func (env *processEnv) exec(cmd *command) error {
	argv := append([]string{cmd.path}, cmd.args...)
	return unix.Exec(cmd.path, argv, env.environ())
}

// run spawns the tool and waits for it. Stdout and stderr are connected
// to the given writers; when those are the launcher's own *os.File
// streams the child writes to them directly, unbuffered. Termination
// signals received while the child runs are forwarded so that killing
// a build also kills in-flight compiles.
func (env *processEnv) run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	execCmd := newExecCmd(env, cmd)
	execCmd.Stdin = stdin
	execCmd.Stdout = stdout
	execCmd.Stderr = stderr

	// Catch termination signals before the child exists; one arriving
	// during startup stays buffered and is forwarded once the child
	// runs instead of taking the default disposition.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT)
	if err := execCmd.Start(); err != nil {
		signal.Stop(sigCh)
		return err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				_ = execCmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()
	err := execCmd.Wait()
	close(done)
	signal.Stop(sigCh)
	return err
}

// verboseEnv echoes every command to the diagnostic channel before
// handing it to the underlying env.
type verboseEnv struct {
	env
}

var _ env = (*verboseEnv)(nil)

func (env *verboseEnv) exec(cmd *command) error {
	printCmd(env, cmd)
	return env.env.exec(cmd)
}

func (env *verboseEnv) run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	printCmd(env, cmd)
	return env.env.run(cmd, stdin, stdout, stderr)
}

func printCmd(env env, cmd *command) {
	diagf(env, "RUN: cd '%s' && %s", env.getwd(), shellJoin(append([]string{cmd.path}, cmd.args...)))
}
