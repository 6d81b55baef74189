package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// These tests spawn real processes through processEnv to pin down the
// exit-code and stream contracts the build executor relies on.

func newTestProcessEnv(t *testing.T) *processEnv {
	t.Helper()
	env, err := newProcessEnv()
	if err != nil {
		t.Fatal(err)
	}
	return env.(*processEnv)
}

func shCommand(script string) *command {
	return &command{path: "/bin/sh", args: []string{"-c", script}}
}

func TestProcessEnvRunExitCode(t *testing.T) {
	t.Parallel()
	env := newTestProcessEnv(t)
	err := env.run(shCommand("exit 42"), nil, nil, nil)
	exitCode, ok := getExitCode(err)
	if !ok {
		t.Fatalf("expected a tool exit, got %s", err)
	}
	if exitCode != 42 {
		t.Errorf("expected exit code 42, got %d", exitCode)
	}
}

func TestProcessEnvRunSuccess(t *testing.T) {
	t.Parallel()
	env := newTestProcessEnv(t)
	err := env.run(shCommand("exit 0"), nil, nil, nil)
	if exitCode, ok := getExitCode(err); !ok || exitCode != 0 {
		t.Errorf("expected exit code 0, got %d (ok=%t, err=%v)", exitCode, ok, err)
	}
}

func TestProcessEnvRunSignalTermination(t *testing.T) {
	t.Parallel()
	env := newTestProcessEnv(t)
	// SIGTERM is 15; death by signal maps to 128+15.
	err := env.run(shCommand("kill -TERM $$"), nil, nil, nil)
	exitCode, ok := getExitCode(err)
	if !ok {
		t.Fatalf("expected a tool exit, got %s", err)
	}
	if exitCode != 143 {
		t.Errorf("expected exit code 143, got %d", exitCode)
	}
}

// Killing a build must also kill in-flight tools: a termination signal
// delivered to the launcher while the child runs is forwarded to it.
// Deliberately not parallel; the self-delivered SIGTERM must not reach
// other tests' children.
func TestProcessEnvRunForwardsTerminationToChild(t *testing.T) {
	env := newTestProcessEnv(t)
	go func() {
		time.Sleep(300 * time.Millisecond)
		_ = unix.Kill(os.Getpid(), unix.SIGTERM)
	}()
	start := time.Now()
	err := env.run(shCommand("sleep 30"), nil, nil, nil)
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("child outlived the signal by %s; forwarding did not happen", elapsed)
	}
	exitCode, ok := getExitCode(err)
	if !ok {
		t.Fatalf("expected a tool exit, got %s", err)
	}
	if exitCode != 143 {
		t.Errorf("expected exit code 143, got %d", exitCode)
	}
}

func TestProcessEnvRunKeepsStreamsSeparate(t *testing.T) {
	t.Parallel()
	env := newTestProcessEnv(t)
	var stdout, stderr bytes.Buffer
	err := env.run(shCommand("echo to-out; echo to-err >&2"), nil, &stdout, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if got := stdout.String(); got != "to-out\n" {
		t.Errorf("unexpected stdout: %q", got)
	}
	if got := stderr.String(); got != "to-err\n" {
		t.Errorf("unexpected stderr: %q", got)
	}
}

func TestProcessEnvRunSpawnFailure(t *testing.T) {
	t.Parallel()
	env := newTestProcessEnv(t)
	err := env.run(&command{path: "/nonexistent/tool"}, nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := getExitCode(err); ok {
		t.Errorf("a spawn failure must not look like a tool exit: %s", err)
	}
}

func TestVerboseEnvPrintsBeforeRunning(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		env := &verboseEnv{ctx}
		cmd := &command{path: "/usr/bin/gcc", args: []string{"-c", "a b.c"}}
		if err := env.run(cmd, nil, nil, nil); err != nil {
			t.Fatal(err)
		}
		out := ctx.stderrBuffer.String()
		if !strings.Contains(out, diagTag) {
			t.Errorf("expected the diagnostic tag, got %s", out)
		}
		if !strings.Contains(out, "'/usr/bin/gcc' '-c' 'a b.c'") {
			t.Errorf("expected the quoted command line, got %s", out)
		}
	})
}
