package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testContext struct {
	t           *testing.T
	tempDir     string
	env         []string
	cfg         *runtimeConfig
	wrapperPath string

	stdinBuffer  bytes.Buffer
	stdoutBuffer bytes.Buffer
	stderrBuffer bytes.Buffer

	// Commands handed to run/exec, in order.
	cmds []*command
	// runHook, when set, supplies the wait error for run/exec.
	runHook func(cmd *command) error
}

func withTestContext(t *testing.T, work func(ctx *testContext)) {
	t.Parallel()
	tempDir := t.TempDir()

	ctx := testContext{
		t:       t,
		tempDir: tempDir,
		cfg:     &runtimeConfig{aliasPrefix: defaultAliasPrefix},
	}
	// The launcher's own executable identity, needed by the resolver
	// for self-exclusion.
	ctx.wrapperPath = filepath.Join(tempDir, "jackman")
	ctx.writeExecutable(ctx.wrapperPath, "")

	work(&ctx)
}

var _ env = (*testContext)(nil)

func (ctx *testContext) getenv(key string) string {
	for i := len(ctx.env) - 1; i >= 0; i-- {
		entry := ctx.env[i]
		if strings.HasPrefix(entry, key+"=") {
			return entry[len(key)+1:]
		}
	}
	return ""
}

func (ctx *testContext) environ() []string {
	return ctx.env
}

func (ctx *testContext) getwd() string {
	return ctx.tempDir
}

func (ctx *testContext) exepath() string {
	return ctx.wrapperPath
}

func (ctx *testContext) stdin() io.Reader {
	return &ctx.stdinBuffer
}

func (ctx *testContext) stdout() io.Writer {
	return &ctx.stdoutBuffer
}

func (ctx *testContext) stderr() io.Writer {
	return &ctx.stderrBuffer
}

func (ctx *testContext) run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	ctx.cmds = append(ctx.cmds, cmd)
	if ctx.runHook != nil {
		return ctx.runHook(cmd)
	}
	return nil
}

// Note: exec is treated the same as run so that tests can observe what
// happens after the call.
func (ctx *testContext) exec(cmd *command) error {
	return ctx.run(cmd, ctx.stdin(), ctx.stdout(), ctx.stderr())
}

func (ctx *testContext) must(exitCode int) {
	if exitCode != 0 {
		ctx.t.Fatalf("expected exit code 0, got %d. stderr: %s",
			exitCode, ctx.stderrBuffer.String())
	}
}

func (ctx *testContext) setPath(dirs ...string) {
	ctx.env = append(ctx.env, "PATH="+strings.Join(dirs, string(os.PathListSeparator)))
}

func (ctx *testContext) writeFile(fullFileName string, fileContent string) string {
	if !filepath.IsAbs(fullFileName) {
		fullFileName = filepath.Join(ctx.tempDir, fullFileName)
	}
	if err := os.MkdirAll(filepath.Dir(fullFileName), 0777); err != nil {
		ctx.t.Fatal(err)
	}
	if err := os.WriteFile(fullFileName, []byte(fileContent), 0666); err != nil {
		ctx.t.Fatal(err)
	}
	return fullFileName
}

func (ctx *testContext) writeExecutable(fullFileName string, fileContent string) string {
	fullFileName = ctx.writeFile(fullFileName, fileContent)
	if err := os.Chmod(fullFileName, 0755); err != nil {
		ctx.t.Fatal(err)
	}
	return fullFileName
}

func (ctx *testContext) symlink(oldname string, newname string) {
	if !filepath.IsAbs(newname) {
		newname = filepath.Join(ctx.tempDir, newname)
	}
	if err := os.MkdirAll(filepath.Dir(newname), 0777); err != nil {
		ctx.t.Fatal(err)
	}
	if err := os.Symlink(oldname, newname); err != nil {
		ctx.t.Fatal(err)
	}
}
