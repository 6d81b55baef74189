package main

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// command is the invocation to hand to the real tool: the tool path as
// supplied by the build system plus its argument vector, verbatim and
// in order. Arguments are never parsed, reordered or re-quoted; any
// mutation here would silently change compiler semantics.
type command struct {
	path string
	args []string
}

// newLauncherCommand splits the launcher's own argument vector into
// the wrapped tool invocation. argv[0] is the launcher itself, argv[1]
// the real tool, the rest the tool's arguments.
func newLauncherCommand(argv []string) (*command, error) {
	if len(argv) == 0 {
		return nil, newUserErrorf("empty argument vector")
	}
	if len(argv) < 2 {
		return nil, newUserErrorf("no tool to launch; usage: %s <tool> [args...]", filepath.Base(argv[0]))
	}
	return &command{
		path: argv[1],
		args: argv[2:],
	}, nil
}

func newExecCmd(env env, cmd *command) *exec.Cmd {
	execCmd := exec.Command(cmd.path, cmd.args...)
	execCmd.Env = env.environ()
	execCmd.Dir = env.getwd()
	return execCmd
}

type stepKind int

const (
	stepUnknown stepKind = iota
	stepCompile
	stepLink
)

func (kind stepKind) String() string {
	switch kind {
	case stepCompile:
		return "compile"
	case stepLink:
		return "link"
	default:
		return "tool"
	}
}

// kind labels the invocation as a compile or link step for diagnostics.
// This is a heuristic over the tool name and argument shapes and is
// advisory only: it never influences whether or how the tool runs.
func (cmd *command) kind() stepKind {
	base := filepath.Base(cmd.path)
	if base == "ld" || base == "lld" || strings.HasSuffix(base, "-ld") || strings.HasPrefix(base, "ld.") {
		return stepLink
	}
	sawObjectInput := false
	for _, arg := range cmd.args {
		switch arg {
		case "-c", "-S", "-E":
			return stepCompile
		}
		switch filepath.Ext(arg) {
		case ".o", ".obj", ".a", ".so":
			if !strings.HasPrefix(arg, "-") {
				sawObjectInput = true
			}
		}
	}
	// A driver invocation fed object files but no -c is the link step.
	if sawObjectInput {
		return stepLink
	}
	return stepUnknown
}

func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
