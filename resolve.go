package main

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// fileIdentity identifies a file by device and inode. The launcher may
// be installed under the wrapped tool's own name via symlink, so
// excluding ourselves during resolution must compare identities, not
// names or paths.
type fileIdentity struct {
	dev uint64
	ino uint64
}

func identityOf(path string) (fileIdentity, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileIdentity{}, false
	}
	return fileIdentity{dev: uint64(st.Dev), ino: st.Ino}, true
}

func isExecutableFile(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

// resolveTool locates the real tool the build system asked for. The
// build system is configured to invoke the launcher as if it were the
// compiler, so naively resolving the tool by name could find the
// launcher again and recurse forever; every candidate matching the
// launcher's own identity is skipped.
func resolveTool(env env, tool string) (string, error) {
	self, _ := identityOf(env.exepath())

	if strings.ContainsRune(tool, filepath.Separator) {
		abs := tool
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(env.getwd(), abs)
		}
		if id, ok := identityOf(abs); !ok || id != self {
			if isExecutableFile(abs) {
				return abs, nil
			}
			return "", newUserErrorf("tool %q is not an executable file", tool)
		}
		// The explicit path points back at the launcher itself
		// (installed as the tool via symlink). Fall through to a
		// PATH search for the genuine tool under the same name.
		tool = filepath.Base(tool)
	}

	var tried []string
	for _, dir := range filepath.SplitList(env.getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(env.getwd(), dir)
		}
		candidate := filepath.Join(dir, tool)
		tried = append(tried, dir)
		if id, ok := identityOf(candidate); !ok || id == self {
			continue
		}
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	return "", newUserErrorf("tool %q not found on PATH (searched %s; excluded self at %s)",
		tool, strings.Join(tried, ":"), env.exepath())
}
