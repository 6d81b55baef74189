package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// Rewrite mode reroutes long file-path arguments through short symlink
// aliases created under the alias prefix in the build directory. CMake
// object paths repeat the source tree layout under CMakeFiles/ and can
// exceed tool or filesystem argument limits; aliasing the directory
// component caps the length while the symlink keeps the tool reading
// and writing the original locations. Recognition of path arguments is
// a heuristic: anything it does not recognize passes through as-is, and
// the build still succeeds since unaliased paths are merely long.

// An argument still longer than this after rewriting means the
// heuristic needs a new case; failing loudly beats handing the tool an
// argument it may truncate silently.
const maxArgumentLength = 240

// Alias directory names are hex BLAKE3 digests of this many bytes.
const aliasHashBytes = 8

type rewriter struct {
	env env
	cfg *runtimeConfig
}

func newRewriter(env env, cfg *runtimeConfig) *rewriter {
	return &rewriter{env: env, cfg: cfg}
}

func hashDir(path string) string {
	h := blake3.New(aliasHashBytes, nil)
	h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}

// aliasForDir maps a directory to its alias under the prefix, relative
// to the build directory.
func (rw *rewriter) aliasForDir(dir string) string {
	return filepath.Join(rw.cfg.aliasPrefix, hashDir(dir))
}

func (rw *rewriter) aliasForFile(path string) string {
	return filepath.Join(rw.aliasForDir(filepath.Dir(path)), filepath.Base(path))
}

// ensureAlias creates the alias symlink for dir. Concurrent build steps
// race on the same alias, so the link is created under a per-process
// temporary name and moved into place with rename, which atomically
// replaces any link a sibling process got there first with.
func (rw *rewriter) ensureAlias(dir string) error {
	alias := rw.aliasForDir(dir)
	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(rw.env.getwd(), dir)
	}
	tmp := filepath.Join(rw.env.getwd(), fmt.Sprintf("%s.tmp.%d", alias, os.Getpid()))
	if err := os.Symlink(target, tmp); err != nil {
		return wrapErrorwithSourceLocf(err, "failed to create alias symlink for %s", dir)
	}
	if err := os.Rename(tmp, filepath.Join(rw.env.getwd(), alias)); err != nil {
		return wrapErrorwithSourceLocf(err, "failed to move alias symlink for %s into place", dir)
	}
	return nil
}

func isLibraryFile(arg string) bool {
	switch filepath.Ext(arg) {
	case ".a", ".so", ".dylib", ".lib":
		return true
	}
	return false
}

const rpathPrefix = "-Wl,-rpath,"

func (rw *rewriter) rewrite(args []string) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(rw.env.getwd(), rw.cfg.aliasPrefix), 0o777); err != nil {
		return nil, wrapErrorwithSourceLocf(err, "failed to create alias prefix directory %s", rw.cfg.aliasPrefix)
	}

	var out []string
	n := len(args)
	for i := 0; i < n; {
		curr := args[i]
		next := ""
		hasNext := i+1 < n
		if hasNext {
			next = args[i+1]
		}

		isRsp := false
		isFile := true

		if len(curr) < 2 {
			out = append(out, curr)
			i++
			continue
		}

		switch {
		case curr == "-c" || curr == "-o":
			out = append(out, curr)
			if !hasNext {
				return out, nil
			}
			curr = next
			i += 2
		case strings.HasPrefix(curr, "-I") || strings.HasPrefix(curr, "-L"):
			// Handles the joined and split spellings alike; the
			// flag and its directory are forwarded separately.
			out = append(out, curr[:2])
			isFile = false
			if rest := curr[2:]; rest != "" {
				curr = rest
				i++
			} else if hasNext {
				curr = next
				i += 2
			} else {
				return out, nil
			}
		case strings.HasPrefix(curr, rpathPrefix):
			dir := curr[len(rpathPrefix):]
			if err := rw.ensureAlias(dir); err != nil {
				return nil, err
			}
			out = append(out, rpathPrefix+filepath.Join(rw.env.getwd(), rw.aliasForDir(dir)))
			i++
			continue
		case curr[0] == '@':
			if !strings.HasSuffix(curr, ".rsp") {
				// Likely an rpath-style argument, not a response
				// file; pass as-is.
				out = append(out, curr)
				i++
				continue
			}
			isRsp = true
			// The response file path itself gets aliased below,
			// without the @ prefix.
			path := curr[1:]
			if rw.cfg.rewriteRsp {
				rewritten, err := rw.rewriteRspContents(path)
				if err != nil {
					return nil, err
				}
				curr = rewritten
			} else {
				curr = path
			}
			i++
		case isLibraryFile(curr):
			// Positional argument, usually a library on the link
			// line.
			i++
		case strings.Contains(curr, "CMakeFiles"):
			switch filepath.Ext(curr) {
			case ".d", ".o", ".dep":
			default:
				return nil, newUserErrorf("unknown CMakeFiles file type: %s", curr)
			}
			i++
		default:
			// Anything the heuristic does not recognize is passed
			// as-is.
			out = append(out, curr)
			i++
			continue
		}

		// From here on curr is a file or directory path to shorten.
		var originalDir, rewritten string
		if isFile {
			originalDir = filepath.Dir(curr)
			rewritten = rw.aliasForFile(curr)
			if isRsp {
				rewritten = "@" + rewritten
			}
		} else {
			originalDir = curr
			rewritten = rw.aliasForDir(curr)
		}
		if err := rw.ensureAlias(originalDir); err != nil {
			return nil, err
		}
		out = append(out, rewritten)
	}
	return out, nil
}

// rewriteRspContents aliases every path listed in a response file and
// writes the result next to the original, returning the new path. The
// alias symlinks for the listed paths are expected to exist already,
// created when the corresponding compile steps ran.
func (rw *rewriter) rewriteRspContents(path string) (string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(rw.env.getwd(), path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", wrapErrorwithSourceLocf(err, "failed to read response file %s", path)
	}

	var aliased []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		aliased = append(aliased, rw.aliasForFile(line))
	}

	outPath := filepath.Join(filepath.Dir(path), "_jacked_"+filepath.Base(path))
	outFull := outPath
	if !filepath.IsAbs(outFull) {
		outFull = filepath.Join(rw.env.getwd(), outPath)
	}
	if err := os.WriteFile(outFull, []byte(strings.Join(aliased, "\n")), 0o666); err != nil {
		return "", wrapErrorwithSourceLocf(err, "failed to write response file %s", outPath)
	}
	for _, entry := range aliased {
		if len(entry) > maxArgumentLength {
			return "", newUserErrorf("response file %s contains paths too long even after aliasing: %q", outPath, entry)
		}
	}
	return outPath, nil
}

func checkArgumentLengths(args []string) error {
	for _, arg := range args {
		if len(arg) > maxArgumentLength {
			return newUserErrorf("argument %q is %d characters long (max %d); the rewrite heuristic needs a case for it",
				arg, len(arg), maxArgumentLength)
		}
	}
	return nil
}
