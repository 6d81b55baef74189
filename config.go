package main

import "strings"

// Environment variables recognized by the launcher. Everything else in
// the environment is passed through to the wrapped tool untouched.
const (
	// envVerbose echoes the fully resolved command line to the
	// diagnostic channel before the tool runs.
	envVerbose = "JACKMAN_VERBOSE"
	// envDebugPerf emits a wall-clock timing line after the tool
	// finishes.
	envDebugPerf = "JACKMAN_DEBUG_PERF"
	// envRewrite enables hash-aliasing of long path arguments.
	envRewrite = "JACKMAN_REWRITE"
	// envRewriteRsp additionally rewrites response file contents.
	envRewriteRsp = "JACKMAN_REWRITE_RSP"
	// envPrefix sets the alias directory, relative to the build
	// directory the tool is invoked in.
	envPrefix = "JACKMAN_PREFIX"
)

const defaultAliasPrefix = "_jackman"

// runtimeConfig is computed once at process entry and passed explicitly
// to the components that need it. It is immutable for the process
// lifetime; separate build steps run as separate processes and share
// nothing.
type runtimeConfig struct {
	verbose      bool
	debugPerf    bool
	rewritePaths bool
	rewriteRsp   bool
	aliasPrefix  string
}

// readConfig never fails: a compile step must not be blocked by a
// malformed diagnostic flag, so absent or unusable values fall back to
// their defaults.
func readConfig(env env) *runtimeConfig {
	prefix := env.getenv(envPrefix)
	if len(prefix) < 2 {
		prefix = defaultAliasPrefix
	}
	return &runtimeConfig{
		verbose:      envEnabled(env, envVerbose),
		debugPerf:    envEnabled(env, envDebugPerf),
		rewritePaths: envEnabled(env, envRewrite),
		rewriteRsp:   envEnabled(env, envRewriteRsp),
		aliasPrefix:  prefix,
	}
}

// envEnabled treats a set, non-empty value as enabled unless it spells
// out a negative.
func envEnabled(env env, key string) bool {
	switch strings.ToLower(env.getenv(key)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
