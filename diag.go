package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// Diagnostic lines carry a fixed prefix so they are trivially separable
// from the wrapped tool's own output. Ninja and other build executors
// parse compiler stderr; the tag makes launcher chatter filterable and
// is colorized only when stderr is an interactive terminal.
const diagTag = ">>> [jackman]"

var diagStyle = color.New(color.FgYellow, color.OpBold)

func diagf(env env, format string, v ...interface{}) {
	tag := diagTag
	if f, ok := env.stderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tag = diagStyle.Sprint(diagTag)
	}
	fmt.Fprintf(env.stderr(), "%s %s\n", tag, fmt.Sprintf(format, v...))
}
