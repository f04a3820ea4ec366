package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers this binary's own subcommand dispatch under the name
// "ouroboros" so the .txtar scripts under testdata/script can exec it
// in-process, the way the teacher's own CLI would be golden-tested end to
// end rather than through package-internal calls alone.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"ouroboros": func() int { return run(os.Args[1:]) },
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: "testdata/script"})
}
