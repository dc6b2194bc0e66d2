// Package trimtest provides the shared testscript harness the root
// package's end-to-end scripts build on: the same git/as/at/squash
// helper commands internal/git/gittest backs its own unit tests with,
// plus the default Git identity and config every script needs so
// commits are reproducible and remote-tracking state resolves without
// a real network.
//
// The scripts themselves live at the repository root (testdata/script),
// alongside the script_test.go that drives them, because
// testscript.RunMain must run in the same package as func main.
package trimtest

import (
	"github.com/rogpeppe/go-internal/testscript"

	"github.com/gitutil/trim/internal/git/gittest"
)

// Cmds is the set of custom testscript commands every git-trim
// end-to-end script can use, on top of testscript's built-ins.
func Cmds() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"git":    gittest.CmdGit,
		"as":     gittest.CmdAs,
		"at":     gittest.CmdAt,
		"squash": gittest.CmdSquash,
	}
}

// Setup configures the default Git identity and repository settings for
// every script run, mirroring internal/git/gittest's fixture defaults
// so end-to-end scripts see the same environment the unit-level git
// fixtures do.
func Setup(e *testscript.Env) error {
	env := gittest.DefaultConfig().EnvMap()
	env["EDITOR"] = "false"
	env["GIT_AUTHOR_NAME"] = "Test"
	env["GIT_AUTHOR_EMAIL"] = "test@example.com"
	env["GIT_COMMITTER_NAME"] = "Test"
	env["GIT_COMMITTER_EMAIL"] = "test@example.com"

	for k, v := range env {
		e.Setenv(k, v)
	}
	return nil
}
