package gittest

import (
	"fmt"
	"os/exec"
)

// DefaultConfig is the default Git configuration
// for all test repositories built by LoadFixtureFile.
func DefaultConfig() Config {
	return Config{
		"init.defaultBranch": "main",
		"alias.graph":        "log --graph --decorate --oneline",
		"core.autocrlf":      "false",
		// Fixtures build remote-tracking state with a plain directory
		// remote; file transport must be explicitly allowed.
		"protocol.file.allow": "always",
	}
}

// Config is a set of Git configuration values.
type Config map[string]string

// EnvMap renders the configuration as the GIT_CONFIG_KEY_<n>/
// GIT_CONFIG_VALUE_<n> environment variables Git reads in place of
// a config file, so fixtures don't need a config file on disk.
func (cfg Config) EnvMap() map[string]string {
	env := make(map[string]string, len(cfg)*2+1)
	env["GIT_CONFIG_COUNT"] = fmt.Sprintf("%d", len(cfg))

	i := 0
	for k, v := range cfg {
		env[fmt.Sprintf("GIT_CONFIG_KEY_%d", i)] = k
		env[fmt.Sprintf("GIT_CONFIG_VALUE_%d", i)] = v
		i++
	}
	return env
}

// WriteTo writes the Git configuration to the given file,
// creating it if it does not exist.
func (cfg Config) WriteTo(path string) error {
	args := []string{"config", "--file", path}
	for k, v := range cfg {
		cmd := exec.Command("git", append(args, k, v)...)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}
