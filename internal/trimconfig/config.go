// Package trimconfig loads git-trim's configuration from Git config under
// the "trim.*" namespace and exposes it to kong as a [kong.Resolver], so
// every flag tagged `config:"trim.xxx"` can be set in ~/.gitconfig or a
// repository's .git/config instead of on the command line.
package trimconfig

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/gitutil/trim/internal/git"
)

const (
	_configTag     = "config"
	_configSection = "trim"
)

// GitConfigLister is the subset of git.Config's API Config needs to load.
type GitConfigLister interface {
	ListRegexp(ctx context.Context, pattern string) (func(yield func(git.ConfigEntry, error) bool), error)
}

var _ GitConfigLister = (*git.Config)(nil)

// Config is a loaded snapshot of the "trim.*" Git configuration namespace.
// Unlike the teacher's "spice" config, git-trim has no shorthand-command
// concept, so there is no "trim.shorthand.*" special case to carry over.
type Config struct {
	items map[git.ConfigKey][]string
}

// Load reads every "trim.*" key from cfg.
func Load(ctx context.Context, cfg GitConfigLister) (*Config, error) {
	items := make(map[git.ConfigKey][]string)

	seq, err := cfg.ListRegexp(ctx, `^`+_configSection+`\.`)
	if err != nil {
		return nil, fmt.Errorf("list %s configuration: %w", _configSection, err)
	}

	for entry, err := range seq {
		if err != nil {
			return nil, fmt.Errorf("list %s configuration: %w", _configSection, err)
		}

		key := entry.Key.Canonical()
		if key.Section() != _configSection {
			continue
		}
		items[key] = append(items[key], entry.Value)
	}

	return &Config{items: items}, nil
}

// Validate checks the configuration against the application. This is a
// no-op: unknown "trim.*" keys are ignored rather than rejected.
func (*Config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver], filling in a flag's value from its
// `config:"trim.xxx"` tag.
func (c *Config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	k := flag.Tag.Get(_configTag)
	if k == "" {
		return nil, nil
	}

	key := git.ConfigKey(k).Canonical()
	values := c.items[key]
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		if flag.IsSlice() {
			if flag.Tag.Sep != -1 {
				return kong.JoinEscaped(values, flag.Tag.Sep), nil
			}
			return nil, fmt.Errorf("key %q has multiple values but no separator is defined", key)
		}
		// Last value wins for a single-valued flag.
		return values[len(values)-1], nil
	}
}
