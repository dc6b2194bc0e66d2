package filter

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/gitutil/trim/internal/classify"
	"github.com/gitutil/trim/internal/sliceutil"
)

// Candidate is one ref under consideration for deletion, carrying the
// context Select needs beyond its classification: the short name protected
// globs match against, the remote a scoped range gates it by (for local
// Diverged refs this is their upstream's remote, not their own), and
// whether it is a base or the checked-out branch.
type Candidate struct {
	Ref    string
	Tag    classify.Tag
	Remote string // governs :<remote> scoping; "" if the tag isn't remote-scoped
	Name   string // short branch name, for protected-glob matching
	Base   bool
	Head   bool
}

// scope tracks which remotes a classify.Tag has been enabled for by the
// parsed tokens. A remote-unscoped grant (bare range name, or ":*") always
// wins over narrower ones, per §4.4.
type scope struct {
	all     bool
	remotes map[string]bool
}

func (s *scope) add(remote string) {
	if remote == "" || remote == "*" {
		s.all = true
		return
	}
	if s.remotes == nil {
		s.remotes = make(map[string]bool)
	}
	s.remotes[remote] = true
}

func (s *scope) allows(remote string) bool {
	if s == nil {
		return false
	}
	return s.all || s.remotes[remote]
}

// buildScopes folds the parsed tokens into one scope per enabled tag, and
// reports which tags were granted by an explicit "stray"/"diverged" token
// (as opposed to an alias like "local" that merely implies them).
func buildScopes(tokens []Token) (scopes map[classify.Tag]*scope, explicit map[classify.Tag]bool) {
	scopes = make(map[classify.Tag]*scope)
	explicit = make(map[classify.Tag]bool)

	for _, tok := range tokens {
		for _, tag := range tok.Range.tags() {
			s, ok := scopes[tag]
			if !ok {
				s = &scope{}
				scopes[tag] = s
			}
			s.add(tok.Remote)
			if tok.Explicit {
				explicit[tag] = true
			}
		}
	}
	return scopes, explicit
}

// ProtectedMatcher reports whether a branch's short name matches the
// user's --protected glob list.
type ProtectedMatcher struct {
	globs []glob.Glob
}

// CompileProtected compiles the --protected glob list once, so Select can
// be called per-candidate without recompiling.
func CompileProtected(patterns []string) (*ProtectedMatcher, error) {
	m := &ProtectedMatcher{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile protected glob %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Matches reports whether name matches any protected glob.
func (m *ProtectedMatcher) Matches(name string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Select intersects candidates with the enabled delete tokens and the
// protected-glob list, returning the refs that survive and are eligible
// for the Planner to act on.
//
// Bases and protected-glob matches are unconditionally excluded. The
// current HEAD branch is excluded when its tag is Stray or Diverged,
// unless the corresponding range was granted by an explicit "stray" or
// "diverged" token (not merely implied by an alias like "local") — for
// any other tag, HEAD is left to the Planner, which detaches before
// deleting it.
func Select(candidates []Candidate, tokens []Token, protected *ProtectedMatcher) []Candidate {
	scopes, explicit := buildScopes(tokens)

	selected := append([]Candidate(nil), candidates...)
	return sliceutil.RemoveFunc(selected, func(c Candidate) bool {
		if c.Base {
			return true
		}
		if protected.Matches(c.Name) {
			return true
		}
		if c.Head && (c.Tag == classify.Stray || c.Tag == classify.Diverged) && !explicit[c.Tag] {
			return true
		}

		s, ok := scopes[c.Tag]
		return !ok || !s.allows(c.Remote)
	})
}
