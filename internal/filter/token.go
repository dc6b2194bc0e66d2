// Package filter intersects a classify.Result with the user's --delete
// selection, the per-remote scoping rules, the protected-glob list, and the
// base/HEAD exclusions, producing the final set of refs the Planner may act
// on.
package filter

import (
	"fmt"
	"strings"

	"github.com/gitutil/trim/internal/classify"
)

// Range is one of the five delete-range tags a token can name.
type Range int

const (
	RangeMergedLocal Range = iota
	RangeMergedRemote
	RangeStray
	RangeDiverged
	RangeMergedRemoteTracking
)

// remoteScoped reports whether a Range's tokens accept a ":<remote>" scope.
func (r Range) remoteScoped() bool {
	switch r {
	case RangeMergedRemote, RangeDiverged, RangeMergedRemoteTracking:
		return true
	default:
		return false
	}
}

// tags returns the classify.Tag values a Range enables.
func (r Range) tags() []classify.Tag {
	switch r {
	case RangeMergedLocal:
		return []classify.Tag{classify.MergedLocal, classify.MergedNonTracking}
	case RangeMergedRemote:
		return []classify.Tag{classify.MergedRemote}
	case RangeStray:
		return []classify.Tag{classify.Stray}
	case RangeDiverged:
		return []classify.Tag{classify.Diverged}
	case RangeMergedRemoteTracking:
		return []classify.Tag{classify.MergedRemoteTracking}
	default:
		return nil
	}
}

// Token is one parsed element of a --delete value: a range plus an optional
// remote scope. An empty Remote (or the literal "*") means "every remote".
type Token struct {
	Range  Range
	Remote string // "" or "*" means unscoped

	// Explicit is set when this token came from the literal "stray" or
	// "diverged" name, as opposed to being pulled in by an alias like
	// "local". It's the "explicit permission" §4.4 requires before the
	// current HEAD branch can be classified Stray/Diverged and deleted.
	Explicit bool
}

// unscoped reports whether this token carries no remote restriction.
func (t Token) unscoped() bool {
	return t.Remote == "" || t.Remote == "*"
}

// aliasExpansions are the compound range names from the token table in
// §6: each expands to one or more Ranges before scope parsing.
var aliasExpansions = map[string][]Range{
	"merged":        {RangeMergedLocal, RangeMergedRemote},
	"merged-local":  {RangeMergedLocal},
	"merged-remote": {RangeMergedRemote},
	"stray":         {RangeStray},
	"diverged":      {RangeDiverged},
	"local":         {RangeMergedLocal, RangeStray},
	"remote":        {RangeMergedRemoteTracking},
}

// ParseError reports a malformed --delete value: an unknown range name, or
// a scope attached to a range that doesn't accept one.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid delete token %q: %s", e.Token, e.Reason)
}

// ParseTokens parses a comma-separated --delete value into the list of
// Tokens it expands to. Tokens are returned in encounter order; duplicates
// are not deduplicated here since a later token's remote scope may widen an
// earlier one's effect (handled by buildScopes in set.go).
func ParseTokens(value string) ([]Token, error) {
	var tokens []Token
	for _, raw := range strings.Split(value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		name, scope, hasScope := strings.Cut(raw, ":")
		ranges, ok := aliasExpansions[name]
		if !ok {
			return nil, &ParseError{Token: raw, Reason: "unknown range"}
		}

		explicit := name == "stray" || name == "diverged"
		scopable := false
		for _, r := range ranges {
			scopable = scopable || r.remoteScoped()
		}
		if hasScope && !scopable {
			return nil, &ParseError{
				Token:  raw,
				Reason: fmt.Sprintf("range %q does not take a :<remote> scope", name),
			}
		}
		for _, r := range ranges {
			// The scope applies only to the ranges that accept one; the
			// rest of an alias like "merged" stay unscoped.
			remote := ""
			if hasScope && r.remoteScoped() {
				remote = scope
			}
			tokens = append(tokens, Token{Range: r, Remote: remote, Explicit: explicit})
		}
	}
	return tokens, nil
}
