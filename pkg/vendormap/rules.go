// SPDX-License-Identifier: BSD-3-Clause

package vendormap

import (
	"fmt"
	"regexp"
	"strings"
)

// leadingFlagRe recognises a Go-native inline flag group at the very start
// of a pattern, e.g. "(?i)k10temp", so it can be folded into Flags for
// introspection even though regexp.Compile would already honor it in place.
var leadingFlagRe = regexp.MustCompile(`^\(\?([a-zA-Z]+)\)`)

type compiledRule struct {
	rule  Rule
	re    *regexp.Regexp
	order int
}

// compile validates and compiles one rule. Only the "i" flag is currently
// recognised; anything else is a load error, never a silent non-match.
func compile(r Rule, order int) (compiledRule, error) {
	flags := r.Flags

	if m := leadingFlagRe.FindStringSubmatch(r.Regex); m != nil {
		for _, f := range m[1] {
			if !strings.ContainsRune(flags, f) {
				flags += string(f)
			}
		}
	}

	for _, f := range flags {
		if f != 'i' {
			return compiledRule{}, fmt.Errorf("%w: unsupported flag %q in rule %q", ErrInvalidRule, string(f), r.Regex)
		}
	}

	pattern := r.Regex
	if strings.ContainsRune(flags, 'i') && !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%w: %q: %v", ErrInvalidRule, r.Regex, err)
	}

	r.Flags = flags
	return compiledRule{rule: r, re: re, order: order}, nil
}

// compileAll compiles every rule, failing the whole batch on the first
// invalid one so a reload never partially replaces the active mapping.
func compileAll(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		c, err := compile(r, i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// classify picks the highest-priority matching rule, ties broken by file
// order (earlier wins).
func classify(rules []compiledRule, chipName string) (Match, bool) {
	best := -1
	for i, c := range rules {
		if !c.re.MatchString(chipName) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if c.rule.Priority > rules[best].rule.Priority {
			best = i
		}
	}
	if best == -1 {
		return Match{}, false
	}
	return Match{Vendor: rules[best].rule.Vendor, Class: rules[best].rule.Class}, true
}
