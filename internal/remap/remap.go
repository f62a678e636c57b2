// Package remap rewrites span entity types through ordered rule sets.
// Rules change only the type half of a label; the tag letter that
// encodes span shape is never touched, so the tag sequence of a
// document is byte-identical before and after a remap stage.
package remap

import (
	"fmt"
	"strings"

	"github.com/lvonguyen/tagforge/internal/annotation"
)

// Rule maps one or more source entity types to a single target type.
// Rule sets are ordered and first match wins.
type Rule struct {
	Sources []string
	Target  string
}

// PairRules builds one-to-one rules from the persisted parallel-list
// form. A length mismatch invalidates the whole rule set: the caller
// reports it and skips the stage rather than applying a prefix.
func PairRules(sources, targets []string) ([]Rule, error) {
	if len(sources) != len(targets) {
		return nil, fmt.Errorf("one-to-one rule arity mismatch: %d source labels, %d target labels",
			len(sources), len(targets))
	}
	rules := make([]Rule, 0, len(sources))
	for i, src := range sources {
		rules = append(rules, Rule{Sources: []string{src}, Target: targets[i]})
	}
	return rules, nil
}

// GroupRules builds many-to-one rules from the persisted form: each
// group is a comma-joined set of source types paired with one target.
func GroupRules(groups, targets []string) ([]Rule, error) {
	if len(groups) != len(targets) {
		return nil, fmt.Errorf("many-to-one rule arity mismatch: %d source groups, %d target labels",
			len(groups), len(targets))
	}
	rules := make([]Rule, 0, len(groups))
	for i, group := range groups {
		var sources []string
		for _, s := range strings.Split(group, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		rules = append(rules, Rule{Sources: sources, Target: targets[i]})
	}
	return rules, nil
}

// Apply rewrites entity types token by token. Each labeled, non-O
// token is matched independently of its neighbors: the first rule
// whose sources contain the token's current type supplies the new
// type. Unmatched tokens pass through unchanged.
func Apply(doc *annotation.Document, rules []Rule) {
	if len(rules) == 0 {
		return
	}
	for i := range doc.Lines {
		l := &doc.Lines[i]
		if !l.Labeled || l.Tag == annotation.TagOut || l.Type == "" {
			continue
		}
		for _, rule := range rules {
			if matches(rule, l.Type) {
				l.Type = rule.Target
				break
			}
		}
	}
}

func matches(rule Rule, entityType string) bool {
	for _, s := range rule.Sources {
		if s == entityType {
			return true
		}
	}
	return false
}
