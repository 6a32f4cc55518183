package pattern

import (
	"regexp"

	"github.com/go-go-golems/scopectl/pkg/action"
	"github.com/pkg/errors"
)

const WildcardRule = "*"

// Predicate reports whether a process is interested in an action.
type Predicate func(a action.Action) bool

// Rule tests an action type.
type Rule interface {
	MatchType(typ string) bool
}

type wildcard struct{}

func (wildcard) MatchType(string) bool { return true }

type exact string

func (e exact) MatchType(typ string) bool { return string(e) == typ }

type oneOf []string

func (o oneOf) MatchType(typ string) bool {
	for _, s := range o {
		if s == typ {
			return true
		}
	}
	return false
}

type expr struct{ re *regexp.Regexp }

func (e expr) MatchType(typ string) bool { return e.re.MatchString(typ) }

func Wildcard() Rule { return wildcard{} }

// Exact matches a single type. "*" is still an exact match here; use Parse
// for the wildcard shorthand.
func Exact(typ string) Rule { return exact(typ) }

func OneOf(types ...string) Rule { return oneOf(append([]string(nil), types...)) }

func Regexp(re *regexp.Regexp) Rule { return expr{re: re} }

// Parse accepts "*", a type string, a []string, a *regexp.Regexp or a Rule.
func Parse(v any) (Rule, error) {
	switch r := v.(type) {
	case Rule:
		return r, nil
	case string:
		if r == WildcardRule {
			return Wildcard(), nil
		}
		return Exact(r), nil
	case []string:
		return OneOf(r...), nil
	case []any:
		types := make([]string, 0, len(r))
		for i, item := range r {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("pattern element %d is %T, not a string", i, item)
			}
			types = append(types, s)
		}
		return OneOf(types...), nil
	case *regexp.Regexp:
		if r == nil {
			return nil, errors.New("nil regexp pattern")
		}
		return Regexp(r), nil
	}
	return nil, errors.Errorf("unsupported pattern %T", v)
}

// MustParse is Parse for rules known at compile time.
func MustParse(v any) Rule {
	r, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return r
}

func build(rule Rule, mustBeLocal bool) Predicate {
	return func(a action.Action) bool {
		if !rule.MatchType(a.Type) {
			return false
		}
		return a.IsGlobalTagged() != mustBeLocal
	}
}

// Local matches actions of rule that carry no globalType. Behind the routing
// middleware these are the untagged actions broadcast to every scope.
func Local(rule Rule) Predicate { return build(rule, true) }

// Global matches actions of rule that carry a globalType. Behind the routing
// middleware these are the actions addressed to the process's own scope,
// rewritten to their bare type.
func Global(rule Rule) Predicate { return build(rule, false) }

// Any matches on type alone.
func Any(rule Rule) Predicate {
	return func(a action.Action) bool { return rule.MatchType(a.Type) }
}
