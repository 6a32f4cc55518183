package action

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedScopeKey = errors.New("local action type has no scope separator")

// Path is a parsed scope key: the ordered segments of the boundary-parent
// chain. The wire form is every segment followed by Separator.
type Path struct {
	segments []string
}

func NewPath(segments ...string) Path {
	return Path{segments: append([]string(nil), segments...)}
}

// ParsePath parses a full scope key. A leading prefix is stripped, so
// "@@LOCAL_REDUX/a->b->" and "a->b->" name the same scope.
func ParsePath(fullKey, prefix string) Path {
	key := fullKey
	if prefix != "" {
		key = strings.TrimPrefix(key, prefix)
	}
	if key == "" {
		return Path{}
	}
	parts := strings.Split(key, Separator)
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return Path{segments: parts}
}

func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

func (p Path) Depth() int { return len(p.segments) }

func (p Path) IsRoot() bool { return len(p.segments) == 0 }

func (p Path) Child(segment string) Path {
	out := make([]string, 0, len(p.segments)+1)
	out = append(out, p.segments...)
	out = append(out, segment)
	return Path{segments: out}
}

func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return p
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}
}

// String returns the canonical registry key, without prefix.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	return strings.Join(p.segments, Separator) + Separator
}

// Address builds the wire type of a local action addressed to p.
func (p Path) Address(prefix, bareType string) string {
	return prefix + p.String() + bareType
}

// Locality is the result of parsing an action type for local addressing.
type Locality int

const (
	NotLocal Locality = iota
	Local
	MissingSeparator
)

// Address is a local action type split into its scope and bare type.
type Address struct {
	Path     Path
	BareType string
	FullType string
}

// ParseLocal splits typ at the last Separator. Types without the prefix are
// NotLocal; prefixed types without any separator are MissingSeparator and
// left for the caller's policy to decide.
func ParseLocal(typ, prefix string) (Address, Locality) {
	if typ == "" || !strings.HasPrefix(typ, prefix) {
		return Address{}, NotLocal
	}
	idx := strings.LastIndex(typ, Separator)
	if idx < 0 {
		if prefix == "" {
			return Address{}, NotLocal
		}
		return Address{FullType: typ}, MissingSeparator
	}
	cut := idx + len(Separator)
	return Address{
		Path:     ParsePath(typ[:cut], prefix),
		BareType: typ[cut:],
		FullType: typ,
	}, Local
}

// Localize rewrites a for delivery inside its scope: the bare type becomes
// the type and the full addressed type moves to globalType.
func Localize(a Action, addr Address) Action {
	a.Type = addr.BareType
	a.GlobalType = addr.FullType
	return a
}
