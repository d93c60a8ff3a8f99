package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognized names.
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy selects how aggressively occurrences are redirected.
type Policy uint8

const (
	// PolicyPermissive keeps a member access outside closures only in the
	// contexts known not to leak the object: variable initializers, binary
	// operands, return values and call arguments.
	PolicyPermissive Policy = iota
	// PolicyMember keeps every member access outside closures.
	PolicyMember
	// PolicyStrict redirects every occurrence.
	PolicyStrict
)

var policyNames = [...]string{
	PolicyPermissive: "permissive",
	PolicyMember:     "member",
	PolicyStrict:     "strict",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy maps a policy name to a Policy. The empty string selects the
// default.
func ParsePolicy(s string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return PolicyPermissive, nil
	}
	for i, n := range policyNames {
		if n == name {
			return Policy(i), nil
		}
	}
	return PolicyPermissive, fmt.Errorf("%q: %w (want strict, member or permissive)", s, ErrUnknownPolicy)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	if int(p) >= len(policyNames) {
		return nil, fmt.Errorf("%s: %w", p, ErrUnknownPolicy)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so a Policy can be read
// straight from TOML.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
