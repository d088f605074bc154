package motion

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a procedural animation.
type Kind int

const (
	None Kind = iota
	Bounce
	Shake
	Pulse
	Swing
)

var kindNames = [...]string{
	None:   "none",
	Bounce: "bounce",
	Shake:  "shake",
	Pulse:  "pulse",
	Swing:  "swing",
}

// ErrUnknownKind is returned by ParseKind for unrecognized names.
var ErrUnknownKind = errors.New("motion: unknown animation kind")

// Kinds returns every animation kind in declaration order.
func Kinds() []Kind {
	return []Kind{None, Bounce, Shake, Pulse, Swing}
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Animated reports whether the kind produces any motion.
func (k Kind) Animated() bool {
	return k > None && int(k) < len(kindNames)
}

// ParseKind parses a kind name, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
