package particle

import "fmt"

// Kind categorizes a simulated entity. The kind is fixed at creation and
// drives integration eligibility and per-kind stepping scheme selection.
//
// KindAny is the wildcard: an eligibility list containing KindAny accepts
// entities of every kind. Concrete entities should carry a concrete kind.
type Kind int

const (
	KindAny Kind = iota
	KindFluid
	KindSolid
	KindBoundary
)

// kindNames is indexed by Kind.
var kindNames = [...]string{"any", "fluid", "solid", "boundary"}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a kind name as written in sim files ("fluid", "solid",
// "boundary", "any") to its Kind value.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if s == name {
			return Kind(i), nil
		}
	}
	return KindAny, fmt.Errorf("unknown entity kind %q", s)
}

// Kinds lists every concrete kind (excluding the KindAny wildcard).
func Kinds() []Kind {
	return []Kind{KindFluid, KindSolid, KindBoundary}
}
