package particle

// Entity is a simulated object: a kind tag, an optional particle array, and
// the set of integration properties it has opted into.
//
// An entity only participates in a property's stepping when the property's
// eligible-kind set admits its kind AND the entity has opted in. Entities
// without a particle array are legal placeholders; steppers skip them.
type Entity interface {
	Name() string
	Kind() Kind

	// Particles returns the entity's particle array, or nil if it has none.
	Particles() *Array

	// EnableProperty opts the entity into integration of the named property.
	EnableProperty(name string)

	// IntegratesProperty reports whether the entity opted into the property.
	IntegratesProperty(name string) bool
}

// Base is the canonical Entity implementation. Embed it or use it directly
// via the kind-specific constructors.
type Base struct {
	name    string
	kind    Kind
	parr    *Array
	enabled map[string]bool
}

// NewEntity creates an entity of the given kind. parr may be nil.
func NewEntity(name string, kind Kind, parr *Array) *Base {
	return &Base{
		name:    name,
		kind:    kind,
		parr:    parr,
		enabled: make(map[string]bool),
	}
}

// NewFluid creates a fluid entity.
func NewFluid(name string, parr *Array) *Base {
	return NewEntity(name, KindFluid, parr)
}

// NewSolid creates a solid entity.
func NewSolid(name string, parr *Array) *Base {
	return NewEntity(name, KindSolid, parr)
}

// NewBoundary creates a solid-boundary entity.
func NewBoundary(name string, parr *Array) *Base {
	return NewEntity(name, KindBoundary, parr)
}

func (b *Base) Name() string      { return b.name }
func (b *Base) Kind() Kind        { return b.kind }
func (b *Base) Particles() *Array { return b.parr }

func (b *Base) EnableProperty(name string) {
	b.enabled[CanonicalName(name)] = true
}

func (b *Base) IntegratesProperty(name string) bool {
	return b.enabled[CanonicalName(name)]
}
