package integrator

import (
	"fmt"
	"slices"

	"github.com/swash-sim/swash/internal/particle"
)

// Scheme identifies a numerical stepping scheme ("euler", ...). Multi-stage
// schemes are expressed as distinct scheme kinds with their own stepper
// state; they share the staged-buffer contract of the basic explicit update.
type Scheme string

// SchemeEuler is the basic explicit forward update and the registry-wide
// default scheme.
const SchemeEuler Scheme = "euler"

// SchemeMap selects the stepping scheme for a property per entity kind.
// Default is consulted when there is no exact per-kind entry; it is always
// populated by AddProperty, which makes resolution total.
type SchemeMap struct {
	Default Scheme
	ByKind  map[particle.Kind]Scheme
}

// Property describes one integrated physical quantity: which derivative
// arrays feed which integrated arrays (positionally paired), which entity
// kinds are eligible, and which scheme steps each kind.
type Property struct {
	Name       string
	Integrands []string
	Integrals  []string
	Kinds      []particle.Kind
	Schemes    SchemeMap

	// Pre/post step component IDs in registration order.
	preStep  []string
	postStep []string
}

// Eligible reports whether an entity of kind k may integrate this property.
// A Kinds list containing particle.KindAny admits every kind.
func (p *Property) Eligible(k particle.Kind) bool {
	for _, pk := range p.Kinds {
		if pk == particle.KindAny || pk == k {
			return true
		}
	}
	return false
}

// PreStepComponents returns the pre-step component IDs in registration order.
func (p *Property) PreStepComponents() []string {
	return slices.Clone(p.preStep)
}

// PostStepComponents returns the post-step component IDs in registration order.
func (p *Property) PostStepComponents() []string {
	return slices.Clone(p.postStep)
}

// Registry stores the integration-property descriptors, the entity-kind
// requirement table and the declared integration order. It is build-time
// configuration: populated once before the simulation starts and consulted
// by the execution-list compiler and the requirement deriver.
//
// A new registry is seeded with the two standard properties - velocity
// (ax,ay,az -> u,v,w) and position (u,v,w -> x,y,z) - eligible for every
// entity kind and stepped with the registry default scheme.
type Registry struct {
	defaultScheme Scheme
	props         map[string]*Property
	regOrder      []string
	order         []string // nil means registration order
	accepted      map[string][]particle.Kind
}

// NewRegistry creates a registry whose registry-wide default scheme is
// defaultScheme. Pass SchemeEuler unless a different basic scheme is wanted;
// the default is explicit configuration, not ambient state.
func NewRegistry(defaultScheme Scheme) *Registry {
	r := &Registry{
		defaultScheme: defaultScheme,
		props:         make(map[string]*Property),
		accepted:      make(map[string][]particle.Kind),
	}

	// Standard kinematic properties every SPH solver integrates.
	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("registry seed: %v", err))
		}
	}
	must(r.AddProperty("velocity",
		[]string{"ax", "ay", "az"}, []string{"u", "v", "w"},
		[]particle.Kind{particle.KindAny}, nil))
	must(r.AddProperty("position",
		[]string{"u", "v", "w"}, []string{"x", "y", "z"},
		[]particle.Kind{particle.KindAny}, nil))

	return r
}

// DefaultScheme returns the registry-wide default scheme.
func (r *Registry) DefaultScheme() Scheme { return r.defaultScheme }

// AddProperty registers an integration property.
//
// Fails with a DUPLICATE_PROPERTY error when name is already registered and
// with an ARITY_MISMATCH error when the integrand and integral lists differ
// in length. On failure nothing is mutated.
//
// schemes may be nil, in which case the property steps with the registry
// default for every kind. When schemes is supplied without a Default, the
// registry default fills it in.
func (r *Registry) AddProperty(name string, integrands, integrals []string, kinds []particle.Kind, schemes *SchemeMap) error {
	name = particle.CanonicalName(name)

	if _, exists := r.props[name]; exists {
		return &ConfigError{
			Code:     ErrCodeDuplicateProperty,
			Property: name,
			Message:  "property already registered",
		}
	}
	if len(integrands) != len(integrals) {
		return &ConfigError{
			Code:     ErrCodeArityMismatch,
			Property: name,
			Message: fmt.Sprintf("%d integrand arrays paired with %d integral arrays",
				len(integrands), len(integrals)),
		}
	}

	sm := SchemeMap{Default: r.defaultScheme}
	if schemes != nil {
		if schemes.Default != "" {
			sm.Default = schemes.Default
		}
		if len(schemes.ByKind) > 0 {
			sm.ByKind = make(map[particle.Kind]Scheme, len(schemes.ByKind))
			for k, s := range schemes.ByKind {
				sm.ByKind[k] = s
			}
		}
	}

	p := &Property{
		Name:       name,
		Integrands: canonicalNames(integrands),
		Integrals:  canonicalNames(integrals),
		Kinds:      slices.Clone(kinds),
		Schemes:    sm,
	}
	r.props[name] = p
	r.regOrder = append(r.regOrder, name)
	return nil
}

// Property returns the named descriptor.
func (r *Registry) Property(name string) (*Property, bool) {
	p, ok := r.props[particle.CanonicalName(name)]
	return p, ok
}

// Properties returns every registered property name in registration order.
func (r *Registry) Properties() []string {
	return slices.Clone(r.regOrder)
}

// AddEntityKind records in the requirement table that entities of kind k may
// integrate the named property. Additive and idempotent. Fails with an
// UNKNOWN_PROPERTY error when the property is not registered.
//
// The table is separate from the property's own eligible-kind set: it only
// widens requirement derivation, never stepping eligibility.
func (r *Registry) AddEntityKind(property string, k particle.Kind) error {
	property = particle.CanonicalName(property)
	if _, ok := r.props[property]; !ok {
		return &ConfigError{
			Code:     ErrCodeUnknownProperty,
			Property: property,
			Message:  "cannot accept entity kind for unregistered property",
		}
	}
	if slices.Contains(r.accepted[property], k) {
		return nil
	}
	r.accepted[property] = append(r.accepted[property], k)
	return nil
}

// AcceptedKinds returns the requirement-table kinds for a property in
// registration order.
func (r *Registry) AcceptedKinds(property string) []particle.Kind {
	return slices.Clone(r.accepted[particle.CanonicalName(property)])
}

// AddStepComponent appends a component ID to the property's pre-step or
// post-step list. Fails with an UNKNOWN_PROPERTY error when the property is
// not registered.
func (r *Registry) AddStepComponent(property, componentID string, preStep bool) error {
	p, ok := r.props[particle.CanonicalName(property)]
	if !ok {
		return &ConfigError{
			Code:      ErrCodeUnknownProperty,
			Property:  property,
			Component: componentID,
			Message:   "cannot attach component to unregistered property",
		}
	}
	if preStep {
		p.preStep = append(p.preStep, componentID)
	} else {
		p.postStep = append(p.postStep, componentID)
	}
	return nil
}

// SetIntegrationOrder replaces the integration order wholesale. Every name
// must be registered; on failure the stored order is left untouched. The
// order may be a strict subset of the registered properties, which restricts
// compilation to that subset.
func (r *Registry) SetIntegrationOrder(names []string) error {
	canon := canonicalNames(names)
	for _, name := range canon {
		if _, ok := r.props[name]; !ok {
			return &ConfigError{
				Code:     ErrCodeUnknownProperty,
				Property: name,
				Message:  "integration order references unregistered property",
			}
		}
	}
	r.order = canon
	return nil
}

// IntegrationOrder returns the effective property order: the declared order
// if one was set, otherwise registration order.
func (r *Registry) IntegrationOrder() []string {
	if r.order != nil {
		return slices.Clone(r.order)
	}
	return slices.Clone(r.regOrder)
}

// ResolveScheme resolves the stepping scheme for an (entity kind, property)
// pair. Precedence: exact per-kind entry in the property's scheme map, then
// the property's default, then the registry-wide default. Resolution is
// total - AddProperty guarantees a property default exists, and an unknown
// property falls through to the registry default.
func (r *Registry) ResolveScheme(k particle.Kind, property string) Scheme {
	p, ok := r.props[particle.CanonicalName(property)]
	if !ok {
		return r.defaultScheme
	}
	if s, ok := p.Schemes.ByKind[k]; ok {
		return s
	}
	if p.Schemes.Default != "" {
		return p.Schemes.Default
	}
	return r.defaultScheme
}

func canonicalNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = particle.CanonicalName(n)
	}
	return out
}
