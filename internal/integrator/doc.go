// Package integrator is the integration scheduling engine: the declarative
// description of which physical quantities are time-integrated, for which
// entity kinds, under which stepping scheme and around which user hooks, is
// compiled into a flat ordered execution list run once per simulation
// timestep.
//
// The package deliberately knows nothing about SPH kernels, neighbor lists
// or parallel decomposition. Those collaborate through the Component
// interface as ordinary pre/post steps; the compiler just orders them.
package integrator
