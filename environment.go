package toolprobe

import "fmt"

// Pair is one resolved configuration variable in declaration order.
type Pair struct {
	Name  string
	Value string
}

// Environment is the accumulated set of resolved configuration variables
// for one run.
//
// Variables are bound exactly once and never change afterwards; everything
// a probe observes was committed by a strictly earlier step. Declaration
// order is preserved so the final configuration file lists variables in the
// order they were resolved.
//
// # Thread Safety
//
// Environment is NOT safe for concurrent mutation. The controller is the
// single writer; probes only ever see a Snapshot.
type Environment struct {
	names  []string
	values map[string]string
}

// NewEnvironment creates an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]string)}
}

// Bind commits a variable. Binding the same name twice is a programming
// error and is rejected so a later step can never shadow an earlier result.
func (e *Environment) Bind(name, value string) error {
	if name == "" {
		return fmt.Errorf("bind: variable name is empty")
	}
	if _, exists := e.values[name]; exists {
		return fmt.Errorf("bind: variable %s is already resolved", name)
	}
	e.names = append(e.names, name)
	e.values[name] = value
	return nil
}

// Lookup returns the resolved value and whether the variable is bound.
// The empty string is a legitimate resolved value, so callers that need to
// distinguish "resolved to nothing" from "not resolved" must use Lookup
// rather than Value.
func (e *Environment) Lookup(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Value returns the resolved value, or "" when the variable is unbound.
func (e *Environment) Value(name string) string {
	return e.values[name]
}

// Has reports whether the variable has been resolved.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Len returns the number of resolved variables.
func (e *Environment) Len() int {
	return len(e.names)
}

// Snapshot returns a copy of the current bindings. Probes receive snapshots
// so nothing outside the controller can mutate the accumulated state.
func (e *Environment) Snapshot() map[string]string {
	snap := make(map[string]string, len(e.values))
	for k, v := range e.values {
		snap[k] = v
	}
	return snap
}

// Pairs returns the resolved variables in the order they were bound.
// The returned slice is a copy.
func (e *Environment) Pairs() []Pair {
	pairs := make([]Pair, 0, len(e.names))
	for _, name := range e.names {
		pairs = append(pairs, Pair{Name: name, Value: e.values[name]})
	}
	return pairs
}
