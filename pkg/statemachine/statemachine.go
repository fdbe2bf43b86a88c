package statemachine

// Graph is a transition table: for each state, the events it accepts and the
// edge each event follows. States and events are plain comparable values;
// edges may carry a runtime condition but never side effects, so looking up
// a transition cannot mutate anything.
type Graph[S, E comparable] map[S]map[E]Edge[S]

// Edge resolves to the next state when its transition is taken.
type Edge[S comparable] struct {
	next func() S
}

// To builds an unconditional edge to state s.
func To[S comparable](s S) Edge[S] {
	return Edge[S]{next: func() S { return s }}
}

// If builds a conditional edge: when the transition is taken, cond is
// evaluated and the then/else edge is followed.
func If[S comparable](cond func() bool, then, els Edge[S]) Edge[S] {
	return Edge[S]{next: func() S {
		if cond() {
			return then.next()
		}
		return els.next()
	}}
}

// Next returns the state reached from cur on event ev. The second return is
// false when cur has no edge for ev; callers treat that as an illegal
// transition and leave their state untouched.
func (g Graph[S, E]) Next(cur S, ev E) (S, bool) {
	edges, ok := g[cur]
	if !ok {
		return cur, false
	}
	e, ok := edges[ev]
	if !ok {
		return cur, false
	}
	return e.next(), true
}

// Accepts reports whether state cur has an edge for event ev without
// following it.
func (g Graph[S, E]) Accepts(cur S, ev E) bool {
	edges, ok := g[cur]
	if !ok {
		return false
	}
	_, ok = edges[ev]
	return ok
}
