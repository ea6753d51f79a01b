package rigidscene

// Template is a node standing in for another one, such as an instance of a
// reusable definition. Instance may itself return a Template.
type Template interface {
	Instance() any
}

// Resolve unwraps templates until it reaches a node that is not one, and
// checks that it is a T. A nil node, or a template resolving to nil, gives
// the zero T without error.
func Resolve[T any](n any) (T, error) {
	var zero T

	for {
		t, ok := n.(Template)
		if !ok {
			break
		}
		n = t.Instance()
	}
	if n == nil {
		return zero, nil
	}

	v, ok := n.(T)
	if !ok {
		return zero, ErrInvalidNode
	}
	return v, nil
}

// resolveAll resolves every entry of nodes, dropping nil ones. Nothing is
// returned when any entry fails.
func resolveAll[T comparable](nodes []any) ([]T, error) {
	var zero T
	resolved := make([]T, 0, len(nodes))
	for _, n := range nodes {
		v, err := Resolve[T](n)
		if err != nil {
			return nil, err
		}
		if v != zero {
			resolved = append(resolved, v)
		}
	}
	return resolved, nil
}
