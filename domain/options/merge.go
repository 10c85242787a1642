package options

// Add appends value unless it is already present.
func Add(current []string, value string) []string {
	for _, v := range current {
		if v == value {
			return clone(current)
		}
	}
	return append(clone(current), value)
}

// Remove drops value if present.
func Remove(current []string, value string) []string {
	out := make([]string, 0, len(current))
	for _, v := range current {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// Reorder takes desired filtered to known values (first occurrence wins),
// then appends current values desired did not mention, in their original
// order. The result is always a permutation of current.
func Reorder(current, desired []string) []string {
	known := make(map[string]bool, len(current))
	for _, v := range current {
		known[v] = true
	}

	placed := make(map[string]bool, len(current))
	out := make([]string, 0, len(current))

	for _, v := range desired {
		if known[v] && !placed[v] {
			placed[v] = true
			out = append(out, v)
		}
	}

	for _, v := range current {
		if !placed[v] {
			placed[v] = true
			out = append(out, v)
		}
	}

	return out
}

func clone(values []string) []string {
	return append(make([]string, 0, len(values)+1), values...)
}
