package view

// Prepend puts item in front of list without modifying list.
func Prepend[T any](list []T, item T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

// RemoveByID drops every element whose id matches. Order is preserved.
func RemoveByID[T any](list []T, id string, idOf func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if idOf(v) != id {
			out = append(out, v)
		}
	}
	return out
}

// Expanded is the set of open cards on a page.
type Expanded map[string]bool

// ParseExpanded reads the open ids from a query such as ?open=a&open=b.
func ParseExpanded(ids []string) Expanded {
	e := Expanded{}
	for _, id := range ids {
		if id != "" {
			e[id] = true
		}
	}
	return e
}

func (e Expanded) Open(id string) bool { return e[id] }

// Toggle returns a copy with id flipped.
func (e Expanded) Toggle(id string) Expanded {
	out := make(Expanded, len(e)+1)
	for k, v := range e {
		if v {
			out[k] = true
		}
	}
	if out[id] {
		delete(out, id)
	} else {
		out[id] = true
	}
	return out
}

// IDs returns the open ids in the order given by order.
func (e Expanded) IDs(order []string) []string {
	var ids []string
	for _, id := range order {
		if e[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
