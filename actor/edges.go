package actor

import (
	"cmp"
	"slices"
)

// Edges collapses triangles into their undirected edges. Each pair is
// sorted ascending, duplicates shared by adjacent triangles are dropped and
// the result is ordered lexicographically.
func Edges(triangles [][3]uint32) [][2]uint32 {
	out := make([][2]uint32, 0, 3*len(triangles))
	for _, t := range triangles {
		out = append(out, edge(t[0], t[1]), edge(t[1], t[2]), edge(t[0], t[2]))
	}
	slices.SortFunc(out, func(a, b [2]uint32) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return slices.Compact(out)
}

func edge(a, b uint32) [2]uint32 {
	if a > b {
		a, b = b, a
	}
	return [2]uint32{a, b}
}
