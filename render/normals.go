package render

import "cogentcore.org/core/math32"

// VertexNormals returns area weighted vertex normals of a triangle mesh.
// Vertices without faces get a zero normal.
func VertexNormals(vertices []math32.Vector3, triangles [][3]uint32) []math32.Vector3 {
	normals := make([]math32.Vector3, len(vertices))
	for _, t := range triangles {
		if int(t[0]) >= len(vertices) || int(t[1]) >= len(vertices) || int(t[2]) >= len(vertices) {
			continue
		}
		a, b, c := vertices[t[0]], vertices[t[1]], vertices[t[2]]
		// Unnormalized cross product weights by face area.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range t {
			normals[i] = normals[i].Add(n)
		}
	}
	for i, n := range normals {
		if n.Length() > 0 {
			normals[i] = n.Normal()
		}
	}
	return normals
}
