package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is an object type.
type Kind uint8

const (
	// Mesh is a triangle mesh, drawn solid or as a wireframe.
	Mesh Kind = iota + 1
	// Points is a point cloud.
	Points
	// Arrows is a vector field drawn as arrow glyphs.
	Arrows
	// Markers are glyphs pinned to vertices of a Mesh.
	Markers
	// Symbols is a cloud of oriented glyphs.
	Symbols
)

var kindNames = [...]string{
	Mesh:    "Mesh",
	Points:  "Points",
	Arrows:  "Arrows",
	Markers: "Markers",
	Symbols: "Symbols",
}

// Kinds returns all object types in declaration order.
func Kinds() []Kind { return []Kind{Mesh, Points, Arrows, Markers, Symbols} }

// Valid reports whether k is a known object type.
func (k Kind) Valid() bool { return k >= Mesh && k <= Symbols }

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind parses a type name, ignoring case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(kindNames[k], s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TableName returns the store table holding object id of kind k.
func TableName(k Kind, id int) string {
	return k.String() + "_" + strconv.Itoa(id)
}

// ParseTableName is the inverse of TableName.
func ParseTableName(name string) (Kind, int, error) {
	typ, num, ok := strings.Cut(name, "_")
	if !ok {
		return 0, 0, fmt.Errorf("not an object table: %q", name)
	}
	k, err := ParseKind(typ)
	if err != nil {
		return 0, 0, err
	}
	id, err := strconv.Atoi(num)
	if err != nil || id < 0 {
		return 0, 0, fmt.Errorf("not an object table: %q", name)
	}
	return k, id, nil
}
