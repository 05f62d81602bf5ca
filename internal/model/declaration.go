package model

import "strings"

// DeclarationKey identifies a variable declaration by type and name.
type DeclarationKey struct {
	Type string
	Name string
}

// DeclarationGroup accumulates consecutive declarations that share a type.
type DeclarationGroup struct {
	Type  string
	Names []string
	Sizes []string
}

// Empty reports whether the group has not received any declaration yet.
func (g *DeclarationGroup) Empty() bool {
	return g.Type == ""
}

// Accepts reports whether a declaration of typ belongs to the current group.
func (g *DeclarationGroup) Accepts(typ string) bool {
	return g.Empty() || g.Type == typ
}

// Add appends a declaration. size is "" for non-array declarations.
func (g *DeclarationGroup) Add(typ, name, size string) {
	g.Type = typ
	g.Names = append(g.Names, name)
	g.Sizes = append(g.Sizes, size)
}

// Reset clears the group so it can start accumulating a new type.
func (g *DeclarationGroup) Reset() {
	g.Type = ""
	g.Names = nil
	g.Sizes = nil
}

// String renders the group as one merged declaration: "type a, b", then the
// size fragments appended verbatim, then ";". The first size is written as is
// and every later non-empty size is prefixed with ", ", so "int a[2]; int b[3];"
// renders as "int a, b2, 3;".
func (g *DeclarationGroup) String() string {
	var b strings.Builder

	b.WriteString(g.Type)
	b.WriteByte(' ')
	b.WriteString(strings.Join(g.Names, ", "))

	for i, size := range g.Sizes {
		switch {
		case i == 0:
			b.WriteString(size)
		case size != "":
			b.WriteString(", ")
			b.WriteString(size)
		}
	}

	b.WriteByte(';')

	return b.String()
}
