package stages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInliner_Apply(t *testing.T) {
	longBody := " vec3 c = vec3(0.25, 0.5, 0.75); return vec4(c * 2.0, 1.0); "

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"small body replaces definition", "float f() { return 1.0; }", " return 1.0; "},
		{"large body is left untouched", "vec4 f() {" + longBody + "}", "vec4 f() {" + longBody + "}"},
		{
			"every small definition is unwrapped",
			"float f() { return 1.0; } void main() { x(); }",
			" return 1.0;   x(); ",
		},
		{"nested braces stay in the body", "void f() { if (a) { b; } }", " if (a) { b; } "},
		{"call sites are not rewritten", "x = f(); float f() { return 1.0; }", "x = f();  return 1.0; "},
		{"unbalanced body is left untouched", "void f() { x;", "void f() { x;"},
		{"no callables", "int a;", "int a;"},
		{"empty", "", ""},
	}

	inliner := NewInliner(DefaultInlineThreshold)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inliner.Apply(tt.src))
		})
	}
}

func TestInliner_Threshold(t *testing.T) {
	body := func(n int) string { return strings.Repeat("x", n) }

	inliner := NewInliner(DefaultInlineThreshold)

	under := "void f() {" + body(49) + "}"
	assert.Equal(t, body(49), inliner.Apply(under))

	at := "void f() {" + body(50) + "}"
	assert.Equal(t, at, inliner.Apply(at))

	custom := NewInliner(10)
	assert.Equal(t, body(9), custom.Apply("void f() {"+body(9)+"}"))
	assert.Equal(t, "void f() {"+body(10)+"}", custom.Apply("void f() {"+body(10)+"}"))
}

func TestInliner_ThresholdCountsCharacters(t *testing.T) {
	// 40 two-byte runes: 80 bytes but 40 characters.
	body := strings.Repeat("é", 40)

	assert.Equal(t, body, NewInliner(50).Apply("void f() {"+body+"}"))
}

func TestNewInliner_Defaults(t *testing.T) {
	assert.Equal(t, DefaultInlineThreshold, NewInliner(0).Threshold)
	assert.Equal(t, NameInlineCallables, NewInliner(0).Name())
}
