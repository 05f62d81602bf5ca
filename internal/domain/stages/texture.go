package stages

import (
	"regexp"
	"strings"
)

var (
	texturePattern = regexp.MustCompile(`\btexture\([^)]*\)`)

	// texture(sampler, coord, <zero bias>)
	zeroBiasPattern = regexp.MustCompile(`^texture\(([^,()]+),([^,()]+),\s*[-+]?(?:0+\.?0*|\.0+)[fF]?\s*\)$`)
)

// TextureRewriter maps one texture call to a cheaper equivalent, or returns it unchanged.
type TextureRewriter func(call string) string

// IdentityRewriter leaves every call as it is.
func IdentityRewriter(call string) string {
	return call
}

// DropZeroBias removes an explicit zero LOD bias argument.
func DropZeroBias(call string) string {
	parts := zeroBiasPattern.FindStringSubmatch(call)
	if parts == nil {
		return call
	}

	return "texture(" + parts[1] + "," + parts[2] + ")"
}

// TextureOptimizer passes every texture call through Rewrite.
type TextureOptimizer struct {
	Rewrite TextureRewriter
}

// NewTextureOptimizer creates a TextureOptimizer; a nil rewriter selects IdentityRewriter.
func NewTextureOptimizer(rewrite TextureRewriter) *TextureOptimizer {
	if rewrite == nil {
		rewrite = IdentityRewriter
	}

	return &TextureOptimizer{Rewrite: rewrite}
}

// Name implements Stage.
func (t *TextureOptimizer) Name() string { return NameOptimizeTextureCalls }

// Apply implements Stage.
func (t *TextureOptimizer) Apply(src string) string {
	var b strings.Builder

	b.Grow(len(src))

	cursor := 0

	for _, mt := range findMatches(texturePattern, src) {
		call := src[mt.Start:mt.End]

		b.WriteString(src[cursor:mt.Start])

		if optimized := t.Rewrite(call); optimized != call {
			b.WriteString(optimized)
		} else {
			b.WriteString(call)
		}

		cursor = mt.End
	}

	b.WriteString(src[cursor:])

	return b.String()
}
