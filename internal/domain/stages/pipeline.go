package stages

import (
	m "shadeopt.dev/pkg/shadeopt/internal/model"
)

// Config tunes the stages that take parameters.
type Config struct {
	InlineThreshold     int
	UnrollThreshold     int
	UnrollMode          UnrollMode
	MaxUnroll           int
	Uniforms            m.UniformTable
	KeepUnknownUniforms bool
	TextureRewriter     TextureRewriter
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		InlineThreshold: DefaultInlineThreshold,
		UnrollThreshold: DefaultUnrollThreshold,
		UnrollMode:      UnrollLiteral,
		MaxUnroll:       DefaultMaxUnroll,
		Uniforms:        m.DefaultUniforms(),
		TextureRewriter: IdentityRewriter,
	}
}

// Pipeline returns the stages in execution order. Later stages assume the
// lexical cleanup has already happened, so the order is fixed.
func Pipeline(cfg Config) []Stage {
	return []Stage{
		StageFunc{N: NameRemoveComments, F: RemoveComments},
		StageFunc{N: NameNormalizeWhitespace, F: NormalizeWhitespace},
		StageFunc{N: NameDedupDeclarations, F: DedupDeclarations},
		StageFunc{N: NameMergeDeclarations, F: MergeDeclarations},
		StageFunc{N: NameRemoveBlankLines, F: RemoveBlankLines},
		NewInliner(cfg.InlineThreshold),
		NewUnroller(cfg.UnrollThreshold, cfg.UnrollMode, cfg.MaxUnroll),
		NewUniformFolder(cfg.Uniforms, cfg.KeepUnknownUniforms),
		NewTextureOptimizer(cfg.TextureRewriter),
	}
}
