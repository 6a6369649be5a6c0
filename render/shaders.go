// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// WGSL shader sources.
// These are compiled at build time using go:embed directives.

//go:embed shaders/model.wgsl
var modelShaderWGSL string

//go:embed shaders/sprite.wgsl
var spriteShaderWGSL string

//go:embed shaders/line.wgsl
var lineShaderWGSL string

//go:embed shaders/ui_panel.wgsl
var panelShaderWGSL string

//go:embed shaders/text.wgsl
var textShaderWGSL string

// ModelShader returns the WGSL source of the model pipeline.
func ModelShader() string { return modelShaderWGSL }

// SpriteShader returns the WGSL source of the sprite pipeline.
func SpriteShader() string { return spriteShaderWGSL }

// LineShader returns the WGSL source of the line pipeline.
func LineShader() string { return lineShaderWGSL }

// PanelShader returns the WGSL source of the 3D menu background pipeline.
func PanelShader() string { return panelShaderWGSL }

// TextShader returns the WGSL source of the glyph pipeline.
func TextShader() string { return textShaderWGSL }

// Shaders returns every embedded shader keyed by name.
func Shaders() map[string]string {
	return map[string]string{
		"model":    modelShaderWGSL,
		"sprite":   spriteShaderWGSL,
		"line":     lineShaderWGSL,
		"ui_panel": panelShaderWGSL,
		"text":     textShaderWGSL,
	}
}

// CompileShader translates WGSL source to SPIR-V with naga.
func CompileShader(name, source string) ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("render: compile %s shader: %w", name, err)
	}
	return spirv, nil
}

// ValidateShaders compiles every embedded shader and returns all failures
// joined together.
func ValidateShaders() error {
	var errs []error
	for name, source := range Shaders() {
		if _, err := CompileShader(name, source); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
