// Package shader decodes WGSL assets into sources the render worker can compile,
// extracting entry points and vertex buffer layouts from the source text.
package shader

import (
	"fmt"
	"unicode/utf8"

	"github.com/cogentcore/webgpu/wgpu"
)

// Source is a decoded WGSL module.
type Source struct {
	// Label is used for the shader module and any pipeline built from it.
	Label string
	// Code is the WGSL text passed to the device unchanged.
	Code string
	// VertexEntry and FragmentEntry are the first @vertex and @fragment functions.
	VertexEntry   string
	FragmentEntry string
	// VertexBuffers are derived from structs whose fields all carry @location. Structs
	// whose name starts with "Instance" step per instance.
	VertexBuffers []wgpu.VertexBufferLayout
}

// Decoder turns WGSL bytes into a Source. It satisfies assets.Decoder[Source].
type Decoder struct {
	// Label is copied into the decoded Source.
	Label string
}

// Decode parses data as a render shader. The module must declare both a vertex and a
// fragment entry point.
//
// Parameters:
//   - data: the WGSL source bytes
//
// Returns:
//   - Source: the decoded module
//   - error: an error if the text is not UTF-8 or an entry point is missing
func (d Decoder) Decode(data []byte) (Source, error) {
	if !utf8.Valid(data) {
		return Source{}, fmt.Errorf("shader %s: source is not valid UTF-8", d.Label)
	}
	code := string(data)
	cleaned := stripComments(code)

	src := Source{
		Label:         d.Label,
		Code:          code,
		VertexEntry:   findEntryPoint(cleaned, vertexEntryRegex),
		FragmentEntry: findEntryPoint(cleaned, fragmentEntryRegex),
		VertexBuffers: vertexBufferLayouts(cleaned),
	}
	if src.VertexEntry == "" {
		return Source{}, fmt.Errorf("shader %s: no @vertex entry point", d.Label)
	}
	if src.FragmentEntry == "" {
		return Source{}, fmt.Errorf("shader %s: no @fragment entry point", d.Label)
	}
	return src, nil
}
