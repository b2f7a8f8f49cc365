package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo pairs a vertex format with its size in bytes.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int // -1 without @location
	isBuiltin bool
}

// parsedStruct is a WGSL struct block in declaration order.
type parsedStruct struct {
	name   string
	fields []parsedField
}
