package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap maps WGSL primitive, vector, matrix, and atomic type names
// to their byte size and alignment per the WGSL specification.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	// Scalars
	"f32": {4, 4},
	"i32": {4, 4},
	"u32": {4, 4},
	"f16": {2, 2},

	// Vectors – f32
	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	// Vectors – i32
	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	// Vectors – u32
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	// Matrices – matCxR<f32>: C columns of vecR<f32>, stride = roundUp(align(vecR), size(vecR))
	"mat2x2<f32>": {16, 8},
	"mat2x2f":     {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x3<f32>": {64, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously-computed struct layouts. Handles fixed-size arrays (array<T, N>) and returns
// false for runtime-sized arrays or unknown types.
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "f32", "FrameUniforms", "array<vec4<f32>, 6>"
//   - knownTypes: a map of already-resolved struct names to their layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: true if the type could be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]StructLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if s, ok := knownTypes[typeName]; ok {
		return wgslTypeLayout{s.Size, s.Align}, true
	}

	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return wgslTypeLayout{}, false
	}
	inner := typeName[6 : len(typeName)-1]
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		// runtime-sized arrays have no fixed size
		return wgslTypeLayout{}, false
	}
	elemLayout, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elemLayout.align, elemLayout.size)
	return wgslTypeLayout{count * stride, elemLayout.align}, true
}

// computeStructLayout places each field of a parsed struct at its next aligned offset and rounds
// the total size up to the struct's alignment (the max alignment of its fields).
// Fields with @builtin attributes are skipped as they are not part of the buffer layout.
//
// Parameters:
//   - ps: the parsed struct whose layout to compute
//   - knownTypes: a map of already-resolved struct names to their layouts
//
// Returns:
//   - StructLayout: the computed layout including member offsets
//   - bool: true if all fields could be resolved
func computeStructLayout(ps parsedStruct, knownTypes map[string]StructLayout) (StructLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	members := make([]Member, 0, len(ps.fields))

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return StructLayout{}, false
		}

		offset = roundUpAlign(fieldLayout.align, offset)
		members = append(members, Member{
			Name:   field.name,
			Type:   field.typeName,
			Offset: offset,
			Size:   fieldLayout.size,
			Align:  fieldLayout.align,
		})
		offset += fieldLayout.size
		maxAlign = max(maxAlign, fieldLayout.align)
	}

	return StructLayout{
		Name:    ps.name,
		Size:    roundUpAlign(maxAlign, offset),
		Align:   maxAlign,
		Members: members,
	}, true
}

// computeStructLayouts computes the layouts of all parsed WGSL structs. It resolves
// dependencies between structs iteratively, handling cases where one struct contains
// fields typed as another struct. Structs that cannot be resolved are returned by name.
//
// Parameters:
//   - structs: all parsed struct blocks from the WGSL source
//
// Returns:
//   - map[string]StructLayout: a map from struct name to computed layout
//   - []string: names of structs whose layout could not be resolved
func computeStructLayouts(structs []parsedStruct) (map[string]StructLayout, []string) {
	resolved := make(map[string]StructLayout, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]

		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}

		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}

	unresolved := make([]string, 0, len(remaining))
	for _, ps := range remaining {
		unresolved = append(unresolved, ps.name)
	}
	return resolved, unresolved
}
