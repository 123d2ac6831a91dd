package shader

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnresolvedType is returned when a struct or buffer binding refers to a type whose layout
// cannot be computed.
var ErrUnresolvedType = errors.New("unresolved WGSL type")

// shader is the implementation of the Shader interface.
// It holds the WGSL source and the layout metadata reflected from it.
type shader struct {
	key                        string
	source                     string
	structs                    map[string]StructLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a WGSL source together with the buffer layouts reflected from it: the memory layout of
// every struct it declares and a bind group layout entry for every uniform or storage buffer it binds.
// Nothing here touches a GPU device; the descriptors are what a renderer hands to wgpu.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Struct retrieves the resolved layout of a struct declared in the source.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - StructLayout: the layout, or the zero value if absent
	//   - bool: true if the struct was found
	Struct(name string) (StructLayout, bool)

	// StructNames returns the names of every resolved struct, sorted.
	//
	// Returns:
	//   - []string: the struct names
	StructNames() []string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor carrying the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader reflects the struct and buffer binding layouts of a WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, also used as the module label
//   - visibility: the shader stages that see the declared bindings
//   - source: the WGSL source
//
// Returns:
//   - Shader: the reflected shader
//   - error: ErrUnresolvedType (wrapped) if a struct or buffer binding uses an unknown type
func NewShader(key string, visibility wgpu.ShaderStage, source string) (Shader, error) {
	cleaned := stripComments(source)

	structs, unresolved := computeStructLayouts(parseStructBlocks(cleaned))
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("shader %s: struct %s: %w", key, unresolved[0], ErrUnresolvedType)
	}

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	for _, b := range parseBindings(cleaned) {
		entry, ok := classifyBuffer(uint32(b.binding), visibility, b.addressSpace)
		if !ok {
			continue
		}
		layout, ok := resolveTypeLayout(b.typeName, structs)
		if !ok {
			return nil, fmt.Errorf("shader %s: binding %s of type %s: %w", key, b.varName, b.typeName, ErrUnresolvedType)
		}
		entry.Buffer.MinBindingSize = layout.size
		groups[b.group] = append(groups[b.group], entry)

		if varNames[b.group] == nil {
			varNames[b.group] = make(map[int]string)
		}
		varNames[b.group][b.binding] = b.varName
	}

	return &shader{
		key:                        key,
		source:                     source,
		structs:                    structs,
		bindGroupLayoutDescriptors: groupEntries(groups),
		bindingVarNames:            varNames,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Struct(name string) (StructLayout, bool) {
	l, ok := s.structs[name]
	if !ok {
		return StructLayout{}, false
	}
	l.Members = slices.Clone(l.Members)
	return l, true
}

func (s *shader) StructNames() []string {
	return slices.Sorted(maps.Keys(s.structs))
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
