package shader

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to compute MinBindingSize for buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// Member describes one field of a host-shareable WGSL struct.
type Member struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
	Align  uint64
}

// StructLayout is the resolved memory layout of a WGSL struct in the uniform or storage address space.
type StructLayout struct {
	Name    string
	Size    uint64
	Align   uint64
	Members []Member
}

// Member returns the member with the given name.
//
// Parameters:
//   - name: the WGSL field name
//
// Returns:
//   - Member: the member, or the zero value if absent
//   - bool: true if the struct has a member with that name
func (l StructLayout) Member(name string) (Member, bool) {
	for _, m := range l.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}
