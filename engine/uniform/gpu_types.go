package uniform

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPUFrameUniformsSource is the canonical WGSL definition of the FrameUniforms struct.
// Matches GPUFrameUniforms layout exactly (768 bytes, uniform address space alignment).
//
//go:embed assets/frame_uniforms.wgsl
var GPUFrameUniformsSource string

// FrameNumberPeriod is 2^24, the first integer above which float32 cannot represent every
// successor. The shader frame number wraps at this period so each value it sees is exact and
// consecutive frames always differ. The full uint64 count stays available on the Snapshot.
const FrameNumberPeriod = 1 << 24

// GPUFrameUniforms is the GPU-aligned representation of the per-draw uniform block.
// Matches the WGSL FrameUniforms struct layout exactly (see GPUFrameUniformsSource).
// Size: 768 bytes.
type GPUFrameUniforms struct {
	View                             [16]float32 // offset   0
	Model                            [16]float32 // offset  64
	InverseModel                     [16]float32 // offset 128
	ModelView                        [16]float32 // offset 192
	ModelViewRelativeToEye           [16]float32 // offset 256
	ViewProjection                   [16]float32 // offset 320
	ModelViewProjection              [16]float32 // offset 384
	ModelViewProjectionRelativeToEye [16]float32 // offset 448
	ViewportOrthographic             [16]float32 // offset 512
	ViewportTransformation           [16]float32 // offset 576
	Normal                           [12]float32 // offset 640: mat3x3<f32>, columns padded to vec4
	SunDirectionEC                   [3]float32  // offset 688
	FrameNumber                      float32     // offset 700: frame number modulo FrameNumberPeriod
	SunDirectionWC                   [3]float32  // offset 704
	_pad0                            float32     // offset 716
	EncodedCameraPositionMCHigh      [3]float32  // offset 720
	_pad1                            float32     // offset 732
	EncodedCameraPositionMCLow       [3]float32  // offset 736
	_pad2                            float32     // offset 748
	Viewport                         [4]float32  // offset 752: x, y, width, height
}

// NewGPUFrameUniforms narrows a resolved snapshot into the GPU layout.
//
// Parameters:
//   - s: the resolved snapshot
//
// Returns:
//   - GPUFrameUniforms: the shader-precision uniform block
func NewGPUFrameUniforms(s Snapshot) GPUFrameUniforms {
	return GPUFrameUniforms{
		View:                             common.Mat4ToGPU(s.View),
		Model:                            common.Mat4ToGPU(s.Model),
		InverseModel:                     common.Mat4ToGPU(s.InverseModel),
		ModelView:                        common.Mat4ToGPU(s.ModelView),
		ModelViewRelativeToEye:           common.Mat4ToGPU(s.ModelViewRelativeToEye),
		ViewProjection:                   common.Mat4ToGPU(s.ViewProjection),
		ModelViewProjection:              common.Mat4ToGPU(s.ModelViewProjection),
		ModelViewProjectionRelativeToEye: common.Mat4ToGPU(s.ModelViewProjectionRelativeToEye),
		ViewportOrthographic:             common.Mat4ToGPU(s.ViewportOrthographic),
		ViewportTransformation:           common.Mat4ToGPU(s.ViewportTransformation),
		Normal:                           common.Mat3ToGPU(s.Normal),
		SunDirectionEC:                   common.Vec3ToGPU(s.SunDirectionEC),
		FrameNumber:                      float32(s.FrameNumber % FrameNumberPeriod),
		SunDirectionWC:                   common.Vec3ToGPU(s.SunDirectionWC),
		EncodedCameraPositionMCHigh:      common.Vec3ToGPU(s.EncodedCameraPositionMCHigh),
		EncodedCameraPositionMCLow:       common.Vec3ToGPU(s.EncodedCameraPositionMCLow),
		Viewport: [4]float32{
			float32(s.Viewport.X), float32(s.Viewport.Y),
			float32(s.Viewport.Width), float32(s.Viewport.Height),
		},
	}
}

// Size returns the size of the GPUFrameUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (768)
func (g *GPUFrameUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	put := func(vals ...float32) {
		for _, v := range vals {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	for _, m := range [...]*[16]float32{
		&g.View, &g.Model, &g.InverseModel, &g.ModelView, &g.ModelViewRelativeToEye,
		&g.ViewProjection, &g.ModelViewProjection, &g.ModelViewProjectionRelativeToEye,
		&g.ViewportOrthographic, &g.ViewportTransformation,
	} {
		put(m[:]...)
	}
	put(g.Normal[:]...)
	put(g.SunDirectionEC[:]...)
	put(g.FrameNumber)
	put(g.SunDirectionWC[:]...)
	put(0) // _pad0
	put(g.EncodedCameraPositionMCHigh[:]...)
	put(0) // _pad1
	put(g.EncodedCameraPositionMCLow[:]...)
	put(0) // _pad2
	put(g.Viewport[:]...)
	return buf
}

// ErrLayoutMismatch is returned by CheckLayout when GPUFrameUniforms and the WGSL struct disagree.
var ErrLayoutMismatch = errors.New("frame uniform layout mismatch")

// DefaultUniformAlignment is the WebGPU default minUniformBufferOffsetAlignment.
const DefaultUniformAlignment uint64 = 256

// frameUniformsVisibility is the set of stages that read the frame uniform block.
const frameUniformsVisibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

// Declaration returns the WGSL resource declaration that binds a FrameUniforms buffer.
//
// Parameters:
//   - group: the bind group index
//   - binding: the binding index inside the group
//   - varName: the WGSL variable name
//
// Returns:
//   - string: the declaration, e.g. "@group(0) @binding(0) var<uniform> frame: FrameUniforms;"
func Declaration(group, binding int, varName string) string {
	return fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: FrameUniforms;", group, binding, varName)
}

// FrameShader reflects GPUFrameUniformsSource bound at group 0, binding 0 as "frame".
//
// Returns:
//   - shader.Shader: the reflected shader
//   - error: if the embedded source cannot be reflected
func FrameShader() (shader.Shader, error) {
	src := GPUFrameUniformsSource + "\n" + Declaration(0, 0, "frame") + "\n"
	return shader.NewShader("frame_uniforms", frameUniformsVisibility, src)
}

// CheckLayout verifies that every field of GPUFrameUniforms sits at the offset WGSL assigns to
// the member of the same name, and that both structs have the same size.
//
// Returns:
//   - error: ErrLayoutMismatch (wrapped) naming the first disagreement, or nil
func CheckLayout() error {
	sh, err := FrameShader()
	if err != nil {
		return err
	}
	layout, ok := sh.Struct("FrameUniforms")
	if !ok {
		return fmt.Errorf("FrameUniforms struct not found: %w", ErrLayoutMismatch)
	}

	goType := reflect.TypeOf(GPUFrameUniforms{})
	if uint64(goType.Size()) != layout.Size {
		return fmt.Errorf("size %d, WGSL %d: %w", goType.Size(), layout.Size, ErrLayoutMismatch)
	}
	seen := 0
	for i := range goType.NumField() {
		f := goType.Field(i)
		if strings.HasPrefix(f.Name, "_") {
			continue
		}
		m, ok := layout.Member(lowerFirst(f.Name))
		if !ok {
			return fmt.Errorf("field %s has no WGSL member: %w", f.Name, ErrLayoutMismatch)
		}
		if uint64(f.Offset) != m.Offset {
			return fmt.Errorf("field %s at offset %d, WGSL %d: %w", f.Name, f.Offset, m.Offset, ErrLayoutMismatch)
		}
		seen++
	}
	if seen != len(layout.Members) {
		return fmt.Errorf("%d fields, WGSL %d members: %w", seen, len(layout.Members), ErrLayoutMismatch)
	}
	return nil
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// BindGroupLayoutEntry describes the frame uniform block as a uniform buffer binding visible to
// the vertex and fragment stages.
//
// Parameters:
//   - binding: the binding index inside the bind group
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the layout entry
func BindGroupLayoutEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: frameUniformsVisibility,
	}
	entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	entry.Buffer.MinBindingSize = uint64(unsafe.Sizeof(GPUFrameUniforms{}))
	return entry
}

// BufferDescriptor describes a uniform buffer large enough for count frame uniform blocks, each
// aligned to alignment bytes (the device's minUniformBufferOffsetAlignment, typically 256).
//
// Parameters:
//   - label: debug label for the buffer
//   - count: number of blocks
//   - alignment: per-block stride alignment in bytes
//
// Returns:
//   - wgpu.BufferDescriptor: the buffer descriptor
func BufferDescriptor(label string, count int, alignment uint64) wgpu.BufferDescriptor {
	return wgpu.BufferDescriptor{
		Label:            label,
		Size:             Stride(alignment) * uint64(count),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}

// Stride returns the size of one frame uniform block rounded up to alignment.
//
// Parameters:
//   - alignment: the required offset alignment in bytes; 0 means no rounding
//
// Returns:
//   - uint64: the aligned block stride
func Stride(alignment uint64) uint64 {
	size := uint64(unsafe.Sizeof(GPUFrameUniforms{}))
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) / alignment * alignment
}

// BufferWrite describes a single GPU buffer write targeting a binding at a byte offset.
// The renderer performs the actual queue write.
type BufferWrite struct {
	Binding int
	Offset  uint64
	Data    []byte
}

// StageWrites marshals one block per snapshot, each at its aligned offset in the buffer.
//
// Parameters:
//   - binding: the binding index of the uniform buffer
//   - alignment: per-block stride alignment in bytes
//   - snapshots: resolved snapshots in draw order
//
// Returns:
//   - []BufferWrite: one write per snapshot
func StageWrites(binding int, alignment uint64, snapshots []Snapshot) []BufferWrite {
	stride := Stride(alignment)
	writes := make([]BufferWrite, 0, len(snapshots))
	for i, s := range snapshots {
		g := NewGPUFrameUniforms(s)
		writes = append(writes, BufferWrite{
			Binding: binding,
			Offset:  uint64(i) * stride,
			Data:    g.Marshal(),
		})
	}
	return writes
}
