package uniform

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestGPUFrameUniformsSize(t *testing.T) {
	var g GPUFrameUniforms
	assert.Equal(t, 768, g.Size())
	assert.Len(t, g.Marshal(), 768)
}

func TestCheckLayoutMatchesWGSL(t *testing.T) {
	require.NoError(t, CheckLayout())
}

func TestMarshalOffsets(t *testing.T) {
	s := NewUniformState(
		WithModel(mgl64.Translate3D(1, 2, 3)),
		WithFrameNumber(12),
		WithViewport(common.Viewport{X: 10, Y: 20, Width: 640, Height: 480}),
	)
	s.SetCameraPosition(mgl64.Vec3{6378137.5, 0, 0})
	g := NewGPUFrameUniforms(s.Resolve())
	buf := g.Marshal()

	// model translation lives in column 3
	assert.Equal(t, float32(1), float32At(buf, 64+12*4))
	assert.Equal(t, float32(2), float32At(buf, 64+13*4))
	assert.Equal(t, float32(12), float32At(buf, 700))
	assert.Equal(t, float32(10), float32At(buf, 752))
	assert.Equal(t, float32(20), float32At(buf, 756))
	assert.Equal(t, float32(640), float32At(buf, 760))
	assert.Equal(t, float32(480), float32At(buf, 764))

	assert.Equal(t, g.EncodedCameraPositionMCHigh[0], float32At(buf, 720))
	assert.Equal(t, g.EncodedCameraPositionMCLow[0], float32At(buf, 736))
	assert.Equal(t, float32(0), float32At(buf, 716))
	assert.Equal(t, float32(0), float32At(buf, 732))
	assert.Equal(t, float32(0), float32At(buf, 748))
}

func TestFrameNumberWrapsBeforeFloat32LosesIntegers(t *testing.T) {
	last := NewGPUFrameUniforms(NewUniformState(WithFrameNumber(FrameNumberPeriod - 1)).Resolve())
	assert.Equal(t, float32(16777215), last.FrameNumber)

	wrapped := NewGPUFrameUniforms(NewUniformState(WithFrameNumber(FrameNumberPeriod + 1)).Resolve())
	assert.Equal(t, float32(1), wrapped.FrameNumber)
	assert.Equal(t, float32(1), float32At(wrapped.Marshal(), 700))

	// without wrapping, 2^24 and 2^24+1 would both narrow to 16777216
	a := NewGPUFrameUniforms(NewUniformState(WithFrameNumber(FrameNumberPeriod)).Resolve())
	assert.NotEqual(t, a.FrameNumber, wrapped.FrameNumber)
}

func TestEncodedCameraSurvivesNarrowing(t *testing.T) {
	s := NewUniformState()
	camera := mgl64.Vec3{6378137.25, -1234567.125, 42.0625}
	s.SetCameraPosition(camera)
	g := NewGPUFrameUniforms(s.Resolve())

	for i := range 3 {
		sum := float64(g.EncodedCameraPositionMCHigh[i]) + float64(g.EncodedCameraPositionMCLow[i])
		assert.InDelta(t, camera[i], sum, 1e-6)
	}
}

func TestNormalIsPaddedPerColumn(t *testing.T) {
	s := NewUniformState(WithView(mgl64.Scale3D(2, 4, 8)))
	g := NewGPUFrameUniforms(s.Resolve())

	// inverse transpose of a pure scale is its reciprocal on the diagonal
	assert.InDelta(t, 0.5, g.Normal[0], 1e-7)
	assert.InDelta(t, 0.25, g.Normal[5], 1e-7)
	assert.InDelta(t, 0.125, g.Normal[10], 1e-7)
	assert.Zero(t, g.Normal[3])
	assert.Zero(t, g.Normal[7])
	assert.Zero(t, g.Normal[11])
}

func TestBindGroupLayoutEntry(t *testing.T) {
	e := BindGroupLayoutEntry(3)
	assert.Equal(t, uint32(3), e.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, e.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
	assert.Equal(t, uint64(768), e.Buffer.MinBindingSize)

	sh, err := FrameShader()
	require.NoError(t, err)
	reflected := sh.BindGroupLayoutDescriptor(0).Entries
	require.Len(t, reflected, 1)
	assert.Equal(t, BindGroupLayoutEntry(0), reflected[0])
	assert.Equal(t, "frame", sh.BindGroupVarName(0, 0))
}

func TestStrideAndBufferDescriptor(t *testing.T) {
	assert.Equal(t, uint64(768), Stride(0))
	assert.Equal(t, uint64(768), Stride(256))
	assert.Equal(t, uint64(1000), Stride(500))

	d := BufferDescriptor("frame", 4, 256)
	assert.Equal(t, "frame", d.Label)
	assert.Equal(t, uint64(4*768), d.Size)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, d.Usage)
	assert.False(t, d.MappedAtCreation)
}

func TestStageWrites(t *testing.T) {
	a := NewUniformState(WithFrameNumber(1)).Resolve()
	b := NewUniformState(WithFrameNumber(2)).Resolve()

	writes := StageWrites(2, 1024, []Snapshot{a, b})
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(0), writes[0].Offset)
	assert.Equal(t, uint64(1024), writes[1].Offset)
	assert.Equal(t, 2, writes[1].Binding)
	assert.Equal(t, float32(2), float32At(writes[1].Data, 700))

	assert.Empty(t, StageWrites(0, 256, nil))
}

func TestDeclaration(t *testing.T) {
	assert.Equal(t, "@group(1) @binding(2) var<uniform> u: FrameUniforms;", Declaration(1, 2, "u"))
}
