package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneUniforms matches the SceneUniforms block shared by the WGSL passes.
// Field order and padding must stay in sync with the shaders.
type SceneUniforms struct {
	View           mgl32.Mat4
	Proj           mgl32.Mat4
	LightPos       [4]float32
	CamPos         [4]float32
	LightIntensity float32
	LocSpeed       float32
	GlobSpeed      float32
	Time           float32
}

// ObjectUniforms matches the per-object block in mesh.wgsl.
type ObjectUniforms struct {
	Model  mgl32.Mat4
	Params [4]float32
}

func NewUniformBuffer[T any](device *wgpu.Device, label string) (*wgpu.Buffer, error) {
	var zero T
	return device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(unsafe.Sizeof(zero)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
}

func WriteUniform[T any](queue *wgpu.Queue, buf *wgpu.Buffer, value *T) {
	queue.WriteBuffer(buf, 0, unsafe.Slice((*byte)(unsafe.Pointer(value)), unsafe.Sizeof(*value)))
}
