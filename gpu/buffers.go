package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rockfield3d/rockfield/core"
)

// MeshBuffers is a mesh uploaded to the device, ready for DrawIndexed.
type MeshBuffers struct {
	Vertex     *wgpu.Buffer
	Index      *wgpu.Buffer
	IndexCount uint32
}

func UploadMesh(device *wgpu.Device, label string, mesh *core.Mesh) (*MeshBuffers, error) {
	vSize := uint64(len(mesh.Vertices)) * uint64(unsafe.Sizeof(core.Vertex{}))
	vbuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " VB",
		Size:  vSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	device.GetQueue().WriteBuffer(vbuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&mesh.Vertices[0])), vSize))

	iSize := uint64(len(mesh.Indices)) * 4
	ibuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " IB",
		Size:  iSize,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return nil, err
	}
	device.GetQueue().WriteBuffer(ibuf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&mesh.Indices[0])), iSize))

	return &MeshBuffers{
		Vertex:     vbuf,
		Index:      ibuf,
		IndexCount: uint32(len(mesh.Indices)),
	}, nil
}

func (m *MeshBuffers) Release() {
	if m.Vertex != nil {
		m.Vertex.Release()
	}
	if m.Index != nil {
		m.Index.Release()
	}
}

// meshVertexLayout is the shared layout for core.Vertex streams.
func meshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(core.Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 32, ShaderLocation: 3},
		},
	}
}
