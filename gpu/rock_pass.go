package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rockfield3d/rockfield/core"
	"github.com/rockfield3d/rockfield/shaders"
)

// RockPass draws the asteroid belt in a single instanced call. The instance
// buffer is filled once at startup from the packed placement records and
// never rewritten; all animation happens in the vertex shader.
type RockPass struct {
	Pipeline       *wgpu.RenderPipeline
	BindGroup      *wgpu.BindGroup
	Mesh           *MeshBuffers
	InstanceBuffer *wgpu.Buffer
	InstanceCount  uint32
}

func NewRockPass(device *wgpu.Device, format wgpu.TextureFormat, sampleCount uint32,
	sceneBuf *wgpu.Buffer, texView *wgpu.TextureView, sampler *wgpu.Sampler,
	mesh *core.Mesh, instances []core.Instance) (*RockPass, error) {

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Rock Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.RocksWGSL},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Rock Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				meshVertexLayout(),
				{
					ArrayStride: uint64(unsafe.Sizeof(core.Instance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 4},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 5},
						{Format: wgpu.VertexFormatFloat32, Offset: 24, ShaderLocation: 6},
						{Format: wgpu.VertexFormatSint32, Offset: 28, ShaderLocation: 7},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	meshBufs, err := UploadMesh(device, "Rock", mesh)
	if err != nil {
		return nil, err
	}

	packed := core.PackInstances(instances)
	instBuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Rock Instances",
		Size:  uint64(len(packed)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		meshBufs.Release()
		return nil, err
	}
	device.GetQueue().WriteBuffer(instBuf, 0, packed)

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Rock BG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: sceneBuf, Size: uint64(unsafe.Sizeof(SceneUniforms{}))},
			{Binding: 1, TextureView: texView},
			{Binding: 2, Sampler: sampler},
		},
	})
	if err != nil {
		meshBufs.Release()
		instBuf.Release()
		return nil, err
	}

	return &RockPass{
		Pipeline:       pipeline,
		BindGroup:      bindGroup,
		Mesh:           meshBufs,
		InstanceBuffer: instBuf,
		InstanceCount:  uint32(len(instances)),
	}, nil
}

func (p *RockPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.InstanceCount == 0 {
		return
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.Mesh.Vertex, 0, p.Mesh.Vertex.GetSize())
	pass.SetVertexBuffer(1, p.InstanceBuffer, 0, p.InstanceBuffer.GetSize())
	pass.SetIndexBuffer(p.Mesh.Index, wgpu.IndexFormatUint32, 0, p.Mesh.Index.GetSize())
	pass.DrawIndexed(p.Mesh.IndexCount, p.InstanceCount, 0, 0, 0)
}

func (p *RockPass) Release() {
	if p.Mesh != nil {
		p.Mesh.Release()
	}
	if p.InstanceBuffer != nil {
		p.InstanceBuffer.Release()
	}
}
