package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/rockfield3d/rockfield/core"
	"github.com/rockfield3d/rockfield/shaders"
)

// MeshPass renders single objects (planet, light marker, cage construct)
// with one pipeline; each object carries its own texture and model uniform.
type MeshPass struct {
	Pipeline *wgpu.RenderPipeline
}

type MeshObject struct {
	Mesh       *MeshBuffers
	Uniforms   ObjectUniforms
	uniformBuf *wgpu.Buffer
	sceneBG    *wgpu.BindGroup
	objectBG   *wgpu.BindGroup
	dirty      bool
}

func NewMeshPass(device *wgpu.Device, format wgpu.TextureFormat, sampleCount uint32) (*MeshPass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Mesh Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.MeshWGSL},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Mesh Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{meshVertexLayout()},
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

	return &MeshPass{Pipeline: pipeline}, nil
}

func (p *MeshPass) AddObject(device *wgpu.Device, label string, mesh *core.Mesh,
	sceneBuf *wgpu.Buffer, texView *wgpu.TextureView, sampler *wgpu.Sampler) (*MeshObject, error) {

	meshBufs, err := UploadMesh(device, label, mesh)
	if err != nil {
		return nil, err
	}

	uniformBuf, err := NewUniformBuffer[ObjectUniforms](device, label+" Uniforms")
	if err != nil {
		meshBufs.Release()
		return nil, err
	}

	sceneBG, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Scene BG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: sceneBuf, Size: uint64(unsafe.Sizeof(SceneUniforms{}))},
			{Binding: 1, TextureView: texView},
			{Binding: 2, Sampler: sampler},
		},
	})
	if err != nil {
		meshBufs.Release()
		uniformBuf.Release()
		return nil, err
	}

	objectBG, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Object BG",
		Layout: p.Pipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuf, Size: uint64(unsafe.Sizeof(ObjectUniforms{}))},
		},
	})
	if err != nil {
		meshBufs.Release()
		uniformBuf.Release()
		return nil, err
	}

	obj := &MeshObject{
		Mesh:       meshBufs,
		uniformBuf: uniformBuf,
		sceneBG:    sceneBG,
		objectBG:   objectBG,
		dirty:      true,
	}
	obj.Uniforms.Model = mgl32.Ident4()
	return obj, nil
}

func (o *MeshObject) SetModel(model mgl32.Mat4) {
	o.Uniforms.Model = model
	o.dirty = true
}

func (o *MeshObject) SetParams(emissive, darken, spin float32) {
	o.Uniforms.Params = [4]float32{emissive, darken, spin, 0}
	o.dirty = true
}

func (o *MeshObject) Flush(queue *wgpu.Queue) {
	if !o.dirty {
		return
	}
	WriteUniform(queue, o.uniformBuf, &o.Uniforms)
	o.dirty = false
}

func (p *MeshPass) Draw(pass *wgpu.RenderPassEncoder, objects ...*MeshObject) {
	pass.SetPipeline(p.Pipeline)
	for _, o := range objects {
		pass.SetBindGroup(0, o.sceneBG, nil)
		pass.SetBindGroup(1, o.objectBG, nil)
		pass.SetVertexBuffer(0, o.Mesh.Vertex, 0, o.Mesh.Vertex.GetSize())
		pass.SetIndexBuffer(o.Mesh.Index, wgpu.IndexFormatUint32, 0, o.Mesh.Index.GetSize())
		pass.DrawIndexed(o.Mesh.IndexCount, 1, 0, 0, 0)
	}
}

func (o *MeshObject) Release() {
	if o.Mesh != nil {
		o.Mesh.Release()
	}
	if o.uniformBuf != nil {
		o.uniformBuf.Release()
	}
}
