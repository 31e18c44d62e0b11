package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rockfield3d/rockfield/core"
	"github.com/rockfield3d/rockfield/shaders"
)

// TextPass draws the overlay in its own non-multisampled pass on top of
// the resolved frame, so the glyphs stay sharp regardless of MSAA.
type TextPass struct {
	Pipeline     *wgpu.RenderPipeline
	BindGroup    *wgpu.BindGroup
	atlasTexture *wgpu.Texture
	atlasView    *wgpu.TextureView

	vertexBuffer *wgpu.Buffer
	vertexCap    uint32
	vertexCount  uint32
	device       *wgpu.Device
}

func NewTextPass(device *wgpu.Device, format wgpu.TextureFormat, font *core.OverlayFont, sampler *wgpu.Sampler) (*TextPass, error) {
	w := font.Atlas.Bounds().Dx()
	h := font.Atlas.Bounds().Dy()
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	device.GetQueue().WriteTexture(tex.AsImageCopy(), font.Atlas.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	atlasView, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.OverlayVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Text BG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: atlasView},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		return nil, err
	}

	return &TextPass{
		Pipeline:     pipeline,
		BindGroup:    bindGroup,
		atlasTexture: tex,
		atlasView:    atlasView,
		device:       device,
	}, nil
}

// Update rebuilds the vertex buffer from the current items.
func (p *TextPass) Update(queue *wgpu.Queue, font *core.OverlayFont, items []core.OverlayItem, screenW, screenH int) {
	vertices := font.BuildVertices(items, screenW, screenH)
	p.vertexCount = uint32(len(vertices))
	if p.vertexCount == 0 {
		return
	}

	sizeBytes := uint64(len(vertices)) * uint64(unsafe.Sizeof(core.OverlayVertex{}))
	if p.vertexBuffer == nil || p.vertexCap < p.vertexCount {
		if p.vertexBuffer != nil {
			p.vertexBuffer.Release()
		}
		p.vertexCap = p.vertexCount + 512
		p.vertexBuffer, _ = p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text VB",
			Size:  uint64(p.vertexCap) * uint64(unsafe.Sizeof(core.OverlayVertex{})),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
	}
	queue.WriteBuffer(p.vertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), sizeBytes))
}

// Draw encodes the overlay pass, loading the already rendered frame.
func (p *TextPass) Draw(encoder *wgpu.CommandEncoder, swapchainView *wgpu.TextureView) {
	if p.vertexCount == 0 || p.vertexBuffer == nil {
		return
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    swapchainView,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.vertexBuffer, 0, p.vertexBuffer.GetSize())
	pass.Draw(p.vertexCount, 1, 0, 0)
	pass.End()
}

func (p *TextPass) Release() {
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
	}
	if p.atlasView != nil {
		p.atlasView.Release()
	}
	if p.atlasTexture != nil {
		p.atlasTexture.Release()
	}
}
