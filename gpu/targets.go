package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderTargets holds the multisampled color target and the depth buffer.
// With SampleCount 1 the color target is skipped and passes render straight
// into the swapchain view.
type RenderTargets struct {
	SampleCount uint32

	msaaTexture *wgpu.Texture
	MSAAView    *wgpu.TextureView

	depthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
}

const DepthFormat = wgpu.TextureFormatDepth32Float

// NormalizeSampleCount clamps the requested MSAA level to what the surface
// path supports. Anything other than 4 falls back to no multisampling.
func NormalizeSampleCount(requested int) uint32 {
	if requested == 4 {
		return 4
	}
	return 1
}

func NewRenderTargets(device *wgpu.Device, config *wgpu.SurfaceConfiguration, sampleCount uint32) (*RenderTargets, error) {
	t := &RenderTargets{SampleCount: sampleCount}
	if err := t.create(device, config); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *RenderTargets) create(device *wgpu.Device, config *wgpu.SurfaceConfiguration) error {
	if t.SampleCount > 1 {
		tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Color",
			Size:          wgpu.Extent3D{Width: config.Width, Height: config.Height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   t.SampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        config.Format,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		t.msaaTexture = tex
		t.MSAAView, err = tex.CreateView(nil)
		if err != nil {
			return err
		}
	}

	depth, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: config.Width, Height: config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   t.SampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	t.depthTexture = depth
	t.DepthView, err = depth.CreateView(nil)
	return err
}

// Resize drops and recreates the attachments at the new surface size.
func (t *RenderTargets) Resize(device *wgpu.Device, config *wgpu.SurfaceConfiguration) error {
	t.Release()
	return t.create(device, config)
}

// BeginScenePass starts the main pass. With MSAA the pass renders into the
// multisampled target and resolves into the swapchain view; the resolved
// view is all later passes need, so the MSAA contents are discarded.
func (t *RenderTargets) BeginScenePass(encoder *wgpu.CommandEncoder, swapchainView *wgpu.TextureView, clear wgpu.Color) *wgpu.RenderPassEncoder {
	color := wgpu.RenderPassColorAttachment{
		View:       swapchainView,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clear,
	}
	if t.SampleCount > 1 {
		color.View = t.MSAAView
		color.ResolveTarget = swapchainView
		color.StoreOp = wgpu.StoreOpDiscard
	}

	return encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            t.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
}

func (t *RenderTargets) Release() {
	if t.MSAAView != nil {
		t.MSAAView.Release()
		t.MSAAView = nil
	}
	if t.msaaTexture != nil {
		t.msaaTexture.Release()
		t.msaaTexture = nil
	}
	if t.DepthView != nil {
		t.DepthView.Release()
		t.DepthView = nil
	}
	if t.depthTexture != nil {
		t.depthTexture.Release()
		t.depthTexture = nil
	}
}
