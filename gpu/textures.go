package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/rockfield3d/rockfield/core"
)

// UploadTexture copies an RGBA asset to the device. Assets with more than
// one layer get a 2D-array view, single-layer assets a plain 2D view.
func UploadTexture(device *wgpu.Device, label string, asset *core.TextureAsset) (*wgpu.Texture, *wgpu.TextureView, error) {
	w := uint32(asset.Width)
	h := uint32(asset.Height)
	layers := uint32(asset.Layers)

	expect := int(w) * int(h) * int(layers) * 4
	if len(asset.Texels) != expect {
		return nil, nil, fmt.Errorf("texture %q: got %d texel bytes, want %d", label, len(asset.Texels), expect)
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: layers},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, err
	}

	device.GetQueue().WriteTexture(tex.AsImageCopy(), asset.Texels, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  w * 4,
		RowsPerImage: h,
	}, &wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: layers})

	var view *wgpu.TextureView
	if layers > 1 {
		view, err = tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           label + " View",
			Format:          wgpu.TextureFormatRGBA8Unorm,
			Dimension:       wgpu.TextureViewDimension2DArray,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: layers,
			Aspect:          wgpu.TextureAspectAll,
		})
	} else {
		view, err = tex.CreateView(nil)
	}
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}
