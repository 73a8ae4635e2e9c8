package rendering

import (
	"fmt"

	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/logger"
)

// TextureFormat selects the pixel layout of a device texture
type TextureFormat int

// FormatRGBA8Unorm is 4-channel 8-bit unsigned normalized. The eye
// buffers must use it so the render manager can present them directly.
const FormatRGBA8Unorm TextureFormat = iota

// Texture2DDesc describes a device texture to create
type Texture2DDesc struct {
	Width  int
	Height int
	Format TextureFormat
}

// Texture2D is a device texture resource. Release is idempotent.
type Texture2D interface {
	Release()
}

// RenderTargetView is a render-target binding over a texture
type RenderTargetView interface {
	Release()
}

// Device is the narrow slice of a Direct3D-style device the plugin
// needs; the host owns the real device, we only borrow it
type Device interface {
	CreateTexture2D(desc Texture2DDesc) (Texture2D, error)
	CreateRenderTargetView(tex Texture2D) (RenderTargetView, error)
}

// DeviceContext is the immediate context used to bind targets and copy
// the host's finished eye images
type DeviceContext interface {
	SetRenderTargets(view RenderTargetView)
	CopyResource(dst, src Texture2D)
}

// d3d11Backend constructs and fills eye buffers on a Direct3D-style
// device borrowed from the host
type d3d11Backend struct {
	device  Device
	context DeviceContext
	log     *logger.Logger
}

func newD3D11Backend(lib *GraphicsLibraryD3D11, log *logger.Logger) *d3d11Backend {
	return &d3d11Backend{device: lib.Device, context: lib.Context, log: log}
}

// ConstructEyeBuffer allocates a render target texture matching the
// eye's viewport and a view over it. On failure nothing is retained and
// the caller may retry.
func (b *d3d11Backend) ConstructEyeBuffer(eye int, info RenderInfo) (RenderBuffer, error) {
	b.log.Debugf("[OSVR Rendering Plugin] ConstructBuffersD3D11 eye %d", eye)

	desc := Texture2DDesc{
		Width:  int(info.Viewport.Width),
		Height: int(info.Viewport.Height),
		Format: FormatRGBA8Unorm,
	}

	tex, err := b.device.CreateTexture2D(desc)
	if err != nil {
		return RenderBuffer{}, fmt.Errorf("can't create texture for eye %d: %v", eye, err)
	}

	view, err := b.device.CreateRenderTargetView(tex)
	if err != nil {
		tex.Release()
		return RenderBuffer{}, fmt.Errorf("could not create render target for eye %d: %v", eye, err)
	}

	return RenderBuffer{D3D11: &RenderBufferD3D11{
		ColorBuffer:     tex,
		ColorBufferView: view,
	}}, nil
}

// RenderEye binds the eye's render target and copies the host's
// finished image into it as a full-resource copy
func (b *d3d11Backend) RenderEye(info RenderInfo, buf RenderBuffer, native NativeTexture, eye int) error {
	if buf.D3D11 == nil {
		return fmt.Errorf("eye %d buffer is not a Direct3D buffer", eye)
	}

	b.context.SetRenderTargets(buf.D3D11.ColorBufferView)

	if native == nil {
		// The host has not rendered this eye yet; nothing to copy
		b.log.Debugf("[OSVR Rendering Plugin] no host texture for eye %d, skipping copy", eye)
		return nil
	}

	src, ok := native.(Texture2D)
	if !ok {
		return fmt.Errorf("eye %d host texture is not a Direct3D resource", eye)
	}
	b.context.CopyResource(buf.D3D11.ColorBuffer, src)
	return nil
}

// ReleaseBuffer frees one eye's texture and view
func (b *d3d11Backend) ReleaseBuffer(buf RenderBuffer) {
	if buf.D3D11 == nil {
		return
	}
	if buf.D3D11.ColorBufferView != nil {
		buf.D3D11.ColorBufferView.Release()
	}
	if buf.D3D11.ColorBuffer != nil {
		buf.D3D11.ColorBuffer.Release()
	}
}

// Release has nothing session-wide to free; the device and context are
// borrowed from the host
func (b *d3d11Backend) Release() {}
