package rendering

// DeviceType identifies the host engine's active graphics API family.
// Backend-specific handles are only valid while the device type matches
// their creation-time variant.
type DeviceType int

// Supported device types
const (
	DeviceTypeNone DeviceType = iota
	DeviceTypeD3D11
	DeviceTypeOpenGL
)

// String returns a readable name for the device type
func (d DeviceType) String() string {
	switch d {
	case DeviceTypeNone:
		return "none"
	case DeviceTypeD3D11:
		return "Direct3D11"
	case DeviceTypeOpenGL:
		return "OpenGL"
	default:
		return "unknown"
	}
}

// DeviceEvent is a host graphics-device lifecycle notification
type DeviceEvent int

// Device events delivered by the host
const (
	DeviceEventInitialize DeviceEvent = iota
	DeviceEventShutdown
	DeviceEventBeforeReset
	DeviceEventAfterReset
)

// String returns a readable name for the device event
func (e DeviceEvent) String() string {
	switch e {
	case DeviceEventInitialize:
		return "Initialize"
	case DeviceEventShutdown:
		return "Shutdown"
	case DeviceEventBeforeReset:
		return "BeforeReset"
	case DeviceEventAfterReset:
		return "AfterReset"
	default:
		return "unknown"
	}
}

// Render event ids dispatched by the host's render thread.
// If we ever decide to add more events, here's the place for it.
const (
	EventRender   = 0
	EventShutdown = 1
)

// NativeTexture is an opaque per-eye texture handle borrowed from the
// host: a Texture2D on Direct3D-style devices, a uint32 texture name on
// OpenGL-style devices. nil means the host has not rendered that eye yet.
type NativeTexture any

// GraphicsLibraryD3D11 carries the host's device and immediate context,
// borrowed for the session so the render manager reuses them
type GraphicsLibraryD3D11 struct {
	Device  Device
	Context DeviceContext
}

// GraphicsLibraryOpenGL carries the GL entry points for the session
type GraphicsLibraryOpenGL struct {
	GL GL
}

// GraphicsLibrary is a tagged union over the backend-specific bindings
// passed into the render manager; exactly one variant is non-nil while
// a device is initialized
type GraphicsLibrary struct {
	D3D11  *GraphicsLibraryD3D11
	OpenGL *GraphicsLibraryOpenGL
}

// HostInterfaces is what the host engine hands the plugin at load time,
// mirroring its native plugin interface registry
type HostInterfaces interface {
	// Renderer reports the active graphics API family
	Renderer() DeviceType

	// D3D11Device returns the host device and its immediate context;
	// only valid when Renderer() is DeviceTypeD3D11
	D3D11Device() (Device, DeviceContext)

	// OpenGLContext returns the GL entry points for the host's
	// context; only valid when Renderer() is DeviceTypeOpenGL
	OpenGLContext() GL
}

// graphicsBackend is the per-API adapter that constructs, renders into
// and tears down eye buffers. Implementations hold only borrowed device
// handles plus resources they created themselves.
type graphicsBackend interface {
	// ConstructEyeBuffer allocates the backend render target for one
	// eye, sized to the eye's viewport
	ConstructEyeBuffer(eye int, info RenderInfo) (RenderBuffer, error)

	// RenderEye copies or renders the host's finished eye image into
	// the backend buffer for presentation
	RenderEye(info RenderInfo, buf RenderBuffer, native NativeTexture, eye int) error

	// ReleaseBuffer frees one eye's backend render target
	ReleaseBuffer(buf RenderBuffer)

	// Release frees session-wide backend resources
	Release()
}
