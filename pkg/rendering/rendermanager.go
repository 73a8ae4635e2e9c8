package rendering

import (
	"sync"

	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/mathutil"
)

// Viewport describes one eye's render target region in pixels
type Viewport struct {
	Left   float64
	Lower  float64
	Width  float64
	Height float64
}

// Projection describes one eye's view frustum by its clip plane distances
type Projection struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	Near   float64
	Far    float64
}

// ToOpenGL converts the frustum into a column-major OpenGL projection matrix
func (p Projection) ToOpenGL() [16]float64 {
	return mathutil.FrustumOpenGL(p.Left, p.Right, p.Bottom, p.Top, p.Near, p.Far)
}

// Quaternion is a rotation as (w, x, y, z)
type Quaternion struct {
	W, X, Y, Z float64
}

// Pose is a tracked head/eye transform in room space
type Pose struct {
	Position [3]float64
	Rotation Quaternion
}

// ToOpenGL converts the pose into a column-major OpenGL modelview matrix
// (the inverse of the pose, i.e. world-to-eye)
func (p Pose) ToOpenGL() [16]float64 {
	return mathutil.ViewOpenGL(
		p.Position[0], p.Position[1], p.Position[2],
		p.Rotation.W, p.Rotation.X, p.Rotation.Y, p.Rotation.Z,
	)
}

// RenderInfo is the per-eye descriptor fetched fresh from the render
// manager every frame. It is a read-only snapshot; pose and projection
// may change between fetches but viewport dimensions stay stable for
// the lifetime of a session.
type RenderInfo struct {
	Viewport   Viewport
	Projection Projection
	Pose       Pose
	Library    GraphicsLibrary
}

// ClientContext is the VR runtime client handle the host hands us when
// creating a render manager. Update pumps the runtime's message loop so
// tracking state is current.
type ClientContext interface {
	Update() error
}

// OpenStatus reports the outcome of opening the physical display
type OpenStatus int

// Display open results
const (
	OpenFailure OpenStatus = iota
	OpenPartial
	OpenComplete
)

// OpenResults is returned by RenderManager.OpenDisplay
type OpenResults struct {
	Status OpenStatus
}

// RenderManager is the narrow contract with the VR runtime's render
// manager library: it owns the display binding, pose prediction,
// distortion and compositor presentation. The plugin only constructs
// buffers for it and hands finished eye images over each frame.
type RenderManager interface {
	// DoingOkay reports whether the instance is in a healthy state
	DoingOkay() bool

	// OpenDisplay binds the physical HMD display
	OpenDisplay() OpenResults

	// RenderInfo returns the current per-eye descriptors in eye order
	RenderInfo() []RenderInfo

	// PresentRenderBuffers hands the finished eye buffers to the
	// compositor; flipVertical indicates the sources are stored
	// bottom-up. A false return means the frame was dropped.
	PresentRenderBuffers(buffers []RenderBuffer, flipVertical bool) bool

	// Close destroys the instance and releases the display
	Close() error
}

// RenderManagerFactory constructs a render manager bound to the host's
// graphics library so the runtime reuses the host device instead of
// creating its own.
type RenderManagerFactory func(ctx ClientContext, lib GraphicsLibrary) (RenderManager, error)

// registry of render manager factories keyed by backend name
var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]RenderManagerFactory)
)

// RegisterRenderManager registers a factory under a backend name such
// as "Direct3D11". Registering the same name again replaces the
// previous factory.
func RegisterRenderManager(name string, factory RenderManagerFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// lookupRenderManager returns the factory for a backend name
func lookupRenderManager(name string) (RenderManagerFactory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	factory, ok := factories[name]
	return factory, ok
}
