package rendering

import (
	"fmt"

	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/logger"
	"github.com/DenCity-life/OSVR-Unity-Rendering/pkg/config"
)

// sessionState tracks where the plugin is in its lifecycle
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateInitialized
	stateShuttingDown
)

// Plugin is one rendering session bridging the host engine to the VR
// runtime's render manager. It owns the render manager instance, the
// buffer registry and the active backend; the host's device handles and
// eye textures are borrowed, never freed here.
//
// The host must serialize render-related entry points on its graphics
// thread and must not deliver a render event concurrently with a device
// event; the plugin performs no internal locking.
type Plugin struct {
	cfg *config.Config
	log *logger.Logger

	host        HostInterfaces
	state       sessionState
	deviceType  DeviceType
	unsupported bool

	library GraphicsLibrary
	backend graphicsBackend

	clientCtx  ClientContext
	render     RenderManager
	renderInfo []RenderInfo

	buffers     bufferRegistry
	eyeTextures []NativeTexture
}

// New creates a plugin session. The session does nothing until the host
// calls Load and delivers a device Initialize event.
func New(cfg *config.Config, log *logger.Logger) *Plugin {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Plugin{
		cfg:        cfg,
		log:        log,
		deviceType: DeviceTypeNone,
	}
}

// Load records the host interface registry and runs the Initialize
// device event, mirroring the host's plugin-load contract
func (p *Plugin) Load(host HostInterfaces) {
	p.host = host
	p.OnDeviceEvent(DeviceEventInitialize)
}

// Unload runs the Shutdown device event and detaches from the host
func (p *Plugin) Unload() {
	p.OnDeviceEvent(DeviceEventShutdown)
	p.host = nil
}

// LinkDebug installs the host's debug console callback as a log sink
func (p *Plugin) LinkDebug(sink logger.Sink) {
	p.log.SetSink(sink)
}

// OnDeviceEvent is the single dispatch entry point for host graphics
// device lifecycle notifications
func (p *Plugin) OnDeviceEvent(event DeviceEvent) {
	switch event {
	case DeviceEventInitialize:
		p.log.Infof("[OSVR Rendering Plugin] OnGraphicsDeviceEvent(Initialize)")
		p.initializeDevice()

	case DeviceEventShutdown:
		p.log.Infof("[OSVR Rendering Plugin] OnGraphicsDeviceEvent(Shutdown)")
		p.state = stateShuttingDown
		p.shutdown()
		p.deviceType = DeviceTypeNone
		p.unsupported = false
		p.state = stateUninitialized

	case DeviceEventBeforeReset:
		// Extension point: backends may flush GPU resources here
		p.log.Infof("[OSVR Rendering Plugin] OnGraphicsDeviceEvent(BeforeReset)")

	case DeviceEventAfterReset:
		// Extension point: backends may rebuild GPU resources here
		p.log.Infof("[OSVR Rendering Plugin] OnGraphicsDeviceEvent(AfterReset)")

	default:
		p.log.Warnf("[OSVR Rendering Plugin] unknown device event %d", int(event))
	}
}

// initializeDevice records the active backend variant and captures the
// host's device handles for the render manager
func (p *Plugin) initializeDevice() {
	if p.host == nil {
		p.log.Error("[OSVR Rendering Plugin] Initialize before Load, ignoring")
		return
	}

	p.deviceType = p.host.Renderer()
	p.unsupported = false

	switch p.deviceType {
	case DeviceTypeD3D11:
		// Put the device and context into a structure to let the
		// render manager reuse this one rather than creating its own
		device, context := p.host.D3D11Device()
		p.library = GraphicsLibrary{D3D11: &GraphicsLibraryD3D11{Device: device, Context: context}}
		p.backend = newD3D11Backend(p.library.D3D11, p.log)
		p.log.Info("[OSVR Rendering Plugin] Passed host device/context to RenderManager library")

	case DeviceTypeOpenGL:
		p.library = GraphicsLibrary{OpenGL: &GraphicsLibraryOpenGL{GL: p.host.OpenGLContext()}}
		p.backend = newOpenGLBackend(p.library.OpenGL, p.log)
		p.log.Info("[OSVR Rendering Plugin] OpenGL Initialize Event")

	default:
		// All subsequent operations degrade to failing no-ops
		p.log.Warnf("[OSVR Rendering Plugin] device type %s not supported", p.deviceType)
		p.unsupported = true
		p.library = GraphicsLibrary{}
		p.backend = nil
		return
	}

	p.state = stateInitialized
}

// SetOpenGLDrawFunc installs the scene-draw hook on the OpenGL backend;
// it is a no-op for other device types
func (p *Plugin) SetOpenGLDrawFunc(draw DrawFunc) {
	if b, ok := p.backend.(*openglBackend); ok {
		b.SetDrawFunc(draw)
	}
}

// CreateRenderManager constructs the render manager for the configured
// backend name, opens the display and caches an initial render-info
// fetch. It must succeed before any buffer construction or render
// event. On failure no partial state is retained.
func (p *Plugin) CreateRenderManager(ctx ClientContext) error {
	if p.unsupported || p.state != stateInitialized {
		return fmt.Errorf("no supported graphics device is initialized")
	}

	factory, ok := lookupRenderManager(p.cfg.Backend)
	if !ok {
		p.log.Errorf("[OSVR Rendering Plugin] no render manager registered for %q", p.cfg.Backend)
		return fmt.Errorf("no render manager registered for %q", p.cfg.Backend)
	}

	render, err := factory(ctx, p.library)
	if err != nil || render == nil {
		p.log.Error("[OSVR Rendering Plugin] Could not create RenderManager")
		return fmt.Errorf("could not create render manager: %v", err)
	}
	if !render.DoingOkay() {
		p.log.Error("[OSVR Rendering Plugin] Could not create RenderManager")
		return fmt.Errorf("render manager is not in a usable state")
	}

	// Open the display and make sure this worked
	if results := render.OpenDisplay(); results.Status == OpenFailure {
		p.log.Error("[OSVR Rendering Plugin] Could not open display")
		render.Close()
		return fmt.Errorf("could not open display")
	}

	// Do a call to get the information we need to construct our
	// color and depth render-to-texture buffers
	p.clientCtx = ctx
	p.render = render
	p.renderInfo = render.RenderInfo()
	p.buffers.ensure(len(p.renderInfo))

	p.log.Info("[OSVR Rendering Plugin] Success!")
	return nil
}

// refreshRenderInfo refetches the per-eye descriptors; pose and
// projection are time-varying so this happens before every use
func (p *Plugin) refreshRenderInfo() error {
	if p.render == nil {
		return fmt.Errorf("render manager has not been created")
	}
	p.renderInfo = p.render.RenderInfo()
	return nil
}

// Viewport returns the given eye's current viewport
func (p *Plugin) Viewport(eye int) (Viewport, error) {
	if err := p.refreshRenderInfo(); err != nil {
		return Viewport{}, err
	}
	if eye < 0 || eye >= len(p.renderInfo) {
		return Viewport{}, fmt.Errorf("eye index %d out of range", eye)
	}
	return p.renderInfo[eye].Viewport, nil
}

// ProjectionMatrix returns the given eye's current projection frustum
func (p *Plugin) ProjectionMatrix(eye int) (Projection, error) {
	if err := p.refreshRenderInfo(); err != nil {
		return Projection{}, err
	}
	if eye < 0 || eye >= len(p.renderInfo) {
		return Projection{}, fmt.Errorf("eye index %d out of range", eye)
	}
	return p.renderInfo[eye].Projection, nil
}

// EyePose returns the given eye's current predicted pose
func (p *Plugin) EyePose(eye int) (Pose, error) {
	if err := p.refreshRenderInfo(); err != nil {
		return Pose{}, err
	}
	if eye < 0 || eye >= len(p.renderInfo) {
		return Pose{}, fmt.Errorf("eye index %d out of range", eye)
	}
	return p.renderInfo[eye].Pose, nil
}

// SetColorBuffer stores the host's native texture handle for an eye and
// (re)constructs that eye's backend render target. The host calls this
// once per eye at initialization and again if it reallocates its own
// texture, e.g. on a resolution change; a nil handle marks the eye as
// not ready rather than failing.
func (p *Plugin) SetColorBuffer(texture NativeTexture, eye int) error {
	if p.unsupported || p.backend == nil {
		p.log.Warn("[OSVR Rendering Plugin] SetColorBuffer: device type not supported")
		return fmt.Errorf("device type not supported")
	}
	p.log.Debugf("[OSVR Rendering Plugin] SetColorBufferFromUnity eye %d", eye)

	// OpenGL buffer construction needs current tracking state
	if p.deviceType == DeviceTypeOpenGL && p.clientCtx != nil {
		if err := p.clientCtx.Update(); err != nil {
			p.log.Warnf("[OSVR Rendering Plugin] client update failed: %v", err)
		}
	}

	if err := p.refreshRenderInfo(); err != nil {
		return err
	}
	if eye < 0 || eye >= len(p.renderInfo) {
		return fmt.Errorf("eye index %d out of range", eye)
	}

	for len(p.eyeTextures) <= eye {
		p.eyeTextures = append(p.eyeTextures, nil)
	}
	p.eyeTextures[eye] = texture

	// Release the previous render target before allocating the new one
	// so re-registration does not leak
	if old, ok := p.buffers.take(eye); ok {
		p.backend.ReleaseBuffer(old)
	}

	buf, err := p.backend.ConstructEyeBuffer(eye, p.renderInfo[eye])
	if err != nil {
		// Entry stays unset for this eye; the host may retry
		p.log.Errorf("[OSVR Rendering Plugin] %v", err)
		return err
	}
	p.buffers.put(eye, buf)
	return nil
}

// OnRenderEvent handles one opaque event id from the host's render
// thread: EventRender presents a frame, EventShutdown tears the session
// down. Events after shutdown or before initialization are no-ops.
func (p *Plugin) OnRenderEvent(eventID int) {
	// Unknown graphics device type? Do nothing.
	if p.unsupported || p.deviceType == DeviceTypeNone {
		return
	}

	switch eventID {
	case EventRender:
		p.renderFrame()
	case EventShutdown:
		p.shutdown()
	default:
		// Ids we do not know about are ignored
	}
}

// RenderEventFunc returns the callback the host should invoke once per
// frame on its render thread
func (p *Plugin) RenderEventFunc() func(eventID int) {
	return p.OnRenderEvent
}

// renderFrame refetches the per-eye descriptors, renders the host's
// finished images into the registered buffers and presents them
func (p *Plugin) renderFrame() {
	if p.render == nil || p.backend == nil {
		return
	}
	if err := p.refreshRenderInfo(); err != nil {
		return
	}

	for eye := 0; eye < len(p.renderInfo); eye++ {
		buf, ok := p.buffers.get(eye)
		if !ok {
			p.log.Debugf("[OSVR Rendering Plugin] no buffer registered for eye %d", eye)
			continue
		}
		var native NativeTexture
		if eye < len(p.eyeTextures) {
			native = p.eyeTextures[eye]
		}
		if err := p.backend.RenderEye(p.renderInfo[eye], buf, native, eye); err != nil {
			p.log.Errorf("[OSVR Rendering Plugin] render failed for eye %d: %v", eye, err)
		}
	}

	// Flip Y on Direct3D because host render textures are upside-down
	// relative to the compositor
	flip := p.deviceType == DeviceTypeD3D11 || p.cfg.Present.FlipVertical
	if !p.render.PresentRenderBuffers(p.buffers.list(), flip) {
		p.log.Warn("[OSVR Rendering Plugin] PresentRenderBuffers() returned false, maybe because it was asked to quit")
	}
}

// shutdown destroys the render manager and every backend resource. It
// is idempotent: a second call finds nothing left to free.
func (p *Plugin) shutdown() {
	p.log.Info("[OSVR Rendering Plugin] Shutdown")

	if p.render != nil {
		p.log.Debug("[OSVR Rendering Plugin] Deleting RenderManager")
		if err := p.render.Close(); err != nil {
			p.log.Warnf("[OSVR Rendering Plugin] render manager close: %v", err)
		}
		p.render = nil
	}

	if p.backend != nil {
		for _, buf := range p.buffers.list() {
			p.backend.ReleaseBuffer(buf)
		}
		p.backend.Release()
	}

	p.buffers.clear()
	p.eyeTextures = nil
	p.renderInfo = nil
	p.clientCtx = nil
}

// DeviceType reports the active backend variant
func (p *Plugin) DeviceType() DeviceType {
	return p.deviceType
}

// BuffersComplete reports whether every eye has a registered buffer
func (p *Plugin) BuffersComplete() bool {
	return p.buffers.complete()
}
