package rendering

import (
	"fmt"
	"io"

	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/logger"
	"github.com/DenCity-life/OSVR-Unity-Rendering/pkg/config"
)

// quietLogger returns a logger that swallows output during tests
func quietLogger() *logger.Logger {
	lg := logger.NewLogger("fatal")
	lg.SetOutput(io.Discard)
	return lg
}

// testRenderInfo builds n eyes with a fixed 32x16 viewport
func testRenderInfo(n int) []RenderInfo {
	info := make([]RenderInfo, n)
	for i := range info {
		info[i] = RenderInfo{
			Viewport:   Viewport{Width: 32, Height: 16},
			Projection: Projection{Left: -0.1, Right: 0.1, Top: 0.05, Bottom: -0.05, Near: 0.1, Far: 100},
			Pose:       Pose{Rotation: Quaternion{W: 1}},
		}
	}
	return info
}

// fakeHost hands the plugin a configurable renderer and device handles
type fakeHost struct {
	renderer DeviceType
	device   Device
	context  DeviceContext
	gl       GL
}

func (h *fakeHost) Renderer() DeviceType { return h.renderer }
func (h *fakeHost) D3D11Device() (Device, DeviceContext) { return h.device, h.context }
func (h *fakeHost) OpenGLContext() GL { return h.gl }

// fakeContext counts runtime update pumps
type fakeContext struct {
	updates int
}

func (c *fakeContext) Update() error {
	c.updates++
	return nil
}

// fakeRenderManager records presentation calls
type fakeRenderManager struct {
	okay          bool
	openStatus    OpenStatus
	info          []RenderInfo
	presentResult bool

	infoFetches int
	presented   [][]RenderBuffer
	flips       []bool
	closed      int
}

func newFakeRenderManager(eyes int) *fakeRenderManager {
	return &fakeRenderManager{
		okay:          true,
		openStatus:    OpenComplete,
		info:          testRenderInfo(eyes),
		presentResult: true,
	}
}

func (m *fakeRenderManager) DoingOkay() bool { return m.okay }
func (m *fakeRenderManager) OpenDisplay() OpenResults { return OpenResults{Status: m.openStatus} }

func (m *fakeRenderManager) RenderInfo() []RenderInfo {
	m.infoFetches++
	out := make([]RenderInfo, len(m.info))
	copy(out, m.info)
	return out
}

func (m *fakeRenderManager) PresentRenderBuffers(buffers []RenderBuffer, flip bool) bool {
	m.presented = append(m.presented, buffers)
	m.flips = append(m.flips, flip)
	return m.presentResult
}

func (m *fakeRenderManager) Close() error {
	m.closed++
	return nil
}

// fakeTexture and fakeView count releases so double-free shows up
type fakeTexture struct {
	desc     Texture2DDesc
	releases int
}

func (t *fakeTexture) Release() { t.releases++ }

type fakeView struct {
	tex      *fakeTexture
	releases int
}

func (v *fakeView) Release() { v.releases++ }

// fakeDevice is a Direct3D-style device with failure injection
type fakeDevice struct {
	failTexture bool
	failView    bool

	textures []*fakeTexture
	views    []*fakeView
	bound    RenderTargetView
	copies   int
}

func (d *fakeDevice) CreateTexture2D(desc Texture2DDesc) (Texture2D, error) {
	if d.failTexture {
		return nil, fmt.Errorf("out of video memory")
	}
	tex := &fakeTexture{desc: desc}
	d.textures = append(d.textures, tex)
	return tex, nil
}

func (d *fakeDevice) CreateRenderTargetView(tex Texture2D) (RenderTargetView, error) {
	if d.failView {
		return nil, fmt.Errorf("invalid view description")
	}
	view := &fakeView{tex: tex.(*fakeTexture)}
	d.views = append(d.views, view)
	return view, nil
}

func (d *fakeDevice) SetRenderTargets(view RenderTargetView) { d.bound = view }

func (d *fakeDevice) CopyResource(dst, src Texture2D) { d.copies++ }

// fakeGL records every call the OpenGL backend makes
type fakeGL struct {
	nextName uint32

	framebuffers []uint32
	textures     []uint32
	renderbufs   []uint32

	deletedFramebuffers []uint32
	deletedTextures     []uint32
	deletedRenderbufs   []uint32

	boundFramebuffer uint32
	attachedTexture  uint32
	complete         bool

	viewports   [][2]int
	projections [][16]float64
	modelviews  [][16]float64
	clears      int
}

func newFakeGL() *fakeGL {
	return &fakeGL{nextName: 1, complete: true}
}

func (g *fakeGL) gen() uint32 {
	name := g.nextName
	g.nextName++
	return name
}

func (g *fakeGL) GenFramebuffer() uint32 {
	name := g.gen()
	g.framebuffers = append(g.framebuffers, name)
	return name
}

func (g *fakeGL) BindFramebuffer(fb uint32) { g.boundFramebuffer = fb }
func (g *fakeGL) DeleteFramebuffer(fb uint32) { g.deletedFramebuffers = append(g.deletedFramebuffers, fb) }

func (g *fakeGL) GenTexture() uint32 {
	name := g.gen()
	g.textures = append(g.textures, name)
	return name
}

func (g *fakeGL) BindTexture(tex uint32) {}
func (g *fakeGL) TexImage2DEmpty(width, height int) {}
func (g *fakeGL) TexParameterLinearClamp() {}
func (g *fakeGL) DeleteTexture(tex uint32) { g.deletedTextures = append(g.deletedTextures, tex) }

func (g *fakeGL) GenRenderbuffer() uint32 {
	name := g.gen()
	g.renderbufs = append(g.renderbufs, name)
	return name
}

func (g *fakeGL) BindRenderbuffer(rb uint32) {}
func (g *fakeGL) RenderbufferStorageDepth(width, height int) {}
func (g *fakeGL) DeleteRenderbuffer(rb uint32) {
	g.deletedRenderbufs = append(g.deletedRenderbufs, rb)
}

func (g *fakeGL) FramebufferTexture(tex uint32) { g.attachedTexture = tex }
func (g *fakeGL) DrawColorAttachment() {}
func (g *fakeGL) FramebufferComplete() bool { return g.complete }

func (g *fakeGL) Viewport(width, height int) {
	g.viewports = append(g.viewports, [2]int{width, height})
}

func (g *fakeGL) LoadProjection(m [16]float64) { g.projections = append(g.projections, m) }
func (g *fakeGL) LoadModelView(m [16]float64) { g.modelviews = append(g.modelviews, m) }
func (g *fakeGL) ClearColor(red, green, blue, alpha float32) {}
func (g *fakeGL) Clear() { g.clears++ }

// testConfig returns a config pointing at a uniquely named fake backend
func testConfig(backend string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend = backend
	return cfg
}

// newTestPlugin wires a plugin to a fake render manager under the given
// registry name and runs the device Initialize event
func newTestPlugin(backend string, host HostInterfaces, rm RenderManager) *Plugin {
	RegisterRenderManager(backend, func(ctx ClientContext, lib GraphicsLibrary) (RenderManager, error) {
		return rm, nil
	})
	p := New(testConfig(backend), quietLogger())
	p.Load(host)
	return p
}
