package rendering

import (
	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/logger"
)

// GL is the narrow slice of OpenGL the backend issues, expressed as a
// seam so the frame path can run against the real driver or a test
// double. OpenGLBindings provides the production implementation.
type GL interface {
	GenFramebuffer() uint32
	BindFramebuffer(fb uint32)
	DeleteFramebuffer(fb uint32)

	GenTexture() uint32
	BindTexture(tex uint32)
	TexImage2DEmpty(width, height int)
	TexParameterLinearClamp()
	DeleteTexture(tex uint32)

	GenRenderbuffer() uint32
	BindRenderbuffer(rb uint32)
	RenderbufferStorageDepth(width, height int)
	DeleteRenderbuffer(rb uint32)

	FramebufferTexture(tex uint32)
	DrawColorAttachment()
	FramebufferComplete() bool

	Viewport(width, height int)
	LoadProjection(m [16]float64)
	LoadModelView(m [16]float64)
	ClearColor(r, g, b, a float32)
	Clear()
}

// DrawFunc is the scene-draw extension point invoked with the eye's
// framebuffer bound, after matrices are loaded and the clear is done
type DrawFunc func(info RenderInfo, eye int)

// openglBackend constructs and fills eye buffers through an OpenGL-style
// context. All eyes share a single framebuffer object created lazily on
// the first construction.
type openglBackend struct {
	gl  GL
	log *logger.Logger

	framebuffer uint32
	haveFB      bool

	draw DrawFunc
}

func newOpenGLBackend(lib *GraphicsLibraryOpenGL, log *logger.Logger) *openglBackend {
	return &openglBackend{gl: lib.GL, log: log}
}

// SetDrawFunc installs the scene-draw hook
func (b *openglBackend) SetDrawFunc(draw DrawFunc) {
	b.draw = draw
}

// ConstructEyeBuffer allocates a color texture sized to the eye's
// viewport with linear filtering and clamp-to-edge wrapping, plus a
// matching depth renderbuffer
func (b *openglBackend) ConstructEyeBuffer(eye int, info RenderInfo) (RenderBuffer, error) {
	if !b.haveFB {
		// One shared framebuffer for the whole session
		b.framebuffer = b.gl.GenFramebuffer()
		b.gl.BindFramebuffer(b.framebuffer)
		b.haveFB = true
	}

	width := int(info.Viewport.Width)
	height := int(info.Viewport.Height)

	color := b.gl.GenTexture()
	b.gl.BindTexture(color)
	b.gl.TexImage2DEmpty(width, height)
	b.gl.TexParameterLinearClamp()

	depth := b.gl.GenRenderbuffer()
	b.gl.BindRenderbuffer(depth)
	b.gl.RenderbufferStorageDepth(width, height)

	return RenderBuffer{OpenGL: &RenderBufferOpenGL{
		ColorBufferName: color,
		DepthBufferName: depth,
	}}, nil
}

// RenderEye attaches the eye's color texture to the shared framebuffer,
// loads the eye's projection and modelview matrices and clears. When a
// scene-draw hook is installed it draws the eye's content; the host's
// texture name itself stays bound to the host's pipeline.
func (b *openglBackend) RenderEye(info RenderInfo, buf RenderBuffer, native NativeTexture, eye int) error {
	if buf.OpenGL == nil {
		b.log.Warnf("eye %d buffer is not an OpenGL buffer, skipping", eye)
		return nil
	}

	b.gl.BindFramebuffer(b.framebuffer)
	b.gl.FramebufferTexture(buf.OpenGL.ColorBufferName)
	b.gl.DrawColorAttachment()

	// Always check that our framebuffer is ok
	if !b.gl.FramebufferComplete() {
		b.log.Warnf("RenderView: incomplete framebuffer for eye %d", eye)
		return nil
	}

	b.gl.Viewport(int(info.Viewport.Width), int(info.Viewport.Height))
	b.gl.LoadProjection(info.Projection.ToOpenGL())
	b.gl.LoadModelView(info.Pose.ToOpenGL())

	b.gl.ClearColor(1, 0, 0, 1)
	b.gl.Clear()

	if b.draw != nil {
		b.draw(info, eye)
	}
	return nil
}

// ReleaseBuffer frees one eye's texture and depth renderbuffer
func (b *openglBackend) ReleaseBuffer(buf RenderBuffer) {
	if buf.OpenGL == nil {
		return
	}
	if buf.OpenGL.ColorBufferName != 0 {
		b.gl.DeleteTexture(buf.OpenGL.ColorBufferName)
	}
	if buf.OpenGL.DepthBufferName != 0 {
		b.gl.DeleteRenderbuffer(buf.OpenGL.DepthBufferName)
	}
}

// Release frees the shared framebuffer
func (b *openglBackend) Release() {
	if b.haveFB {
		b.gl.DeleteFramebuffer(b.framebuffer)
		b.haveFB = false
		b.framebuffer = 0
	}
}
