package rendering

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
)

// openGLBindings implements GL against the real driver. The host's GL
// context must be current on the calling thread.
type openGLBindings struct{}

// OpenGLBindings initializes the GL function pointers for the current
// context and returns the production GL implementation
func OpenGLBindings() (GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL bindings: %v", err)
	}
	return openGLBindings{}, nil
}

func (openGLBindings) GenFramebuffer() uint32 {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return fb
}

func (openGLBindings) BindFramebuffer(fb uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
}

func (openGLBindings) DeleteFramebuffer(fb uint32) {
	gl.DeleteFramebuffers(1, &fb)
}

func (openGLBindings) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (openGLBindings) BindTexture(tex uint32) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (openGLBindings) TexImage2DEmpty(width, height int) {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
}

func (openGLBindings) TexParameterLinearClamp() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (openGLBindings) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (openGLBindings) GenRenderbuffer() uint32 {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	return rb
}

func (openGLBindings) BindRenderbuffer(rb uint32) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
}

func (openGLBindings) RenderbufferStorageDepth(width, height int) {
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
}

func (openGLBindings) DeleteRenderbuffer(rb uint32) {
	gl.DeleteRenderbuffers(1, &rb)
}

func (openGLBindings) FramebufferTexture(tex uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
}

func (openGLBindings) DrawColorAttachment() {
	bufs := []uint32{gl.COLOR_ATTACHMENT0}
	gl.DrawBuffers(1, &bufs[0])
}

func (openGLBindings) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (openGLBindings) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (openGLBindings) LoadProjection(m [16]float64) {
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.MultMatrixd(&m[0])
}

func (openGLBindings) LoadModelView(m [16]float64) {
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.MultMatrixd(&m[0])
}

func (openGLBindings) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (openGLBindings) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
