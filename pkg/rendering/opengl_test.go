package rendering

import (
	"testing"
)

func glPlugin(t *testing.T, name string) (*Plugin, *fakeGL, *fakeRenderManager, *fakeContext) {
	t.Helper()
	gl := newFakeGL()
	host := &fakeHost{renderer: DeviceTypeOpenGL, gl: gl}
	rm := newFakeRenderManager(2)
	p := newTestPlugin(name, host, rm)
	ctx := &fakeContext{}
	if err := p.CreateRenderManager(ctx); err != nil {
		t.Fatalf("CreateRenderManager: %v", err)
	}
	return p, gl, rm, ctx
}

func TestOpenGLBuffersShareOneFramebuffer(t *testing.T) {
	p, gl, _, ctx := glPlugin(t, "test-gl-shared-fbo")

	if err := p.SetColorBuffer(nil, 0); err != nil {
		t.Fatalf("SetColorBuffer eye 0: %v", err)
	}
	if err := p.SetColorBuffer(nil, 1); err != nil {
		t.Fatalf("SetColorBuffer eye 1: %v", err)
	}

	if len(gl.framebuffers) != 1 {
		t.Errorf("created %d framebuffers, want 1 shared", len(gl.framebuffers))
	}
	if len(gl.textures) != 2 {
		t.Fatalf("created %d color textures, want 2", len(gl.textures))
	}
	if gl.textures[0] == gl.textures[1] {
		t.Error("both eyes share one texture name")
	}
	if len(gl.renderbufs) != 2 {
		t.Errorf("created %d depth renderbuffers, want 2", len(gl.renderbufs))
	}
	// Buffer construction pumps the runtime client first
	if ctx.updates != 2 {
		t.Errorf("client updated %d times, want 2", ctx.updates)
	}
}

func TestOpenGLRenderLoadsMatricesAndClears(t *testing.T) {
	p, gl, rm, _ := glPlugin(t, "test-gl-render")
	p.SetColorBuffer(nil, 0)
	p.SetColorBuffer(nil, 1)

	p.OnRenderEvent(EventRender)

	if gl.clears != 2 {
		t.Errorf("cleared %d times, want one per eye", gl.clears)
	}
	if len(gl.projections) != 2 || len(gl.modelviews) != 2 {
		t.Fatalf("loaded %d projections and %d modelviews, want 2 each",
			len(gl.projections), len(gl.modelviews))
	}
	want := rm.info[0].Projection.ToOpenGL()
	if gl.projections[0] != want {
		t.Error("projection matrix does not match the eye's frustum")
	}
	if len(gl.viewports) != 2 || gl.viewports[0] != [2]int{32, 16} {
		t.Errorf("viewports = %v, want two of [32 16]", gl.viewports)
	}
	// OpenGL present path does not flip
	if len(rm.flips) != 1 || rm.flips[0] {
		t.Error("OpenGL present requested a vertical flip")
	}
}

func TestOpenGLIncompleteFramebufferSkipsEye(t *testing.T) {
	p, gl, rm, _ := glPlugin(t, "test-gl-incomplete")
	p.SetColorBuffer(nil, 0)
	p.SetColorBuffer(nil, 1)

	gl.complete = false
	p.OnRenderEvent(EventRender)

	// Both eyes are skipped after the completeness check but the frame
	// is still presented; no global abort
	if gl.clears != 0 {
		t.Errorf("cleared %d times despite incomplete framebuffer", gl.clears)
	}
	if len(rm.presented) != 1 {
		t.Errorf("presented %d times, want 1", len(rm.presented))
	}
}

func TestOpenGLReregistrationReleasesOldBuffer(t *testing.T) {
	p, gl, _, _ := glPlugin(t, "test-gl-reregister")
	p.SetColorBuffer(nil, 0)

	oldColor := gl.textures[0]
	oldDepth := gl.renderbufs[0]

	// Host reallocated its texture, e.g. on a resolution change
	if err := p.SetColorBuffer(nil, 0); err != nil {
		t.Fatalf("SetColorBuffer reregistration: %v", err)
	}

	if len(gl.deletedTextures) != 1 || gl.deletedTextures[0] != oldColor {
		t.Errorf("deleted textures = %v, want [%d]", gl.deletedTextures, oldColor)
	}
	if len(gl.deletedRenderbufs) != 1 || gl.deletedRenderbufs[0] != oldDepth {
		t.Errorf("deleted renderbuffers = %v, want [%d]", gl.deletedRenderbufs, oldDepth)
	}
	if len(gl.textures) != 2 {
		t.Errorf("allocated %d textures total, want 2", len(gl.textures))
	}
}

func TestOpenGLShutdownDeletesSessionResources(t *testing.T) {
	p, gl, _, _ := glPlugin(t, "test-gl-shutdown")
	p.SetColorBuffer(nil, 0)
	p.SetColorBuffer(nil, 1)

	p.OnDeviceEvent(DeviceEventShutdown)
	p.OnDeviceEvent(DeviceEventShutdown)

	if len(gl.deletedFramebuffers) != 1 {
		t.Errorf("deleted %d framebuffers, want exactly 1", len(gl.deletedFramebuffers))
	}
	if len(gl.deletedTextures) != 2 {
		t.Errorf("deleted %d textures, want 2", len(gl.deletedTextures))
	}
	if len(gl.deletedRenderbufs) != 2 {
		t.Errorf("deleted %d renderbuffers, want 2", len(gl.deletedRenderbufs))
	}
}

func TestOpenGLDrawHookRunsPerEye(t *testing.T) {
	p, _, _, _ := glPlugin(t, "test-gl-draw-hook")

	var drawn []int
	p.SetOpenGLDrawFunc(func(info RenderInfo, eye int) {
		drawn = append(drawn, eye)
	})

	p.SetColorBuffer(nil, 0)
	p.SetColorBuffer(nil, 1)
	p.OnRenderEvent(EventRender)

	if len(drawn) != 2 || drawn[0] != 0 || drawn[1] != 1 {
		t.Errorf("draw hook ran for eyes %v, want [0 1]", drawn)
	}
}
