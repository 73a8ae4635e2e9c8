package rendering

// RenderBufferD3D11 is one eye's Direct3D-style render target: a color
// texture plus the render-target view over it
type RenderBufferD3D11 struct {
	ColorBuffer     Texture2D
	ColorBufferView RenderTargetView
}

// RenderBufferOpenGL is one eye's OpenGL-style render target: a color
// texture name plus a matching depth renderbuffer
type RenderBufferOpenGL struct {
	ColorBufferName uint32
	DepthBufferName uint32
}

// RenderBuffer is a tagged union over the backend-specific render
// targets; exactly one variant is non-nil
type RenderBuffer struct {
	D3D11  *RenderBufferD3D11
	OpenGL *RenderBufferOpenGL
}

// bufferRegistry maps eye index to that eye's backend render target.
// Entries are set at most once per eye between releases; the registry
// grows to the render manager's reported eye count and is cleared
// exactly once at shutdown.
type bufferRegistry struct {
	entries []RenderBuffer
	set     []bool
}

// ensure grows the registry to hold at least n eyes
func (r *bufferRegistry) ensure(n int) {
	for len(r.entries) < n {
		r.entries = append(r.entries, RenderBuffer{})
		r.set = append(r.set, false)
	}
}

// put stores a constructed buffer at the eye index
func (r *bufferRegistry) put(eye int, buf RenderBuffer) {
	r.ensure(eye + 1)
	r.entries[eye] = buf
	r.set[eye] = true
}

// get returns the buffer for an eye and whether one is registered
func (r *bufferRegistry) get(eye int) (RenderBuffer, bool) {
	if eye < 0 || eye >= len(r.entries) || !r.set[eye] {
		return RenderBuffer{}, false
	}
	return r.entries[eye], true
}

// take removes and returns the buffer for an eye so the caller can
// release it before registering a replacement
func (r *bufferRegistry) take(eye int) (RenderBuffer, bool) {
	buf, ok := r.get(eye)
	if ok {
		r.entries[eye] = RenderBuffer{}
		r.set[eye] = false
	}
	return buf, ok
}

// list returns the registered buffers in eye order, skipping eyes that
// have no buffer yet
func (r *bufferRegistry) list() []RenderBuffer {
	out := make([]RenderBuffer, 0, len(r.entries))
	for i, buf := range r.entries {
		if r.set[i] {
			out = append(out, buf)
		}
	}
	return out
}

// complete reports whether every eye slot holds a buffer
func (r *bufferRegistry) complete() bool {
	if len(r.entries) == 0 {
		return false
	}
	for _, ok := range r.set {
		if !ok {
			return false
		}
	}
	return true
}

// clear drops all entries without releasing them; callers release
// through the backend first
func (r *bufferRegistry) clear() {
	r.entries = nil
	r.set = nil
}
