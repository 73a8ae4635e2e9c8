package rendering

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/logger"
	"github.com/DenCity-life/OSVR-Unity-Rendering/pkg/config"
)

// SoftwareBackendName is the registry name of the in-process render
// manager used by the simulator and the tests
const SoftwareBackendName = "Software"

// SoftwareTexture is a device texture backed by CPU pixels
type SoftwareTexture struct {
	img      *image.NRGBA
	released bool
}

// NewSoftwareTexture allocates a texture filled with opaque black
func NewSoftwareTexture(width, height int) *SoftwareTexture {
	return &SoftwareTexture{img: imaging.New(width, height, color.NRGBA{A: 255})}
}

// Image exposes the backing pixels
func (t *SoftwareTexture) Image() *image.NRGBA {
	return t.img
}

// Release marks the texture freed; releasing twice is harmless
func (t *SoftwareTexture) Release() {
	t.released = true
}

// Released reports whether Release has been called
func (t *SoftwareTexture) Released() bool {
	return t.released
}

// softwareTargetView is a render-target view over a software texture
type softwareTargetView struct {
	tex      *SoftwareTexture
	released bool
}

func (v *softwareTargetView) Release() {
	v.released = true
}

// SoftwareDevice implements Device and DeviceContext over CPU surfaces
// so the Direct3D-style path can run without a GPU
type SoftwareDevice struct {
	target *softwareTargetView
}

// NewSoftwareDevice creates a software device
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// CreateTexture2D allocates a CPU-backed texture
func (d *SoftwareDevice) CreateTexture2D(desc Texture2DDesc) (Texture2D, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	return NewSoftwareTexture(desc.Width, desc.Height), nil
}

// CreateRenderTargetView wraps a software texture as a target view
func (d *SoftwareDevice) CreateRenderTargetView(tex Texture2D) (RenderTargetView, error) {
	st, ok := tex.(*SoftwareTexture)
	if !ok {
		return nil, fmt.Errorf("texture was not created by this device")
	}
	return &softwareTargetView{tex: st}, nil
}

// SetRenderTargets records the active target view
func (d *SoftwareDevice) SetRenderTargets(view RenderTargetView) {
	if v, ok := view.(*softwareTargetView); ok {
		d.target = v
	}
}

// CopyResource performs a full-resource pixel copy
func (d *SoftwareDevice) CopyResource(dst, src Texture2D) {
	dt, ok1 := dst.(*SoftwareTexture)
	st, ok2 := src.(*SoftwareTexture)
	if !ok1 || !ok2 {
		return
	}
	draw.Draw(dt.img, dt.img.Bounds(), st.img, image.Point{}, draw.Src)
}

// SoftwareRenderManager is a complete in-process RenderManager: it
// reports two eyes with symmetric frusta separated by the configured
// IPD and composites presented buffers side by side instead of driving
// an HMD. Its pixels make presentation verifiable in tests and the
// simulator.
type SoftwareRenderManager struct {
	log      *logger.Logger
	display  config.DisplayConfig
	snapshot config.SnapshotConfig

	library GraphicsLibrary
	poses   [2]Pose
	open    bool
	frames  int
	last    *image.NRGBA
}

// NewSoftwareRenderManager creates the software render manager from the
// display section of the configuration
func NewSoftwareRenderManager(cfg *config.Config, log *logger.Logger, lib GraphicsLibrary) *SoftwareRenderManager {
	m := &SoftwareRenderManager{
		log:      log,
		display:  cfg.Display,
		snapshot: cfg.Snapshot,
		library:  lib,
	}
	half := cfg.Display.IPD / 2
	m.poses[0] = Pose{Position: [3]float64{-half, 0, 0}, Rotation: Quaternion{W: 1}}
	m.poses[1] = Pose{Position: [3]float64{half, 0, 0}, Rotation: Quaternion{W: 1}}
	return m
}

// RegisterSoftwareRenderManager registers the software implementation
// under SoftwareBackendName
func RegisterSoftwareRenderManager(cfg *config.Config, log *logger.Logger) {
	RegisterRenderManager(SoftwareBackendName, func(ctx ClientContext, lib GraphicsLibrary) (RenderManager, error) {
		return NewSoftwareRenderManager(cfg, log, lib), nil
	})
}

// DoingOkay reports whether the configured display makes sense
func (m *SoftwareRenderManager) DoingOkay() bool {
	return m.display.EyeWidth > 0 && m.display.EyeHeight > 0
}

// OpenDisplay marks the simulated display open
func (m *SoftwareRenderManager) OpenDisplay() OpenResults {
	if !m.DoingOkay() {
		return OpenResults{Status: OpenFailure}
	}
	m.open = true
	return OpenResults{Status: OpenComplete}
}

// SetPose overrides one eye's pose; the simulator uses this to animate
// head motion between frames
func (m *SoftwareRenderManager) SetPose(eye int, pose Pose) {
	if eye >= 0 && eye < len(m.poses) {
		m.poses[eye] = pose
	}
}

// RenderInfo returns fresh per-eye descriptors
func (m *SoftwareRenderManager) RenderInfo() []RenderInfo {
	width := float64(m.display.EyeWidth)
	height := float64(m.display.EyeHeight)

	near := m.display.Near
	right := near * math.Tan(m.display.FOV/2*math.Pi/180)
	top := right * height / width

	info := make([]RenderInfo, len(m.poses))
	for eye := range m.poses {
		info[eye] = RenderInfo{
			Viewport: Viewport{Width: width, Height: height},
			Projection: Projection{
				Left: -right, Right: right,
				Top: top, Bottom: -top,
				Near: near, Far: m.display.Far,
			},
			Pose:    m.poses[eye],
			Library: m.library,
		}
	}
	return info
}

// PresentRenderBuffers composites the eye color buffers side by side.
// The flip flag applies the vertical flip the Direct3D path requires
// for bottom-up host textures.
func (m *SoftwareRenderManager) PresentRenderBuffers(buffers []RenderBuffer, flipVertical bool) bool {
	if !m.open || len(buffers) == 0 {
		return false
	}

	composite := imaging.New(m.display.EyeWidth*len(buffers), m.display.EyeHeight, color.NRGBA{A: 255})
	x := 0
	for _, buf := range buffers {
		if buf.D3D11 == nil {
			m.log.Warn("software render manager was handed a non-software buffer")
			return false
		}
		tex, ok := buf.D3D11.ColorBuffer.(*SoftwareTexture)
		if !ok {
			m.log.Warn("software render manager was handed a foreign texture")
			return false
		}
		eye := tex.Image()
		if flipVertical {
			eye = imaging.FlipV(eye)
		}
		composite = imaging.Paste(composite, eye, image.Pt(x, 0))
		x += eye.Bounds().Dx()
	}

	m.last = composite
	m.frames++
	m.writeSnapshot(composite)
	return true
}

// writeSnapshot dumps the composite to a numbered PNG when enabled
func (m *SoftwareRenderManager) writeSnapshot(composite *image.NRGBA) {
	if !m.snapshot.Enabled {
		return
	}
	every := m.snapshot.Every
	if every <= 0 {
		every = 1
	}
	if m.frames%every != 0 {
		return
	}
	if err := os.MkdirAll(m.snapshot.Dir, 0755); err != nil {
		m.log.Warnf("cannot create snapshot directory: %v", err)
		return
	}
	path := filepath.Join(m.snapshot.Dir, fmt.Sprintf("frame-%04d.png", m.frames))
	if err := imaging.Save(composite, path); err != nil {
		m.log.Warnf("cannot write snapshot: %v", err)
	}
}

// LastFrame returns the most recent composite, or nil before the first
// successful present
func (m *SoftwareRenderManager) LastFrame() *image.NRGBA {
	return m.last
}

// FrameCount returns how many frames have been presented
func (m *SoftwareRenderManager) FrameCount() int {
	return m.frames
}

// Close releases the simulated display
func (m *SoftwareRenderManager) Close() error {
	m.open = false
	return nil
}
