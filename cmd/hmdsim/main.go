package main

import (
	"flag"
	"image"
	"log"
	"math"
	"runtime"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/logger"
	"github.com/DenCity-life/OSVR-Unity-Rendering/internal/mathutil"
	"github.com/DenCity-life/OSVR-Unity-Rendering/pkg/config"
	"github.com/DenCity-life/OSVR-Unity-Rendering/pkg/rendering"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

// simHost plays the game engine's side of the plugin interface: it
// reports a Direct3D-style renderer backed by the software device
type simHost struct {
	device *rendering.SoftwareDevice
}

func (h *simHost) Renderer() rendering.DeviceType {
	return rendering.DeviceTypeD3D11
}

func (h *simHost) D3D11Device() (rendering.Device, rendering.DeviceContext) {
	return h.device, h.device
}

func (h *simHost) OpenGLContext() rendering.GL {
	return nil
}

// simClientContext is a stand-in VR runtime client handle
type simClientContext struct{}

func (simClientContext) Update() error { return nil }

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	frames := flag.Int("frames", 60, "Number of frames to simulate")
	preview := flag.Bool("preview", false, "Show composited frames in a window")
	flag.Parse()

	lg := logger.NewLogger("debug")
	lg.Info("Starting HMD rendering simulator...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		lg.Warnf("%v", err)
	}
	if cfg.Log.Level != "" {
		lg.SetLevel(cfg.Log.Level)
	}

	// The simulator always drives the software render manager and
	// keeps a handle on the created instance to animate head motion
	cfg.Backend = rendering.SoftwareBackendName
	var manager *rendering.SoftwareRenderManager
	rendering.RegisterRenderManager(rendering.SoftwareBackendName,
		func(ctx rendering.ClientContext, lib rendering.GraphicsLibrary) (rendering.RenderManager, error) {
			manager = rendering.NewSoftwareRenderManager(cfg, lg, lib)
			return manager, nil
		})

	plugin := rendering.New(cfg, lg)
	host := &simHost{device: rendering.NewSoftwareDevice()}
	plugin.Load(host)

	if err := plugin.CreateRenderManager(simClientContext{}); err != nil {
		log.Fatalf("Failed to create render manager: %v", err)
	}

	// Hand the plugin one finished texture per eye, the way the engine
	// registers its render textures after the first camera render
	for eye := 0; eye < 2; eye++ {
		vp, err := plugin.Viewport(eye)
		if err != nil {
			log.Fatalf("Failed to query viewport for eye %d: %v", eye, err)
		}
		tex := rendering.NewSoftwareTexture(int(vp.Width), int(vp.Height))
		fillEyePattern(tex.Image(), eye)
		if err := plugin.SetColorBuffer(tex, eye); err != nil {
			log.Fatalf("Failed to register eye %d texture: %v", eye, err)
		}
	}

	var window *glfw.Window
	if *preview {
		window, err = openPreviewWindow(cfg)
		if err != nil {
			log.Fatalf("Failed to open preview window: %v", err)
		}
		defer glfw.Terminate()
	}

	renderEvent := plugin.RenderEventFunc()
	half := cfg.Display.IPD / 2
	for frame := 0; frame < *frames; frame++ {
		if window != nil && window.ShouldClose() {
			break
		}

		// Gentle head yaw so consecutive frames differ
		yaw := 0.1 * math.Sin(float64(frame)/30)
		q := rendering.Quaternion{W: math.Cos(yaw / 2), Y: math.Sin(yaw / 2)}
		manager.SetPose(0, rendering.Pose{Position: [3]float64{-half, 0, 0}, Rotation: q})
		manager.SetPose(1, rendering.Pose{Position: [3]float64{half, 0, 0}, Rotation: q})

		renderEvent(rendering.EventRender)

		if window != nil {
			drawPreview(manager.LastFrame())
			window.SwapBuffers()
			glfw.PollEvents()
		}
	}

	renderEvent(rendering.EventShutdown)
	plugin.Unload()
	lg.Infof("Simulated %d frames", manager.FrameCount())
}

// fillEyePattern paints a per-eye gradient so the eyes are easy to tell
// apart in snapshots: green ramp for the left eye, blue for the right
func fillEyePattern(img *image.NRGBA, eye int) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		ty := float64(y) / float64(bounds.Dy())
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tx := float64(x) / float64(bounds.Dx())
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(mathutil.Lerp(0, 255, tx))
			if eye == 0 {
				img.Pix[i+1] = uint8(mathutil.Lerp(64, 255, ty))
				img.Pix[i+2] = 32
			} else {
				img.Pix[i+1] = 32
				img.Pix[i+2] = uint8(mathutil.Lerp(64, 255, ty))
			}
			img.Pix[i+3] = 255
		}
	}
}

// openPreviewWindow creates a half-size window with a GL 2.1 context
func openPreviewWindow(cfg *config.Config) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(cfg.Display.EyeWidth, cfg.Display.EyeHeight/2,
		"HMD Simulator", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, err
	}

	gl.Enable(gl.TEXTURE_2D)
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	return window, nil
}

// drawPreview uploads the composite and draws it as a full-window quad
func drawPreview(composite *image.NRGBA) {
	if composite == nil {
		return
	}
	bounds := composite.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(bounds.Dx()), int32(bounds.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(composite.Pix))

	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Begin(gl.QUADS)
	// Image row 0 is the top, GL texture coordinate 0 is the bottom
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.End()
}
