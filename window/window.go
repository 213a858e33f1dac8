package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/javanhut/RavenCompanion/assets"
)

func init() {
	// GLFW event handling must run on the main thread
	runtime.LockOSThread()
}

// Config holds window configuration
type Config struct {
	Width  int
	Height int
	Title  string
	// SwapInterval is passed to glfw.SwapInterval; 0 leaves pacing to the caller
	SwapInterval int
}

// DefaultConfig returns the default window configuration
func DefaultConfig() Config {
	return Config{
		Width:  800,
		Height: 600,
		Title:  "Live2D Model Display",
	}
}

// Window wraps a fixed-size GLFW window with an OpenGL context
type Window struct {
	glfw   *glfw.Window
	config Config
}

// NewWindow creates a new GLFW window with OpenGL context
func NewWindow(config Config) (*Window, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", config.Width, config.Height)
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// OpenGL context hints
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)

	glfw.WindowHintString(glfw.X11ClassName, "raven-companion")
	glfw.WindowHintString(glfw.X11InstanceName, "raven-companion")

	window, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	glfw.SwapInterval(config.SwapInterval)

	w := &Window{
		glfw:   window,
		config: config,
	}
	w.loadIcon()

	return w, nil
}

// GLFW returns the underlying GLFW window
func (w *Window) GLFW() *glfw.Window {
	return w.glfw
}

// Size returns the configured window size
func (w *Window) Size() (int, int) {
	return w.config.Width, w.config.Height
}

// GetFramebufferSize returns the framebuffer size
func (w *Window) GetFramebufferSize() (int, int) {
	return w.glfw.GetFramebufferSize()
}

// ShouldClose returns true if the window should close
func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

// SetShouldClose sets the window close flag
func (w *Window) SetShouldClose(close bool) {
	w.glfw.SetShouldClose(close)
}

// SwapBuffers presents the back buffer
func (w *Window) SwapBuffers() {
	w.glfw.SwapBuffers()
}

// SetViewport sets the OpenGL viewport
func (w *Window) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (w *Window) loadIcon() {
	if icons := assets.Icons(); len(icons) > 0 {
		w.glfw.SetIcon(icons)
	}
}

// Destroy cleans up window resources
func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}

// PollEvents processes pending events
func (w *Window) PollEvents() {
	glfw.PollEvents()
}
