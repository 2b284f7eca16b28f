package graphics

// Context defines the interface for a window that owns an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// PollEvents processes pending window events without blocking.
	PollEvents()
	// EndFrame presents the back buffer.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}
