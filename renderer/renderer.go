package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/vcontrol/glfwcontext"
	"github.com/richinsley/vcontrol/graphics"
	shader "github.com/richinsley/vcontrol/shader"
)

// glInitOnce guards gl.Init, which must run once per process.
var glInitOnce sync.Once

// GLDisplay draws textured rectangles with OpenGL into a GLFW window.
type GLDisplay struct {
	context graphics.Context
	width   int
	height  int

	program  uint32
	quadVAO  uint32
	quadVBO  uint32
	dstLoc   int32
	srcLoc   int32
	alphaLoc int32
	texLoc   int32
}

type glTexture struct {
	id     uint32
	width  int
	height int
	blend  bool
	alpha  float32
}

func (t *glTexture) SetAlphaMod(alpha uint8) error {
	if t.id == 0 {
		return fmt.Errorf("texture destroyed")
	}
	t.alpha = float32(alpha) / 255
	return nil
}

func (t *glTexture) Destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// NewGLDisplay opens a width by height window. Must be called from the main
// thread.
func NewGLDisplay(width, height int, fullscreen bool) (*GLDisplay, error) {
	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	ctx, err := glfwcontext.New(width, height, fullscreen, "vcontrol")
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, fmt.Errorf("failed to initialize glfw context: %w", err)
	}

	d := &GLDisplay{
		context: ctx,
		width:   width,
		height:  height,
	}

	// Make the context current BEFORE initializing OpenGL.
	d.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		d.context.Shutdown()
		glfwcontext.TerminateGraphics()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	if err := d.initScene(); err != nil {
		d.context.Shutdown()
		glfwcontext.TerminateGraphics()
		return nil, err
	}
	return d, nil
}

func (d *GLDisplay) initScene() error {
	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(shader.QuadVertices)*4, gl.Ptr(shader.QuadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	var err error
	d.program, err = newProgram(shader.GenerateVertexShader(false), shader.GetLayerFragmentShader(false))
	if err != nil {
		return fmt.Errorf("failed to create layer program: %w", err)
	}
	d.dstLoc = gl.GetUniformLocation(d.program, gl.Str(shader.UniformDst+"\x00"))
	d.srcLoc = gl.GetUniformLocation(d.program, gl.Str(shader.UniformSrc+"\x00"))
	d.alphaLoc = gl.GetUniformLocation(d.program, gl.Str(shader.UniformAlpha+"\x00"))
	d.texLoc = gl.GetUniformLocation(d.program, gl.Str(shader.UniformTexture+"\x00"))

	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
	return nil
}

// CreateTexture uploads p. Textures with alpha are always blended.
func (d *GLDisplay) CreateTexture(p *graphics.Pixels, blend bool) (graphics.Texture, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	format := uint32(gl.RGB)
	internal := int32(gl.RGB8)
	if p.HasAlpha {
		format = gl.RGBA
		internal = gl.RGBA8
	}

	t := &glTexture{
		width:  p.Width,
		height: p.Height,
		blend:  blend || p.HasAlpha,
		alpha:  1,
	}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	// rows are tightly packed, which breaks the default 4 byte alignment
	// for RGB
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(p.Width), int32(p.Height), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(p.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		t.Destroy()
		return nil, fmt.Errorf("glTexImage2D failed: 0x%x", e)
	}
	return t, nil
}

func (d *GLDisplay) Clear() error {
	fbWidth, fbHeight := d.context.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return nil
}

// Copy draws the src region of t into dst, both in pixels. The logical
// display size is stretched over the framebuffer.
func (d *GLDisplay) Copy(t graphics.Texture, src, dst graphics.Rect) error {
	tex, ok := t.(*glTexture)
	if !ok {
		return fmt.Errorf("texture %T not created by this display", t)
	}
	if tex.id == 0 {
		return fmt.Errorf("texture destroyed")
	}

	if tex.blend {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}

	ndc := dst.NDC(d.width, d.height)
	uv := src.UV(tex.width, tex.height)

	gl.UseProgram(d.program)
	gl.Uniform4f(d.dstLoc, ndc[0], ndc[1], ndc[2], ndc[3])
	gl.Uniform4f(d.srcLoc, uv[0], uv[1], uv[2], uv[3])
	gl.Uniform1f(d.alphaLoc, tex.alpha)
	gl.Uniform1i(d.texLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

func (d *GLDisplay) Present() {
	d.context.EndFrame()
}

// PollQuit processes window events. Escape or closing the window quits.
func (d *GLDisplay) PollQuit() bool {
	d.context.PollEvents()
	return d.context.ShouldClose()
}

func (d *GLDisplay) Size() (int, int) {
	return d.width, d.height
}

func (d *GLDisplay) Shutdown() {
	gl.DeleteProgram(d.program)
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
	d.context.Shutdown()
	glfwcontext.TerminateGraphics()
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
