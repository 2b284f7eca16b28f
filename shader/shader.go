package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// The quad is the unit square. u_dst places it in normalized device
// coordinates (x, y, w, h) and u_src selects the texture region in uv space.
const layerVertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
uniform vec4 u_dst;
uniform vec4 u_src;
out vec2 frag_uv;
void main() {
    frag_uv = u_src.xy + in_vert * u_src.zw;
    gl_Position = vec4(u_dst.xy + in_vert * u_dst.zw, 0.0, 1.0);
}
`

const layerFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform float u_alpha;
void main() {
    vec4 c = texture(u_texture, frag_uv);
    fragColor = vec4(c.rgb, c.a * u_alpha);
}
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const layerVertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
uniform vec4 u_dst;
uniform vec4 u_src;
out vec2 frag_uv;
void main() {
    frag_uv = u_src.xy + in_vert * u_src.zw;
    gl_Position = vec4(u_dst.xy + in_vert * u_dst.zw, 0.0, 1.0);
}
`

const layerFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform float u_alpha;
void main() {
    vec4 c = texture(u_texture, frag_uv);
    fragColor = vec4(c.rgb, c.a * u_alpha);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Uniform names shared by both program variants.
const (
	UniformDst     = "u_dst"
	UniformSrc     = "u_src"
	UniformAlpha   = "u_alpha"
	UniformTexture = "u_texture"
)

// QuadVertices is the unit square as two triangles, matching the layout of
// in_vert.
var QuadVertices = []float32{
	0.0, 0.0, 1.0, 0.0, 1.0, 1.0,
	0.0, 0.0, 1.0, 1.0, 0.0, 1.0,
}

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return layerVertexShaderSourceGLES
	}
	return layerVertexShaderSourceGL
}

func GetLayerFragmentShader(isGLES bool) string {
	if isGLES {
		return layerFragmentShaderSourceGLES
	}
	return layerFragmentShaderSourceGL
}
