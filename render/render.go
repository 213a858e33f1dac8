package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/javanhut/RavenCompanion/fonts"
	"github.com/javanhut/RavenCompanion/ui"
)

const atlasSize = 1024

// Renderer draws colored rectangles and text with OpenGL. It implements
// ui.Canvas in window coordinates with the origin at the top-left.
type Renderer struct {
	face   *fonts.Face
	glyphs *glyphCache
	proj   [16]float32
	width  int
	height int

	fontAtlas uint32

	// OpenGL resources
	quadVAO     uint32
	quadVBO     uint32
	program     uint32
	fontProgram uint32
	fontVAO     uint32
	fontVBO     uint32

	// Uniforms
	colorLoc    int32
	projLoc     int32
	texColorLoc int32
	texProjLoc  int32
	texLoc      int32

	vertices []float32
}

// NewRenderer creates a renderer drawing text with face. A GL context must
// be current.
func NewRenderer(face *fonts.Face) (*Renderer, error) {
	if face == nil {
		return nil, fmt.Errorf("renderer needs a font face")
	}
	r := &Renderer{face: face}

	if err := r.initGL(); err != nil {
		return nil, err
	}
	r.initAtlas()
	r.glyphs = newGlyphCache(face, atlasSize, r.uploadGlyph)

	return r, nil
}

// initGL initializes OpenGL resources
func (r *Renderer) initGL() error {
	// Create quad shader program for colored rectangles
	vertShader := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(aPos, 0.0, 1.0);
		}
	` + "\x00"

	fragShader := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() {
			FragColor = color;
		}
	` + "\x00"

	var err error
	r.program, err = CreateProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("failed to create quad shader: %w", err)
	}

	r.colorLoc = gl.GetUniformLocation(r.program, gl.Str("color\x00"))
	r.projLoc = gl.GetUniformLocation(r.program, gl.Str("projection\x00"))

	// Text shader samples coverage from the red channel of the atlas
	textVertShader := `
		#version 410 core
		layout (location = 0) in vec4 vertex; // <vec2 pos, vec2 tex>
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"

	textFragShader := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"

	r.fontProgram, err = CreateProgram(textVertShader, textFragShader)
	if err != nil {
		gl.DeleteProgram(r.program)
		return fmt.Errorf("failed to create text shader: %w", err)
	}

	r.texColorLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("textColor\x00"))
	r.texProjLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("text\x00"))

	// Create quad VAO/VBO
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	// Font VBO is resized per string, so it starts empty
	gl.GenVertexArrays(1, &r.fontVAO)
	gl.GenBuffers(1, &r.fontVBO)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// initAtlas allocates an empty single-channel glyph texture
func (r *Renderer) initAtlas() {
	gl.GenTextures(1, &r.fontAtlas)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, atlasSize, atlasSize, 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(make([]byte, atlasSize*atlasSize)))

	// Use LINEAR filtering for smooth scaling (anti-aliasing)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (r *Renderer) uploadGlyph(x, y, w, h int, pix []byte) {
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(h),
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Metrics returns the face used for measuring and drawing text
func (r *Renderer) Metrics() ui.Metrics {
	return r.face
}

// Begin sets up the projection for a frame of the given window size
func (r *Renderer) Begin(width, height int) {
	r.width, r.height = width, height
	r.proj = OrthoMatrix(0, float32(width), float32(height), 0, -1, 1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
}

// Clear clears the screen with the given color
func (r *Renderer) Clear(clr ui.Color) {
	gl.ClearColor(clr[0], clr[1], clr[2], clr[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Projection returns the current window projection
func (r *Renderer) Projection() [16]float32 {
	return r.proj
}

// FillRect draws a solid rectangle
func (r *Renderer) FillRect(x, y, w, h float32, clr ui.Color) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &r.proj[0])
	gl.Uniform4fv(r.colorLoc, 1, &clr[0])

	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// DrawText draws a string with its baseline at y. All glyphs of the string
// go out in one draw call.
func (r *Renderer) DrawText(x, baseline float32, text string, clr ui.Color) {
	r.vertices = r.vertices[:0]
	pen := x
	for _, char := range text {
		glyph, ok := r.glyphs.lookup(char)
		if ok && !glyph.bounds.Empty() {
			x0 := pen + float32(glyph.bounds.Min.X)
			y0 := baseline + float32(glyph.bounds.Min.Y)
			x1 := pen + float32(glyph.bounds.Max.X)
			y1 := baseline + float32(glyph.bounds.Max.Y)
			r.vertices = append(r.vertices,
				x0, y0, glyph.u0, glyph.v0,
				x1, y0, glyph.u1, glyph.v0,
				x1, y1, glyph.u1, glyph.v1,
				x0, y0, glyph.u0, glyph.v0,
				x1, y1, glyph.u1, glyph.v1,
				x0, y1, glyph.u0, glyph.v1,
			)
		}
		pen += r.face.Advance(char)
	}
	if len(r.vertices) == 0 {
		return
	}

	gl.UseProgram(r.fontProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, &r.proj[0])
	gl.Uniform4fv(r.texColorLoc, 1, &clr[0])
	gl.Uniform1i(r.texLoc, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)

	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.vertices)*4, gl.Ptr(r.vertices), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.vertices)/4))
	gl.BindVertexArray(0)
}

// Destroy releases GL resources
func (r *Renderer) Destroy() {
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.fontVAO)
	gl.DeleteBuffers(1, &r.fontVBO)
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.fontProgram)
	gl.DeleteTextures(1, &r.fontAtlas)
}
