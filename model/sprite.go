package model

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/javanhut/RavenCompanion/render"
)

// Sprite is the bundled engine binding. It draws the first texture of a
// model3 descriptor as a single quad and animates it with breathing and an
// idle sway. A GL context must be current for Load, Draw and Destroy.
type Sprite struct {
	desc     *Descriptor
	anim     Animator
	pose     Pose
	texture  uint32
	texW     int
	texH     int
	viewW    int
	viewH    int
	proj     [16]float32
	fraction float64

	program    uint32
	vao        uint32
	vbo        uint32
	projLoc    int32
	texLoc     int32
	glReady    bool
	loaded     bool
	vertexData []float32
}

// NewSprite creates an unloaded sprite for a viewport
func NewSprite(width, height int) *Sprite {
	s := &Sprite{fraction: 0.95}
	_ = s.Resize(width, height)
	return s
}

// Descriptor returns the loaded model descriptor, or nil
func (s *Sprite) Descriptor() *Descriptor {
	return s.desc
}

// Load reads the model3 descriptor at path and uploads its first texture
func (s *Sprite) Load(path string) error {
	desc, err := ReadModel3(path)
	if err != nil {
		return err
	}
	if len(desc.Textures) == 0 {
		return fmt.Errorf("%w: %s lists no textures", ErrInvalidDescriptor, path)
	}

	img, err := loadTexture(desc.Textures[0], maxTextureSize)
	if err != nil {
		return err
	}

	if err := s.initGL(); err != nil {
		return err
	}
	if s.texture != 0 {
		gl.DeleteTextures(1, &s.texture)
		s.texture = 0
	}

	gl.GenTextures(1, &s.texture)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	s.desc = desc
	s.texW, s.texH = img.Rect.Dx(), img.Rect.Dy()
	s.loaded = true

	log.Printf("model: loaded %s (%d textures, %d motion groups)", path, len(desc.Textures), len(desc.Motions))
	return nil
}

func (s *Sprite) initGL() error {
	if s.glReady {
		return nil
	}

	vertShader := `
		#version 410 core
		layout (location = 0) in vec4 vertex; // <vec2 pos, vec2 tex>
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"

	fragShader := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D tex;
		void main() {
			FragColor = texture(tex, TexCoords);
		}
	` + "\x00"

	program, err := render.CreateProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("failed to create model shader: %w", err)
	}
	s.program = program
	s.projLoc = gl.GetUniformLocation(program, gl.Str("projection\x00"))
	s.texLoc = gl.GetUniformLocation(program, gl.Str("tex\x00"))

	gl.GenVertexArrays(1, &s.vao)
	gl.GenBuffers(1, &s.vbo)
	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	s.glReady = true
	return nil
}

// Update advances breathing and motion
func (s *Sprite) Update(dt time.Duration) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	s.pose = s.anim.Advance(dt)
	return nil
}

// Draw renders the model with the current pose
func (s *Sprite) Draw() error {
	if !s.loaded {
		return ErrNotLoaded
	}
	s.vertexData = s.vertices(s.vertexData[:0])

	gl.UseProgram(s.program)
	gl.UniformMatrix4fv(s.projLoc, 1, false, &s.proj[0])
	gl.Uniform1i(s.texLoc, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)

	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(s.vertexData)*4, gl.Ptr(s.vertexData))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// vertices appends the two textured triangles of the posed quad
func (s *Sprite) vertices(dst []float32) []float32 {
	x, y, w, h := fitRect(s.texW, s.texH, s.viewW, s.viewH, s.fraction)
	c := quadCorners(x, y, w, h, s.pose)
	tl, tr, br, bl := c[0], c[1], c[2], c[3]
	return append(dst,
		float32(tl[0]), float32(tl[1]), 0, 0,
		float32(tr[0]), float32(tr[1]), 1, 0,
		float32(br[0]), float32(br[1]), 1, 1,
		float32(tl[0]), float32(tl[1]), 0, 0,
		float32(br[0]), float32(br[1]), 1, 1,
		float32(bl[0]), float32(bl[1]), 0, 1,
	)
}

// Resize sets the viewport the model is fitted into
func (s *Sprite) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s.viewW, s.viewH = width, height
	s.proj = render.OrthoMatrix(0, float32(width), float32(height), 0, -1, 1)
	return nil
}

// SetAutoBreath toggles breathing
func (s *Sprite) SetAutoBreath(enabled bool) {
	s.anim.SetAutoBreath(enabled)
}

// StartMotion plays entry index of a motion group from the descriptor. The
// idle group is always available, even when the descriptor lists none.
func (s *Sprite) StartMotion(group string, index, priority int) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	fadeIn, err := s.motionFadeIn(group, index)
	if err != nil {
		return err
	}
	if !s.anim.Start(group, index, priority, fadeIn) {
		log.Printf("model: motion %s[%d] ignored, higher priority motion playing", group, index)
	}
	return nil
}

func (s *Sprite) motionFadeIn(group string, index int) (time.Duration, error) {
	entries, ok := s.desc.Motions[group]
	if !ok {
		if group == IdleGroup && index == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: group %q", ErrUnknownMotion, group)
	}
	if index < 0 || index >= len(entries) {
		return 0, fmt.Errorf("%w: %s[%d] (group has %d)", ErrUnknownMotion, group, index, len(entries))
	}
	return time.Duration(entries[index].FadeIn * float64(time.Second)), nil
}

// Destroy releases GL resources
func (s *Sprite) Destroy() {
	if s.texture != 0 {
		gl.DeleteTextures(1, &s.texture)
	}
	if s.glReady {
		gl.DeleteVertexArrays(1, &s.vao)
		gl.DeleteBuffers(1, &s.vbo)
		gl.DeleteProgram(s.program)
	}
	s.loaded = false
	s.glReady = false
	s.texture = 0
}

var _ Model = (*Sprite)(nil)
