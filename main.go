package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/javanhut/RavenCompanion/chat"
	"github.com/javanhut/RavenCompanion/config"
	"github.com/javanhut/RavenCompanion/fonts"
	"github.com/javanhut/RavenCompanion/keybindings"
	"github.com/javanhut/RavenCompanion/model"
	"github.com/javanhut/RavenCompanion/render"
	"github.com/javanhut/RavenCompanion/scene"
	"github.com/javanhut/RavenCompanion/window"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv(nil)

	src, err := fonts.Resolve(cfg.Font.Path)
	if err != nil {
		log.Printf("Font %s unavailable, falling back: %v", cfg.Font.Path, err)
		src, _ = fonts.Resolve("")
	}
	face, err := fonts.NewFace(src.Data, float64(cfg.Font.Size))
	if err != nil {
		log.Printf("Failed to load font %s: %v", src.Name, err)
		return
	}
	defer face.Close()
	log.Printf("Using font %s at %.0fpx", src.Name, face.Size())

	win, err := window.NewWindow(window.Config{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
	})
	if err != nil {
		log.Printf("Failed to create window: %v", err)
		return
	}
	defer win.Destroy()

	renderer, err := render.NewRenderer(face)
	if err != nil {
		log.Printf("Failed to create renderer: %v", err)
		return
	}
	defer renderer.Destroy()

	fbWidth, fbHeight := win.GetFramebufferSize()
	win.SetViewport(fbWidth, fbHeight)

	sprite := loadModel(cfg)
	var character model.Model
	if sprite != nil {
		defer sprite.Destroy()
		character = sprite
	}

	client := chat.NewClient(chat.Options{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Persona: cfg.Chat.Persona,
		Timeout: cfg.Chat.Timeout,
	})

	queue := &scene.Queue{}
	loop, err := scene.New(scene.Options{
		Display:    win,
		Surface:    renderer,
		Completer:  client,
		Queue:      queue,
		Model:      character,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		FPS:        cfg.Window.FPS,
		Background: cfg.Chat.Background,
	})
	if err != nil {
		log.Printf("Failed to create scene: %v", err)
		return
	}

	win.GLFW().SetCharModsCallback(func(w *glfw.Window, char rune, mods glfw.ModifierKey) {
		if r, ok := keybindings.TranslateChar(char, mods); ok {
			queue.Push(scene.Text(r))
		}
	})
	win.GLFW().SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch keybindings.TranslateKey(key, action, mods) {
		case keybindings.ActionSubmit:
			queue.Push(scene.Event{Kind: scene.EventSubmit})
		case keybindings.ActionBackspace:
			queue.Push(scene.Event{Kind: scene.EventBackspace})
		case keybindings.ActionQuit:
			queue.Push(scene.Event{Kind: scene.EventQuit})
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil {
		log.Printf("Scene stopped: %v", err)
	}
}

// loadModel loads the configured character. Failures are logged and the
// scene runs without a model.
func loadModel(cfg *config.Config) *model.Sprite {
	sprite := model.NewSprite(cfg.Window.Width, cfg.Window.Height)
	if err := sprite.Load(cfg.ModelFile()); err != nil {
		log.Printf("Failed to load model %s: %v", cfg.ModelFile(), err)
		sprite.Destroy()
		return nil
	}

	startMotion(cfg, sprite)

	if err := sprite.Resize(cfg.Window.Width, cfg.Window.Height); err != nil {
		log.Printf("Failed to resize model: %v", err)
	}
	sprite.SetAutoBreath(cfg.Model.AutoBreath)

	if info, err := model.ReadDisplayInfo(cfg.DisplayInfoFile()); err != nil {
		log.Printf("Failed to read display info: %v", err)
	} else {
		names := make([]string, 0, len(info.Parameters))
		for _, p := range info.Parameters {
			names = append(names, p.Name)
		}
		log.Printf("Display info: %d parameters, %d parts: %s",
			len(info.Parameters), len(info.Parts), strings.Join(names, ", "))
	}
	return sprite
}

// startMotion plays the configured motion group once its physics file is
// present.
func startMotion(cfg *config.Config, sprite *model.Sprite) {
	if cfg.Model.Motion == "" {
		return
	}
	physics, err := model.ReadPhysics(cfg.PhysicsFile())
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Printf("Motion file not found: %s", cfg.PhysicsFile())
		} else {
			log.Printf("Failed to read physics: %v", err)
		}
		return
	}
	log.Printf("Physics: %d settings at %.0f fps", physics.Settings, physics.FPS)

	if err := sprite.StartMotion(cfg.Model.Motion, 0, model.PriorityIdle); err != nil {
		log.Printf("Failed to start motion %s: %v", cfg.Model.Motion, err)
	}
}
