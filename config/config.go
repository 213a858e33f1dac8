package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables read once at startup
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	EnvModelID = "OPENAI_MODEL_ID"
)

// DefaultPersona is the system instruction sent with every question
const DefaultPersona = "你是绪山真寻，你要扮演他"

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Title  string  `toml:"title"`
	FPS    float64 `toml:"fps"`
}

// ModelConfig locates the character model on disk
type ModelConfig struct {
	// Folder is relative to the working directory
	Folder string `toml:"folder"`
	// Name is the shared prefix of the .model3/.physics3/.cdi3 files
	Name       string `toml:"name"`
	AutoBreath bool   `toml:"auto_breath"`
	// Motion group started after loading ("" disables it)
	Motion string `toml:"motion"`
}

// FontConfig selects the UI font
type FontConfig struct {
	// Path to a TTF/OTF/TTC file (empty = first system CJK font, then builtin)
	Path string  `toml:"path"`
	Size float32 `toml:"size"`
}

// ChatConfig holds completion behaviour
type ChatConfig struct {
	Persona string `toml:"persona"`
	// Background runs completions off the render loop
	Background bool `toml:"background"`
	// Timeout bounds a single request (0 = client default)
	Timeout time.Duration `toml:"timeout"`
}

// OpenAIConfig holds endpoint credentials. Environment variables win.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Config holds the companion configuration
type Config struct {
	Window WindowConfig `toml:"window"`
	Model  ModelConfig  `toml:"model"`
	Font   FontConfig   `toml:"font"`
	Chat   ChatConfig   `toml:"chat"`
	OpenAI OpenAIConfig `toml:"openai"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Live2D Model Display",
			FPS:    60,
		},
		Model: ModelConfig{
			Folder:     "Mahiro_GG",
			Name:       "Mahiro_V1",
			AutoBreath: true,
			Motion:     "Idle",
		},
		Font: FontConfig{
			Path: "",
			Size: 24,
		},
		Chat: ChatConfig{
			Persona:    DefaultPersona,
			Background: false,
		},
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/raven-companion"
	}
	return filepath.Join(homeDir, ".config", "raven-companion")
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// Load loads the configuration from the default path
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom decodes path over the defaults. A missing file is not an error
// and nothing is written back to disk.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = def.Window.Width, def.Window.Height
	}
	if c.Window.FPS <= 0 {
		c.Window.FPS = def.Window.FPS
	}
	if c.Font.Size <= 0 {
		c.Font.Size = def.Font.Size
	}
	if strings.TrimSpace(c.Chat.Persona) == "" {
		c.Chat.Persona = def.Chat.Persona
	}
	if c.Chat.Timeout < 0 {
		c.Chat.Timeout = 0
	}
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv overrides the endpoint settings with environment values. Unset
// variables leave the file values alone; empty results are passed on as-is
// so the client fails per request rather than at startup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvAPIKey); ok {
		c.OpenAI.APIKey = v
	}
	if v, ok := lookup(EnvBaseURL); ok {
		c.OpenAI.BaseURL = v
	}
	if v, ok := lookup(EnvModelID); ok {
		c.OpenAI.Model = v
	}
}

// ModelFile returns the model descriptor path
func (c *Config) ModelFile() string {
	return filepath.Join(c.Model.Folder, c.Model.Name+".model3.json")
}

// PhysicsFile returns the physics/motion descriptor path
func (c *Config) PhysicsFile() string {
	return filepath.Join(c.Model.Folder, c.Model.Name+".physics3.json")
}

// DisplayInfoFile returns the display-info descriptor path
func (c *Config) DisplayInfoFile() string {
	return filepath.Join(c.Model.Folder, c.Model.Name+".cdi3.json")
}
