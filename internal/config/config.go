// Package config loads heroswap settings from a TOML file.
//
// Every field has a default, so a missing file or an empty one is valid:
//
//	[server]
//	addr = ":8080"
//
//	[detector]
//	ready_timeout = "8s"
//
//	[tuning.hero1]
//	clip_scale = 2.4
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/heroswap/internal/tuning"
)

// Duration is a time.Duration that decodes from strings like "8s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Server struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

// Assets names the scene images inside Dir.
type Assets struct {
	Dir        string `toml:"dir"`
	Background string `toml:"background"`
	Hero1      string `toml:"hero1"`
	Hero2      string `toml:"hero2"`
	Villain    string `toml:"villain"`
	Prop       string `toml:"prop"`
}

type Detector struct {
	Python        string   `toml:"python"`
	Script        string   `toml:"script"`
	ReadyTimeout  Duration `toml:"ready_timeout"`
	IdleTimeout   Duration `toml:"idle_timeout"`
	MaxFaces      int      `toml:"max_faces"`
	MinConfidence float64  `toml:"min_confidence"`
}

type Store struct {
	Path string `toml:"path"`
}

type Animation struct {
	FPS int `toml:"fps"`
}

// Audio is the external player launched with each animation. An empty File
// disables it.
type Audio struct {
	Player  string   `toml:"player"`
	Args    []string `toml:"args"`
	File    string   `toml:"file"`
	Timeout Duration `toml:"timeout"`
}

type Extract struct {
	PaddingFraction float64 `toml:"padding_fraction"`
	MinPadding      float64 `toml:"min_padding"`
	ClipScale       float64 `toml:"clip_scale"`
	SoftEdge        bool    `toml:"soft_edge"`
}

// Config is the full settings tree.
type Config struct {
	Server    Server                                `toml:"server"`
	Assets    Assets                                `toml:"assets"`
	Detector  Detector                              `toml:"detector"`
	Store     Store                                 `toml:"store"`
	Animation Animation                             `toml:"animation"`
	Audio     Audio                                 `toml:"audio"`
	Extract   Extract                               `toml:"extract"`
	Tuning    map[tuning.TemplateID]tuning.Override `toml:"tuning"`
}

// Default returns the built-in settings. Paths are relative to the working
// directory except the database, which lives under ~/.heroswap.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Assets: Assets{
			Dir:        "assets",
			Background: "bg.jpg",
			Hero1:      "hero1.png",
			Hero2:      "hero2.png",
			Villain:    "villian.png",
			Prop:       "med.png",
		},
		Detector: Detector{
			ReadyTimeout:  Duration{8 * time.Second},
			IdleTimeout:   Duration{30 * time.Second},
			MaxFaces:      1,
			MinConfidence: 0.5,
		},
		Store:     Store{Path: defaultStorePath()},
		Animation: Animation{FPS: 30},
		Audio: Audio{
			Player:  "ffplay",
			Args:    []string{"-nodisp", "-autoexit", "-loglevel", "quiet"},
			Timeout: Duration{30 * time.Second},
		},
		Extract: Extract{
			PaddingFraction: 0.18,
			MinPadding:      50,
			ClipScale:       1.5,
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "heroswap.db"
	}
	return filepath.Join(home, ".heroswap", "heroswap.db")
}

// Load reads path over Default. A missing file is not an error; an empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return cfg.Validate()
}

// Validate checks ranges and template ids.
func (c *Config) Validate() error {
	if c.Animation.FPS <= 0 || c.Animation.FPS > 120 {
		return fmt.Errorf("animation.fps must be between 1 and 120, got %d", c.Animation.FPS)
	}
	if c.Detector.ReadyTimeout.Duration <= 0 {
		return errors.New("detector.ready_timeout must be positive")
	}
	if c.Extract.PaddingFraction < 0 || c.Extract.MinPadding < 0 {
		return errors.New("extract padding must not be negative")
	}
	for id := range c.Tuning {
		if _, err := tuning.ParseTemplateID(string(id)); err != nil {
			return fmt.Errorf("tuning: %w", err)
		}
	}
	return nil
}

// AssetPath joins name onto the asset directory.
func (c *Config) AssetPath(name string) string {
	return filepath.Join(c.Assets.Dir, name)
}
