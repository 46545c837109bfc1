package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"connector-align/internal/align"
)

// EnvPrefix prefixes environment overrides, e.g. CONNALIGN_SIM_TICKS.
const EnvPrefix = "CONNALIGN"

// Config holds all tool settings.
type Config struct {
	LogLevel string              `mapstructure:"logLevel"`
	LogsDir  string              `mapstructure:"logsDir"`
	Scene    string              `mapstructure:"scene"`
	Sim      SimConfig           `mapstructure:"sim"`
	HUD      HUDConfig           `mapstructure:"hud"`
	Locator  align.LocatorConfig `mapstructure:"locator"`
	Preview  PreviewConfig       `mapstructure:"preview"`
}

// SimConfig drives the in-memory world.
type SimConfig struct {
	Ticks       int     `mapstructure:"ticks"`
	TickSeconds float64 `mapstructure:"tickSeconds"`
	// RunEvery is the number of simulation ticks between HUD runs.
	RunEvery int `mapstructure:"runEvery"`
}

// HUDConfig sets the display cadences, counted in HUD runs.
type HUDConfig struct {
	CustomDataEvery int `mapstructure:"customDataEvery"`
	ColorEvery      int `mapstructure:"colorEvery"`
}

// PreviewConfig controls WebP frame output.
type PreviewConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	OutputDir   string        `mapstructure:"outputDir"`
	Workers     int           `mapstructure:"workers"`
	TextureDir  string        `mapstructure:"textureDir"`
	Supersample int           `mapstructure:"supersample"`
	Background  string        `mapstructure:"background"`
	Animate     bool          `mapstructure:"animate"`
	FrameDelay  time.Duration `mapstructure:"frameDelay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "")
	v.SetDefault("scene", "")

	v.SetDefault("sim.ticks", 120)
	v.SetDefault("sim.tickSeconds", 1.0/60)
	v.SetDefault("sim.runEvery", 10)

	v.SetDefault("hud.customDataEvery", 12)
	v.SetDefault("hud.colorEvery", 12)

	loc := align.DefaultLocatorConfig()
	v.SetDefault("locator.searchRadius", loc.SearchRadius)
	v.SetDefault("locator.forwardOffset", loc.ForwardOffset)
	v.SetDefault("locator.boxHalfExtent", loc.BoxHalfExtent)
	v.SetDefault("locator.maxDistance", loc.MaxDistance)

	v.SetDefault("preview.enabled", false)
	v.SetDefault("preview.outputDir", "renders")
	v.SetDefault("preview.workers", 0)
	v.SetDefault("preview.textureDir", "")
	v.SetDefault("preview.supersample", 2)
	v.SetDefault("preview.background", "#000000")
	v.SetDefault("preview.animate", false)
	v.SetDefault("preview.frameDelay", "100ms")
}

// Load reads the config file at path (JSON, YAML or TOML by extension) over
// the defaults, then applies CONNALIGN_* environment overrides. An empty path
// or a missing file yields the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene     string
	OutputDir string
	LogLevel  string
	Ticks     int
	Workers   int
	Preview   bool
}

// Resolve applies CLI overrides and fills any zero values with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.OutputDir != "" {
		c.Preview.OutputDir = flags.OutputDir
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Ticks > 0 {
		c.Sim.Ticks = flags.Ticks
	}
	if flags.Workers > 0 {
		c.Preview.Workers = flags.Workers
	}
	if flags.Preview {
		c.Preview.Enabled = true
	}

	if c.Sim.Ticks <= 0 {
		c.Sim.Ticks = 120
	}
	if c.Sim.TickSeconds <= 0 {
		c.Sim.TickSeconds = 1.0 / 60
	}
	if c.Sim.RunEvery <= 0 {
		c.Sim.RunEvery = 10
	}

	def := align.DefaultLocatorConfig()
	if c.Locator.SearchRadius <= 0 {
		c.Locator.SearchRadius = def.SearchRadius
	}
	if c.Locator.BoxHalfExtent <= 0 {
		c.Locator.BoxHalfExtent = def.BoxHalfExtent
	}
	if c.Locator.MaxDistance <= 0 {
		c.Locator.MaxDistance = def.MaxDistance
	}

	if c.Preview.OutputDir == "" {
		c.Preview.OutputDir = "renders"
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.FrameDelay <= 0 {
		c.Preview.FrameDelay = 100 * time.Millisecond
	}
	if c.Preview.Workers <= 0 {
		c.Preview.Workers = runtime.NumCPU()
	}
}
