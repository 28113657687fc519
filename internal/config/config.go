package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Server   ServerConfig   `mapstructure:"server"`
	Progress ProgressConfig `mapstructure:"progress"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Output   OutputConfig   `mapstructure:"output"`
	LogLevel string         `mapstructure:"log_level"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	Model             string `mapstructure:"model"`
	Timeout           int    `mapstructure:"timeout"` // seconds per request
	RequestsPerMinute int    `mapstructure:"rpm"`
	Burst             int    `mapstructure:"burst"`
}

type TTSConfig struct {
	Backend             string `mapstructure:"backend"`
	Voice               string `mapstructure:"voice"`
	VoicesManifest      string `mapstructure:"voices_manifest"`
	SegmentChars        int    `mapstructure:"segment_chars"`
	MaxTextChars        int    `mapstructure:"max_text_chars"`
	MaxDescriptionChars int    `mapstructure:"max_description_chars"`
	CacheSize           int    `mapstructure:"cache_size"`
	CLIPath             string `mapstructure:"cli_path"`
	CLIConfigPath       string `mapstructure:"cli_config_path"`
	CLIVoice            string `mapstructure:"cli_voice"`
	Concurrency         int    `mapstructure:"concurrency"`
	Quiet               bool   `mapstructure:"quiet"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
	MaxBodyBytes    int    `mapstructure:"max_body_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"` // seconds, synchronous /tts only
}

type ProgressConfig struct {
	NATSURL     string `mapstructure:"nats_url"`
	NATSSubject string `mapstructure:"nats_subject"`
}

type PlaybackConfig struct {
	Command string `mapstructure:"command"`
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Gemini: GeminiConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Model:             "gemini-2.5-flash-preview-tts",
			Timeout:           120,
			RequestsPerMinute: 0,
			Burst:             1,
		},
		TTS: TTSConfig{
			Backend:             BackendGemini,
			Voice:               "Kore",
			VoicesManifest:      "",
			SegmentChars:        2500,
			MaxTextChars:        50000,
			MaxDescriptionChars: 7000,
			CacheSize:           256,
			Concurrency:         1,
			Quiet:               true,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 30,
			MaxBodyBytes:    1 << 20,
			RequestTimeout:  600,
		},
		Progress: ProgressConfig{
			NATSSubject: "ttsr.progress",
		},
		Playback: PlaybackConfig{
			Command: "ffplay -nodisp -autoexit -loglevel quiet -",
		},
		Output: OutputConfig{
			Dir:    ".",
			Prefix: "tts-r-2.0",
		},
		LogLevel: "info",
	}
}

// flagKeys maps each flag to its configuration key.
var flagKeys = map[string]string{
	"gemini-api-key":          "gemini.api_key",
	"gemini-base-url":         "gemini.base_url",
	"gemini-model":            "gemini.model",
	"gemini-timeout":          "gemini.timeout",
	"gemini-rpm":              "gemini.rpm",
	"gemini-burst":            "gemini.burst",
	"backend":                 "tts.backend",
	"voice":                   "tts.voice",
	"voices-manifest":         "tts.voices_manifest",
	"segment-chars":           "tts.segment_chars",
	"max-text-chars":          "tts.max_text_chars",
	"max-description-chars":   "tts.max_description_chars",
	"cache-size":              "tts.cache_size",
	"tts-cli-path":            "tts.cli_path",
	"tts-cli-config-path":     "tts.cli_config_path",
	"tts-cli-voice":           "tts.cli_voice",
	"tts-concurrency":         "tts.concurrency",
	"tts-quiet":               "tts.quiet",
	"server-listen-addr":      "server.listen_addr",
	"server-shutdown-timeout": "server.shutdown_timeout",
	"max-body-bytes":          "server.max_body_bytes",
	"request-timeout":         "server.request_timeout",
	"nats-url":                "progress.nats_url",
	"nats-subject":            "progress.nats_subject",
	"player":                  "playback.command",
	"output-dir":              "output.dir",
	"download-prefix":         "output.prefix",
	"log-level":               "log_level",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("gemini-api-key", defaults.Gemini.APIKey, "Gemini API key (prefer TTSR_GEMINI_API_KEY or GEMINI_API_KEY)")
	fs.String("gemini-base-url", defaults.Gemini.BaseURL, "Gemini REST API base URL")
	fs.String("gemini-model", defaults.Gemini.Model, "Gemini TTS model")
	fs.Int("gemini-timeout", defaults.Gemini.Timeout, "Per-segment request timeout in seconds")
	fs.Int("gemini-rpm", defaults.Gemini.RequestsPerMinute, "Max Gemini requests per minute (0 = unlimited)")
	fs.Int("gemini-burst", defaults.Gemini.Burst, "Request burst allowed by the rate limiter")
	fs.String("backend", defaults.TTS.Backend, "Synthesis backend: gemini|pocket-tts")
	fs.String("voice", defaults.TTS.Voice, "Default voice id")
	fs.String("voices-manifest", defaults.TTS.VoicesManifest, "Path to custom voice manifest JSON")
	fs.Int("segment-chars", defaults.TTS.SegmentChars, "Character budget per synthesized segment")
	fs.Int("max-text-chars", defaults.TTS.MaxTextChars, "Maximum input text length in characters")
	fs.Int("max-description-chars", defaults.TTS.MaxDescriptionChars, "Maximum style description length in characters")
	fs.Int("cache-size", defaults.TTS.CacheSize, "Segments kept in the synthesis cache (0 disables)")
	fs.String("tts-cli-path", defaults.TTS.CLIPath, "Path to pocket-tts executable")
	fs.String("tts-cli-config-path", defaults.TTS.CLIConfigPath, "Path to pocket-tts config file")
	fs.String("tts-cli-voice", defaults.TTS.CLIVoice, "pocket-tts voice name or .safetensors path")
	fs.Int("tts-concurrency", defaults.TTS.Concurrency, "Max concurrent pocket-tts subprocesses")
	fs.Bool("tts-quiet", defaults.TTS.Quiet, "Pass --quiet to pocket-tts generate")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.Int("max-body-bytes", defaults.Server.MaxBodyBytes, "Maximum HTTP request body size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Timeout for synchronous /tts requests in seconds")
	fs.String("nats-url", defaults.Progress.NATSURL, "Publish progress events to this NATS server")
	fs.String("nats-subject", defaults.Progress.NATSSubject, "NATS subject for progress events")
	fs.String("player", defaults.Playback.Command, "Playback command that reads WAV on stdin")
	fs.String("output-dir", defaults.Output.Dir, "Directory for downloaded recordings")
	fs.String("download-prefix", defaults.Output.Prefix, "File name prefix for downloaded recordings")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("TTSR")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("gemini.api_key", "TTSR_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind api key env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("ttsr")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// bindFlags binds every registered flag to its nested key. Unchanged flags
// act as defaults, so env and config file values still win over them.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("gemini.api_key", c.Gemini.APIKey)
	v.SetDefault("gemini.base_url", c.Gemini.BaseURL)
	v.SetDefault("gemini.model", c.Gemini.Model)
	v.SetDefault("gemini.timeout", c.Gemini.Timeout)
	v.SetDefault("gemini.rpm", c.Gemini.RequestsPerMinute)
	v.SetDefault("gemini.burst", c.Gemini.Burst)
	v.SetDefault("tts.backend", c.TTS.Backend)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("tts.voices_manifest", c.TTS.VoicesManifest)
	v.SetDefault("tts.segment_chars", c.TTS.SegmentChars)
	v.SetDefault("tts.max_text_chars", c.TTS.MaxTextChars)
	v.SetDefault("tts.max_description_chars", c.TTS.MaxDescriptionChars)
	v.SetDefault("tts.cache_size", c.TTS.CacheSize)
	v.SetDefault("tts.cli_path", c.TTS.CLIPath)
	v.SetDefault("tts.cli_config_path", c.TTS.CLIConfigPath)
	v.SetDefault("tts.cli_voice", c.TTS.CLIVoice)
	v.SetDefault("tts.concurrency", c.TTS.Concurrency)
	v.SetDefault("tts.quiet", c.TTS.Quiet)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", c.Server.MaxBodyBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("progress.nats_url", c.Progress.NATSURL)
	v.SetDefault("progress.nats_subject", c.Progress.NATSSubject)
	v.SetDefault("playback.command", c.Playback.Command)
	v.SetDefault("output.dir", c.Output.Dir)
	v.SetDefault("output.prefix", c.Output.Prefix)
	v.SetDefault("log_level", c.LogLevel)
}
