package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig
	PDF    PDFConfig
	Keys   APIKeys
	Engine EngineConfig
	Watch  WatchConfig
	Upload UploadConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogDir      string
	LogFile     string
}

type PDFConfig struct {
	Reader     string // "unipdf" or "ledongthuc"
	LicenseKey string
}

// APIKeys are the default credentials read once at startup. Keys typed in by
// a user always take precedence.
type APIKeys struct {
	OpenAI string
	Gemini string
}

type EngineConfig struct {
	MaxIterations int
	ChunkSize     int
	ChunkOverlap  int
}

type WatchConfig struct {
	Dir     string
	Backend string
	Model   string
	BaseURL string
}

type UploadConfig struct {
	MaxBytes int64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("go_env", "development")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_file", "pdfchat.log")
	v.SetDefault("pdf_reader", "unipdf")
	v.SetDefault("unidoc_license_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("engine.max_iterations", 30)
	v.SetDefault("engine.chunk_size", 100000)
	v.SetDefault("engine.chunk_overlap", 1000)
	v.SetDefault("watch.dir", "")
	v.SetDefault("watch.backend", "gemini")
	v.SetDefault("watch.model", "")
	v.SetDefault("watch.base_url", "")
	v.SetDefault("upload.max_bytes", 64<<20)
}

// Load reads .env, then an optional YAML file named by --config, then the
// environment. Nested keys map to env vars with "_" (ENGINE_CHUNK_SIZE).
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	flags := pflag.NewFlagSet("pdfchat", pflag.ContinueOnError)
	file := flags.String("config", "", "specify config file")
	port := flags.String("port", "", "HTTP listen port")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *file != "" {
		v.SetConfigFile(*file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}
	if *port != "" {
		v.Set("port", *port)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Port:        v.GetString("port"),
			Environment: v.GetString("go_env"),
			LogDir:      v.GetString("log_dir"),
			LogFile:     v.GetString("log_file"),
		},
		PDF: PDFConfig{
			Reader:     v.GetString("pdf_reader"),
			LicenseKey: v.GetString("unidoc_license_key"),
		},
		Keys: APIKeys{
			OpenAI: v.GetString("openai_api_key"),
			Gemini: v.GetString("gemini_api_key"),
		},
		Engine: EngineConfig{
			MaxIterations: v.GetInt("engine.max_iterations"),
			ChunkSize:     v.GetInt("engine.chunk_size"),
			ChunkOverlap:  v.GetInt("engine.chunk_overlap"),
		},
		Watch: WatchConfig{
			Dir:     v.GetString("watch.dir"),
			Backend: v.GetString("watch.backend"),
			Model:   v.GetString("watch.model"),
			BaseURL: v.GetString("watch.base_url"),
		},
		Upload: UploadConfig{
			MaxBytes: v.GetInt64("upload.max_bytes"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
