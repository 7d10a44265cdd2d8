// Application configuration: defaults, config file, .env and TICKETQR_* environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TICKETQR"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Records   RecordsConfig   `mapstructure:"records"`
	Render    RenderConfig    `mapstructure:"render"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

type GeneratorConfig struct {
	Series      []string `mapstructure:"series" validate:"required,min=1,unique,dive,len=1,uppercase"`
	PerSeries   int      `mapstructure:"per_series" validate:"gt=0"`
	MaxAttempts int      `mapstructure:"max_attempts" validate:"gt=0"`
}

type RecordsConfig struct {
	BaseDir  string `mapstructure:"base_dir" validate:"required"`
	JSONFile string `mapstructure:"json_file" validate:"required"`
	CSVFile  string `mapstructure:"csv_file" validate:"required"`
}

type RenderConfig struct {
	Mode          string       `mapstructure:"mode" validate:"omitempty,oneof=ticket qr both"`
	TicketDir     string       `mapstructure:"ticket_dir" validate:"required"`
	SymbolDir     string       `mapstructure:"symbol_dir" validate:"required"`
	Symbology     string       `mapstructure:"symbology" validate:"oneof=qr datamatrix aztec"`
	ModuleSize    int          `mapstructure:"module_size" validate:"gt=0"`
	Workers       int          `mapstructure:"workers" validate:"gt=0"`
	ProgressEvery int          `mapstructure:"progress_every" validate:"gte=0"`
	Ticket        TicketConfig `mapstructure:"ticket"`
}

type TicketConfig struct {
	Width        int        `mapstructure:"width" validate:"gt=0"`
	Height       int        `mapstructure:"height" validate:"gt=0"`
	SymbolSize   int        `mapstructure:"symbol_size" validate:"gt=0"`
	SymbolX      int        `mapstructure:"symbol_x" validate:"gte=0"`
	SymbolY      int        `mapstructure:"symbol_y" validate:"gte=0"`
	Title        string     `mapstructure:"title"`
	Instructions []string   `mapstructure:"instructions"`
	TitleFont    FontConfig `mapstructure:"title_font"`
	CodeFont     FontConfig `mapstructure:"code_font"`
	InfoFont     FontConfig `mapstructure:"info_font"`
}

type FontConfig struct {
	Path string  `mapstructure:"path"`
	Size float64 `mapstructure:"size" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path      string `mapstructure:"path" validate:"required"`
	BatchSize int    `mapstructure:"batch_size" validate:"gt=0"`
}

// NewViper returns an instance with every default set and TICKETQR_* env
// overrides enabled, e.g. TICKETQR_GENERATOR_PER_SERIES=50.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads path when given, otherwise ./config/config.yaml if it
// exists. Without a file the defaults apply. A .env file in the working
// directory is loaded first; variables already set in the environment win.
func LoadConfig(v *viper.Viper, path string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	v.SetDefault("generator.series", []string{"A", "B", "C", "D", "E", "F", "G", "H"})
	v.SetDefault("generator.per_series", 100)
	v.SetDefault("generator.max_attempts", 1000)

	v.SetDefault("records.base_dir", ".")
	v.SetDefault("records.json_file", "tickets_database.json")
	v.SetDefault("records.csv_file", "tickets_database.csv")

	v.SetDefault("render.mode", "")
	v.SetDefault("render.ticket_dir", "tickets_qr")
	v.SetDefault("render.symbol_dir", "qr_codes_only")
	v.SetDefault("render.symbology", "qr")
	v.SetDefault("render.module_size", 10)
	v.SetDefault("render.workers", 1)
	v.SetDefault("render.progress_every", 100)

	v.SetDefault("render.ticket.width", 800)
	v.SetDefault("render.ticket.height", 400)
	v.SetDefault("render.ticket.symbol_size", 300)
	v.SetDefault("render.ticket.symbol_x", 450)
	v.SetDefault("render.ticket.symbol_y", 50)
	v.SetDefault("render.ticket.title", "CONCERT TICKET")
	v.SetDefault("render.ticket.instructions", []string{
		"Show this QR code at the entrance",
		"Keep this ticket until the end",
	})
	v.SetDefault("render.ticket.title_font.path", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf")
	v.SetDefault("render.ticket.title_font.size", 40)
	v.SetDefault("render.ticket.code_font.path", "/usr/share/fonts/truetype/dejavu/DejaVuSansMono-Bold.ttf")
	v.SetDefault("render.ticket.code_font.size", 32)
	v.SetDefault("render.ticket.info_font.path", "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf")
	v.SetDefault("render.ticket.info_font.size", 20)

	v.SetDefault("database.path", "concert_tickets.db")
	v.SetDefault("database.batch_size", 100)
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
