package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type DatabaseOptions struct {
	// mysql, postgres atau sqlite
	Driver string `env:"DB_DRIVER" envDefault:"mysql"`
	// Format mysql: user:password@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local
	DSN string `env:"DB_DSN" envDefault:"root:@tcp(127.0.0.1:3306)/perangkat_desa?charset=utf8mb4&parseTime=True&loc=Local"`
}

type CloudinaryOptions struct {
	CloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
	UploadPreset string `env:"CLOUDINARY_UPLOAD_PRESET"`
}

// Enabled bernilai true kalau kedua token Cloudinary tersedia.
func (c CloudinaryOptions) Enabled() bool {
	return c.CloudName != "" && c.UploadPreset != ""
}

type SMTPOptions struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@punggelan.go.id"`
}

func (s SMTPOptions) Enabled() bool {
	return s.Host != ""
}

type Config struct {
	Database   DatabaseOptions
	Cloudinary CloudinaryOptions
	SMTP       SMTPOptions

	Port          string        `env:"PORT" envDefault:"3000"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"rahasia_negara"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	KecamatanName string        `env:"KECAMATAN_NAME" envDefault:"Punggelan"`
	UploadDir     string        `env:"UPLOAD_DIR" envDefault:"./uploads"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
	MaxUploadSize int           `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	CORSOrigins   string        `env:"CORS_ORIGINS" envDefault:"*"`
}

// Load membaca .env (kalau ada) lalu environment variable ke Config.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Warn("File .env tidak ditemukan, menggunakan environment variables sistem.")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (expected mysql|postgres|sqlite)", c.Database.Driver)
	}
	c.Database.Driver = driver

	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET wajib diisi")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL=%q: %w", c.LogLevel, err)
	}
	return nil
}

// NewLogger menyiapkan logger aplikasi sesuai LOG_LEVEL.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}
