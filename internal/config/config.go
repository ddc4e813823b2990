package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	StorageMemory    = "memory"
	StoragePostgres  = "postgres"
	StorageFirestore = "firestore"

	ImagesNone       = "none"
	ImagesLocal      = "local"
	ImagesCloudinary = "cloudinary"
	ImagesS3         = "s3"
	ImagesGCS        = "gcs"

	AuthDev   = "dev"
	AuthJWT   = "jwt"
	AuthClerk = "clerk"
)

type Config struct {
	Server  Server  `yaml:"server" toml:"server"`
	Log     Log     `yaml:"log" toml:"log"`
	Storage Storage `yaml:"storage" toml:"storage"`
	Images  Images  `yaml:"images" toml:"images"`
	Auth    Auth    `yaml:"auth" toml:"auth"`
}

type Server struct {
	Port               string        `yaml:"port" toml:"port"`
	ReadTimeout        time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type Storage struct {
	Backend            string `yaml:"backend" toml:"backend"` // memory | postgres | firestore
	DSN                string `yaml:"dsn" toml:"dsn"`
	FirestoreProjectID string `yaml:"firestore_project_id" toml:"firestore_project_id"`
}

type Images struct {
	Backend  string `yaml:"backend" toml:"backend"` // none | local | cloudinary | s3 | gcs
	Folder   string `yaml:"folder" toml:"folder"`
	MaxBytes int64  `yaml:"max_bytes" toml:"max_bytes"`

	Cloudinary Cloudinary `yaml:"cloudinary" toml:"cloudinary"`
	S3         S3         `yaml:"s3" toml:"s3"`
	GCS        GCS        `yaml:"gcs" toml:"gcs"`
	Local      Local      `yaml:"local" toml:"local"`
}

type Cloudinary struct {
	CloudName    string `yaml:"cloud_name" toml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset" toml:"upload_preset"`
	BaseURL      string `yaml:"base_url" toml:"base_url"` // opcional (tests / proxy)
}

type S3 struct {
	Region          string `yaml:"region" toml:"region"`
	Bucket          string `yaml:"bucket" toml:"bucket"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint"` // minio / localstack
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url" toml:"public_base_url"`
}

type GCS struct {
	Bucket          string `yaml:"bucket" toml:"bucket"`
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`
	PublicBaseURL   string `yaml:"public_base_url" toml:"public_base_url"`
}

type Local struct {
	Dir           string `yaml:"dir" toml:"dir"`
	PublicBaseURL string `yaml:"public_base_url" toml:"public_base_url"`
}

type Auth struct {
	Mode         string        `yaml:"mode" toml:"mode"` // dev | jwt | clerk
	JWTSecret    string        `yaml:"jwt_secret" toml:"jwt_secret"`
	JWTPublicKey string        `yaml:"jwt_public_key_file" toml:"jwt_public_key_file"`
	JWTIssuer    string        `yaml:"jwt_issuer" toml:"jwt_issuer"`
	ClerkSecret  string        `yaml:"clerk_secret_key" toml:"clerk_secret_key"`
	ClerkBaseURL string        `yaml:"clerk_base_url" toml:"clerk_base_url"`
	DevTokenTTL  time.Duration `yaml:"dev_token_ttl" toml:"dev_token_ttl"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:               "8080",
			ReadTimeout:        5 * time.Second,
			WriteTimeout:       0, // SSE: sin deadline global, se maneja por handler
			CORSAllowedOrigins: []string{"*"},
		},
		Log: Log{Level: "info", Format: "text"},
		Storage: Storage{
			Backend: StorageMemory,
		},
		Images: Images{
			Backend:  ImagesNone,
			Folder:   "pets",
			MaxBytes: 8 << 20,
			Local: Local{
				Dir:           "./uploads",
				PublicBaseURL: "/uploads",
			},
			Cloudinary: Cloudinary{
				BaseURL: "https://api.cloudinary.com",
			},
		},
		Auth: Auth{
			Mode:         AuthDev,
			ClerkBaseURL: "https://api.clerk.com",
			DevTokenTTL:  24 * time.Hour,
		},
	}
}

// Load arma la config en este orden: defaults, archivo (yaml/toml, opcional),
// .env (si existe) y variables de entorno. Devuelve la config ya validada.
func Load(path string) (Config, error) {
	cfg := Default()

	if p := strings.TrimSpace(path); p != "" {
		if err := loadFile(p, &cfg); err != nil {
			return Config{}, err
		}
	}

	// .env es opcional; si no existe, seguimos con el entorno real.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("config: parse yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(raw), cfg); err != nil {
			return fmt.Errorf("config: parse toml: %w", err)
		}
	default:
		return fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		cfg.Server.CORSAllowedOrigins = splitList(v)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.DSN = getEnv("DB_DSN", cfg.Storage.DSN)
	cfg.Storage.FirestoreProjectID = getEnv("FIRESTORE_PROJECT_ID", cfg.Storage.FirestoreProjectID)
	// Compat: DB_DSN sin backend explícito => postgres.
	if os.Getenv("STORAGE_BACKEND") == "" && os.Getenv("DB_DSN") != "" {
		cfg.Storage.Backend = StoragePostgres
	}

	cfg.Images.Backend = getEnv("IMAGES_BACKEND", cfg.Images.Backend)
	cfg.Images.Folder = getEnv("IMAGES_FOLDER", cfg.Images.Folder)
	cfg.Images.MaxBytes = getEnvAsInt64("IMAGES_MAX_BYTES", cfg.Images.MaxBytes)
	cfg.Images.Cloudinary.CloudName = getEnv("CLOUDINARY_CLOUD_NAME", cfg.Images.Cloudinary.CloudName)
	cfg.Images.Cloudinary.UploadPreset = getEnv("CLOUDINARY_UPLOAD_PRESET", cfg.Images.Cloudinary.UploadPreset)
	cfg.Images.Cloudinary.BaseURL = getEnv("CLOUDINARY_BASE_URL", cfg.Images.Cloudinary.BaseURL)
	cfg.Images.S3.Region = getEnv("S3_REGION", cfg.Images.S3.Region)
	cfg.Images.S3.Bucket = getEnv("S3_BUCKET", cfg.Images.S3.Bucket)
	cfg.Images.S3.Endpoint = getEnv("S3_ENDPOINT", cfg.Images.S3.Endpoint)
	cfg.Images.S3.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", cfg.Images.S3.AccessKeyID)
	cfg.Images.S3.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", cfg.Images.S3.SecretAccessKey)
	cfg.Images.S3.PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", cfg.Images.S3.PublicBaseURL)
	cfg.Images.GCS.Bucket = getEnv("GCS_BUCKET_NAME", cfg.Images.GCS.Bucket)
	cfg.Images.GCS.CredentialsFile = getEnv("GCS_CREDENTIALS_FILE", cfg.Images.GCS.CredentialsFile)
	cfg.Images.GCS.PublicBaseURL = getEnv("GCS_PUBLIC_BASE_URL", cfg.Images.GCS.PublicBaseURL)
	cfg.Images.Local.Dir = getEnv("LOCAL_STORAGE_PATH", cfg.Images.Local.Dir)
	cfg.Images.Local.PublicBaseURL = getEnv("LOCAL_PUBLIC_BASE_URL", cfg.Images.Local.PublicBaseURL)

	cfg.Auth.Mode = getEnv("AUTH_MODE", cfg.Auth.Mode)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTPublicKey = getEnv("JWT_PUBLIC_KEY_FILE", cfg.Auth.JWTPublicKey)
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", cfg.Auth.JWTIssuer)
	cfg.Auth.ClerkSecret = getEnv("CLERK_SECRET_KEY", cfg.Auth.ClerkSecret)
	cfg.Auth.ClerkBaseURL = getEnv("CLERK_BASE_URL", cfg.Auth.ClerkBaseURL)
}

// Validate rechaza combinaciones que fallarían recién al primer request.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is required"))
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	case StorageFirestore:
		if strings.TrimSpace(c.Storage.FirestoreProjectID) == "" {
			errs = append(errs, errors.New("storage.firestore_project_id is required for firestore"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	switch c.Images.Backend {
	case ImagesNone:
	case ImagesLocal:
		if strings.TrimSpace(c.Images.Local.Dir) == "" {
			errs = append(errs, errors.New("images.local.dir is required"))
		}
	case ImagesCloudinary:
		if c.Images.Cloudinary.CloudName == "" || c.Images.Cloudinary.UploadPreset == "" {
			errs = append(errs, errors.New("images.cloudinary.cloud_name and upload_preset are required"))
		}
	case ImagesS3:
		if c.Images.S3.Bucket == "" || c.Images.S3.Region == "" {
			errs = append(errs, errors.New("images.s3.bucket and region are required"))
		}
	case ImagesGCS:
		if c.Images.GCS.Bucket == "" {
			errs = append(errs, errors.New("images.gcs.bucket is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown images.backend %q", c.Images.Backend))
	}
	if c.Images.MaxBytes <= 0 {
		errs = append(errs, errors.New("images.max_bytes must be positive"))
	}

	switch c.Auth.Mode {
	case AuthDev:
	case AuthJWT:
		if c.Auth.JWTSecret == "" && c.Auth.JWTPublicKey == "" {
			errs = append(errs, errors.New("auth.jwt_secret or auth.jwt_public_key_file is required for jwt"))
		}
	case AuthClerk:
		if c.Auth.ClerkSecret == "" {
			errs = append(errs, errors.New("auth.clerk_secret_key is required for clerk"))
		}
		if c.Auth.JWTSecret == "" && c.Auth.JWTPublicKey == "" {
			errs = append(errs, errors.New("auth.jwt_public_key_file is required for clerk"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.mode %q", c.Auth.Mode))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
