package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	StoreBackend string
	DatabaseURL  string
	DatabaseType string
	BaasURL      string
	BaasAPIKey   string

	AdminEmail    string
	AdminPassword string
	SessionSecret string

	FingerprintFallback bool
}

// ParseFlags validates flags and resolves environment fallbacks
func ParseFlags(args []string) (Config, error) {
	// .env is optional; godotenv.Load never overrides real env variables
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("ballot-box", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StoreBackend, "s", "", "Store backend (memory, sqlite, postgres, or rest)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaasURL, "baas-url", "", "BaaS REST endpoint for the rest backend")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.BaasAPIKey, "baas-key", "", "BaaS API key (prefer env)")
	fs.StringVar(&cfg.AdminEmail, "admin-email", "", "Admin account email")
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Admin account password (prefer env)")
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")

	// Fingerprinting mode is a deployment-wide choice; flipping it changes
	// every returning voter's identity
	fs.BoolVar(&cfg.FingerprintFallback, "fp-fallback", false, "Use the non-cryptographic fingerprint hash")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3001 // default
		}
	}

	if cfg.StoreBackend == "" {
		cfg.StoreBackend = os.Getenv("STORE_BACKEND")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.BaasURL == "" {
		cfg.BaasURL = os.Getenv("BAAS_URL")
	}
	if cfg.BaasAPIKey == "" {
		cfg.BaasAPIKey = os.Getenv("BAAS_API_KEY")
	}

	// Unset backend is derived: a BaaS endpoint means rest, a database URL
	// means the configured database type, nothing means memory
	if cfg.StoreBackend == "" {
		switch {
		case cfg.BaasURL != "":
			cfg.StoreBackend = "rest"
		case cfg.DatabaseURL != "":
			cfg.StoreBackend = cfg.DatabaseType
		default:
			cfg.StoreBackend = "memory"
		}
	}

	switch cfg.StoreBackend {
	case "memory":
	case "sqlite", "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case "rest":
		if cfg.BaasURL == "" {
			return Config{}, errors.New("BAAS_URL required for the rest backend")
		}
		if cfg.BaasAPIKey == "" {
			return Config{}, errors.New("BAAS_API_KEY required for the rest backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown store backend %q (use memory, sqlite, postgres, or rest)", cfg.StoreBackend)
	}

	// Admin credentials and session secret - MUST be provided
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	}
	if cfg.AdminEmail == "" {
		return Config{}, errors.New("ADMIN_EMAIL required")
	}

	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	if cfg.AdminPassword == "" {
		return Config{}, errors.New("ADMIN_PASSWORD required")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	if !cfg.FingerprintFallback {
		if v := os.Getenv("FINGERPRINT_FALLBACK"); v != "" {
			fallback, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid FINGERPRINT_FALLBACK env variable")
			}
			cfg.FingerprintFallback = fallback
		}
	}

	return cfg, nil
}
