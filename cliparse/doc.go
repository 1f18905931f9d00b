// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first (joho/godotenv);
values already present in the real environment always win.

# Config Fields

  - Port: Server listen port (default: 3001)
  - StoreBackend: memory, sqlite, postgres, or rest
  - DatabaseURL: Database connection string (sqlite/postgres backends)
  - DatabaseType: SQL driver when the backend is derived (default sqlite)
  - BaasURL / BaasAPIKey: BaaS REST endpoint and key (rest backend)
  - AdminEmail / AdminPassword: dashboard sign-in credentials (required)
  - SessionSecret: session token signing secret (required)
  - FingerprintFallback: use the non-cryptographic voter hash

# CLI Flags

	-p               Server port
	-s               Store backend
	-d               Database URL
	-t               Database type
	-baas-url        BaaS REST endpoint
	-baas-key        BaaS API key
	-admin-email     Admin account email
	-admin-password  Admin account password
	-session-secret  Session signing secret
	-fp-fallback     Non-cryptographic fingerprint hash

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	STORE_BACKEND        → -s
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	BAAS_URL             → -baas-url
	BAAS_API_KEY         → -baas-key
	ADMIN_EMAIL          → -admin-email
	ADMIN_PASSWORD       → -admin-password
	SESSION_SECRET       → -session-secret
	FINGERPRINT_FALLBACK → -fp-fallback

CLI flags take precedence over environment variables.

# Backend Derivation

When no backend is named, one is derived: a BaaS endpoint means rest, a
database URL means the configured database type, nothing means memory.

# Validation

ParseFlags returns an error if required values are missing:

  - sqlite/postgres backends require DATABASE_URL
  - the rest backend requires BAAS_URL and BAAS_API_KEY
  - ADMIN_EMAIL, ADMIN_PASSWORD, and SESSION_SECRET must be provided

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	st, err := sqlstore.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(st, sessions, cfg)
*/
package cliparse
