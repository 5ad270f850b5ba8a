package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akitas-arrow/child-name/internal/platform/textutil"
)

const (
	defaultEnvFile             = ".env"
	defaultAddress             = ":8080"
	defaultReadTimeout         = 10 * time.Second
	defaultWriteTimeout        = 15 * time.Second
	defaultIdleTimeout         = 60 * time.Second
	defaultEnvironment         = "local"
	defaultStore               = StoreFirestore
	defaultSessionIdleTimeout  = 30 * time.Minute
	defaultSessionLifetime     = 24 * time.Hour
	defaultSubmissionTTL       = 10 * time.Minute
	defaultSecretsFallbackFile = ".secrets.local"
)

// Store backends.
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Store       string
	Firebase    FirebaseConfig
	Firestore   FirestoreConfig
	Auth        AuthConfig
	Session     SessionConfig
	Submission  SubmissionConfig
	Content     ContentConfig
	Secrets     SecretsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	APIKey          string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// AuthConfig controls the login gate.
type AuthConfig struct {
	Required bool
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	HashKey      string
	BlockKey     string
	IdleTimeout  time.Duration
	Lifetime     time.Duration
	CookieSecure bool
}

// SubmissionConfig controls the one-time form token.
type SubmissionConfig struct {
	TokenTTL time.Duration
}

// ContentConfig locates page copy overrides.
type ContentConfig struct {
	Dir string
}

// SecretsConfig configures Secret Manager lookups for secret:// values.
type SecretsConfig struct {
	ProjectID    string
	FallbackFile string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = textutil.NormalizeStringMap(values)
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

func newLookup(options loaderOptions) (func(string) (string, bool), error) {
	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}, nil
}

// LoadSecrets reads only the secret fetcher settings, so the fetcher can be built before Load.
func LoadSecrets(opts ...Option) (SecretsConfig, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}
	lookup, err := newLookup(options)
	if err != nil {
		return SecretsConfig{}, err
	}
	return readSecretsConfig(lookup), nil
}

func readSecretsConfig(lookup func(string) (string, bool)) SecretsConfig {
	cfg := SecretsConfig{
		ProjectID:    stringWithDefault(lookup, "CHILDNAME_SECRETS_PROJECT_ID", ""),
		FallbackFile: stringWithDefault(lookup, "CHILDNAME_SECRETS_FALLBACK_FILE", defaultSecretsFallbackFile),
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = stringWithDefault(lookup, "CHILDNAME_FIREBASE_PROJECT_ID", "")
	}
	return cfg
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional secret manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	lookup, err := newLookup(options)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "CHILDNAME_ENV", defaultEnvironment)),
		Server: ServerConfig{
			Address:      stringWithDefault(lookup, "CHILDNAME_HTTP_ADDRESS", defaultAddress),
			ReadTimeout:  durationWithDefault(lookup, "CHILDNAME_HTTP_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "CHILDNAME_HTTP_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "CHILDNAME_HTTP_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Store: strings.ToLower(stringWithDefault(lookup, "CHILDNAME_STORE", defaultStore)),
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "CHILDNAME_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "CHILDNAME_FIREBASE_CREDENTIALS_FILE", ""),
			APIKey:          stringWithDefault(lookup, "CHILDNAME_FIREBASE_API_KEY", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "CHILDNAME_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "CHILDNAME_FIRESTORE_EMULATOR_HOST", ""),
		},
		Auth: AuthConfig{
			Required: boolWithDefault(lookup, "CHILDNAME_AUTH_REQUIRED", true),
		},
		Session: SessionConfig{
			HashKey:      stringWithDefault(lookup, "CHILDNAME_SESSION_HASH_KEY", ""),
			BlockKey:     stringWithDefault(lookup, "CHILDNAME_SESSION_BLOCK_KEY", ""),
			IdleTimeout:  durationWithDefault(lookup, "CHILDNAME_SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout),
			Lifetime:     durationWithDefault(lookup, "CHILDNAME_SESSION_LIFETIME", defaultSessionLifetime),
			CookieSecure: boolWithDefault(lookup, "CHILDNAME_COOKIE_SECURE", true),
		},
		Submission: SubmissionConfig{
			TokenTTL: durationWithDefault(lookup, "CHILDNAME_SUBMISSION_TTL", defaultSubmissionTTL),
		},
		Content: ContentConfig{
			Dir: stringWithDefault(lookup, "CHILDNAME_CONTENT_DIR", ""),
		},
		Secrets: readSecretsConfig(lookup),
	}

	// Firestore project defaults to Firebase project when unspecified.
	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}

	secretFields := []*string{
		&cfg.Firebase.APIKey,
		&cfg.Session.HashKey,
		&cfg.Session.BlockKey,
	}
	for _, field := range secretFields {
		resolved, err := resolveSecret(ctx, *field, options.secret)
		if err != nil {
			return Config{}, err
		}
		*field = resolved
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return strings.TrimSpace(secret), nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Address) == "" {
		missing = append(missing, "Server.Address")
	}
	switch cfg.Store {
	case StoreFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	case StoreMemory:
	default:
		missing = append(missing, "Store")
	}
	if cfg.Auth.Required {
		if cfg.Firebase.ProjectID == "" {
			missing = append(missing, "Firebase.ProjectID")
		}
		if cfg.Firebase.APIKey == "" {
			missing = append(missing, "Firebase.APIKey")
		}
	}
	if n := len(cfg.Session.HashKey); n < 32 {
		missing = append(missing, "Session.HashKey")
	}
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		missing = append(missing, "Session.BlockKey")
	}
	if cfg.Session.IdleTimeout <= 0 {
		missing = append(missing, "Session.IdleTimeout")
	}
	if cfg.Session.Lifetime <= 0 {
		missing = append(missing, "Session.Lifetime")
	}
	if cfg.Submission.TokenTTL <= 0 {
		missing = append(missing, "Submission.TokenTTL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
	}
	return fallback
}
