// Package config loads application configuration once at startup.
//
// Values are resolved in three layers, later layers winning:
//
//  1. built-in defaults
//  2. config/app.json (optional)
//  3. .env in the working directory (optional)
//
// After Load() the value set is read-only; secrets (JWT_SECRET, APP_KEY)
// are handed to the token service explicitly rather than read ad hoc
// throughout the codebase.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	defaultMongoURI  = "mongodb://localhost:27017"
	defaultMongoDB   = "bcard"
	defaultJWTSecret = "change-me-in-production"
	defaultAppPort   = "5000"
	defaultAppEnv    = "local"
	defaultCORS      = "http://localhost:3000"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":           defaultAppPort,
		"APP_ENV":            defaultAppEnv,
		"APP_KEY":            "",
		"JWT_SECRET":         defaultJWTSecret,
		"MONGO_URI":          defaultMongoURI,
		"MONGO_DB":           defaultMongoDB,
		"CORS_ORIGIN":        defaultCORS,
		"LOG_MONGO":          "false",
		"LOG_MONGO_COLL":     "logs",
		"MAX_BODY_BYTES":     "",
		"STORAGE_DISK":       "local",
		"STORAGE_LOCAL_ROOT": "storage",
		"STORAGE_URL":        "http://localhost:5000/storage",
		"S3_BUCKET":          "",
		"S3_REGION":          "us-east-1",
		"S3_KEY":             "",
		"S3_SECRET":          "",
		"S3_ENDPOINT":        "",
		"S3_URL":             "",
	}
}

// Load reads config/app.json and .env once. Safe to call repeatedly.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// Production reports whether the app runs in production mode.
// Controls JSON logging and the Secure attribute on the session cookie.
func Production() bool {
	env := AppEnv()
	return env == "production" || env == "prod"
}

func JWTSecret() string { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }

// AppKey is the key used to seal the session cookie. Falls back to
// JWT_SECRET so a single-secret deployment still works.
func AppKey() string {
	_ = Load()
	if k := get("APP_KEY", ""); k != "" {
		return k
	}
	return JWTSecret()
}

func MongoURI() string   { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string    { _ = Load(); return get("MONGO_DB", defaultMongoDB) }
func CORSOrigin() string { _ = Load(); return get("CORS_ORIGIN", defaultCORS) }

// LogToMongo reports whether request/application logs should also be
// persisted to the logs collection.
func LogToMongo() bool {
	_ = Load()
	return strings.EqualFold(get("LOG_MONGO", "false"), "true")
}

func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLL", "logs") }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDisk() string      { _ = Load(); return get("STORAGE_DISK", "local") }
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", "storage") }
func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:5000/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// ── Internals ────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}
