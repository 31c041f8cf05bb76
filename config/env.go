// Package config resolves settings from, lowest precedence first, built-in
// defaults, config/app.json, .env and the process environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = map[string]string{}
)

// Load reads the config files once. Callers that care about a malformed
// file check the error; the getters below ignore it and use defaults.
func Load() error {
	loadOnce.Do(func() {
		loadErr = load("config/app.json", ".env")
	})
	return loadErr
}

func load(jsonPath, envPath string) error {
	merged := map[string]string{}

	fromJSON, err := readJSON(jsonPath)
	if err != nil {
		return err
	}
	for k, v := range fromJSON {
		setKey(merged, k, v)
	}

	fromEnvFile, err := godotenv.Read(envPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: read %s: %w", envPath, err)
	}
	for k, v := range fromEnvFile {
		setKey(merged, k, v)
	}

	mu.Lock()
	values = merged
	mu.Unlock()
	return nil
}

func setKey(m map[string]string, key, value string) {
	if key = strings.ToUpper(strings.TrimSpace(key)); key != "" {
		m[key] = strings.TrimSpace(value)
	}
}

// readJSON flattens a top-level JSON object of scalars into strings. A
// missing file is not an error.
func readJSON(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	out := make(map[string]string, len(doc))
	for k, v := range doc {
		var s string
		if json.Unmarshal(v, &s) == nil {
			out[k] = s
			continue
		}
		// numbers and booleans keep their literal text
		if lit := string(v); lit == "true" || lit == "false" || isNumber(lit) {
			out[k] = lit
		}
	}
	return out, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// lookup applies the precedence: process env, then files.
func lookup(key string) string {
	_ = Load()
	if v, ok := os.LookupEnv(key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	mu.RLock()
	defer mu.RUnlock()
	return values[key]
}

// Get reads any key, returning fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return fallback
}

// Int reads an integer key, returning fallback when missing or malformed.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(lookup(key))
	if err != nil {
		return fallback
	}
	return n
}

// Duration reads a duration key ("90m"). Bare integers are seconds.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := lookup(key)
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
