package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"browser-bridge/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads configuration from the process environment after
// overlaying .env and .env.<APP_ENV> from dir.
type EnvService struct {
	appEnv string
	loaded []string
	notes  []string
}

func NewEnvService() *EnvService {
	return NewEnvServiceIn(".")
}

func NewEnvServiceIn(dir string) *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	svc := &EnvService{appEnv: appEnv}

	base := dir + string(os.PathSeparator) + ".env"
	if err := godotenv.Load(base); err != nil {
		svc.notes = append(svc.notes, "no .env file with secrets found (this is OK for CI/CD)")
	} else {
		svc.loaded = append(svc.loaded, base)
	}

	envFile := fmt.Sprintf("%s.%s", base, appEnv)
	if err := godotenv.Overload(envFile); err != nil {
		svc.notes = append(svc.notes, fmt.Sprintf("could not load %s: %v", envFile, err))
	} else {
		svc.loaded = append(svc.loaded, envFile)
	}

	return svc
}

// Report logs what was loaded. The logger is configured from this service,
// so it cannot be handed in at construction.
func (e *EnvService) Report(logger output.LoggerPort) {
	for _, n := range e.notes {
		logger.Debug("Environment note", "note", n)
	}
	logger.Info("Environment loaded", "APP_ENV", e.appEnv, "files", e.loaded)
}

func (e *EnvService) AppEnv() string {
	return e.appEnv
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

// MustGet panics when key is unset or empty.
func (e *EnvService) MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("ENV %s is missing", key))
	}
	return val
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	return val
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration accepts Go duration strings ("3s", "250ms"); a bare integer
// is read as milliseconds.
func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
