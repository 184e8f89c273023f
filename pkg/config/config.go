package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const defaultEnvFile = ".env"

var exportMu sync.Mutex

func MustNew[T any](prefix string, envFile string) *T {
	conf, err := New[T](prefix, envFile)
	if err != nil {
		panic(err)
	}
	return conf
}

// New exports envFile (or ./.env when envFile is empty and the file exists)
// into the process environment and then decodes T with envconfig under prefix.
// Variables already present in the environment win over file values.
func New[T any](prefix string, envFile string) (*T, error) {
	path := strings.TrimSpace(envFile)
	if path != "" {
		if err := exportEnvironment(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	} else if err := exportEnvironmentIfExists(defaultEnvFile); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process %s config: %w", prefixLabel(prefix), err)
	}

	return &conf, nil
}

func prefixLabel(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		return "app"
	}
	return strings.ToLower(prefix)
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	exportMu.Lock()
	defer exportMu.Unlock()

	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
