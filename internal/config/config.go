package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, if one exists. Variables already set win.
// It returns the file loaded, or "" when none was found.
func LoadEnv() (loaded string, err error) {
	once.Do(func() {
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if _, statErr := os.Stat(envFile); statErr != nil {
				continue
			}
			if err = godotenv.Load(envFile); err == nil {
				loaded = envFile
			}
			return
		}
	})
	return loaded, err
}
