package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envSearchDepth is how many parent directories are checked for a .env file
const envSearchDepth = 2

// findEnvFile returns the first .env in dir or up to envSearchDepth of its
// parents
func findEnvFile(dir string) (string, bool) {
	for i := 0; i <= envSearchDepth; i++ {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// loadEnv loads the nearest .env into the process environment. Variables
// already set are kept.
func loadEnv() (string, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, ok := findEnvFile(workDir)
	if !ok {
		return "", nil
	}
	if err := godotenv.Load(path); err != nil {
		return "", err
	}
	return path, nil
}
