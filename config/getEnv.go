package config

import "os"

// GetEnv reads an environment variable; missing vars come back empty and the
// caller decides whether to default or fail.
func GetEnv(key string) string {
	return os.Getenv(key)
}
