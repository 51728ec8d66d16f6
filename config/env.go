package config

import (
	"os"
	"time"
)

const defaultAdminPassphrase = "123456"

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetJWTKey() []byte {
	return []byte(getEnv("JWT_KEY", "kidcheck-dev-key"))
}

// GetAdminPassphrase is the shared secret of the admin gate. It is a UX gate, not a security boundary.
func GetAdminPassphrase() string {
	return getEnv("ADMIN_PASSPHRASE", defaultAdminPassphrase)
}

func GetUseCaseTimeout() time.Duration {
	return getDuration("USECASE_TIMEOUT", 10*time.Second)
}

func GetRemoteAPIURL() string {
	return getEnv("REMOTE_API_URL", "http://localhost:8000/api")
}

func GetRemoteTimeout() time.Duration {
	return getDuration("REMOTE_TIMEOUT", 5*time.Second)
}

func GetLocalStorePath() string {
	return getEnv("LOCAL_STORE_PATH", "kidcheck.db")
}

func GetPollInterval() time.Duration {
	return getDuration("POLL_INTERVAL", 2*time.Second)
}

func GetRefreshDelay() time.Duration {
	return getDuration("REFRESH_DELAY", 100*time.Millisecond)
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		GetLogrusInstance().Warnf("invalid %s value %q, using %s", key, v, def)
		return def
	}
	return d
}
