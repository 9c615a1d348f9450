// Package config loads the autotrack daemon configuration.
package config

import (
	"os"
	"strconv"
)

// Environment variables read by the daemon.
const (
	EnvDispatchURL = "AUTOTRACK_DISPATCH_URL"
	EnvListen      = "AUTOTRACK_LISTEN"
	EnvDetectorWS  = "AUTOTRACK_DETECTOR_WS"
	EnvLogLevel    = "AUTOTRACK_LOG_LEVEL"

	EnvDispatchTimeoutMS = "AUTOTRACK_DISPATCH_TIMEOUT_MS"
)

// Env returns the value of key, or def when it is unset or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns key parsed as an int, or def when unset or malformed.
func EnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// DispatchURL returns the PTZ backend URL from AUTOTRACK_DISPATCH_URL.
// Falls back to the provided default if not set.
func DispatchURL(def string) string {
	return Env(EnvDispatchURL, def)
}

// ListenAddr returns the API listen address from AUTOTRACK_LISTEN.
func ListenAddr(def string) string {
	return Env(EnvListen, def)
}

// DetectorWS returns the detector stream URL from AUTOTRACK_DETECTOR_WS.
func DetectorWS(def string) string {
	return Env(EnvDetectorWS, def)
}
