// Package config reads server defaults from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// Config holds per-process defaults. Tool arguments override them per call.
type Config struct {
	LogLevel        string
	SmoothWindow    int
	AutoCropPadding int
	BackgroundLuma  float64
	OCRLanguage     string
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Default returns the built-in defaults without reading the environment.
func Default() *Config {
	crop := trace.DefaultAutoCropOptions()
	return &Config{
		SmoothWindow:    signal.DefaultWindow,
		AutoCropPadding: crop.Padding,
		BackgroundLuma:  crop.Threshold,
		OCRLanguage:     "eng",
	}
}

// Load reads the CURVE_MCP_* variables. Values that do not parse fall back
// to their defaults.
func Load() *Config {
	crop := trace.DefaultAutoCropOptions()
	return &Config{
		LogLevel:        getEnv("CURVE_MCP_LOG_LEVEL", ""),
		SmoothWindow:    getEnvInt("CURVE_MCP_SMOOTH_WINDOW", signal.DefaultWindow, 1),
		AutoCropPadding: getEnvInt("CURVE_MCP_AUTOCROP_PADDING", crop.Padding, 0),
		BackgroundLuma:  getEnvFloat("CURVE_MCP_BACKGROUND_LUMA", crop.Threshold, 0, 255),
		OCRLanguage:     getEnv("CURVE_MCP_OCR_LANGUAGE", "eng"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal, minVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v < minVal {
		return defaultVal
	}
	return v
}

func getEnvFloat(key string, defaultVal, minVal, maxVal float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v < minVal || v > maxVal {
		return defaultVal
	}
	return v
}
