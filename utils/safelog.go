// utils/safelog.go
// ============================================================================
// SAFE LOGGING - Masque les clés et données sensibles dans les logs
// ============================================================================
// Les URLs des APIs externes portent les clés dans la query string (Google,
// SerpAPI) et les clients IA envoient des bearer tokens. Ces fonctions les
// masquent avant affichage.
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction active le masquage des données personnelles
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	// LogLevel permet de filtrer les logs (DEBUG, INFO, WARN, ERROR)
	LogLevel = ParseLogLevel(os.Getenv("LOG_LEVEL"))
)

// Niveaux de log
const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func ParseLogLevel(level string) int {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ============================================================================
// PATTERNS DE MASQUAGE
// ============================================================================

var (
	apiKeyParamRegex = regexp.MustCompile(`(?i)((?:api_key|apikey|key|token)=)[^&\s"]+`)
	bearerRegex      = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._\-]+`)
	anthropicKey     = regexp.MustCompile(`sk-[A-Za-z0-9_\-]{10,}`)
	emailRegex       = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// MaskSecrets masque toujours les clés, quel que soit l'environnement
func MaskSecrets(input string) string {
	result := apiKeyParamRegex.ReplaceAllString(input, "${1}***")
	result = bearerRegex.ReplaceAllString(result, "${1}***")
	result = anthropicKey.ReplaceAllString(result, "sk-***")
	return result
}

// MaskString masque en plus les données personnelles en production
func MaskString(input string) string {
	result := MaskSecrets(input)
	if !IsProduction {
		return result
	}
	return emailRegex.ReplaceAllString(result, "***@***.***")
}

// ============================================================================
// FONCTIONS DE LOGGING SÉCURISÉES
// ============================================================================

// SafeDebug log un message de debug (seulement si LOG_LEVEL=DEBUG)

func SafeDebug(format string, args ...interface{}) {
	if LogLevel > LogLevelDebug {
		return
	}
	log.Printf("[DEBUG] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeInfo(format string, args ...interface{}) {
	if LogLevel > LogLevelInfo {
		return
	}
	log.Printf("[INFO] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeWarn(format string, args ...interface{}) {
	if LogLevel > LogLevelWarn {
		return
	}
	log.Printf("[WARN] %s", MaskString(fmt.Sprintf(format, args...)))
}

func SafeError(format string, args ...interface{}) {
	log.Printf("[ERROR] %s", MaskString(fmt.Sprintf(format, args...)))
}

// LogAPIRequest log une requête API (clés masquées dans le path)
func LogAPIRequest(method string, path string, statusCode int, duration string) {
	log.Printf("[API] %s %s - Status: %d Duration: %s", method, MaskSecrets(path), statusCode, duration)
}

func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup log les informations de démarrage de l'application
func LogStartup(appName string, version string, port string) {
	log.Printf("🚀 %s v%s starting...", appName, version)
	log.Printf("   Mode: %s", GetEnvMode())
	log.Printf("   Port: %s", port)
	log.Printf("   Log Level: %d", LogLevel)
	if IsProduction {
		log.Printf("   ⚠️  Mode production: les données sensibles seront masquées")
	}
}
