package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/scoutbase/reefscout/internal/types"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxCommentLength   int           `json:"max_comment_length"`
	MaxScoutNameLength int           `json:"max_scout_name_length"`
	TrustedProxies     []string      `json:"trusted_proxies"`
	RequestTimeout     time.Duration `json:"request_timeout"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxCommentLength:   1000,
		MaxScoutNameLength: 100,
		TrustedProxies:     []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		RequestTimeout:     30 * time.Second,
	}
}

// SecurityMiddleware provides input validation and hardening middleware
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{config: config}
}

// Config returns the active configuration
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// Event keys look like "2026wasno": four-digit year plus a lowercase
// event code, optionally suffixed with a division ("2026cmptx_div1").
var eventKeyPattern = regexp.MustCompile(`^\d{4}[a-z0-9]+(_[a-z0-9]+)?$`)

// ValidateEventKey checks that an event key is well formed before it is
// interpolated into upstream API paths.
func ValidateEventKey(key string) error {
	if key == "" {
		return fmt.Errorf("event key is required")
	}
	if len(key) > 64 {
		return fmt.Errorf("event key exceeds maximum length")
	}
	if !eventKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid event key format")
	}
	return nil
}

// ValidateTeamNumber checks that a team number is in the plausible range
func ValidateTeamNumber(n int) error {
	if n <= 0 || n > 99999 {
		return fmt.Errorf("team number %d out of range", n)
	}
	return nil
}

// ValidateObservation checks a submitted scouting record for values that
// could not come from a real match.
func (sm *SecurityMiddleware) ValidateObservation(rec types.ScoutingRecord) error {
	if !rec.TeamID.Valid {
		return fmt.Errorf("team id is required")
	}
	if err := ValidateTeamNumber(rec.TeamID.Number); err != nil {
		return err
	}

	if rec.MatchNumber < 0 {
		return fmt.Errorf("match number cannot be negative")
	}
	if rec.DefenseRating < 0 || rec.DefenseRating > 5 {
		return fmt.Errorf("defense rating must be between 0 and 5")
	}

	counts := []struct {
		name  string
		value int
	}{
		{"autoCoralL1", rec.AutoCoralL1},
		{"autoCoralL2", rec.AutoCoralL2},
		{"autoCoralL3", rec.AutoCoralL3},
		{"autoCoralL4", rec.AutoCoralL4},
		{"autoAlgaeProcessor", rec.AutoAlgaeProcessor},
		{"autoAlgaeNet", rec.AutoAlgaeNet},
		{"teleopCoralL1", rec.TeleopCoralL1},
		{"teleopCoralL2", rec.TeleopCoralL2},
		{"teleopCoralL3", rec.TeleopCoralL3},
		{"teleopCoralL4", rec.TeleopCoralL4},
		{"teleopAlgaeProcessor", rec.TeleopAlgaeProcessor},
		{"teleopAlgaeNet", rec.TeleopAlgaeNet},
		{"minorFaults", rec.MinorFaults},
		{"majorFaults", rec.MajorFaults},
	}
	for _, count := range counts {
		if count.value < 0 {
			return fmt.Errorf("%s cannot be negative", count.name)
		}
		if count.value > 200 {
			return fmt.Errorf("%s is implausibly large", count.name)
		}
	}

	switch rec.EndgameStatus {
	case "", types.EndgameNone, types.EndgameParked, types.EndgameShallowCage, types.EndgameDeepCage:
	default:
		return fmt.Errorf("unknown endgame status %q", rec.EndgameStatus)
	}

	switch rec.Alliance {
	case "", types.AllianceRed, types.AllianceBlue:
	default:
		return fmt.Errorf("unknown alliance %q", rec.Alliance)
	}

	if err := sm.validateText(rec.Comments, sm.config.MaxCommentLength); err != nil {
		return fmt.Errorf("comments: %w", err)
	}
	if err := sm.validateText(rec.ScoutName, sm.config.MaxScoutNameLength); err != nil {
		return fmt.Errorf("scout name: %w", err)
	}

	return nil
}

func (sm *SecurityMiddleware) validateText(input string, maxLength int) error {
	if len(input) > maxLength {
		return fmt.Errorf("exceeds maximum length of %d characters", maxLength)
	}
	if strings.Contains(input, "\x00") {
		return fmt.Errorf("contains invalid characters")
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("contains invalid UTF-8 encoding")
	}
	return nil
}

// SanitizeText sanitizes free-text fields by removing markup and
// collapsing whitespace.
func SanitizeText(input string) string {
	input = strings.TrimSpace(input)

	scriptPattern := regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	input = scriptPattern.ReplaceAllString(input, "")

	htmlTagPattern := regexp.MustCompile(`<[^>]+>`)
	input = htmlTagPattern.ReplaceAllString(input, "")

	input = regexp.MustCompile(`\s+`).ReplaceAllString(input, " ")

	return input
}

// SecurityHeaders adds security headers to responses
func (sm *SecurityMiddleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

	if c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Next()
}

// ValidateContentType validates request content type
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "application/json") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "unsupported content type",
		})
		c.Abort()
		return
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}
