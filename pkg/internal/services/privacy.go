package services

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// UnknownValue is the sentinel every categorical dimension falls back to, so
// grouping keys are never empty and never differ only by whitespace.
const UnknownValue = "unknown"

const defaultHashSalt = "pulso-privacy-default-salt"

// Normalize trims value and substitutes the unknown sentinel for blank input.
func Normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return UnknownValue
	}
	return trimmed
}

// AnonymizeIP reduces an address to its network prefix when anonymization is
// enabled: the last IPv4 octet or the last IPv6 block is zeroed. Anything
// that looks like neither becomes "unknown".
func AnonymizeIP(ip string) string {
	if !viper.GetBool("privacy.ip_anonymize") {
		return Normalize(ip)
	}

	normalized := Normalize(ip)
	if normalized == UnknownValue {
		return normalized
	}
	return truncateIP(normalized)
}

func truncateIP(ip string) string {
	if strings.Contains(ip, ".") {
		parts := strings.Split(ip, ".")
		if len(parts) == 4 {
			parts[3] = "0"
			return strings.Join(parts, ".")
		}
	}
	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		parts[len(parts)-1] = "0000"
		return strings.Join(parts, ":")
	}
	return UnknownValue
}

// HashIP irreversibly anonymizes an address with a salted digest. The result
// is a short fixed-length token; it is a grouping key, not a credential.
func HashIP(ip string) string {
	normalized := Normalize(ip)
	if normalized == UnknownValue {
		return normalized
	}

	salt := viper.GetString("privacy.ip_hash_salt")
	if len(salt) == 0 {
		salt = defaultHashSalt
	}

	digest := sha256.Sum256([]byte(salt + normalized))
	encoded := base64.StdEncoding.EncodeToString(digest[:])
	if len(encoded) > 16 {
		encoded = encoded[:16]
	}
	return "hashed:" + encoded
}

// NormalizeUserAgent bounds the stored user-agent so pathological clients
// cannot inflate rows. Limits too small for an ellipsis cut hard instead.
func NormalizeUserAgent(value string, maxLength int) string {
	normalized := Normalize(value)
	if len(normalized) <= maxLength {
		return normalized
	}
	if maxLength <= 3 {
		return truncateOnRune(normalized, maxLength)
	}
	return truncateOnRune(normalized, maxLength-3) + "..."
}

// truncateOnRune cuts s to at most limit bytes without splitting a multi-byte
// sequence.
func truncateOnRune(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

type detectRule struct {
	needle string
	label  string
}

var osRules = []detectRule{
	{"windows", "Windows"},
	{"mac os", "macOS"},
	{"macintosh", "macOS"},
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"ios", "iOS"},
	{"linux", "Linux"},
}

var browserRules = []detectRule{
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"firefox", "Firefox"},
	{"edge", "Edge"},
	{"opera", "Opera"},
	{"opr", "Opera"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

// DetectDevice classifies a user-agent as desktop, mobile or tablet.
func DetectDevice(userAgent string) string {
	if len(userAgent) == 0 {
		return UnknownValue
	}
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "mobile") {
		if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
			return "tablet"
		}
		return "mobile"
	}
	return "desktop"
}

// DetectOS picks the first matching operating system keyword; rules are
// evaluated top to bottom and the first hit wins.
func DetectOS(userAgent string) string {
	if len(userAgent) == 0 {
		return UnknownValue
	}
	ua := strings.ToLower(userAgent)
	for _, rule := range osRules {
		if strings.Contains(ua, rule.needle) {
			return rule.label
		}
	}
	return UnknownValue
}

// DetectBrowser picks the first matching browser keyword. Chrome ships a
// "safari" token in its user-agent, so the Safari rule only fires when the
// Chrome one did not.
func DetectBrowser(userAgent string) string {
	if len(userAgent) == 0 {
		return UnknownValue
	}
	ua := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		if rule.label == "Safari" && strings.Contains(ua, "chrome") {
			continue
		}
		if strings.Contains(ua, rule.needle) {
			return rule.label
		}
	}
	return UnknownValue
}
