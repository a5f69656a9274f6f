package db

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	kvPasswordRe  = regexp.MustCompile(`(?i)(password=)(\S+)`)
	urlPasswordRe = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
)

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a key=value list.
// Key=value lists are whitespace-collapsed and get sslmode=disable when missing.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// ToURLDSN converts a key=value DSN to URL form, as golang-migrate requires.
// Anything it cannot convert is returned unchanged.
func ToURLDSN(dsn string) string {
	lower := strings.ToLower(dsn)
	if dsn == "" || strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return dsn
	}
	m := map[string]string{}
	for _, part := range strings.Fields(dsn) {
		if k, v, ok := strings.Cut(part, "="); ok {
			m[strings.ToLower(k)] = v
		}
	}
	if m["host"] == "" || m["user"] == "" || m["dbname"] == "" {
		return dsn
	}
	u := &url.URL{Scheme: "postgres", Host: m["host"], Path: "/" + m["dbname"]}
	if m["port"] != "" {
		u.Host += ":" + m["port"]
	}
	if m["password"] != "" {
		u.User = url.UserPassword(m["user"], m["password"])
	} else {
		u.User = url.User(m["user"])
	}
	if s, ok := m["sslmode"]; ok {
		u.RawQuery = url.Values{"sslmode": {s}}.Encode()
	}
	return u.String()
}

// MaskDSN hides the password for log output.
func MaskDSN(dsn string) string {
	masked := kvPasswordRe.ReplaceAllString(dsn, `${1}***`)
	return urlPasswordRe.ReplaceAllString(masked, `${1}***${3}`)
}
