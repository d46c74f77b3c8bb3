package services

import "strings"

// Throttle key kinds. IP identifiers are pre-namespaced with "ip:" by callers
// so the IP and email keyspaces can never collide.
const (
	KeyKindLogin  = "login"
	KeyKindSignup = "signup"
)

// AuthKey builds a namespaced throttle key. The identifier is lower-cased and
// trimmed so "Login:  User@Test.com " and "login:user@test.com" land on the
// same counter; without this, casing or whitespace would evade the limiter.
func AuthKey(kind, identifier string) string {
	return kind + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

// IPAuthKey builds a key for an IP-based counter, e.g. "login:ip:1.2.3.4".
func IPAuthKey(kind, ip string) string {
	return AuthKey(kind, "ip:"+ip)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func failedLoginKey(email string) string {
	return "failed_login:" + normalizeEmail(email)
}

func lockKey(email string) string {
	return "lock:" + normalizeEmail(email)
}
