package workflow

import (
	"fmt"
	"regexp"
	"strings"
)

// DatabaseType identifies the engine a Database node connects to.
type DatabaseType string

const (
	DatabasePostgres DatabaseType = "postgres"
	DatabaseMySQL    DatabaseType = "mysql"
	DatabaseMongoDB  DatabaseType = "mongodb"
	DatabaseRedis    DatabaseType = "redis"
	DatabaseSQLite   DatabaseType = "sqlite"
	DatabaseMSSQL    DatabaseType = "mssql"
)

// String returns the string representation of the database type.
func (t DatabaseType) String() string {
	return string(t)
}

// IsValid checks if the database type is a supported value.
func (t DatabaseType) IsValid() bool {
	switch t {
	case DatabasePostgres, DatabaseMySQL, DatabaseMongoDB,
		DatabaseRedis, DatabaseSQLite, DatabaseMSSQL:
		return true
	default:
		return false
	}
}

// ConnectionSecurityLevel classifies how safely a Database node's credentials
// are configured.
type ConnectionSecurityLevel string

const (
	ConnectionSecure   ConnectionSecurityLevel = "secure"
	ConnectionWarning  ConnectionSecurityLevel = "warning"
	ConnectionInsecure ConnectionSecurityLevel = "insecure"
)

// String returns the string representation of the connection security level.
func (l ConnectionSecurityLevel) String() string {
	return string(l)
}

// DatabaseConnection is the typed configuration record of a Database node.
// At least one of ConnectionString and CredentialRef must be non-empty for
// the connection to be considered configured. Validation never opens a
// connection.
type DatabaseConnection struct {
	ConnectionString string `json:"connection_string"`
	CredentialRef    string `json:"credential_ref,omitempty"`
	PoolSize         *int   `json:"pool_size,omitempty"`
}

// IsConfigured reports whether the connection carries either an inline
// connection string or a credential reference.
func (c DatabaseConnection) IsConfigured() bool {
	return c.ConnectionString != "" || c.CredentialRef != ""
}

// ConnectionValidation is the outcome of validating a Database node's
// configuration. Errors block saving; warnings are advisory.
type ConnectionValidation struct {
	IsValid       bool                    `json:"is_valid"`
	SecurityLevel ConnectionSecurityLevel `json:"security_level"`
	Warnings      []string                `json:"warnings"`
	Errors        []string                `json:"errors"`
}

// expectedSchemes lists the URL schemes each database type is normally
// reached through. A connection string that matches none of them draws an
// advisory warning, not an error.
var expectedSchemes = map[DatabaseType][]string{
	DatabasePostgres: {"postgresql://", "postgres://"},
	DatabaseMySQL:    {"mysql://"},
	DatabaseMongoDB:  {"mongodb://", "mongodb+srv://"},
	DatabaseRedis:    {"redis://", "rediss://"},
	DatabaseSQLite:   {"file:", "sqlite://"},
	DatabaseMSSQL:    {"sqlserver://", "mssql://"},
}

// recommendedMaxPool is the advisory per-engine pool size ceiling.
var recommendedMaxPool = map[DatabaseType]int{
	DatabasePostgres: 20,
	DatabaseMySQL:    20,
	DatabaseMongoDB:  100,
	DatabaseRedis:    50,
	DatabaseSQLite:   1,
	DatabaseMSSQL:    20,
}

var (
	urlPasswordRe    = regexp.MustCompile(`(://[^/@:\s]+):([^@\s]+)@`)
	keyValueSecretRe = regexp.MustCompile(`(?i)\b(password|pwd|api_key|apikey|secret|token|auth)(\s*=\s*)([^;&\s]+)`)
	interpolationRe  = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	credentialRefRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	urlHostRe        = regexp.MustCompile(`://(?:[^@/\s]*@)?(?:\[([^\]\s]+)\]|([^:/?\s]+))`)
	kvHostRe         = regexp.MustCompile(`(?i)\b(?:host|server|data source)\s*=\s*([^;,\s]+)`)
	urlDatabaseRe    = regexp.MustCompile(`://[^/\s]+/([^?;\s]+)`)
	kvDatabaseRe     = regexp.MustCompile(`(?i)\b(?:database|dbname|initial catalog)\s*=\s*([^;,\s]+)`)
)

// ValidateConnection validates a Database node's connection configuration
// for a given engine type. It returns configuration errors (which block
// saving), advisory warnings, and the resulting security classification.
func ValidateConnection(conn DatabaseConnection, dbType DatabaseType) ConnectionValidation {
	var errs []string
	var warnings []string

	if !conn.IsConfigured() {
		errs = append(errs, "connection requires a connection string or a credential reference")
	}
	if conn.PoolSize != nil && *conn.PoolSize < 1 {
		errs = append(errs, fmt.Sprintf("pool size must be at least 1, got %d", *conn.PoolSize))
	}

	if conn.ConnectionString != "" {
		if schemes, ok := expectedSchemes[dbType]; ok && !matchesScheme(conn.ConnectionString, schemes) {
			warnings = append(warnings, fmt.Sprintf(
				"connection string does not match the expected scheme for %s (expected one of %s)",
				dbType, strings.Join(schemes, ", ")))
		}
		if HasPlaintextCredentials(conn.ConnectionString) {
			warnings = append(warnings, "connection string contains plaintext credentials; prefer a credential reference")
		}
		if host, ok := ExtractHost(conn.ConnectionString); ok && isLocalHost(host) {
			warnings = append(warnings, fmt.Sprintf("host %q looks like a local or development endpoint", host))
		}
	}

	if conn.PoolSize != nil && *conn.PoolSize >= 1 {
		if max, ok := recommendedMaxPool[dbType]; ok && *conn.PoolSize > max {
			warnings = append(warnings, fmt.Sprintf(
				"pool size %d exceeds the recommended maximum of %d for %s", *conn.PoolSize, max, dbType))
		}
		if dbType == DatabaseSQLite && *conn.PoolSize > 1 {
			warnings = append(warnings, "SQLite does not support connection pooling; pool size above 1 has no effect")
		}
	}

	if conn.CredentialRef != "" && !credentialRefRe.MatchString(conn.CredentialRef) {
		warnings = append(warnings, fmt.Sprintf(
			"credential reference %q is malformed; expected identifier or identifier.identifier", conn.CredentialRef))
	}

	return ConnectionValidation{
		IsValid:       len(errs) == 0,
		SecurityLevel: determineSecurityLevel(conn, warnings, errs),
		Warnings:      warnings,
		Errors:        errs,
	}
}

// determineSecurityLevel classifies the connection. Any error makes it
// insecure. A credential-reference-only connection is secure. Literal
// plaintext credentials downgrade to warning; interpolation placeholders are
// treated as externally injected and stay secure. Any remaining warning
// downgrades to warning.
func determineSecurityLevel(conn DatabaseConnection, warnings, errs []string) ConnectionSecurityLevel {
	if len(errs) > 0 {
		return ConnectionInsecure
	}
	if conn.CredentialRef != "" && conn.ConnectionString == "" {
		return ConnectionSecure
	}
	if HasPlaintextCredentials(conn.ConnectionString) {
		return ConnectionWarning
	}
	if HasVariableInterpolation(conn.ConnectionString) {
		return ConnectionSecure
	}
	if len(warnings) > 0 {
		return ConnectionWarning
	}
	return ConnectionSecure
}

// HasPlaintextCredentials reports whether the connection string carries a
// literal secret, either as URL userinfo or as a password-like key=value
// pair. A {{...}} interpolation placeholder in the secret position is not a
// literal secret and does not count.
func HasPlaintextCredentials(s string) bool {
	if m := urlPasswordRe.FindStringSubmatch(s); m != nil {
		if !interpolationRe.MatchString(m[2]) {
			return true
		}
	}
	for _, m := range keyValueSecretRe.FindAllStringSubmatch(s, -1) {
		if !interpolationRe.MatchString(m[3]) {
			return true
		}
	}
	return false
}

// HasVariableInterpolation reports whether the connection string contains
// {{...}} variable-interpolation syntax.
func HasVariableInterpolation(s string) bool {
	return interpolationRe.MatchString(s)
}

// MaskConnectionString replaces secrets in a connection string with *** for
// display. URL userinfo passwords become ":***@" and password-like key=value
// pairs keep their key with a masked value. The output never contains the
// original secret substring.
func MaskConnectionString(s string) string {
	masked := urlPasswordRe.ReplaceAllString(s, "$1:***@")
	masked = keyValueSecretRe.ReplaceAllString(masked, "$1$2***")
	return masked
}

// ExtractHost extracts the host portion of a connection string for display
// purposes only. IPv6 literals are returned without their brackets. It
// reports false when the format is unrecognized.
func ExtractHost(s string) (string, bool) {
	if m := urlHostRe.FindStringSubmatch(s); m != nil {
		if m[1] != "" {
			return m[1], true
		}
		return m[2], true
	}
	if m := kvHostRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// ExtractDatabaseName extracts the database name from a connection string for
// display purposes only. It reports false when the format is unrecognized.
func ExtractDatabaseName(s string) (string, bool) {
	if m := urlDatabaseRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := kvDatabaseRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// matchesScheme checks the connection string against a list of scheme
// prefixes.
func matchesScheme(s string, schemes []string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range schemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// isLocalHost reports whether a host matches a local or development pattern.
func isLocalHost(host string) bool {
	lower := strings.ToLower(host)
	switch lower {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(lower, ".local") ||
		strings.HasSuffix(lower, ".dev") ||
		strings.HasSuffix(lower, ".test")
}
