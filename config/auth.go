package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the identity provider backing the portal.
type AuthMode string

const (
	// AuthModeHosted uses the hosted GoTrue-compatible auth service.
	AuthModeHosted AuthMode = "hosted"
	// AuthModeLocal issues and verifies sessions in-process (dev and test).
	AuthModeLocal AuthMode = "local"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "hosted", "local":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: hosted, local)", v)
	}
}

// HostedAuthConfig configures the hosted identity provider.
type HostedAuthConfig struct {
	BaseURL   string `env:"BASE_URL"   envDefault:"http://localhost:9999"`
	APIKey    string `env:"API_KEY"    envDefault:""`
	JWTSecret string `env:"JWT_SECRET" envDefault:""`
}

// LocalAuthConfig configures the in-process identity provider.
type LocalAuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"  envDefault:""`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`
}

// SSOConfig configures institutional OIDC login. SSO routes are registered
// only when Enabled is true.
type SSOConfig struct {
	Enabled      bool   `env:"ENABLED"       envDefault:"false"`
	IssuerURL    string `env:"ISSUER_URL"    envDefault:""`
	ClientID     string `env:"CLIENT_ID"     envDefault:""`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`
	Scopes       string `env:"SCOPES"        envDefault:"openid profile email groups"`

	// AdminGroup and TeacherGroup are the directory group names mapped onto
	// portal roles; everyone else signs in as a student.
	AdminGroup   string `env:"ADMIN_GROUP"   envDefault:""`
	TeacherGroup string `env:"TEACHER_GROUP" envDefault:""`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"hosted"`

	// Hosted configuration (used when Mode=hosted).
	Hosted HostedAuthConfig `envPrefix:"AUTH_"`

	// Local configuration (used when Mode=local).
	Local LocalAuthConfig `envPrefix:"LOCAL_AUTH_"`

	// SSO configuration, independent of Mode.
	SSO SSOConfig `envPrefix:"SSO_"`
}
