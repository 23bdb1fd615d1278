// Package config loads the project configuration file: remote
// location, status-projection backend, and per-kind required sections.
// File discovery follows an XDG-then-home fallback.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kjc-dev/ghhier/internal/apperrors"
	"github.com/kjc-dev/ghhier/internal/model"
)

// StatusMethod selects which backend carries workflow state.
type StatusMethod string

const (
	StatusLabels StatusMethod = "labels"
	StatusField  StatusMethod = "status_field"
)

// Config is the parsed project manifest.
type Config struct {
	ProjectURL string `yaml:"project_url"`

	StatusMethod     StatusMethod        `yaml:"status_method"`
	RequiredSections map[string][]string `yaml:"required_sections"`
	// TimeoutSeconds bounds each individual HTTP round trip, on both
	// transports.
	TimeoutSeconds   int                 `yaml:"timeout_seconds"`
	ProjectField     ProjectFieldConfig  `yaml:"project_field"`
	Log              LogConfig           `yaml:"log"`
	Cache            CacheConfig         `yaml:"cache"`

	// Owner/Repo are derived from ProjectURL, not read directly from
	// YAML. Populated only when ProjectURL is a repository-root URL.
	Owner string `yaml:"-"`
	Repo  string `yaml:"-"`

	// ProjectOwner/ProjectOwnerType/ProjectNumber are derived from
	// ProjectURL when it names an org or user project board instead
	// of a repository.
	ProjectOwner     string `yaml:"-"`
	ProjectOwnerType string `yaml:"-"` // "org" or "user"
	ProjectNumber    string `yaml:"-"`
}

// ProjectFieldConfig maps workflow states onto a Projects v2 single-select
// field's option ids. Only read when StatusMethod is StatusField.
type ProjectFieldConfig struct {
	ProjectID string            `yaml:"project_id"`
	FieldID   string            `yaml:"field_id"`
	Options   map[string]string `yaml:"options"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CacheConfig struct {
	FeatureTTLSeconds int `yaml:"feature_ttl_seconds"`
}

// RequiredSectionsFor returns the configured required sections for a
// kind, falling back to model.DefaultRequiredSections when the
// manifest omits the kind entirely.
func (c *Config) RequiredSectionsFor(kind model.IssueKind) []string {
	if names, ok := c.RequiredSections[kind.String()]; ok {
		return names
	}
	return model.DefaultRequiredSections(kind)
}

func defaultConfig() *Config {
	return &Config{
		TimeoutSeconds: 30,
		Log:            LogConfig{Level: "info"},
		Cache:          CacheConfig{FeatureTTLSeconds: 600},
	}
}

// Load reads and validates the project manifest using the real
// environment and filesystem.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv is the testable seam: getenv is injected so tests don't
// depend on the real environment.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	path := configPath(getenv)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.ConfigMissing{Path: path}
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &apperrors.ConfigInvalid{File: path, Err: err}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// The three shapes project_url is allowed to take: a repository root
// (⇒ labels backend by default) or an org/user project board (⇒
// status_field backend by default).
var (
	repoPathRe        = regexp.MustCompile(`^/([^/]+)/([^/]+)/?$`)
	orgProjectPathRe  = regexp.MustCompile(`^/orgs/([^/]+)/projects/(\d+)/?$`)
	userProjectPathRe = regexp.MustCompile(`^/users/([^/]+)/projects/(\d+)/?$`)
)

func (c *Config) validate() error {
	if c.ProjectURL == "" {
		return &apperrors.ConfigMissingField{Field: "project_url"}
	}
	u, err := url.Parse(c.ProjectURL)
	if err != nil || u.Scheme != "https" {
		return &apperrors.RepositoryFormatInvalid{Value: c.ProjectURL}
	}

	var defaultMethod StatusMethod
	switch {
	case orgProjectPathRe.MatchString(u.Path):
		m := orgProjectPathRe.FindStringSubmatch(u.Path)
		c.ProjectOwner, c.ProjectOwnerType, c.ProjectNumber = m[1], "org", m[2]
		defaultMethod = StatusField
	case userProjectPathRe.MatchString(u.Path):
		m := userProjectPathRe.FindStringSubmatch(u.Path)
		c.ProjectOwner, c.ProjectOwnerType, c.ProjectNumber = m[1], "user", m[2]
		defaultMethod = StatusField
	case repoPathRe.MatchString(u.Path):
		m := repoPathRe.FindStringSubmatch(u.Path)
		c.Owner, c.Repo = m[1], m[2]
		defaultMethod = StatusLabels
	default:
		return &apperrors.RepositoryFormatInvalid{Value: c.ProjectURL}
	}

	switch c.StatusMethod {
	case StatusLabels, StatusField:
	case "":
		c.StatusMethod = defaultMethod
	default:
		return &apperrors.ConfigInvalid{Err: fmt.Errorf("unknown status_method %q", c.StatusMethod)}
	}
	if c.StatusMethod == StatusField {
		if c.ProjectField.ProjectID == "" || c.ProjectField.FieldID == "" {
			return &apperrors.ConfigMissingField{Field: "project_field.project_id/field_id"}
		}
	}
	// A project-board project_url with the labels backend (or a repo
	// URL has no project id) leaves Owner/Repo or ProjectOwner/Number
	// empty respectively; every command must then pass --repo or rely
	// on whichever half of the manifest was actually populated above.
	return nil
}

func configPath(getenv func(string) string) string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ghhier", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ghhier", "config.yaml")
}

// TokenEnvVar is the credential environment variable name, read once
// at Hybrid Client construction and never persisted.
const TokenEnvVar = "ISSUEHIER_TOKEN"

// Token reads the credential from the environment.
func Token(getenv func(string) string) (string, error) {
	tok := strings.TrimSpace(getenv(TokenEnvVar))
	if tok == "" {
		return "", &apperrors.MissingCredential{EnvVar: TokenEnvVar}
	}
	return tok, nil
}
