// Package config loads quality gate settings from defaults, an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings
type Config struct {
	Debug    bool           `yaml:"debug"`
	CodeScan CodeScanConfig `yaml:"codescan"`
	GitHub   GitHubConfig   `yaml:"github"`
	Jira     JiraConfig     `yaml:"jira"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Temporal TemporalConfig `yaml:"temporal"`
	Server   ServerConfig   `yaml:"server"`
}

// CodeScanConfig configures the check itself
type CodeScanConfig struct {
	Token          string        `yaml:"token"`
	WorkingDir     string        `yaml:"working_dir"`
	ServerOverride string        `yaml:"server_override"`
	Timeout        time.Duration `yaml:"timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
}

// GitHubConfig configures the commit status publisher
type GitHubConfig struct {
	Token      string `yaml:"token"`
	Repository string `yaml:"repository"` // owner/name
	SHA        string `yaml:"sha"`
	Context    string `yaml:"context"`
	BaseURL    string `yaml:"base_url"`
}

// JiraConfig configures the issue comment publisher
type JiraConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	IssueKey string `yaml:"issue_key"`
}

// OpenAIConfig configures the optional verdict summarizer
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// TemporalConfig configures the worker and the API's workflow client
type TemporalConfig struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	RESTPort string `yaml:"rest_port"`
	GRPCPort string `yaml:"grpc_port"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		CodeScan: CodeScanConfig{
			WorkingDir:   ".scannerwork",
			Timeout:      5 * time.Minute,
			PollInterval: 2 * time.Second,
		},
		GitHub: GitHubConfig{
			Context: "codescan/quality-gate",
		},
		Temporal: TemporalConfig{
			Address:   "localhost:7233",
			Namespace: "default",
			TaskQueue: "quality-gate-queue",
		},
		Server: ServerConfig{
			RESTPort: "8080",
			GRPCPort: "9090",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is not
// empty) and then with environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.CodeScan.Token, "CODESCAN_TOKEN")
	setString(&c.CodeScan.WorkingDir, "CODESCAN_WORKING_DIR")
	setString(&c.CodeScan.ServerOverride, "CODESCAN_SERVER_OVERRIDE")
	if err := setDuration(&c.CodeScan.Timeout, "CODESCAN_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&c.CodeScan.PollInterval, "CODESCAN_POLL_INTERVAL"); err != nil {
		return err
	}

	setString(&c.GitHub.Token, "GITHUB_TOKEN")
	setString(&c.GitHub.Repository, "GITHUB_REPOSITORY")
	setString(&c.GitHub.SHA, "GITHUB_SHA")
	setString(&c.GitHub.BaseURL, "GITHUB_API_URL")

	setString(&c.Jira.BaseURL, "JIRA_BASE_URL")
	setString(&c.Jira.Username, "JIRA_USERNAME")
	setString(&c.Jira.Token, "JIRA_TOKEN")
	setString(&c.Jira.IssueKey, "JIRA_ISSUE_KEY")

	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")

	setString(&c.Temporal.Address, "TEMPORAL_ADDRESS")
	setString(&c.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	setString(&c.Temporal.TaskQueue, "TASK_QUEUE")

	setString(&c.Server.RESTPort, "REST_PORT")
	setString(&c.Server.GRPCPort, "GRPC_PORT")
	return nil
}

// Validate checks the settings a quality gate check needs
func (c *Config) Validate() error {
	var errs []error
	if c.CodeScan.Token == "" {
		errs = append(errs, errors.New("codescan token is required"))
	}
	if c.CodeScan.WorkingDir == "" {
		errs = append(errs, errors.New("codescan working directory is required"))
	}
	if c.CodeScan.Timeout <= 0 {
		errs = append(errs, errors.New("codescan timeout must be positive"))
	}
	if c.CodeScan.PollInterval <= 0 {
		errs = append(errs, errors.New("codescan poll interval must be positive"))
	}
	if c.GitHub.Repository != "" {
		if _, _, ok := c.GitHub.OwnerRepo(); !ok {
			errs = append(errs, fmt.Errorf("github repository %q must be owner/name", c.GitHub.Repository))
		}
	}
	return errors.Join(errs...)
}

// OwnerRepo splits Repository into owner and name
func (g GitHubConfig) OwnerRepo() (string, string, bool) {
	owner, name, ok := strings.Cut(g.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

// Enabled reports whether commit statuses should be published
func (g GitHubConfig) Enabled() bool {
	return g.Token != "" && g.Repository != ""
}

// Enabled reports whether Jira comments should be published
func (j JiraConfig) Enabled() bool {
	return j.BaseURL != "" && j.IssueKey != ""
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
