package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AgentCapabilities describes what an agent can do
type AgentCapabilities struct {
	Type    string   `yaml:"type" json:"type"`
	Skills  []string `yaml:"skills" json:"skills"`
	Version string   `yaml:"version" json:"version"`
}

// AgentConfig represents configuration for a single agent
type AgentConfig struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Endpoint     string            `yaml:"endpoint"`
	Type         string            `yaml:"type"`
	Capabilities AgentCapabilities `yaml:"capabilities"`
}

// Config represents the agent registry loaded from YAML
type Config struct {
	Agents map[string]AgentConfig `yaml:"agents"`
}

// EnvConfig holds environment variables
type EnvConfig struct {
	// Shared secret gating record disclosure. Compared by exact,
	// case-sensitive equality; never rotated within a session.
	SecurityCode string

	// Storage
	DatabasePath string

	// LLM
	GoogleAPIKey string
	LLMModel     string

	// Server ports
	RootAgentPort      int
	ENTAgentPort       int
	GynecAgentPort     int
	PhysicianAgentPort int
	ReportServerPort   int
	WSPort             int

	// Endpoints used by clients
	RootAgentURL string
}

// LoadEnv loads environment variables, reading .env when present.
func LoadEnv() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		SecurityCode: getEnv("SECURITY_CODE", "0864"),
		DatabasePath: getEnv("DATABASE_PATH", "healthcare.db"),
		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		LLMModel:     getEnv("LLM_MODEL", "gemini-1.5-flash"),
		RootAgentURL: getEnv("ROOT_AGENT_URL", "http://localhost:8080"),
	}

	cfg.RootAgentPort = getEnvInt("ROOT_AGENT_PORT", 8080)
	cfg.ENTAgentPort = getEnvInt("ENT_AGENT_PORT", 8081)
	cfg.GynecAgentPort = getEnvInt("GYNEC_AGENT_PORT", 8082)
	cfg.PhysicianAgentPort = getEnvInt("PHYSICIAN_AGENT_PORT", 8083)
	cfg.ReportServerPort = getEnvInt("REPORT_SERVER_PORT", 8000)
	cfg.WSPort = getEnvInt("WS_PORT", 8085)

	return cfg, nil
}

// LoadAgentConfig loads the agent registry from YAML
func LoadAgentConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "configs/agent_config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Replace environment variables in the YAML
	configStr := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(configStr), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// GetAgentByType finds agents by type
func (c *Config) GetAgentByType(agentType string) []AgentConfig {
	var agents []AgentConfig
	for _, agent := range c.Agents {
		if strings.EqualFold(agent.Type, agentType) {
			agents = append(agents, agent)
		}
	}
	return agents
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
