package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvDefaults(t *testing.T) {
	os.Unsetenv("SECURITY_CODE")
	os.Unsetenv("ROOT_AGENT_PORT")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.SecurityCode != "0864" {
		t.Errorf("expected default security code '0864', got %q", cfg.SecurityCode)
	}
	if cfg.RootAgentPort != 8080 {
		t.Errorf("expected default root port 8080, got %d", cfg.RootAgentPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("SECURITY_CODE", "4242")
	defer os.Unsetenv("SECURITY_CODE")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.SecurityCode != "4242" {
		t.Errorf("expected overridden security code '4242', got %q", cfg.SecurityCode)
	}
}

func TestLoadAgentConfigExpandsEnv(t *testing.T) {
	os.Setenv("ROOT_AGENT_PORT", "18080")
	defer os.Unsetenv("ROOT_AGENT_PORT")

	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	yaml := `agents:
  root:
    name: "healthcare-coordinator"
    endpoint: "http://localhost:${ROOT_AGENT_PORT}"
    type: "root"
    capabilities:
      type: "root"
      version: "1.0.0"
      skills: ["task_routing", "record_disclosure"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadAgentConfig(path)
	if err != nil {
		t.Fatalf("LoadAgentConfig: %v", err)
	}
	root, ok := cfg.Agents["root"]
	if !ok {
		t.Fatal("expected root agent in config")
	}
	if root.Endpoint != "http://localhost:18080" {
		t.Errorf("expected expanded endpoint, got %q", root.Endpoint)
	}
}

func TestCapabilitiesValidator(t *testing.T) {
	cv, err := NewCapabilitiesValidator()
	if err != nil {
		t.Fatalf("NewCapabilitiesValidator: %v", err)
	}

	valid := AgentCapabilities{Type: "root", Version: "1.0.0", Skills: []string{"task_routing"}}
	if err := cv.Validate(valid); err != nil {
		t.Errorf("expected valid capabilities, got: %v", err)
	}

	invalid := AgentCapabilities{Type: "root", Version: "one", Skills: []string{"task_routing"}}
	if err := cv.Validate(invalid); err == nil {
		t.Error("expected validation failure for bad version string")
	}

	noSkills := AgentCapabilities{Type: "root", Version: "1.0.0", Skills: []string{}}
	if err := cv.Validate(noSkills); err == nil {
		t.Error("expected validation failure for empty skills")
	}
}

func TestValidateSkills(t *testing.T) {
	if err := ValidateSkills("root", []string{"task_routing", "record_disclosure"}); err != nil {
		t.Errorf("expected root skills to pass: %v", err)
	}
	if err := ValidateSkills("root", []string{"task_routing"}); err == nil {
		t.Error("expected missing record_disclosure skill to fail")
	}
	if err := ValidateSkills("ent", []string{"medical_consultation"}); err != nil {
		t.Errorf("expected ent skills to pass: %v", err)
	}
}
