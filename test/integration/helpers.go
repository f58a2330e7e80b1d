//go:build integration
// +build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint      string
	Token         string
	AuthLabel     string
	AdminUser     string
	AdminPassword string
	AdmctlPath    string
	Verbose       bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:      os.Getenv("CONSOLE_ENDPOINT"),
		Token:         os.Getenv("CONSOLE_TOKEN"),
		AuthLabel:     os.Getenv("CONSOLE_AUTH_LABEL"),
		AdminUser:     os.Getenv("CONSOLE_ADMIN_USER"),
		AdminPassword: os.Getenv("CONSOLE_ADMIN_PASSWORD"),
		AdmctlPath:    getAdmctlPath(),
		Verbose:       os.Getenv("ADMCTL_VERBOSE") == "true",
	}
}

// getAdmctlPath determines the path to the admctl binary
func getAdmctlPath() string {
	if path := os.Getenv("ADMCTL_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../admctl",
		"./admctl",
		"../admctl",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "admctl" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.Endpoint == "" {
		t.Skip("CONSOLE_ENDPOINT not set, skipping integration test")
	}

	if _, err := os.Stat(config.AdmctlPath); os.IsNotExist(err) {
		t.Skipf("admctl binary not found at %s, skipping integration test", config.AdmctlPath)
	}
}

// CommandRunner provides utilities for running admctl commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes an admctl command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	baseArgs := []string{"--api", runner.config.Endpoint}
	if runner.config.Token != "" {
		baseArgs = append(baseArgs, "--token", runner.config.Token)
	}

	cmd := exec.Command(runner.config.AdmctlPath, append(baseArgs, args...)...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.AdmctlPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunWithInput executes an admctl command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	baseArgs := []string{"--api", runner.config.Endpoint}
	if runner.config.Token != "" {
		baseArgs = append(baseArgs, "--token", runner.config.Token)
	}

	cmd := exec.Command(runner.config.AdmctlPath, append(baseArgs, args...)...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running with input: %s %s", runner.config.AdmctlPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login authenticates against the console when no token was supplied
func (runner *CommandRunner) Login() error {
	if runner.config.Token != "" {
		return nil
	}

	if runner.config.AdminUser == "" || runner.config.AdminPassword == "" {
		return fmt.Errorf("no authentication credentials provided")
	}

	args := []string{
		"login",
		"--api", runner.config.Endpoint,
		"--username", runner.config.AdminUser,
		"--password", runner.config.AdminPassword,
	}
	if runner.config.AuthLabel != "" {
		args = append(args, "--auth", runner.config.AuthLabel)
	}

	_, stderr, err := runner.Run(args...)
	if err != nil {
		return fmt.Errorf("failed to log in: %s", stderr)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().Unix())
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(kind, id string) {
	stdout, stderr, err := runner.Run(kind, "delete", id, "--force")
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", kind, id, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}
