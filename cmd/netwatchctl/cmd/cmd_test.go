package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/api/auth"
	"github.com/good-yellow-bee/netwatch/internal/models"
	"github.com/good-yellow-bee/netwatch/internal/thresholds"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestHashPassword(t *testing.T) {
	if _, err := hashPassword("short"); err == nil {
		t.Error("expected policy error for short password")
	}

	hash, err := hashPassword("Correct-Horse-9")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("Correct-Horse-9")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}
}

func TestPromptPassword_Piped(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("Correct-Horse-9\r\nignored\n")
	f.Seek(0, 0)
	defer f.Close()

	var prompt bytes.Buffer
	got, err := promptPassword(&prompt, f, "Password: ")
	if err != nil {
		t.Fatalf("promptPassword: %v", err)
	}
	if got != "Correct-Horse-9" {
		t.Errorf("password = %q", got)
	}
	if prompt.String() != "Password: " {
		t.Errorf("prompt = %q", prompt.String())
	}
}

func TestMintToken(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		username string
		role     string
		ttl      time.Duration
		wantErr  bool
	}{
		{"admin", testSecret, "ops", "admin", time.Minute, false},
		{"user", testSecret, "report", "user", time.Minute, false},
		{"short secret", "abc", "ops", "admin", time.Minute, true},
		{"no username", testSecret, "", "admin", time.Minute, true},
		{"bad role", testSecret, "ops", "root", time.Minute, true},
		{"zero ttl", testSecret, "ops", "user", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := mintToken(tt.secret, tt.username, tt.role, tt.ttl)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("mintToken: %v", err)
			}
			claims, err := auth.NewJWTService([]byte(testSecret), time.Minute).ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken: %v", err)
			}
			if claims.Username != tt.username || string(claims.Role) != tt.role {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestWriteEvaluation(t *testing.T) {
	store, err := thresholds.NewStore(thresholds.Defaults()...)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		metric     string
		value      float64
		wantSev    models.Severity
		wantInText string
	}{
		{"critical", "CPU Usage", 95, models.SeverityCritical, "warning 70, critical 90"},
		{"warning", "CPU Usage", 75, models.SeverityWarning, "warning 70"},
		{"info", "CPU Usage", 50, models.SeverityInfo, "critical 90"},
		{"unknown metric", "Fan Speed", 5000, models.SeverityInfo, "none configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := models.MetricSample{MetricType: tt.metric, DeviceID: "Core Router", Value: tt.value}
			eval := alerting.Evaluate(sample, store)

			var text bytes.Buffer
			if err := writeEvaluation(&text, "table", sample, eval); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(text.String(), string(tt.wantSev)) || !strings.Contains(text.String(), tt.wantInText) {
				t.Errorf("table output:\n%s", text.String())
			}

			var js bytes.Buffer
			if err := writeEvaluation(&js, "json", sample, eval); err != nil {
				t.Fatal(err)
			}
			var res evaluationResult
			if err := json.Unmarshal(js.Bytes(), &res); err != nil {
				t.Fatalf("decode json: %v", err)
			}
			if res.Severity != tt.wantSev {
				t.Errorf("json severity = %s, want %s", res.Severity, tt.wantSev)
			}
		})
	}
}

func TestClassifyCommand_ThresholdsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := `thresholds:
  - metric_type: Signal Quality
    warning: 40
    critical: 20
    direction: descending
    enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"classify", "--thresholds", path, "-o", "json", "Signal Quality", "15"})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var res evaluationResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if res.Severity != models.SeverityCritical {
		t.Errorf("severity = %s, want critical", res.Severity)
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute(%v): %v", args, err)
	}
	return out.String()
}

func TestCACertCommands(t *testing.T) {
	dir := t.TempDir()

	out := runCLI(t, "ca", "init", "--dir", dir, "--valid-days", "30")
	if !strings.Contains(out, filepath.Join(dir, "ca.crt")) {
		t.Errorf("ca init output = %q", out)
	}

	out = runCLI(t, "cert", "server", "--ca-dir", dir, "--name", "api", "--hosts", "netwatch.local, 10.1.1.1")
	if !strings.Contains(out, filepath.Join(dir, "api.key")) {
		t.Errorf("cert server output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "api.crt")); err != nil {
		t.Errorf("api.crt missing: %v", err)
	}

	clientDir := t.TempDir()
	runCLI(t, "cert", "client", "--ca-dir", dir, "--name", "poller-1", "--out", clientDir)
	if _, err := os.Stat(filepath.Join(clientDir, "poller-1.crt")); err != nil {
		t.Errorf("poller-1.crt missing: %v", err)
	}
}

func TestParseHosts(t *testing.T) {
	got := parseHosts(" a.example, ,10.0.0.1,")
	if len(got) != 2 || got[0] != "a.example" || got[1] != "10.0.0.1" {
		t.Errorf("parseHosts() = %v", got)
	}
	if parseHosts("") != nil {
		t.Error("parseHosts(\"\") should be nil")
	}
}

func TestConfigSealOpen(t *testing.T) {
	t.Setenv(passphraseEnv, "ops-passphrase")
	dir := t.TempDir()
	path := filepath.Join(dir, "netwatch.yaml")
	content := "auth:\n  jwt_secret: " + testSecret + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out := runCLI(t, "config", "seal", path)
	if !strings.Contains(out, path+".enc") {
		t.Errorf("seal output = %q", out)
	}
	sealed, err := os.ReadFile(path + ".enc")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(sealed), testSecret) {
		t.Error("sealed file contains the secret")
	}

	if got := runCLI(t, "config", "open", path+".enc"); got != content {
		t.Errorf("open output = %q, want %q", got, content)
	}
}
