package pflagenv

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func TestParseFlagSetEnvOnlyOverridesUnsetFlags(t *testing.T) {
	fs := pflag.NewFlagSet("espbrewd-test", pflag.ContinueOnError)

	var bind, configDir, scanMs, flashBaud string
	fs.StringVar(&bind, "bind", "0.0.0.0:8080", "")
	fs.StringVar(&configDir, "config-dir", "", "")
	fs.StringVar(&scanMs, "scan-interval-ms", "30000", "")
	fs.StringVar(&flashBaud, "flash-baud", "460800", "")
	fs.Parse([]string{"--bind=127.0.0.1:9090", "--config-dir="})

	os.Setenv("ESPBREWD_TEST_BIND", "1.2.3.4:1111")
	os.Setenv("ESPBREWD_TEST_CONFIG_DIR", "/etc/espbrew")
	os.Setenv("ESPBREWD_TEST_SCAN_INTERVAL_MS", "5000")
	defer os.Unsetenv("ESPBREWD_TEST_BIND")
	defer os.Unsetenv("ESPBREWD_TEST_CONFIG_DIR")
	defer os.Unsetenv("ESPBREWD_TEST_SCAN_INTERVAL_MS")

	ParseFlagSet(fs, "ESPBREWD_TEST_")

	if bind != "127.0.0.1:9090" {
		t.Errorf("explicitly set flag must win over env: got %q", bind)
	}
	if configDir != "" {
		t.Errorf("explicitly set-to-empty flag must not be overridden: got %q", configDir)
	}
	if scanMs != "5000" {
		t.Errorf("unset flag should take env value: got %q", scanMs)
	}
	if flashBaud != "460800" {
		t.Errorf("unset flag with no env var should keep its default: got %q", flashBaud)
	}
}
