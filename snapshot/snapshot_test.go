package snapshot

import (
	"bytes"
	"testing"

	"ramen-dashboard/utils"
)

func TestFindChromeBinary(t *testing.T) {
	t.Setenv("CHROME_BIN", "/env/chrome")

	if got := findChromeBinary("/opt/custom/chrome"); got != "/opt/custom/chrome" {
		t.Errorf("explicit binary: got %q", got)
	}
	if got := findChromeBinary(""); got != "/env/chrome" {
		t.Errorf("CHROME_BIN fallback: got %q", got)
	}
}

func TestNewResolvesBinary(t *testing.T) {
	t.Setenv("CHROME_BIN", "/env/chrome")
	logger := utils.NewLogger()
	logger.SetOutput(&bytes.Buffer{})

	c := New("", logger)
	if c.chromeBin != "/env/chrome" {
		t.Errorf("chromeBin = %q; want /env/chrome", c.chromeBin)
	}
	if c.retry == nil || c.retry.MaxAttempts != 2 {
		t.Errorf("retry = %+v; want 2 attempts", c.retry)
	}
}
