package dev

import (
	"strings"
	"testing"
)

func TestStampWildcardHost(t *testing.T) {
	var b strings.Builder
	Stamp(&b, WatermarkInfo{
		Version:    "0.1.0",
		Host:       "0.0.0.0",
		Port:       "3000",
		NonLocalIP: func() string { return "192.168.1.100" },
	})

	out := b.String()
	if !strings.Contains(out, "Arkos") || !strings.Contains(out, "v0.1.0") {
		t.Errorf("missing version banner:\n%s", out)
	}
	if !strings.Contains(out, "http://localhost:3000") {
		t.Errorf("missing local URL:\n%s", out)
	}
	if !strings.Contains(out, "http://192.168.1.100:3000") {
		t.Errorf("missing network URL:\n%s", out)
	}
}

func TestStampLoopbackHostOmitsNetwork(t *testing.T) {
	var b strings.Builder
	Stamp(&b, WatermarkInfo{
		Version:    "0.1.0",
		Host:       "127.0.0.1",
		Port:       "3000",
		NonLocalIP: func() string { return "192.168.1.100" },
	})

	out := b.String()
	if !strings.Contains(out, "http://localhost:3000") {
		t.Errorf("missing local URL:\n%s", out)
	}
	if strings.Contains(out, "Network") {
		t.Errorf("loopback host must not print a Network line:\n%s", out)
	}
}

func TestStampNoNonLocalIP(t *testing.T) {
	var b strings.Builder
	Stamp(&b, WatermarkInfo{
		Version:    "0.1.0",
		Host:       "0.0.0.0",
		Port:       "3000",
		NonLocalIP: func() string { return "" },
	})

	if strings.Contains(b.String(), "Network") {
		t.Errorf("Network line printed without an available IP:\n%s", b.String())
	}
}

func TestStampEnvFiles(t *testing.T) {
	var b strings.Builder
	Stamp(&b, WatermarkInfo{
		Version:  "0.1.0",
		Host:     "0.0.0.0",
		Port:     "3000",
		EnvFiles: []string{".env", ".env.local"},
	})

	if !strings.Contains(b.String(), "Environments: .env, .env.local") {
		t.Errorf("missing environments line:\n%s", b.String())
	}
}

func TestStampSingleEnvFileOmitted(t *testing.T) {
	var b strings.Builder
	Stamp(&b, WatermarkInfo{
		Version:  "0.1.0",
		Host:     "0.0.0.0",
		Port:     "3000",
		EnvFiles: []string{".env"},
	})

	if strings.Contains(b.String(), "Environments") {
		t.Errorf("single env file must not print an Environments line:\n%s", b.String())
	}
}

func TestStampWithoutAddress(t *testing.T) {
	var b strings.Builder
	Stamp(&b, WatermarkInfo{Version: "0.1.0"})

	out := b.String()
	if !strings.Contains(out, "v0.1.0") {
		t.Errorf("banner always prints the version:\n%s", out)
	}
	if strings.Contains(out, "Local") {
		t.Errorf("no Local line without host and port:\n%s", out)
	}
}
