package runtime

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	want := State{Host: "0.0.0.0", Port: "3000", PID: 4242, StartedAt: time.Now().UTC()}
	if err := WriteState(dir, want); err != nil {
		t.Fatal(err)
	}

	got, err := ReadState(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Host != want.Host || got.Port != want.Port || got.PID != want.PID {
		t.Errorf("ReadState = %+v, want %+v", got, want)
	}
}

func TestReadStateMissing(t *testing.T) {
	if _, err := ReadState(t.TempDir()); err == nil {
		t.Error("expected error for missing state file")
	}
}

func TestRemoveStateIdempotent(t *testing.T) {
	dir := t.TempDir()

	if err := WriteState(dir, State{Host: "h", Port: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := RemoveState(dir); err != nil {
		t.Fatal(err)
	}
	if err := RemoveState(dir); err != nil {
		t.Errorf("removing a missing state file must not fail: %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	os.Unsetenv("HOST")
	os.Unsetenv("PORT")

	app := New(Options{ProjectDir: t.TempDir()})

	cfg := app.Config()
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q", cfg.Port)
	}
}

func TestNewEnvFallback(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "4321")

	app := New(Options{ProjectDir: t.TempDir()})

	cfg := app.Config()
	if cfg.Host != "127.0.0.1" || cfg.Port != "4321" {
		t.Errorf("Config = %+v", cfg)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	app := New(Options{Host: "127.0.0.1", Port: "0", ProjectDir: t.TempDir()})

	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics status = %d", resp.StatusCode)
	}
}

func TestUserRoutes(t *testing.T) {
	app := New(Options{Host: "127.0.0.1", Port: "0", ProjectDir: t.TempDir()})
	app.Router().Get("/api/users", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})

	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/api/users status = %d", resp.StatusCode)
	}
}
