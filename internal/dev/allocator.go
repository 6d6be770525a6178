package dev

import (
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arkos-run/arkos/internal/config"
)

const (
	// DefaultPort is the port candidate when nothing else is configured.
	DefaultPort = "8000"

	// probeTimeout bounds a single TCP connect attempt.
	probeTimeout = 100 * time.Millisecond
)

// ProbeFunc reports whether (host, port) is available for binding.
// A successful outbound connect means something is already listening.
type ProbeFunc func(host, port string, timeout time.Duration) bool

// Allocator resolves the host/port pair the application should bind to.
// The first resolution is cached for the allocator's lifetime; a new process
// gets a new allocator.
type Allocator struct {
	mu       sync.Mutex
	log      *zap.Logger
	probe    ProbeFunc
	resolved bool
	host     string
	port     string
	warnings []string

	ifaceOnce  sync.Once
	nonLocalIP string
}

// NewAllocator creates an allocator using a real TCP probe.
func NewAllocator(log *zap.Logger) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{
		log:   log,
		probe: tcpProbe,
	}
}

// SetProbe replaces the availability probe. Used by tests.
func (a *Allocator) SetProbe(p ProbeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.probe = p
}

// Lookup resolves an environment variable, from the process environment or a
// loaded snapshot.
type Lookup func(key string) (string, bool)

// HostAndPort applies the precedence chain to pick the initial candidates:
// CLI override > app config > environment variable > default. The default
// host is the wildcard address except in built production mode, where the
// application binds loopback.
func HostAndPort(lookup Lookup, cfg *config.Config) (host, port string) {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return v
	}

	port = get("CLI_PORT")
	if port == "" && cfg != nil {
		port = cfg.PortString()
	}
	if port == "" {
		port = get("PORT")
	}
	if port == "" {
		port = DefaultPort
	}

	host = get("CLI_HOST")
	if host == "" && cfg != nil {
		host = cfg.Host
	}
	if host == "" {
		host = get("HOST")
	}
	if host == "" {
		if get("ARKOS_BUILD") == "true" {
			host = "127.0.0.1"
		} else {
			host = "0.0.0.0"
		}
	}

	return host, port
}

// Resolve returns the host and the first available port at or above the
// initial candidate. The result is cached; later calls return the same pair
// without re-probing.
func (a *Allocator) Resolve(lookup Lookup, cfg *config.Config) (host, port string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.resolved {
		return a.host, a.port
	}

	host, port = HostAndPort(lookup, cfg)
	probeHost := normalizeProbeHost(host)

	for !a.probe(probeHost, port, probeTimeout) {
		next := incrementPort(port)
		warning := "Port " + port + " is in use, trying port " + next
		a.warnings = append(a.warnings, warning)
		a.log.Warn(warning, zap.String("host", host), zap.String("port", port))
		port = next
	}

	a.host = host
	a.port = port
	a.resolved = true
	return host, port
}

// Warnings returns the port-in-use warnings recorded so far.
func (a *Allocator) Warnings() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.warnings))
	copy(out, a.warnings)
	return out
}

// FirstNonLocalIP returns the first IPv4 non-loopback interface address, or
// an empty string when none exists. Interfaces are assumed stable for the
// process lifetime, so the answer is cached.
func (a *Allocator) FirstNonLocalIP() string {
	a.ifaceOnce.Do(func() {
		a.nonLocalIP = firstNonLocalIP()
	})
	return a.nonLocalIP
}

func firstNonLocalIP() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			return ip.String()
		}
	}
	return ""
}

// tcpProbe dials (host, port); a successful connect means the port is
// occupied, an error or timeout means it is free to bind.
func tcpProbe(host, port string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), timeout)
	if err != nil {
		return true
	}
	conn.Close()
	return false
}

// normalizeProbeHost maps wildcard and loopback addresses to localhost: a
// server bound to the wildcard address is reachable via loopback, and the
// wildcard itself is not a dialable target.
func normalizeProbeHost(host string) string {
	switch host {
	case "", "0.0.0.0", "::", "127.0.0.1":
		return "localhost"
	}
	return host
}

func incrementPort(port string) string {
	n, err := strconv.Atoi(port)
	if err != nil {
		return DefaultPort
	}
	return strconv.Itoa(n + 1)
}
