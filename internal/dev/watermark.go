package dev

import (
	"fmt"
	"io"
	"strings"
)

// WatermarkInfo carries everything the startup banner needs.
type WatermarkInfo struct {
	// Version is the framework version.
	Version string

	// Host and Port are the resolved bind address, as strings.
	Host string
	Port string

	// EnvFiles are the loaded environment files, already cleaned for
	// display, in load order.
	EnvFiles []string

	// NonLocalIP supplies the machine's LAN address for the Network line.
	// Nil or an empty result omits the line.
	NonLocalIP func() string
}

// Stamp prints the startup banner. Pure formatting: no state, console output
// is the only effect.
func Stamp(w io.Writer, info WatermarkInfo) {
	version := info.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n  \033[1mArkos\033[0m \033[36mv%s\033[0m\n\n", version)

	if info.Host != "" && info.Port != "" {
		fmt.Fprintf(w, "  \033[32m➜\033[0m  Local:        http://%s:%s\n", displayHost(info.Host), info.Port)

		if isWildcardHost(info.Host) && info.NonLocalIP != nil {
			if ip := info.NonLocalIP(); ip != "" {
				fmt.Fprintf(w, "  \033[32m➜\033[0m  Network:      http://%s:%s\n", ip, info.Port)
			}
		}
	}

	if len(info.EnvFiles) > 1 {
		fmt.Fprintf(w, "  \033[32m➜\033[0m  Environments: %s\n", strings.Join(info.EnvFiles, ", "))
	}

	fmt.Fprintln(w)
}

// displayHost substitutes localhost for addresses a browser cannot dial.
func displayHost(host string) string {
	if isWildcardHost(host) || host == "127.0.0.1" || host == "" {
		return "localhost"
	}
	return host
}

func isWildcardHost(host string) bool {
	return host == "0.0.0.0" || host == "::"
}
