package connection

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeAddress converts an endpoint address into the WebSocket URL to dial.
//
// http and ws map to ws, https and wss map to wss. The host is lowercased,
// an empty path becomes "/" and any fragment is dropped.
func NormalizeAddress(address string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidAddress, address)
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// sameAddress reports whether a and b name the same endpoint.
func sameAddress(a, b string) bool {
	if a == b {
		return true
	}
	na, errA := NormalizeAddress(a)
	nb, errB := NormalizeAddress(b)
	if errA != nil || errB != nil {
		return false
	}
	return na == nb
}
