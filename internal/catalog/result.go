// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

// Mode tells whether a result came from the store or from the fallback path.
type Mode int

const (
	// ModeFresh means the remote store answered and its records won.
	ModeFresh Mode = iota
	// ModeFallback means the store failed and static or derived data was served.
	ModeFallback
)

// String returns "fresh" or "fallback".
func (m Mode) String() string {
	if m == ModeFallback {
		return "fallback"
	}
	return "fresh"
}

// MarshalText lets Mode appear as a string in JSON responses.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Result pairs resolved catalog data with how it was obtained.
type Result[T any] struct {
	Data T    `json:"data"`
	Mode Mode `json:"mode"`
}

// Degraded reports whether the result was served from the fallback path.
func (r Result[T]) Degraded() bool {
	return r.Mode == ModeFallback
}
