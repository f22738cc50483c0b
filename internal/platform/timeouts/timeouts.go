// Package timeouts defines shared timeout constants used across binaries.
// Centralizing these values prevents drift between process boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// StoreOpen caps how long startup waits for the SQLite store to respond
// to its initial ping.
const StoreOpen = 5 * time.Second

// Shutdown limits how long a process waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second
