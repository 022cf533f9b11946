// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// VendorRequest caps a single background-check vendor HTTP call.
const VendorRequest = 15 * time.Second

// StoreWrite caps a single candidate record patch during reconciliation.
const StoreWrite = 5 * time.Second

// Shutdown limits how long the runtime waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second
