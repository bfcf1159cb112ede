// Package entry stores configuration entries created by setup flows.
//
// An Entry is keyed by domain and unique identifier; the Registry
// refuses a second entry for the same pair. Entries are persisted as
// JSON through a Store so configured gateways survive restarts.
package entry
