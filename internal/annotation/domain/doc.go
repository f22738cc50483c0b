// Package domain contains the annotation aggregates and their domain
// events. Aggregates embed a Recorder that collects events as business
// methods run; the storage layer drains the recorder and persists the
// events in the same transaction as the aggregate mutation.
package domain
