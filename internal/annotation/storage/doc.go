// Package storage defines the persistence contracts for the annotation
// core: filtered entity stores, the unit of work, and the domain event
// outbox. Every filtered operation takes the acting identity explicitly;
// rows outside the actor's visibility behave as if they do not exist.
package storage
