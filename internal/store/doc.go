// Package store defines narrow persistence interfaces for the application's
// entities, along with the shared database abstractions and sentinel errors
// used by their implementations. Keeping the interfaces here lets services
// depend on behavior rather than on a concrete database, so the store is
// swappable and testable with an in-memory fake.
package store
