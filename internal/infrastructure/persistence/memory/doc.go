// Package memory provides map-backed implementations of the room and billing
// repositories. Values are copied in and out so callers see the same
// isolation a database gives them. Used by tests and by the "memory"
// database driver.
package memory
