// Package intern shares structurally equal expressions through a bounded
// pool of canonical instances.
//
// Handles (*Shared) carry an explicit reference on the instance they point
// to. The pool itself holds no reference: an instance whose handles have all
// been released stays pooled only until the next Cleanup.
//
// Instances are identified by a stable sequence ID that is never reused, so
// downstream caches can key on ID without risking identity aliasing after an
// instance is dropped.
//
// Read-only handles may be shared across goroutines. MakeMut and GetMut on
// handles that alias one instance must be serialized by the caller.
package intern
