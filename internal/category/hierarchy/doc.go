// Package hierarchy holds the pure algorithms over a flat category
// collection: validation, tree projection, sibling ordering, descendant
// resolution and reparent checks.
//
// Every function treats its input slice as read-only and returns a fresh
// copy when it changes anything, so a caller can keep the previous snapshot
// untouched if a later step fails.
package hierarchy
