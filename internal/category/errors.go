package category

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("category not found")
	ErrConflict   = errors.New("category conflict")
	ErrCycle      = errors.New("category cycle")
	ErrStructure  = errors.New("category structure corrupted")
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("category %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError is returned when a delete without cascade hits a category
// that still has direct children.
type ConflictError struct {
	ID       string
	Children []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("category %q has %d subcategories (%s); delete with cascade to remove them",
		e.ID, len(e.Children), strings.Join(e.Children, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// CycleError rejects a reparent that would make a category its own ancestor.
type CycleError struct {
	ID       string
	ParentID string
}

func (e *CycleError) Error() string {
	if e.ID == e.ParentID {
		return fmt.Sprintf("category %q cannot be its own parent", e.ID)
	}
	return fmt.Sprintf("moving category %q under %q would create a cycle", e.ID, e.ParentID)
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// CycleDetectedError reports a cycle found in an already stored collection,
// e.g. one loaded from an external import.
type CycleDetectedError struct {
	ID string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("cycle detected in category tree at %q", e.ID)
}

func (e *CycleDetectedError) Is(target error) bool {
	return target == ErrStructure || target == ErrCycle
}

// StructureError reports a violated collection invariant (orphaned parent,
// duplicate slug, gap in sibling ordering).
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "category structure: " + e.Reason
}

func (e *StructureError) Is(target error) bool { return target == ErrStructure }
