package hierarchy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

	nonSlugChars    = regexp.MustCompile(`[^a-z0-9\s-]`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify derives a slug candidate from a display name.
// "Home & Garden 2026" becomes "home-garden-2026".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ValidateCreate(records []model.Category, input *dto.CreateCategoryInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &category.ValidationError{Field: "name", Reason: "is required"}
	}
	if err := validateSlug(records, input.Slug, ""); err != nil {
		return err
	}
	return ValidateParent(records, input.ParentID)
}

func ValidateUpdate(records []model.Category, id string, patch *dto.UpdateCategoryInput) error {
	pos := Find(records, id)
	if pos < 0 {
		return &category.NotFoundError{ID: id}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return &category.ValidationError{Field: "name", Reason: "is required"}
	}
	if patch.Slug != nil && *patch.Slug != records[pos].Slug {
		if err := validateSlug(records, *patch.Slug, id); err != nil {
			return err
		}
	}
	if patch.SetParent {
		return ValidateParent(records, patch.ParentID)
	}
	return nil
}

// ValidateParent checks that a non-nil parent references an existing category.
func ValidateParent(records []model.Category, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if Find(records, *parentID) < 0 {
		return &category.NotFoundError{ID: *parentID}
	}
	return nil
}

func validateSlug(records []model.Category, slug, excludeID string) error {
	if slug == "" {
		return &category.ValidationError{Field: "slug", Reason: "is required"}
	}
	if !IsValidSlug(slug) {
		return &category.ValidationError{Field: "slug", Reason: "may only contain lowercase letters, digits and hyphens"}
	}
	for i := range records {
		if records[i].Slug == slug && records[i].ID != excludeID {
			return &category.ValidationError{Field: "slug", Reason: fmt.Sprintf("%q is already used", slug)}
		}
	}
	return nil
}

// CheckInvariants verifies a whole collection: unique ids and slugs, valid
// parent references, contiguous sibling ordering and acyclicity.
func CheckInvariants(records []model.Category) error {
	ids := make(map[string]struct{}, len(records))
	slugs := make(map[string]string, len(records))
	for i := range records {
		c := &records[i]
		if c.ID == "" {
			return &category.StructureError{Reason: fmt.Sprintf("category at position %d has no id", i)}
		}
		if _, dup := ids[c.ID]; dup {
			return &category.StructureError{Reason: fmt.Sprintf("duplicate id %q", c.ID)}
		}
		ids[c.ID] = struct{}{}
		if other, dup := slugs[c.Slug]; dup {
			return &category.StructureError{Reason: fmt.Sprintf("slug %q shared by %q and %q", c.Slug, other, c.ID)}
		}
		slugs[c.Slug] = c.ID
	}

	idx := newIndex(records)
	for key, positions := range idx.children {
		if key != "" {
			if _, ok := ids[key]; !ok {
				return &category.StructureError{Reason: fmt.Sprintf("parent %q of %q does not exist", key, records[positions[0]].ID)}
			}
		}
		for want, pos := range positions {
			if records[pos].SortOrder != want {
				return &category.StructureError{Reason: fmt.Sprintf("sibling group %q is not ordered 0..%d (%q has %d)",
					key, len(positions)-1, records[pos].ID, records[pos].SortOrder)}
			}
		}
	}

	return checkAcyclic(records, idx)
}

func checkAcyclic(records []model.Category, idx index) error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(records))
	for i := range records {
		var chain []string
		id := records[i].ID
		for id != "" && state[id] == unvisited {
			state[id] = inProgress
			chain = append(chain, id)
			c, ok := idx.get(records, id)
			if !ok {
				id = ""
				break
			}
			id = c.ParentKey()
		}
		if id != "" && state[id] == inProgress {
			return &category.CycleDetectedError{ID: id}
		}
		for _, v := range chain {
			state[v] = done
		}
	}
	return nil
}
