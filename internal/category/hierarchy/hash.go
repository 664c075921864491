package hierarchy

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// ContentHash fingerprints a collection independently of slice order. Two
// collections with the same hash project to the same tree.
func ContentHash(records []model.Category) (string, error) {
	positions := make([]int, len(records))
	for i := range positions {
		positions[i] = i
	}
	sort.Slice(positions, func(a, b int) bool {
		return records[positions[a]].ID < records[positions[b]].ID
	})

	d := xxhash.New()
	for _, pos := range positions {
		b, err := json.Marshal(records[pos])
		if err != nil {
			return "", err
		}
		_, _ = d.Write(b)
		_, _ = d.Write([]byte{'\n'})
	}
	return strconv.FormatUint(d.Sum64(), 16), nil
}
