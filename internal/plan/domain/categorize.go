package domain

import "strings"

// FeatureDiff is the partition of a working feature list into the
// add/delete/update buckets persisted on save.
type FeatureDiff struct {
	Added   []Feature
	Deleted []Feature
	Updated []Feature
}

// CategorizeFeatures partitions features for diff-based persistence.
//
//   - Added: not deleted, no id, non-blank text. Saved as bare text.
//   - Deleted: deleted with a persisted id. Saved as delete-by-id.
//   - Updated: not deleted, persisted id, non-blank text. Text is
//     re-submitted even when unchanged.
//
// A feature matching none of the three (a deleted feature that was never
// persisted, or a persisted feature whose text is blank) lands in no
// bucket and is dropped from the save payload.
func CategorizeFeatures(features []Feature) FeatureDiff {
	var diff FeatureDiff
	for _, f := range features {
		switch {
		case !f.Deleted && f.ID == nil && strings.TrimSpace(f.Text) != "":
			diff.Added = append(diff.Added, f)
		case f.Deleted && f.ID != nil:
			diff.Deleted = append(diff.Deleted, f)
		case !f.Deleted && f.ID != nil && strings.TrimSpace(f.Text) != "":
			diff.Updated = append(diff.Updated, f)
		}
	}
	return diff
}
