package notes

import (
	"github.com/tomblanch/notable/pkg/notable/models"
	"gorm.io/gorm"
)

// TagInput is the tags list element accepted by create and update
type TagInput struct {
	Title string `json:"title" binding:"required,max=150"`
}

// reconcileTags maps tag titles to existing-or-newly-created Tag rows.
// Matching is exact and case-sensitive; the first row with a given title
// wins. Duplicate titles in the input collapse to a single reference, in
// first-occurrence order. Existing tags are never mutated.
func reconcileTags(db *gorm.DB, inputs []TagInput) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		if seen[in.Title] {
			continue
		}
		seen[in.Title] = true

		var tag models.Tag
		// Try to find an existing tag, create one if absent. Two concurrent
		// requests for the same new title may both create a row; tolerated.
		if err := db.Where("title = ?", in.Title).First(&tag).Error; err != nil {
			tag = models.Tag{Title: in.Title}
			if err := db.Create(&tag).Error; err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
