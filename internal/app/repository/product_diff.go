package repository

import (
	"github.com/ashascraft/storefront-backend/internal/app/model"
)

type imageDiff struct {
	create []model.ProductImage
	update []model.ProductImage
	remove []uint
}

// diffImages compares the stored images with the desired set.
// Desired images with an ID matching a stored image are updates, other
// desired images are inserts, and stored images left out are removed.
func diffImages(current, desired []model.ProductImage) imageDiff {
	var d imageDiff
	existing := make(map[uint]model.ProductImage, len(current))
	for _, img := range current {
		existing[img.ID] = img
	}

	kept := make(map[uint]bool, len(desired))
	for _, img := range desired {
		if img.ID != 0 {
			if old, ok := existing[img.ID]; ok {
				kept[img.ID] = true
				if old.URL != img.URL || old.IsPrimary != img.IsPrimary || old.SortOrder != img.SortOrder || old.StorageKey != img.StorageKey {
					d.update = append(d.update, img)
				}
				continue
			}
		}
		img.ID = 0
		d.create = append(d.create, img)
	}

	for _, img := range current {
		if !kept[img.ID] {
			d.remove = append(d.remove, img.ID)
		}
	}
	return d
}

// diffIDs returns the ids to add and to remove to turn current into desired.
func diffIDs(current, desired []uint) (add, remove []uint) {
	have := make(map[uint]bool, len(current))
	for _, id := range current {
		have[id] = true
	}
	want := make(map[uint]bool, len(desired))
	for _, id := range desired {
		if want[id] {
			continue
		}
		want[id] = true
		if !have[id] {
			add = append(add, id)
		}
	}
	for _, id := range current {
		if !want[id] {
			remove = append(remove, id)
		}
	}
	return add, remove
}
