package service

import (
	"feedbot/feed"

	"github.com/samber/lo"
)

// DeltaAfter returns the suffix of items strictly after the cursor guid,
// preserving the oldest→newest input order. A nil cursor, or a cursor no
// longer present in the fetch (it fell outside the feed's retention window),
// yields the entire sequence: re-delivery is preferred over silent gaps.
func DeltaAfter(items []feed.Item, cursor *string) []feed.Item {
	if cursor == nil {
		return items
	}

	_, index, found := lo.FindIndexOf(items, func(item feed.Item) bool {
		return item.GUID == *cursor
	})
	if !found {
		return items
	}

	return items[index+1:]
}
