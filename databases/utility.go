package databases

import "go.mongodb.org/mongo-driver/mongo/options"

// MaxPageSize caps the limit accepted by PageOptions
const MaxPageSize = 200

// PageOptions returns find options for a 1-based page of limit documents. Out of range values
// fall back to the first page and MaxPageSize.
func PageOptions(limit, page int) *options.FindOptions {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	l := int64(limit)
	skip := int64(page)*l - l
	return &options.FindOptions{Limit: &l, Skip: &skip}
}
