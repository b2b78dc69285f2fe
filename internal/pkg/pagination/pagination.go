package pagination

// Defaults shared by every paged listing.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize applies defaults and caps to 1-based page and limit parameters.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// TotalPages rounds total/limit up. A non-positive limit yields zero.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
