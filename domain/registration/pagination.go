package registration

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is a 1-indexed page request.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination applies defaults: page < 1 becomes 1, limit < 1 becomes 10,
// and limit is capped at MaxLimit.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// HasMore reports whether records exist after this page.
func (p Pagination) HasMore(returned int, total int64) bool {
	return p.Skip()+int64(returned) < total
}
