package pagination

// DefaultLimit is the standard catalog page size.
const DefaultLimit = 8

// MaxLimit caps how many rows any paged query can request.
const MaxLimit = 100

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the slice of results a query should return.
type Page struct {
	Number int
	Limit  int
	Offset int
}

// Normalize clamps the inputs and computes the row offset.
func Normalize(params Params) Page {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{
		Number: page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns how many pages a result set of count rows spans.
func TotalPages(count int64, limit int) int {
	if limit <= 0 || count <= 0 {
		return 0
	}
	pages := count / int64(limit)
	if count%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}
