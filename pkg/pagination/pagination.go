package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const maxLimit = 100

// Params parses page and limit query parameters from a request.
// A limit of 0 means no pagination was requested and the full result set
// should be returned. Page defaults to 1, limit is capped at 100.
func Params(c echo.Context) (page, limit int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = 0
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Apply translates page/limit into offset/limit for a query.
// Returns ok=false when no pagination should be applied.
func Apply(page, limit int) (offset int, ok bool) {
	if limit <= 0 {
		return 0, false
	}
	return (page - 1) * limit, true
}
