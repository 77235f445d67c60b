// Package pagination reads optional limit/offset windows from list requests.
// A zero limit means the whole collection.
package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const MaxLimit = 1000

type Params struct {
	Limit  int
	Offset int
}

// Unbounded reports whether the request asked for everything.
func (p Params) Unbounded() bool {
	return p.Limit == 0 && p.Offset == 0
}

// FromContext reads the limit and offset query parameters. Absent values are
// zero; limits above MaxLimit are capped.
func FromContext(c echo.Context) (Params, error) {
	limit, err := parse(c.QueryParam("limit"), "limit")
	if err != nil {
		return Params{}, err
	}
	offset, err := parse(c.QueryParam("offset"), "offset")
	if err != nil {
		return Params{}, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Limit: limit, Offset: offset}, nil
}

func parse(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// Window returns the bounds of the page within a collection of n items.
func (p Params) Window(n int) (start, end int) {
	start = min(p.Offset, n)
	end = n
	if p.Limit > 0 && start+p.Limit < n {
		end = start + p.Limit
	}
	return start, end
}

// Apply slices items to the page.
func Apply[T any](p Params, items []T) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}

// SQLLimit is the LIMIT argument for Postgres; nil means no limit.
func (p Params) SQLLimit() any {
	if p.Limit == 0 {
		return nil
	}
	return p.Limit
}
