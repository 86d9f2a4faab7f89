package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ustawi/core"
)

const (
	orderingParam = "ordering"
	refreshParam  = "refresh"
	daysParam     = "days"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses `?ordering=field1,-field2`; a leading "-" means descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// boolQueryParam reports whether the query param `name` is set to a true value.
func boolQueryParam(ctx echo.Context, name string) bool {
	b, err := strconv.ParseBool(ctx.QueryParam(name))
	return err == nil && b
}

// intQueryParam returns the query param `name` as an int, or def when missing or malformed.
func intQueryParam(ctx echo.Context, name string, def int) int {
	n, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return def
	}
	return n
}
