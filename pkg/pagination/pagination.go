package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// PageSize is fixed for every listing endpoint.
const PageSize = 10

// Params holds the page number and the optional name filter of a listing request.
type Params struct {
	Page  int
	Query string
}

// MaxPage keeps Offset from overflowing. Any page past the data is empty,
// so larger requests are served as MaxPage.
const MaxPage = math.MaxInt32 / PageSize

// FromContext reads ?page= (default 1) and ?q= (default empty) from the request.
func FromContext(c echo.Context) Params {
	page, err := strconv.Atoi(c.QueryParam("page"))
	switch {
	case errors.Is(err, strconv.ErrRange) && page > 0, err == nil && page > MaxPage:
		page = MaxPage
	case err != nil || page < 1:
		page = 1
	}
	return Params{Page: page, Query: strings.TrimSpace(c.QueryParam("q"))}
}

func (p Params) Limit() int {
	return PageSize
}

func (p Params) Offset() int {
	return (p.Page - 1) * PageSize
}

// Pages returns the number of the last page for total matches. An empty
// result still has one (empty) page.
func Pages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// Page is the listing metadata merged into the response envelope.
type Page struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// NewPage builds the metadata of a page holding count items. A page with no
// items reports total 0.
func NewPage(p Params, total, count int) Page {
	if count == 0 {
		total = 0
	}
	return Page{
		Total: total,
		Page:  p.Page,
		Pages: Pages(total),
		Limit: PageSize,
	}
}
