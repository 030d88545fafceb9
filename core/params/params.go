package params

import (
	"strconv"

	"setlist-api/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
	Search     string `json:"search"`
}

func NewQueryParams(ctx echo.Context) *QueryParams {
	p := &QueryParams{
		PageNumber: constants.DefaultPageNumber,
		PageSize:   constants.DefaultPageSize,
		Search:     ctx.QueryParam("search"),
	}

	if page, err := strconv.Atoi(ctx.QueryParam("page")); err == nil && page > 0 {
		p.PageNumber = page
	}
	if limit, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && limit > 0 {
		p.PageSize = min(limit, constants.MaxPageSize)
	}

	return p
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}
