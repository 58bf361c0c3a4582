package handlers

import (
	"errors"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var errInvalidPagination = errors.New("invalid pagination params")

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(defaultPage)
	limit := int64(defaultLimit)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = min(l, maxLimit)
	}

	if page-1 > math.MaxInt64/limit {
		return 0, 0, errInvalidPagination
	}

	return page, limit, nil
}

func pageFromQuery(c *gin.Context) (store.Page, error) {
	page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		return store.Page{}, err
	}
	return store.Page{Page: page, Limit: limit}, nil
}

func paginationResponse(total int64, page store.Page) gin.H {
	pages := int64(0)
	if page.Limit > 0 {
		pages = (total + page.Limit - 1) / page.Limit
	}
	return gin.H{
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
		"pages": pages,
	}
}
