package util

import (
	"strconv"

	"github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/gin-gonic/gin"
)

func CalculateTotalPage(totalItems int64, pageSize uint) int {
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}
	if totalItems == 0 {
		return 1
	}
	totalPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) != 0 {
		totalPage++
	}
	return totalPage
}

// GetPagination reads ?page and ?pageSize, falling back to the first page
// of the default size. pageSize is capped to MaxPageSize.
func GetPagination(ctx *gin.Context) (page, pageSize uint) {
	page, pageSize = 1, constant.DefaultPageSize

	if p, err := strconv.ParseUint(ctx.Query("page"), 10, 32); err == nil && p > 0 {
		page = uint(p)
	}
	if ps, err := strconv.ParseUint(ctx.Query("pageSize"), 10, 32); err == nil && ps > 0 {
		pageSize = min(uint(ps), constant.MaxPageSize)
	}

	return page, pageSize
}
