package util

import (
	"net/http/httptest"
	"testing"

	"github.com/SeakMengs/DossierFlow/internal/constant"
	"github.com/gin-gonic/gin"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		pageSize   uint
		want       int
	}{
		{"no items", 0, 10, 1},
		{"exact pages", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"default page size", 45, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTotalPage(tt.totalItems, tt.pageSize); got != tt.want {
				t.Errorf("CalculateTotalPage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query        string
		wantPage     uint
		wantPageSize uint
	}{
		{"", 1, constant.DefaultPageSize},
		{"?page=3&pageSize=5", 3, 5},
		{"?page=0&pageSize=-1", 1, constant.DefaultPageSize},
		{"?pageSize=100000", 1, constant.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
			ctx.Request = httptest.NewRequest("GET", "/dossiers"+tt.query, nil)

			page, pageSize := GetPagination(ctx)
			if page != tt.wantPage || pageSize != tt.wantPageSize {
				t.Errorf("GetPagination() = %d, %d; want %d, %d", page, pageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}
