package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 24},
		{3, 10, 3, 10},
		{-1, 500, 1, 100},
	}
	for _, tc := range cases {
		page, size := NormalizePagination(tc.page, tc.size)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("NormalizePagination(%d,%d) want %d,%d got %d,%d", tc.page, tc.size, tc.wantPage, tc.wantSize, page, size)
		}
	}
}

func TestPageQueryIgnoresGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/products?page=abc&page_size=7", nil)
	page, size := PageQuery(c)
	if page != 1 || size != 7 {
		t.Fatalf("want 1,7 got %d,%d", page, size)
	}
}
