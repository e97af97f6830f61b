package result

import "github.com/kailas-cloud/kmsearch/internal/domain/resource"

// Pagination describes the page returned and the size of the full match.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Result is one page of redacted documents plus pagination metadata.
type Result struct {
	Documents  []resource.Document
	Pagination Pagination
}

// Empty returns the result for a search that matched nothing.
func Empty(page, pageSize int) Result {
	return Result{
		Documents:  []resource.Document{},
		Pagination: Pagination{Page: page, PageSize: pageSize},
	}
}

// New builds a result and derives the page count from total.
func New(docs []resource.Document, page, pageSize, total int) Result {
	if docs == nil {
		docs = []resource.Document{}
	}
	return Result{
		Documents: docs,
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			PageCount: PageCount(total, pageSize),
			Total:     total,
		},
	}
}

// PageCount returns ceil(total / pageSize), or 0 when either is non-positive.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
