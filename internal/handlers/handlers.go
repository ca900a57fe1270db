package handlers

import (
	"github.com/kubev2v/taskrunner/internal/services"
)

type Handler struct {
	resultSrv *services.ResultService
}

func New(resultSrv *services.ResultService) *Handler {
	return &Handler{
		resultSrv: resultSrv,
	}
}

func paginate(page, pageSize *int) (int, int) {
	p := 1
	if page != nil && *page > 0 {
		p = *page
	}
	size := defaultPageSize
	if pageSize != nil && *pageSize > 0 {
		size = min(*pageSize, maxPageSize)
	}
	return p, size
}

func pageCount(total, pageSize int) int {
	count := (total + pageSize - 1) / pageSize
	if count == 0 {
		count = 1
	}
	return count
}
