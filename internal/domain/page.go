package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage держит Page*Size в пределах int32, OFFSET не переполняется
	MaxPage = math.MaxInt32 / MaxPageSize
)

// PageRequest: запрос страницы (индекс страницы с нуля)
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest нормализует параметры: отрицательная страница -> 0,
// страница не больше MaxPage, размер по умолчанию 20, ограничен диапазоном 1..100
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

func (p PageRequest) Limit() int {
	return p.Size
}

// Page: единый конверт пагинации
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	IsLast        bool  `json:"is_last"`
}

// NewPage собирает конверт из содержимого страницы и общего количества элементов
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		IsLast:        req.Page >= totalPages-1,
	}
}
