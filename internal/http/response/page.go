package response

// PageSource is anything that already knows its own pagination metadata.
// utils.Page satisfies it.
type PageSource[T any] interface {
	Content() []T
	Number() int
	Size() int
	IsFirst() bool
	IsLast() bool
	HasNext() bool
	HasPrevious() bool
	TotalPages() int
	TotalElements() int64
}

// PageResponse is the wire form of one page of results.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page" example:"0"`
	Size          int   `json:"size" example:"10"`
	TotalElements int64 `json:"totalElements" example:"42"`
	TotalPages    int   `json:"totalPages" example:"5"`
	First         bool  `json:"first" example:"true"`
	Last          bool  `json:"last" example:"false"`
	HasNext       bool  `json:"hasNext" example:"true"`
	HasPrevious   bool  `json:"hasPrevious" example:"false"`
}

// PageFrom copies src field for field. Nothing is recomputed.
func PageFrom[T any](src PageSource[T]) PageResponse[T] {
	content := src.Content()
	if content == nil {
		content = []T{}
	}
	return PageResponse[T]{
		Content:       content,
		Page:          src.Number(),
		Size:          src.Size(),
		TotalElements: src.TotalElements(),
		TotalPages:    src.TotalPages(),
		First:         src.IsFirst(),
		Last:          src.IsLast(),
		HasNext:       src.HasNext(),
		HasPrevious:   src.HasPrevious(),
	}
}
