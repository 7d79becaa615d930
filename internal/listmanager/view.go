package listmanager

import (
	"strings"

	"github.com/samber/lo"
)

const DefaultPageSize = 10

// Page - одна страница отфильтрованного списка. Number начинается с 1.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalPages int
	TotalItems int
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Offset - индекс первого элемента страницы в исходном списке
func (p Page[T]) Offset() int { return (p.Number - 1) * p.Size }

// Paginate режет список на страницы размера size и возвращает страницу page.
// page зажимается в [1, ceil(len/size)]; у пустого списка одна пустая страница.
func Paginate[T any](items []T, size, page int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{
		Items:      out,
		Number:     page,
		Size:       size,
		TotalPages: pages,
		TotalItems: total,
	}
}

// Filter оставляет элементы, для которых match истинно. Порядок сохраняется,
// исходный срез не меняется. Пустой term - копия всего списка.
// Пробелы в term значимы: это часть искомой подстроки.
func Filter[T any](items []T, term string, match func(item T, term string) bool) []T {
	if term == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}
	return lo.Filter(items, func(item T, _ int) bool {
		return match(item, term)
	})
}

// ContainsFold - регистронезависимое вхождение подстроки
func ContainsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// MatchAny - совпадение хотя бы по одному из полей
func MatchAny[T any](fields ...func(T) string) func(T, string) bool {
	return func(item T, term string) bool {
		return lo.SomeBy(fields, func(field func(T) string) bool {
			return ContainsFold(field(item), term)
		})
	}
}
