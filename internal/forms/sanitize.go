package forms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Clean убирает разметку из пользовательского ввода и обрезает пробелы.
// StrictPolicy экранирует сущности, поэтому возвращаем их обратно:
// на сервер уходит текст, а не HTML.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
