package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
	"mvdan.cc/xurls/v2"
)

// Разметка поста и комментария рендерится в HTML одинаково, различие
// только в allow-list: посту дополнительно разрешены табличные теги.
var (
	postPolicy    = buildPolicy(true)
	commentPolicy = buildPolicy(false)
	strictPolicy  = bluemonday.StrictPolicy()
	urlPattern    = xurls.Strict()
)

func buildPolicy(withTables bool) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "abbr", "acronym", "b", "blockquote", "code",
		"em", "i", "img", "li", "ol", "pre", "strong", "ul",
		"h1", "h2", "h3", "p",
	)
	if withTables {
		p.AllowElements("table", "tr", "td")
	}
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src").OnElements("img")
	return p
}

// SanitizePost превращает markdown поста в безопасный HTML:
// рендер -> вырезание запрещённых тегов -> автоссылки.
func SanitizePost(markup string) string {
	return sanitize(markup, postPolicy)
}

// SanitizeComment - то же самое с урезанным allow-list.
func SanitizeComment(markup string) string {
	return sanitize(markup, commentPolicy)
}

// StripMarkup убирает из строки всю разметку. Используется для
// поисковых строк перед подстановкой в LIKE-шаблон.
func StripMarkup(s string) string {
	return strictPolicy.Sanitize(s)
}

func sanitize(markup string, policy *bluemonday.Policy) string {
	// пустая строка в конце входа: без неё blackfriday не распознаёт
	// уже готовый HTML как блок и заворачивает его во второй <p>,
	// повторная санитизация обязана давать тот же результат
	rendered := blackfriday.Run([]byte(markup + "\n\n"))
	cleaned := policy.Sanitize(string(rendered))

	out := strings.TrimSpace(linkify(cleaned))

	// пустых строк внутри вывода не остаётся: иначе на повторном
	// проходе blackfriday разрежет готовый HTML на отдельные блоки и
	// изменит межблочные переводы строк
	for strings.Contains(out, "\n\n") {
		out = strings.ReplaceAll(out, "\n\n", "\n")
	}

	return out
}

// linkify оборачивает голые URL в текстовых узлах в <a href>.
// Текст внутри уже существующих ссылок не трогаем.
func linkify(html string) string {
	var b strings.Builder
	rest := html
	anchorDepth := 0

	for {
		lt := strings.IndexByte(rest, '<')
		if lt == -1 {
			b.WriteString(linkifyText(rest, anchorDepth))
			break
		}

		b.WriteString(linkifyText(rest[:lt], anchorDepth))

		gt := strings.IndexByte(rest[lt:], '>')
		if gt == -1 {
			b.WriteString(rest[lt:])
			break
		}

		tag := rest[lt : lt+gt+1]
		lower := strings.ToLower(tag)
		if strings.HasPrefix(lower, "<a ") || strings.HasPrefix(lower, "<a>") {
			anchorDepth++
		} else if strings.HasPrefix(lower, "</a") {
			if anchorDepth > 0 {
				anchorDepth--
			}
		}

		b.WriteString(tag)
		rest = rest[lt+gt+1:]
	}

	return b.String()
}

func linkifyText(text string, anchorDepth int) string {
	if anchorDepth > 0 || text == "" {
		return text
	}

	return urlPattern.ReplaceAllStringFunc(text, func(url string) string {
		return `<a href="` + html.EscapeString(url) + `">` + url + `</a>`
	})
}
