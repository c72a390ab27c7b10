// Package typereg — реестр типов: нормализация mime-типов изображений
// в каноническое расширение файла и обратный (legacy) поиск mime по
// суффиксу сохранённого пути.
package typereg

import "strings"

// entry — одна запись реестра mime → расширение.
type entry struct {
	mime string
	ext  string
}

// registry хранится срезом, а не map'ой: при обратном поиске по суффиксу
// выигрывает первая объявленная запись, и этот порядок зафиксирован.
var registry = []entry{
	{"image/jpeg", ".jpg"},
	{"image/jpg", ".jpg"},
	{"image/png", ".png"},
}

// Extension возвращает каноническое расширение для mime-типа изображения
// либо пустую строку, если тип реестру не известен.
func Extension(mime string) string {
	for _, e := range registry {
		if e.mime == mime {
			return e.ext
		}
	}
	return ""
}

// Known сообщает, зарегистрирован ли mime-тип.
func Known(mime string) bool {
	return Extension(mime) != ""
}

// MimeForPath — legacy-фоллбек для старых записей без сохранённого mime:
// подбирает mime по суффиксу пути (без учёта регистра). Возвращает первую
// подходящую запись в порядке объявления реестра.
func MimeForPath(path string) string {
	lower := strings.ToLower(path)
	for _, e := range registry {
		if strings.HasSuffix(lower, e.ext) {
			return e.mime
		}
	}
	return ""
}
