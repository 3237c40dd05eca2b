package language

import (
	"github.com/abadojack/whatlanggo"
	textlang "golang.org/x/text/language"
)

// minConfidence — ниже этого порога результат детекции не используется.
const minConfidence = 0.5

// Detect определяет язык текста.
// Возвращает ISO 639-1 код и false, если язык определить не удалось.
func Detect(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < minConfidence {
		return "", false
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", false
	}
	return code, true
}

// SameBase проверяет, что два кода относятся к одному базовому языку
// ("pt-BR" и "pt").
func SameBase(a, b string) bool {
	ta, err := textlang.Parse(a)
	if err != nil {
		return false
	}
	tb, err := textlang.Parse(b)
	if err != nil {
		return false
	}
	ba, _ := ta.Base()
	bb, _ := tb.Base()
	return ba == bb
}

// Mismatch определяет язык text и сообщает, отличается ли он от want.
// detected пуст, если язык определить не удалось; тогда mismatch=false.
func Mismatch(text, want string) (detected string, mismatch bool) {
	code, ok := Detect(text)
	if !ok {
		return "", false
	}
	return code, !SameBase(code, want)
}
