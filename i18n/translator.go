package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for issue and diagnostic codes.
// data provides optional values substituted into "{key}" placeholders (for example,
// "bound" or "type").
type Translator interface {
	Message(code string, data map[string]string) string
}

var messages = map[string]map[string]string{
	"en": {
		"minValue":              "must be greater than or equal to {bound}",
		"maxValue":              "must be less than or equal to {bound}",
		"minValueExclusive":     "must be greater than {bound}",
		"maxValueExclusive":     "must be less than {bound}",
		"length":                "length must be exactly {bound}",
		"minLength":             "length must be at least {bound}",
		"maxLength":             "length must be at most {bound}",
		"pattern":               "must match pattern {bound}",
		"const":                 "must be {bound}",
		"invalid_type":          "invalid type: expected {type}",
		"inapplicable_category": "constraint category inapplicable to field type {type}",
		"incompatible_type":     "constraint not valid for declared field type {type}",
		"unknown_constraint":    "unknown constraint",
		"exclusive_constraints": "mutually exclusive constraints attached to the same field",
		"invalid_literal":       "constraint literal out of range for its kind",
		"empty_range":           "lower bound exceeds upper bound",
	},
	"ja": {
		"minValue":              "{bound} 以上である必要があります",
		"maxValue":              "{bound} 以下である必要があります",
		"minValueExclusive":     "{bound} より大きい必要があります",
		"maxValueExclusive":     "{bound} より小さい必要があります",
		"length":                "長さは {bound} である必要があります",
		"minLength":             "短すぎます（最小 {bound}）",
		"maxLength":             "長すぎます（最大 {bound}）",
		"pattern":               "パターン {bound} に一致しません",
		"const":                 "{bound} である必要があります",
		"invalid_type":          "型が不正です（期待: {type}）",
		"inapplicable_category": "制約カテゴリはフィールド型 {type} に適用できません",
		"incompatible_type":     "制約は宣言されたフィールド型 {type} に使用できません",
		"unknown_constraint":    "未知の制約です",
		"exclusive_constraints": "同じフィールドに排他的な制約が指定されています",
		"invalid_literal":       "制約値が範囲外です",
		"empty_range":           "下限が上限を超えています",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

var (
	supported = []string{"en", "ja"}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Japanese})
)

// SetLanguage switches the built-in Translator to the closest supported language.
// lang is a BCP 47 tag ("ja-JP") or an Accept-Language list; anything unmatched
// selects English.
func SetLanguage(lang string) {
	code := "en"
	if tags, _, err := language.ParseAcceptLanguage(lang); err == nil && len(tags) > 0 {
		if _, idx, conf := matcher.Match(tags...); conf != language.No {
			code = supported[idx]
		}
	}
	SetTranslator(dictTranslator{lang: code})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
