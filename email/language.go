package email

import (
	"strings"

	"github.com/moebelhaus/shop-backend/apperr"
	"golang.org/x/text/language"
)

type Language string

const (
	German  Language = "de"
	English Language = "en"
)

const DefaultLanguage = German

var supported = []language.Tag{language.German, language.English}

var matcher = language.NewMatcher(supported)

// 只接受 de 與 en，其他語言直接回傳錯誤
func ParseLanguage(tag string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(tag))) {
	case German:
		return German, nil
	case English:
		return English, nil
	}
	return "", apperr.Validation("不支援的語言 %q", tag)
}

// 依 Accept-Language 選擇語言，無法判斷時使用德文
func NegotiateLanguage(acceptLanguage string) Language {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}
	_, index := language.MatchStrings(matcher, acceptLanguage)
	if index == 1 {
		return English
	}
	return German
}
