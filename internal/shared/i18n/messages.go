// Package i18n localizes user-facing error messages. The English text of an
// AppError message is the catalog key.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.SimplifiedChinese,
}

var matcher = language.NewMatcher(supported)

var translations = map[language.Tag]map[string]string{
	language.German: {
		"Authentication required":  "Anmeldung erforderlich",
		"Insufficient permissions": "Unzureichende Berechtigungen",
		"Insufficient role":        "Unzureichende Rolle",
		"Session not found":        "Sitzung nicht gefunden",
		"Session has expired":      "Sitzung ist abgelaufen",
		"Tenant not found":         "Mandant nicht gefunden",
		"Data store unavailable":   "Datenspeicher nicht verfügbar",
		"Validation failed":        "Validierung fehlgeschlagen",
		"Too many login attempts":  "Zu viele Anmeldeversuche",
		"Internal server error":    "Interner Serverfehler",
	},
	language.SimplifiedChinese: {
		"Authentication required":  "需要登录",
		"Insufficient permissions": "权限不足",
		"Insufficient role":        "角色权限不足",
		"Session not found":        "会话不存在",
		"Session has expired":      "会话已过期",
		"Tenant not found":         "租户不存在",
		"Data store unavailable":   "数据存储不可用",
		"Validation failed":        "验证失败",
		"Too many login attempts":  "登录尝试次数过多",
		"Internal server error":    "服务器内部错误",
	},
}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, msg := range entries {
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Localize returns the translation of msg for the given Accept-Language header.
// ok is false when the caller prefers English or no translation exists.
func Localize(acceptLanguage, msg string) (string, bool) {
	tag := Match(acceptLanguage)
	if tag == language.English {
		return "", false
	}
	if _, found := translations[tag][msg]; !found {
		return "", false
	}
	p := message.NewPrinter(tag, message.Catalog(messages))
	return p.Sprintf(msg), true
}
