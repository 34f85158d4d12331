package fact

import (
	"strings"
)

// Fact is one learned phrase. Key is the natural identity, always stored
// lowercase with trailing punctuation removed.
type Fact struct {
	Key     string `json:"key" gorm:"column:key_word;primaryKey;size:256"`
	Value   string `json:"value"`
	Word    string `json:"word"`  // the copula: "is", "are", "was", ...
	SetBy   string `json:"setby"` // username that taught the fact
	WhenSet int64  `json:"whenset"`
	Locked  bool   `json:"locked"`
}

func (Fact) TableName() string {
	return "infobot"
}

// NormalizeKey lowercases a key and strips trailing punctuation and spaces,
// so "Sky?" and " sky " address the same fact.
func NormalizeKey(key string) string {
	key = strings.ToLower(key)
	for len(key) > 0 {
		switch key[len(key)-1] {
		case '?', '.', ',', '!', ' ':
			key = key[:len(key)-1]
		default:
			return strings.TrimSpace(key)
		}
	}
	return key
}
