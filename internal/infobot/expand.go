package infobot

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

var listMarkerRe = regexp.MustCompile(`<list:(.+?)>`)

// pickTemplate returns a uniformly random entry from a template list.
func pickTemplate(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[rand.Intn(len(v))]
}

// pickValue treats a stored value as a |-separated list of alternatives and
// returns one at random. A value without | is returned as-is.
func pickValue(s string) string {
	parts := strings.Split(s, "|")
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[rand.Intn(len(parts))]
}

// formatDate renders a fact timestamp the way replies show it.
func formatDate(when int64) string {
	return time.Unix(when, 0).UTC().Format(time.ANSIC)
}

// Expand performs the free-text marker pass over a template or value:
// <me>, <who>, <date>, <random> and the <list:a,b,c> random choice. A string
// that degenerates to the bare %v token expands to the no-reply sentinel.
func Expand(str, nick string, when int64, myNick, randUser string) string {
	str = strings.ReplaceAll(str, "<me>", myNick)
	str = strings.ReplaceAll(str, "<who>", nick)
	str = strings.ReplaceAll(str, "<random>", randUser)
	str = strings.ReplaceAll(str, "<date>", formatDate(when))

	// Randomised string lists
	for {
		m := listMarkerRe.FindStringSubmatchIndex(str)
		if m == nil {
			break
		}
		opts := strings.Split(str[m[2]:m[3]], ",")
		str = str[:m[0]] + opts[rand.Intn(len(opts))] + str[m[1]:]
	}

	if str == "%v" {
		return ""
	}
	return str
}
