package infobot

import (
	"regexp"
	"strings"
	"sync"
)

// AddressingLevel is how directly an utterance talks to the bot.
type AddressingLevel int

const (
	NotAddressed AddressingLevel = iota
	AddressedByName
	AddressedByNameCorrection
)

// Intent is the classified purpose of an utterance.
type Intent int

const (
	IntentQuestion Intent = iota
	IntentProvenance
	IntentForget
	IntentStatus
	IntentLiteral
	IntentLearn
)

func (i Intent) String() string {
	switch i {
	case IntentProvenance:
		return "provenance"
	case IntentForget:
		return "forget"
	case IntentStatus:
		return "status"
	case IntentLiteral:
		return "literal"
	case IntentLearn:
		return "learn"
	default:
		return "question"
	}
}

// Classification is the outcome of parsing one utterance.
type Classification struct {
	Level          AddressingLevel
	Intent         Intent
	Text           string // subject after the addressing prefix is removed
	DirectQuestion bool   // the utterance itself ended in ? or !

	// Captures, populated per intent: Key for provenance/forget/literal/learn
	// and the fallback question, Word/Value for learn.
	Key   string
	Word  string
	Value string
}

var (
	directQuestionRe = regexp.MustCompile(`[?!]$`)
	questionPrefixRe = regexp.MustCompile(`(?i)^(who|what|where)\s+(is|was|are)\s+(.+?)[?!.]*$`)
	provenanceRe     = regexp.MustCompile(`(?i)^who told you about (.*?)\?*$`)
	forgetRe         = regexp.MustCompile(`(?i)^forget (.*)$`)
	statusRe         = regexp.MustCompile(`(?i)^status\?*$`)
	literalRe        = regexp.MustCompile(`(?i)^literal (.*?)\?*$`)
	learnDelimitedRe = regexp.MustCompile(`(?i)^(.*?)\s+=(is|are|was|arent|aren't|can|can't|cant|will|has|had|r|might|may)=\s+(.*?)\s*$`)
	learnRe          = regexp.MustCompile(`(?i)^(.*?)\s+(is|are|was|arent|aren't|can|can't|cant|will|has|had|r|might|may)\s+(.*?)\s*$`)
	questionRe       = regexp.MustCompile(`^(.*?)\?*\s*$`)
)

// matcher inspects the stripped subject text and fills in the classification
// when its rule fires. Matchers run in fixed priority order, first hit wins.
type matcher func(c *Classification) bool

var matchers = []matcher{
	matchProvenance,
	matchForget,
	matchStatus,
	matchLiteral,
	matchLearn,
}

func matchProvenance(c *Classification) bool {
	m := provenanceRe.FindStringSubmatch(c.Text)
	if m == nil {
		return false
	}
	c.Intent = IntentProvenance
	c.Key = RemovePunct(m[1])
	return true
}

// Forget fires only when addressed by name directly; a correction prefix
// does not qualify.
func matchForget(c *Classification) bool {
	if c.Level != AddressedByName {
		return false
	}
	m := forgetRe.FindStringSubmatch(c.Text)
	if m == nil {
		return false
	}
	c.Intent = IntentForget
	c.Key = RemovePunct(m[1])
	return true
}

func matchStatus(c *Classification) bool {
	if c.Level < AddressedByName || !statusRe.MatchString(c.Text) {
		return false
	}
	c.Intent = IntentStatus
	return true
}

func matchLiteral(c *Classification) bool {
	m := literalRe.FindStringSubmatch(c.Text)
	if m == nil {
		return false
	}
	c.Intent = IntentLiteral
	c.Key = RemovePunct(m[1])
	return true
}

func matchLearn(c *Classification) bool {
	m := learnDelimitedRe.FindStringSubmatch(c.Text)
	if m == nil {
		m = learnRe.FindStringSubmatch(c.Text)
	}
	if m == nil {
		return false
	}
	c.Intent = IntentLearn
	c.Key = RemovePunct(m[1])
	c.Word = strings.ToLower(m[2])
	c.Value = m[3]
	return true
}

// addressingRes caches the per-bot-name prefix patterns.
var (
	addressingMu  sync.Mutex
	addressingRes = map[string][2]*regexp.Regexp{}
)

func addressingFor(botName string) [2]*regexp.Regexp {
	addressingMu.Lock()
	defer addressingMu.Unlock()
	if res, ok := addressingRes[botName]; ok {
		return res
	}
	quoted := regexp.QuoteMeta(botName)
	res := [2]*regexp.Regexp{
		regexp.MustCompile(`(?i)^no\s*` + quoted + `[,: ]+`),
		regexp.MustCompile(`(?i)^` + quoted + `[,: ]+`),
	}
	addressingRes[botName] = res
	return res
}

// Classify parses one utterance against the bot's name. It strips the
// addressing prefix, rewrites "who/what/where is X" to "X?", then runs the
// intent matchers in priority order. When none fire, the remainder is a
// plain question.
func Classify(botName, text string) Classification {
	c := Classification{
		Level:          NotAddressed,
		Intent:         IntentQuestion,
		DirectQuestion: directQuestionRe.MatchString(text),
		Text:           text,
	}

	res := addressingFor(botName)
	if loc := res[0].FindStringIndex(text); loc != nil {
		c.Level = AddressedByNameCorrection
		c.Text = text[loc[1]:]
	} else if loc := res[1].FindStringIndex(text); loc != nil {
		c.Level = AddressedByName
		c.Text = text[loc[1]:]
	}

	// "What is X" and friends are the same question as "X?", whatever the
	// trailing punctuation was.
	if m := questionPrefixRe.FindStringSubmatch(c.Text); m != nil {
		c.Text = m[3] + "?"
		c.DirectQuestion = true
	}

	for _, match := range matchers {
		if match(&c) {
			return c
		}
	}

	// Fallback: a plain question, key is the remainder up to any trailing "?"
	if m := questionRe.FindStringSubmatch(c.Text); m != nil {
		c.Key = RemovePunct(m[1])
	}
	return c
}

// RemovePunct strips trailing question marks, full stops, commas, bangs and
// spaces from a key.
func RemovePunct(word string) string {
	for len(word) > 0 {
		switch word[len(word)-1] {
		case '?', '.', ',', '!', ' ':
			word = word[:len(word)-1]
		default:
			return word
		}
	}
	return word
}
