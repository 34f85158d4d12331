package infobot

import (
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"go-infobot/internal/fact"
)

var (
	aliasRe       = regexp.MustCompile(`(?i)<alias>\s*(.*)`)
	replyActionRe = regexp.MustCompile(`(?i)<(reply|action)>\s*(.*)`)
	bareReplyRe   = regexp.MustCompile(`(?i)^\s*<reply>\s*$`)
	alsoRe        = regexp.MustCompile(`(?i)^also\s+(.*)$`)
)

// Responder turns classified utterances into stored facts or rendered
// replies. The empty string is the single no-reply sentinel: callers must
// never deliver it.
type Responder struct {
	Facts fact.Provider

	// RandomNick, when set, supplies the <random> marker substitution.
	RandomNick func() string

	startup   time.Time
	modCount  atomic.Uint64
	questions atomic.Uint64
}

func NewResponder(facts fact.Provider) *Responder {
	return &Responder{Facts: facts, startup: time.Now()}
}

// Startup is the time the responder was created.
func (r *Responder) Startup() time.Time {
	return r.startup
}

// Counters returns the modification and question counts so far.
func (r *Responder) Counters() (mods, questions uint64) {
	return r.modCount.Load(), r.questions.Load()
}

// Response processes one utterance and returns the reply text, or the empty
// sentinel when nothing should be said. Store failures propagate as errors.
func (r *Responder) Response(myNick, text, userNick string) (string, error) {
	cls := Classify(myNick, text)
	category := ""
	var reply *fact.Fact

	switch cls.Intent {
	case IntentProvenance:
		f, err := r.Facts.Get(cls.Key)
		if err != nil {
			return "", err
		}
		reply = f
		if f != nil {
			category = CategoryHeard
		} else {
			category = CategoryDontKnow
		}

	case IntentForget:
		f, err := r.Facts.Get(cls.Key)
		if err != nil {
			return "", err
		}
		reply = f
		switch {
		case f == nil:
			category = CategoryDontKnow
		case f.Locked:
			category = CategoryLocked
		default:
			if err := r.Facts.Delete(cls.Key); err != nil {
				return "", err
			}
			category = CategoryForgot
		}

	case IntentStatus:
		// Status numbers are served by the diagnostics surface, there is no
		// chat template for them.
		return "", nil

	case IntentLiteral:
		f, err := r.Facts.Get(cls.Key)
		if err != nil {
			return "", err
		}
		if f != nil {
			// Bypasses templating and placeholder expansion entirely
			return cls.Key + " is " + f.Value, nil
		}
		reply = nil
		category = CategoryDontKnow

	case IntentLearn:
		if cls.Key == "" {
			return "", nil
		}
		f, err := r.Facts.Get(cls.Key)
		if err != nil {
			return "", err
		}
		reply = f
		switch {
		case f != nil && f.Locked:
			category = CategoryLocked
		case cls.Level == AddressedByNameCorrection || f == nil:
			if err := r.Facts.Set(cls.Key, cls.Value, cls.Word, userNick, time.Now().Unix(), false); err != nil {
				return "", err
			}
			r.modCount.Add(1)
			if cls.Level >= AddressedByName {
				category = CategoryConfirm
			}
		default:
			if m := alsoRe.FindStringSubmatch(cls.Value); m != nil {
				// "x is also y" appends to the stored value rather than
				// replacing it
				newValue := m[1]
				if strings.HasPrefix(newValue, "|") {
					f.Value = f.Value + " " + newValue
				} else {
					f.Value = f.Value + " or " + newValue
				}
				if err := r.Facts.Set(cls.Key, f.Value, f.Word, userNick, time.Now().Unix(), false); err != nil {
					return "", err
				}
				if cls.Level >= AddressedByName {
					category = CategoryConfirm
				}
			} else if !strings.EqualFold(f.Value, cls.Value) {
				if cls.Level >= AddressedByName {
					category = CategoryNotNew
				}
			}
		}
	}

	// Fallback: treat the remainder as a plain question-query
	if category == "" && cls.Intent != IntentStatus {
		key := RemovePunct(cls.Text)
		r.questions.Add(1)
		f, err := r.Facts.Get(key)
		if err != nil {
			return "", err
		}
		reply = f
		if f != nil {
			if cls.DirectQuestion || cls.Level >= AddressedByName {
				category = CategoryReplies
			}
		} else if cls.Level >= AddressedByName {
			category = CategoryDontKnow
		}
	}

	if category == "" {
		return "", nil
	}
	return r.render(category, reply, myNick, userNick)
}

// render picks a template from the category and fills it in against the
// fact, following alias redirects for at most one re-rendered hop.
func (r *Responder) render(category string, reply *fact.Fact, myNick, userNick string) (string, error) {
	var f fact.Fact
	if reply != nil {
		f = *reply
	}
	randUser := ""
	if r.RandomNick != nil {
		randUser = r.RandomNick()
	}

	var rendered string
	for {
		repeat := false
		rendered = Expand(pickTemplate(Templates(category)), userNick, f.WhenSet, myNick, randUser)

		lockState := "unlocked"
		if f.Locked {
			lockState = "locked"
		}
		rendered = strings.NewReplacer(
			"%k", f.Key,
			"%w", f.Word,
			"%n", userNick,
			"%m", myNick,
			"%d", formatDate(f.WhenSet),
			"%s", f.SetBy,
			"%l", lockState,
		).Replace(rendered)

		// Gobble up empty reply
		if category == CategoryReplies && strings.EqualFold(f.Value, "<reply>") {
			return "", nil
		}

		if category == CategoryReplies {
			if m := aliasRe.FindStringSubmatch(f.Value); m != nil {
				target, err := r.Facts.Get(m[1])
				if err != nil {
					return "", err
				}
				if target == nil {
					// Broken alias
					return "", nil
				}
				f = *target
				// An alias pointing at another alias is not chased further
				if !aliasRe.MatchString(f.Value) {
					repeat = true
				}
			}
		}
		if !repeat {
			break
		}
	}

	if category == CategoryReplies {
		if m := replyActionRe.FindStringSubmatch(f.Value); m != nil {
			// Just a bare <reply>? bog off...
			if bareReplyRe.MatchString(f.Value) {
				return "", nil
			}
			body := m[2]
			if strings.EqualFold(m[1], "action") {
				body = "*" + strings.TrimSpace(m[2]) + "*"
			}
			x := Expand(body, userNick, f.WhenSet, myNick, randUser)
			if x == "%v" {
				return "", nil
			}
			return x, nil
		}
	}

	rendered = strings.ReplaceAll(rendered, "%v", Expand(pickValue(f.Value), userNick, f.WhenSet, myNick, randUser))
	if rendered == "%v" || rendered == "" {
		return "", nil
	}
	return rendered, nil
}
