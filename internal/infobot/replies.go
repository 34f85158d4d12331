// Package infobot implements the learning and reply engine: utterance
// classification, the fact-backed responder and its reply templates.
package infobot

// Reply template categories. Placeholders: %k key, %w copula, %v value,
// %n asker, %m bot name, %d date set, %s setter, %l lock state.
const (
	CategoryReplies   = "replies"
	CategoryDontKnow  = "dontknow"
	CategoryNotNew    = "notnew"
	CategoryHeard     = "heard"
	CategoryConfirm   = "confirm"
	CategoryLoggedOut = "loggedout"
	CategoryLocked    = "locked"
	CategoryForgot    = "forgot"
)

var replies = map[string][]string{
	CategoryReplies:   {"I heard %k %w %v", "They say %k %w %v", "%k %w %v... I think", "someone said %k %w %v", "%k %w like, %v", "%k %w %v", "%k %w %v, maybe?", "%s once said %k %w %v"},
	CategoryDontKnow:  {"Sorry %n I don't know what %k is.", "%k? no idea %n.", "I'm not a genius, %n...", "Its best to ask a real person about %k.", "Not a clue.", "Don't you know, %n?"},
	CategoryNotNew:    {"but %k %w %v :(", "fool, %k %w %v :p", "%k already %w %v...", "Are you sure, %n? I am sure that %k %w %v!"},
	CategoryHeard:     {"%s told me about %k on %d", "I learned that on %d, and i think it was %s that told me it.", "I think it was %s who said that, way back on %d...", "%n: Back on %d, %s told me about %k"},
	CategoryConfirm:   {"Ok, %n", "Your wish is my command.", "Okay.", "Whatever...", "Gotcha.", "Ok.", "Right."},
	CategoryLoggedOut: {"You're a mild idiot %n, log in and try again", "I can't do that %n because you dont have the power!", "I would do what you ask, but you are not logged in!", "Oh dear, someone locked that. log in and try again %n."},
	CategoryLocked:    {"You can't edit that! The keyword '%k' has been locked against changes!"},
	CategoryForgot:    {"I forgot %k", "%k is gone from my mind, %n", "As you wish.", "It's history.", "Done."},
}

// Templates returns the template list for a category. The corpus is loaded
// once at init and never mutated; callers must not modify the returned slice.
func Templates(category string) []string {
	return replies[category]
}
