package infobot

import (
	"testing"
)

func TestClassify_AddressingLevels(t *testing.T) {
	cases := []struct {
		in    string
		level AddressingLevel
	}{
		{"sky is blue", NotAddressed},
		{"bot: sky is blue", AddressedByName},
		{"bot, sky is blue", AddressedByName},
		{"bot sky is blue", AddressedByName},
		{"no bot: sky is blue", AddressedByNameCorrection},
		{"nobot: sky is blue", AddressedByNameCorrection},
		{"robot: sky is blue", NotAddressed},
	}
	for _, c := range cases {
		got := Classify("bot", c.in)
		if got.Level != c.level {
			t.Errorf("Classify(%q).Level = %v, want %v", c.in, got.Level, c.level)
		}
	}
}

func TestClassify_QuestionPrefixRewrite(t *testing.T) {
	c := Classify("bot", "what is the sky")
	if c.Text != "the sky?" {
		t.Errorf("expected rewrite to %q, got %q", "the sky?", c.Text)
	}
	if !c.DirectQuestion {
		t.Errorf("rewrite should mark a direct question")
	}
	// Trailing punctuation is irrelevant
	c = Classify("bot", "who was shakespeare?!")
	if c.Text != "shakespeare?" || !c.DirectQuestion {
		t.Errorf("unexpected rewrite: %+v", c)
	}
}

func TestClassify_Provenance(t *testing.T) {
	c := Classify("bot", "who told you about the sky?")
	if c.Intent != IntentProvenance || c.Key != "the sky" {
		t.Errorf("unexpected classification: %+v", c)
	}
}

func TestClassify_ForgetOnlyWhenAddressedByName(t *testing.T) {
	c := Classify("bot", "bot: forget sky")
	if c.Intent != IntentForget || c.Key != "sky" {
		t.Errorf("addressed forget not recognised: %+v", c)
	}
	// Unaddressed "forget" is not a forget command
	c = Classify("bot", "forget sky")
	if c.Intent == IntentForget {
		t.Errorf("unaddressed forget should not classify as forget")
	}
	// A correction prefix does not qualify either
	c = Classify("bot", "no bot: forget sky")
	if c.Intent == IntentForget {
		t.Errorf("correction-addressed forget should not classify as forget")
	}
}

func TestClassify_Status(t *testing.T) {
	c := Classify("bot", "bot: status?")
	if c.Intent != IntentStatus {
		t.Errorf("expected status intent, got %+v", c)
	}
	c = Classify("bot", "status")
	if c.Intent == IntentStatus {
		t.Errorf("unaddressed status should not classify as status")
	}
}

func TestClassify_Literal(t *testing.T) {
	c := Classify("bot", "literal sky")
	if c.Intent != IntentLiteral || c.Key != "sky" {
		t.Errorf("unexpected classification: %+v", c)
	}
}

func TestClassify_Learn(t *testing.T) {
	cases := []struct {
		in               string
		key, word, value string
	}{
		{"sky is blue", "sky", "is", "blue"},
		{"cats are fluffy", "cats", "are", "fluffy"},
		{"the beatles =was= a band", "the beatles", "was", "a band"},
		{"pigs can't fly", "pigs", "can't", "fly"},
	}
	for _, c := range cases {
		got := Classify("bot", c.in)
		if got.Intent != IntentLearn {
			t.Errorf("Classify(%q).Intent = %v, want learn", c.in, got.Intent)
			continue
		}
		if got.Key != c.key || got.Word != c.word || got.Value != c.value {
			t.Errorf("Classify(%q) captures = %q/%q/%q, want %q/%q/%q",
				c.in, got.Key, got.Word, got.Value, c.key, c.word, c.value)
		}
	}
}

func TestClassify_FallbackQuestion(t *testing.T) {
	c := Classify("bot", "the sky?")
	if c.Intent != IntentQuestion || c.Key != "the sky" {
		t.Errorf("unexpected classification: %+v", c)
	}
	if !c.DirectQuestion {
		t.Errorf("trailing ? should mark a direct question")
	}
	c = Classify("bot", "hello everyone")
	if c.Intent != IntentQuestion || c.DirectQuestion {
		t.Errorf("plain text should be a non-direct question: %+v", c)
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// "who told you about x" contains no copula so it can only be
	// provenance, but "forget" beats learn when both could fire.
	c := Classify("bot", "bot: forget sky is blue")
	if c.Intent != IntentForget || c.Key != "sky is blue" {
		t.Errorf("forget should win over learn: %+v", c)
	}
}

func TestRemovePunct(t *testing.T) {
	if got := RemovePunct("sky?!., "); got != "sky" {
		t.Errorf("RemovePunct = %q", got)
	}
	if got := RemovePunct("???"); got != "" {
		t.Errorf("RemovePunct on all-punct = %q", got)
	}
}
