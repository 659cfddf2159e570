package validate

import "testing"

func TestEmail(t *testing.T) {
	good := []string{"claudia@craftconnect.test", "max.muster+tag@example.de"}
	bad := []string{"", "   ", "nope", "a@b", "@example.de"}
	for _, s := range good {
		if _, ok := Email(s); !ok {
			t.Errorf("Email(%q) should pass", s)
		}
	}
	for _, s := range bad {
		if _, ok := Email(s); ok {
			t.Errorf("Email(%q) should fail", s)
		}
	}
}

func TestPostalCode(t *testing.T) {
	if _, ok := PostalCode("10115"); !ok {
		t.Error("valid PLZ rejected")
	}
	for _, s := range []string{"1011", "101155", "1011a", "", " 10115 x"} {
		if _, ok := PostalCode(s); ok {
			t.Errorf("PostalCode(%q) should fail", s)
		}
	}
	// Surrounding whitespace is forgiven.
	if _, ok := PostalCode(" 10115 "); !ok {
		t.Error("trimmed PLZ should pass")
	}
}

func TestContent(t *testing.T) {
	if s, ok := Content("  Hallo  ", 100); !ok || s != "Hallo" {
		t.Errorf("Content should trim, got %q %v", s, ok)
	}
	if _, ok := Content("   ", 100); ok {
		t.Error("whitespace-only content should fail")
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if _, ok := Content(string(long), 100); ok {
		t.Error("over-limit content should fail")
	}
}

func TestCategoryAndUrgency(t *testing.T) {
	if _, ok := Category("Sanitär"); !ok {
		t.Error("known category rejected")
	}
	if _, ok := Category("Malerei"); ok {
		t.Error("unknown category accepted")
	}
	if _, ok := Urgency("urgent"); !ok {
		t.Error("known urgency rejected")
	}
	if _, ok := Urgency("sofort"); ok {
		t.Error("unknown urgency accepted")
	}
}

func TestPassword(t *testing.T) {
	good := []string{"Passw0rd!", "abcDEF123"}
	bad := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere", ""}
	for _, s := range good {
		if !Password(s) {
			t.Errorf("Password(%q) should pass", s)
		}
	}
	for _, s := range bad {
		if Password(s) {
			t.Errorf("Password(%q) should fail", s)
		}
	}
}

func TestID(t *testing.T) {
	for _, s := range []string{"job-bad-001", "u_hans", "A1"} {
		if _, ok := ID(s); !ok {
			t.Errorf("ID(%q) should pass", s)
		}
	}
	for _, s := range []string{"", "has space", "семантика", "x'); DROP TABLE users;--"} {
		if _, ok := ID(s); ok {
			t.Errorf("ID(%q) should fail", s)
		}
	}
}
