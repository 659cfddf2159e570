package validate

import (
	"regexp"
	"strings"
)

var (
	// German PLZ: exactly 5 digits
	rePLZ   = regexp.MustCompile(`^[0-9]{5}$`)
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Job categories as offered in the posting form.
var Categories = []string{
	"Elektro", "Sanitär", "Heizung", "Bau", "Garten", "Reinigung", "Umzug", "Sonstiges",
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a resource identifier (job/application/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Content validates free text (message bodies, descriptions): non-empty
// after trimming, bounded to keep abuse out of the database.
func Content(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > max {
		return s, false
	}
	return s, true
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePLZ.MatchString(s)
}

func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if s == c {
			return s, true
		}
	}
	return s, false
}

func Urgency(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "low", "medium", "high", "urgent":
		return s, true
	}
	return s, false
}

// Password enforces the same policy as registration UI: 8-72 chars with
// mixed character classes. 72 is bcrypt's input limit.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
