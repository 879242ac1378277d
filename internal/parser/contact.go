package parser

import "regexp"

const (
	ContactEmail    = "email"
	ContactPhone    = "phone"
	ContactGitHub   = "github"
	ContactLinkedIn = "linkedin"
)

type contactPattern struct {
	field string
	re    *regexp.Regexp
}

var contactPatterns = []contactPattern{
	{field: ContactEmail, re: regexp.MustCompile(`[\w.-]+@[\w.-]+`)},
	{field: ContactPhone, re: regexp.MustCompile(`(?:\+\d{1,3}[\s-]?)?\d{10,15}`)},
	{field: ContactGitHub, re: regexp.MustCompile(`(?i)github\.com/\S+`)},
	{field: ContactLinkedIn, re: regexp.MustCompile(`(?i)linkedin\.com/\S+`)},
}

// ExtractContact returns the first match of every contact pattern found in text.
// Fields without a match are absent from the result.
func ExtractContact(text string) map[string]string {
	contact := make(map[string]string)
	for _, p := range contactPatterns {
		if m := p.re.FindString(text); m != "" {
			contact[p.field] = m
		}
	}
	return contact
}
