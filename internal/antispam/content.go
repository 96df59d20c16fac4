package antispam

import "strings"

// Deny-list of keywords that mark a submission as spam wherever they appear.
var spamKeywords = []string{
	"viagra", "casino", "lottery", "bitcoin", "crypto",
	"investment", "loan", "debt", "mortgage", "insurance",
	"seo services", "link building", "backlinks",
}

// Deny-list of throwaway email providers.
var disposableDomains = map[string]struct{}{
	"10minutemail.com": {},
	"tempmail.org":     {},
	"guerrillamail.com": {},
	"mailinator.com":   {},
	"throwaway.email":  {},
	"temp-mail.org":    {},
}

const (
	maxLinks       = 2
	repeatMinLen   = 3   // only words longer than this count toward repetition
	repeatMaxRatio = 0.3 // one word above 30% of all tokens is spam
)

// spamContent reports whether free text looks machine-generated: a deny-listed
// keyword, more than maxLinks URLs, or one word dominating the text.
func spamContent(text string) bool {
	lower := strings.ToLower(text)

	for _, keyword := range spamKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	links := strings.Count(text, "http://") + strings.Count(text, "https://")
	if links > maxLinks {
		return true
	}

	return repeatedWord(text)
}

// repeatedWord checks whether any single word makes up more than
// repeatMaxRatio of the text. Words are compared by their lowercased
// alphabetic form; the ratio denominator is the total token count, short
// and symbol-only tokens included.
func repeatedWord(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return false
	}

	counts := make(map[string]int)
	for _, token := range tokens {
		word := foldWord(token)
		if len(word) > repeatMinLen {
			counts[word]++
		}
	}

	total := float64(len(tokens))
	for _, count := range counts {
		if float64(count)/total > repeatMaxRatio {
			return true
		}
	}

	return false
}

// foldWord lowercases a token and strips everything outside a-z.
func foldWord(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// disposableDomain reports whether the email's domain is on the throwaway
// provider deny-list.
func disposableDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	_, blocked := disposableDomains[domain]
	return blocked
}
