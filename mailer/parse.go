package mailer

import (
	"regexp"
	"strings"
)

const (
	// DefaultGreeting opens an email when the text has no greeting of its own
	DefaultGreeting = "Greetings from Helium,"
	// DefaultSignoff closes an email when the text has no signoff of its own
	DefaultSignoff = "Thanks,<br>The Helium Team"
)

var (
	titleLine       = regexp.MustCompile(`(?i)^[^:]+:.*?\n\n?`)
	blankLines      = regexp.MustCompile(`\n\n+`)
	newLines        = regexp.MustCompile(`\n+`)
	greetingOpeners = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(greetings|dear|hello|hi)[\s,]`),
		regexp.MustCompile(`(?i)^(greetings from|dear|hello|hi)`),
	}
	greetingsFrom   = regexp.MustCompile(`(?i)^greetings from `)
	sentenceBreak   = regexp.MustCompile(`[.!?]\s`)
	signoffOpener   = regexp.MustCompile(`(?i)^(thanks|thank you|best regards|sincerely|regards|yours truly)`)
	teamLine        = regexp.MustCompile(`(?i)(helium team|team|helium)`)
	inlineTeam      = regexp.MustCompile(`(?is)(thanks.*?)\s*(the helium team)`)
	bareNameSignoff = regexp.MustCompile(`^[A-Z][a-z]+,\s*$`)
)

// ParsedEmail is free-form email text split into its template slots
type ParsedEmail struct {
	Greeting   string
	Paragraphs []string
	Signoff    string
}

// ParseEmailText splits text into a greeting, body paragraphs and a signoff.
// Irregular input degrades to the default greeting and signoff; it never fails.
func ParseEmailText(text string) ParsedEmail {
	parsed := ParsedEmail{
		Greeting:   DefaultGreeting,
		Paragraphs: []string{},
		Signoff:    DefaultSignoff,
	}
	if strings.TrimSpace(text) == "" {
		return parsed
	}

	cleaned := strings.TrimSpace(titleLine.ReplaceAllString(text, ""))
	paragraphs := splitParagraphs(cleaned, blankLines)
	if len(paragraphs) == 0 {
		paragraphs = splitParagraphs(cleaned, newLines)
	}

	greetingAt := -1
	for i, p := range paragraphs {
		if matchesAny(greetingOpeners, p) {
			greetingAt = i
			break
		}
	}
	if greetingAt != -1 {
		parsed.Greeting = greetingsFrom.ReplaceAllString(paragraphs[greetingAt], "Greetings from ")
		paragraphs = removeAt(paragraphs, greetingAt)
	} else if len(paragraphs) > 0 {
		first := paragraphs[0]
		if len(first) < 100 && !sentenceBreak.MatchString(first) {
			parsed.Greeting = first
			paragraphs = paragraphs[1:]
		}
	}

	signoffAt := -1
	for i, p := range paragraphs {
		if signoffOpener.MatchString(p) {
			signoffAt = i
			break
		}
	}
	if signoffAt != -1 {
		line := paragraphs[signoffAt]
		switch {
		case signoffAt+1 < len(paragraphs) && teamLine.MatchString(paragraphs[signoffAt+1]):
			parsed.Signoff = line + "<br>" + paragraphs[signoffAt+1]
			paragraphs = removeAt(removeAt(paragraphs, signoffAt), signoffAt)
		default:
			if m := inlineTeam.FindStringSubmatch(line); m != nil {
				parsed.Signoff = strings.TrimSpace(m[1]) + "<br>" + m[2]
			} else {
				parsed.Signoff = line
			}
			paragraphs = removeAt(paragraphs, signoffAt)
		}
	} else if len(paragraphs) > 0 {
		last := paragraphs[len(paragraphs)-1]
		if len(last) < 100 && (signoffOpener.MatchString(last) || bareNameSignoff.MatchString(last)) {
			parsed.Signoff = last
			paragraphs = paragraphs[:len(paragraphs)-1]
		}
	}

	parsed.Paragraphs = append(parsed.Paragraphs, paragraphs...)
	return parsed
}

func splitParagraphs(text string, sep *regexp.Regexp) []string {
	var out []string
	for _, p := range sep.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func removeAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
