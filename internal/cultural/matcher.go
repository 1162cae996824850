package cultural

import (
	"fmt"
	"sort"
	"strings"
)

// Match is the pattern-matching outcome for one transcript. It feeds the
// detection fuser as auxiliary evidence and the campaign manager as the
// basis for message-variant selection.
type Match struct {
	// GreetingPattern classifies which language's greeting bank matched.
	// Mixed means greetings from more than one language matched.
	GreetingPattern Language

	// MalayalamGreeting is true when any Malayalam greeting matched.
	MalayalamGreeting bool

	Formality Formality
	Dialect   Dialect

	// Markers are the cultural-marker tags, in match order.
	Markers []string

	// MachinePhrases are matched answering-machine script phrases.
	MachinePhrases []string
}

// GreetingMatched reports whether any recognized-language greeting fired.
func (m Match) GreetingMatched() bool {
	return m.GreetingPattern != LanguageUnknown
}

// Match classifies a transcript against the bank. An empty transcript
// yields the zero outcome (unknown pattern, no markers).
func (b *Bank) Match(transcript string) Match {
	out := Match{
		GreetingPattern: LanguageUnknown,
		Formality:       FormalityCasual,
		Dialect:         DialectUnknown,
	}
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" || b == nil {
		return out
	}

	var matchedLangs []Language
	for _, lang := range orderedLanguages(b) {
		bank := b.Languages[lang]
		langMatched := false
		for _, p := range bank.Greetings {
			if p.Phrase == "" || !strings.Contains(text, strings.ToLower(p.Phrase)) {
				continue
			}
			langMatched = true
			out.Markers = append(out.Markers, fmt.Sprintf("greeting:%s:%s", lang, p.Phrase))
			if p.Formality != "" && rankFormality(p.Formality) > rankFormality(out.Formality) {
				out.Formality = p.Formality
			}
			if p.Dialect != "" && out.Dialect == DialectUnknown {
				out.Dialect = p.Dialect
			}
		}
		if langMatched {
			matchedLangs = append(matchedLangs, lang)
		}
		for _, p := range bank.MachinePhrases {
			if p.Phrase == "" || !strings.Contains(text, strings.ToLower(p.Phrase)) {
				continue
			}
			out.MachinePhrases = append(out.MachinePhrases, p.Phrase)
			out.Markers = append(out.Markers, fmt.Sprintf("machine:%s:%s", lang, p.Phrase))
		}
	}

	switch len(matchedLangs) {
	case 0:
		out.GreetingPattern = LanguageUnknown
	case 1:
		out.GreetingPattern = matchedLangs[0]
	default:
		out.GreetingPattern = LanguageMixed
	}
	for _, l := range matchedLangs {
		if l == LanguageMalayalam {
			out.MalayalamGreeting = true
		}
	}
	return out
}

// orderedLanguages yields a stable iteration order so Markers are
// deterministic across runs.
func orderedLanguages(b *Bank) []Language {
	ordered := []Language{LanguageMalayalam, LanguageEnglish}
	var out []Language
	for _, l := range ordered {
		if _, ok := b.Languages[l]; ok {
			out = append(out, l)
		}
	}
	var extra []string
	for l := range b.Languages {
		if l != LanguageMalayalam && l != LanguageEnglish {
			extra = append(extra, string(l))
		}
	}
	sort.Strings(extra)
	for _, l := range extra {
		out = append(out, Language(l))
	}
	return out
}

func rankFormality(f Formality) int {
	switch f {
	case FormalityBusiness:
		return 2
	case FormalityFormal:
		return 1
	default:
		return 0
	}
}
