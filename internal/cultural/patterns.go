package cultural

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Language is the greeting-pattern classification axis.
type Language string

const (
	LanguageMalayalam Language = "malayalam"
	LanguageEnglish   Language = "english"
	LanguageMixed     Language = "mixed"
	LanguageUnknown   Language = "unknown"
)

type Formality string

const (
	FormalityCasual   Formality = "casual"
	FormalityFormal   Formality = "formal"
	FormalityBusiness Formality = "business"
)

type Dialect string

const (
	DialectNorthern Dialect = "northern"
	DialectCentral  Dialect = "central"
	DialectSouthern Dialect = "southern"
	DialectUnknown  Dialect = "unknown"
)

// Pattern is one phrase entry in the bank. Phrases are matched as
// case-insensitive substrings of the transcript.
type Pattern struct {
	Phrase    string    `yaml:"phrase"`
	Formality Formality `yaml:"formality,omitempty"`
	Dialect   Dialect   `yaml:"dialect,omitempty"`
}

// LanguageBank groups patterns for one language.
type LanguageBank struct {
	Greetings      []Pattern `yaml:"greetings"`
	MachinePhrases []Pattern `yaml:"machine_phrases"`
}

// Bank is the full pattern database. It is immutable after load and safe
// for concurrent use.
type Bank struct {
	Languages map[Language]LanguageBank `yaml:"languages"`
}

// LoadBank reads a YAML pattern database. The file is externally supplied
// configuration; an operator can extend dialect coverage without a deploy.
func LoadBank(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cultural: read pattern db: %w", err)
	}
	var b Bank
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("cultural: parse pattern db: %w", err)
	}
	if len(b.Languages) == 0 {
		return nil, fmt.Errorf("cultural: pattern db %q defines no languages", path)
	}
	return &b, nil
}

// DefaultBank returns the built-in Malayalam/English bank used when no
// pattern database path is configured.
func DefaultBank() *Bank {
	return &Bank{Languages: map[Language]LanguageBank{
		LanguageMalayalam: {
			Greetings: []Pattern{
				{Phrase: "namaskaram", Formality: FormalityFormal, Dialect: DialectCentral},
				{Phrase: "namaskkaram", Formality: FormalityFormal, Dialect: DialectCentral},
				{Phrase: "sukhamano", Formality: FormalityCasual, Dialect: DialectCentral},
				{Phrase: "entha vishesham", Formality: FormalityCasual, Dialect: DialectSouthern},
				{Phrase: "enthund vishesham", Formality: FormalityCasual, Dialect: DialectNorthern},
				{Phrase: "parayu", Formality: FormalityCasual, Dialect: DialectNorthern},
				{Phrase: "aara vilikkunne", Formality: FormalityCasual, Dialect: DialectSouthern},
			},
			MachinePhrases: []Pattern{
				{Phrase: "sandesham rekhappeduthuka"},
				{Phrase: "beep kettatinu shesham"},
				{Phrase: "ippol lobhyamalla"},
				{Phrase: "pinneed vilikkuka"},
			},
		},
		LanguageEnglish: {
			Greetings: []Pattern{
				{Phrase: "hello", Formality: FormalityCasual},
				{Phrase: "good morning", Formality: FormalityFormal},
				{Phrase: "good afternoon", Formality: FormalityFormal},
				{Phrase: "good evening", Formality: FormalityFormal},
				{Phrase: "this is", Formality: FormalityBusiness},
				{Phrase: "speaking", Formality: FormalityBusiness},
			},
			MachinePhrases: []Pattern{
				{Phrase: "leave a message"},
				{Phrase: "after the beep"},
				{Phrase: "after the tone"},
				{Phrase: "not available"},
				{Phrase: "voicemail"},
				{Phrase: "cannot take your call"},
				{Phrase: "mailbox"},
			},
		},
	}}
}
