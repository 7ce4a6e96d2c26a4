package expand

import "strings"

// Stop words to filter out when extracting candidate terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "how": true, "what": true, "i": true, "my": true,
	"can": true, "should": true, "issues": true, "issue": true, "about": true,
}

// compoundPhrases are known multi-word domain terms. Tokenization extracts
// these as single candidate terms before splitting on whitespace, since
// "color contrast" expands very differently from "color" and "contrast".
var compoundPhrases = []string{
	"color contrast",
	"contrast ratio",
	"screen reader",
	"keyboard navigation",
	"alt text",
	"focus indicator",
	"focus order",
	"live region",
	"color blindness",
	"assistive technology",
	"success criterion",
	"success criteria",
	"skip link",
	"form label",
	"heading structure",
}

// tokenize splits query text into candidate expansion terms: known compound
// phrases first, then remaining single words with stop words removed.
func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	var terms []string

	remainder := lowered
	for _, phrase := range compoundPhrases {
		if strings.Contains(remainder, phrase) {
			terms = append(terms, phrase)
			remainder = strings.ReplaceAll(remainder, phrase, " ")
		}
	}

	for _, word := range strings.Fields(remainder) {
		cleaned := strings.Trim(word, ".,!?;:'\"-()[]{}")
		if cleaned == "" || stopWords[cleaned] {
			continue
		}
		terms = append(terms, cleaned)
	}

	return terms
}
