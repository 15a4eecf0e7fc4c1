package store

import (
	"regexp"
	"strings"
)

// wordRegex matches word tokens of two or more characters across any
// script, not just Latin. Single-char tokens carry almost no lexical
// signal and are dropped.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize splits text into lowercase word tokens.
func Tokenize(text string) []string {
	return wordRegex.FindAllString(strings.ToLower(text), -1)
}

// Terms expands text into the unigram and bigram terms indexed by the
// keyword engine. Bigrams are space-joined adjacent token pairs.
func Terms(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
