// package tokenize splits free text into word tokens. Both tokenizers handle
// multi-byte scripts; neither splits on whitespace alone.
package tokenize

import (
	"fmt"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/go-ego/gse"
)

const (
	// UnicodeKind selects Unicode word-boundary segmentation. It splits
	// unspaced Han text into single characters.
	UnicodeKind = "unicode"
	// DictionaryKind selects dictionary segmentation, which keeps
	// multi-character Chinese words together. It is the default.
	DictionaryKind = "dictionary"
)

// Tokenizer splits text into tokens. Tokens may include punctuation and
// whitespace segments; callers filter what they do not want.
type Tokenizer interface {
	Tokenize(text string) []string
}

// New returns the tokenizer registered under kind. An empty kind selects
// the dictionary tokenizer.
func New(kind string) (Tokenizer, error) {
	switch kind {
	case UnicodeKind:
		return Unicode{}, nil
	case DictionaryKind, "":
		return NewDictionary()
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", kind)
	}
}

// Unicode segments text on the word boundaries of Unicode Standard Annex #29.
type Unicode struct{}

// Tokenize implements the Tokenizer interface.
func (Unicode) Tokenize(text string) []string {
	var tokens []string
	segments := words.FromString(text)
	for segments.Next() {
		tokens = append(tokens, segments.Value())
	}
	return tokens
}

// Dictionary segments text with a jieba-style prefix dictionary and HMM
// fallback, which keeps multi-character Chinese words together.
type Dictionary struct {
	seg gse.Segmenter
}

// NewDictionary loads the simplified Chinese dictionary compiled into the
// binary, so no dictionary file has to exist at run time. Loading takes a
// moment, so build one Dictionary per run.
func NewDictionary() (*Dictionary, error) {
	d := &Dictionary{}
	d.seg.SkipLog = true
	if err := d.seg.LoadDictEmbed(); err != nil {
		return nil, fmt.Errorf("could not load segmentation dictionary: %s", err.Error())
	}
	return d, nil
}

// Tokenize implements the Tokenizer interface.
func (d *Dictionary) Tokenize(text string) []string {
	return d.seg.Cut(text, true)
}
