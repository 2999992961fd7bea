// Package extractor selects and runs format parsers over raw statement
// text. Institutions register in a fixed order; the first parser whose
// CanParse accepts the text wins.
package extractor

import (
	"github.com/dsil-design/joot-statements/extractor/amex"
	"github.com/dsil-design/joot-statements/extractor/bangkokbank"
	"github.com/dsil-design/joot-statements/extractor/common"
	"github.com/dsil-design/joot-statements/extractor/kasikorn"
	"github.com/dsil-design/joot-statements/pkg/logger"
)

// Parser is implemented by every institution-specific statement parser.
type Parser interface {
	// Key is the stable short name recorded on ParseResult.Parser.
	Key() string
	// Identifiers is the ordered list of substrings CanParse looks for.
	Identifiers() []string
	// CanParse reports whether the text looks like this institution's
	// statement. It is the mandatory precondition for Parse.
	CanParse(text string) bool
	// Parse converts raw statement text into a ParseResult.
	Parse(text string, opts common.Options) common.ParseResult
}

// Parsers returns the registry in detection order. Card issuers come
// before banks because card statements frequently mention the settlement
// bank in footers.
func Parsers() []Parser {
	return []Parser{
		amex.New(),
		kasikorn.New(),
		bangkokbank.New(),
	}
}

// Detect returns the first registered parser that accepts the text.
func Detect(text string) (Parser, bool) {
	for _, p := range Parsers() {
		if p.CanParse(text) {
			return p, true
		}
	}
	return nil, false
}

// Parse detects the institution and runs its parser. Unrecognized text
// yields a failed result rather than an error: downstream layers treat
// the two identically.
func Parse(text string, opts common.Options, log logger.Logger) common.ParseResult {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("extractor")

	parser, ok := Detect(text)
	if !ok {
		log.Warn("no registered parser recognized the statement text")
		return common.FailedResult("", "unrecognized statement format")
	}

	log.Debugf("detected institution %s", parser.Key())
	result := parser.Parse(text, opts)
	log.Infof("parsed %s statement: %d transactions, confidence %d",
		parser.Key(), len(result.Transactions), result.Confidence)
	for _, w := range result.Warnings {
		log.Debugf("parse warning: %s", w)
	}
	return result
}
