package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS text into the Stylesheet model.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text. The optional source parameter identifies what is
// being parsed (for debug logging). Parsing never fails - constructs the
// model cannot represent are recorded as warnings and dropped, which is what
// we want for user-provided stylesheets.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	for {
		gt, _, gdata := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// end of input or hard error
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, err.Error())
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := string(gdata)
			if atRule == "@media" {
				mb := &MediaBlock{Condition: tokensToString(parser.Values())}
				p.parseMediaRules(parser, mb, sheet)
				sheet.Items = append(sheet.Items, Item{Media: mb})
			} else {
				// keep @keyframes, @font-face and friends intact so they
				// survive into the output document
				ab := &AtRuleBlock{Name: atRule, Prelude: tokensToString(parser.Values())}
				p.parseAtRuleContents(parser, ab, sheet)
				sheet.Items = append(sheet.Items, Item{AtRule: ab})
			}

		case css.AtRuleGrammar:
			sheet.Items = append(sheet.Items, Item{AtRule: &AtRuleBlock{
				Name:      string(gdata),
				Prelude:   tokensToString(parser.Values()),
				Statement: true,
			}})

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			rule := Rule{Selectors: splitSelectors(gdata, parser.Values())}
			p.parseDeclarations(parser, &rule)
			sheet.Items = append(sheet.Items, Item{Rule: &rule})
		}
	}
}

// parseMediaRules consumes rulesets nested in an @media block until its end.
func (p *Parser) parseMediaRules(parser *css.Parser, mb *MediaBlock, sheet *Stylesheet) {
	for {
		gt, _, gdata := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return
		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			rule := Rule{Selectors: splitSelectors(gdata, parser.Values())}
			p.parseDeclarations(parser, &rule)
			mb.Rules = append(mb.Rules, rule)
		}
	}
}

// parseDeclarations collects declarations of one ruleset until its end,
// preserving source order.
func (p *Parser) parseDeclarations(parser *css.Parser, rule *Rule) {
	for {
		gt, _, gdata := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			rule.Declarations = append(rule.Declarations, Declaration{
				Property: string(gdata),
				Value:    tokensToString(parser.Values()),
			})
		}
	}
}

// parseAtRuleContents collects declarations and nested rulesets of an @-rule
// block until its end. Covers both declaration-bodied rules (@font-face) and
// ruleset-bodied ones (@keyframes). At-rules nested deeper than one level are
// not modeled and get dropped with a warning.
func (p *Parser) parseAtRuleContents(parser *css.Parser, ab *AtRuleBlock, sheet *Stylesheet) {
	for {
		gt, _, gdata := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			ab.Declarations = append(ab.Declarations, Declaration{
				Property: string(gdata),
				Value:    tokensToString(parser.Values()),
			})
		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			rule := Rule{Selectors: splitSelectors(gdata, parser.Values())}
			p.parseDeclarations(parser, &rule)
			ab.Rules = append(ab.Rules, rule)
		case css.BeginAtRuleGrammar:
			p.log.Debug("Dropping nested @-rule", zap.String("rule", string(gdata)))
			sheet.Warnings = append(sheet.Warnings, "dropped nested "+string(gdata))
			p.skipAtRuleBlock(parser)
		}
	}
}

// skipAtRuleBlock consumes tokens until the end of an @-rule block we do not
// model, keeping nesting balanced.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func tokensToString(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// splitSelectors builds the selector list from ruleset preamble tokens,
// splitting grouped selectors on commas.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for _, s := range strings.Split(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}
