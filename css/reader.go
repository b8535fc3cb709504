// Package css reads custom property declarations (--name: value) out of
// stylesheets. Everything else in the sheet is skipped.
package css

import (
	"bytes"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"sizekit/units"
)

// Property is a single custom property declaration.
type Property struct {
	Name     string // including leading "--"
	Value    string
	Selector string // selector list of enclosing ruleset
	Media    string // enclosing @media query, empty at top level
}

// Size interprets value as a plain CSS size.
func (p Property) Size() (units.Value, bool) {
	return units.ParseString(p.Value)
}

// Sheet holds custom properties in source order.
type Sheet struct {
	Properties []Property
	Warnings   []string
}

// Lookup returns last declaration of the property, the one winning in the
// cascade for identical selectors.
func (s *Sheet) Lookup(name string) (Property, bool) {
	for i := len(s.Properties) - 1; i >= 0; i-- {
		if s.Properties[i].Name == name {
			return s.Properties[i], true
		}
	}
	return Property{}, false
}

// Values returns name to value map of properties declared at top level
// (outside of @media) for the given selector. Later declarations override
// earlier ones.
func (s *Sheet) Values(selector string) map[string]string {
	out := make(map[string]string)
	for _, p := range s.Properties {
		if p.Media != "" || !hasSelector(p.Selector, selector) {
			continue
		}
		out[p.Name] = p.Value
	}
	return out
}

func hasSelector(list, selector string) bool {
	for s := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(s) == selector {
			return true
		}
	}
	return false
}

// Reader extracts custom properties from CSS.
type Reader struct {
	log *zap.Logger
}

// NewReader creates a new reader.
func NewReader(log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{log: log.Named("css-reader")}
}

// Read parses CSS text. The optional source parameter identifies what's
// being parsed (for debug logging).
func (r *Reader) Read(data []byte, source ...string) *Sheet {
	if len(source) > 0 && source[0] != "" {
		r.log.Debug("Reading CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}
	sheet := &Sheet{}
	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	r.readBlock(parser, sheet, "", false)
	return sheet
}

// ReadFrom is Read for an io.Reader.
func (r *Reader) ReadFrom(in io.Reader, source ...string) (*Sheet, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return r.Read(data, source...), nil
}

// readBlock consumes grammar until end of input or, when nested, until the
// end of enclosing @-rule.
func (r *Reader) readBlock(parser *css.Parser, sheet *Sheet, media string, nested bool) {
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); !nested && err != nil && err != io.EOF {
				r.log.Debug("CSS parse error", zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, err.Error())
			}
			return

		case css.EndAtRuleGrammar:
			if nested {
				return
			}

		case css.BeginAtRuleGrammar:
			if rule := string(data); rule == "@media" {
				query := joinTokens(parser.Values())
				r.readBlock(parser, sheet, query, true)
			} else {
				skipAtRuleBlock(parser)
				r.log.Debug("Skipping @-rule", zap.String("rule", rule))
			}

		case css.BeginRulesetGrammar:
			selector := strings.TrimSpace(string(data) + joinTokens(parser.Values()))
			r.readDeclarations(parser, sheet, selector, media)

		case css.CustomPropertyGrammar:
			// declaration outside of any ruleset
			sheet.Warnings = append(sheet.Warnings, "custom property outside of ruleset: "+string(data))
		}
	}
}

func (r *Reader) readDeclarations(parser *css.Parser, sheet *Sheet, selector, media string) {
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return

		case css.CustomPropertyGrammar:
			var b strings.Builder
			for _, t := range parser.Values() {
				b.Write(t.Data)
			}
			sheet.Properties = append(sheet.Properties, Property{
				Name:     strings.TrimSpace(string(data)),
				Value:    strings.TrimSpace(b.String()),
				Selector: selector,
				Media:    media,
			})
		}
	}
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func skipAtRuleBlock(parser *css.Parser) {
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

// joinTokens rebuilds text of tokens collapsing whitespace runs.
func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.Write(t.Data)
	}
	return b.String()
}
