// Package css provides the small stylesheet model the compiler works with:
// parse theme and user stylesheets into rules, fold one over the other and
// serialize the result for inlining into the output document.
package css

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single property: value pair. Order of declarations inside
// a rule is preserved - serialization must be deterministic.
type Declaration struct {
	Property string
	Value    string
}

// Rule is one ruleset with its selector list.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// Set replaces the value of property, appending a new declaration when the
// rule does not have it yet.
func (r *Rule) Set(property, value string) {
	for i := range r.Declarations {
		if r.Declarations[i].Property == property {
			r.Declarations[i].Value = value
			return
		}
	}
	r.Declarations = append(r.Declarations, Declaration{Property: property, Value: value})
}

// Item is one top-level stylesheet entry - a plain rule, an @media block with
// nested rules, or an @-rule the model does not interpret. Exactly one field
// is set.
type Item struct {
	Rule   *Rule
	Media  *MediaBlock
	AtRule *AtRuleBlock
}

// MediaBlock keeps an @media condition with its nested rules.
type MediaBlock struct {
	Condition string
	Rules     []Rule
}

// AtRuleBlock keeps an @-rule the model does not interpret (@keyframes,
// @font-face, @import and the like) so it survives a parse and serialize
// round trip. Name includes the leading '@'. Statement rules have no block
// and serialize with a trailing semicolon.
type AtRuleBlock struct {
	Name         string
	Prelude      string
	Statement    bool
	Declarations []Declaration
	Rules        []Rule
}

// Stylesheet is an ordered sequence of items.
type Stylesheet struct {
	Items    []Item
	Warnings []string
}

// Append adds a rule at the end of the sheet.
func (s *Stylesheet) Append(r Rule) {
	s.Items = append(s.Items, Item{Rule: &r})
}

// Merge appends every item of other after the receiver's items. Later rules
// win in CSS cascade, so merged sheet behaves as "other overrides s".
func (s *Stylesheet) Merge(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Items = append(s.Items, other.Items...)
	s.Warnings = append(s.Warnings, other.Warnings...)
}

// WriteTo serializes the stylesheet.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := range s.Items {
		var (
			n   int
			err error
		)
		switch {
		case s.Items[i].Rule != nil:
			n, err = writeRule(w, s.Items[i].Rule, "")
		case s.Items[i].Media != nil:
			n, err = writeMediaBlock(w, s.Items[i].Media)
		case s.Items[i].AtRule != nil:
			n, err = writeAtRuleBlock(w, s.Items[i].AtRule)
		}
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Stylesheet) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

func writeRule(w io.Writer, rule *Rule, indent string) (int, error) {
	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString(strings.Join(rule.Selectors, ", "))
	sb.WriteString(" {\n")
	for _, d := range rule.Declarations {
		fmt.Fprintf(&sb, "%s  %s: %s;\n", indent, d.Property, d.Value)
	}
	sb.WriteString(indent)
	sb.WriteString("}\n")
	return w.Write([]byte(sb.String()))
}

func writeMediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	total, err := fmt.Fprintf(w, "@media %s {\n", mb.Condition)
	if err != nil {
		return total, err
	}
	for i := range mb.Rules {
		n, err := writeRule(w, &mb.Rules[i], "  ")
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err := io.WriteString(w, "}\n")
	return total + n, err
}

func writeAtRuleBlock(w io.Writer, ab *AtRuleBlock) (int, error) {
	var sb strings.Builder
	sb.WriteString(ab.Name)
	if ab.Prelude != "" {
		sb.WriteByte(' ')
		sb.WriteString(ab.Prelude)
	}
	if ab.Statement {
		sb.WriteString(";\n")
		return w.Write([]byte(sb.String()))
	}
	sb.WriteString(" {\n")
	for _, d := range ab.Declarations {
		fmt.Fprintf(&sb, "  %s: %s;\n", d.Property, d.Value)
	}
	total, err := w.Write([]byte(sb.String()))
	if err != nil {
		return total, err
	}
	for i := range ab.Rules {
		n, err := writeRule(w, &ab.Rules[i], "  ")
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err := io.WriteString(w, "}\n")
	return total + n, err
}
