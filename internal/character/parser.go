// Package character reads typed values out of a JoinRPG character record.
package character

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
)

// Number is a parsed integer field value. Valid is false when the value was
// missing or could not be parsed; callers must check it.
type Number struct {
	Int   int
	Valid bool
}

// IsNaN reports whether the value is the not-a-number sentinel.
func (n Number) IsNaN() bool { return !n.Valid }

// Parser gives typed access to the fields of one character. It never
// modifies the record or the metadata.
type Parser struct {
	character *join.CharacterInfo
	metadata  *join.Metadata
}

func NewParser(c *join.CharacterInfo, m *join.Metadata) *Parser {
	return &Parser{character: c, metadata: m}
}

func (p *Parser) CharacterID() int { return p.character.CharacterID }

func (p *Parser) IsActive() bool { return p.character.IsActive }

func (p *Parser) InGame() bool { return p.character.InGame }

// Character returns the underlying record.
func (p *Parser) Character() *join.CharacterInfo { return p.character }

func (p *Parser) field(id int) *join.FieldInfo {
	for i := range p.character.Fields {
		if p.character.Fields[i].ProjectFieldID == id {
			return &p.character.Fields[i]
		}
	}
	return nil
}

// FieldName resolves a field name from metadata, "" when unknown.
func (p *Parser) FieldName(id int) string {
	if f := p.metadata.Field(id); f != nil {
		return f.FieldName
	}
	return ""
}

// StringValue returns the trimmed display string of a field. With convert
// set the raw value is treated as a variant id and translated to the
// variant's programmatic value from metadata.
func (p *Parser) StringValue(id int, convert bool) string {
	f := p.field(id)
	if f == nil {
		return ""
	}
	if !convert {
		return norm.NFC.String(strings.TrimSpace(f.DisplayString))
	}
	variantID, err := strconv.Atoi(strings.TrimSpace(f.Value))
	if err != nil {
		return ""
	}
	v := p.metadata.Field(id).Variant(variantID)
	if v == nil {
		return ""
	}
	return norm.NFC.String(strings.TrimSpace(v.ProgrammaticValue))
}

// NumberValue parses the raw value as an integer.
func (p *Parser) NumberValue(id int) Number {
	f := p.field(id)
	if f == nil {
		return Number{}
	}
	return parseNumber(f.Value)
}

// BoolValue is true iff the raw value is the checkbox token "on".
func (p *Parser) BoolValue(id int) bool {
	f := p.field(id)
	return f != nil && f.Value == "on"
}

// NumberListValue splits the raw value on commas and parses every element.
// Unparseable elements are kept as NaN so the caller can decide.
func (p *Parser) NumberListValue(id int) []Number {
	f := p.field(id)
	if f == nil || strings.TrimSpace(f.Value) == "" {
		return []Number{}
	}
	parts := strings.Split(f.Value, ",")
	out := make([]Number, 0, len(parts))
	for _, part := range parts {
		out = append(out, parseNumber(part))
	}
	return out
}

// PartOfGroup reports group membership, including inherited groups.
func (p *Parser) PartOfGroup(groupID int) bool {
	for _, g := range p.character.AllGroups {
		if g.CharacterGroupID == groupID {
			return true
		}
	}
	for _, g := range p.character.Groups {
		if g.CharacterGroupID == groupID {
			return true
		}
	}
	return false
}

// HasFieldValue reports whether a multi-select field has the variant selected.
func (p *Parser) HasFieldValue(id int, variant int) bool {
	f := p.field(id)
	if f == nil {
		return false
	}
	token := strconv.Itoa(variant)
	for _, v := range strings.Split(f.Value, ",") {
		if strings.TrimSpace(v) == token {
			return true
		}
	}
	return false
}

func parseNumber(s string) Number {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Number{}
	}
	return Number{Int: n, Valid: true}
}
