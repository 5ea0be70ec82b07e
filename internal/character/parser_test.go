package character

import (
	"testing"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
)

func testParser() *Parser {
	ch := &join.CharacterInfo{
		CharacterID: 20118,
		IsActive:    true,
		InGame:      true,
		Groups:      []join.GroupInfo{{CharacterGroupID: 8492}},
		AllGroups:   []join.GroupInfo{{CharacterGroupID: 9906}},
		Fields: []join.FieldInfo{
			{ProjectFieldID: 1, Value: "raw", DisplayString: "  Ivan  "},
			{ProjectFieldID: 2, Value: "42"},
			{ProjectFieldID: 3, Value: "forty"},
			{ProjectFieldID: 4, Value: "on"},
			{ProjectFieldID: 5, Value: "off"},
			{ProjectFieldID: 6, Value: "1,2,3"},
			{ProjectFieldID: 7, Value: "1,x,3"},
			{ProjectFieldID: 8, Value: "3443,3445"},
			{ProjectFieldID: 2787, Value: "5001", DisplayString: "Earth"},
		},
	}
	meta := &join.Metadata{Fields: []join.FieldMetadata{{
		ProjectFieldID: 2787,
		FieldName:      "Homeworld",
		ValueList: []join.FieldValue{
			{ProjectFieldVariantID: 5001, Label: "Earth", ProgrammaticValue: " 1 -4 2 0 3 1 2 "},
		},
	}}}
	return NewParser(ch, meta)
}

func TestStringValue(t *testing.T) {
	p := testParser()
	if got := p.StringValue(1, false); got != "Ivan" {
		t.Errorf("StringValue(1) = %q, want Ivan", got)
	}
	if got := p.StringValue(99, false); got != "" {
		t.Errorf("StringValue(missing) = %q, want empty", got)
	}
	if got := p.StringValue(2787, true); got != "1 -4 2 0 3 1 2" {
		t.Errorf("StringValue(2787, convert) = %q", got)
	}
	if got := p.StringValue(1, true); got != "" {
		t.Errorf("StringValue(1, convert) = %q, want empty for non-variant value", got)
	}
	if got := p.FieldName(2787); got != "Homeworld" {
		t.Errorf("FieldName = %q", got)
	}
}

func TestNumberValue(t *testing.T) {
	p := testParser()
	if n := p.NumberValue(2); !n.Valid || n.Int != 42 {
		t.Errorf("NumberValue(2) = %+v", n)
	}
	if n := p.NumberValue(3); !n.IsNaN() {
		t.Errorf("NumberValue(unparseable) = %+v, want NaN", n)
	}
	if n := p.NumberValue(99); !n.IsNaN() {
		t.Errorf("NumberValue(missing) = %+v, want NaN", n)
	}
}

func TestBoolValue(t *testing.T) {
	p := testParser()
	if !p.BoolValue(4) {
		t.Error("BoolValue(on) = false")
	}
	if p.BoolValue(5) || p.BoolValue(99) {
		t.Error("BoolValue should only accept the on token")
	}
}

func TestNumberListValue(t *testing.T) {
	p := testParser()
	got := p.NumberListValue(6)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("NumberListValue = %+v", got)
	}
	for i := range want {
		if !got[i].Valid || got[i].Int != want[i] {
			t.Errorf("element %d = %+v, want %d", i, got[i], want[i])
		}
	}

	if got := p.NumberListValue(99); got == nil || len(got) != 0 {
		t.Errorf("NumberListValue(missing) = %#v, want empty slice", got)
	}

	mixed := p.NumberListValue(7)
	if len(mixed) != 3 || !mixed[1].IsNaN() || mixed[2].Int != 3 {
		t.Errorf("NumberListValue(mixed) = %+v", mixed)
	}
}

func TestGroupsAndMultiValues(t *testing.T) {
	p := testParser()
	if !p.PartOfGroup(8492) || !p.PartOfGroup(9906) {
		t.Error("expected membership in direct and inherited groups")
	}
	if p.PartOfGroup(1) {
		t.Error("unexpected membership")
	}
	if !p.HasFieldValue(8, 3445) {
		t.Error("HasFieldValue(3445) = false")
	}
	if p.HasFieldValue(8, 344) {
		t.Error("HasFieldValue must match whole tokens")
	}
}
