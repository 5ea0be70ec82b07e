package magellan

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/character"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/join"
)

var fixedNow = time.Date(2018, 7, 1, 12, 0, 0, 0, time.UTC)

func testMetadata() *join.Metadata {
	return &join.Metadata{
		ProjectID: 329,
		Fields: []join.FieldMetadata{
			{
				FieldName:      "Родная планета",
				ProjectFieldID: planetFieldID,
				ValueList: []join.FieldValue{
					{ProjectFieldVariantID: 4001, Label: "Земля", ProgrammaticValue: "1 -4 2 0 3 1 2"},
					{ProjectFieldVariantID: 4002, Label: "Марс", ProgrammaticValue: "1 2 3"},
					{ProjectFieldVariantID: 4003, Label: "Венера", ProgrammaticValue: "1 2 x 4 5 6 7"},
					{ProjectFieldVariantID: 4004, Label: "Титан", ProgrammaticValue: "1 2 3 4 5 6 7 8 9"},
				},
			},
		},
	}
}

func fixture20118() *join.CharacterInfo {
	return &join.CharacterInfo{
		CharacterID: 20118,
		IsActive:    true,
		InGame:      false,
		AllGroups:   []join.GroupInfo{{CharacterGroupID: 8492, CharacterGroupName: "ГД"}},
		Fields: []join.FieldInfo{
			{ProjectFieldID: nameFieldID, DisplayString: `Ivan "Max" Petrov`},
			{ProjectFieldID: planetFieldID, Value: "4001", DisplayString: "Земля"},
			{ProjectFieldID: professionFieldID, Value: "3443,3450", DisplayString: "Пилот, Журналист"},
		},
	}
}

func convertFixture(t *testing.T, c *join.CharacterInfo) (*HumanModel, *Account, []string) {
	t.Helper()
	g := New(Options{Clock: func() time.Time { return fixedNow }})
	res := g.Convert(character.NewParser(c, testMetadata()))
	if !res.Converted() {
		return nil, nil, res.Problems
	}
	return res.Model.(*HumanModel), res.Account.(*Account), res.Problems
}

func TestConvertHuman(t *testing.T) {
	h, acc, problems := convertFixture(t, fixture20118())
	if h == nil {
		t.Fatalf("not converted: %v", problems)
	}
	if len(problems) != 0 {
		t.Errorf("unexpected problems %v", problems)
	}
	if h.ID != "20118" || h.Login != "user20118" {
		t.Errorf("id/login = %q/%q", h.ID, h.Login)
	}
	if h.FirstName != "Ivan" || h.NicName != "Max" || h.LastName != "Petrov" {
		t.Errorf("name = %q %q %q", h.FirstName, h.NicName, h.LastName)
	}
	if h.Planet != "Земля" {
		t.Errorf("Planet = %q", h.Planet)
	}
	if len(h.Systems) != NumberOfSystems {
		t.Fatalf("systems = %d", len(h.Systems))
	}
	if h.Systems[1].Nucleotide != -4 || !h.Systems[1].Present {
		t.Errorf("systems[1] = %+v", h.Systems[1])
	}
	if h.Timestamp != fixedNow.UnixMilli() {
		t.Errorf("Timestamp = %d", h.Timestamp)
	}
	if h.IsTopManager {
		t.Error("IsTopManager without group 9906")
	}

	if acc.ID != "20118" || acc.Login != "user20118" || acc.Password != defaultPassword {
		t.Errorf("account = %+v", acc.Account)
	}
	if len(acc.Jobs.CompanyBonus) != 1 || acc.Jobs.CompanyBonus[0] != CompanyGD {
		t.Errorf("CompanyBonus = %v", acc.Jobs.CompanyBonus)
	}
	if !acc.Jobs.TradeUnion.IsPilot || acc.Jobs.TradeUnion.IsEngineer {
		t.Errorf("TradeUnion = %+v", acc.Jobs.TradeUnion)
	}
	if !acc.Professions.IsJournalist || !acc.Professions.IsPilot {
		t.Errorf("Professions = %+v", acc.Professions)
	}
	if len(acc.CompanyAccess) != 1 || acc.CompanyAccess[0].CompanyName != CompanyGD {
		t.Errorf("CompanyAccess = %+v", acc.CompanyAccess)
	}
}

func TestConvertSpecialistWithoutCompany(t *testing.T) {
	c := fixture20118()
	c.CharacterID = 20200
	c.AllGroups = []join.GroupInfo{{CharacterGroupID: 8488}}
	c.Fields = append(c.Fields, join.FieldInfo{ProjectFieldID: passwordFieldID, DisplayString: "s3cret"})

	h, acc, problems := convertFixture(t, c)
	if h == nil {
		t.Fatalf("not converted: %v", problems)
	}
	if acc.Jobs.CompanyBonus == nil || len(acc.Jobs.CompanyBonus) != 0 {
		t.Errorf("CompanyBonus = %#v, want empty", acc.Jobs.CompanyBonus)
	}
	if !acc.Jobs.TradeUnion.IsEngineer {
		t.Error("group 8488 must grant engineer")
	}
	if acc.Password != "s3cret" {
		t.Errorf("Password = %q", acc.Password)
	}
}

func TestConvertTopManager(t *testing.T) {
	c := fixture20118()
	c.Groups = []join.GroupInfo{{CharacterGroupID: groupTopManager}}
	h, acc, _ := convertFixture(t, c)
	if h == nil || !h.IsTopManager {
		t.Fatal("top manager group must mark the model")
	}
	if !acc.CompanyAccess[0].IsTopManager || !acc.Professions.IsTopManager {
		t.Errorf("account = %+v", acc)
	}
}

func TestConvertHomeworld(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		hard    bool
		problem string
	}{
		{"missing", "", false, "Missing required field homeworld (2787)"},
		{"short", "4002", true, "incorrect nucleotides count 3"},
		{"garbage", "4003", true, "incorrect nucleotide"},
		{"long", "4004", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := fixture20118()
			c.Fields = c.Fields[:1]
			if tc.value != "" {
				c.Fields = append(c.Fields, join.FieldInfo{ProjectFieldID: planetFieldID, Value: tc.value, DisplayString: "planet"})
			}
			h, _, problems := convertFixture(t, c)
			if tc.hard != (h == nil) {
				t.Fatalf("converted = %v, problems %v", h != nil, problems)
			}
			if tc.problem == "" {
				if len(problems) != 0 {
					t.Errorf("unexpected problems %v", problems)
				}
				if len(h.Systems) != NumberOfSystems {
					t.Errorf("systems = %d", len(h.Systems))
				}
				return
			}
			if len(problems) == 0 || !strings.Contains(problems[len(problems)-1], tc.problem) {
				t.Errorf("problems = %v, want %q", problems, tc.problem)
			}
		})
	}
}

func TestHumanModelJSON(t *testing.T) {
	h, _, _ := convertFixture(t, fixture20118())
	raw, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"_id", "login", "profileType", "systems", "spaceSuit", "timestamp", "conditions"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q in %s", key, raw)
		}
	}
	if doc["profileType"] != "human" {
		t.Errorf("profileType = %v", doc["profileType"])
	}
	if _, ok := doc["Rev"]; ok {
		t.Error("revision must not be part of the document")
	}

	decoded, err := DecodeModel(raw)
	if err != nil {
		t.Fatal(err)
	}
	back, ok := decoded.(*HumanModel)
	if !ok {
		t.Fatalf("decoded %T", decoded)
	}
	if back.Systems[1].Nucleotide != -4 || back.FirstName != "Ivan" {
		t.Errorf("decoded = %+v", back)
	}
}

func TestDecodeModelUnknownProfile(t *testing.T) {
	_, err := DecodeModel([]byte(`{"_id":"1","profileType":"robot"}`))
	if !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("err = %v", err)
	}
	m, err := DecodeModel([]byte(`{"_id":"2","profileType":"xenomorph","systems":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Profile() != ProfileXenomorph || m.BaseModel().ID != "2" {
		t.Errorf("decoded = %+v", m)
	}
}

func TestMiceCreator(t *testing.T) {
	g := New(Options{MiceCount: 3, Clock: func() time.Time { return fixedNow }})
	creators := g.NPCCreators()
	if len(creators) != 1 || creators[0].Name() != "mice" || creators[0].Count() != 3 {
		t.Fatalf("creators = %+v", creators)
	}
	npcs := creators[0].Generate(10500)
	if len(npcs) != 3 {
		t.Fatalf("generated %d", len(npcs))
	}
	for i, npc := range npcs {
		m := npc.Model.(*MiceModel)
		wantID := []string{"10500", "10501", "10502"}[i]
		if m.ID != wantID || m.Login != "mice"+wantID {
			t.Errorf("npc %d = %s/%s", i, m.ID, m.Login)
		}
		if !m.InGame || m.ProfileType != ProfileMice || m.Timestamp != fixedNow.UnixMilli() {
			t.Errorf("npc %d = %+v", i, m)
		}
		if len(m.Systems) != NumberOfSystems || m.Systems[0].Nucleotide != 0 {
			t.Errorf("npc %d systems = %+v", i, m.Systems)
		}
		if npc.Account != nil {
			t.Errorf("npc %d has an account", i)
		}
	}

	if len(New(Options{}).NPCCreators()) != 0 {
		t.Error("no creators expected without mice")
	}
}
