package join

import "encoding/json"

// Character is an entry of the modified-since character list.
type Character struct {
	CharacterID   int    `json:"CharacterId"`
	UpdatedAt     string `json:"UpdatedAt,omitempty"`
	IsActive      *bool  `json:"IsActive,omitempty"`
	CharacterLink string `json:"CharacterLink"`
}

type GroupInfo struct {
	CharacterGroupID   int    `json:"CharacterGroupId"`
	CharacterGroupName string `json:"CharacterGroupName"`
}

// FieldInfo is one custom field value of a character.
type FieldInfo struct {
	ProjectFieldID int    `json:"ProjectFieldId"`
	FieldName      string `json:"FieldName,omitempty"`
	Value          string `json:"Value"`
	DisplayString  string `json:"DisplayString"`
}

// CharacterInfo is the full character record returned by the character link.
type CharacterInfo struct {
	CharacterID  int             `json:"CharacterId"`
	UpdatedAt    string          `json:"UpdatedAt"`
	IsActive     bool            `json:"IsActive"`
	InGame       bool            `json:"InGame"`
	BusyStatus   string          `json:"BusyStatus"`
	Groups       []GroupInfo     `json:"Groups"`
	AllGroups    []GroupInfo     `json:"AllGroups"`
	Fields       []FieldInfo     `json:"Fields"`
	PlayerUserID json.RawMessage `json:"PlayerUserId,omitempty"`
}

type FieldValue struct {
	ProjectFieldVariantID int    `json:"ProjectFieldVariantId"`
	Label                 string `json:"Label"`
	IsActive              bool   `json:"IsActive"`
	Description           string `json:"Description"`
	ProgrammaticValue     string `json:"ProgrammaticValue"`
}

type FieldMetadata struct {
	FieldName      string       `json:"FieldName"`
	ProjectFieldID int          `json:"ProjectFieldId"`
	IsActive       bool         `json:"IsActive"`
	FieldType      string       `json:"FieldType"`
	ValueList      []FieldValue `json:"ValueList"`
}

// Metadata describes all custom fields of the project.
type Metadata struct {
	ProjectID   int             `json:"ProjectId"`
	ProjectName string          `json:"ProjectName"`
	Fields      []FieldMetadata `json:"Fields"`
}

// Field returns the metadata of a field or nil.
func (m *Metadata) Field(id int) *FieldMetadata {
	if m == nil {
		return nil
	}
	for i := range m.Fields {
		if m.Fields[i].ProjectFieldID == id {
			return &m.Fields[i]
		}
	}
	return nil
}

// Variant returns the value list entry with the given variant id or nil.
func (f *FieldMetadata) Variant(id int) *FieldValue {
	if f == nil {
		return nil
	}
	for i := range f.ValueList {
		if f.ValueList[i].ProjectFieldVariantID == id {
			return &f.ValueList[i]
		}
	}
	return nil
}
