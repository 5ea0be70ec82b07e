// Package model holds the game documents written to the model and account stores.
package model

import "time"

// RefreshEventType tells downstream builders to recompute a character's views.
const RefreshEventType = "_RefreshModel"

type Condition struct {
	ID      string `json:"id"`
	Class   string `json:"class,omitempty"`
	Text    string `json:"text"`
	Details string `json:"details,omitempty"`
	Group   string `json:"group,omitempty"`
	Level   int    `json:"level,omitempty"`
}

type Modifier struct {
	MID     string `json:"mID"`
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Class   string `json:"class,omitempty"`
	Enabled bool   `json:"enabled"`
}

type Timer struct {
	Name         string `json:"name"`
	Milliseconds int64  `json:"miliseconds"`
	EventType    string `json:"eventType"`
}

type Change struct {
	MID       string `json:"mID"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type Message struct {
	MID   string `json:"mID"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Base carries the fields every game model shares. The revision token is
// kept by the store next to the document, not inside it.
type Base struct {
	ID  string `json:"_id"`
	Rev string `json:"-"`

	Login string `json:"login"`

	IsAlive bool `json:"isAlive"`
	// InGame marks a live character; an import must not overwrite it.
	InGame  bool `json:"inGame"`

	FirstName string `json:"firstName"`
	NicName   string `json:"nicName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	// Timestamp is a logical clock in milliseconds ordering this
	// character's events.
	Timestamp  int64       `json:"timestamp"`
	Conditions []Condition `json:"conditions"`
	Modifiers  []Modifier  `json:"modifiers"`
	Timers     []Timer     `json:"timers"`
	Changes    []Change    `json:"changes"`
	Messages   []Message   `json:"messages"`
}

// NewBase returns an empty model stamped with now.
func NewBase(now time.Time) Base {
	return Base{
		Timestamp:  now.UnixMilli(),
		Conditions: []Condition{},
		Modifiers:  []Modifier{},
		Timers:     []Timer{},
		Changes:    []Change{},
		Messages:   []Message{},
	}
}

// BaseModel lets embedding game models satisfy Model.
func (b *Base) BaseModel() *Base { return b }

// Model is a game-specific model document.
type Model interface {
	BaseModel() *Base
}
