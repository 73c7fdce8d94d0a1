package bangumi

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies an entity collection on the Bangumi API
type Kind string

const (
	// KindSubject is a cataloged media entry (anime, book, game, ...)
	KindSubject Kind = "subject"
	// KindCharacter is a fictional character
	KindCharacter Kind = "character"
	// KindPerson is a real person, company or group
	KindPerson Kind = "person"
	// KindUser is a Bangumi site user
	KindUser Kind = "user"
)

// ParseKind converts user input into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subject", "subjects":
		return KindSubject, nil
	case "character", "characters":
		return KindCharacter, nil
	case "person", "persons", "people":
		return KindPerson, nil
	case "user", "users":
		return KindUser, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrValidation, s)
}

// Searchable reports whether the API exposes a keyword search for the kind
func (k Kind) Searchable() bool {
	return k == KindSubject || k == KindCharacter || k == KindPerson
}

// collection returns the path segment used by the API
func (k Kind) collection() string {
	return string(k) + "s"
}

// Entity is a loosely typed JSON object returned by the API.
// Fields are read through gjson paths and never fail: a missing or null
// field yields the caller supplied default.
type Entity struct {
	raw gjson.Result
}

// NewEntity wraps raw JSON
func NewEntity(data []byte) Entity {
	return Entity{raw: gjson.ParseBytes(data)}
}

func entityFromResult(r gjson.Result) Entity {
	return Entity{raw: r}
}

// Has reports whether path exists and is not null
func (e Entity) Has(path string) bool {
	v := e.raw.Get(path)
	return v.Exists() && v.Type != gjson.Null
}

// String returns the string at path, or def when absent or null
func (e Entity) String(path, def string) string {
	if !e.Has(path) {
		return def
	}
	return e.raw.Get(path).String()
}

// NonEmpty is like String but also falls back when the value is blank
func (e Entity) NonEmpty(path, def string) string {
	v := e.String(path, "")
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Int returns the integer at path, or def
func (e Entity) Int(path string, def int64) int64 {
	if !e.Has(path) {
		return def
	}
	return e.raw.Get(path).Int()
}

// Float returns the number at path, or def
func (e Entity) Float(path string, def float64) float64 {
	if !e.Has(path) {
		return def
	}
	return e.raw.Get(path).Float()
}

// Strings returns the string elements of the array at path
func (e Entity) Strings(path string) []string {
	v := e.raw.Get(path)
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type == gjson.Null {
			continue
		}
		out = append(out, item.String())
	}
	return out
}

// Array returns the object elements of the array at path
func (e Entity) Array(path string) []Entity {
	v := e.raw.Get(path)
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]Entity, 0, len(items))
	for _, item := range items {
		out = append(out, entityFromResult(item))
	}
	return out
}

// ID returns the numeric id of the entity, 0 when missing
func (e Entity) ID() int64 {
	return e.Int("id", 0)
}

// IsZero reports whether the entity holds no JSON at all
func (e Entity) IsZero() bool {
	return !e.raw.Exists()
}

// Raw returns the underlying JSON text
func (e Entity) Raw() string {
	return e.raw.Raw
}

// MarshalJSON emits the original payload unchanged
func (e Entity) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("null"), nil
	}
	return []byte(e.raw.Raw), nil
}

// Page is one page of keyword search results
type Page struct {
	// Data is in the relevance order returned by the API
	Data []Entity
	// Total may exceed len(Data)
	Total int
}

// parsePage reads a {"data": [...], "total": n} document
func parsePage(body []byte) (*Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to parse search response: invalid JSON")
	}
	doc := NewEntity(body)
	page := &Page{
		Data:  doc.Array("data"),
		Total: int(doc.Int("total", 0)),
	}
	if page.Total < len(page.Data) {
		page.Total = len(page.Data)
	}
	return page, nil
}

// IsEmpty reports whether the page holds no results
func (p *Page) IsEmpty() bool {
	return p == nil || len(p.Data) == 0
}
