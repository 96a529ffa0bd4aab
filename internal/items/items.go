// Package items picks one sprite per distinct item look for an item finder:
// items are named the way players search for them and exact duplicates of
// an earlier sprite under the same name are dropped.
package items

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const DefsFile = "items.json"

//go:embed schemas/items.schema.json
var schemaJSON []byte

// Def is the part of an item definition naming needs.
type Def struct {
	ID   int
	Name string
	// NotedID links a note to its unnoted item, -1 when unset.
	NotedID int
	// NotedTemplate is set (not -1) on note items.
	NotedTemplate int
	// CountObjs are the sprite variants shown for larger stacks.
	CountObjs []int
}

type defJSON struct {
	ID            int     `json:"id"`
	Name          *string `json:"name"`
	NotedID       *int    `json:"noted_id,omitempty"`
	NotedTemplate *int    `json:"noted_template,omitempty"`
	CountObjs     []int   `json:"count_objs,omitempty"`
}

// Load reads and validates an items.json array.
func Load(path string) ([]Def, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("items.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	schema, err := c.Compile("items.schema.json")
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", DefsFile, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", DefsFile, err)
	}
	var in []defJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%s: %w", DefsFile, err)
	}

	out := make([]Def, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, j := range in {
		if seen[j.ID] {
			return nil, fmt.Errorf("%s: duplicate item id %d", DefsFile, j.ID)
		}
		seen[j.ID] = true
		d := Def{ID: j.ID, NotedID: -1, NotedTemplate: -1, CountObjs: j.CountObjs}
		if j.Name != nil {
			d.Name = *j.Name
		}
		if j.NotedID != nil {
			d.NotedID = *j.NotedID
		}
		if j.NotedTemplate != nil {
			d.NotedTemplate = *j.NotedTemplate
		}
		out = append(out, d)
	}
	return out, nil
}

// Candidate is one sprite id to consider under a search name.
type Candidate struct {
	ID   int
	Name string
}

// Candidates lists sprite ids in definition order. Stack variants come
// before the item they belong to and share its name.
func Candidates(defs []Def) []Candidate {
	byID := make(map[int]Def, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}

	var out []Candidate
	for _, d := range defs {
		name, ok := searchName(d, byID)
		if !ok {
			continue
		}
		for _, id := range d.CountObjs {
			if id > 0 {
				out = append(out, Candidate{ID: id, Name: name})
			}
		}
		out = append(out, Candidate{ID: d.ID, Name: name})
	}
	return out
}

// searchName is the lower-cased name, "noted <base>" for notes, or empty
// when neither rule applies.
func searchName(d Def, byID map[int]Def) (string, bool) {
	if d.Name == "" {
		return "", false
	}
	isNull := strings.EqualFold(d.Name, "null")
	if isNull && d.NotedID == -1 {
		return "", false
	}
	switch {
	case d.NotedTemplate == -1 && !isNull:
		return strings.ToLower(d.Name), true
	case d.NotedID != -1:
		return "noted " + strings.ToLower(byID[d.NotedID].Name), true
	}
	return "", true
}
