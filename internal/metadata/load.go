package metadata

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadFile builds a registry from a CUE ontology file. The document
// declares a top-level "entities" struct:
//
//	entities: {
//		Order: {
//			table: "orders"
//			properties: {
//				Id:    {column: "id", type: "uuid"}
//				Total: {column: "total", type: "decimal"}
//			}
//			relationships: {
//				Customer: {target: "Customer", column: "customer_id", ref: "id"}
//			}
//		}
//	}
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ontology: %w", err)
	}
	return Load(data, path)
}

// Load builds a registry from CUE source. The filename is used in CUE
// diagnostics only.
func Load(data []byte, filename string) (*Registry, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(filename))
	if val.Err() != nil {
		return nil, fmt.Errorf("compiling ontology: %w", val.Err())
	}

	entities := val.LookupPath(cue.ParsePath("entities"))
	if entities.Err() != nil {
		return nil, fmt.Errorf("ontology has no 'entities' declaration: %w", entities.Err())
	}

	registry := NewRegistry()

	iter, err := entities.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		em, err := decodeEntity(name, iter.Value())
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}
		registry.Register(em)
	}

	return registry, nil
}

func decodeEntity(name string, val cue.Value) (*EntityMeta, error) {
	em := &EntityMeta{
		Name:          name,
		Properties:    make(map[string]*PropertyMeta),
		Relationships: make(map[string]*RelationshipMeta),
	}

	if err := val.LookupPath(cue.ParsePath("table")).Decode(&em.Table); err != nil {
		return nil, fmt.Errorf("missing table: %w", err)
	}
	if schema := val.LookupPath(cue.ParsePath("schema")); schema.Exists() {
		if err := schema.Decode(&em.Schema); err != nil {
			return nil, fmt.Errorf("decoding schema: %w", err)
		}
	}

	props := val.LookupPath(cue.ParsePath("properties"))
	if !props.Exists() {
		return nil, fmt.Errorf("misses a 'properties' declaration")
	}
	iter, err := props.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}
	for iter.Next() {
		propName := iter.Selector().Unquoted()
		pm, err := decodeProperty(propName, iter.Value())
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", propName, err)
		}
		em.Properties[propName] = pm
		em.PropertyOrder = append(em.PropertyOrder, propName)
	}

	if rels := val.LookupPath(cue.ParsePath("relationships")); rels.Exists() {
		iter, err := rels.Fields()
		if err != nil {
			return nil, fmt.Errorf("iterating relationships: %w", err)
		}
		for iter.Next() {
			relName := iter.Selector().Unquoted()
			rm, err := decodeRelationship(relName, iter.Value())
			if err != nil {
				return nil, fmt.Errorf("relationship %s: %w", relName, err)
			}
			em.Relationships[relName] = rm
		}
	}

	return em, nil
}

func decodeProperty(name string, val cue.Value) (*PropertyMeta, error) {
	var raw struct {
		Column string `json:"column"`
		Type   string `json:"type"`
	}
	if err := val.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Column == "" {
		return nil, fmt.Errorf("missing column")
	}
	pt, err := parsePropertyType(raw.Type)
	if err != nil {
		return nil, err
	}
	return &PropertyMeta{Name: name, Column: raw.Column, Type: pt}, nil
}

func decodeRelationship(name string, val cue.Value) (*RelationshipMeta, error) {
	var raw struct {
		Target string `json:"target"`
		Column string `json:"column"`
		Ref    string `json:"ref"`
	}
	if err := val.Decode(&raw); err != nil {
		return nil, err
	}
	if raw.Target == "" || raw.Column == "" {
		return nil, fmt.Errorf("missing target or column")
	}
	if raw.Ref == "" {
		raw.Ref = "id"
	}
	return &RelationshipMeta{Name: name, Target: raw.Target, Column: raw.Column, RefColumn: raw.Ref}, nil
}

func parsePropertyType(s string) (PropertyType, error) {
	switch s {
	case "", "string":
		return TypeString, nil
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "bool":
		return TypeBool, nil
	case "time":
		return TypeTime, nil
	case "uuid":
		return TypeUUID, nil
	case "decimal":
		return TypeDecimal, nil
	default:
		return TypeString, fmt.Errorf("unknown property type %q", s)
	}
}
