// Package metadata provides the entity metadata lookup consumed by the
// translator: logical entity names to physical tables, properties to
// columns, and relationship/navigation names to join columns.
//
// The in-memory Registry can be populated programmatically or from a
// CUE ontology document (see load.go). It is immutable after
// construction and safe for concurrent read access.
package metadata

import "fmt"

// PropertyType classifies a property's declared type, used by the
// translator for bind-value coercion.
type PropertyType int

const (
	TypeString PropertyType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
	TypeUUID
	TypeDecimal
)

// String returns the metadata-visible type name.
func (pt PropertyType) String() string {
	switch pt {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	case TypeUUID:
		return "uuid"
	case TypeDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// PropertyMeta describes a single property on an entity.
type PropertyMeta struct {
	Name   string       `json:"name"`
	Column string       `json:"column"`
	Type   PropertyType `json:"type"`
}

// RelationshipMeta describes a declared navigation property. Column is
// the foreign-key column on the owning entity's table; RefColumn is the
// referenced column on the target entity's table.
type RelationshipMeta struct {
	Name      string `json:"name"`
	Target    string `json:"target"`
	Column    string `json:"column"`
	RefColumn string `json:"ref_column"`
}

// EntityMeta holds the complete metadata for one logical entity.
type EntityMeta struct {
	Name          string                       `json:"name"`
	Table         string                       `json:"table"`
	Schema        string                       `json:"schema,omitempty"`
	Properties    map[string]*PropertyMeta     `json:"properties"`
	Relationships map[string]*RelationshipMeta `json:"relationships,omitempty"`
	PropertyOrder []string                     `json:"property_order,omitempty"`
}

// QualifiedTable returns the schema-qualified physical table name.
func (em *EntityMeta) QualifiedTable() string {
	if em.Schema != "" {
		return em.Schema + "." + em.Table
	}
	return em.Table
}

// PropertyNames returns the declared property names in ontology order.
func (em *EntityMeta) PropertyNames() []string {
	if em.PropertyOrder != nil {
		return em.PropertyOrder
	}
	names := make([]string, 0, len(em.Properties))
	for n := range em.Properties {
		names = append(names, n)
	}
	return names
}

// Lookup is the metadata collaborator injected into the translator.
// Implementations must be safe for concurrent reads; the engine never
// writes through this interface.
type Lookup interface {
	// Entity resolves a logical entity name to its metadata.
	Entity(name string) (*EntityMeta, error)
	// Property resolves a property on an entity to its column metadata.
	Property(entity, property string) (*PropertyMeta, error)
	// Relationship resolves a navigation property to its target entity
	// and join columns.
	Relationship(entity, relationship string) (*RelationshipMeta, error)
}

// NotFoundError reports a name the metadata snapshot does not declare.
type NotFoundError struct {
	Kind   string // "entity", "property", or "relationship"
	Entity string
	Name   string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "entity" {
		return fmt.Sprintf("unknown entity '%s'", e.Name)
	}
	return fmt.Sprintf("unknown %s '%s' on entity '%s'", e.Kind, e.Name, e.Entity)
}

// Registry is the in-memory Lookup implementation.
type Registry struct {
	entities    map[string]*EntityMeta
	entityOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*EntityMeta)}
}

// Register adds an entity to the registry. Registration happens at
// construction time only; afterwards the registry is read-only.
func (r *Registry) Register(em *EntityMeta) {
	r.entities[em.Name] = em
	r.entityOrder = append(r.entityOrder, em.Name)
}

// Entity implements Lookup.
func (r *Registry) Entity(name string) (*EntityMeta, error) {
	em, ok := r.entities[name]
	if !ok {
		return nil, &NotFoundError{Kind: "entity", Name: name}
	}
	return em, nil
}

// Property implements Lookup.
func (r *Registry) Property(entity, property string) (*PropertyMeta, error) {
	em, err := r.Entity(entity)
	if err != nil {
		return nil, err
	}
	pm, ok := em.Properties[property]
	if !ok {
		return nil, &NotFoundError{Kind: "property", Entity: entity, Name: property}
	}
	return pm, nil
}

// Relationship implements Lookup.
func (r *Registry) Relationship(entity, relationship string) (*RelationshipMeta, error) {
	em, err := r.Entity(entity)
	if err != nil {
		return nil, err
	}
	rm, ok := em.Relationships[relationship]
	if !ok {
		return nil, &NotFoundError{Kind: "relationship", Entity: entity, Name: relationship}
	}
	return rm, nil
}

// EntityNames returns all registered entity names in registration order.
func (r *Registry) EntityNames() []string {
	return r.entityOrder
}

// AllEntities returns all entity metadata, keyed by entity name.
func (r *Registry) AllEntities() map[string]*EntityMeta {
	return r.entities
}
