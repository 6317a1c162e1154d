package translator

import "fmt"

// Kinds of names a TranslationError can be about.
const (
	KindEntity       = "entity"
	KindProperty     = "property"
	KindRelationship = "relationship"
	KindAlias        = "alias"
)

// TranslationError reports a name in the query that has no counterpart
// in the metadata: an unknown entity, property, relationship, or an
// alias that was never introduced by FROM or JOIN.
type TranslationError struct {
	Kind       string // entity, property, relationship, alias
	Entity     string // entity being resolved against, if any
	Name       string // the offending name
	Alias      string // alias used to qualify the name, if any
	Suggestion string
}

func (e *TranslationError) Error() string {
	var msg string
	switch e.Kind {
	case KindEntity:
		msg = fmt.Sprintf("unknown entity '%s'", e.Name)
	case KindProperty:
		msg = fmt.Sprintf("entity '%s' has no property '%s'", e.Entity, e.Name)
	case KindRelationship:
		msg = fmt.Sprintf("entity '%s' has no relationship '%s'", e.Entity, e.Name)
	case KindAlias:
		msg = fmt.Sprintf("unknown alias '%s'", e.Alias)
	default:
		msg = fmt.Sprintf("cannot resolve '%s'", e.Name)
	}
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}
