// Package translator lowers parsed EQL queries to parameterized SQL for
// a target dialect. Logical entity and property names are resolved
// through the metadata lookup, portable function names through the
// function registry, and every user-supplied value leaves the query text
// as a bound parameter.
package translator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/eql"
	"github.com/ratanachh/eql/internal/functions"
	"github.com/ratanachh/eql/internal/metadata"
)

// Result is the output of a successful translation: the SQL text and
// the ordered named parameters to pass to the driver.
type Result struct {
	SQL    string
	Params *ParamSet
}

// Translator lowers EQL query trees for one target dialect. It is
// stateless across calls and safe for concurrent use.
type Translator struct {
	dialect   dialect.Dialect
	functions *functions.Registry
	lookup    metadata.Lookup
}

// New creates a translator for the given dialect, function registry,
// and metadata lookup.
func New(d dialect.Dialect, reg *functions.Registry, lk metadata.Lookup) *Translator {
	return &Translator{dialect: d, functions: reg, lookup: lk}
}

// Compile parses and translates an EQL source string in one step.
func Compile(input string, d dialect.Dialect, lk metadata.Lookup, bindings map[string]any) (*Result, error) {
	q, err := eql.ParseQuery(input)
	if err != nil {
		return nil, err
	}
	return New(d, functions.New(), lk).Translate(q, bindings)
}

// Translate lowers a parsed query. Bindings supplies values for the
// query's named parameters; a missing binding translates with a nil
// value so tooling can compile queries without executing them.
func (t *Translator) Translate(q eql.Query, bindings map[string]any) (*Result, error) {
	em := &emitter{
		t:        t,
		params:   NewParamSet(),
		bindings: bindings,
		// A correlated reference inside a subquery is only unambiguous
		// when every table in the tree carries its qualifier.
		forceQualify: queryHasSubquery(q),
	}
	var err error
	switch q := q.(type) {
	case *eql.SelectQuery:
		err = em.selectQuery(q)
	case *eql.UpdateQuery:
		err = em.updateQuery(q)
	case *eql.DeleteQuery:
		err = em.deleteQuery(q)
	default:
		panic(fmt.Sprintf("translator: unhandled query node %T", q))
	}
	if err != nil {
		return nil, err
	}
	return &Result{SQL: em.sb.String(), Params: em.params}, nil
}

// scope maps the aliases visible at one query depth to entity names and
// to the qualifier text column references are emitted with. Subqueries
// push a child scope and resolve through the parent, which is what makes
// correlated references work.
type scope struct {
	parent     *scope
	order      []string
	entities   map[string]string // alias -> entity name
	qualifiers map[string]string // alias -> emitted qualifier text
	useAliases bool
}

func (s *scope) declare(alias, entity, qualifier string) {
	if _, ok := s.entities[alias]; !ok {
		s.order = append(s.order, alias)
	}
	s.entities[alias] = entity
	s.qualifiers[alias] = qualifier
}

// emitter carries the mutable state of one translation pass.
type emitter struct {
	t            *Translator
	sb           strings.Builder
	params       *ParamSet
	bindings     map[string]any
	scope        *scope
	forceQualify bool
	autoSeq      int
}

func (em *emitter) pushScope(useAliases bool) {
	em.scope = &scope{
		parent:     em.scope,
		entities:   make(map[string]string),
		qualifiers: make(map[string]string),
		useAliases: useAliases,
	}
}

func (em *emitter) popScope() {
	em.scope = em.scope.parent
}

// nextAutoName synthesizes a parameter name for an inlined literal,
// skipping names the user already bound.
func (em *emitter) nextAutoName() string {
	for {
		em.autoSeq++
		name := fmt.Sprintf("p%d", em.autoSeq)
		if _, taken := em.params.Get(name); taken {
			continue
		}
		if _, taken := em.bindings[name]; taken {
			continue
		}
		return name
	}
}

// ── Name resolution ─────────────────────────────────────────────────────────

type entityNamer interface {
	EntityNames() []string
}

func (em *emitter) entityMeta(name string) (*metadata.EntityMeta, error) {
	meta, err := em.t.lookup.Entity(name)
	if err != nil {
		terr := &TranslationError{Kind: KindEntity, Name: name}
		if namer, ok := em.t.lookup.(entityNamer); ok {
			terr.Suggestion = eql.SuggestFrom(name, namer.EntityNames(), 2)
		}
		return nil, terr
	}
	return meta, nil
}

// resolveAlias walks the scope chain and returns the scope that defined
// the alias together with its entity name.
func (em *emitter) resolveAlias(alias string) (*scope, string, bool) {
	for sc := em.scope; sc != nil; sc = sc.parent {
		if e, ok := sc.entities[alias]; ok {
			return sc, e, true
		}
	}
	return nil, "", false
}

// resolveProperty maps an optionally alias-qualified property reference
// to (emitted qualifier, column metadata). The qualifier comes from the
// scope in which the alias was actually defined, so a correlated
// reference inside a subquery keeps pointing at the outer table. An
// unqualified name is searched through the visible entities in
// declaration order.
func (em *emitter) resolveProperty(alias, name string) (string, *metadata.PropertyMeta, error) {
	if alias != "" {
		sc, entity, ok := em.resolveAlias(alias)
		if !ok {
			return "", nil, &TranslationError{Kind: KindAlias, Alias: alias, Name: name}
		}
		pm, err := em.t.lookup.Property(entity, name)
		if err != nil {
			terr := &TranslationError{Kind: KindProperty, Entity: entity, Name: name, Alias: alias}
			if meta, merr := em.t.lookup.Entity(entity); merr == nil {
				terr.Suggestion = eql.SuggestFrom(name, meta.PropertyNames(), 2)
			}
			return "", nil, terr
		}
		if sc.useAliases {
			return sc.qualifiers[alias], pm, nil
		}
		return "", pm, nil
	}

	for sc := em.scope; sc != nil; sc = sc.parent {
		for _, a := range sc.order {
			if pm, err := em.t.lookup.Property(sc.entities[a], name); err == nil {
				if sc.useAliases {
					return sc.qualifiers[a], pm, nil
				}
				return "", pm, nil
			}
		}
	}

	terr := &TranslationError{Kind: KindProperty, Name: name}
	if len(em.scope.order) > 0 {
		entity := em.scope.entities[em.scope.order[0]]
		terr.Entity = entity
		if meta, err := em.t.lookup.Entity(entity); err == nil {
			terr.Suggestion = eql.SuggestFrom(name, meta.PropertyNames(), 2)
		}
	}
	return "", nil, terr
}

// column emits a resolved column reference with its qualifier, if the
// defining scope needs one.
func (em *emitter) column(qualifier string, pm *metadata.PropertyMeta) {
	if qualifier != "" {
		em.sb.WriteString(qualifier)
		em.sb.WriteByte('.')
	}
	em.sb.WriteString(pm.Column)
}

// ── Query emission ──────────────────────────────────────────────────────────

func (em *emitter) selectQuery(q *eql.SelectQuery) error {
	// A lone entity with no joins reads cleaner without aliases, unless
	// a subquery somewhere in the tree may correlate back to it.
	useAliases := em.forceQualify
	if q.From != nil {
		useAliases = useAliases || len(q.From.Items) > 1 || len(q.From.Joins) > 0
	}
	em.pushScope(useAliases)
	defer em.popScope()

	if q.From != nil {
		for _, item := range q.From.Items {
			alias := item.Alias
			if alias == "" {
				alias = item.EntityName
			}
			if _, err := em.entityMeta(item.EntityName); err != nil {
				return err
			}
			em.scope.declare(alias, item.EntityName, alias)
		}
	}

	em.sb.WriteString("SELECT ")
	if q.Select.Distinct {
		em.sb.WriteString("DISTINCT ")
	}
	for i, item := range q.Select.Items {
		if i > 0 {
			em.sb.WriteString(", ")
		}
		if err := em.expr(item.Expr, nil); err != nil {
			return err
		}
		if item.Alias != "" {
			em.sb.WriteString(" AS ")
			em.sb.WriteString(item.Alias)
		}
	}

	if q.From != nil {
		em.sb.WriteString(" FROM ")
		for i, item := range q.From.Items {
			if i > 0 {
				em.sb.WriteString(", ")
			}
			meta, err := em.entityMeta(item.EntityName)
			if err != nil {
				return err
			}
			em.sb.WriteString(meta.QualifiedTable())
			if em.scope.useAliases {
				alias := item.Alias
				if alias == "" {
					alias = item.EntityName
				}
				em.sb.WriteByte(' ')
				em.sb.WriteString(alias)
			}
		}
		for i := range q.From.Joins {
			if err := em.join(&q.From.Joins[i]); err != nil {
				return err
			}
		}
	}

	if q.Where != nil {
		em.sb.WriteString(" WHERE ")
		if err := em.expr(q.Where.Condition, nil); err != nil {
			return err
		}
	}
	if q.GroupBy != nil {
		em.sb.WriteString(" GROUP BY ")
		for i, item := range q.GroupBy.Items {
			if i > 0 {
				em.sb.WriteString(", ")
			}
			if err := em.expr(item, nil); err != nil {
				return err
			}
		}
	}
	if q.Having != nil {
		em.sb.WriteString(" HAVING ")
		if err := em.expr(q.Having.Condition, nil); err != nil {
			return err
		}
	}
	if q.OrderBy != nil {
		em.sb.WriteString(" ORDER BY ")
		for i, item := range q.OrderBy.Items {
			if i > 0 {
				em.sb.WriteString(", ")
			}
			if err := em.expr(item.Expr, nil); err != nil {
				return err
			}
			if item.Direction == eql.OrderDesc {
				em.sb.WriteString(" DESC")
			}
		}
	}
	return nil
}

// join lowers a relationship traversal to a physical join with an ON
// condition derived from the declared foreign key, unless the query
// supplies its own.
func (em *emitter) join(j *eql.JoinClause) error {
	srcScope, entity, ok := em.resolveAlias(j.SourceAlias)
	if !ok {
		return &TranslationError{Kind: KindAlias, Alias: j.SourceAlias, Name: j.RelationshipName}
	}
	rel, err := em.t.lookup.Relationship(entity, j.RelationshipName)
	if err != nil {
		terr := &TranslationError{Kind: KindRelationship, Entity: entity, Name: j.RelationshipName, Alias: j.SourceAlias}
		if meta, merr := em.t.lookup.Entity(entity); merr == nil {
			names := make([]string, 0, len(meta.Relationships))
			for n := range meta.Relationships {
				names = append(names, n)
			}
			terr.Suggestion = eql.SuggestFrom(j.RelationshipName, names, 2)
		}
		return terr
	}
	target, err := em.entityMeta(rel.Target)
	if err != nil {
		return err
	}

	alias := j.Alias
	if alias == "" {
		alias = j.RelationshipName
	}
	em.scope.declare(alias, rel.Target, alias)

	em.sb.WriteByte(' ')
	em.sb.WriteString(j.JoinType.String())
	em.sb.WriteByte(' ')
	em.sb.WriteString(target.QualifiedTable())
	em.sb.WriteByte(' ')
	em.sb.WriteString(alias)
	em.sb.WriteString(" ON ")
	if j.On != nil {
		return em.expr(j.On, nil)
	}
	em.sb.WriteString(srcScope.qualifiers[j.SourceAlias])
	em.sb.WriteByte('.')
	em.sb.WriteString(rel.Column)
	em.sb.WriteString(" = ")
	em.sb.WriteString(alias)
	em.sb.WriteByte('.')
	em.sb.WriteString(rel.RefColumn)
	return nil
}

func (em *emitter) updateQuery(q *eql.UpdateQuery) error {
	meta, err := em.entityMeta(q.EntityName)
	if err != nil {
		return err
	}
	// Standard UPDATE targets carry no alias; when a subquery may
	// correlate back, the table name itself is the qualifier.
	em.pushScope(em.forceQualify)
	defer em.popScope()
	alias := q.Alias
	if alias == "" {
		alias = q.EntityName
	}
	em.scope.declare(alias, q.EntityName, meta.QualifiedTable())

	em.sb.WriteString("UPDATE ")
	em.sb.WriteString(meta.QualifiedTable())
	em.sb.WriteString(" SET ")
	for i, a := range q.Assignments {
		if i > 0 {
			em.sb.WriteString(", ")
		}
		pm, err := em.t.lookup.Property(q.EntityName, a.PropertyName)
		if err != nil {
			terr := &TranslationError{Kind: KindProperty, Entity: q.EntityName, Name: a.PropertyName, Alias: q.Alias}
			terr.Suggestion = eql.SuggestFrom(a.PropertyName, meta.PropertyNames(), 2)
			return terr
		}
		em.sb.WriteString(pm.Column)
		em.sb.WriteString(" = ")
		if err := em.expr(a.Value, pm); err != nil {
			return err
		}
	}
	if q.Where != nil {
		em.sb.WriteString(" WHERE ")
		if err := em.expr(q.Where.Condition, nil); err != nil {
			return err
		}
	}
	return nil
}

func (em *emitter) deleteQuery(q *eql.DeleteQuery) error {
	meta, err := em.entityMeta(q.EntityName)
	if err != nil {
		return err
	}
	em.pushScope(em.forceQualify)
	defer em.popScope()
	alias := q.Alias
	if alias == "" {
		alias = q.EntityName
	}
	em.scope.declare(alias, q.EntityName, meta.QualifiedTable())

	em.sb.WriteString("DELETE FROM ")
	em.sb.WriteString(meta.QualifiedTable())
	if q.Where != nil {
		em.sb.WriteString(" WHERE ")
		if err := em.expr(q.Where.Condition, nil); err != nil {
			return err
		}
	}
	return nil
}

// ── Expression emission ─────────────────────────────────────────────────────

// precedence mirrors the parser's ladder so re-emitted SQL preserves
// the parsed grouping without blanket parenthesization.
func precedence(op eql.BinaryOp) int {
	switch op {
	case eql.OpOr:
		return 1
	case eql.OpAnd:
		return 2
	case eql.OpEQ, eql.OpNEQ, eql.OpLike, eql.OpIn, eql.OpIs, eql.OpIsNot:
		return 3
	case eql.OpLT, eql.OpLTE, eql.OpGT, eql.OpGTE:
		return 4
	case eql.OpAdd, eql.OpSub:
		return 5
	default:
		return 6
	}
}

func (em *emitter) expr(e eql.Expr, ctx *metadata.PropertyMeta) error {
	switch e := e.(type) {
	case *eql.PropertyExpr:
		qualifier, pm, err := em.resolveProperty(e.EntityAlias, e.PropertyName)
		if err != nil {
			return err
		}
		em.column(qualifier, pm)
		return nil
	case *eql.WildcardExpr:
		if e.EntityAlias != "" {
			sc, _, ok := em.resolveAlias(e.EntityAlias)
			if !ok {
				return &TranslationError{Kind: KindAlias, Alias: e.EntityAlias}
			}
			if sc.useAliases {
				em.sb.WriteString(sc.qualifiers[e.EntityAlias])
				em.sb.WriteByte('.')
			}
		}
		em.sb.WriteByte('*')
		return nil
	case *eql.LiteralExpr:
		return em.literal(e, ctx)
	case *eql.ParameterExpr:
		return em.parameter(e, ctx)
	case *eql.BinaryExpr:
		return em.binary(e)
	case *eql.UnaryExpr:
		return em.unary(e)
	case *eql.AggregateExpr:
		em.sb.WriteString(em.t.functions.Resolve(e.FunctionName, em.t.dialect.Name))
		em.sb.WriteByte('(')
		if e.Distinct {
			em.sb.WriteString("DISTINCT ")
		}
		if err := em.expr(e.Argument, nil); err != nil {
			return err
		}
		em.sb.WriteByte(')')
		return nil
	case *eql.FunctionExpr:
		return em.function(e)
	case *eql.ListExpr:
		em.sb.WriteByte('(')
		for i, item := range e.Items {
			if i > 0 {
				em.sb.WriteString(", ")
			}
			if err := em.expr(item, ctx); err != nil {
				return err
			}
		}
		em.sb.WriteByte(')')
		return nil
	case *eql.SubqueryExpr:
		em.sb.WriteByte('(')
		if err := em.selectQuery(e.Query); err != nil {
			return err
		}
		em.sb.WriteByte(')')
		return nil
	default:
		panic(fmt.Sprintf("translator: unhandled expression node %T", e))
	}
}

func (em *emitter) binary(e *eql.BinaryExpr) error {
	// The comparison's property side, if any, supplies the type context
	// for coercing the value side.
	var ctx *metadata.PropertyMeta
	if precedence(e.Op) >= 3 {
		if p, ok := e.Left.(*eql.PropertyExpr); ok {
			if _, pm, err := em.resolveProperty(p.EntityAlias, p.PropertyName); err == nil {
				ctx = pm
			}
		} else if p, ok := e.Right.(*eql.PropertyExpr); ok {
			if _, pm, err := em.resolveProperty(p.EntityAlias, p.PropertyName); err == nil {
				ctx = pm
			}
		}
	}

	if (e.Op == eql.OpIs || e.Op == eql.OpIsNot) && isNullLiteral(e.Right) {
		if err := em.operand(e.Left, e.Op, false, nil); err != nil {
			return err
		}
		em.sb.WriteByte(' ')
		em.sb.WriteString(e.Op.String())
		em.sb.WriteString(" NULL")
		return nil
	}

	if err := em.operand(e.Left, e.Op, false, ctx); err != nil {
		return err
	}
	em.sb.WriteByte(' ')
	em.sb.WriteString(e.Op.String())
	em.sb.WriteByte(' ')
	return em.operand(e.Right, e.Op, true, ctx)
}

// operand emits one side of a binary expression, parenthesizing when the
// child binds looser than the parent, or equally on the right of a
// non-commutative operator.
func (em *emitter) operand(e eql.Expr, parent eql.BinaryOp, right bool, ctx *metadata.PropertyMeta) error {
	child, ok := e.(*eql.BinaryExpr)
	if !ok {
		return em.expr(e, ctx)
	}
	cp, pp := precedence(child.Op), precedence(parent)
	needParens := cp < pp
	if right && cp == pp {
		switch parent {
		case eql.OpSub, eql.OpDiv, eql.OpMod:
			needParens = true
		}
	}
	if needParens {
		em.sb.WriteByte('(')
	}
	if err := em.expr(e, ctx); err != nil {
		return err
	}
	if needParens {
		em.sb.WriteByte(')')
	}
	return nil
}

func (em *emitter) unary(e *eql.UnaryExpr) error {
	if e.Op == eql.OpPos {
		return em.expr(e.Operand, nil)
	}
	em.sb.WriteString(e.Op.String())
	if e.Op == eql.OpNot {
		em.sb.WriteByte(' ')
	}
	if _, binary := e.Operand.(*eql.BinaryExpr); binary {
		em.sb.WriteByte('(')
		if err := em.expr(e.Operand, nil); err != nil {
			return err
		}
		em.sb.WriteByte(')')
		return nil
	}
	return em.expr(e.Operand, nil)
}

func (em *emitter) function(e *eql.FunctionExpr) error {
	spelling := em.t.functions.Resolve(e.FunctionName, em.t.dialect.Name)
	// Some backends spell the current timestamp as a bare keyword.
	if len(e.Arguments) == 0 && spelling == "CURRENT_TIMESTAMP" {
		em.sb.WriteString(spelling)
		return nil
	}
	em.sb.WriteString(spelling)
	em.sb.WriteByte('(')
	for i, arg := range e.Arguments {
		if i > 0 {
			em.sb.WriteString(", ")
		}
		if err := em.expr(arg, nil); err != nil {
			return err
		}
	}
	em.sb.WriteByte(')')
	return nil
}

// literal lifts a constant out of the query text into a synthesized
// parameter. NULL stays inline; it has no driver representation.
func (em *emitter) literal(e *eql.LiteralExpr, ctx *metadata.PropertyMeta) error {
	if e.Value == nil {
		em.sb.WriteString("NULL")
		return nil
	}
	value, err := coerceValue(e.Value, ctx)
	if err != nil {
		return err
	}
	name := em.nextAutoName()
	ord := em.params.Add(name, value)
	em.sb.WriteString(em.t.dialect.FormatPlaceholder(name, ord))
	return nil
}

func (em *emitter) parameter(e *eql.ParameterExpr, ctx *metadata.PropertyMeta) error {
	value, bound := em.bindings[e.Name]
	if bound && ctx != nil {
		coerced, err := coerceValue(value, ctx)
		if err != nil {
			return err
		}
		value = coerced
	}
	ord := em.params.Add(e.Name, value)
	em.sb.WriteString(em.t.dialect.FormatPlaceholder(e.Name, ord))
	return nil
}

func isNullLiteral(e eql.Expr) bool {
	lit, ok := e.(*eql.LiteralExpr)
	return ok && lit.Value == nil
}

// coerceValue converts a bound value to the Go type matching the target
// property's declared type, so drivers receive e.g. int64 for an int
// column even when the surface literal lexed as float64.
func coerceValue(v any, pm *metadata.PropertyMeta) (any, error) {
	if v == nil || pm == nil {
		return v, nil
	}
	var (
		out any
		err error
	)
	switch pm.Type {
	case metadata.TypeInt:
		out, err = cast.ToInt64E(v)
	case metadata.TypeFloat, metadata.TypeDecimal:
		out, err = cast.ToFloat64E(v)
	case metadata.TypeBool:
		out, err = cast.ToBoolE(v)
	case metadata.TypeString:
		out, err = cast.ToStringE(v)
	case metadata.TypeTime:
		out, err = cast.ToTimeE(v)
	case metadata.TypeUUID:
		var s string
		if s, err = cast.ToStringE(v); err == nil {
			out, err = uuid.Parse(s)
		}
	default:
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("value for %s: %w", pm.Name, err)
	}
	return out, nil
}

// ── Subquery detection ──────────────────────────────────────────────────────

func queryHasSubquery(q eql.Query) bool {
	switch q := q.(type) {
	case *eql.SelectQuery:
		return selectHasSubquery(q)
	case *eql.UpdateQuery:
		for _, a := range q.Assignments {
			if exprHasSubquery(a.Value) {
				return true
			}
		}
		return q.Where != nil && exprHasSubquery(q.Where.Condition)
	case *eql.DeleteQuery:
		return q.Where != nil && exprHasSubquery(q.Where.Condition)
	default:
		return false
	}
}

func selectHasSubquery(q *eql.SelectQuery) bool {
	for _, item := range q.Select.Items {
		if exprHasSubquery(item.Expr) {
			return true
		}
	}
	if q.From != nil {
		for _, j := range q.From.Joins {
			if j.On != nil && exprHasSubquery(j.On) {
				return true
			}
		}
	}
	if q.Where != nil && exprHasSubquery(q.Where.Condition) {
		return true
	}
	if q.GroupBy != nil {
		for _, item := range q.GroupBy.Items {
			if exprHasSubquery(item) {
				return true
			}
		}
	}
	if q.Having != nil && exprHasSubquery(q.Having.Condition) {
		return true
	}
	if q.OrderBy != nil {
		for _, item := range q.OrderBy.Items {
			if exprHasSubquery(item.Expr) {
				return true
			}
		}
	}
	return false
}

func exprHasSubquery(e eql.Expr) bool {
	switch e := e.(type) {
	case *eql.SubqueryExpr:
		return true
	case *eql.BinaryExpr:
		return exprHasSubquery(e.Left) || exprHasSubquery(e.Right)
	case *eql.UnaryExpr:
		return exprHasSubquery(e.Operand)
	case *eql.AggregateExpr:
		return exprHasSubquery(e.Argument)
	case *eql.FunctionExpr:
		for _, arg := range e.Arguments {
			if exprHasSubquery(arg) {
				return true
			}
		}
		return false
	case *eql.ListExpr:
		for _, item := range e.Items {
			if exprHasSubquery(item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
