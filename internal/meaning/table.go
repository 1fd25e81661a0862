package meaning

import (
	"fmt"
	"slices"
)

// Shape is the declared type of one grammar field.
type Shape uint8

const (
	// ShapeChild is a required single named child.
	ShapeChild Shape = iota + 1
	// ShapeOptionalChild is a named child that may be absent.
	ShapeOptionalChild
	// ShapeChildList is a field that may repeat; children keep source order.
	ShapeChildList
	// ShapeSpan is an anonymous token whose text is content (operators).
	ShapeSpan
	// ShapeOptionalSpan is a ShapeSpan that may be absent.
	ShapeOptionalSpan
)

func (s Shape) String() string {
	switch s {
	case ShapeChild:
		return "Child"
	case ShapeOptionalChild:
		return "OptionalChild"
	case ShapeChildList:
		return "ChildList"
	case ShapeSpan:
		return "Span"
	case ShapeOptionalSpan:
		return "OptionalSpan"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// FieldRule declares one field of a kind.
type FieldRule struct {
	Name  string
	Shape Shape
}

// Rule is the extraction rule for one concrete kind.
type Rule struct {
	Fields []FieldRule
	// Leaf kinds keep their raw text as an atom and may not have named
	// children.
	Leaf bool
	// Drop removes the node entirely (empty statements).
	Drop bool
}

func (r Rule) field(name string) (FieldRule, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldRule{}, false
}

func child(name string) FieldRule   { return FieldRule{Name: name, Shape: ShapeChild} }
func opt(name string) FieldRule     { return FieldRule{Name: name, Shape: ShapeOptionalChild} }
func list(name string) FieldRule    { return FieldRule{Name: name, Shape: ShapeChildList} }
func span(name string) FieldRule    { return FieldRule{Name: name, Shape: ShapeSpan} }
func optSpan(name string) FieldRule { return FieldRule{Name: name, Shape: ShapeOptionalSpan} }

var children = list(FieldChildren)

func fields(fs ...FieldRule) Rule { return Rule{Fields: fs} }
func leaf() Rule                  { return Rule{Leaf: true} }

// kindTable mirrors the field shapes of tree-sitter-ruby's node-types.json.
// Field order is the logical order of the construct; "children" marks where
// unfielded named children go.
var kindTable = map[Kind]Rule{
	KindProgram:       fields(children),
	KindUninterpreted: leaf(),
	KindEmptyStatement: {Drop: true},

	// Bodies and clauses.
	KindBodyStatement:     fields(children),
	KindBlockBody:         fields(children),
	KindBegin:             fields(children),
	KindBeginBlock:        fields(children),
	KindEndBlock:          fields(children),
	KindThen:              fields(children),
	KindElse:              fields(children),
	KindEnsure:            fields(children),
	KindDo:                fields(children),
	KindRescue:            fields(opt("exceptions"), opt("variable"), opt("body")),
	KindExceptions:        fields(children),
	KindExceptionVariable: fields(children),

	// Conditionals and loops.
	KindIf:             fields(child("condition"), opt("consequence"), opt("alternative")),
	KindUnless:         fields(child("condition"), opt("consequence"), opt("alternative")),
	KindElsif:          fields(child("condition"), opt("consequence"), opt("alternative")),
	KindIfModifier:     fields(child("body"), child("condition")),
	KindUnlessModifier: fields(child("body"), child("condition")),
	KindWhileModifier:  fields(child("body"), child("condition")),
	KindUntilModifier:  fields(child("body"), child("condition")),
	KindRescueModifier: fields(child("body"), child("handler")),
	KindConditional:    fields(child("condition"), child("consequence"), child("alternative")),
	KindWhile:          fields(child("condition"), opt("body")),
	KindUntil:          fields(child("condition"), opt("body")),
	KindFor:            fields(child("pattern"), child("value"), opt("body")),
	KindIn:             fields(children),
	KindCase:           fields(opt("value"), children),
	KindCaseMatch:      fields(opt("value"), list("clauses"), opt("else"), children),
	KindWhen:           fields(list("pattern"), opt("body")),
	KindInClause:       fields(child("pattern"), opt("guard"), opt("body")),
	KindPattern:        fields(children),
	KindIfGuard:        fields(child("condition")),
	KindUnlessGuard:    fields(child("condition")),

	// Definitions.
	KindMethod:                fields(child("name"), opt("parameters"), opt("body"), children),
	KindSingletonMethod:       fields(child("object"), child("name"), opt("parameters"), opt("body"), children),
	KindMethodParameters:      fields(children),
	KindLambdaParameters:      fields(children),
	KindBlockParameters:       fields(children, list("locals")),
	KindDestructuredParameter: fields(children),
	KindOptionalParameter:     fields(child("name"), child("value")),
	KindKeywordParameter:      fields(child("name"), opt("value")),
	KindSplatParameter:        fields(opt("name")),
	KindHashSplatParameter:    fields(opt("name")),
	KindHashSplatNil:          leaf(),
	KindBlockParameter:        fields(opt("name")),
	KindForwardParameter:      leaf(),
	KindClass:                 fields(child("name"), opt("superclass"), opt("body"), children),
	KindModule:                fields(child("name"), opt("body"), children),
	KindSingletonClass:        fields(child("value"), opt("body"), children),
	KindSuperclass:            fields(children),
	KindAlias:                 fields(child("name"), child("alias")),
	KindUndef:                 fields(children),
	KindSetter:                fields(child("name")),

	// Calls.
	KindCall:              fields(opt("receiver"), optSpan("operator"), opt("method"), opt("arguments"), opt("block")),
	"method_call":         fields(opt("receiver"), optSpan("operator"), opt("method"), opt("arguments"), opt("block")),
	KindArgumentList:      fields(children),
	KindBlock:             fields(opt("parameters"), opt("body"), children),
	KindDoBlock:           fields(opt("parameters"), opt("body"), children),
	KindLambda:            fields(opt("parameters"), child("body")),
	KindBlockArgument:     fields(children),
	KindSplatArgument:     fields(children),
	KindHashSplatArgument: fields(children),
	KindForwardArgument:   leaf(),
	KindPair:              fields(child("key"), opt("value")),
	KindElementReference:  fields(child("object"), children, opt("block")),
	KindScopeResolution:   fields(opt("scope"), child("name")),
	KindReturn:            fields(children),
	KindBreak:             fields(children),
	KindNext:              fields(children),
	KindYield:             fields(children),
	KindRedo:              fields(children),
	KindRetry:             fields(children),
	KindSuper:             leaf(),

	// Operators and assignment.
	KindAssignment:              fields(child("left"), child("right")),
	KindOperatorAssignment:      fields(child("left"), span("operator"), child("right")),
	KindLeftAssignmentList:      fields(children),
	KindRightAssignmentList:     fields(children),
	KindDestructuredLeft:        fields(children),
	KindRestAssignment:          fields(children),
	KindBinary:                  fields(child("left"), span("operator"), child("right")),
	KindUnary:                   fields(span("operator"), child("operand")),
	KindRange:                   fields(opt("begin"), span("operator"), opt("end")),
	KindParenthesizedStatements: fields(children),

	// Collections.
	KindArray:       fields(children),
	KindHash:        fields(children),
	KindStringArray: fields(children),
	KindSymbolArray: fields(children),
	"bare_string":   fields(children),
	"bare_symbol":   fields(children),

	// Strings and friends.
	KindString:           fields(children),
	KindChainedString:    fields(children),
	KindSubshell:         fields(children),
	KindRegex:            fields(children),
	KindDelimitedSymbol:  fields(children),
	KindInterpolation:    fields(children),
	KindStringContent:    leaf(),
	KindEscapeSequence:   leaf(),
	KindHeredocBeginning: leaf(),
	KindHeredocContent:   leaf(),
	"heredoc_end":        leaf(),
	"character":          leaf(),
	"simple_symbol":      leaf(),
	"hash_key_symbol":    leaf(),

	// Patterns.
	KindArrayPattern:             fields(opt("class"), children),
	KindFindPattern:              fields(opt("class"), children),
	KindHashPattern:              fields(opt("class"), children),
	KindKeywordPattern:           fields(child("key"), opt("value")),
	KindAlternativePattern:       fields(list("alternatives")),
	KindAsPattern:                fields(child("value"), child("name")),
	KindParenthesizedPattern:     fields(children),
	KindVariableReferencePattern: fields(child("name")),
	KindExpressionReference:      fields(child("value")),
	KindMatchPattern:             fields(child("value"), child("pattern")),
	KindTestPattern:              fields(child("value"), child("pattern")),

	// Numbers. rational/complex wrap an integer or float token.
	"integer":  leaf(),
	"float":    leaf(),
	"rational": fields(children),
	"complex":  fields(children),

	// Names and keywords.
	KindIdentifier:      leaf(),
	KindConstant:        leaf(),
	"instance_variable": leaf(),
	"class_variable":    leaf(),
	"global_variable":   leaf(),
	"operator":          leaf(),
	KindSelf:            leaf(),
	"nil":               leaf(),
	"true":              leaf(),
	"false":             leaf(),
	"line":              leaf(),
	"file":              leaf(),
	"encoding":          leaf(),
}

// Action is an exception applied to one (kind, field) pair.
type Action uint8

const (
	// ActionDrop removes the field.
	ActionDrop Action = iota + 1
	// ActionDropIfEmpty removes the field when its node has no children.
	ActionDropIfEmpty
)

type fieldKey struct {
	kind  Kind
	field string
}

// fieldExceptions lists fields whose presence carries no meaning for one
// specific kind. `def foo()` and `def foo` define the same method; the same
// call written `foo()` keeps its parentheses because they change how an
// identifier resolves.
var fieldExceptions = map[fieldKey]Action{
	{KindMethod, "parameters"}:          ActionDropIfEmpty,
	{KindSingletonMethod, "parameters"}: ActionDropIfEmpty,
	{KindLambda, "parameters"}:          ActionDropIfEmpty,
}

// LookupRule returns the rule for kind.
func LookupRule(kind Kind) (Rule, bool) {
	r, ok := kindTable[kind]
	return r, ok
}

// LookupException returns the exception for (kind, field), if any.
func LookupException(kind Kind, field string) (Action, bool) {
	a, ok := fieldExceptions[fieldKey{kind, field}]
	return a, ok
}

// ValidateTable checks the dispatch table and the exception table against
// each other. A failure means the tables were edited inconsistently; the
// builder refuses to start.
func ValidateTable() error {
	kinds := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		r := kindTable[k]
		if r.Leaf && len(r.Fields) > 0 {
			return &ContractViolation{Kind: string(k), Reason: "leaf kind declares fields"}
		}
		seen := make(map[string]bool, len(r.Fields))
		for _, f := range r.Fields {
			if f.Shape < ShapeChild || f.Shape > ShapeOptionalSpan {
				return &ContractViolation{Kind: string(k), Field: f.Name, Reason: "unknown field shape " + f.Shape.String()}
			}
			if seen[f.Name] {
				return &ContractViolation{Kind: string(k), Field: f.Name, Reason: "field declared twice"}
			}
			if f.Name == FieldChildren && f.Shape != ShapeChildList {
				return &ContractViolation{Kind: string(k), Field: f.Name, Reason: "children must be a list"}
			}
			seen[f.Name] = true
		}
	}
	for key, action := range fieldExceptions {
		r, ok := kindTable[key.kind]
		if !ok {
			return &ContractViolation{Kind: string(key.kind), Field: key.field, Reason: "exception for unknown kind"}
		}
		f, ok := r.field(key.field)
		if !ok {
			return &ContractViolation{Kind: string(key.kind), Field: key.field, Reason: "exception for undeclared field"}
		}
		if action == ActionDropIfEmpty && f.Shape != ShapeOptionalChild && f.Shape != ShapeChild {
			return &ContractViolation{Kind: string(key.kind), Field: key.field, Reason: "drop-if-empty needs a child field"}
		}
	}
	return nil
}
