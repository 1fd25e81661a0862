package meaning

// Grammar kinds referenced by name outside the table.
const (
	KindProgram                  Kind = "program"
	KindUninterpreted            Kind = "uninterpreted"
	KindBodyStatement            Kind = "body_statement"
	KindBlockBody                Kind = "block_body"
	KindBegin                    Kind = "begin"
	KindBeginBlock               Kind = "begin_block"
	KindEndBlock                 Kind = "end_block"
	KindThen                     Kind = "then"
	KindElse                     Kind = "else"
	KindElsif                    Kind = "elsif"
	KindEnsure                   Kind = "ensure"
	KindRescue                   Kind = "rescue"
	KindExceptions               Kind = "exceptions"
	KindExceptionVariable        Kind = "exception_variable"
	KindDo                       Kind = "do"
	KindIf                       Kind = "if"
	KindUnless                   Kind = "unless"
	KindWhile                    Kind = "while"
	KindUntil                    Kind = "until"
	KindFor                      Kind = "for"
	KindIn                       Kind = "in"
	KindCase                     Kind = "case"
	KindCaseMatch                Kind = "case_match"
	KindWhen                     Kind = "when"
	KindInClause                 Kind = "in_clause"
	KindPattern                  Kind = "pattern"
	KindIfGuard                  Kind = "if_guard"
	KindUnlessGuard              Kind = "unless_guard"
	KindIfModifier               Kind = "if_modifier"
	KindUnlessModifier           Kind = "unless_modifier"
	KindWhileModifier            Kind = "while_modifier"
	KindUntilModifier            Kind = "until_modifier"
	KindRescueModifier           Kind = "rescue_modifier"
	KindConditional              Kind = "conditional"
	KindMethod                   Kind = "method"
	KindSingletonMethod          Kind = "singleton_method"
	KindMethodParameters         Kind = "method_parameters"
	KindLambdaParameters         Kind = "lambda_parameters"
	KindBlockParameters          Kind = "block_parameters"
	KindDestructuredParameter    Kind = "destructured_parameter"
	KindOptionalParameter        Kind = "optional_parameter"
	KindKeywordParameter         Kind = "keyword_parameter"
	KindSplatParameter           Kind = "splat_parameter"
	KindHashSplatParameter       Kind = "hash_splat_parameter"
	KindHashSplatNil             Kind = "hash_splat_nil"
	KindBlockParameter           Kind = "block_parameter"
	KindForwardParameter         Kind = "forward_parameter"
	KindClass                    Kind = "class"
	KindModule                   Kind = "module"
	KindSingletonClass           Kind = "singleton_class"
	KindSuperclass               Kind = "superclass"
	KindCall                     Kind = "call"
	KindArgumentList             Kind = "argument_list"
	KindBlock                    Kind = "block"
	KindDoBlock                  Kind = "do_block"
	KindLambda                   Kind = "lambda"
	KindBlockArgument            Kind = "block_argument"
	KindSplatArgument            Kind = "splat_argument"
	KindHashSplatArgument        Kind = "hash_splat_argument"
	KindForwardArgument          Kind = "forward_argument"
	KindPair                     Kind = "pair"
	KindArray                    Kind = "array"
	KindHash                     Kind = "hash"
	KindElementReference         Kind = "element_reference"
	KindScopeResolution          Kind = "scope_resolution"
	KindAssignment               Kind = "assignment"
	KindOperatorAssignment       Kind = "operator_assignment"
	KindLeftAssignmentList       Kind = "left_assignment_list"
	KindRightAssignmentList      Kind = "right_assignment_list"
	KindDestructuredLeft         Kind = "destructured_left_assignment"
	KindRestAssignment           Kind = "rest_assignment"
	KindBinary                   Kind = "binary"
	KindUnary                    Kind = "unary"
	KindRange                    Kind = "range"
	KindParenthesizedStatements  Kind = "parenthesized_statements"
	KindReturn                   Kind = "return"
	KindBreak                    Kind = "break"
	KindNext                     Kind = "next"
	KindYield                    Kind = "yield"
	KindRedo                     Kind = "redo"
	KindRetry                    Kind = "retry"
	KindAlias                    Kind = "alias"
	KindUndef                    Kind = "undef"
	KindString                   Kind = "string"
	KindChainedString            Kind = "chained_string"
	KindSubshell                 Kind = "subshell"
	KindRegex                    Kind = "regex"
	KindDelimitedSymbol          Kind = "delimited_symbol"
	KindStringArray              Kind = "string_array"
	KindSymbolArray              Kind = "symbol_array"
	KindInterpolation            Kind = "interpolation"
	KindStringContent            Kind = "string_content"
	KindEscapeSequence           Kind = "escape_sequence"
	KindHeredocBeginning         Kind = "heredoc_beginning"
	KindHeredocContent           Kind = "heredoc_content"
	KindIdentifier               Kind = "identifier"
	KindConstant                 Kind = "constant"
	KindSelf                     Kind = "self"
	KindSuper                    Kind = "super"
	KindArrayPattern             Kind = "array_pattern"
	KindFindPattern              Kind = "find_pattern"
	KindHashPattern              Kind = "hash_pattern"
	KindKeywordPattern           Kind = "keyword_pattern"
	KindAlternativePattern       Kind = "alternative_pattern"
	KindAsPattern                Kind = "as_pattern"
	KindParenthesizedPattern     Kind = "parenthesized_pattern"
	KindVariableReferencePattern Kind = "variable_reference_pattern"
	KindExpressionReference      Kind = "expression_reference_pattern"
	KindMatchPattern             Kind = "match_pattern"
	KindTestPattern              Kind = "test_pattern"
	KindEmptyStatement           Kind = "empty_statement"
	KindSetter                   Kind = "setter"
)

// Refined kinds: tags the builder assigns when a flag of the concrete node
// changes how the construct must be laid out.
const (
	// def name(args) = expr
	KindEndlessMethod Kind = "endless_method"
	// def self.name(args) = expr
	KindEndlessSingletonMethod Kind = "endless_singleton_method"
	// Arguments written without parentheses: `puts a, b`, `return 1, 2`.
	KindCommandArgumentList Kind = "command_argument_list"
	// `not x` and `defined?(x)` lay out differently from symbolic unaries.
	KindNot     Kind = "not"
	KindDefined Kind = "defined"
	// Implicit block parameters `_1` .. `_9`.
	KindNumberedParameter Kind = "numbered_parameter"
	// Heredoc variants by opening: `<<~ID`, `<<-ID`, `<<ID`.
	KindSquigglyHeredoc Kind = "squiggly_heredoc"
	KindDashHeredoc     Kind = "dash_heredoc"
	KindPlainHeredoc    Kind = "plain_heredoc"
	KindHeredocBody     Kind = "heredoc_body"
	// A heredoc body that must be reproduced byte for byte because another
	// heredoc's body sits inside its literal text.
	KindOpaqueHeredocBody Kind = "opaque_heredoc_body"
	// An anonymous token sitting in a field declared as a child.
	KindToken Kind = "token"
)

// IsHeredoc reports whether n is one of the heredoc variants.
func IsHeredoc(n *Node) bool {
	return n.Is(KindSquigglyHeredoc, KindDashHeredoc, KindPlainHeredoc)
}
