// Package expr implements the whitelisted condition-expression language used
// by condition steps.  The grammar is deliberately small: comparisons
// (==, !=, >, >=, <, <=), boolean combinators (&&, ||, !), parentheses,
// literals (numbers, quoted strings, true/false/null) and dotted
// context-variable paths.  Expressions are parsed into a closed AST and
// evaluated by an interpreter with no access to host capabilities.
package expr
