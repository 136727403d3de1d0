// Package ast holds the closed set of Tide syntax tree nodes. Nodes are built
// once by the parser and never mutated afterwards.
package ast

type NodeType string

const (
	NodeProgram              NodeType = "Program"
	NodeVariableDeclaration  NodeType = "VariableDeclaration"
	NodeFunctionDeclaration  NodeType = "FunctionDeclaration"
	NodeClassDeclaration     NodeType = "ClassDeclaration"
	NodeClassMemberBlock     NodeType = "ClassMemberBlock"
	NodeIfStatement          NodeType = "IfStatement"
	NodeForStatement         NodeType = "ForStatement"
	NodeForEachStatement     NodeType = "ForEachStatement"
	NodeWhileStatement       NodeType = "WhileStatement"
	NodeImportStatement      NodeType = "ImportStatement"
	NodeExportDeclaration    NodeType = "ExportDeclaration"
	NodeControlFlowStatement NodeType = "ControlFlowStatement"
	NodeChooseStatement      NodeType = "ChooseStatement"
	NodeChooseCase           NodeType = "ChooseCase"
	NodeNullStatement        NodeType = "NullStatement"

	NodeAssignmentExpression         NodeType = "AssignmentExpression"
	NodeCompoundAssignmentExpression NodeType = "CompoundAssignmentExpression"
	NodeBinaryExpression             NodeType = "BinaryExpression"
	NodeMembershipExpression         NodeType = "MembershipExpression"
	NodeLogicalExpression            NodeType = "LogicalExpression"
	NodeTernaryExpression            NodeType = "TernaryExpression"
	NodeMemberExpression             NodeType = "MemberExpression"
	NodeCallExpression               NodeType = "CallExpression"
	NodeChooseExpression             NodeType = "ChooseExpression"
	NodeIdentifier                   NodeType = "Identifier"
	NodeProperty                     NodeType = "Property"
	NodeNumericLiteral               NodeType = "NumericLiteral"
	NodeStringLiteral                NodeType = "StringLiteral"
	NodeBooleanLiteral               NodeType = "BooleanLiteral"
	NodeObjectLiteral                NodeType = "ObjectLiteral"
	NodeListLiteral                  NodeType = "ListLiteral"
)

// Position is a 1-based source location. The zero value means unknown.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Node interface {
	NodeType() NodeType
	Pos() Position
	isNode()
}

type nodeImpl struct {
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Pos() Position      { return n.Position }
func (nodeImpl) isNode()              {}

func (n *nodeImpl) setPos(pos Position) { n.Position = pos }

type positioned interface {
	setPos(Position)
}

// SetPos records where node starts in the source and returns it, so the
// parser can annotate nodes inline.
func SetPos[T Node](node T, line, column int) T {
	if p, ok := any(node).(positioned); ok {
		p.setPos(Position{Line: line, Column: column})
	}
	return node
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expressions

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type NumericLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value float64 `json:"value"`
}

func NewNumericLiteral(value float64) *NumericLiteral {
	return &NumericLiteral{nodeImpl: newNodeImpl(NodeNumericLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

// Property is one `key: value` entry of an object literal. A nil Value is the
// punned form `{ key }`.
type Property struct {
	nodeImpl

	Key   string     `json:"key"`
	Value Expression `json:"value,omitempty"`
}

func NewProperty(key string, value Expression) *Property {
	return &Property{nodeImpl: newNodeImpl(NodeProperty), Key: key, Value: value}
}

type ObjectLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Properties []*Property `json:"properties"`
}

func NewObjectLiteral(properties []*Property) *ObjectLiteral {
	return &ObjectLiteral{nodeImpl: newNodeImpl(NodeObjectLiteral), Properties: properties}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{nodeImpl: newNodeImpl(NodeListLiteral), Elements: elements}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// LogicalExpression covers `&&`, `||` and the unary `!`/`not`, whose Left is nil.
type LogicalExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left,omitempty"`
	Right    Expression `json:"right"`
}

func NewLogicalExpression(operator string, left, right Expression) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpression), Operator: operator, Left: left, Right: right}
}

type MembershipExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Element    Expression `json:"element"`
	Collection Expression `json:"collection"`
	Negated    bool       `json:"negated,omitempty"`
}

func NewMembershipExpression(element, collection Expression, negated bool) *MembershipExpression {
	return &MembershipExpression{nodeImpl: newNodeImpl(NodeMembershipExpression), Element: element, Collection: collection, Negated: negated}
}

type TernaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Test       Expression `json:"test"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func NewTernaryExpression(test, consequent, alternate Expression) *TernaryExpression {
	return &TernaryExpression{nodeImpl: newNodeImpl(NodeTernaryExpression), Test: test, Consequent: consequent, Alternate: alternate}
}

// MemberExpression is `object.name` (Property is an *Identifier) or the
// computed `object[expr]`.
type MemberExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Object   Expression `json:"object"`
	Property Expression `json:"property"`
	Computed bool       `json:"computed,omitempty"`
}

func NewMemberExpression(object, property Expression, computed bool) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: property, Computed: computed}
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Target Expression `json:"target"`
	Value  Expression `json:"value"`
}

func NewAssignmentExpression(target, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Target: target, Value: value}
}

// CompoundAssignmentExpression is `target op= value`; Operator is the stripped
// binary operator ("+", "//", "??", ...).
type CompoundAssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Target   Expression `json:"target"`
	Value    Expression `json:"value"`
}

func NewCompoundAssignmentExpression(operator string, target, value Expression) *CompoundAssignmentExpression {
	return &CompoundAssignmentExpression{nodeImpl: newNodeImpl(NodeCompoundAssignmentExpression), Operator: operator, Target: target, Value: value}
}

// ChooseCase is one `case a, b:` arm. The default arm has no Tests.
type ChooseCase struct {
	nodeImpl

	Tests []Expression `json:"tests,omitempty"`
	Body  []Statement  `json:"body"`
}

func NewChooseCase(tests []Expression, body []Statement) *ChooseCase {
	return &ChooseCase{nodeImpl: newNodeImpl(NodeChooseCase), Tests: tests, Body: body}
}

// ChooseClause is the shape shared by the statement and expression forms of
// choose/chooseall.
type ChooseClause struct {
	Subject Expression    `json:"subject"`
	Alias   *Identifier   `json:"alias,omitempty"`
	All     bool          `json:"all,omitempty"`
	Cases   []*ChooseCase `json:"cases"`
	Default *ChooseCase   `json:"default,omitempty"`
}

type ChooseExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	ChooseClause
}

func NewChooseExpression(clause ChooseClause) *ChooseExpression {
	return &ChooseExpression{nodeImpl: newNodeImpl(NodeChooseExpression), ChooseClause: clause}
}
