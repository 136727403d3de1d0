package ast

// Statements and declarations

type Program struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

type DeclarationKind string

const (
	DeclareLet      DeclarationKind = "let"
	DeclareConst    DeclarationKind = "const"
	DeclareReactive DeclarationKind = "reactive"
)

// VariableDeclaration binds Name in the current scope. Value is nil for a bare
// `let x`.
type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Kind  DeclarationKind `json:"kind"`
	Name  *Identifier     `json:"name"`
	Value Expression      `json:"value,omitempty"`
}

func NewVariableDeclaration(kind DeclarationKind, name *Identifier, value Expression) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Kind: kind, Name: name, Value: value}
}

// FunctionDeclaration is both the `fn name(...)` statement and, with a nil ID,
// an anonymous function expression. Body is shared by every call.
type FunctionDeclaration struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID     *Identifier   `json:"id,omitempty"`
	Params []*Identifier `json:"params"`
	Body   []Statement   `json:"body"`
}

func NewFunctionDeclaration(id *Identifier, params []*Identifier, body []Statement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), ID: id, Params: params, Body: body}
}

type ClassVisibility string

const (
	VisibilityDefault ClassVisibility = "default"
	VisibilityPublic  ClassVisibility = "public"
	VisibilityPrivate ClassVisibility = "private"
)

type ClassMemberBlock struct {
	nodeImpl

	Visibility ClassVisibility `json:"visibility"`
	Body       []Statement     `json:"body"`
}

func NewClassMemberBlock(visibility ClassVisibility, body []Statement) *ClassMemberBlock {
	return &ClassMemberBlock{nodeImpl: newNodeImpl(NodeClassMemberBlock), Visibility: visibility, Body: body}
}

// ClassDeclaration is parsed for its shape only; evaluating it has no effect.
type ClassDeclaration struct {
	nodeImpl
	statementMarker

	ID     *Identifier         `json:"id"`
	Blocks []*ClassMemberBlock `json:"blocks"`
}

func NewClassDeclaration(id *Identifier, blocks []*ClassMemberBlock) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), ID: id, Blocks: blocks}
}

// IfStatement. An `else if` chain is stored as an Alternate holding a single
// nested IfStatement; Alternate is nil when there is no else branch.
type IfStatement struct {
	nodeImpl
	statementMarker

	Test       Expression  `json:"test"`
	Consequent []Statement `json:"consequent"`
	Alternate  []Statement `json:"alternate,omitempty"`
}

func NewIfStatement(test Expression, consequent, alternate []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Test: test, Consequent: consequent, Alternate: alternate}
}

// ForStatement is the three-slot C-style loop; every slot may be nil.
type ForStatement struct {
	nodeImpl
	statementMarker

	Init   Statement   `json:"init,omitempty"`
	Test   Expression  `json:"test,omitempty"`
	Update Expression  `json:"update,omitempty"`
	Body   []Statement `json:"body"`
}

func NewForStatement(init Statement, test, update Expression, body []Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Test: test, Update: update, Body: body}
}

// LoopBinding is one foreach slot, optionally introduced with `let`.
type LoopBinding struct {
	Name    *Identifier `json:"name"`
	Declare bool        `json:"declare,omitempty"`
}

type ForEachStatement struct {
	nodeImpl
	statementMarker

	Element  LoopBinding  `json:"element"`
	Index    *LoopBinding `json:"index,omitempty"`
	Iterable Expression   `json:"iterable"`
	Body     []Statement  `json:"body"`
}

func NewForEachStatement(element LoopBinding, index *LoopBinding, iterable Expression, body []Statement) *ForEachStatement {
	return &ForEachStatement{nodeImpl: newNodeImpl(NodeForEachStatement), Element: element, Index: index, Iterable: iterable, Body: body}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Test Expression  `json:"test"`
	Body []Statement `json:"body"`
}

func NewWhileStatement(test Expression, body []Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Test: test, Body: body}
}

// ImportStatement records an import that the parser already resolved.
type ImportStatement struct {
	nodeImpl
	statementMarker

	Path string `json:"path"`
}

func NewImportStatement(path string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Path: path}
}

// ExportDeclaration wraps a VariableDeclaration or a named FunctionDeclaration.
type ExportDeclaration struct {
	nodeImpl
	statementMarker

	Declaration Statement `json:"declaration"`
}

func NewExportDeclaration(decl Statement) *ExportDeclaration {
	return &ExportDeclaration{nodeImpl: newNodeImpl(NodeExportDeclaration), Declaration: decl}
}

type ControlFlowKind string

const (
	ControlBreak    ControlFlowKind = "break"
	ControlContinue ControlFlowKind = "continue"
	ControlPass     ControlFlowKind = "pass"
)

type ControlFlowStatement struct {
	nodeImpl
	statementMarker

	Kind ControlFlowKind `json:"kind"`
}

func NewControlFlowStatement(kind ControlFlowKind) *ControlFlowStatement {
	return &ControlFlowStatement{nodeImpl: newNodeImpl(NodeControlFlowStatement), Kind: kind}
}

type ChooseStatement struct {
	nodeImpl
	statementMarker
	ChooseClause
}

func NewChooseStatement(clause ChooseClause) *ChooseStatement {
	return &ChooseStatement{nodeImpl: newNodeImpl(NodeChooseStatement), ChooseClause: clause}
}

// NullStatement is an empty statement (a stray `;`).
type NullStatement struct {
	nodeImpl
	statementMarker
}

func NewNullStatement() *NullStatement {
	return &NullStatement{nodeImpl: newNodeImpl(NodeNullStatement)}
}
