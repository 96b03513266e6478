package parser

import (
	"errors"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/lexer"
)

var (
	seq  = grammar.Seq
	alt  = grammar.Alt
	star = grammar.Star
	plus = grammar.Plus
	opt  = grammar.Opt
	ref  = grammar.Ref
	lit  = grammar.Lit
	tok  = grammar.Tok
)

// Built-in functions grouped by arity. Each keyword maps to the operator
// name used in the algebra.
var (
	nullaryBuiltins = []string{"RAND", "NOW", "UUID", "STRUUID"}
	unaryBuiltins   = []string{
		"STR", "LANG", "DATATYPE", "IRI", "URI", "ABS", "CEIL", "FLOOR", "ROUND",
		"STRLEN", "UCASE", "LCASE", "ENCODE_FOR_URI", "YEAR", "MONTH", "DAY",
		"HOURS", "MINUTES", "SECONDS", "TIMEZONE", "TZ", "MD5", "SHA1", "SHA256",
		"SHA384", "SHA512", "ISIRI", "ISURI", "ISBLANK", "ISLITERAL", "ISNUMERIC",
		"SUBJECT", "PREDICATE", "OBJECT", "ISTRIPLE", "LANGDIR", "HASLANG", "HASLANGDIR",
	}
	binaryBuiltins = []string{
		"LANGMATCHES", "CONTAINS", "STRSTARTS", "STRENDS", "STRBEFORE", "STRAFTER",
		"STRLANG", "STRDT", "SAMETERM",
	}
	ternaryBuiltins = []string{"IF", "TRIPLE", "STRLANGDIR"}
)

var iriList = []string{"iri", "RDFLiteral", "NumericLiteral", "BooleanLiteral"}

// termAlt matches a variable, IRI, literal or blank node, plus any extra
// rules given.
func termAlt(extra ...string) *grammar.Rule {
	names := append([]string{"Var"}, iriList...)
	names = append(names, "BlankNode")
	names = append(names, extra...)
	rules := make([]*grammar.Rule, len(names))
	for i, n := range names {
		rules[i] = ref(n)
	}
	return alt(rules...)
}

var rules = map[string]*grammar.Rule{
	"QueryUnit":  ref("Query"),
	"UpdateUnit": ref("Update"),

	// prologue
	"Prologue":    star(alt(ref("BaseDecl"), ref("PrefixDecl"), ref("VersionDecl"))),
	"BaseDecl":    seq(lit("BASE"), tok(lexer.IRIRef)),
	"PrefixDecl":  seq(lit("PREFIX"), tok(lexer.PNameNS), tok(lexer.IRIRef)),
	"VersionDecl": seq(lit("VERSION"), alt(tok(lexer.StringLiteral1), tok(lexer.StringLiteral2))),

	// queries
	"Query": seq(ref("Prologue"),
		alt(ref("SelectQuery"), ref("ConstructQuery"), ref("DescribeQuery"), ref("AskQuery")),
		ref("ValuesClause")),
	"SelectQuery":      seq(ref("SelectClause"), star(ref("DatasetClause")), ref("WhereClause"), ref("SolutionModifier")),
	"SubSelect":        seq(ref("SelectClause"), ref("WhereClause"), ref("SolutionModifier"), ref("ValuesClause")),
	"SelectClause":     seq(lit("SELECT"), opt(lit("DISTINCT", "REDUCED")), alt(plus(alt(ref("Var"), ref("SelectExpression"))), lit("*"))),
	"SelectExpression": seq(lit("("), ref("Expression"), lit("AS"), ref("Var"), lit(")")),
	"ConstructQuery": seq(lit("CONSTRUCT"), alt(
		seq(ref("ConstructTemplate"), star(ref("DatasetClause")), ref("WhereClause"), ref("SolutionModifier")),
		seq(star(ref("DatasetClause")), lit("WHERE"), ref("ConstructShortForm"), ref("SolutionModifier")))),
	"ConstructTemplate":  seq(lit("{"), opt(ref("TriplesTemplate")), lit("}")),
	"ConstructShortForm": seq(lit("{"), opt(ref("TriplesTemplate")), lit("}")),
	"DescribeQuery": seq(lit("DESCRIBE"), alt(plus(ref("VarOrIri")), lit("*")),
		star(ref("DatasetClause")), opt(ref("WhereClause")), ref("SolutionModifier")),
	"AskQuery":      seq(lit("ASK"), star(ref("DatasetClause")), ref("WhereClause"), ref("SolutionModifier")),
	"DatasetClause": seq(lit("FROM"), opt(lit("NAMED")), ref("iri")),
	"WhereClause":   seq(opt(lit("WHERE")), ref("GroupGraphPattern")),

	// solution modifiers
	"SolutionModifier": seq(opt(ref("GroupClause")), opt(ref("HavingClause")), opt(ref("OrderClause")), opt(ref("LimitOffsetClauses"))),
	"GroupClause":      seq(lit("GROUP"), lit("BY"), plus(ref("GroupCondition"))),
	"GroupCondition": alt(ref("BuiltInCall"), ref("FunctionCall"),
		seq(lit("("), ref("Expression"), opt(lit("AS"), ref("Var")), lit(")")),
		ref("Var")),
	"HavingClause":       seq(lit("HAVING"), plus(ref("Constraint"))),
	"OrderClause":        seq(lit("ORDER"), lit("BY"), plus(ref("OrderCondition"))),
	"OrderCondition":     alt(seq(lit("ASC", "DESC"), ref("BrackettedExpression")), ref("Constraint"), ref("Var")),
	"LimitOffsetClauses": alt(seq(ref("LimitClause"), opt(ref("OffsetClause"))), seq(ref("OffsetClause"), opt(ref("LimitClause")))),
	"LimitClause":        seq(lit("LIMIT"), tok(lexer.Integer)),
	"OffsetClause":       seq(lit("OFFSET"), tok(lexer.Integer)),
	"ValuesClause":       opt(lit("VALUES"), ref("DataBlock")),

	// updates
	"Update": seq(ref("Prologue"), opt(ref("Update1"), opt(lit(";"), ref("Update")))),
	"Update1": alt(ref("Load"), ref("Clear"), ref("Drop"), ref("Add"), ref("Move"), ref("Copy"),
		ref("Create"), ref("InsertData"), ref("DeleteData"), ref("DeleteWhere"), ref("Modify")),
	"Load":           seq(lit("LOAD"), opt(lit("SILENT")), ref("iri"), opt(lit("INTO"), ref("GraphRef"))),
	"Clear":          seq(lit("CLEAR"), opt(lit("SILENT")), ref("GraphRefAll")),
	"Drop":           seq(lit("DROP"), opt(lit("SILENT")), ref("GraphRefAll")),
	"Create":         seq(lit("CREATE"), opt(lit("SILENT")), ref("GraphRef")),
	"Add":            seq(lit("ADD"), opt(lit("SILENT")), ref("GraphOrDefault"), lit("TO"), ref("GraphOrDefault")),
	"Move":           seq(lit("MOVE"), opt(lit("SILENT")), ref("GraphOrDefault"), lit("TO"), ref("GraphOrDefault")),
	"Copy":           seq(lit("COPY"), opt(lit("SILENT")), ref("GraphOrDefault"), lit("TO"), ref("GraphOrDefault")),
	"InsertData":     seq(lit("INSERT"), lit("DATA"), ref("QuadData")),
	"DeleteData":     seq(lit("DELETE"), lit("DATA"), ref("QuadData")),
	"DeleteWhere":    seq(lit("DELETE"), lit("WHERE"), ref("QuadPattern")),
	"Modify":         seq(opt(lit("WITH"), ref("iri")), alt(seq(ref("DeleteClause"), opt(ref("InsertClause"))), ref("InsertClause")), star(ref("UsingClause")), lit("WHERE"), ref("GroupGraphPattern")),
	"DeleteClause":   seq(lit("DELETE"), ref("QuadPattern")),
	"InsertClause":   seq(lit("INSERT"), ref("QuadPattern")),
	"UsingClause":    seq(lit("USING"), opt(lit("NAMED")), ref("iri")),
	"GraphOrDefault": alt(lit("DEFAULT"), seq(opt(lit("GRAPH")), ref("iri"))),
	"GraphRef":       seq(lit("GRAPH"), ref("iri")),
	"GraphRefAll":    alt(ref("GraphRef"), lit("DEFAULT", "NAMED", "ALL")),
	"QuadPattern":    seq(lit("{"), ref("Quads"), lit("}")),
	"QuadData":       seq(lit("{"), ref("Quads"), lit("}")),
	"Quads":          seq(opt(ref("TriplesTemplate")), star(ref("QuadsNotTriples"), opt(lit(".")), opt(ref("TriplesTemplate")))),
	"QuadsNotTriples": seq(lit("GRAPH"), ref("VarOrIri"), lit("{"), opt(ref("TriplesTemplate")), lit("}")),
	"TriplesTemplate": seq(ref("TriplesSameSubject"), opt(lit("."), opt(ref("TriplesTemplate")))),

	// graph patterns
	"GroupGraphPattern":    seq(lit("{"), alt(ref("SubSelect"), ref("GroupGraphPatternSub")), lit("}")),
	"GroupGraphPatternSub": seq(opt(ref("TriplesBlock")), star(ref("GraphPatternNotTriples"), opt(lit(".")), opt(ref("TriplesBlock")))),
	"TriplesBlock":         seq(ref("TriplesSameSubjectPath"), opt(lit("."), opt(ref("TriplesBlock")))),
	"GraphPatternNotTriples": alt(ref("GroupOrUnionGraphPattern"), ref("OptionalGraphPattern"), ref("MinusGraphPattern"),
		ref("GraphGraphPattern"), ref("ServiceGraphPattern"), ref("Filter"), ref("Bind"), ref("InlineData")),
	"OptionalGraphPattern":     seq(lit("OPTIONAL"), ref("GroupGraphPattern")),
	"GraphGraphPattern":        seq(lit("GRAPH"), ref("VarOrIri"), ref("GroupGraphPattern")),
	"ServiceGraphPattern":      seq(lit("SERVICE"), opt(lit("SILENT")), ref("VarOrIri"), ref("GroupGraphPattern")),
	"Bind":                     seq(lit("BIND"), lit("("), ref("Expression"), lit("AS"), ref("Var"), lit(")")),
	"InlineData":               seq(lit("VALUES"), ref("DataBlock")),
	"DataBlock":                alt(ref("InlineDataOneVar"), ref("InlineDataFull")),
	"InlineDataOneVar":         seq(ref("Var"), lit("{"), star(ref("DataBlockValue")), lit("}")),
	"InlineDataFull":           seq(alt(tok(lexer.Nil), seq(lit("("), star(ref("Var")), lit(")"))), lit("{"), star(alt(ref("DataBlockRow"), tok(lexer.Nil))), lit("}")),
	"DataBlockRow":             seq(lit("("), plus(ref("DataBlockValue")), lit(")")),
	"DataBlockValue":           alt(ref("iri"), ref("RDFLiteral"), ref("NumericLiteral"), ref("BooleanLiteral"), lit("UNDEF"), ref("TripleTerm")),
	"MinusGraphPattern":        seq(lit("MINUS"), ref("GroupGraphPattern")),
	"GroupOrUnionGraphPattern": seq(ref("GroupGraphPattern"), star(lit("UNION"), ref("GroupGraphPattern"))),
	"Filter":                   seq(lit("FILTER"), ref("Constraint")),
	"Constraint":               alt(ref("BrackettedExpression"), ref("BuiltInCall"), ref("FunctionCall")),
	"FunctionCall":             seq(ref("iri"), ref("ArgList")),
	"ArgList": alt(tok(lexer.Nil),
		seq(lit("("), opt(lit("DISTINCT")), ref("Expression"), star(lit(","), ref("Expression")), lit(")"))),
	"ExpressionList": alt(tok(lexer.Nil), seq(lit("("), ref("Expression"), star(lit(","), ref("Expression")), lit(")"))),

	// triples
	"TriplesSameSubject": alt(
		seq(ref("VarOrTerm"), ref("PropertyListNotEmpty")),
		seq(ref("TriplesNode"), opt(ref("PropertyListNotEmpty"))),
		seq(ref("ReifiedTriple"), opt(ref("PropertyListNotEmpty")))),
	"PropertyListNotEmpty": seq(ref("Verb"), ref("ObjectList"), star(lit(";"), opt(ref("Verb"), ref("ObjectList")))),
	"Verb":                 alt(ref("VarOrIri"), lit("a")),
	"ObjectList":           seq(ref("Object"), star(lit(","), ref("Object"))),
	"Object":               seq(ref("GraphNode"), star(alt(ref("Reifier"), ref("AnnotationBlock")))),
	"AnnotationBlock":      seq(lit("{|"), ref("PropertyListNotEmpty"), lit("|}")),
	"TriplesNode":          alt(ref("Collection"), ref("BlankNodePropertyList")),
	"BlankNodePropertyList": seq(lit("["), ref("AnonSubject"), ref("PropertyListNotEmpty"), lit("]")),
	"AnonSubject":          seq(),
	"Collection":           seq(lit("("), plus(ref("GraphNode")), lit(")")),
	"GraphNode":            alt(ref("VarOrTerm"), ref("TriplesNode"), ref("ReifiedTriple")),

	"TriplesSameSubjectPath": alt(
		seq(ref("VarOrTerm"), ref("PropertyListPathNotEmpty")),
		seq(ref("TriplesNodePath"), opt(ref("PropertyListPathNotEmpty"))),
		seq(ref("ReifiedTriple"), opt(ref("PropertyListPathNotEmpty")))),
	"PropertyListPathNotEmpty": seq(alt(ref("VerbPath"), ref("VerbSimple")), ref("ObjectListPath"),
		star(lit(";"), opt(alt(ref("VerbPath"), ref("VerbSimple")), ref("ObjectListPath")))),
	"VerbPath":                  ref("Path"),
	"VerbSimple":                ref("Var"),
	"ObjectListPath":            seq(ref("ObjectPath"), star(lit(","), ref("ObjectPath"))),
	"ObjectPath":                seq(ref("GraphNodePath"), star(alt(ref("Reifier"), ref("AnnotationBlockPath")))),
	"AnnotationBlockPath":       seq(lit("{|"), ref("PropertyListPathNotEmpty"), lit("|}")),
	"TriplesNodePath":           alt(ref("CollectionPath"), ref("BlankNodePropertyListPath")),
	"BlankNodePropertyListPath": seq(lit("["), ref("AnonSubject"), ref("PropertyListPathNotEmpty"), lit("]")),
	"CollectionPath":            seq(lit("("), plus(ref("GraphNodePath")), lit(")")),
	"GraphNodePath":             alt(ref("VarOrTerm"), ref("TriplesNodePath"), ref("ReifiedTriple")),

	// RDF 1.2 reification
	"Reifier":              seq(lit("~"), opt(ref("VarOrReifierId"))),
	"VarOrReifierId":       alt(ref("Var"), ref("iri"), ref("BlankNode")),
	"ReifiedTriple":        seq(lit("<<"), ref("ReifiedTripleSubject"), ref("Verb"), ref("ReifiedTripleObject"), opt(ref("Reifier")), lit(">>")),
	"ReifiedTripleSubject": termAlt("ReifiedTriple", "TripleTerm"),
	"ReifiedTripleObject":  termAlt("ReifiedTriple", "TripleTerm"),
	"TripleTerm":           seq(lit("<<("), ref("TripleTermSubject"), ref("Verb"), ref("TripleTermObject"), lit(")>>")),
	"TripleTermSubject":    termAlt("TripleTerm"),
	"TripleTermObject":     termAlt("TripleTerm"),

	// property paths
	"Path":             ref("PathAlternative"),
	"PathAlternative":  seq(ref("PathSequence"), star(lit("|"), ref("PathSequence"))),
	"PathSequence":     seq(ref("PathEltOrInverse"), star(lit("/"), ref("PathEltOrInverse"))),
	"PathEltOrInverse": alt(ref("PathElt"), seq(lit("^"), ref("PathElt"))),
	"PathElt":          seq(ref("PathPrimary"), opt(ref("PathMod"))),
	"PathMod":          alt(lit("?", "*", "+"), seq(lit("{"), ref("PathRange"), lit("}"))),
	"PathRange": alt(
		seq(tok(lexer.Integer), opt(lit(","), opt(tok(lexer.Integer)))),
		seq(lit(","), tok(lexer.Integer))),
	"PathPrimary": alt(ref("iri"), lit("a"),
		seq(lit("!"), ref("PathNegatedPropertySet")),
		seq(lit("("), ref("Path"), lit(")"))),
	"PathNegatedPropertySet": alt(ref("PathOneInPropertySet"), tok(lexer.Nil),
		seq(lit("("), ref("PathOneInPropertySet"), star(lit("|"), ref("PathOneInPropertySet")), lit(")"))),
	"PathOneInPropertySet": alt(ref("iri"), lit("a"), seq(lit("^"), alt(ref("iri"), lit("a")))),

	// terms
	"VarOrTerm": alt(ref("Var"), ref("GraphTerm")),
	"VarOrIri":  alt(ref("Var"), ref("iri")),
	"Var":       alt(tok(lexer.Var1), tok(lexer.Var2)),
	"GraphTerm": alt(ref("iri"), ref("RDFLiteral"), ref("NumericLiteral"), ref("BooleanLiteral"),
		ref("BlankNode"), tok(lexer.Nil), ref("TripleTerm")),

	// expressions
	"Expression":               ref("ConditionalOrExpression"),
	"ConditionalOrExpression":  seq(ref("ConditionalAndExpression"), star(lit("||"), ref("ConditionalAndExpression"))),
	"ConditionalAndExpression": seq(ref("RelationalExpression"), star(lit("&&"), ref("RelationalExpression"))),
	"RelationalExpression": seq(ref("AdditiveExpression"), opt(alt(
		seq(lit("=", "!=", "<", ">", "<=", ">="), ref("AdditiveExpression")),
		seq(lit("IN"), ref("ExpressionList")),
		seq(lit("NOT"), lit("IN"), ref("ExpressionList"))))),
	"AdditiveExpression": seq(ref("MultiplicativeExpression"), star(alt(
		seq(lit("+", "-"), ref("MultiplicativeExpression")),
		ref("AdditiveSignedTerm")))),
	"AdditiveSignedTerm":       seq(alt(ref("NumericLiteralPositive"), ref("NumericLiteralNegative")), star(lit("*", "/"), ref("UnaryExpression"))),
	"MultiplicativeExpression": seq(ref("UnaryExpression"), star(lit("*", "/"), ref("UnaryExpression"))),
	"UnaryExpression":          alt(seq(lit("!", "+", "-"), ref("PrimaryExpression")), ref("PrimaryExpression")),
	"PrimaryExpression": alt(ref("BrackettedExpression"), ref("BuiltInCall"), ref("iriOrFunction"),
		ref("RDFLiteral"), ref("NumericLiteral"), ref("BooleanLiteral"), ref("Var"), ref("TripleTerm")),
	"BrackettedExpression": seq(lit("("), ref("Expression"), lit(")")),
	"iriOrFunction":        seq(ref("iri"), opt(ref("ArgList"))),

	"BuiltInCall": alt(ref("Aggregate"), ref("BuiltInFunction"), ref("RegexExpression"),
		ref("SubstringExpression"), ref("StrReplaceExpression"), ref("ExistsFunc"), ref("NotExistsFunc")),
	"BuiltInFunction": alt(
		seq(lit(nullaryBuiltins...), tok(lexer.Nil)),
		seq(lit(unaryBuiltins...), lit("("), ref("Expression"), lit(")")),
		seq(lit(binaryBuiltins...), lit("("), ref("Expression"), lit(","), ref("Expression"), lit(")")),
		seq(lit(ternaryBuiltins...), lit("("), ref("Expression"), lit(","), ref("Expression"), lit(","), ref("Expression"), lit(")")),
		seq(lit("BOUND"), lit("("), ref("Var"), lit(")")),
		seq(lit("BNODE"), alt(seq(lit("("), ref("Expression"), lit(")")), tok(lexer.Nil))),
		seq(lit("CONCAT", "COALESCE"), ref("ExpressionList"))),
	"RegexExpression":      seq(lit("REGEX"), lit("("), ref("Expression"), lit(","), ref("Expression"), opt(lit(","), ref("Expression")), lit(")")),
	"SubstringExpression":  seq(lit("SUBSTR"), lit("("), ref("Expression"), lit(","), ref("Expression"), opt(lit(","), ref("Expression")), lit(")")),
	"StrReplaceExpression": seq(lit("REPLACE"), lit("("), ref("Expression"), lit(","), ref("Expression"), lit(","), ref("Expression"), opt(lit(","), ref("Expression")), lit(")")),
	"ExistsFunc":           seq(lit("EXISTS"), ref("GroupGraphPattern")),
	"NotExistsFunc":        seq(lit("NOT"), lit("EXISTS"), ref("GroupGraphPattern")),
	"Aggregate": alt(
		seq(lit("COUNT"), lit("("), opt(lit("DISTINCT")), alt(lit("*"), ref("Expression")), lit(")")),
		seq(lit("SUM", "MIN", "MAX", "AVG", "SAMPLE"), lit("("), opt(lit("DISTINCT")), ref("Expression"), lit(")")),
		seq(lit("GROUP_CONCAT"), lit("("), opt(lit("DISTINCT")), ref("Expression"),
			opt(lit(";"), lit("SEPARATOR"), lit("="), ref("String")), lit(")"))),

	// literals and names
	"RDFLiteral":             seq(ref("String"), opt(alt(tok(lexer.LangTag), seq(lit("^^"), ref("iri"))))),
	"NumericLiteral":         alt(ref("NumericLiteralUnsigned"), ref("NumericLiteralPositive"), ref("NumericLiteralNegative")),
	"NumericLiteralUnsigned": alt(tok(lexer.Integer), tok(lexer.Decimal), tok(lexer.Double)),
	"NumericLiteralPositive": alt(tok(lexer.IntegerPositive), tok(lexer.DecimalPositive), tok(lexer.DoublePositive)),
	"NumericLiteralNegative": alt(tok(lexer.IntegerNegative), tok(lexer.DecimalNegative), tok(lexer.DoubleNegative)),
	"BooleanLiteral":         lit("true", "false"),
	"String": alt(tok(lexer.StringLiteralLong1), tok(lexer.StringLiteralLong2),
		tok(lexer.StringLiteral1), tok(lexer.StringLiteral2)),
	"iri":       alt(tok(lexer.IRIRef), tok(lexer.PNameLN), tok(lexer.PNameNS)),
	"BlankNode": alt(tok(lexer.BlankNodeLabel), tok(lexer.Anon)),
}

var table = grammar.MustTable(rules)

// engine is shared by every parse; it is immutable once init has run.
var engine = grammar.NewEngine[*Session](table)

// on registers an action whose errors are reported as semantic errors at
// the line the rule started on, unless the action already placed them.
func on(name string, action func(s *Session, m *grammar.Match) (any, error)) {
	engine.On(name, func(s *Session, m *grammar.Match) (any, error) {
		v, err := action(s, m)
		if err != nil {
			var semantic *SemanticError
			if errors.As(err, &semantic) {
				return nil, err
			}
			return nil, &SemanticError{Line: m.Line, Err: err}
		}
		return v, nil
	})
}

func init() {
	registerTermActions()
	registerTripleActions()
	registerPathActions()
	registerPatternActions()
	registerExpressionActions()
	registerQueryActions()
	registerUpdateActions()
}
