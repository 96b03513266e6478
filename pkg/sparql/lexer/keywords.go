package lexer

import "strings"

// keywords holds the upper-cased reserved words and built-in function names.
// Matching is case-insensitive; "a" is handled separately because it is
// case-sensitive.
var keywords = map[string]bool{}

func init() {
	for _, kw := range []string{
		// prologue and query forms
		"BASE", "PREFIX", "VERSION", "SELECT", "CONSTRUCT", "DESCRIBE", "ASK",
		"DISTINCT", "REDUCED", "AS", "FROM", "NAMED", "WHERE",
		"GROUP", "BY", "HAVING", "ORDER", "ASC", "DESC", "LIMIT", "OFFSET", "VALUES", "UNDEF",
		// graph patterns
		"OPTIONAL", "GRAPH", "SERVICE", "SILENT", "BIND", "MINUS", "UNION", "FILTER",
		"NOT", "IN", "EXISTS",
		// update
		"LOAD", "CLEAR", "DROP", "CREATE", "ADD", "MOVE", "COPY", "TO", "INTO",
		"INSERT", "DELETE", "DATA", "WITH", "USING", "DEFAULT", "ALL",
		// aggregates
		"COUNT", "SUM", "MIN", "MAX", "AVG", "SAMPLE", "GROUP_CONCAT", "SEPARATOR",
		// built-in calls
		"STR", "LANG", "LANGMATCHES", "DATATYPE", "BOUND", "IRI", "URI", "BNODE",
		"RAND", "ABS", "CEIL", "FLOOR", "ROUND", "CONCAT", "STRLEN", "UCASE", "LCASE",
		"ENCODE_FOR_URI", "CONTAINS", "STRSTARTS", "STRENDS", "STRBEFORE", "STRAFTER",
		"YEAR", "MONTH", "DAY", "HOURS", "MINUTES", "SECONDS", "TIMEZONE", "TZ", "NOW",
		"UUID", "STRUUID", "MD5", "SHA1", "SHA256", "SHA384", "SHA512",
		"COALESCE", "IF", "STRLANG", "STRDT", "SAMETERM",
		"ISIRI", "ISURI", "ISBLANK", "ISLITERAL", "ISNUMERIC",
		"REGEX", "SUBSTR", "REPLACE",
		// RDF 1.2
		"TRIPLE", "SUBJECT", "PREDICATE", "OBJECT", "ISTRIPLE",
		"LANGDIR", "HASLANG", "HASLANGDIR", "STRLANGDIR",
	} {
		keywords[kw] = true
	}
}

// IsKeyword reports whether word (in any case) is a reserved word.
func IsKeyword(word string) bool {
	return word == "a" || keywords[strings.ToUpper(word)]
}
