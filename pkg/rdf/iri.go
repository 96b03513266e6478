package rdf

import (
	"fmt"
	"strings"
)

// iriRef holds the five RFC 3986 components of an IRI reference. The has*
// flags distinguish an empty component from an absent one.
type iriRef struct {
	scheme, authority, path, query, fragment string
	hasScheme, hasAuthority, hasQuery        bool
	hasFragment                              bool
}

func splitIRI(s string) iriRef {
	var r iriRef
	if i := strings.IndexByte(s, '#'); i >= 0 {
		r.fragment, r.hasFragment = s[i+1:], true
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		r.query, r.hasQuery = s[i+1:], true
		s = s[:i]
	}
	if i := schemeEnd(s); i > 0 {
		r.scheme, r.hasScheme = s[:i], true
		s = s[i+1:]
	}
	if strings.HasPrefix(s, "//") {
		s = s[2:]
		end := strings.IndexByte(s, '/')
		if end < 0 {
			end = len(s)
		}
		r.authority, r.hasAuthority = s[:end], true
		s = s[end:]
	}
	r.path = s
	return r
}

// schemeEnd returns the index of the ':' terminating a leading scheme, or -1.
func schemeEnd(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		case c == ':' && i > 0:
			return i
		default:
			return -1
		}
	}
	return -1
}

func (r iriRef) String() string {
	var b strings.Builder
	if r.hasScheme {
		b.WriteString(r.scheme)
		b.WriteByte(':')
	}
	if r.hasAuthority {
		b.WriteString("//")
		b.WriteString(r.authority)
	}
	b.WriteString(r.path)
	if r.hasQuery {
		b.WriteByte('?')
		b.WriteString(r.query)
	}
	if r.hasFragment {
		b.WriteByte('#')
		b.WriteString(r.fragment)
	}
	return b.String()
}

// IsAbsoluteIRI reports whether iri starts with a scheme.
func IsAbsoluteIRI(iri string) bool {
	return schemeEnd(iri) > 0
}

// ResolveIRI resolves relative against base following RFC 3986 section 5.2.
// An absolute reference is returned with its dot segments removed; an empty
// base leaves relative untouched.
func ResolveIRI(base, relative string) string {
	if base == "" {
		return relative
	}
	r := splitIRI(relative)
	if r.hasScheme {
		r.path = removeDotSegments(r.path)
		return r.String()
	}

	b := splitIRI(base)
	var t iriRef
	t.scheme, t.hasScheme = b.scheme, b.hasScheme
	t.fragment, t.hasFragment = r.fragment, r.hasFragment

	switch {
	case r.hasAuthority:
		t.authority, t.hasAuthority = r.authority, true
		t.path = removeDotSegments(r.path)
		t.query, t.hasQuery = r.query, r.hasQuery
	case r.path == "":
		t.authority, t.hasAuthority = b.authority, b.hasAuthority
		t.path = b.path
		if r.hasQuery {
			t.query, t.hasQuery = r.query, true
		} else {
			t.query, t.hasQuery = b.query, b.hasQuery
		}
	default:
		t.authority, t.hasAuthority = b.authority, b.hasAuthority
		if strings.HasPrefix(r.path, "/") {
			t.path = removeDotSegments(r.path)
		} else {
			t.path = removeDotSegments(mergePaths(b, r.path))
		}
		t.query, t.hasQuery = r.query, r.hasQuery
	}
	return t.String()
}

func mergePaths(base iriRef, relative string) string {
	if base.hasAuthority && base.path == "" {
		return "/" + relative
	}
	if i := strings.LastIndexByte(base.path, '/'); i >= 0 {
		return base.path[:i+1] + relative
	}
	return relative
}

// removeDotSegments implements RFC 3986 section 5.2.4.
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}
	in := path
	var out []string
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "/..":
			in = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "." || in == "..":
			in = ""
		default:
			// Move the first segment, including its leading '/', to the output.
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}

// illegal IRIREF characters per the SPARQL grammar, plus controls and space
const iriExcluded = "<>\"{}|^`\\"

// ValidateIRI checks that iri contains no characters excluded from IRIREF
// and, when absolute, has a well-formed scheme.
func ValidateIRI(iri string) error {
	for _, r := range iri {
		if r <= 0x20 || strings.ContainsRune(iriExcluded, r) {
			return fmt.Errorf("invalid character %q in IRI <%s>", r, iri)
		}
	}
	if i := strings.IndexByte(iri, ':'); i == 0 {
		return fmt.Errorf("IRI <%s> has an empty scheme", iri)
	}
	return nil
}
