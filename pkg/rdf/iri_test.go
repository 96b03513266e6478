package rdf

import "testing"

// Reference resolution examples from RFC 3986 section 5.4.
func TestResolveIRI_RFC3986(t *testing.T) {
	base := "http://a/b/c/d;p?q"
	tests := map[string]string{
		"g:h":           "g:h",
		"g":             "http://a/b/c/g",
		"./g":           "http://a/b/c/g",
		"g/":            "http://a/b/c/g/",
		"/g":            "http://a/g",
		"//g":           "http://g",
		"?y":            "http://a/b/c/d;p?y",
		"g?y":           "http://a/b/c/g?y",
		"#s":            "http://a/b/c/d;p?q#s",
		"g#s":           "http://a/b/c/g#s",
		"g?y#s":         "http://a/b/c/g?y#s",
		";x":            "http://a/b/c/;x",
		"g;x":           "http://a/b/c/g;x",
		"":              "http://a/b/c/d;p?q",
		".":             "http://a/b/c/",
		"./":            "http://a/b/c/",
		"..":            "http://a/b/",
		"../":           "http://a/b/",
		"../g":          "http://a/b/g",
		"../..":         "http://a/",
		"../../":        "http://a/",
		"../../g":       "http://a/g",
		"../../../g":    "http://a/g",
		"../../../../g": "http://a/g",
		"/./g":          "http://a/g",
		"/../g":         "http://a/g",
		"g.":            "http://a/b/c/g.",
		".g":            "http://a/b/c/.g",
		"g..":           "http://a/b/c/g..",
		"..g":           "http://a/b/c/..g",
		"./../g":        "http://a/b/g",
		"./g/.":         "http://a/b/c/g/",
		"g/./h":         "http://a/b/c/g/h",
		"g/../h":        "http://a/b/c/h",
		"g;x=1/./y":     "http://a/b/c/g;x=1/y",
		"g;x=1/../y":    "http://a/b/c/y",
	}

	for rel, expected := range tests {
		t.Run(rel, func(t *testing.T) {
			result := ResolveIRI(base, rel)
			if result != expected {
				t.Errorf("Expected %s, got %s", expected, result)
			}
		})
	}
}

func TestResolveIRI_NoBase(t *testing.T) {
	if ResolveIRI("", "rel/path") != "rel/path" {
		t.Error("Expected relative IRI to be returned unchanged without a base")
	}
}

func TestResolveIRI_AuthorityWithoutPath(t *testing.T) {
	result := ResolveIRI("http://example.org", "p")
	if result != "http://example.org/p" {
		t.Errorf("Expected http://example.org/p, got %s", result)
	}
}

func TestIsAbsoluteIRI(t *testing.T) {
	tests := map[string]bool{
		"http://example.org/": true,
		"urn:isbn:123":        true,
		"a+b-c.d:x":           true,
		"relative":            false,
		"#frag":               false,
		":noscheme":           false,
		"1http://x":           false,
	}
	for iri, expected := range tests {
		if IsAbsoluteIRI(iri) != expected {
			t.Errorf("IsAbsoluteIRI(%q): expected %v", iri, expected)
		}
	}
}

func TestValidateIRI(t *testing.T) {
	valid := []string{"http://example.org/a", "rel", "http://example.org/ü"}
	for _, iri := range valid {
		if err := ValidateIRI(iri); err != nil {
			t.Errorf("Expected %q to be valid, got %v", iri, err)
		}
	}
	invalid := []string{"http://example.org/a b", "http://x/{y}", "http://x/a|b", "http://x/\\"}
	for _, iri := range invalid {
		if err := ValidateIRI(iri); err == nil {
			t.Errorf("Expected %q to be invalid", iri)
		}
	}
}
