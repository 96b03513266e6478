package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aleksaelezovic/sparqlir/internal/catalog"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/lexer"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/parser"
)

// Media types accepted for a request carrying SPARQL text directly.
const (
	mediaQuery  = "application/sparql-query"
	mediaUpdate = "application/sparql-update"
	mediaForm   = "application/x-www-form-urlencoded"
)

// Response headers describing a translation.
const (
	HeaderKind   = "X-Algebra-Kind"
	HeaderCached = "X-Algebra-Cached"
)

var errMissingText = errors.New("missing 'query' or 'update' parameter")

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Line    *int   `json:"line,omitempty"`
}

// handleAlgebra translates the request's query or update to algebra.
func (s *Server) handleAlgebra(w http.ResponseWriter, r *http.Request) {
	text, err := s.requestText(w, r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	tr, err := s.catalog.Translate(text, s.opts)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(HeaderKind, string(tr.Kind))
	w.Header().Set(HeaderCached, strconv.FormatBool(tr.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, tr.Algebra+"\n")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if entries == nil {
		entries = []*catalog.Entry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalog.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	text, err := s.requestText(w, r)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}
	entry, err := s.catalog.Put(chi.URLParam(r, "name"), text, s.opts)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(chi.URLParam(r, "name")); err != nil {
		s.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestText extracts SPARQL text following the SPARQL protocol: a query
// or update URL parameter on GET, and on POST either a direct body or an
// url-encoded form.
func (s *Server) requestText(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		if text := firstNonEmpty(q.Get("query"), q.Get("update")); text != "" {
			return text, nil
		}
		return "", errMissingText
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == mediaForm {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		if text := firstNonEmpty(r.PostForm.Get("query"), r.PostForm.Get("update")); text != "" {
			return text, nil
		}
		return "", errMissingText
	}

	// sparql-query, sparql-update and anything else are read as raw text
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", errMissingText
	}
	return string(body), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), nil)
		return
	}
	s.writeError(w, http.StatusBadRequest, err.Error(), nil)
}

// writeParseError maps translation failures: errors in the SPARQL text are
// the client's, anything else is ours.
func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	var (
		syntaxErr   *grammar.SyntaxError
		semanticErr *parser.SemanticError
		lexErr      *lexer.Error
	)
	switch {
	case errors.As(err, &syntaxErr):
		s.writeError(w, http.StatusBadRequest, err.Error(), &syntaxErr.Line)
	case errors.As(err, &semanticErr):
		s.writeError(w, http.StatusBadRequest, err.Error(), &semanticErr.Line)
	case errors.As(err, &lexErr):
		s.writeError(w, http.StatusBadRequest, err.Error(), &lexErr.Line)
	case errors.Is(err, parser.ErrInvalidTerm):
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

func (s *Server) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, catalog.ErrInvalidName):
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		s.writeParseError(w, err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, line *int) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", message)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", message)
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: status, Message: message, Line: line}})
}
