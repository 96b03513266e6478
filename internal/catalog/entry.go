package catalog

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/aleksaelezovic/sparqlir/internal/encoding"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/parser"
)

// Kind tells queries and updates apart.
type Kind string

const (
	KindQuery  Kind = "query"
	KindUpdate Kind = "update"
)

// Settings are the parser options that affect a translation.
type Settings struct {
	ResolveIRIs bool              `yaml:"resolve_iris" json:"resolve_iris"`
	Validate    bool              `yaml:"validate" json:"validate"`
	AllVars     bool              `yaml:"all_vars" json:"all_vars"`
	AnonBase    string            `yaml:"anon_base" json:"anon_base"`
	BaseURI     string            `yaml:"base_uri,omitempty" json:"base_uri,omitempty"`
	Prefixes    map[string]string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
}

// SettingsOf extracts the translation-relevant part of opts.
func SettingsOf(opts parser.Options) Settings {
	s := Settings{
		ResolveIRIs: opts.ResolveIRIs,
		Validate:    opts.Validate,
		AllVars:     opts.AllVars,
		AnonBase:    opts.AnonBase,
		BaseURI:     opts.BaseURI,
	}
	if s.AnonBase == "" {
		s.AnonBase = "b"
	}
	if len(opts.Prefixes) > 0 {
		s.Prefixes = make(map[string]string, len(opts.Prefixes))
		for k, v := range opts.Prefixes {
			s.Prefixes[k] = v
		}
	}
	return s
}

func (s Settings) prefixPairs() []string {
	keys := make([]string, 0, len(s.Prefixes))
	for k := range s.Prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, s.Prefixes[k])
	}
	return pairs
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Fingerprint identifies the translation of text under s.
func Fingerprint(text string, s Settings) [encoding.FingerprintSize]byte {
	fields := []string{text, flag(s.ResolveIRIs), flag(s.Validate), flag(s.AllVars), s.AnonBase, s.BaseURI}
	return encoding.Fingerprint(append(fields, s.prefixPairs()...)...)
}

// Entry is a named, stored translation.
type Entry struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Kind        Kind      `yaml:"kind" json:"kind"`
	Text        string    `yaml:"text" json:"text"`
	Algebra     string    `yaml:"algebra" json:"algebra"`
	Fingerprint string    `yaml:"fingerprint" json:"fingerprint"`
	Settings    Settings  `yaml:"settings" json:"settings"`
	Created     time.Time `yaml:"created" json:"created"`
}

const recordVersion = 1

func encodeEntry(e *Entry) []byte {
	enc := encoding.NewEncoder()
	enc.PutInt64(recordVersion)
	enc.PutString(e.ID)
	enc.PutString(e.Name)
	enc.PutString(string(e.Kind))
	enc.PutString(e.Text)
	enc.PutString(e.Algebra)
	enc.PutString(e.Fingerprint)
	enc.PutBool(e.Settings.ResolveIRIs)
	enc.PutBool(e.Settings.Validate)
	enc.PutBool(e.Settings.AllVars)
	enc.PutString(e.Settings.AnonBase)
	enc.PutString(e.Settings.BaseURI)
	enc.PutStrings(e.Settings.prefixPairs())
	enc.PutInt64(e.Created.UnixNano())
	return enc.Bytes()
}

func decodeEntry(data []byte) (*Entry, error) {
	dec := encoding.NewDecoder(data)
	if v := dec.ReadInt64(); v != recordVersion && dec.Err() == nil {
		return nil, fmt.Errorf("catalog: unsupported record version %d", v)
	}
	e := &Entry{
		ID:          dec.ReadString(),
		Name:        dec.ReadString(),
		Kind:        Kind(dec.ReadString()),
		Text:        dec.ReadString(),
		Algebra:     dec.ReadString(),
		Fingerprint: dec.ReadString(),
	}
	e.Settings.ResolveIRIs = dec.ReadBool()
	e.Settings.Validate = dec.ReadBool()
	e.Settings.AllVars = dec.ReadBool()
	e.Settings.AnonBase = dec.ReadString()
	e.Settings.BaseURI = dec.ReadString()
	if pairs := dec.ReadStrings(); len(pairs) > 0 {
		e.Settings.Prefixes = make(map[string]string, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			e.Settings.Prefixes[pairs[i]] = pairs[i+1]
		}
	}
	e.Created = time.Unix(0, dec.ReadInt64()).UTC()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("catalog: corrupt entry: %w", err)
	}
	return e, nil
}

func fingerprintHex(fp [encoding.FingerprintSize]byte) string {
	return hex.EncodeToString(fp[:])
}

func hexFingerprint(s string) ([]byte, error) {
	fp, err := hex.DecodeString(s)
	if err != nil || len(fp) != encoding.FingerprintSize {
		return nil, fmt.Errorf("catalog: corrupt fingerprint %q", s)
	}
	return fp, nil
}
