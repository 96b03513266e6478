// Package catalog stores named SPARQL translations and reuses earlier
// translations of the same text under the same parser settings.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/sparqlir/internal/storage"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/parser"
)

var (
	ErrNotFound    = errors.New("catalog: entry not found")
	ErrInvalidName = errors.New("catalog: invalid entry name")
)

// Translation is the algebra for a piece of SPARQL text.
type Translation struct {
	Kind    Kind
	Algebra string
	// Cached is set when the algebra came from a stored entry instead of
	// a fresh parse.
	Cached bool
}

// Catalog is safe for concurrent use; isolation comes from the storage
// transactions.
type Catalog struct {
	store  storage.Storage
	logger *slog.Logger
	now    func() time.Time
}

// New creates a catalog over store. A nil logger discards records.
func New(store storage.Storage, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{store: store, logger: logger, now: time.Now}
}

// kindOf reports whether n, possibly wrapped in a retained prologue, is an
// update.
func kindOf(n algebra.Node) Kind {
	for {
		op, ok := n.(*algebra.Op)
		if !ok {
			return KindQuery
		}
		switch op.Kind {
		case algebra.KindUpdate:
			return KindUpdate
		case algebra.KindPrefix, algebra.KindBase:
			n = op.Arg(len(op.Args) - 1)
		default:
			return KindQuery
		}
	}
}

// Translate returns the algebra for text, from a stored entry with the same
// fingerprint when there is one.
func (c *Catalog) Translate(text string, opts parser.Options) (*Translation, error) {
	settings := SettingsOf(opts)
	fp := Fingerprint(text, settings)

	var hit *Entry
	err := storage.View(c.store, func(txn storage.Transaction) error {
		id, err := txn.Get(storage.TableFingerprints, fp[:])
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		hit, err = getEntry(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if hit != nil {
		c.logger.Debug("translation reused", "entry", hit.Name, "fingerprint", hit.Fingerprint)
		return &Translation{Kind: hit.Kind, Algebra: hit.Algebra, Cached: true}, nil
	}

	if opts.Logger == nil {
		opts.Logger = c.logger
	}
	node, err := parser.Parse(text, opts)
	if err != nil {
		return nil, err
	}
	return &Translation{Kind: kindOf(node), Algebra: algebra.SSE(node)}, nil
}

// Put translates text and stores it under name, replacing any entry of
// that name.
func (c *Catalog) Put(name, text string, opts parser.Options) (*Entry, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	tr, err := c.Translate(text, opts)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("catalog: entry id: %w", err)
	}
	settings := SettingsOf(opts)
	fp := Fingerprint(text, settings)
	entry := &Entry{
		ID:          id.String(),
		Name:        name,
		Kind:        tr.Kind,
		Text:        text,
		Algebra:     tr.Algebra,
		Fingerprint: fingerprintHex(fp),
		Settings:    settings,
		Created:     c.now().UTC(),
	}

	err = storage.Update(c.store, func(txn storage.Transaction) error {
		if err := c.remove(txn, name); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := txn.Set(storage.TableEntries, []byte(entry.ID), encodeEntry(entry)); err != nil {
			return err
		}
		if err := txn.Set(storage.TableNames, []byte(name), []byte(entry.ID)); err != nil {
			return err
		}
		return txn.Set(storage.TableFingerprints, fp[:], []byte(entry.ID))
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: put %q: %w", name, err)
	}
	c.logger.Info("entry stored", "name", name, "id", entry.ID, "kind", entry.Kind, "cached", tr.Cached)
	return entry, nil
}

// Get returns the entry called name.
func (c *Catalog) Get(name string) (*Entry, error) {
	var entry *Entry
	err := storage.View(c.store, func(txn storage.Transaction) error {
		id, err := txn.Get(storage.TableNames, []byte(name))
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		entry, err = getEntry(txn, id)
		return err
	})
	return entry, err
}

// List returns all entries ordered by name.
func (c *Catalog) List() ([]*Entry, error) {
	var entries []*Entry
	err := storage.View(c.store, func(txn storage.Transaction) error {
		var ids [][]byte
		it := txn.Scan(storage.TableNames, nil)
		for it.Next() {
			id, err := it.Value()
			if err != nil {
				it.Close()
				return err
			}
			ids = append(ids, id)
		}
		it.Close()
		for _, id := range ids {
			e, err := getEntry(txn, id)
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

// Delete removes the entry called name.
func (c *Catalog) Delete(name string) error {
	err := storage.Update(c.store, func(txn storage.Transaction) error {
		return c.remove(txn, name)
	})
	if err == nil {
		c.logger.Info("entry deleted", "name", name)
	}
	return err
}

func (c *Catalog) remove(txn storage.Transaction, name string) error {
	id, err := txn.Get(storage.TableNames, []byte(name))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return err
	}
	entry, err := getEntry(txn, id)
	if err != nil {
		return err
	}
	fp, err := hexFingerprint(entry.Fingerprint)
	if err != nil {
		return err
	}
	// another entry with the same text may own the fingerprint now
	if owner, err := txn.Get(storage.TableFingerprints, fp); err == nil && string(owner) == string(id) {
		if err := txn.Delete(storage.TableFingerprints, fp); err != nil {
			return err
		}
	}
	if err := txn.Delete(storage.TableNames, []byte(name)); err != nil {
		return err
	}
	return txn.Delete(storage.TableEntries, id)
}

func getEntry(txn storage.Transaction, id []byte) (*Entry, error) {
	data, err := txn.Get(storage.TableEntries, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("catalog: dangling entry id %s", id)
	}
	if err != nil {
		return nil, err
	}
	return decodeEntry(data)
}
