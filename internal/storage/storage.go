// Package storage is a transactional key-value layer over BadgerDB with
// keys namespaced by table.
package storage

import "errors"

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error
}

// Transaction represents a database transaction with snapshot isolation
type Transaction interface {
	Get(table Table, key []byte) ([]byte, error)
	Set(table Table, key, value []byte) error
	Delete(table Table, key []byte) error

	// Scan iterates over every key of table starting with prefix, in key
	// order. A nil prefix scans the whole table.
	Scan(table Table, prefix []byte) Iterator

	Commit() error
	Rollback() error
}

// Iterator iterates over key-value pairs
type Iterator interface {
	Next() bool
	// Key returns the current key without the table prefix
	Key() []byte
	Value() ([]byte, error)
	Close()
}

// Table is a logical keyspace in the storage
type Table byte

const (
	// entry ID -> encoded catalog entry
	TableEntries Table = iota + 1
	// entry name -> entry ID
	TableNames
	// translation fingerprint -> entry ID
	TableFingerprints
)

func (t Table) String() string {
	switch t {
	case TableEntries:
		return "entries"
	case TableNames:
		return "names"
	case TableFingerprints:
		return "fingerprints"
	default:
		return "unknown"
	}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}

// View runs fn in a read-only transaction.
func View(s Storage, fn func(Transaction) error) error {
	txn, err := s.Begin(false)
	if err != nil {
		return err
	}
	defer func() { _ = txn.Rollback() }()
	return fn(txn)
}

// Update runs fn in a writable transaction and commits it when fn succeeds.
func Update(s Storage, fn func(Transaction) error) error {
	txn, err := s.Begin(true)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		_ = txn.Rollback()
		return err
	}
	return txn.Commit()
}
