package session

import (
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	sessionBucket = "session"

	// The two durable entries, named to match what the browser-side
	// storage holds so a capture on either side is interchangeable.
	keyDerivToken    = "derivToken"
	keyActiveAccount = "activeAccount"
)

// FileStore is a Store backed by a BBolt database. The credential survives
// process restarts, mirroring browser localStorage scope.
type FileStore struct {
	db *bbolt.DB
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (or creates) a BBolt database at the given path.
func NewFileStore(path string) (*FileStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	return &FileStore{db: db}, nil
}

// Close closes the underlying database.
func (s *FileStore) Close() error {
	return s.db.Close()
}

func (s *FileStore) Get() (Credential, bool) {
	var cred Credential
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))
		if b == nil {
			return nil
		}
		cred.DerivToken = string(b.Get([]byte(keyDerivToken)))
		cred.ActiveAccount = string(b.Get([]byte(keyActiveAccount)))
		return nil
	})
	if err != nil || cred.DerivToken == "" {
		return Credential{}, false
	}
	return cred, true
}

func (s *FileStore) Set(cred Credential) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		if err != nil {
			return err
		}
		if err := b.Put([]byte(keyDerivToken), []byte(cred.DerivToken)); err != nil {
			return err
		}
		return b.Put([]byte(keyActiveAccount), []byte(cred.ActiveAccount))
	})
}

func (s *FileStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(sessionBucket)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(sessionBucket))
	})
}
