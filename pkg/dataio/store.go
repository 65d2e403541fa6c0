package dataio

import (
	"bytes"

	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"

	"ibl/pkg/ibl"
)

// Store is a named, reloadable collection of trained classifiers backed
// by badger, letting a long-running service keep several models (e.g.
// one per tenant or data version) without re-reading CSV training data on
// every restart.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if absent) a badger database at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening model store")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying badger database.
func (s *Store) Close() error { return s.db.Close() }

// Put saves c under name, in the hashed serialized form (the smaller of
// the two).
func (s *Store) Put(name string, c *ibl.Classifier) error {
	var buf bytes.Buffer
	if err := SaveModel(c, &buf, false); err != nil {
		return errors.Wrapf(err, "saving model %q", name)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), buf.Bytes())
	})
}

// Get loads the classifier last saved under name.
func (s *Store) Get(name string) (*ibl.Classifier, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading model %q", name)
	}
	return LoadModel(bytes.NewReader(data))
}

// List returns every model name currently stored.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing models")
	}
	return names, nil
}

// Delete removes the model saved under name.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(name))
	})
}
