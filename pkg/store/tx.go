package store

import "github.com/dgraph-io/badger/v4"

// withReadTxn executes a function within a read transaction.
func (s *GraphStore) withReadTxn(fn func(*badger.Txn) error) error {
	txn := s.db.NewTransaction(false)
	defer txn.Discard()
	return fn(txn)
}

// withWriteTxn executes a function within a write transaction, committing on
// success.
func (s *GraphStore) withWriteTxn(fn func(*badger.Txn) error) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()
	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}
