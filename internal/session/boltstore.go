package session

import (
	"fmt"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/model"

	"github.com/lightningnetwork/lnd/fn/v2"
	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	envelopeKey   = []byte("walletData")
)

// BoltStore keeps the envelope in a bbolt database
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at path
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Save stores the envelope
func (s *BoltStore) Save(env model.SessionEnvelope) error {
	data, err := encodeEnvelope(env)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(envelopeKey, data)
	})
}

// Load returns the stored envelope or None
func (s *BoltStore) Load() fn.Option[model.SessionEnvelope] {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionBucket).Get(envelopeKey); v != nil {
			// Bolt values are only valid inside the transaction
			data = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		log.Warnf("Failed to read session db: %v", err)
		return fn.None[model.SessionEnvelope]()
	}
	if data == nil {
		return fn.None[model.SessionEnvelope]()
	}

	return loadOrClear(s, data)
}

// Clear removes the stored envelope
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(envelopeKey)
	})
}
