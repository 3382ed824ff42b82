// Package store persists factory records in a bbolt database: one bucket of
// token-creation records, one of fee withdrawals, and a running stats
// snapshot. Records are observational; losing a write never fails the call
// that produced it.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketCreations   = []byte("creations")
	bucketWithdrawals = []byte("withdrawals")
	bucketStats       = []byte("stats")

	statsKey = []byte("current")
)

// CreationRecord is the durable form of a token-created event.
type CreationRecord struct {
	TokenAddress string    `json:"token_address"`
	Creator      string    `json:"creator"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	Decimals     uint8     `json:"decimals"`
	ScaledSupply uint64    `json:"scaled_supply"`
	FeeCharged   uint64    `json:"fee_charged"`
	AntiBot      bool      `json:"anti_bot"`
	AntiWhale    bool      `json:"anti_whale"`
	Airdrop      bool      `json:"airdrop"`
	Height       uint64    `json:"height"`
	CreatedAt    time.Time `json:"created_at"`
}

// WithdrawalRecord is the durable form of a fee-withdrawal event.
type WithdrawalRecord struct {
	TxHash    string    `json:"tx_hash"`
	To        string    `json:"to"`
	Amount    uint64    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// StatsSnapshot mirrors the factory's aggregate counters.
type StatsSnapshot struct {
	TotalTokensCreated uint64    `json:"total_tokens_created"`
	TotalFeesCollected uint64    `json:"total_fees_collected"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Store wraps the bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database and its buckets.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCreations, bucketWithdrawals, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %v", err)
	}

	return &Store{db: db}, nil
}

// SaveCreation stores a creation record keyed by ledger address.
func (s *Store) SaveCreation(rec CreationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCreations).Put([]byte(rec.TokenAddress), data)
	})
}

// Creations returns all stored creation records.
func (s *Store) Creations() ([]CreationRecord, error) {
	var records []CreationRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCreations).ForEach(func(k, v []byte) error {
			var rec CreationRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// Creation returns the record for one ledger address, or false when absent.
func (s *Store) Creation(tokenAddress string) (CreationRecord, bool, error) {
	var rec CreationRecord
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCreations).Get([]byte(tokenAddress))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	return rec, found, err
}

// SaveWithdrawal stores a withdrawal record keyed by tx hash.
func (s *Store) SaveWithdrawal(rec WithdrawalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWithdrawals).Put([]byte(rec.TxHash), data)
	})
}

// Withdrawals returns all stored withdrawal records.
func (s *Store) Withdrawals() ([]WithdrawalRecord, error) {
	var records []WithdrawalRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWithdrawals).ForEach(func(k, v []byte) error {
			var rec WithdrawalRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// SaveStats overwrites the stats snapshot.
func (s *Store) SaveStats(snap StatsSnapshot) error {
	snap.UpdatedAt = time.Now()
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketStats).Put(statsKey, data)
	})
}

// LoadStats returns the last stats snapshot, zero-valued when none exists.
func (s *Store) LoadStats() (StatsSnapshot, error) {
	var snap StatsSnapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(statsKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &snap)
	})
	return snap, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
