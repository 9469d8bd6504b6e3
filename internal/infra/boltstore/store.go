package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"

	bolt "go.etcd.io/bbolt"
)

var bucketFederations = []byte("federations")

// Store keeps federations as JSON values keyed by id in a single bbolt bucket.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates the parent directory and the bucket when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketFederations); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketFederations, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(_ context.Context, fed domain.Federation) (domain.Federation, error) {
	if fed.LastModified.IsZero() {
		fed.LastModified = s.now()
	}
	fed.Normalize()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFederations)
		if b.Get([]byte(fed.ID)) != nil {
			return fmt.Errorf("%w: federation with id %s already exists", domain.ErrConflict, fed.ID)
		}
		return put(b, fed)
	})
	if err != nil {
		return domain.Federation{}, err
	}
	return fed, nil
}

func (s *Store) FindAll(_ context.Context) ([]domain.Federation, error) {
	var feds []domain.Federation
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFederations).ForEach(func(_, v []byte) error {
			fed, err := decode(v)
			if err != nil {
				return err
			}
			feds = append(feds, fed)
			return nil
		})
	})
	return feds, err
}

func (s *Store) FindByID(_ context.Context, id string) (*domain.Federation, error) {
	var fed domain.Federation
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketFederations).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("federation %s: %w", id, domain.ErrNotFound)
		}
		var err error
		fed, err = decode(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &fed, nil
}

// Save is an upsert, same as create without the conflict check.
func (s *Store) Save(_ context.Context, fed domain.Federation) (domain.Federation, error) {
	fed.LastModified = s.now()
	fed.Normalize()
	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(bucketFederations), fed)
	})
	if err != nil {
		return domain.Federation{}, err
	}
	return fed, nil
}

func (s *Store) DeleteByID(_ context.Context, id string) ([]domain.Federation, error) {
	var deleted []domain.Federation
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFederations)
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		fed, err := decode(data)
		if err != nil {
			return err
		}
		deleted = append(deleted, fed)
		return b.Delete([]byte(id))
	})
	return deleted, err
}

// FindByMember scans the bucket; federation counts are small enough that no member index is kept.
func (s *Store) FindByMember(ctx context.Context, platformID string) ([]domain.Federation, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Federation
	for _, fed := range all {
		if fed.HasMember(platformID) {
			out = append(out, fed)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func put(b *bolt.Bucket, fed domain.Federation) error {
	data, err := json.Marshal(fed)
	if err != nil {
		return err
	}
	return b.Put([]byte(fed.ID), data)
}

func decode(data []byte) (domain.Federation, error) {
	var fed domain.Federation
	if err := json.Unmarshal(data, &fed); err != nil {
		return domain.Federation{}, err
	}
	fed.Normalize()
	return fed, nil
}
