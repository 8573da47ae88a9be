// Package archive stores lifted schemes in a badger database, so that a
// scheme already lifted by some strategy is not lifted again.
//
// Records are keyed by problem signature, digest of the modulo-2 scheme and
// strategy, and hold the lifted scheme in Bini format.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/a1880/matrix-multiplication/scheme"
)

// ErrNotFound is returned by Get when no record matches.
var ErrNotFound = errors.New("no archived lifting")

// Config describes where the archive lives.
type Config struct {
	// Path is the database directory, ignored if InMemory is set.
	Path     string
	InMemory bool
	// Log receives the messages of badger. If nil, they are discarded.
	Log logrus.FieldLogger
}

// An Archive is a store of lifted schemes. It is safe for concurrent use.
type Archive struct {
	db *badger.DB
}

// Open opens or creates the archive described by cfg.
func Open(cfg Config) (*Archive, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("archive path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrapf(err, "could not create archive directory %q", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Log != nil {
		opts = opts.WithLogger(cfg.Log)
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not open archive")
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// A Record is an archived lifting.
type Record struct {
	RunID     uuid.UUID `json:"run_id"`
	Signature string    `json:"signature"`
	Digest    string    `json:"digest"`
	Strategy  string    `json:"strategy"`
	Weight    int       `json:"weight"`
	// Tier is the search tier that succeeded, 0 for direct strategies.
	Tier    int       `json:"tier,omitempty"`
	Created time.Time `json:"created"`
	// Bini is the lifted scheme.
	Bini string `json:"bini"`
}

// Scheme parses the lifted scheme of r.
func (r *Record) Scheme() (*scheme.Scheme, error) {
	return scheme.ReadBini(strings.NewReader(r.Bini))
}

// Digest returns the hex SHA-256 digest of the modulo-2 reduction of s in
// Bini format. Equal modulo-2 schemes have equal digests.
func Digest(s *scheme.Scheme) string {
	sum := sha256.Sum256(scheme.MarshalBini(s.Mod2()))
	return hex.EncodeToString(sum[:])
}

func key(signature, digest, strategy string) []byte {
	return []byte(signature + "/" + digest + "/" + strategy)
}

// NewRecord returns a record of the lifting of known into lifted.
func NewRecord(known, lifted *scheme.Scheme, strategy string, weight, tier int) (*Record, error) {
	var sb strings.Builder
	if err := scheme.WriteBini(&sb, lifted, "lifted by "+strategy); err != nil {
		return nil, err
	}
	return &Record{
		RunID:     uuid.New(),
		Signature: known.Dims.Signature(),
		Digest:    Digest(known),
		Strategy:  strategy,
		Weight:    weight,
		Tier:      tier,
		Created:   time.Now().UTC(),
		Bini:      sb.String(),
	}, nil
}

// Put stores r, replacing any record with the same key.
func (a *Archive) Put(r *Record) error {
	val, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "could not encode record")
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(r.Signature, r.Digest, r.Strategy), val)
	})
	return errors.Wrapf(err, "could not store record %s", r.RunID)
}

// Get returns the record of the lifting of known by strategy.
func (a *Archive) Get(known *scheme.Scheme, strategy string) (*Record, error) {
	k := key(known.Dims.Signature(), Digest(known), strategy)
	var r Record
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read record %s", k)
	}
	return &r, nil
}

// List returns every record of the given problem signature, in key order.
func (a *Archive) List(signature string) ([]*Record, error) {
	var res []*Record
	prefix := []byte(signature + "/")
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return errors.Wrapf(err, "could not decode record %s", it.Item().Key())
			}
			res = append(res, &r)
		}
		return nil
	})
	return res, err
}
