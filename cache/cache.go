// Package cache stores extracted note sequences on disk so a track is only
// analyzed once per configuration.
package cache

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/OneOfOne/xxhash"
	"github.com/dgraph-io/badger/v3"

	"github.com/RyanBlaney/sonido-pitch/detector"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

// keyPrefix namespaces note sequences inside the store
const keyPrefix = "notes/"

// NoteCache is a badger-backed store of NoteSequence values
type NoteCache struct {
	db     *badger.DB
	logger logging.Logger
}

// Open opens (or creates) a cache in dir. An empty dir gives an in-memory
// cache that is discarded on Close.
func Open(dir string) (*NoteCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %q: %w", dir, err)
	}

	return &NoteCache{
		db: db,
		logger: logging.WithFields(logging.Fields{
			"component": "note_cache",
			"dir":       dir,
		}),
	}, nil
}

// Key derives the cache key for a buffer analyzed with cfg. Only settings
// that change the extracted notes take part; worker count does not.
func Key(samples []float64, sampleRate int, cfg *detector.Config) (string, error) {
	if cfg == nil {
		cfg = detector.DefaultConfig()
	}
	extractor := cfg.Extractor
	extractor.Workers = 0

	settings, err := json.Marshal(struct {
		SampleRate  int                      `json:"sample_rate"`
		Extractor   detector.ExtractorConfig `json:"extractor"`
		ClickFilter any                      `json:"click_filter"`
	}{sampleRate, extractor, cfg.ClickFilter})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache settings: %w", err)
	}

	h := xxhash.New64()
	h.Write(settings)

	var word [8]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(s))
		h.Write(word[:])
	}

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return hex.EncodeToString(sum[:]), nil
}

// Get looks up a sequence. ok is false on a miss.
func (c *NoteCache) Get(key string) (seq *detector.NoteSequence, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			seq = &detector.NoteSequence{}
			return json.Unmarshal(val, seq)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		c.logger.Debug("Cache miss", logging.Fields{"key": key})
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	c.logger.Debug("Cache hit", logging.Fields{"key": key, "notes": len(seq.Notes)})
	return seq, true, nil
}

// Put stores seq under key, replacing any previous value
func (c *NoteCache) Put(key string, seq *detector.NoteSequence) error {
	if seq == nil {
		return fmt.Errorf("nil note sequence")
	}
	val, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("failed to encode note sequence: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), val)
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry; deleting a missing key is not an error
func (c *NoteCache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// Close flushes and closes the store
func (c *NoteCache) Close() error {
	return c.db.Close()
}
