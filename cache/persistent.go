package cache

import (
	"encoding/json"
	"fmt"
	"lyricsync-go/logcolors"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const bucketName = "cache"

// PersistentCache wraps BoltDB with an in-memory layer for fast access.
// Entries carry an expiration and are dropped on read or by the sweeper,
// whichever comes first.
type PersistentCache struct {
	db                 *bolt.DB
	memCache           sync.Map
	dbPath             string
	compressionEnabled bool
	stopSweeper        chan struct{}
	sweeperOnce        sync.Once
}

// Entry is a stored value. Expiration is unix nanoseconds; zero means
// the entry never expires.
type Entry struct {
	Value      string `json:"value"`
	Expiration int64  `json:"expiration,omitempty"`
}

// Expired reports whether the entry's TTL has passed.
func (e Entry) Expired() bool {
	return e.Expiration > 0 && time.Now().UnixNano() > e.Expiration
}

// NewPersistentCache opens (or creates) the cache database at dbPath and
// preloads all live entries into memory.
func NewPersistentCache(dbPath string, compressionEnabled bool) (*PersistentCache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if info, err := os.Stat(dbPath); err == nil {
		log.Infof("%s Found existing database at: %s (size: %d bytes)", logcolors.LogCacheInit, dbPath, info.Size())
	} else {
		log.Infof("%s Creating new database at: %s", logcolors.LogCacheInit, dbPath)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	pc := &PersistentCache{
		db:                 db,
		dbPath:             dbPath,
		compressionEnabled: compressionEnabled,
		stopSweeper:        make(chan struct{}),
	}

	if err := pc.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload cache to memory: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent cache initialized at %s (compression: %v)", logcolors.LogCache, dbPath, compressionEnabled)
	return pc, nil
}

// loadToMemory loads all live entries from disk to memory. Entries that
// expired while the process was down are removed from disk.
func (pc *PersistentCache) loadToMemory() error {
	count := 0
	var expired [][]byte

	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				log.Warnf("%s Failed to unmarshal entry for key %s: %v", logcolors.LogCache, string(k), err)
				return nil
			}
			if entry.Expired() {
				expired = append(expired, append([]byte(nil), k...))
				return nil
			}
			pc.memCache.Store(string(k), entry)
			count++
			return nil
		})
	})
	if err != nil {
		return err
	}

	if len(expired) > 0 {
		err = pc.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket([]byte(bucketName))
			for _, k := range expired {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Warnf("%s Failed to purge %d expired entries: %v", logcolors.LogCache, len(expired), err)
		}
	}

	log.Infof("%s Loaded %d entries from disk to memory (%d expired)", logcolors.LogCache, count, len(expired))
	return nil
}

// Get retrieves a value from cache, memory layer first. Expired entries
// are deleted and reported as a miss.
func (pc *PersistentCache) Get(key string) (string, bool) {
	entry, ok := pc.lookup(key)
	if !ok {
		return "", false
	}

	if entry.Expired() {
		if err := pc.Delete(key); err != nil {
			log.Warnf("%s Failed to delete expired key %s: %v", logcolors.LogCache, key, err)
		}
		return "", false
	}

	if pc.compressionEnabled {
		decompressed, err := decompressString(entry.Value)
		if err != nil {
			log.Errorf("%s Error decompressing value for key %s: %v", logcolors.LogCache, key, err)
			return "", false
		}
		return decompressed, true
	}
	return entry.Value, true
}

func (pc *PersistentCache) lookup(key string) (Entry, bool) {
	if v, ok := pc.memCache.Load(key); ok {
		return v.(Entry), true
	}

	var entry Entry
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("key not found")
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return Entry{}, false
	}

	pc.memCache.Store(key, entry)
	return entry, true
}

// Set stores a value in both layers with the given TTL. A zero TTL
// means the entry never expires.
func (pc *PersistentCache) Set(key, value string, ttl time.Duration) error {
	storedValue := value
	if pc.compressionEnabled {
		compressed, err := compressString(value)
		if err != nil {
			log.Errorf("%s Error compressing value for key %s: %v", logcolors.LogCache, key, err)
			return err
		}
		storedValue = compressed
	}

	entry := Entry{Value: storedValue}
	if ttl > 0 {
		entry.Expiration = time.Now().Add(ttl).UnixNano()
	}

	pc.memCache.Store(key, entry)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// Delete removes a key from both layers
func (pc *PersistentCache) Delete(key string) error {
	pc.memCache.Delete(key)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Clear removes all entries from cache
func (pc *PersistentCache) Clear() error {
	pc.memCache.Range(func(key, value interface{}) bool {
		pc.memCache.Delete(key)
		return true
	})

	return pc.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Range iterates over all live entries in the memory layer
func (pc *PersistentCache) Range(fn func(key string, entry Entry) bool) {
	pc.memCache.Range(func(k, v interface{}) bool {
		entry := v.(Entry)
		if entry.Expired() {
			return true
		}
		return fn(k.(string), entry)
	})
}

// Stats returns the number of live keys and their approximate size
func (pc *PersistentCache) Stats() (numKeys int, sizeInKB int) {
	pc.Range(func(k string, entry Entry) bool {
		numKeys++
		sizeInKB += len(k) + len(entry.Value)
		return true
	})
	sizeInKB = sizeInKB / 1024
	return
}

// StartSweeper periodically purges expired entries until Close is
// called. Safe to call once; later calls are no-ops.
func (pc *PersistentCache) StartSweeper(interval time.Duration) {
	pc.sweeperOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					pc.sweep()
				case <-pc.stopSweeper:
					return
				}
			}
		}()
		log.Infof("%s Sweeper started (interval: %v)", logcolors.LogCacheSweep, interval)
	})
}

func (pc *PersistentCache) sweep() {
	var expired []string
	pc.memCache.Range(func(k, v interface{}) bool {
		if v.(Entry).Expired() {
			expired = append(expired, k.(string))
		}
		return true
	})

	for _, key := range expired {
		if err := pc.Delete(key); err != nil {
			log.Warnf("%s Failed to sweep key %s: %v", logcolors.LogCacheSweep, key, err)
		}
	}

	if len(expired) > 0 {
		log.Infof("%s Purged %d expired entries", logcolors.LogCacheSweep, len(expired))
	}
}

// Close stops the sweeper and closes the database connection
func (pc *PersistentCache) Close() error {
	select {
	case <-pc.stopSweeper:
	default:
		close(pc.stopSweeper)
	}
	if pc.db != nil {
		return pc.db.Close()
	}
	return nil
}
