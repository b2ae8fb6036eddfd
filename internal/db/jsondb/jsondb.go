// Package jsondb keeps state in a single JSON file that is rewritten in full
// after every change.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/patric-chuzhbe/dogmatch/internal/db/storage"
)

// JSONDB keeps every key in memory and rewrites the whole file on change.
type JSONDB struct {
	mu       sync.RWMutex
	fileName string
	closed   bool
	Cache    CacheStruct
}

// CacheStruct is the on-disk document: each key maps to the serialized value
// exactly as it was handed to Set.
type CacheStruct struct {
	Items map[string]string
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Items": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	tmpName := fileName + ".tmp"
	if err := os.WriteFile(tmpName, jsonData, 0600); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	if err := os.Rename(tmpName, fileName); err != nil {
		return fmt.Errorf("error replacing file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New opens fileName, creating an empty document when it does not exist.
func New(fileName string) (*JSONDB, error) {
	simpleJSONDB := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(simpleJSONDB.fileName, &simpleJSONDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(simpleJSONDB.fileName, &simpleJSONDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	if simpleJSONDB.Cache.Items == nil {
		simpleJSONDB.Cache.Items = map[string]string{}
	}

	return &simpleJSONDB, nil
}

// NewInMemory returns a JSONDB that never touches the disk.
func NewInMemory() *JSONDB {
	return &JSONDB{
		Cache: CacheStruct{Items: map[string]string{}},
	}
}

// Get reads key from the cache.
func (db *JSONDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, false, storage.ErrClosed
	}

	value, found := db.Cache.Items[key]
	if !found {
		return nil, false, nil
	}

	return []byte(value), true, nil
}

// Set stores value under key and flushes the file. On a failed flush the
// previous value is kept.
func (db *JSONDB) Set(ctx context.Context, key string, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return storage.ErrClosed
	}

	previous, existed := db.Cache.Items[key]
	db.Cache.Items[key] = string(value)

	if err := db.flush(); err != nil {
		db.restore(key, previous, existed)
		return err
	}

	return nil
}

// Delete removes key and flushes the file. On a failed flush the key is kept.
func (db *JSONDB) Delete(ctx context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return storage.ErrClosed
	}

	previous, found := db.Cache.Items[key]
	if !found {
		return nil
	}
	delete(db.Cache.Items, key)

	if err := db.flush(); err != nil {
		db.restore(key, previous, true)
		return err
	}

	return nil
}

// restore puts back the entry a failed flush was meant to replace, so the
// cache never holds a value the file rejected.
func (db *JSONDB) restore(key, previous string, existed bool) {
	if existed {
		db.Cache.Items[key] = previous
		return
	}
	delete(db.Cache.Items, key)
}

// Ping always succeeds; the file is only touched on writes.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache one last time. Later reads and writes fail with
// storage.ErrClosed.
func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true

	return db.flush()
}

// flush must be called with mu held.
func (db *JSONDB) flush() error {
	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}
