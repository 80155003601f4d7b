// Package store provides the persisted track collection, indexed by URL with a Bloom filter.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"scexport/internal/core"
	"scexport/internal/kv"
	"scexport/pkg/trackurl"
)

const (
	// DefaultExpectedTracks sizes the Bloom filter.
	DefaultExpectedTracks = 10000
	// DefaultFalsePositiveRate is the Bloom filter target false positive rate.
	DefaultFalsePositiveRate = 0.001
)

// Collection is an ordered set of tracks keyed by URL. Every change is written through
// to the kv store under core.CollectionKey; a failed write leaves the collection as it was.
type Collection struct {
	tracks            []core.Track
	index             map[string]int
	bloom             *bloom.BloomFilter
	mutex             sync.RWMutex
	expectedTracks    uint
	falsePositiveRate float64
	store             kv.Store
	logger            *zap.Logger
}

// NewCollection creates an empty collection backed by store. Call Load to read the stored tracks.
func NewCollection(store kv.Store, expectedTracks uint, falsePositiveRate float64, logger *zap.Logger) *Collection {
	c := &Collection{
		expectedTracks:    expectedTracks,
		falsePositiveRate: falsePositiveRate,
		store:             store,
		logger:            logger.Named("collection"),
	}
	c.reset(nil)
	return c
}

// Key returns the identity of a track URL within the collection.
func Key(rawURL string) string {
	return trackurl.StripQuery(strings.TrimSpace(rawURL))
}

// Load replaces the in-memory collection with the stored one. Duplicate and invalid
// stored entries are dropped.
func (c *Collection) Load(ctx context.Context) error {
	data, ok, err := c.store.Get(ctx, core.CollectionKey)
	if err != nil {
		return err
	}

	var stored []core.Track
	if ok {
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("%w: decode collection: %w", core.ErrStorage, err)
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.reset(stored)

	c.logger.Debug("Loaded collection", zap.Int("tracks", len(c.tracks)))
	return nil
}

// Has reports whether a track with the URL is in the collection.
func (c *Collection) Has(rawURL string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.has(Key(rawURL))
}

// Add appends track unless its URL is already present. It reports whether the track
// was added. Tracks without URL or title are rejected.
func (c *Collection) Add(ctx context.Context, track core.Track) (bool, error) {
	if !track.Valid() {
		return false, fmt.Errorf("%w: track needs url and title", core.ErrValidation)
	}
	track.URL = Key(track.URL)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.has(track.URL) {
		return false, nil
	}

	next := append(append([]core.Track(nil), c.tracks...), track)
	if err := c.persist(ctx, next); err != nil {
		return false, err
	}

	c.tracks = next
	c.index[track.URL] = len(next) - 1
	c.bloom.AddString(track.URL)

	c.logger.Info("Added track to collection",
		zap.String("url", track.URL),
		zap.Int("size", len(c.tracks)))
	return true, nil
}

// Remove deletes the track with the URL. It reports whether a track was removed.
func (c *Collection) Remove(ctx context.Context, rawURL string) (bool, error) {
	key := Key(rawURL)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	pos, exists := c.index[key]
	if !exists {
		return false, nil
	}

	next := make([]core.Track, 0, len(c.tracks)-1)
	next = append(next, c.tracks[:pos]...)
	next = append(next, c.tracks[pos+1:]...)
	if err := c.persist(ctx, next); err != nil {
		return false, err
	}

	// The Bloom filter cannot forget a key; rebuilding keeps it tight.
	c.reset(next)
	return true, nil
}

// Clear removes every track.
func (c *Collection) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.persist(ctx, []core.Track{}); err != nil {
		return err
	}
	c.reset(nil)
	return nil
}

// List returns the tracks in insertion order.
func (c *Collection) List() []core.Track {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]core.Track(nil), c.tracks...)
}

// Size returns the number of tracks.
func (c *Collection) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.tracks)
}

func (c *Collection) has(key string) bool {
	if !c.bloom.TestString(key) {
		return false
	}
	_, exists := c.index[key]
	return exists
}

func (c *Collection) persist(ctx context.Context, tracks []core.Track) error {
	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("%w: encode collection: %w", core.ErrStorage, err)
	}
	return c.store.Set(ctx, core.CollectionKey, data)
}

// reset rebuilds tracks, index and filter from tracks, keeping the first of any duplicate URLs.
func (c *Collection) reset(tracks []core.Track) {
	c.tracks = make([]core.Track, 0, len(tracks))
	c.index = make(map[string]int, len(tracks))
	c.bloom = bloom.NewWithEstimates(c.expectedTracks, c.falsePositiveRate)

	for _, track := range tracks {
		track.URL = Key(track.URL)
		if !track.Valid() {
			continue
		}
		if _, exists := c.index[track.URL]; exists {
			continue
		}
		c.index[track.URL] = len(c.tracks)
		c.tracks = append(c.tracks, track)
		c.bloom.AddString(track.URL)
	}
}
