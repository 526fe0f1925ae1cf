package application

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/thinui/internal/core/ids"
	"github.com/zeusync/thinui/internal/core/session"
)

const defaultShardCount = 16

// Directory maps session ids to clients. Keys are spread over independently
// locked shards so request goroutines and the watchdog rarely contend.
type Directory struct {
	shards []dirShard
}

type dirShard struct {
	mx      sync.RWMutex
	clients map[ids.ID]*session.Client
}

// NewDirectory creates a directory with the given number of shards.
func NewDirectory(shardCount int) *Directory {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	d := &Directory{shards: make([]dirShard, shardCount)}
	for i := range d.shards {
		d.shards[i].clients = make(map[ids.ID]*session.Client)
	}
	return d
}

func (d *Directory) shard(id ids.ID) *dirShard {
	return &d.shards[xxhash.Sum64String(id.String())%uint64(len(d.shards))]
}

func (d *Directory) Store(c *session.Client) {
	s := d.shard(c.ID())
	s.mx.Lock()
	s.clients[c.ID()] = c
	s.mx.Unlock()
}

func (d *Directory) Load(id ids.ID) (*session.Client, bool) {
	s := d.shard(id)
	s.mx.RLock()
	defer s.mx.RUnlock()
	c, ok := s.clients[id]
	return c, ok
}

// LoadAndDelete removes the client and returns it if it was present.
func (d *Directory) LoadAndDelete(id ids.ID) (*session.Client, bool) {
	s := d.shard(id)
	s.mx.Lock()
	defer s.mx.Unlock()
	c, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
	}
	return c, ok
}

// Len returns the number of stored clients. Shards are counted one at a time
// so the result is approximate under concurrent writes.
func (d *Directory) Len() int {
	n := 0
	for i := range d.shards {
		s := &d.shards[i]
		s.mx.RLock()
		n += len(s.clients)
		s.mx.RUnlock()
	}
	return n
}

// Range calls fn for every client until fn returns false. Each shard is
// snapshotted before iteration, so fn may modify the directory.
func (d *Directory) Range(fn func(c *session.Client) bool) {
	for i := range d.shards {
		s := &d.shards[i]
		s.mx.RLock()
		snapshot := make([]*session.Client, 0, len(s.clients))
		for _, c := range s.clients {
			snapshot = append(snapshot, c)
		}
		s.mx.RUnlock()

		for _, c := range snapshot {
			if !fn(c) {
				return
			}
		}
	}
}
