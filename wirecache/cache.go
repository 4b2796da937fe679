// Package wirecache remembers the last route of every connection so a
// recomputation pass can skip connections whose inputs did not change.
//
// A cached result is reused only when the scene, the options, the connection
// and the usage recorded by the connections routed before it in the pass are
// all unchanged, so a cached pass produces exactly what an uncached one would.
package wirecache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync/atomic"

	"cdr.dev/slog"

	"oss.terrastruct.com/wire/lib/log"
	"oss.terrastruct.com/wire/lib/syncmap"
	"oss.terrastruct.com/wire/wireroute"
)

type entry struct {
	key    uint64
	result *wireroute.RouteResult
}

// Cache is keyed by connection id and is safe for concurrent use.
type Cache struct {
	entries syncmap.SyncMap[string, entry]

	hits   int64
	misses int64
}

func New() *Cache {
	return &Cache{
		entries: syncmap.New[string, entry](),
	}
}

// RouteAll is wireroute.RouteAll, reusing cached results where possible.
func (c *Cache) RouteAll(ctx context.Context, scene *wireroute.Scene, conns []*wireroute.Connection, opts *wireroute.Options) ([]*wireroute.RouteResult, error) {
	r := wireroute.NewRouter(ctx, scene, conns, opts)
	sceneKey, sceneErr := SceneKey(r.Scene(), r.Options())
	if sceneErr != nil {
		log.Debug(ctx, "scene cannot be cached", slog.Error(sceneErr))
	}

	results := make([]*wireroute.RouteResult, 0, len(conns))
	seen := make(map[string]struct{}, len(conns))
	for i, conn := range conns {
		if conn == nil {
			return nil, fmt.Errorf("connection %d is nil", i)
		}
		seen[conn.ID] = struct{}{}

		var key uint64
		var err error
		if sceneErr == nil {
			key, err = ConnectionKey(sceneKey, conn, r)
		} else {
			err = sceneErr
		}
		if err == nil {
			if e, ok := c.entries.Lookup(conn.ID); ok && e.key == key {
				atomic.AddInt64(&c.hits, 1)
				r.Absorb(e.result)
				results = append(results, e.result)
				continue
			}
		}
		atomic.AddInt64(&c.misses, 1)

		res, rerr := r.Route(ctx, conn)
		if rerr != nil {
			return nil, rerr
		}
		if err == nil {
			c.entries.Set(conn.ID, entry{key: key, result: res})
		} else {
			c.entries.Delete(conn.ID)
		}
		results = append(results, res)
	}

	c.entries.Range(func(id string, _ entry) bool {
		if _, ok := seen[id]; !ok {
			c.entries.Delete(id)
		}
		return true
	})

	hits, misses := c.Stats()
	log.Debug(ctx, "route cache", slog.F("hits", hits), slog.F("misses", misses))
	return results, nil
}

// Lookup returns the last result routed for id.
func (c *Cache) Lookup(id string) (*wireroute.RouteResult, bool) {
	e, ok := c.entries.Lookup(id)
	return e.result, ok
}

func (c *Cache) Invalidate(id string) {
	c.entries.Delete(id)
}

// Stats returns the running hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	return int(atomic.LoadInt64(&c.hits)), int(atomic.LoadInt64(&c.misses))
}

func (c *Cache) String() string {
	hits, misses := c.Stats()
	rate := 0.
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return fmt.Sprintf("wirecache[size=%d, hits=%d, misses=%d, hitRate=%.1f%%]", c.entries.Len(), hits, misses, rate)
}

// SceneKey digests everything a pass shares between connections.
// Non-finite coordinates cannot be encoded and return an error.
func SceneKey(scene *wireroute.Scene, opts *wireroute.Options) (uint64, error) {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	if err := enc.Encode(scene); err != nil {
		return 0, err
	}
	if err := enc.Encode(opts); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// ConnectionKey digests the inputs of one connection in a pass: the scene key,
// the grid extent, the connection and the usage the router has recorded so far.
// The extent depends on every connection of the pass, so moving one waypoint
// far out can change the routes of the others.
func ConnectionKey(sceneKey uint64, conn *wireroute.Connection, r *wireroute.Router) (uint64, error) {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], sceneKey)
	h.Write(buf[:])
	g := r.Grid()
	for _, v := range []int{g.Min.X, g.Min.Y, g.Max.X, g.Max.Y} {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], r.Usage().Hash())
	h.Write(buf[:])
	if err := json.NewEncoder(h).Encode(conn); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
