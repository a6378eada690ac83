package wasmletplugin

import (
	"sync"

	"github.com/andrei-cloud/anet"
)

const poolRingSize = 16

type poolBucket struct {
	ring *anet.RingBuffer[[]byte]
	pool *sync.Pool
}

// BufferPool hands out reusable byte slices for building transformation
// output before it is copied into a shared buffer. Pooled slices are scratch
// space only; they must never be registered as shared buffers themselves,
// since a recycled slice would alias a live registry entry.
type BufferPool struct {
	buckets     map[int]*poolBucket
	sizeBuckets []int

	statsMu sync.Mutex
	hits    int64
	misses  int64
}

// NewBufferPool creates a pool with size buckets covering typical
// text-transformation outputs.
func NewBufferPool() *BufferPool {
	sizeBuckets := []int{64, 256, 1024, 4096}
	buckets := make(map[int]*poolBucket, len(sizeBuckets))

	for _, size := range sizeBuckets {
		size := size
		buckets[size] = &poolBucket{
			ring: anet.NewRingBuffer[[]byte](poolRingSize),
			pool: &sync.Pool{
				New: func() any {
					return make([]byte, 0, size)
				},
			},
		}
	}

	return &BufferPool{buckets: buckets, sizeBuckets: sizeBuckets}
}

// Get returns a zero-length slice with at least the given capacity.
func (bp *BufferPool) Get(capacity int) []byte {
	bucket, ok := bp.bucketFor(capacity)
	if !ok {
		bp.count(false)

		return make([]byte, 0, capacity)
	}

	if buf, ok := bucket.ring.Dequeue(); ok {
		bp.count(true)

		return buf[:0]
	}

	if buf, ok := bucket.pool.Get().([]byte); ok {
		bp.count(cap(buf) > 0)

		return buf[:0]
	}

	bp.count(false)

	return make([]byte, 0, capacity)
}

// Put returns a slice to the pool for reuse. Oversized slices are dropped.
func (bp *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}

	bucket, ok := bp.bucketFor(cap(buf))
	if !ok {
		return
	}

	buf = buf[:0]
	if bucket.ring.Enqueue(buf) {
		return
	}
	bucket.pool.Put(buf)
}

// Stats reports how often Get was served from the pool.
func (bp *BufferPool) Stats() (hits, misses int64) {
	bp.statsMu.Lock()
	defer bp.statsMu.Unlock()

	return bp.hits, bp.misses
}

func (bp *BufferPool) bucketFor(capacity int) (*poolBucket, bool) {
	for _, size := range bp.sizeBuckets {
		if size >= capacity {
			return bp.buckets[size], true
		}
	}

	return nil, false
}

func (bp *BufferPool) count(hit bool) {
	bp.statsMu.Lock()
	defer bp.statsMu.Unlock()

	if hit {
		bp.hits++
	} else {
		bp.misses++
	}
}
