// Package playback orders inbound AI audio for one-at-a-time playback.
package playback

import "fmt"

// Item is one buffer handed to the player.
type Item struct {
	Gen  uint64
	Seq  uint64
	Data []byte
}

// Queue is a FIFO of received audio buffers. At most one item is playing at a
// time, and Clear invalidates the playing item by bumping the generation.
// Queue is not safe for concurrent use; the session loop owns it.
type Queue struct {
	prebuffer int
	highWater int

	items   []Item
	playing bool
	gen     uint64
	seq     uint64
}

// NewQueue validates 1 <= prebuffer <= highWater.
func NewQueue(prebuffer int, highWater int) (*Queue, error) {
	if prebuffer < 1 {
		return nil, fmt.Errorf("prebuffer must be >= 1, got %d", prebuffer)
	}
	if highWater < prebuffer {
		return nil, fmt.Errorf("high water (%d) must be >= prebuffer (%d)", highWater, prebuffer)
	}
	return &Queue{prebuffer: prebuffer, highWater: highWater}, nil
}

// Push appends a buffer in arrival order.
func (q *Queue) Push(data []byte) {
	q.seq++
	q.items = append(q.items, Item{Gen: q.gen, Seq: q.seq, Data: data})
}

// Next pops the head for playback when nothing is playing and either force is
// set, the prebuffer is filled, or the high-water mark is reached.
func (q *Queue) Next(force bool) (Item, bool) {
	if q.playing || len(q.items) == 0 {
		return Item{}, false
	}
	if !force && len(q.items) < q.prebuffer && len(q.items) < q.highWater {
		return Item{}, false
	}
	item := q.items[0]
	q.items[0] = Item{}
	q.items = q.items[1:]
	q.playing = true
	return item, true
}

// Done marks the playing item finished. It reports false for a completion
// from an older generation, which must be ignored.
func (q *Queue) Done(gen uint64) bool {
	if gen != q.gen || !q.playing {
		return false
	}
	q.playing = false
	return true
}

// Clear drops queued audio and invalidates the playing item.
func (q *Queue) Clear() {
	q.gen++
	q.items = nil
	q.playing = false
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Playing() bool {
	return q.playing
}

// Idle reports whether nothing is playing or queued.
func (q *Queue) Idle() bool {
	return !q.playing && len(q.items) == 0
}

func (q *Queue) Generation() uint64 {
	return q.gen
}
