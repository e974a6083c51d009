package workspace

import (
	"html"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Entry is one line of the conduit log. HTML is sanitised markup.
type Entry struct {
	ID         string    `json:"id"`
	Seq        uint64    `json:"seq"`
	At         time.Time `json:"at"`
	HTML       string    `json:"html"`
	Emphasized bool      `json:"emphasized,omitempty"`
	Color      string    `json:"color,omitempty"`
}

var plainText = bluemonday.StrictPolicy()

// Text is the entry with markup stripped and entities decoded.
func (e Entry) Text() string {
	return html.UnescapeString(plainText.Sanitize(e.HTML))
}

var (
	colorPattern = regexp.MustCompile(`^[#a-zA-Z0-9(),.\s]+$`)
	classPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

func markupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "em", "code", "br")
	p.AllowAttrs("class").Matching(classPattern).OnElements("span")
	p.AllowNoAttrs().OnElements("span")
	return p
}

// Conduit is the append-only interaction log. Entries are never removed or reordered.
type Conduit struct {
	mu      sync.RWMutex
	entries []Entry
	seq     uint64
	now     func() time.Time
	policy  *bluemonday.Policy
	subs    map[int]chan Entry
	nextSub int
	hooks   []func(Entry)
	closed  bool
}

func NewConduit(now func() time.Time) *Conduit {
	if now == nil {
		now = time.Now
	}
	return &Conduit{
		now:    now,
		policy: markupPolicy(),
		subs:   make(map[int]chan Entry),
	}
}

// Append sanitises markup, stamps the entry and fans it out to subscribers.
// Colors outside a conservative CSS subset are dropped.
func (c *Conduit) Append(markup string, emphasized bool, color string) Entry {
	if color != "" && !colorPattern.MatchString(color) {
		color = ""
	}

	c.mu.Lock()
	c.seq++
	e := Entry{
		ID:         uuid.NewString(),
		Seq:        c.seq,
		At:         c.now(),
		HTML:       c.policy.Sanitize(markup),
		Emphasized: emphasized,
		Color:      color,
	}
	c.entries = append(c.entries, e)
	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
			// slow subscriber; it can catch up with Since
		}
	}
	hooks := c.hooks
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(e)
	}
	return e
}

// Entries returns the whole log in append order.
func (c *Conduit) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Since returns entries with a sequence number greater than seq.
func (c *Conduit) Since(seq uint64) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if seq >= c.seq {
		return []Entry{}
	}
	// seq numbers are dense and start at 1
	start := int(seq)
	out := make([]Entry, len(c.entries)-start)
	copy(out, c.entries[start:])
	return out
}

// Last returns the most recently appended entry.
func (c *Conduit) Last() (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[len(c.entries)-1], true
}

// Len is the number of entries.
func (c *Conduit) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Subscribe delivers every entry appended after the call. The returned func
// unsubscribes and closes the channel. On a closed conduit the channel is
// already closed.
func (c *Conduit) Subscribe(buffer int) (<-chan Entry, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Entry, buffer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Close ends every subscription. Appends still extend the log but are no
// longer fanned out to subscribers.
func (c *Conduit) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// OnAppend registers fn to run synchronously after every append.
func (c *Conduit) OnAppend(fn func(Entry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}
