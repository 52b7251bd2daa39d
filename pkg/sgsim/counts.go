package sgsim

// Counts is the ground truth: how many reads came from each key. Keys are
// kept in the order they were first added, which is the order they are
// written out in.
type Counts struct {
	order []string
	n     map[string]int
}

func NewCounts() *Counts { return &Counts{n: make(map[string]int)} }

// Add makes sure k is present. A key that is already there keeps its
// count, so duplicate library sequences end up in one bucket.
func (c *Counts) Add(k string) {
	if _, ok := c.n[k]; ok {
		return
	}
	c.n[k] = 0
	c.order = append(c.order, k)
}

// Inc counts one more read for k, adding k if needed.
func (c *Counts) Inc(k string) {
	c.Add(k)
	c.n[k]++
}

func (c *Counts) Get(k string) int { return c.n[k] }

func (c *Counts) Len() int { return len(c.order) }

// Keys returns a copy of the keys in insertion order.
func (c *Counts) Keys() []string { return append([]string(nil), c.order...) }

// Total is the sum of all counts.
func (c *Counts) Total() int {
	var t int
	for _, v := range c.n {
		t += v
	}
	return t
}
