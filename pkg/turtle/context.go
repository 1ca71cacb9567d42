package turtle

import (
	"strconv"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// context is the mutable state of one parse: the prolog, the anonymous
// node counter and the triples waiting to be handed out.
type context struct {
	*Prolog
	counter uint64
	queue   []*rdf.Triple
}

func newContext(prolog *Prolog) *context {
	return &context{Prolog: prolog}
}

// newLabeledBlankNode wraps a label the scanner already validated. The
// counter is not touched.
func (c *context) newLabeledBlankNode(label string) *rdf.BlankNode {
	return rdf.NewBlankNode(label)
}

// newAnonymousLabel consumes the counter. Values are never handed out
// twice, even when the production that asked for one fails.
func (c *context) newAnonymousLabel() string {
	label := "anon" + strconv.FormatUint(c.counter, 10)
	c.counter++
	return label
}

func (c *context) newAnonymousBlankNode() *rdf.BlankNode {
	return rdf.NewBlankNode(c.newAnonymousLabel())
}

func (c *context) pushAll(ts []*rdf.Triple) {
	c.queue = append(c.queue, ts...)
}

func (c *context) pop() (*rdf.Triple, bool) {
	if len(c.queue) == 0 {
		return nil, false
	}
	t := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return t, true
}

func (c *context) pending() int {
	return len(c.queue)
}
