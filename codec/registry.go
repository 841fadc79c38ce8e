package codec

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry maps codec kinds to implementations. It is safe for
// concurrent use.
type Registry struct {
	codecs *xsync.Map[Kind, Codec]
}

func NewRegistry() *Registry {
	return &Registry{codecs: xsync.NewMap[Kind, Codec]()}
}

// Register adds or replaces the codec for kind.
func (r *Registry) Register(kind Kind, c Codec) error {
	if !kind.IsValid() {
		return fmt.Errorf("cannot register codec for kind %d", int(kind))
	}
	if c == nil {
		return fmt.Errorf("cannot register nil codec for %s", kind)
	}
	r.codecs.Store(kind, c)
	return nil
}

// Lookup returns the codec registered for kind.
func (r *Registry) Lookup(kind Kind) (Codec, bool) {
	return r.codecs.Load(kind)
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, r.codecs.Size())
	r.codecs.Range(func(k Kind, _ Codec) bool {
		kinds = append(kinds, k)
		return true
	})
	slices.Sort(kinds)
	return kinds
}
