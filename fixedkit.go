package fixedkit

// Sized is implemented by every fixed-capacity container and pool.
type Sized interface {
	Len() int
	Cap() int
}

// Allocator hands out and reclaims fixed-size blocks identified by H.
type Allocator[H any] interface {
	Get(size int) (H, error)
	Put(h H) error
	GetRef(h H) error
	PutRef(h H) error
}

// Available returns the remaining capacity of c.
func Available(c Sized) int {
	return c.Cap() - c.Len()
}

// Full reports whether c has no remaining capacity.
func Full(c Sized) bool {
	return c.Len() >= c.Cap()
}
