package bitbuf

// Decode-side allocation limits. Declared lengths and counts arrive from the
// peer, so they are checked against these before anything is allocated.
const (
	DefaultMaxStringBytes     = 16 << 10
	DefaultMaxBlobBytes       = 1 << 20
	DefaultMaxCollectionCount = 10_000
)

// Limits constrains reader allocations.
type Limits struct {
	MaxStringBytes     int
	MaxBlobBytes       int
	MaxCollectionCount int
}

func DefaultLimits() Limits {
	return Limits{
		MaxStringBytes:     DefaultMaxStringBytes,
		MaxBlobBytes:       DefaultMaxBlobBytes,
		MaxCollectionCount: DefaultMaxCollectionCount,
	}
}

// normalized fills zero fields with defaults.
func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.MaxStringBytes <= 0 {
		l.MaxStringBytes = d.MaxStringBytes
	}
	if l.MaxBlobBytes <= 0 {
		l.MaxBlobBytes = d.MaxBlobBytes
	}
	if l.MaxCollectionCount <= 0 {
		l.MaxCollectionCount = d.MaxCollectionCount
	}
	return l
}
