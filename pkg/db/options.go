package db

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMapSize is the maximum storage size used when Options.MapSize is zero.
const DefaultMapSize int64 = 2 * 1024 * 1024 * 1024

// SentinelMode selects how a range bound that names an absent key is made seekable.
type SentinelMode uint8

const (
	// SentinelNone seeks to the nearest existing key and never writes.
	SentinelNone SentinelMode = iota
	// SentinelScoped writes a marker for the bound inside the iterator's own
	// transaction. The marker is discarded when the iterator closes.
	SentinelScoped
)

func (m SentinelMode) String() string {
	switch m {
	case SentinelNone:
		return "none"
	case SentinelScoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// UnmarshalText accepts "none" or "scoped".
func (m *SentinelMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "none":
		*m = SentinelNone
	case "scoped":
		*m = SentinelScoped
	default:
		return ValidationError("unknown sentinel mode %q", b)
	}
	return nil
}

// Options configure Open.
type Options struct {
	MapSize int64  `yaml:"map_size"`
	DBIName string `yaml:"dbi_name"`
	// CreateIfMissing defaults to true when nil.
	CreateIfMissing *bool `yaml:"create_if_missing"`
	ErrorIfExists   bool  `yaml:"error_if_exists"`
	// AsBuffer makes reads return Bytes instead of Text unless ReadOptions.As says otherwise.
	AsBuffer bool `yaml:"as_buffer"`

	Sentinel    SentinelMode `yaml:"sentinel"`
	OpenRetries uint64       `yaml:"open_retries"`

	// Env and DBI reuse handles opened elsewhere; DBI requires Env.
	Env        Env                   `yaml:"-"`
	DBI        DBI                   `yaml:"-"`
	Registerer prometheus.Registerer `yaml:"-"`
}

// Bool returns a pointer to v, for optional fields.
func Bool(v bool) *bool {
	return &v
}

func (o Options) ShouldCreate() bool {
	return o.CreateIfMissing == nil || *o.CreateIfMissing
}

func (o Options) EffectiveMapSize() int64 {
	if o.MapSize <= 0 {
		return DefaultMapSize
	}
	return o.MapSize
}

// ReadOptions configure Get.
type ReadOptions struct {
	AsBuffer bool
	// As narrows the stored value; nil falls back to AsBuffer.
	As *ValueKind
}

// Kind resolves the requested value kind against the store default.
func (o ReadOptions) Kind(storeAsBuffer bool) ValueKind {
	switch {
	case o.As != nil:
		return *o.As
	case o.AsBuffer || storeAsBuffer:
		return KindBytes
	default:
		return KindText
	}
}

// As is a helper for ReadOptions.As.
func As(k ValueKind) *ValueKind {
	return &k
}

// IteratorOptions configure NewIterator. An empty bound is treated as absent.
type IteratorOptions struct {
	Gt  []byte `yaml:"gt"`
	Gte []byte `yaml:"gte"`
	Lt  []byte `yaml:"lt"`
	Lte []byte `yaml:"lte"`

	Reverse       bool `yaml:"reverse"`
	KeyAsBuffer   bool `yaml:"key_as_buffer"`
	ValueAsBuffer bool `yaml:"value_as_buffer"`
	// Limit caps the number of emitted pairs; zero or negative means no limit.
	Limit int `yaml:"limit"`

	// Start and End are the legacy bound names, see Normalize.
	Start []byte `yaml:"start"`
	End   []byte `yaml:"end"`
}

// Normalize folds the legacy Start/End bounds into Gte/Lte. Reversed
// iterators swap them. Explicit Gte/Lte are never overridden.
func (o IteratorOptions) Normalize() IteratorOptions {
	lower, upper := o.Start, o.End
	if o.Reverse {
		lower, upper = o.End, o.Start
	}
	if len(o.Gte) == 0 {
		o.Gte = lower
	}
	if len(o.Lte) == 0 {
		o.Lte = upper
	}
	o.Start, o.End = nil, nil
	return o
}

// Validate rejects an inclusive and exclusive bound on the same side.
func (o IteratorOptions) Validate() error {
	if len(o.Gt) > 0 && len(o.Gte) > 0 {
		return ValidationError(ErrConflictingBounds, "gt", "gte")
	}
	if len(o.Lt) > 0 && len(o.Lte) > 0 {
		return ValidationError(ErrConflictingBounds, "lt", "lte")
	}
	return nil
}

// HasLimit reports whether emitted pairs are capped.
func (o IteratorOptions) HasLimit() bool {
	return o.Limit > 0
}
