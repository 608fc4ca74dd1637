package adapter

import (
	"errors"

	"github.com/eigerco/lmdbdown/pkg/db"
	"github.com/eigerco/lmdbdown/pkg/serialization/codec"
)

// BoundKind is the comparison a one-sided bound applies.
type BoundKind uint8

const (
	GreaterThan BoundKind = iota
	GreaterOrEqual
	LessThan
	LessOrEqual
)

func (k BoundKind) String() string {
	switch k {
	case GreaterThan:
		return "gt"
	case GreaterOrEqual:
		return "gte"
	case LessThan:
		return "lt"
	case LessOrEqual:
		return "lte"
	default:
		return "unknown"
	}
}

func (k BoundKind) forward() bool {
	return k == GreaterThan || k == GreaterOrEqual
}

var (
	errSentinelLost = errors.New("sentinel not found after write")
	errNoRangeSeek  = errors.New("cursor cannot seek to the nearest key; use scoped sentinels")
)

// sentinelValue is the marker stored for a synthesized bound key.
var sentinelValue = codec.EncodeBool(true)

// boundSeeker positions a cursor on the first record satisfying a one-sided bound.
type boundSeeker struct {
	txn    db.Txn
	cursor db.Cursor
	mode   db.SentinelMode
	// onSentinel runs whenever a bound key had to be synthesized.
	onSentinel func()
}

// Seek reports false when no record satisfies the bound.
func (s *boundSeeker) Seek(key []byte, kind BoundKind) (bool, error) {
	found, err := s.cursor.GoToKey(key)
	if err != nil {
		return false, err
	}
	if !found {
		return s.synthesize(key, kind)
	}
	switch kind {
	case GreaterThan:
		return s.cursor.GoToNext()
	case LessThan:
		return s.cursor.GoToPrev()
	default:
		return true, nil
	}
}

// synthesize handles a bound key that is not stored. Either mode leaves the
// cursor on the nearest real neighbor in the bound's direction.
func (s *boundSeeker) synthesize(key []byte, kind BoundKind) (bool, error) {
	if s.onSentinel != nil {
		s.onSentinel()
	}
	if s.mode == db.SentinelScoped {
		return s.viaSentinel(key, kind)
	}
	return s.viaRange(key, kind)
}

// viaSentinel writes a marker for key into the iterator's transaction so the
// exact seek can land on it, then steps off it. The transaction is never
// committed, so the marker disappears with it.
func (s *boundSeeker) viaSentinel(key []byte, kind BoundKind) (bool, error) {
	if err := s.txn.Put(key, sentinelValue); err != nil {
		return false, err
	}
	found, err := s.cursor.GoToKey(key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, errSentinelLost
	}
	if kind.forward() {
		return s.cursor.GoToNext()
	}
	return s.cursor.GoToPrev()
}

// viaRange lets the cursor's nearest-key seek stand in for the marker. Since
// key is absent, the first key >= key is also the first key > key.
func (s *boundSeeker) viaRange(key []byte, kind BoundKind) (bool, error) {
	rs, ok := s.cursor.(db.RangeSeeker)
	if !ok {
		return false, errNoRangeSeek
	}
	found, err := rs.GoToRange(key)
	if err != nil {
		return false, err
	}
	if kind.forward() {
		return found, nil
	}
	if found {
		return s.cursor.GoToPrev()
	}
	return s.cursor.GoToLast()
}
