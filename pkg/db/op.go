package db

// OpType distinguishes the two operation variants.
type OpType uint8

const (
	OpPut OpType = iota + 1
	OpDelete
)

func (t OpType) String() string {
	switch t {
	case OpPut:
		return "put"
	case OpDelete:
		return "del"
	default:
		return "unknown"
	}
}

// Op is one entry of an atomic write.
type Op struct {
	Type  OpType
	Key   []byte
	Value Value
}

func Put(key []byte, value Value) Op {
	return Op{Type: OpPut, Key: key, Value: value}
}

func Del(key []byte) Op {
	return Op{Type: OpDelete, Key: key}
}
