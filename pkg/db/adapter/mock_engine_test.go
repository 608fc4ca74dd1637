package adapter

import (
	"github.com/stretchr/testify/mock"

	"github.com/eigerco/lmdbdown/pkg/db"
)

type envMock struct {
	mock.Mock
}

func (e *envMock) OpenDBI(name string, create bool) (db.DBI, error) {
	args := e.MethodCalled("OpenDBI", name, create)
	return args.Get(0).(db.DBI), args.Error(1)
}

func (e *envMock) BeginTxn(dbi db.DBI, readOnly bool) (db.Txn, error) {
	args := e.MethodCalled("BeginTxn", dbi, readOnly)
	txn, _ := args.Get(0).(db.Txn)
	return txn, args.Error(1)
}

func (e *envMock) Sync() error {
	return e.MethodCalled("Sync").Error(0)
}

func (e *envMock) PrivateWrites() bool {
	return e.MethodCalled("PrivateWrites").Bool(0)
}

func (e *envMock) Close() error {
	return e.MethodCalled("Close").Error(0)
}

type dbiMock struct{}

func (dbiMock) Name() string { return "mock" }
func (dbiMock) Close() error { return nil }

type txnMock struct {
	mock.Mock
}

func (t *txnMock) Get(key []byte) ([]byte, error) {
	args := t.MethodCalled("Get", key)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

func (t *txnMock) Put(key, value []byte) error {
	return t.MethodCalled("Put", key, value).Error(0)
}

func (t *txnMock) Delete(key []byte) error {
	return t.MethodCalled("Delete", key).Error(0)
}

func (t *txnMock) OpenCursor() (db.Cursor, error) {
	args := t.MethodCalled("OpenCursor")
	c, _ := args.Get(0).(db.Cursor)
	return c, args.Error(1)
}

func (t *txnMock) Commit() error {
	return t.MethodCalled("Commit").Error(0)
}

func (t *txnMock) Abort() {
	t.MethodCalled("Abort")
}

func (t *txnMock) ReadOnly() bool {
	return t.MethodCalled("ReadOnly").Bool(0)
}
