package libgeode

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/geode-systems/go-geode/geode"
)

// TypeSet allows adding of SubdigonTypes to an internal set and returning if a given type has already been added.
type TypeSet interface {
	geode.TypeAdder

	// Close removes all previously added items from this set.
	//
	// If you make subsequent calls to TryAddType(), call Close() when you're done.
	Close()
}

// NewTypeSet returns an empty TypeSet backed by an in-memory LSM db.
func NewTypeSet() TypeSet {
	return &typeSet{}
}

type typeSet struct {
	lsmSet
}

func (ts *typeSet) TryAddType(st geode.SubdigonType) bool {
	// The leading length byte keeps the empty type's key non-empty.
	var buf geode.TypeSpecBuf
	key := st.AppendTypeSpecTo(append(buf[:0], byte(len(st))))
	return ts.tryAdd(key)
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
