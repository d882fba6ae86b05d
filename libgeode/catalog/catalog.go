package catalog

import (
	"encoding/binary"
	"math/big"
	"runtime"

	"github.com/pkg/errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/geode-systems/go-geode/geode"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState (varint fields)

	'T', faces (byte), TypeSpec  =>  RatString of the Hyper-Catalan number
		...

The faces byte prefix groups entries by total face count, so:
	1) NumTypes tallies stay cheap to maintain
	2) Select() can seek straight to a face-count range
	3) enumeration order is deterministic (face count, then TypeSpec)

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
	gEntryKeyPrefix  = byte('T')
)

const (
	kStateMajorVers = 2025
	kStateMinorVers = 1

	// MaxCatalogFaces bounds the face counts a catalog can tally (the key prefix is one byte).
	MaxCatalogFaces = 255

	kDefaultMaxPolygonSize = 12
)

// catalog is a db wrapper for a Hyper-Catalan number catalog
type catalog struct {
	ctx        geode.CatalogContext
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

type catalogState struct {
	MajorVers      int32
	MinorVers      int32
	MaxPolygonSize int32
	NumTypes       []uint64 // indexed by total face count
}

func (s *catalogState) Marshal() []byte {
	buf := make([]byte, 0, 16+2*len(s.NumTypes))
	buf = binary.AppendUvarint(buf, uint64(s.MajorVers))
	buf = binary.AppendUvarint(buf, uint64(s.MinorVers))
	buf = binary.AppendUvarint(buf, uint64(s.MaxPolygonSize))
	buf = binary.AppendUvarint(buf, uint64(len(s.NumTypes)))
	for _, n := range s.NumTypes {
		buf = binary.AppendUvarint(buf, n)
	}
	return buf
}

func (s *catalogState) Unmarshal(in []byte) error {
	pos := 0
	next := func() (uint64, bool) {
		v, n := binary.Uvarint(in[pos:])
		if n <= 0 {
			return 0, false
		}
		pos += n
		return v, true
	}

	major, ok1 := next()
	minor, ok2 := next()
	maxSz, ok3 := next()
	count, ok4 := next()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return geode.ErrUnmarshal
	}

	s.MajorVers = int32(major)
	s.MinorVers = int32(minor)
	s.MaxPolygonSize = int32(maxSz)
	s.NumTypes = make([]uint64, count)
	for i := range s.NumTypes {
		n, ok := next()
		if !ok {
			return geode.ErrUnmarshal
		}
		s.NumTypes[i] = n
	}
	return nil
}

// OpenCatalog opens a new or existing Hyper-Catalan catalog and attaches it to ctx.
func OpenCatalog(ctx geode.CatalogContext, opts geode.CatalogOpts) (geode.Catalog, error) {

	if opts.MaxPolygonSize <= 0 {
		opts.MaxPolygonSize = kDefaultMaxPolygonSize
	}
	if opts.MaxPolygonSize > geode.MaxPolygonSize {
		return nil, errors.Wrap(geode.ErrBadCatalogParam, "MaxPolygonSize exceeds geode.MaxPolygonSize")
	}

	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	var err error

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(geode.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = kStateMajorVers
		cat.state.MinorVers = kStateMinorVers
		cat.state.MaxPolygonSize = opts.MaxPolygonSize
		cat.state.NumTypes = make([]uint64, MaxCatalogFaces+1)
	}

	if err == nil {
		if cat.state.MajorVers != kStateMajorVers || cat.state.MinorVers != kStateMinorVers {
			err = errors.New("catalog version is incompatible")
		} else if opts.MaxPolygonSize > cat.state.MaxPolygonSize {
			err = errors.New("catalog's MaxPolygonSize is below the requested MaxPolygonSize")
		}
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) loadState() error {
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
	return err
}

func (cat *catalog) flushState() {
	if cat.stateDirty && !cat.readOnly {
		err := cat.db.Update(func(txn *badger.Txn) error {
			return txn.Set(gCatalogStateKey, cat.state.Marshal())
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

// ImportFrom merges every entry of src into this catalog.
// Entries already present (or out of this catalog's bounds) are skipped.
func (cat *catalog) ImportFrom(src geode.Catalog) int64 {
	if cat.readOnly {
		return 0
	}

	onHit := make(chan geode.CatalogEntry)
	go func() {
		src.Select(geode.DefaultCatalogSelector, onHit)
		close(onHit)
	}()

	added := int64(0)
	for entry := range onHit {
		if cat.TryAddNumber(entry.Type, entry.Number) {
			added++
		}
	}
	return added
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

// MaxPolygonSize is the largest type vector length accepted by this catalog.
func (cat *catalog) MaxPolygonSize() int32 {
	return cat.state.MaxPolygonSize
}

func (cat *catalog) NumTypes(forFaceCount int32) int64 {
	if forFaceCount < 0 || int(forFaceCount) >= len(cat.state.NumTypes) {
		return 0
	}
	return int64(cat.state.NumTypes[forFaceCount])
}

// appendEntryKey forms the db key for st: 'T', faces byte, TypeSpec.
func appendEntryKey(in []byte, st geode.SubdigonType) []byte {
	in = append(in, gEntryKeyPrefix, byte(st.Faces()))
	return st.AppendTypeSpecTo(in)
}

func (cat *catalog) TryAddNumber(st geode.SubdigonType, number *big.Rat) bool {
	if cat.readOnly {
		return false
	}
	faces := st.Faces()
	if faces < 0 || faces > MaxCatalogFaces || len(st) > int(cat.state.MaxPolygonSize) {
		return false
	}

	var keyBuf geode.TypeSpecBuf
	key := appendEntryKey(keyBuf[:0], st)

	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // already cataloged
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		if err = txn.Set(key, []byte(number.RatString())); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		panic(err)
	}

	if added {
		cat.state.NumTypes[faces]++
		cat.stateDirty = true
	}
	return added
}

func (cat *catalog) LookupNumber(st geode.SubdigonType) (*big.Rat, bool) {
	faces := st.Faces()
	if faces < 0 || faces > MaxCatalogFaces {
		return nil, false
	}

	var keyBuf geode.TypeSpecBuf
	key := appendEntryKey(keyBuf[:0], st)

	var number *big.Rat
	cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rat, ok := new(big.Rat).SetString(string(val))
			if !ok {
				return geode.ErrUnmarshal
			}
			number = rat
			return nil
		})
	})

	if number == nil {
		return nil, false
	}
	return number, true
}

// Select fires onHit with each catalog entry matching sel, in (faces, TypeSpec) order.
// The caller owns onHit and closes it after Select returns.
func (cat *catalog) Select(sel geode.CatalogSelector, onHit geode.OnCatalogHit) {
	minFaces := sel.MinFaces
	if minFaces < 0 {
		minFaces = 0
	}
	maxFaces := sel.MaxFaces
	if maxFaces > MaxCatalogFaces {
		maxFaces = MaxCatalogFaces
	}

	cat.db.View(func(txn *badger.Txn) error {
		itrOpts := badger.DefaultIteratorOptions
		itrOpts.Prefix = []byte{gEntryKeyPrefix}
		itr := txn.NewIterator(itrOpts)
		defer itr.Close()

		seek := []byte{gEntryKeyPrefix, byte(minFaces)}
		for itr.Seek(seek); itr.Valid(); itr.Next() {
			item := itr.Item()
			key := item.Key()
			if len(key) < 2 || int32(key[1]) > maxFaces {
				break
			}

			var st geode.SubdigonType
			if err := st.InitFromTypeSpec(geode.TypeSpec(key[2:])); err != nil {
				continue
			}

			var number *big.Rat
			err := item.Value(func(val []byte) error {
				rat, ok := new(big.Rat).SetString(string(val))
				if !ok {
					return geode.ErrUnmarshal
				}
				number = rat
				return nil
			})
			if err != nil {
				continue
			}

			onHit <- geode.CatalogEntry{
				Type:   st,
				Number: number,
			}
		}
		return nil
	})
}
