package catalog_test

import (
	"math/big"
	"path"
	"testing"

	"github.com/geode-systems/go-geode/geode"
	"github.com/geode-systems/go-geode/libgeode"
	"github.com/geode-systems/go-geode/libgeode/catalog"
)

func TestCatalogAddLookup(t *testing.T) {
	ctx := geode.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	cat, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{
		DbPathName: path.Join(t.TempDir(), "cat"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	st := geode.NewSubdigonType([]int32{2, 1, 0})
	number := big.NewRat(3, 2)

	if !cat.TryAddNumber(st, number) {
		t.Fatal("first add")
	}
	if cat.TryAddNumber(st, number) {
		t.Fatal("re-add must report already cataloged")
	}
	if cat.NumTypes(st.Faces()) != 1 {
		t.Fatalf("NumTypes: %d", cat.NumTypes(st.Faces()))
	}

	got, found := cat.LookupNumber(st)
	if !found || got.Cmp(number) != 0 {
		t.Fatalf("lookup: %v %v", got, found)
	}

	if _, found = cat.LookupNumber(geode.SubdigonType{9, 9, 9}); found {
		t.Fatal("lookup of uncataloged type")
	}
}

func TestCatalogPersists(t *testing.T) {
	ctx := geode.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	dbPath := path.Join(t.TempDir(), "cat")
	st := geode.NewSubdigonType([]int32{0, 2, 0})
	number := big.NewRat(1, 2)

	cat, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{DbPathName: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	cat.TryAddNumber(st, number)
	if err = cat.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{DbPathName: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, found := reopened.LookupNumber(st)
	if !found || got.Cmp(number) != 0 {
		t.Fatal("entry did not persist")
	}
	if reopened.NumTypes(st.Faces()) != 1 {
		t.Fatal("tallies did not persist")
	}
}

func TestCatalogReadOnly(t *testing.T) {
	ctx := geode.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	// Read-only requires an on-disk db
	if _, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{ReadOnly: true}); err == nil {
		t.Fatal("read-only in-memory catalog must be rejected")
	}

	dbPath := path.Join(t.TempDir(), "cat")
	cat, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{DbPathName: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	cat.TryAddNumber(geode.SubdigonType{1}, big.NewRat(1, 1))
	cat.Close()

	cat, err = catalog.OpenCatalog(ctx, geode.CatalogOpts{DbPathName: dbPath, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	if !cat.IsReadOnly() {
		t.Fatal("IsReadOnly")
	}
	if cat.TryAddNumber(geode.SubdigonType{2}, big.NewRat(1, 1)) {
		t.Fatal("add to read-only catalog")
	}
	if _, found := cat.LookupNumber(geode.SubdigonType{1}); !found {
		t.Fatal("read-only lookup")
	}
}

func TestCatalogSelect(t *testing.T) {
	ctx := geode.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	cat, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	calc := libgeode.NewCalculator()
	calc.AttachCatalog(cat)

	total := 0
	for faces := 0; faces <= 4; faces++ {
		for _, st := range libgeode.EnumTypes(faces, 3) {
			calc.Calculate(st)
			total++
		}
	}

	drain := func(sel geode.CatalogSelector) int {
		onHit := make(chan geode.CatalogEntry)
		go func() {
			cat.Select(sel, onHit)
			close(onHit)
		}()

		count := 0
		prevFaces := int32(-1)
		for entry := range onHit {
			if entry.Type.Faces() < prevFaces {
				t.Errorf("out of order: %v after faces=%d", entry.Type, prevFaces)
			}
			prevFaces = entry.Type.Faces()
			if entry.Number.Sign() <= 0 {
				t.Errorf("bad number for %v", entry.Type)
			}
			count++
		}
		return count
	}

	if got := drain(geode.DefaultCatalogSelector); got != total {
		t.Fatalf("select all: got %d, want %d", got, total)
	}
	if got := drain(geode.CatalogSelector{MinFaces: 2, MaxFaces: 3}); got != 16 {
		t.Fatalf("select range: got %d", got)
	}
}

func TestCatalogImportFrom(t *testing.T) {
	ctx := geode.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	src, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	dst, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	calc := libgeode.NewCalculator()
	calc.AttachCatalog(src)

	total := 0
	for faces := 0; faces <= 3; faces++ {
		for _, st := range libgeode.EnumTypes(faces, 3) {
			calc.Calculate(st)
			total++
		}
	}

	// Seed one overlapping entry so the merge has a duplicate to skip.
	shared := geode.NewSubdigonType([]int32{1, 0, 0})
	dst.TryAddNumber(shared, big.NewRat(1, 1))

	if added := dst.ImportFrom(src); added != int64(total-1) {
		t.Fatalf("imported %d, want %d", added, total-1)
	}
	if dst.ImportFrom(src) != 0 {
		t.Fatal("re-import must add nothing")
	}
	if dst.NumTypes(2) != src.NumTypes(2) {
		t.Fatal("tallies diverge after import")
	}
}

func TestCalculatorUsesCatalog(t *testing.T) {
	ctx := geode.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	dbPath := path.Join(t.TempDir(), "cat")
	st := geode.NewSubdigonType([]int32{2, 1, 0})

	cat, err := catalog.OpenCatalog(ctx, geode.CatalogOpts{DbPathName: dbPath})
	if err != nil {
		t.Fatal(err)
	}

	calc := libgeode.NewCalculator()
	calc.AttachCatalog(cat)
	want := calc.Calculate(st)
	cat.Close()

	// A fresh calculator on the reopened catalog must find the number without recomputing.
	cat, err = catalog.OpenCatalog(ctx, geode.CatalogOpts{DbPathName: dbPath, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	got, found := cat.LookupNumber(st)
	if !found || got.Cmp(want) != 0 {
		t.Fatalf("catalog miss: %v %v", got, found)
	}

	calc2 := libgeode.NewCalculator()
	calc2.AttachCatalog(cat)
	if calc2.Calculate(st).Cmp(want) != 0 {
		t.Fatal("calculator + catalog mismatch")
	}
	if calc2.CacheLen() != 1 {
		t.Fatal("catalog hit must still memoize")
	}
}
