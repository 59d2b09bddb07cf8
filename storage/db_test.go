package storage

import (
	"bytes"
	"testing"
)

func TestMemDBPutGetDelete(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	if err := db.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, ok, err := db.Get([]byte("a"))
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(value, []byte("1")) {
		t.Fatalf("unexpected value %q", value)
	}
	if err := db.Delete([]byte("a")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := db.Get([]byte("a")); ok {
		t.Fatal("expected key to be gone")
	}
}

func TestMemDBIteratorOrder(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	for _, k := range []string{"p/c", "p/a", "q/z", "p/b"} {
		if err := db.Put([]byte(k), []byte(k)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	collect := func(reverse bool) []string {
		it := db.NewIterator([]byte("p/"), reverse)
		defer it.Release()
		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		return keys
	}

	asc := collect(false)
	want := []string{"p/a", "p/b", "p/c"}
	if len(asc) != len(want) {
		t.Fatalf("ascending keys = %v, want %v", asc, want)
	}
	for i := range want {
		if asc[i] != want[i] {
			t.Fatalf("ascending keys = %v, want %v", asc, want)
		}
	}

	desc := collect(true)
	for i := range want {
		if desc[i] != want[len(want)-1-i] {
			t.Fatalf("descending keys = %v", desc)
		}
	}
}

func TestBatchWriteIsAtomicallyApplied(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	if err := db.Put([]byte("stale"), []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}

	batch := new(Batch)
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("stale"))
	if batch.Len() != 3 {
		t.Fatalf("batch len = %d", batch.Len())
	}
	if err := db.Write(batch); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, ok, _ := db.Get([]byte("a")); !ok {
		t.Fatal("missing a")
	}
	if _, ok, _ := db.Get([]byte("b")); !ok {
		t.Fatal("missing b")
	}
	if _, ok, _ := db.Get([]byte("stale")); ok {
		t.Fatal("stale key survived batch delete")
	}
}
