package store

import (
	"bytes"
	"errors"
	"regexp"
	"sync"
	"testing"
)

var namePattern = regexp.MustCompile(`^[0-9a-f]{32}_\d+\.jpg$`)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	st, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return st
}

func TestWriteReadRoundTrip(t *testing.T) {
	st := newTestStore(t)
	payload := []byte{0xff, 0xd8, 0xff, 0x01, 0x02, 0x03}

	name, err := st.Write(payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !namePattern.MatchString(name) {
		t.Fatalf("nome fora do padrão: %q", name)
	}

	got, err := st.Read(name)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("conteúdo lido difere do gravado")
	}
}

func TestConcurrentWritesDistinctNames(t *testing.T) {
	st := newTestStore(t)
	const n = 32

	var mu sync.Mutex
	names := make(map[string]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := st.Write([]byte("x"))
			if err != nil {
				t.Errorf("Write: %v", err)
				return
			}
			mu.Lock()
			names[name] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(names) != n {
		t.Fatalf("%d nomes distintos, esperado %d", len(names), n)
	}
}

func TestReadMissingOrTraversal(t *testing.T) {
	st := newTestStore(t)

	cases := []string{
		"nunca-escrito.jpg",
		"../fora.jpg",
		"..",
		".",
		"sub/dir.jpg",
		`sub\dir.jpg`,
		"",
	}
	for _, name := range cases {
		if _, err := st.Read(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Read(%q): erro %v, esperado ErrNotFound", name, err)
		}
	}
}

func TestDeleteIdempotent(t *testing.T) {
	st := newTestStore(t)

	name, err := st.Write([]byte("efêmero"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := st.Delete(name); err != nil {
		t.Fatalf("primeira deleção: %v", err)
	}
	if err := st.Delete(name); err != nil {
		t.Fatalf("deleção repetida deveria ser silenciosa: %v", err)
	}
	if err := st.Delete("jamais-existiu.jpg"); err != nil {
		t.Fatalf("deleção de inexistente deveria ser silenciosa: %v", err)
	}

	if _, err := st.Read(name); !errors.Is(err, ErrNotFound) {
		t.Fatalf("arquivo ainda legível após deleção: %v", err)
	}
}

func TestListSnapshot(t *testing.T) {
	st := newTestStore(t)

	first, err := st.Write([]byte("a"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, err := st.Write([]byte("b"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("%d entradas, esperado 2", len(entries))
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if e.ModTime.IsZero() {
			t.Errorf("entrada %s sem mtime", e.Name)
		}
		seen[e.Name] = true
	}
	if !seen[first] || !seen[second] {
		t.Fatalf("listagem não contém os arquivos gravados: %v", entries)
	}
}
