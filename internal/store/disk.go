package store

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const fileExt = ".jpg"

// DiskStore implementa Store sobre um diretório plano.
// Não há índice nem metadados: o mtime do filesystem é a única fonte de
// idade, e a unicidade dos nomes vem do token aleatório.
type DiskStore struct {
	root string
}

// NewDiskStore cria o diretório raiz (se ausente) e devolve o store pronto.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: criar diretório %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

// Write grava data sob <token>_<unixts>.jpg e devolve o nome gerado.
// Dois writers concorrentes nunca colidem: o token UUID torna a repetição
// de nome desprezível, sem precisar de lock.
func (s *DiskStore) Write(data []byte) (string, error) {
	name := newName(time.Now())
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWrite, name, err)
	}
	return name, nil
}

// Read devolve o conteúdo do arquivo. Nomes com separadores ou segmentos
// relativos nunca saem do diretório raiz: são tratados como inexistentes.
func (s *DiskStore) Read(name string) ([]byte, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: ler %s: %w", name, err)
	}
	return data, nil
}

// List devolve um snapshot dos arquivos presentes. Entradas removidas entre
// a listagem e o stat são ignoradas em vez de abortar a enumeração.
func (s *DiskStore) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("store: listar %s: %w", s.root, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), ModTime: info.ModTime()})
	}
	return entries, nil
}

// Delete remove o arquivo. Apagar um nome já removido não é erro: o sweeper
// precisa tolerar arquivos que sumiram entre a listagem e a deleção.
func (s *DiskStore) Delete(name string) error {
	if !validName(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: remover %s: %w", name, err)
	}
	return nil
}

// Root devolve o diretório raiz do store.
func (s *DiskStore) Root() string {
	return s.root
}

func newName(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%d%s", hex.EncodeToString(id[:]), now.Unix(), fileExt)
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return fs.ValidPath(name)
}

var _ Store = (*DiskStore)(nil)
