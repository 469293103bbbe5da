// Package store persiste imagens comprimidas em um diretório plano no disco.
package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound é retornado quando nenhum arquivo é encontrado.
	ErrNotFound = errors.New("store: imagem não encontrada")
	// ErrWrite sinaliza falha de gravação no disco.
	ErrWrite = errors.New("store: falha de gravação")
)

// Entry descreve um arquivo persistido e seu instante de modificação.
type Entry struct {
	Name    string
	ModTime time.Time
}

// Store define o comportamento do armazenamento de imagens.
type Store interface {
	// Write grava data sob um nome novo gerado e o devolve.
	Write(data []byte) (string, error)
	// Read devolve o conteúdo do arquivo com o nome exato informado.
	Read(name string) ([]byte, error)
	// List enumera os arquivos presentes no instante da chamada.
	List() ([]Entry, error)
	// Delete remove o arquivo; nomes inexistentes não são erro.
	Delete(name string) error
}
