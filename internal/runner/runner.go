// Package runner modela o colaborador que executa código de plotagem e
// devolve bytes brutos de imagem. A implementação concreta (interpretador
// isolado, subprocesso, serviço remoto) fica atrás da interface: este
// serviço só consome "produziu bytes?" e "falhou?".
package runner

import (
	"context"
	"errors"
)

var (
	// ErrNoImage indica que o código executou mas não produziu imagem.
	ErrNoImage = errors.New("runner: código executado sem produzir imagem")
	// ErrNotConfigured indica ausência de backend de execução.
	ErrNotConfigured = errors.New("runner: backend de execução não configurado")
)

// Runner executa código de plotagem e devolve os bytes brutos da imagem.
type Runner interface {
	Execute(ctx context.Context, code string) ([]byte, error)
}

// NoopRunner devolve erro indicando que não há backend configurado.
type NoopRunner struct{}

// Execute sempre retorna erro, sinalizando que o recurso não está disponível.
func (NoopRunner) Execute(ctx context.Context, code string) ([]byte, error) {
	return nil, ErrNotConfigured
}
