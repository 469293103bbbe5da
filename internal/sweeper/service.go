// Package sweeper remove do store imagens mais velhas que a janela de retenção.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Airpyk-98/Python-Image-Gen/internal/metrics"
	"github.com/Airpyk-98/Python-Image-Gen/internal/store"
)

// Service executa varreduras periódicas e apaga arquivos expirados.
type Service struct {
	store     store.Store
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	collector *metrics.Collector

	// now é injetável para os testes controlarem o relógio.
	now func() time.Time

	once   sync.Once
	cancel context.CancelFunc
}

// New cria o sweeper com a política de retenção informada.
func New(st store.Store, retention, interval time.Duration, logger zerolog.Logger, collector *metrics.Collector) *Service {
	return &Service{
		store:     st,
		retention: retention,
		interval:  interval,
		logger:    logger,
		collector: collector,
		now:       time.Now,
	}
}

// Start inicia o loop periódico. Safe para chamar múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.runLoop(ctx)
	})
}

// Stop encerra o loop periódico.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Dur("retention", s.retention).
		Msg("sweeper: loop iniciado")

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("sweeper: primeira varredura falhou")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper: loop encerrado")
			return
		case <-ticker.C:
			// Erros de ciclo nunca derrubam o loop: a próxima
			// varredura acontece no tick seguinte.
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweeper: varredura periódica falhou")
			}
		}
	}
}

// RunOnce percorre o store e apaga tudo que excedeu a retenção. Falha de
// deleção em um arquivo não interrompe os demais.
func (s *Service) RunOnce(ctx context.Context) error {
	entries, err := s.store.List()
	if err != nil {
		return fmt.Errorf("listar store: %w", err)
	}
	if s.collector != nil {
		s.collector.SweeperRuns.Inc()
	}

	now := s.now()
	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		age := now.Sub(entry.ModTime)
		if age <= s.retention {
			continue
		}
		if err := s.store.Delete(entry.Name); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name).
				Msg("sweeper: falha ao remover arquivo expirado")
			continue
		}
		removed++
		if s.collector != nil {
			s.collector.SweptFiles.Inc()
		}
		s.logger.Info().Str("file", entry.Name).Dur("age", age).
			Msg("sweeper: arquivo expirado removido")
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("scanned", len(entries)).
			Msg("sweeper: varredura concluída")
	}
	return nil
}

// SetClock troca a fonte de tempo. Apenas para testes.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
