// Package images orquestra a geração, compressão, persistência e entrega
// das imagens de plotagem.
package images

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Airpyk-98/Python-Image-Gen/internal/compress"
	"github.com/Airpyk-98/Python-Image-Gen/internal/metrics"
	"github.com/Airpyk-98/Python-Image-Gen/internal/runner"
	"github.com/Airpyk-98/Python-Image-Gen/internal/store"
)

const mediaType = "image/jpeg"

// Service liga runner, compressor e store.
type Service struct {
	runner    runner.Runner
	store     store.Store
	maxBytes  int
	baseURL   string
	collector *metrics.Collector
}

// NewService monta o serviço com as dependências já construídas.
// baseURL deve ser absoluta e sem barra final; collector pode ser nil.
func NewService(r runner.Runner, st store.Store, maxBytes int, baseURL string, collector *metrics.Collector) *Service {
	return &Service{
		runner:    r,
		store:     st,
		maxBytes:  maxBytes,
		baseURL:   baseURL,
		collector: collector,
	}
}

// Produce executa o código no backend, comprime o resultado para JPEG e o
// persiste, devolvendo a URL pública. Erros sobem sem retry: qualquer etapa
// que falhe derruba a requisição inteira.
func (s *Service) Produce(ctx context.Context, code string) (string, error) {
	raw, err := s.runner.Execute(ctx, code)
	if err != nil {
		return "", err
	}

	jpegBytes, err := compress.ToJPEG(raw, s.maxBytes)
	if err != nil {
		return "", err
	}
	if s.collector != nil {
		s.collector.CompressedBytes.Observe(float64(len(jpegBytes)))
	}
	if len(jpegBytes) > s.maxBytes {
		// Melhor esforço documentado: na qualidade mínima o buffer é
		// armazenado mesmo acima do teto.
		log.Ctx(ctx).Warn().Int("bytes", len(jpegBytes)).Int("max_bytes", s.maxBytes).
			Msg("imagem acima do teto mesmo na qualidade mínima")
	}

	name, err := s.store.Write(jpegBytes)
	if err != nil {
		return "", err
	}

	log.Ctx(ctx).Info().Str("file", name).Int("bytes", len(jpegBytes)).
		Msg("imagem gerada e persistida")

	return fmt.Sprintf("%s/images/%s", s.baseURL, name), nil
}

// Retrieve devolve os bytes da imagem e o media type fixo.
func (s *Service) Retrieve(ctx context.Context, name string) ([]byte, string, error) {
	data, err := s.store.Read(name)
	if err != nil {
		return nil, "", err
	}
	return data, mediaType, nil
}
