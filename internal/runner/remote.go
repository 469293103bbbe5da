package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteRunner encapsula chamadas ao backend HTTP de execução de código.
// O protocolo é simples: POST JSON {"code": ...}; 200 devolve os bytes
// brutos da imagem no corpo; 204 (ou corpo vazio) significa que o código
// rodou sem produzir imagem; qualquer outro status é falha de execução com
// o texto do backend repassado ao chamador.
type RemoteRunner struct {
	httpClient *http.Client
	baseURL    string
}

// Config descreve os parâmetros do backend de execução.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewRemote cria um cliente pronto para enviar código ao backend.
func NewRemote(cfg Config) (*RemoteRunner, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("runner: url do backend obrigatória")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &RemoteRunner{
		httpClient: client,
		baseURL:    strings.TrimRight(base, "/"),
	}, nil
}

type executeRequest struct {
	Code string `json:"code"`
}

// Execute envia o código e devolve os bytes brutos produzidos.
func (r *RemoteRunner) Execute(ctx context.Context, code string) ([]byte, error) {
	body, err := json.Marshal(executeRequest{Code: code})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runner: chamada ao backend: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, ErrNoImage
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("runner: ler resposta: %w", err)
		}
		if len(data) == 0 {
			return nil, ErrNoImage
		}
		return data, nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("runner: execução falhou (%d): %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}

var _ Runner = (*RemoteRunner)(nil)
