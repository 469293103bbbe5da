package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Airpyk-98/Python-Image-Gen/internal/runner"
	"github.com/Airpyk-98/Python-Image-Gen/internal/store"
)

func errNoImage() error {
	return fmt.Errorf("backend: %w", runner.ErrNoImage)
}

func errExec() error {
	return errors.New("runner: execução falhou (500): NameError: name 'boom' is not defined")
}

const testBaseURL = "http://img.example.com"

type stubRunner struct {
	output []byte
	err    error
}

func (s stubRunner) Execute(ctx context.Context, code string) ([]byte, error) {
	return s.output, s.err
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 12), G: uint8(y * 12), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func newRouter(t *testing.T, r stubRunner) (*chi.Mux, *store.DiskStore) {
	t.Helper()
	st, err := store.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	handler := NewHandler(NewService(r, st, 100*1024, testBaseURL, nil))

	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)
	return mux, st
}

func requestBody(t *testing.T, body any) *bytes.Reader {
	t.Helper()
	if body == nil {
		return bytes.NewReader(nil)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(raw)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("corpo de erro ilegível: %v", err)
	}
	return payload.Error.Code
}

func TestExecutePlotSuccessAndRetrieve(t *testing.T) {
	mux, _ := newRouter(t, stubRunner{output: smallPNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/execute-plot",
		requestBody(t, map[string]string{"code": "plt.plot([1,2,3])"}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, esperado 200: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("resposta ilegível: %v", err)
	}
	prefix := testBaseURL + "/images/"
	if !strings.HasPrefix(payload.URL, prefix) {
		t.Fatalf("url %q fora do padrão %q", payload.URL, prefix)
	}

	// A imagem recém-gerada precisa ser recuperável pela própria rota.
	name := strings.TrimPrefix(payload.URL, prefix)
	getReq := httptest.NewRequest(http.MethodGet, "/images/"+name, nil)
	getRec := httptest.NewRecorder()
	mux.ServeHTTP(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("retrieve status %d, esperado 200", getRec.Code)
	}
	if ct := getRec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("content-type %q, esperado image/jpeg", ct)
	}
	if _, format, err := image.Decode(bytes.NewReader(getRec.Body.Bytes())); err != nil || format != "jpeg" {
		t.Fatalf("corpo servido não é jpeg: %v", err)
	}
}

func TestExecutePlotErrors(t *testing.T) {
	tests := []struct {
		name     string
		runner   stubRunner
		body     any
		status   int
		code     string
	}{
		{
			name:   "sem imagem produzida",
			runner: stubRunner{err: errNoImage()},
			body:   map[string]string{"code": "x = 1"},
			status: http.StatusBadRequest,
			code:   "NO_IMAGE",
		},
		{
			name:   "falha de execução",
			runner: stubRunner{err: errExec()},
			body:   map[string]string{"code": "boom()"},
			status: http.StatusInternalServerError,
			code:   "EXECUTION",
		},
		{
			name:   "bytes não decodificáveis",
			runner: stubRunner{output: []byte("lixo binário")},
			body:   map[string]string{"code": "plt.plot()"},
			status: http.StatusInternalServerError,
			code:   "COMPRESSION",
		},
		{
			name:   "corpo sem code",
			runner: stubRunner{output: nil},
			body:   map[string]string{},
			status: http.StatusBadRequest,
			code:   "INVALID_BODY",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mux, _ := newRouter(t, tc.runner)

			req := httptest.NewRequest(http.MethodPost, "/execute-plot", requestBody(t, tc.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status %d, esperado %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tc.code {
				t.Fatalf("código %q, esperado %q", got, tc.code)
			}
		})
	}
}

func TestExecutePlotSurfacesCause(t *testing.T) {
	mux, _ := newRouter(t, stubRunner{err: errExec()})

	req := httptest.NewRequest(http.MethodPost, "/execute-plot",
		requestBody(t, map[string]string{"code": "boom()"}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "NameError") {
		t.Fatalf("mensagem da causa não repassada: %s", rec.Body.String())
	}
}

func TestGetImageNotFound(t *testing.T) {
	mux, _ := newRouter(t, stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/images/inexistente.jpg", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, esperado 404", rec.Code)
	}
	if got := errorCode(t, rec); got != "NOT_FOUND" {
		t.Fatalf("código %q, esperado NOT_FOUND", got)
	}
}
