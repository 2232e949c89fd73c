//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/paperchat/paperchat/internal/api/handlers"
	"github.com/paperchat/paperchat/internal/openai"
	"github.com/paperchat/paperchat/internal/parser"
	"github.com/paperchat/paperchat/internal/repository"
	"github.com/paperchat/paperchat/internal/server"
	"github.com/paperchat/paperchat/internal/service"
	"github.com/paperchat/paperchat/internal/testutil"
)

const stubQuizJSON = `{
	"questions": [
		{
			"question": "What topic does the document cover?",
			"options": ["A) Thermodynamics", "B) Optics", "C) Acoustics", "D) Mechanics"],
			"answer": "A) Thermodynamics",
			"explanation": "The provided text is about thermodynamics."
		},
		{
			"question": "What does the second law concern?",
			"options": ["A) Entropy", "B) Momentum", "C) Charge", "D) Mass"],
			"answer": "A) Entropy",
			"explanation": "The text states the second law concerns entropy."
		}
	]
}`

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	ParserStub   *httptest.Server
	ModelStub    *httptest.Server
	HTTPClient   *http.Client

	// ParserPages is what the parser stub returns for every request.
	ParserPages []parser.Page
}

// SetupE2EEnv creates a full E2E environment: a pgvector container, stub
// parser and model servers, and an in-process HTTP server wired exactly
// like the serve command.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		ParserPages: []parser.Page{
			{Text: "Thermodynamics studies heat and energy transfer.", PageLabel: "1"},
			{Text: "The second law concerns entropy and irreversibility.", PageLabel: "2"},
		},
	}

	env.ParserStub = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]parser.Page{"pages": env.ParserPages})
	}))

	env.ModelStub = httptest.NewServer(http.HandlerFunc(stubModelHandler))

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	env.ServerURL, env.ServerCloser = startServer(t, pool, env.ParserStub.URL, env.ModelStub.URL, port)

	return env
}

// stubModelHandler emulates the embeddings and chat-completions endpoints.
// Every text embeds to the same unit vector, so any stored chunk matches
// any query with similarity 1.
func stubModelHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/embeddings"):
		embedding := make([]float32, 384)
		embedding[0] = 1
		json.NewEncoder(w).Encode(openaisdk.EmbeddingResponse{
			Data: []openaisdk.Embedding{{Embedding: embedding, Index: 0, Object: "embedding"}},
		})

	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		var req openaisdk.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		content := "The document covers thermodynamics [Source 1]."
		if req.ResponseFormat != nil && req.ResponseFormat.Type == openaisdk.ChatCompletionResponseFormatTypeJSONObject {
			content = stubQuizJSON
		}

		json.NewEncoder(w).Encode(openaisdk.ChatCompletionResponse{
			Choices: []openaisdk.ChatCompletionChoice{
				{Message: openaisdk.ChatCompletionMessage{Role: "assistant", Content: content}},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.ModelStub != nil {
		e.ModelStub.Close()
	}
	if e.ParserStub != nil {
		e.ParserStub.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// UploadPDF posts a multipart PDF to /upload and decodes the response.
func (e *E2ETestEnv) UploadPDF(filename string, content []byte) (map[string]interface{}, int, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, 0, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, 0, err
	}
	if err := writer.Close(); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+"/upload", &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return e.do(req)
}

// Post sends a JSON body to the given path and decodes the response.
func (e *E2ETestEnv) Post(path string, body interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return e.do(req)
}

func (e *E2ETestEnv) do(req *http.Request) (map[string]interface{}, int, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("invalid JSON response (HTTP %d): %s", resp.StatusCode, payload)
	}

	return decoded, resp.StatusCode, nil
}

// startServer wires the full stack against the stub upstreams and serves it.
func startServer(t *testing.T, pool *pgxpool.Pool, parserURL, modelURL string, port int) (string, func()) {
	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)

	embeddingGateway := service.NewEmbeddingGateway(func() (service.EmbeddingClient, error) {
		return openai.NewClientWithConfig(openai.Config{
			APIKey:  "test-key",
			BaseURL: modelURL,
		}), nil
	})

	chatClient := openai.NewChatClientWithBaseURL("test-key", "gpt-4o-mini", modelURL)
	parserClient := parser.NewClient(parserURL, "")

	ingestionSvc := service.NewIngestionService(documentRepo, chunkRepo, parserClient, embeddingGateway)
	retrieverSvc := service.NewRetrieverService(embeddingGateway, chunkRepo)
	chatSvc := service.NewChatService(retrieverSvc, chatClient)
	quizSvc := service.NewQuizService(chunkRepo, chatClient)

	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		UploadHandler:  handlers.NewUploadHandler(ingestionSvc),
		ChatHandler:    handlers.NewChatHandler(chatSvc),
		QuizHandler:    handlers.NewQuizHandler(quizSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
