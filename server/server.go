package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"studychat/internal/models"
	"studychat/internal/types"
	"studychat/pkg/extract"
	"studychat/pkg/llm"
	"studychat/pkg/pipeline"
	"studychat/pkg/retriever"
)

const maxUploadSize = 10 << 20 // 10MB

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Server exposes the RAG pipeline over HTTP: document upload, chat, and a
// WebSocket chat variant. All request handling is synchronous.
type Server struct {
	pipeline  *pipeline.Pipeline
	retriever *retriever.Retriever
	synth     *llm.Synthesizer
	store     types.VectorStore
	topK      int
}

func New(p *pipeline.Pipeline, r *retriever.Retriever, s *llm.Synthesizer, store types.VectorStore, topK int) *Server {
	if topK <= 0 {
		topK = 1
	}
	return &Server{
		pipeline:  p,
		retriever: r,
		synth:     s,
		store:     store,
		topK:      topK,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	count, err := s.store.Count(r.Context())
	if err != nil {
		log.Printf("collection count failed: %v", err)
		count = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "studychat API is running",
		"chunks":  count,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type chatRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Language == "" {
		req.Language = string(llm.LangPolish)
	}

	answer, status, err := s.chat(r.Context(), req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// chat runs the retrieval and synthesis path shared by the HTTP and
// WebSocket endpoints. Retrieval failures are hard errors; generation
// failures surface as an apology inside a normal answer.
func (s *Server) chat(ctx context.Context, req chatRequest) (*models.Answer, int, error) {
	lang := llm.Language(req.Language)
	if !lang.Valid() {
		return nil, http.StatusBadRequest, errors.New("Language must be either 'pl' or 'en'")
	}

	chunks, err := s.retriever.Retrieve(ctx, req.Query, s.topK)
	if err != nil {
		log.Printf("retrieval failed: %v", err)
		return nil, http.StatusInternalServerError, fmt.Errorf("Error generating answer: %v", err)
	}

	if len(chunks) == 0 {
		return &models.Answer{
			Text:    llm.NoDocuments(lang),
			Sources: []string{},
		}, http.StatusOK, nil
	}

	contexts := make([]string, len(chunks))
	for i, c := range chunks {
		contexts[i] = c.Text
	}

	return &models.Answer{
		Text:    s.synth.Synthesize(ctx, req.Query, contexts, lang),
		Sources: contexts,
	}, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	docType, ok := extract.TypeFromContentType(contentType)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"Unsupported file type. Allowed types: %s",
			strings.Join(extract.AllowedContentTypes(), ", ")))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	uploadID := uuid.NewString()
	log.Printf("upload %s: %s (%s, %d bytes)", uploadID, header.Filename, contentType, len(content))

	count, err := s.pipeline.Ingest(r.Context(), content, docType, header.Filename)
	switch {
	case errors.Is(err, types.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "No text content could be extracted from the document")
		return
	case errors.Is(err, types.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("upload %s failed: %v", uploadID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing document: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Document processed successfully. %d chunks added to database.", count),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("error reading message: %v", err)
			}
			return
		}
		if req.Language == "" {
			req.Language = string(llm.LangPolish)
		}

		answer, _, err := s.chat(r.Context(), req)
		if err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}
		if err := conn.WriteJSON(answer); err != nil {
			log.Printf("error sending message: %v", err)
			return
		}
	}
}
