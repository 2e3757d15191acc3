package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/models"
	"github.com/destek-ai/destek/internal/resources"
	"github.com/destek-ai/destek/internal/storage"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := s.storage.RegisterUser(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			s.respondError(w, http.StatusConflict, "username already taken")
			return
		}
		s.logger.Error("register failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.storage.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	session, err := s.storage.CreateSession(r.Context(), req.UserID)
	if err != nil {
		s.logger.Error("create session failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	s.respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	sessions, err := s.storage.ListSessions(r.Context(), userID)
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}
	if sessions == nil {
		sessions = []*models.Session{}
	}
	s.respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages, err := s.storage.GetSessionMessages(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			s.respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("get session messages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "could not load messages")
		return
	}
	if messages == nil {
		messages = []*models.StoredMessage{}
	}
	s.respondJSON(w, http.StatusOK, messages)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.SessionID != "" {
		if _, err := s.storage.GetSession(r.Context(), req.SessionID); err != nil {
			if errors.Is(err, storage.ErrSessionNotFound) {
				s.respondError(w, http.StatusNotFound, "session not found")
				return
			}
			s.logger.Error("session lookup failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "session lookup failed")
			return
		}
	}

	resp, err := s.responder.Respond(r.Context(), req)
	if err != nil {
		if errors.Is(err, resources.ErrNotLoaded) {
			s.respondError(w, http.StatusServiceUnavailable, "vector store not loaded; run ingest and build first")
			return
		}
		s.logger.Error("chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	if req.SessionID != "" {
		s.persistTurn(r, req.SessionID, req.Query, resp.Reply)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// persistTurn stores the user query and the reply. Persistence failure does
// not fail the chat response that was already produced.
func (s *Server) persistTurn(r *http.Request, sessionID, query, reply string) {
	if _, err := s.storage.SaveMessage(r.Context(), sessionID, models.RoleUser, query); err != nil {
		s.logger.Error("failed to persist user message", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if _, err := s.storage.SaveMessage(r.Context(), sessionID, models.RoleModel, reply); err != nil {
		s.logger.Error("failed to persist reply", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *Server) handleSourceSearch(w http.ResponseWriter, r *http.Request) {
	if s.keyword == nil {
		s.respondError(w, http.StatusServiceUnavailable, "keyword index not available")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	results, err := s.keyword.Search(r.Context(), query, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"query": query, "results": results})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := s.storage.CountUsers(ctx)
	if err != nil {
		s.logger.Error("status: count users failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "status failed")
		return
	}
	sessions, err := s.storage.CountSessions(ctx)
	if err != nil {
		s.logger.Error("status: count sessions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "status failed")
		return
	}
	messages, err := s.storage.CountMessages(ctx)
	if err != nil {
		s.logger.Error("status: count messages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "status failed")
		return
	}

	resp := map[string]any{
		"users":        users,
		"sessions":     sessions,
		"messages":     messages,
		"store_loaded": s.provider.Loaded(),
	}
	if store, err := s.provider.Store(); err == nil {
		resp["vector_index_size"] = store.Size()
		resp["embedding_dimensions"] = store.Dimensions()
	}
	if s.keyword != nil {
		if count, err := s.keyword.DocCount(); err == nil {
			resp["keyword_index_docs"] = count
		}
	}
	diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.ChunksDir,
		s.config.Storage.VectorIndexPath,
		s.config.Storage.ChunkMapPath,
		s.config.Storage.KeywordIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]any{
		"chunk_size_words":    s.config.Chunking.SizeWords,
		"chunk_overlap_words": s.config.Chunking.OverlapWords,
		"top_k":               s.config.Chat.TopK,
		"llm_model":           s.config.LLM.Model,
		"embedding_model":     s.config.Embedding.Model,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.provider.Loaded() {
		s.respondError(w, http.StatusServiceUnavailable, "vector store not loaded")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
