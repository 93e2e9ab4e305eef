package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/magroup/magnus/internal/auth"
	"github.com/magroup/magnus/internal/chat"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *Dashboard) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, ok := d.auth.Login(req.Username, req.Password)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	auth.SetCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Dashboard) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, ok := d.auth.LoginAdmin(req.Password)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	auth.SetCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Dashboard) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		d.auth.Logout(cookie.Value)
	}
	auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *Dashboard) handleKBStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.kb.Stats())
}

func (d *Dashboard) handleKBRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	docs, err := d.kb.Refresh(r.Context(), nil)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"document_count": len(docs),
		"took_ms":        time.Since(start).Milliseconds(),
	})
}

func (d *Dashboard) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	export, err := d.engine.ExportTranscript(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		"attachment; filename=chat_export_"+time.Now().Format("20060102_150405")+".json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(export)
}

func (d *Dashboard) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	export, err := d.engine.ExportTranscript(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	page, err := chat.RenderTranscriptHTML(export)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// documentInfo is one knowledge base entry in the admin listing.
type documentInfo struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Size     int    `json:"size"`
}

func (d *Dashboard) handleAdminDocuments(w http.ResponseWriter, r *http.Request) {
	docs, loadedAt := d.kb.Snapshot()

	infos := make([]documentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, documentInfo{
			Name:     doc.Name,
			Priority: doc.Priority,
			Size:     len(doc.Text),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded_at": loadedAt,
		"documents": infos,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
