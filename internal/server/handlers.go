package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/comigor/lifelink-go/internal/auth"
	"github.com/comigor/lifelink-go/internal/history"
	"github.com/comigor/lifelink-go/internal/intake"
	"github.com/comigor/lifelink-go/internal/journal"
	"github.com/comigor/lifelink-go/internal/logger"
	"github.com/comigor/lifelink-go/internal/sanitize"
	"github.com/comigor/lifelink-go/internal/view"
)

var errBadBody = errors.New("invalid request body")

type statusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type messagesBody struct {
	Messages []history.Record `json:"messages"`
	Count    int              `json:"count"`
	Capacity int              `json:"capacity"`
}

type clearBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ts := s.now().UTC().Format(history.TimestampLayout)
	if s.lifecycle != nil && !s.lifecycle.Serving() {
		writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "unavailable", Timestamp: ts})
		return
	}
	writeJSON(w, http.StatusOK, healthBody{Status: "healthy", Timestamp: ts})
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	message, err := s.messageField(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, statusBody{Status: "error", Message: "Request body too large"})
			return
		}
		logger.L.Warn("rejected message body", "ip", sanitize.Sanitize(clientIP(r)), "error", sanitize.Sanitize(err))
		writeJSON(w, http.StatusBadRequest, statusBody{Status: "error", Message: "Invalid request body"})
		return
	}

	if _, err := s.intake.Submit(r.Context(), intake.Input{RemoteIP: clientIP(r), Message: message}); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusBody{Status: "error", Message: "Failed to process message"})
		return
	}
	writeJSON(w, http.StatusOK, statusBody{Status: "success", Message: "Message received and logged"})
}

// messageField extracts the optional "message" field from a JSON or form
// body. A nil result means the field is absent.
func (s *Server) messageField(w http.ResponseWriter, r *http.Request) (any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	defer r.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(s.maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		if vals, ok := r.PostForm["message"]; ok && len(vals) > 0 {
			return vals[0], nil
		}
		return nil, nil
	case "", "application/json":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, errors.Join(errBadBody, err)
		}
		return payload["message"], nil
	default:
		// bodies of other types carry no message field
		_, _ = io.Copy(io.Discard, r.Body)
		return nil, nil
	}
}

func (s *Server) readMessages(w http.ResponseWriter, r *http.Request) {
	records := s.store.List()

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, messagesBody{
			Messages: records,
			Count:    len(records),
			Capacity: s.store.Capacity(),
		})
		return
	}

	var buf bytes.Buffer
	page := view.Page{Title: "Message Logs", Capacity: s.store.Capacity(), Records: records}
	if err := view.Messages(page).Render(r.Context(), &buf); err != nil {
		logger.L.Error("render message list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusBody{Status: "error", Message: "Failed to read messages"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type acceptEntry struct {
	mediaType string
	q         float64
}

// wantsJSON is true for ?format=json or when the Accept header ranks
// application/json above text/html. Entries with q=0 are refused types and
// equal weights go to whichever is listed first.
func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	entries := lo.FilterMap(strings.Split(r.Header.Get("Accept"), ","), func(part string, _ int) (acceptEntry, bool) {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || (mt != "application/json" && mt != "text/html") {
			return acceptEntry{}, false
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if q, err = strconv.ParseFloat(raw, 64); err != nil {
				return acceptEntry{}, false
			}
		}
		return acceptEntry{mediaType: mt, q: q}, q > 0
	})
	best := lo.MaxBy(entries, func(a, b acceptEntry) bool { return a.q > b.q })
	return best.mediaType == "application/json"
}

func (s *Server) clearMessages(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()

	user := sanitize.Sanitize(auth.User(r.Context()))
	ip := sanitize.Sanitize(clientIP(r))
	s.journal.Record(journal.KindAdmin, "Messages cleared by "+user+" from "+ip)
	logger.L.Info("message store cleared", "user", user, "ip", ip)

	writeJSON(w, http.StatusOK, clearBody{Success: true, Message: "Message store cleared"})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, statusBody{Status: "error", Message: "Route not found"})
}
