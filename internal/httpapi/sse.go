package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const ssePingInterval = 15 * time.Second

// StreamEvents SSE 推送导入/聚合/对比事件；?types=a,b 仅订阅指定类型
func (h *Handler) StreamEvents(c *gin.Context) {
	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(c, http.StatusInternalServerError, "stream not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := c.Request.Context()
	sub := h.hub.Subscribe(ctx, 32, splitTypes(c.Query("types"))...)

	writeSSE(w, "ready", []byte("{}"))
	flusher.Flush()

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeSSE(w, "ping", []byte("{}"))
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			writeSSE(w, evt.Type, b)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, name string, data []byte) {
	_, _ = io.WriteString(w, "event: "+sanitizeSSEName(name)+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = w.Write(data)
	_, _ = io.WriteString(w, "\n\n")
}

func sanitizeSSEName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return "message"
	}
	n = strings.ReplaceAll(n, "\n", "")
	n = strings.ReplaceAll(n, "\r", "")
	return n
}

func splitTypes(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
