package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// sseWriter frames server-sent events onto an echo response.
type sseWriter struct {
	resp *echo.Response
}

func newSSEWriter(resp *echo.Response) *sseWriter {
	return &sseWriter{resp: resp}
}

func (w *sseWriter) start() {
	h := w.resp.Header()
	h.Set(echo.HeaderContentType, "text/event-stream; charset=utf-8")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set(echo.HeaderConnection, "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.resp.WriteHeader(http.StatusOK)
	w.resp.Flush()
}

func (w *sseWriter) event(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(w.resp, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	w.resp.Flush()
	return nil
}

func (w *sseWriter) comment(text string) error {
	if _, err := fmt.Fprintf(w.resp, ": %s\n\n", text); err != nil {
		return err
	}
	w.resp.Flush()
	return nil
}
