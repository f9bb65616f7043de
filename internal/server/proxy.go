package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Headers that describe the hop, not the payload. They are dropped in both
// directions.
var hopHeaders = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"transfer-encoding":   true,
	"upgrade":             true,
	"content-length":      true,
	"content-encoding":    true,
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return header[len("Bearer "):]
	}
	return ""
}

// ProxyMCP forwards the request to the upstream extraction service. It is
// the one surface authenticated by API key instead of the admin session.
func (s *Server) ProxyMCP(c *gin.Context) {
	key := bearerToken(c.Request)
	if key == "" {
		c.Header("WWW-Authenticate", "Bearer")
		fail(c, http.StatusUnauthorized, "missing Authorization header with Bearer token")
		return
	}

	valid, err := s.APIKeys.Validate(c.Request.Context(), key)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !valid {
		c.Header("WWW-Authenticate", "Bearer")
		fail(c, http.StatusUnauthorized, "invalid API key")
		return
	}

	if s.UpstreamURL == "" {
		fail(c, http.StatusBadGateway, "no upstream extraction service configured")
		return
	}

	// the upstream serves under /mcp, so the public path maps straight across
	target := strings.TrimRight(s.UpstreamURL, "/") + "/mcp" + c.Param("path")
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadGateway, "failed to read request body")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, bytes.NewReader(body))
	if err != nil {
		fail(c, http.StatusBadGateway, err.Error())
		return
	}

	for name, values := range c.Request.Header {
		lower := strings.ToLower(name)
		// Accept-Encoding stays with the transport: letting Go negotiate
		// compression means the upstream body arrives already decoded, which
		// has to match the Content-Encoding we drop on the way back.
		if hopHeaders[lower] || lower == "host" || lower == "authorization" || lower == "accept-encoding" {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			fail(c, http.StatusGatewayTimeout, "upstream extraction service timeout")
			return
		}
		fail(c, http.StatusBadGateway, "cannot reach upstream extraction service")
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(c, http.StatusBadGateway, "failed to read upstream response")
		return
	}

	for name, values := range resp.Header {
		if hopHeaders[strings.ToLower(name)] {
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := c.Writer.Write(respBody); err != nil {
		log.Printf("Failed to relay upstream response: %v", err)
	}
}

type upstreamQueueStatus struct {
	TotalPending        int `json:"total_pending"`
	CurrentlyProcessing int `json:"currently_processing"`
}

// QueueStatus polls the upstream extraction queue for the UI activity
// indicator. An unreachable upstream reports an idle queue, not an error
// status, so the indicator degrades quietly.
func (s *Server) QueueStatus(c *gin.Context) {
	idle := gin.H{
		"success":        false,
		"processing":     false,
		"pending_count":  0,
		"active_workers": 0,
	}

	if s.UpstreamURL == "" {
		idle["error"] = "no upstream extraction service configured"
		c.JSON(http.StatusOK, idle)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	target := strings.TrimRight(s.UpstreamURL, "/") + "/queue/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		idle["error"] = err.Error()
		c.JSON(http.StatusOK, idle)
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		idle["error"] = err.Error()
		c.JSON(http.StatusOK, idle)
		return
	}
	defer resp.Body.Close()

	var status upstreamQueueStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		idle["error"] = "invalid queue status response"
		c.JSON(http.StatusOK, idle)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"processing":     status.TotalPending+status.CurrentlyProcessing > 0,
		"pending_count":  status.TotalPending,
		"active_workers": status.CurrentlyProcessing,
	})
}
