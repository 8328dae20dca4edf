package main

import (
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	text, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestToolResult(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		isError bool
		want    string
	}{
		{"strict success", http.StatusOK, `{"success":true,"html":"<p>hi</p>"}`, false, "<p>hi</p>"},
		{"permissive success", http.StatusOK, `{"html":"<p>hi</p>"}`, false, "<p>hi</p>"},
		{"markdown preferred", http.StatusOK, `{"success":true,"html":"<p>hi</p>","markdown":"hi"}`, false, "hi"},
		{"blocked", http.StatusOK, `{"success":false,"error":"Cloudflare is blocking the request."}`, true, "Cloudflare is blocking the request."},
		{"missing url", http.StatusBadRequest, `{"error":"Missing URL"}`, true, "Missing URL"},
		{"bare 5xx", http.StatusBadGateway, `{}`, true, "scrape failed with status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := toolResult(tt.status, []byte(tt.body))
			assert.Equal(t, tt.isError, r.IsError)
			assert.Equal(t, tt.want, resultText(t, r))
		})
	}
}

func TestToolResult_InvalidJSON(t *testing.T) {
	r := toolResult(http.StatusOK, []byte("<html>"))
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(t, r), "failed to parse response")
}
