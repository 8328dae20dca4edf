package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the stealthscrape API request model.
type scrapeRequest struct {
	URL          string `json:"url"`
	CSSSelector  string `json:"css_selector,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

// scrapeResponse mirrors both response shapes; Success is absent in
// permissive mode.
type scrapeResponse struct {
	Success  *bool  `json:"success"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
	Error    string `json:"error"`
}

func main() {
	apiURL := os.Getenv("STEALTHSCRAPE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("STEALTHSCRAPE_API_KEY")

	s := server.NewMCPServer(
		"stealthscrape",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	scrapeURLTool := mcp.NewTool("scrape_url",
		mcp.WithDescription("Fetch a page through a stealth headless browser behind a residential proxy, waiting out Cloudflare interstitials. Returns the rendered HTML or markdown."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("css_selector",
			mcp.Description("Optional CSS selector; only matching elements are returned"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'html' (default) or 'markdown'"),
			mcp.Enum("html", "markdown"),
		),
	)

	s.AddTool(scrapeURLTool, handleScrapeURL(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeURL(apiURL, apiKey string) server.ToolHandlerFunc {
	// Navigation plus the full challenge wait can exceed a minute.
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := scrapeRequest{
			URL:          url,
			CSSSelector:  request.GetString("css_selector", ""),
			OutputFormat: request.GetString("output_format", ""),
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/scrape", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		return toolResult(resp.StatusCode, respBody), nil
	}
}

// toolResult turns an API response into MCP tool output.
func toolResult(status int, body []byte) *mcp.CallToolResult {
	var scrapeResp scrapeResponse
	if err := json.Unmarshal(body, &scrapeResp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err))
	}

	if status != http.StatusOK || scrapeResp.Error != "" || (scrapeResp.Success != nil && !*scrapeResp.Success) {
		errMsg := scrapeResp.Error
		if errMsg == "" {
			errMsg = fmt.Sprintf("scrape failed with status %d", status)
		}
		return mcp.NewToolResultError(errMsg)
	}

	if scrapeResp.Markdown != "" {
		return mcp.NewToolResultText(scrapeResp.Markdown)
	}
	return mcp.NewToolResultText(scrapeResp.HTML)
}
