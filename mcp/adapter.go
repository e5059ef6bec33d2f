// Package mcp sources function descriptors from Model Context Protocol
// servers. Rivulet only offers the descriptors to the model; tool
// execution stays with the MCP server's owner.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nfujita/rivulet/llm"
)

// Client wraps an MCP client session.
type Client struct {
	mcpClient *sdk.Client
	session   *sdk.ClientSession
}

// NewStdioClient creates an MCP client that communicates via stdio
// with a subprocess.
//
// Example:
//
//	client, err := mcp.NewStdioClient(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	fns, err := client.Functions(ctx)
func NewStdioClient(ctx context.Context, command string, args []string) (*Client, error) {
	cmd := exec.Command(command, args...)
	return NewClient(ctx, &sdk.CommandTransport{Command: cmd})
}

// NewClient creates an MCP client over an arbitrary transport.
func NewClient(ctx context.Context, transport sdk.Transport) (*Client, error) {
	mcpClient := sdk.NewClient(&sdk.Implementation{
		Name:    "rivulet",
		Version: "0.1.0",
	}, nil)

	session, err := mcpClient.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server: %w", err)
	}

	return &Client{
		mcpClient: mcpClient,
		session:   session,
	}, nil
}

// Functions lists the server's tools as function descriptors suitable
// for llm.WithFunctions.
func (c *Client) Functions(ctx context.Context) ([]llm.FunctionDef, error) {
	result, err := c.session.ListTools(ctx, &sdk.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("listing MCP tools: %w", err)
	}

	fns := make([]llm.FunctionDef, 0, len(result.Tools))
	for _, tool := range result.Tools {
		fns = append(fns, llm.FunctionDef{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  inputSchema(tool),
		})
	}

	return fns, nil
}

// Close closes the MCP client connection.
func (c *Client) Close() error {
	return c.session.Close()
}

// inputSchema converts an MCP tool's input schema into raw JSON,
// falling back to a bare object schema if it cannot be marshaled.
func inputSchema(tool *sdk.Tool) json.RawMessage {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil || len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}

// FunctionsFromServer is a convenience function to fetch descriptors
// from an MCP server in one call.
//
// Example:
//
//	fns, cleanup, err := mcp.FunctionsFromServer(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
func FunctionsFromServer(ctx context.Context, command string, args []string) ([]llm.FunctionDef, func() error, error) {
	client, err := NewStdioClient(ctx, command, args)
	if err != nil {
		return nil, nil, err
	}

	fns, err := client.Functions(ctx)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return fns, client.Close, nil
}
