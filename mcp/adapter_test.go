package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherArgs struct {
	Location string `json:"location" jsonschema:"the city to look up"`
}

// newTestServer starts an in-memory MCP server exposing one tool and
// returns the client-side transport.
func newTestServer(t *testing.T) sdk.Transport {
	t.Helper()

	server := sdk.NewServer(&sdk.Implementation{
		Name:    "test-server",
		Version: "0.1.0",
	}, nil)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a location",
	}, func(ctx context.Context, req *sdk.CallToolRequest, args weatherArgs) (*sdk.CallToolResult, any, error) {
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: "sunny"}},
		}, nil, nil
	})

	serverTransport, clientTransport := sdk.NewInMemoryTransports()
	session, err := server.Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return clientTransport
}

func TestFunctions(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(ctx, newTestServer(t))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	fns, err := client.Functions(ctx)
	require.NoError(t, err)
	require.Len(t, fns, 1)

	fn := fns[0]
	assert.Equal(t, "get_weather", fn.Name)
	assert.Equal(t, "Get the current weather for a location", fn.Description)

	// The tool's input schema carries over as the parameter descriptor.
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(fn.Parameters, &parsed))
	props, ok := parsed["properties"].(map[string]any)
	require.True(t, ok, "schema must contain properties")
	assert.Contains(t, props, "location")
}

func TestInputSchemaFallback(t *testing.T) {
	raw := inputSchema(&sdk.Tool{Name: "bare"})
	assert.JSONEq(t, `{"type":"object"}`, string(raw))
}
