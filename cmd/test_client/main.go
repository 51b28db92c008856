package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const sampleSnapshot = "Analyst|/a|Econ|AD5|Commission|Brussels (Belgium)|01/01/2024 - 00:00\n"

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP streamable HTTP endpoint")
	listing := flag.String("run", "", "also call run_listing for this listing code")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "listing-watch-test-client",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: *endpoint}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)
	call(ctx, session, "list_listings", map[string]any{})
	call(ctx, session, "diff_snapshots", map[string]any{
		"previous": sampleSnapshot,
		"latest":   sampleSnapshot + "Engineer|/b|IT|AD6|Council|Vienna (Austria)|02/02/2024 - 00:00\n",
	})

	if *listing != "" {
		call(ctx, session, "run_listing", map[string]any{"code": *listing})
	}

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		log.Fatalf("list tools failed: %v", err)
	}
	for _, tool := range res.Tools {
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
}

func call(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) {
	fmt.Printf("\nTEST: %s\n", name)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		log.Printf("%s failed: %v", name, err)
		return
	}

	printResult(result)
	if result.IsError {
		log.Printf("%s returned a tool error", name)
		return
	}
	fmt.Printf("%s passed\n", name)
}

func printResult(result *mcp.CallToolResult) {
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			fmt.Println(text.Text)
		}
	}
	if result.StructuredContent != nil {
		out, err := json.MarshalIndent(result.StructuredContent, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}
}
