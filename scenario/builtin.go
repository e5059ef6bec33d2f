package scenario

// Builtin returns the stock demonstration set, mirroring the classic
// streaming walkthrough: plain streaming, function calling, live
// statistics, error handling, and concurrent streams.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:        "basic-streaming",
			Title:       "Basic Streaming",
			Description: "Stream a chat completion and show the collected response",
			Kind:        KindChat,
			System:      "You are a helpful assistant. Respond in a conversational manner.",
			Prompt:      "Write a short story about a robot learning to paint. Make it about 3 paragraphs.",
			FollowUp:    "Now summarize that story in one sentence.",
			MaxTokens:   500,
		},
		{
			Name:        "function-calling",
			Title:       "Function Calling with Streaming",
			Description: "Offer a function to the model and accumulate the streamed call",
			Kind:        KindFunctionCall,
			Prompt:      "What's the weather like in New York? Please use Celsius.",
			Functions: []FunctionSpec{
				{
					Name:        "get_weather",
					Description: "Get the current weather for a location",
					Parameters: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"location": map[string]any{
								"type":        "string",
								"description": "The city and state, e.g. San Francisco, CA",
							},
							"unit": map[string]any{
								"type":        "string",
								"enum":        []any{"celsius", "fahrenheit"},
								"description": "The temperature unit to use",
							},
						},
						"required": []any{"location"},
					},
				},
			},
		},
		{
			Name:        "real-time-stats",
			Title:       "Real-time Processing",
			Description: "Update word/sentence/character counts while streaming",
			Kind:        KindLiveStats,
			Prompt:      "List the top 5 programming languages and explain why they're popular. Format as a numbered list.",
			MaxTokens:   400,
		},
		{
			Name:        "error-handling",
			Title:       "Error Handling",
			Description: "Request an invalid model to show the classified failure",
			Kind:        KindErrorHandling,
			Model:       "invalid-model-name",
			Prompt:      "Hello",
			Retry:       true,
		},
		{
			Name:        "concurrent-streams",
			Title:       "Concurrent Streams",
			Description: "Run independent streams, each with its own accumulator",
			Kind:        KindConcurrent,
			Prompt:      "Write a haiku about artificial intelligence.",
			Streams:     3,
			MaxTokens:   100,
		},
	}
}
