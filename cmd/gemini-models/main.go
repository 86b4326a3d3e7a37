// Command gemini-models lists the generative models visible to
// GEMINI_API_KEY and marks the ones that support generateContent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const probePrompt = "Hello! Can you respond with 'API key is working'?"

func main() {
	probe := flag.String("probe", "", "send a test prompt to this model after listing")
	timeout := flag.Duration("timeout", 30*time.Second, "overall request timeout")
	flag.Parse()

	_ = godotenv.Load()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	fmt.Println("Available models:")
	it := client.ListModels(ctx)
	for {
		m, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("failed to list models: %v", err)
		}
		mark := " "
		if slices.Contains(m.SupportedGenerationMethods, "generateContent") {
			mark = "*"
		}
		fmt.Printf("  %s %s (%s)\n", mark, m.Name, m.DisplayName)
	}
	fmt.Println("\n* supports generateContent")

	if *probe == "" {
		return
	}

	name := strings.TrimPrefix(*probe, "models/")
	fmt.Printf("\nProbing %s...\n", name)
	resp, err := client.GenerativeModel(name).GenerateContent(ctx, genai.Text(probePrompt))
	if err != nil {
		log.Fatalf("probe failed: %v", err)
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				fmt.Println(string(t))
			}
		}
	}
}
