// Command smoke exercises a running server by hand: it creates a
// programmer with a random nickname, follows the Location header to fetch
// it, then lists the collection, printing every response.
//
//	BASE_URL=http://localhost:8080 go run ./cmd/smoke
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/sakif/programmer-battle/internal/apiclient"
	"github.com/sakif/programmer-battle/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := apiclient.NewClient(cfg.BaseURL, &http.Client{Timeout: 10 * time.Second})
	if err := run(client); err != nil {
		logger.Error("smoke run failed",
			slog.String("baseURL", cfg.BaseURL),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
}

func run(client *apiclient.Client) error {
	nickname := fmt.Sprintf("ObjectOrienter%d", rand.IntN(1000))

	// 1) Create a programmer resource
	resp, err := client.Post("/api/programmers", map[string]any{
		"nickname":     nickname,
		"avatarNumber": 5,
		"tagLine":      "a test dev!",
	})
	if err != nil {
		return err
	}
	show(resp)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create returned %s", resp.Status)
	}

	// 2) GET the programmer resource
	resp, err = client.Get(resp.Header.Get("Location"))
	if err != nil {
		return err
	}
	show(resp)

	// 3) GET the collection of programmers
	resp, err = client.Get("/api/programmers")
	if err != nil {
		return err
	}
	show(resp)

	return nil
}

func show(resp *apiclient.Response) {
	apiclient.DebugResponse(os.Stdout, resp)
	fmt.Println()
}
