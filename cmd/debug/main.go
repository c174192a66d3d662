package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	discordauth "github.com/jamesprial/go-discord-oauth2"
)

func main() {
	scopeFlag := flag.String("scopes", "identify applications.commands.update", "space separated scopes to request")
	keep := flag.Bool("keep", false, "do not revoke the token on exit")
	flag.Parse()

	// Get credentials from environment variables
	clientID := os.Getenv("DISCORD_CLIENT_ID")
	clientSecret := os.Getenv("DISCORD_CLIENT_SECRET")
	redirectURI := os.Getenv("DISCORD_REDIRECT_URI")

	if clientID == "" || clientSecret == "" {
		log.Fatal("DISCORD_CLIENT_ID and DISCORD_CLIENT_SECRET environment variables are required")
	}
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	scopes, err := discordauth.ParseScopeString(*scopeFlag)
	if err != nil {
		log.Fatalf("Invalid scopes: %v", err)
	}

	// Route structured logs to stdout with debug level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := discordauth.NewClient(&discordauth.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	link, err := client.AuthorizationURL(discordauth.AuthorizationOptions{Scopes: scopes})
	if err != nil {
		log.Fatalf("Failed to build authorization URL: %v", err)
	}
	fmt.Println("=== Authorization URL ===")
	fmt.Println(link)

	// The client credentials grant needs no user and shows what the
	// application owner's token looks like.
	ctx := context.Background()
	token, err := client.ClientCredentials(ctx, scopes)
	if err != nil {
		log.Fatalf("Client credentials grant failed: %v", err)
	}

	fmt.Println("\n=== Client Credentials Token ===")
	fmt.Printf("Type:    %s\n", token.TokenType)
	fmt.Printf("Token:   %s...\n", token.AccessToken[:min(8, len(token.AccessToken))])
	fmt.Printf("Expires: %s\n", token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Scope:   %s\n", token.Scope)
	if unknown := unknownScopes(token); len(unknown) > 0 {
		fmt.Printf("Unknown scopes granted: %s\n", strings.Join(unknown, ", "))
	}

	if *keep {
		return
	}
	if err := client.RevokeToken(ctx, discordauth.RevokeRequest{Token: token}); err != nil {
		log.Fatalf("Failed to revoke token: %v", err)
	}
	fmt.Println("\nToken revoked.")
}

// unknownScopes lists granted scope names this package has no constant for.
func unknownScopes(token *discordauth.AccessToken) []string {
	known := make(map[string]bool)
	for _, name := range token.Scopes.APINames() {
		known[name] = true
	}

	var unknown []string
	for _, name := range strings.Fields(token.Scope) {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
