package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	discordauth "github.com/jamesprial/go-discord-oauth2"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/statestore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Get credentials from environment variables
	clientID := os.Getenv("DISCORD_CLIENT_ID")
	clientSecret := os.Getenv("DISCORD_CLIENT_SECRET")
	redirectURI := os.Getenv("DISCORD_REDIRECT_URI")
	botToken := os.Getenv("DISCORD_BOT_TOKEN")
	redisAddr := os.Getenv("REDIS_ADDR")

	if clientID == "" || clientSecret == "" {
		log.Fatal("DISCORD_CLIENT_ID and DISCORD_CLIENT_SECRET environment variables are required")
	}
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	registry := prometheus.NewRegistry()

	config := &discordauth.Config{
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		RedirectURI:       redirectURI,
		BotToken:          botToken, // Optional: enables FetchAppInfo
		MetricsRegisterer: registry,
		RateLimit:         &discordauth.RateLimitConfig{RequestsPerMinute: 120, Burst: 10},
		Logger:            logger,
	}

	// Share states between instances behind a load balancer
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()

		store, err := statestore.NewRedis(rdb, statestore.RedisOptions{})
		if err != nil {
			log.Fatalf("Failed to create state store: %v", err)
		}
		config.StateStore = store
	}

	client, err := discordauth.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	if botToken != "" {
		app, err := client.FetchAppInfo(context.Background())
		if err != nil {
			log.Printf("Failed to fetch application info: %v", err)
		} else {
			fmt.Printf("Serving application %s (%s)\n", app.Name, app.ID)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		link, _, err := client.GenerateStateLink(r.Context(), discordauth.AuthorizationOptions{
			Scopes: discordauth.ScopeIdentify | discordauth.ScopeGuilds | discordauth.ScopeEmail,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, link, http.StatusFound)
	})
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		handleCallback(w, r, client)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":8080",
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	fmt.Println("Open http://localhost:8080/login to authorize")
	log.Fatal(server.ListenAndServe())
}

func handleCallback(w http.ResponseWriter, r *http.Request, client *discordauth.Client) {
	ctx := r.Context()
	query := r.URL.Query()

	if e := query.Get("error"); e != "" {
		http.Error(w, "authorization denied: "+e, http.StatusForbidden)
		return
	}

	session, err := client.ExchangeCode(ctx, query.Get("code"), query.Get("state"))
	if err != nil {
		var stateErr *pkgerrs.AuthStateError
		if errors.As(err, &stateErr) {
			http.Error(w, "invalid or expired state, please log in again", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	// Revoke once done; this example keeps no sessions
	defer func() {
		if err := session.Revoke(context.WithoutCancel(ctx)); err != nil {
			log.Printf("Failed to revoke session: %v", err)
		}
	}()

	user, err := session.FetchCurrentUser(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	fmt.Fprintf(w, "Hello %s (@%s)\n", user.DisplayName(), user.Username)
	fmt.Fprintf(w, "Account created: %s\n", user.CreatedAt().Format(time.DateOnly))
	fmt.Fprintf(w, "Avatar: %s\n", user.DisplayAvatar().URL)
	if user.Email != "" {
		fmt.Fprintf(w, "Email: %s (verified: %v)\n", user.Email, user.Verified)
	}
	fmt.Fprintf(w, "Token expires: %s\n\n", session.ExpiresAt().Format(time.RFC3339))

	it, err := user.Guilds(ctx, discordauth.GuildsOptions{Limit: 50, WithCounts: true})
	if err != nil {
		fmt.Fprintf(w, "Failed to list guilds: %v\n", err)
		return
	}
	guilds, err := it.Collect(20)
	if err != nil {
		fmt.Fprintf(w, "Failed to list guilds: %v\n", err)
		return
	}

	fmt.Fprintf(w, "First %d guilds:\n", len(guilds))
	for _, g := range guilds {
		owner := ""
		if g.Owner {
			owner = " (owner)"
		}
		members := "?"
		if g.ApproximateMemberCount != nil {
			members = fmt.Sprint(*g.ApproximateMemberCount)
		}
		fmt.Fprintf(w, "  - %s%s, %s members\n", g.Name, owner, members)
	}
}
