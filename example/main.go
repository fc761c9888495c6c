// Command example wires the three worked data sources into a single muse
// plan: fetch a user profile over HTTP, its row of preferences from
// Postgres, and a cached session flag from Redis, then merge the three into
// one response. It exists to demonstrate RunSync end to end, not as a
// deployable service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	goredis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samsarahq/muse"
	"github.com/samsarahq/muse/internal/logger"
	musehttp "github.com/samsarahq/muse/sources/http"
	museredis "github.com/samsarahq/muse/sources/redis"
	musesql "github.com/samsarahq/muse/sources/sql"
)

func main() {
	apiBase := flag.String("api-base", "https://api.example.com", "base URL for the profile API")
	apiRPS := flag.Float64("api-rps", 20, "rate limit for the profile API, requests per second")
	pgURL := flag.String("postgres-url", os.Getenv("MUSE_POSTGRES_URL"), "postgres connection string")
	redisAddr := flag.String("redis-addr", "localhost:6379", "redis address")
	userID := flag.Int64("user-id", 1, "user id to look up")
	flag.Parse()

	ctx := context.Background()
	log := logger.New()

	httpClient := musehttp.NewClient(*apiBase, *apiRPS, int(*apiRPS))

	pgPool, err := pgxpool.New(ctx, *pgURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connecting to postgres:", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: *redisAddr})
	defer redisClient.Close()

	plan := buildProfilePlan(httpClient, pgPool, redisClient, *userID)

	opts := &muse.Options{Logger: log}
	value, err := muse.RunSync(ctx, plan, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "evaluating plan:", err)
		os.Exit(1)
	}
	fmt.Printf("%+v\n", value)
}

// buildProfilePlan describes, declaratively, the three independent fetches
// needed to answer one profile request and how to merge them. The
// evaluator discovers that the HTTP, SQL and Redis fetches all belong to
// the same level (none depends on another) and runs them concurrently.
func buildProfilePlan(httpClient *musehttp.Client, pgPool *pgxpool.Pool, redisClient *goredis.Client, userID int64) *muse.Muse {
	profile := muse.FromSource(&musehttp.Request{
		Client: httpClient,
		URL:    fmt.Sprintf("/users/%d", userID),
	})
	preferences := muse.FromSource(&musesql.Row{
		Pool:  pgPool,
		Table: "preferences",
		ID:    userID,
	})
	session := muse.FromSource(&museredis.Key{
		Client: redisClient,
		Name:   fmt.Sprintf("session:%d", userID),
	})

	return muse.Map(func(v interface{}) (interface{}, error) {
		values := v.([]interface{})
		return map[string]interface{}{
			"profile":     values[0],
			"preferences": values[1],
			"session":     values[2],
		}, nil
	}, profile, preferences, session)
}
