// Command userplan is an operator tool for changing a user's
// subscription tier directly, bypassing the payment flow. Useful for
// support escalations and for un-suspending accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/luxaccount/media-platform/internal/adapter/repo"
	"github.com/luxaccount/media-platform/internal/domain"
	"github.com/luxaccount/media-platform/internal/infra"
)

func main() {
	email := flag.String("email", "", "user email to modify")
	tier := flag.String("tier", "", "target tier: free, premium, enterprise, suspended")
	flag.Parse()

	if *email == "" || *tier == "" {
		fmt.Fprintln(os.Stderr, "usage: userplan -email user@example.com -tier premium")
		os.Exit(2)
	}
	target := domain.SubscriptionTier(*tier)
	switch target {
	case domain.TierFree, domain.TierPremium, domain.TierEnterprise, domain.TierSuspended:
	default:
		fmt.Fprintf(os.Stderr, "unknown tier %q\n", *tier)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv, "userplan")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("userplan: db connection failed")
	}
	defer dbpool.Close()

	users := repo.NewUserRepository(dbpool)
	user, err := users.GetByEmail(ctx, *email)
	if err != nil {
		logger.Fatal().Err(err).Str("email", *email).Msg("userplan: user lookup failed")
	}

	updated, err := users.Update(ctx, user.ID, domain.UserUpdate{Tier: &target})
	if err != nil {
		logger.Fatal().Err(err).Msg("userplan: update failed")
	}
	logger.Info().
		Str("user_id", updated.ID).
		Str("from", string(user.Tier)).
		Str("to", string(updated.Tier)).
		Msg("userplan: tier updated")
}
