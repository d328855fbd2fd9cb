package config

import (
	"os"
	"strconv"
)

// TokenPolicy holds the token-economy constants. The defaults are a
// compatibility contract with the mobile/web clients; env overrides exist
// for staging experiments only.
type TokenPolicy struct {
	InitialAllocation int // tokens granted once at wallet creation
	SessionCost       int // debited from the learner on session confirmation
	SessionReward     int // credited to the mentor on session completion
	MinimumBalance    int // required to book a session
}

func DefaultTokenPolicy() TokenPolicy {
	return TokenPolicy{
		InitialAllocation: 20,
		SessionCost:       10,
		SessionReward:     10,
		MinimumBalance:    10,
	}
}

// LoadTokenPolicy returns the default policy with any TOKEN_* env
// overrides applied.
func LoadTokenPolicy() TokenPolicy {
	p := DefaultTokenPolicy()
	p.InitialAllocation = envInt("TOKEN_INITIAL_ALLOCATION", p.InitialAllocation)
	p.SessionCost = envInt("TOKEN_SESSION_COST", p.SessionCost)
	p.SessionReward = envInt("TOKEN_SESSION_REWARD", p.SessionReward)
	p.MinimumBalance = envInt("TOKEN_MINIMUM_BALANCE", p.MinimumBalance)
	return p
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
