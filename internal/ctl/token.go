package ctl

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"meloon/internal/auth"
)

type tokenCmd struct {
	env
	ttl time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue an API bearer token for an owner" }
func (*tokenCmd) Usage() string {
	return `token -owner <id> [-ttl <duration>]

  Signs a token with JWT_SECRET and JWT_ISSUER and prints it.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	c.ownerFlag(f)
	f.DurationVar(&c.ttl, "ttl", c.cfg.JWTTTL, "token lifetime")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.requireOwner() {
		return subcommands.ExitUsageError
	}
	if len(c.cfg.JWTSecret) < 16 {
		return failure("JWT_SECRET must be set to at least 16 characters")
	}
	tok, err := auth.GenerateToken(c.cfg.JWTSecret, c.cfg.JWTIssuer, c.owner, c.ttl)
	if err != nil {
		return failure("%v", err)
	}
	fmt.Fprintln(c.out, tok)
	return subcommands.ExitSuccess
}
