package ctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	gsheet "meloon/internal/sheets/google"
)

type sheetsAuthCmd struct {
	env
	port    string
	output  string
	timeout time.Duration
}

func (*sheetsAuthCmd) Name() string     { return "sheets-auth" }
func (*sheetsAuthCmd) Synopsis() string { return "authorize the journal mirror with a Google account" }
func (*sheetsAuthCmd) Usage() string {
	return `sheets-auth [-port <port>] [-o <file>] [-timeout <duration>]

  Runs the OAuth consent flow for the client in GOOGLE_OAUTH_CLIENT_JSON or
  GOOGLE_OAUTH_CLIENT_FILE and saves the token for meloon-worker. The
  client must allow http://localhost:<port>/callback as a redirect URI.
`
}

func (c *sheetsAuthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "8085", "local callback port")
	f.StringVar(&c.output, "o", gsheet.TokenFile(), "token file")
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "how long to wait for consent")
}

func (c *sheetsAuthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := gsheet.OAuthConfigFromEnv()
	if err != nil {
		return failure("%v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tok, err := authorize(ctx, cfg, c.port, func(url string) {
		fmt.Fprintf(c.out, "Open this URL to authorize:\n%s\n", url)
	})
	if err != nil {
		return failure("%v", err)
	}
	if err := gsheet.SaveToken(c.output, tok); err != nil {
		return failure("%v", err)
	}
	fmt.Fprintf(c.out, "Saved token to %s\n", c.output)
	return subcommands.ExitSuccess
}

// authorize serves the redirect on localhost:port, hands the consent URL to
// show and exchanges the returned code.
func authorize(ctx context.Context, cfg *oauth2.Config, port string, show func(url string)) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", ln.Addr().(*net.TCPAddr).Port)
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res result
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("consent refused: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = errors.New("callback state does not match")
		case q.Get("code") == "":
			res.err = errors.New("callback carries no code")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	show(cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}
