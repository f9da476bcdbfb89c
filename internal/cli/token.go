package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/activities/internal/auth"
	"github.com/julianstephens/activities/internal/keyring"
)

// TokenCmd manages the bearer token sent to the activity API.
type TokenCmd struct {
	Set    TokenSetCmd    `cmd:"" help:"Store an API token in the OS keyring."`
	Get    TokenGetCmd    `cmd:"" help:"Show the stored API token (masked)."`
	Delete TokenDeleteCmd `cmd:"" help:"Remove the stored API token."`
	Issue  TokenIssueCmd  `cmd:"" help:"Mint a token for a server started with --jwt-secret."`
	Status TokenStatusCmd `cmd:"" help:"Check whether the OS keyring is usable."`
}

type TokenSetCmd struct {
	Token   string `arg:"" optional:"" help:"Token to store. Prompted for when omitted."`
	Profile string `help:"Keyring profile, for keeping tokens for several servers."`
}

func (c *TokenSetCmd) Run(ctx *Context) error {
	token := c.Token
	if token == "" {
		input := huh.NewInput().
			Title("API token").
			EchoMode(huh.EchoModePassword).
			Value(&token)
		if err := huh.NewForm(huh.NewGroup(input)).WithTheme(huh.ThemeDracula()).Run(); err != nil {
			return formError(err)
		}
	}
	if err := keyring.For(c.Profile).SetToken(token); err != nil {
		return err
	}
	ctx.printf("%s\n", okStyle.Render("✓ Token stored in OS keyring"))
	return nil
}

type TokenGetCmd struct {
	Profile string `help:"Keyring profile."`
	Reveal  bool   `help:"Print the token unmasked."`
}

func (c *TokenGetCmd) Run(ctx *Context) error {
	token, err := keyring.For(c.Profile).Token()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no token stored. Use 'activities token set' to store one")
		}
		return err
	}
	if !c.Reveal {
		token = MaskToken(token)
	}
	ctx.printf("%s\n", token)
	return nil
}

type TokenDeleteCmd struct {
	Profile string `help:"Keyring profile."`
}

func (c *TokenDeleteCmd) Run(ctx *Context) error {
	if err := keyring.For(c.Profile).DeleteToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no token stored")
		}
		return err
	}
	ctx.printf("%s\n", okStyle.Render("✓ Token deleted from OS keyring"))
	return nil
}

type TokenIssueCmd struct {
	Secret  string        `help:"HS256 secret shared with the server." required:"" env:"ACTIVITIES_JWT_SECRET"`
	Issuer  string        `help:"Token issuer." default:"${default_issuer}"`
	Subject string        `help:"Token subject." default:"cli"`
	TTL     time.Duration `help:"Token lifetime." default:"${default_ttl}" name:"ttl"`
	Save    bool          `help:"Store the token in the keyring instead of printing it."`
	Profile string        `help:"Keyring profile used with --save."`
}

func (c *TokenIssueCmd) Run(ctx *Context) error {
	token, err := auth.Issue(auth.Config{Secret: c.Secret, Issuer: c.Issuer}, c.Subject, c.TTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	if !c.Save {
		ctx.printf("%s\n", token)
		return nil
	}
	if err := keyring.For(c.Profile).SetToken(token); err != nil {
		return err
	}
	ctx.printf("%s (expires in %s)\n", okStyle.Render("✓ Token issued and stored"), c.TTL)
	return nil
}

type TokenStatusCmd struct{}

func (c *TokenStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	ctx.printf("✓ OS keyring is available\n")
	if _, err := keyring.Default().Token(); err == nil {
		ctx.printf("✓ API token is stored\n")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.printf("ℹ No API token stored\n")
	}
	return nil
}

// MaskToken keeps the first and last four characters.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}
