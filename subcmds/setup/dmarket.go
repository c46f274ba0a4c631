// Copyright (c) 2025 BVK Chaitanya

// Package setup implements subcommands to record api keys and
// notification credentials in the secrets file.
package setup

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bvk/skinbot/dmarket"
	"github.com/bvk/skinbot/server"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type Dmarket struct {
	dataDir     string
	skipTesting bool

	publicKey string
	secretKey string
}

func (c *Dmarket) Purpose() string {
	return "Setup configures DMarket account api keys"
}

func (c *Dmarket) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("dmarket", flag.ContinueOnError)
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.publicKey, "public-key", "", "DMarket account public key in hex")
	fset.StringVar(&c.secretKey, "secret-key", "", "DMarket account secret key in hex")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "dmarket", fset, cli.CmdFunc(c.run)
}

func (c *Dmarket) Description() string {
	return `

Command "dmarket" records the DMarket account api keys in the secrets
file. Keys are created on the DMarket website under Account ->
Trading API.

The secret key is read from the terminal when the -secret-key flag is
not given, so that it doesn't end up in the shell history:

  $ skinbot setup dmarket --public-key=72ff1a...592f11

`
}

func (c *Dmarket) run(ctx context.Context, args []string) error {
	if len(c.publicKey) == 0 {
		return fmt.Errorf("public key flag is required: %w", os.ErrInvalid)
	}
	if len(c.secretKey) == 0 {
		fmt.Print("Secret key: ")
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("could not read secret key from terminal: %w", err)
		}
		c.secretKey = strings.TrimSpace(string(data))
	}

	secretsPath, secrets, err := loadSecretsFile(c.dataDir)
	if err != nil {
		return err
	}

	secrets.DMarket = &dmarket.Credentials{
		PublicKey: c.publicKey,
		SecretKey: c.secretKey,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		// Attempt to authenticate with the marketplace to validate the keys.
		client, err := dmarket.New(ctx, secrets.DMarket, nil /* opts */)
		if err != nil {
			return fmt.Errorf("could not authenticate with the given keys: %w", err)
		}
		defer client.Close()

		account, err := client.GetAccount(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch account information: %w", err)
		}
		fmt.Fprintf(cli.Stdout(ctx), "Authenticated as %s (%s)\n", account.Username, account.ID)
	}

	return saveSecretsFile(secretsPath, secrets)
}

// loadSecretsFile reads the secrets file under the data directory. A missing
// secrets file is not an error; an empty Secrets object is returned so that
// setup commands can fill in their sections independently.
func loadSecretsFile(dataDir string) (string, *server.Secrets, error) {
	if len(dataDir) == 0 {
		dataDir = filepath.Join(os.Getenv("HOME"), ".skinbot")
	}
	if _, err := os.Stat(dataDir); err != nil {
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("could not stat data directory %q: %w", dataDir, err)
		}
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return "", nil, fmt.Errorf("could not create data directory %q: %w", dataDir, err)
		}
	}
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return "", nil, fmt.Errorf("could not determine data-dir %q absolute path: %w", dataDir, err)
	}

	secretsPath := filepath.Join(dataDir, "secrets.json")
	secrets, err := server.SecretsFromFile(secretsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, err
		}
		secrets = &server.Secrets{}
	}
	return secretsPath, secrets, nil
}

func saveSecretsFile(secretsPath string, secrets *server.Secrets) error {
	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(secretsPath, js, os.FileMode(0600)); err != nil {
		return err
	}
	return nil
}
