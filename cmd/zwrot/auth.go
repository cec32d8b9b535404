package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"zwrot/internal/config"
	"zwrot/internal/drive"
)

func authCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "authorise Google Drive access and save token.json",
		Action: func(c *cli.Context) error {
			oc, err := drive.OAuthConfig(cfg.Path(config.CredentialsFile))
			if err != nil {
				return err
			}

			code, err := drive.LoopbackCode(c.Context, oc, func(url string) {
				fmt.Printf("Otwórz w przeglądarce i zatwierdź dostęp:\n\n%s\n\n", url)
			})
			if err != nil {
				return err
			}
			tokenPath := cfg.Path(config.TokenFile)
			if err := drive.Exchange(c.Context, oc, code, tokenPath); err != nil {
				return err
			}
			fmt.Println("Token zapisany:", tokenPath)
			return nil
		},
	}
}
