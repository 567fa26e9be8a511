package cli

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mchmarny/bureau/pkg/auth"
)

var (
	uriFlag = &cli.StringFlag{
		Name:  "uri",
		Usage: "Source URI with embedded credentials, used when the source is 'keyring:'",
	}

	tokenFlag = &cli.StringFlag{
		Name:  "token",
		Usage: "Bearer token sent to http(s) sources",
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Manage source credentials in the OS keychain",
		Subcommands: []*cli.Command{
			{
				Name:   "set",
				Usage:  "Store the source URI and/or token",
				Action: cmdAuthSet,
				Flags:  []cli.Flag{uriFlag, tokenFlag},
			},
			{
				Name:   "delete",
				Usage:  "Remove the stored source URI and token",
				Action: cmdAuthDelete,
			},
		},
	}
)

func cmdAuthSet(c *cli.Context) error {
	uri := c.String(uriFlag.Name)
	token := c.String(tokenFlag.Name)
	if uri == "" && token == "" {
		return cli.ShowSubcommandHelp(c)
	}

	s := getConfig(c).Store
	if uri != "" {
		if err := s.Set(auth.KeySourceURI, uri); err != nil {
			return fmt.Errorf("saving source uri: %w", err)
		}
	}
	if token != "" {
		if err := s.Set(auth.KeySourceToken, token); err != nil {
			return fmt.Errorf("saving source token: %w", err)
		}
	}

	fmt.Fprintln(c.App.Writer, "Credentials saved")
	return nil
}

func cmdAuthDelete(c *cli.Context) error {
	s := getConfig(c).Store
	removed := 0
	for _, k := range []string{auth.KeySourceURI, auth.KeySourceToken} {
		err := s.Delete(k)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, auth.ErrNotFound):
		default:
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}

	fmt.Fprintf(c.App.Writer, "Removed %d credential(s)\n", removed)
	return nil
}
