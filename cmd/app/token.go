package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studentorg/events-api/internal/config"
	"github.com/studentorg/events-api/internal/pkg/jwthelper"
)

var (
	tokenUserID    uint
	tokenUserAgent string
)

// tokenCmd mints a bearer token for local testing. Users are authenticated elsewhere in production.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed bearer token for a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize config -> %w", err)
		}

		token, err := jwthelper.GenerateToken([]byte(conf.API.JWTSigningKey), tokenUserID, tokenUserAgent)
		if err != nil {
			return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)

		return err
	},
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user", 0, "user id")
	tokenCmd.Flags().StringVar(&tokenUserAgent, "user-agent", "", "bind the token to this User-Agent; empty accepts any client")
	_ = tokenCmd.MarkFlagRequired("user")
}
