package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/star-temple/starprint/pkg/utils"
	"go.uber.org/zap"
)

func newTokenCmd(a *app) *cobra.Command {
	var station, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a station token for a counter terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != utils.RoleClerk && role != utils.RoleAdmin {
				return fmt.Errorf("unknown role %q", role)
			}

			jwtManager := utils.NewJWTManager(a.cfg.JWT.Secret, a.cfg.JWT.ExpiryHours)
			token, err := jwtManager.GenerateStationToken(station, role)
			if err != nil {
				return err
			}

			a.log.Info("Issued station token",
				zap.String("station", station),
				zap.String("role", role),
				zap.Duration("expiry", a.cfg.JWT.ExpiryHours),
			)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&station, "station", "", "station name, e.g. counter-1")
	cmd.Flags().StringVar(&role, "role", utils.RoleClerk, "station role: clerk or admin")
	_ = cmd.MarkFlagRequired("station")
	return cmd
}
