package cli

import (
	"fmt"

	"github.com/SeakMengs/DossierFlow/internal/auth"
	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// TokenCmd signs an access and refresh token pair with AUTH_JWT_SECRET.
// It needs no database.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access and refresh token for an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")

			cfg := config.GetConfig()
			if cfg.Auth.JWT_SECRET == "" {
				return fmt.Errorf("AUTH_JWT_SECRET is not set")
			}

			payload := auth.JWTPayload{ID: id, Email: email, Role: dossier.ActorRole(role)}
			if !payload.Role.Valid() {
				return fmt.Errorf("invalid role %q: %w", role, dossier.ErrInvalidRole)
			}

			jwtService := auth.NewJwt(cfg.Auth, util.NewLogger(cfg.ENV))
			refresh, access, err := jwtService.GenerateRefreshAndAccessToken(payload)
			if err != nil {
				return err
			}

			label := color.New(color.FgYellow)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", label.Sprint("access: "), *access)
			fmt.Fprintf(w, "%s %s\n", label.Sprint("refresh:"), *refresh)
			return nil
		},
	}

	cmd.Flags().String("id", "", "actor id")
	cmd.Flags().String("email", "", "actor email")
	cmd.Flags().String("role", string(dossier.ActorUser), "user, gestionnaire or administrateur")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
