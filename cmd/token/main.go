// Command token issues access tokens for the garage API. There is no login
// endpoint; operators mint tokens for shop staff with this tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/garage/backend/internal/infrastructure/auth"
	"github.com/garage/backend/internal/infrastructure/config"
)

func main() {
	var (
		username string
		roles    string
	)
	flag.StringVar(&username, "user", "", "Username recorded as closed_by / confirmed_by (required)")
	flag.StringVar(&roles, "roles", auth.RoleAttendant, "Comma-separated roles: attendant, finance, admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "jwt.secret is not configured")
		os.Exit(1)
	}

	var roleList []string
	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWT).GenerateToken(username, roleList...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
}
