package banner

import (
	"fmt"

	"sparkchat/pkg/config"
)

const banner = `
███████╗██████╗  █████╗ ██████╗ ██╗  ██╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔════╝██╔══██╗██╔══██╗██╔══██╗██║ ██╔╝██╔════╝██║  ██║██╔══██╗╚══██╔══╝
███████╗██████╔╝███████║██████╔╝█████╔╝ ██║     ███████║███████║   ██║
╚════██║██╔═══╝ ██╔══██║██╔══██╗██╔═██╗ ██║     ██╔══██║██╔══██║   ██║
███████║██║     ██║  ██║██║  ██║██║  ██╗╚██████╗██║  ██║██║  ██║   ██║
╚══════╝╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// Print shows the startup banner with the effective runtime settings and a
// few production readiness checks.
func Print(cfg *config.Config, addr, dbPath, source, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if source != "" {
		fmt.Printf("Config:   %s\n", source)
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /auth/register - create an identity (form: identity, password)")
	fmt.Println("POST /auth/login    - obtain a session token")
	fmt.Println("GET  /ws?token=<t>  - realtime channel")
	fmt.Println("POST /api/messages  - send a message (Authorization: Bearer <t>)")

	fmt.Println("\n== Production? ================================================")
	if cfg.Security.Token.Secret != "" {
		fmt.Println("- Token secret: configured")
	} else {
		fmt.Println("- Token secret: MISSING (set SPARKCHAT_TOKEN_SECRET; sessions will not survive restarts)")
	}
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if len(cfg.Security.CORS.AllowedOrigins) > 0 {
		fmt.Printf("- CORS origins: %d allowed\n", len(cfg.Security.CORS.AllowedOrigins))
	} else {
		fmt.Println("- CORS origins: none (browser clients will be refused)")
	}
	if cfg.Retention.Enabled {
		cron := cfg.Retention.Cron
		if cron == "" {
			cron = "0 * * * *"
		}
		fmt.Printf("- Retention: enabled (cron=%s)\n", cron)
	} else {
		fmt.Println("- Retention: disabled (statuses never expire)")
	}

	fmt.Println("\n== Logs: ======================================================")
}
