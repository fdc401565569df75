// Package perfumerycmder is the root perfumery command.
package perfumerycmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/scentshop/perfumery/cmd/perfumery/ask"
	authcmder "github.com/scentshop/perfumery/cmd/perfumery/auth"
	catalogcmder "github.com/scentshop/perfumery/cmd/perfumery/catalog"
	chatcmder "github.com/scentshop/perfumery/cmd/perfumery/chat"
	configcmder "github.com/scentshop/perfumery/cmd/perfumery/config"
	historycmder "github.com/scentshop/perfumery/cmd/perfumery/history"
	mcpcmder "github.com/scentshop/perfumery/cmd/perfumery/mcp"
	servecmder "github.com/scentshop/perfumery/cmd/perfumery/serve"
	versioncmder "github.com/scentshop/perfumery/cmd/version"
)

const perfumeryLongDesc string = `Perfumery is a terminal client for the perfume storefront and its
AI fragrance assistant.

Browse the catalog, leave reviews and chat with the assistant:
  perfumery perfumes list       Browse perfumes
  perfumery chat                Chat with the fragrance assistant
  perfumery ask "..."           Ask a single question
  perfumery serve               Run a local mock storefront
  perfumery mcp                 Serve the catalog to MCP clients`

const perfumeryShortDesc string = "Perfumery - perfume storefront CLI"

func NewPerfumeryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "perfumery",
		Short:        perfumeryShortDesc,
		Long:         perfumeryLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .perfumery/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(catalogcmder.NewPerfumesCmd())
	cmd.AddCommand(catalogcmder.NewBrandsCmd())
	cmd.AddCommand(catalogcmder.NewReviewCmd())
	cmd.AddCommand(authcmder.NewLoginCmd())
	cmd.AddCommand(authcmder.NewLogoutCmd())
	cmd.AddCommand(authcmder.NewRegisterCmd())
	cmd.AddCommand(authcmder.NewWhoamiCmd())
	cmd.AddCommand(authcmder.NewProfileCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
