// Package mcpcmder provides the mcp command, which serves the storefront
// catalog to MCP clients over stdio.
package mcpcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	perfumerymcp "github.com/scentshop/perfumery/api/mcp"
	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/storefront"
)

const mcpLongDesc string = `Serve the perfume catalog to MCP clients over stdio.

Coding agents and desktop assistants that speak the Model Context Protocol
can search perfumes, read reviews, fetch AI summaries and similar picks,
and ask the fragrance assistant. Requests go to the configured storefront
using the saved login, if any. Logs are written to stderr.

Example client configuration:
  {"command": "perfumery", "args": ["mcp"]}`

const mcpShortDesc string = "Serve the catalog as MCP tools over stdio"

type mcpCommander struct {
	client      cmdenv.ClientOptions
	noAssistant bool

	transport sdk.Transport
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{
		transport: &sdk.StdioTransport{},
	}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), env)
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().BoolVar(&cmder.noAssistant, "no-assistant", false, "Do not offer the ask_assistant tool")

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, env *cmdenv.Env) error {
	client, err := env.NewClient()
	if err != nil {
		return err
	}

	server, err := c.newServer(client, env.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env.Logger.Info("serving MCP over stdio", "storefront", client.BaseURL())
	if err := server.Run(ctx, c.transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP session: %w", err)
	}
	return nil
}

func (c *mcpCommander) newServer(client *storefront.Client, logger *slog.Logger) (*perfumerymcp.Server, error) {
	cfg := perfumerymcp.Config{
		Catalog: client,
		Logger:  logger,
	}
	if !c.noAssistant {
		cfg.Assistant = client
	}

	server, err := perfumerymcp.NewServer(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}
	return server, nil
}
