package main

import (
	"fmt"

	"github.com/panbanda/gdcf/internal/mcpserver"
	"github.com/panbanda/gdcf/internal/service/analysis"
	"github.com/urfave/cli/v2"
)

const mcpCommand = "mcp"

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  mcpCommand,
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes gdcf's analysis
as tools that LLMs can invoke.

To use with an MCP client, add to its config:
  {
    "mcpServers": {
      "gdcf": {
        "command": "gdcf",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_unused_functions     Functions with no recognized reference
  - find_test_only_functions  Functions referenced only from test code
  - explain_function          Definitions and references of one name`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP server manifest (server.json)",
				Action: runMCPManifest,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc := analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithLogger(newLogger(c.App.ErrWriter, 0)),
	)
	return mcpserver.NewServer(version, svc).Run(c.Context)
}

func runMCPManifest(c *cli.Context) error {
	data, err := mcpserver.NewServer(version, nil).Manifest(mcpserver.ManifestInfo{
		Name:        "io.github.panbanda/" + c.App.Name,
		Description: c.App.Usage,
		Repository:  "https://github.com/panbanda/" + c.App.Name,
		Image:       "ghcr.io/panbanda/" + c.App.Name,
		Args:        []string{mcpCommand},
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
