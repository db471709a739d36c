package mcpserver

import (
	"encoding/json"
	"net/url"
	"strings"
)

const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// ManifestInfo is the publishing metadata of the binary that serves the
// tools. It is supplied by the command line layer.
type ManifestInfo struct {
	Name        string   // registry name, e.g. io.github.owner/repo
	Description string   // one sentence
	Repository  string   // repository URL
	Image       string   // OCI image reference without tag
	Args        []string // arguments that start the server over stdio
}

// Manifest is the server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
	Meta        Meta        `json:"_meta"`
}

// Repository names where the source lives.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package tells a client how to start the server.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

// Argument is one positional argument of the package command.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Transport is the wire the server speaks.
type Transport struct {
	Type string `json:"type"`
}

// Meta carries the tool and prompt set this server registers.
type Meta struct {
	Publisher Capabilities `json:"io.modelcontextprotocol.registry/publisher-provided"`
}

// Capabilities lists registered tools and prompts by name.
type Capabilities struct {
	Tools   []ToolSummary `json:"tools"`
	Prompts []string      `json:"prompts"`
}

// ToolSummary is a tool name with the first line of its description.
type ToolSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Manifest renders server.json for s. Versions that are not releases
// ("dev", "") publish as 0.0.0.
func (s *Server) Manifest(info ManifestInfo) ([]byte, error) {
	version := strings.TrimPrefix(s.version, "v")
	if version == "" || version == "dev" {
		version = "0.0.0"
	}

	m := Manifest{
		Schema:      manifestSchema,
		Name:        info.Name,
		Description: info.Description,
		Version:     version,
		Meta:        Meta{Publisher: s.capabilities()},
	}
	if info.Repository != "" {
		m.Repository = &Repository{URL: info.Repository, Source: repositorySource(info.Repository)}
	}
	if info.Image != "" {
		pkg := Package{
			RegistryType: "oci",
			Identifier:   info.Image + ":" + version,
			Transport:    Transport{Type: "stdio"},
		}
		for _, arg := range info.Args {
			pkg.PackageArguments = append(pkg.PackageArguments, Argument{Type: "positional", Value: arg})
		}
		m.Packages = []Package{pkg}
	}

	return json.MarshalIndent(m, "", "  ")
}

func (s *Server) capabilities() Capabilities {
	c := Capabilities{
		Tools:   make([]ToolSummary, 0, len(s.tools)),
		Prompts: append([]string{}, s.prompts...),
	}
	for _, t := range s.tools {
		summary, _, _ := strings.Cut(strings.TrimSpace(t.Description), "\n")
		c.Tools = append(c.Tools, ToolSummary{Name: t.Name, Summary: summary})
	}
	return c
}

// repositorySource maps a repository URL to the registry's source name:
// the host without its TLD ("github", "gitlab").
func repositorySource(repo string) string {
	u, err := url.Parse(repo)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	name, _, _ := strings.Cut(host, ".")
	return name
}
