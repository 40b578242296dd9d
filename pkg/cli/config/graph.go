package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/repository/memory"
	"github.com/secmon-lab/healthbot/pkg/repository/neo4j"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Graph holds CLI flags for the knowledge graph backend
type Graph struct {
	backend  string
	uri      string
	user     string
	password string
	database string
}

func (x *Graph) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "graph-backend",
			Category:    "Knowledge Graph",
			Usage:       "Knowledge graph backend (memory, neo4j or none)",
			Value:       "memory",
			Sources:     cli.EnvVars("HEALTHBOT_GRAPH_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "neo4j-uri",
			Category:    "Knowledge Graph",
			Usage:       "Neo4j connection URI",
			Value:       "neo4j://localhost:7687",
			Sources:     cli.EnvVars("HEALTHBOT_NEO4J_URI"),
			Destination: &x.uri,
		},
		&cli.StringFlag{
			Name:        "neo4j-user",
			Category:    "Knowledge Graph",
			Usage:       "Neo4j user",
			Value:       "neo4j",
			Sources:     cli.EnvVars("HEALTHBOT_NEO4J_USER"),
			Destination: &x.user,
		},
		&cli.StringFlag{
			Name:        "neo4j-password",
			Category:    "Knowledge Graph",
			Usage:       "Neo4j password",
			Sources:     cli.EnvVars("HEALTHBOT_NEO4J_PASSWORD"),
			Destination: &x.password,
		},
		&cli.StringFlag{
			Name:        "neo4j-database",
			Category:    "Knowledge Graph",
			Usage:       "Neo4j database (server default when empty)",
			Sources:     cli.EnvVars("HEALTHBOT_NEO4J_DATABASE"),
			Destination: &x.database,
		},
	}
}

// Configure returns the knowledge graph, or nil when disabled. The caller
// closes the returned graph.
func (x *Graph) Configure(ctx context.Context) (interfaces.KnowledgeGraph, error) {
	switch x.backend {
	case "none":
		logging.Default().Info("Knowledge graph disabled")
		return nil, nil

	case "", "memory":
		logging.Default().Info("Using in-memory knowledge graph")
		return memory.NewGraph(), nil

	case "neo4j":
		var opts []neo4j.Option
		if x.database != "" {
			opts = append(opts, neo4j.WithDatabase(x.database))
		}
		g, err := neo4j.New(ctx, x.uri, x.user, x.password, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to connect to neo4j", goerr.V("uri", x.uri))
		}
		logging.Default().Info("Using Neo4j knowledge graph", "uri", x.uri)
		return g, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "invalid graph backend", goerr.V(BackendKey, x.backend))
	}
}
