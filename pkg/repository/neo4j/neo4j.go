package neo4j

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// Graph stores patient knowledge as (:Patient {name})-[:HAS_<KIND>]->(:Entity {name})
type Graph struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ interfaces.KnowledgeGraph = &Graph{}

type Option func(*Graph)

// WithDatabase selects a database other than the server default
func WithDatabase(name string) Option {
	return func(g *Graph) {
		g.database = name
	}
}

// New connects to Neo4j and verifies connectivity
func New(ctx context.Context, uri, user, password string, opts ...Option) (*Graph, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create neo4j driver", goerr.V("uri", uri))
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, goerr.Wrap(err, "failed to connect neo4j", goerr.V("uri", uri))
	}

	g := &Graph{driver: driver}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Graph) execute(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	var opts []neo4j.ExecuteQueryConfigurationOption
	if g.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(g.database))
	}
	return neo4j.ExecuteQuery(ctx, g.driver, query, params, neo4j.EagerResultTransformer, opts...)
}

func (g *Graph) SavePatient(ctx context.Context, patient *model.Patient) error {
	props := make(map[string]any)
	for _, p := range model.ProfileProperties(patient) {
		props[p.Key] = p.Value
	}

	_, err := g.execute(ctx,
		`MERGE (p:Patient {name: $name}) SET p += $props`,
		map[string]any{"name": patient.FullName(), "props": props},
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save patient node", goerr.V("patient", patient.FullName()))
	}
	return nil
}

type statement struct {
	query  string
	params map[string]any
}

// entityStatements builds one MERGE per entity kind. Relationship types cannot
// be parameterized, so every kind is validated before any query is built.
func entityStatements(patientName string, entities model.Entities) ([]statement, error) {
	var stmts []statement
	for _, kind := range entities.Kinds() {
		if err := kind.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid entity kind", goerr.V("patient", patientName))
		}

		stmts = append(stmts, statement{
			query: fmt.Sprintf(`MERGE (p:Patient {name: $patient})
WITH p
UNWIND $values AS value
MERGE (e:Entity {name: value})
MERGE (p)-[:%s]->(e)`, model.RelationshipType(kind)),
			params: map[string]any{
				"patient": patientName,
				"values":  entities.Values(kind),
			},
		})
	}
	return stmts, nil
}

// SaveEntities writes all kinds in a single transaction
func (g *Graph) SaveEntities(ctx context.Context, patientName string, entities model.Entities) error {
	stmts, err := entityStatements(patientName, entities)
	if err != nil {
		return err
	}
	if len(stmts) == 0 {
		return nil
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: g.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer func() {
		_ = session.Close(ctx)
	}()

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range stmts {
			result, err := tx.Run(ctx, stmt.query, stmt.params)
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to save entities",
			goerr.V("patient", patientName),
			goerr.V("kinds", len(stmts)))
	}
	return nil
}

func (g *Graph) GetKnowledge(ctx context.Context, patientName string) (*model.Knowledge, error) {
	knowledge := model.NewKnowledge(patientName)

	nodes, err := g.execute(ctx,
		`MATCH (p:Patient {name: $name}) RETURN properties(p) AS props`,
		map[string]any{"name": patientName},
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get patient node", goerr.V("patient", patientName))
	}
	if len(nodes.Records) == 0 {
		return knowledge, nil
	}

	props, _, err := neo4j.GetRecordValue[map[string]any](nodes.Records[0], "props")
	if err != nil {
		return nil, goerr.Wrap(err, "invalid patient node", goerr.V("patient", patientName))
	}
	applyProperties(knowledge, props)

	rels, err := g.execute(ctx,
		`MATCH (p:Patient {name: $name})-[r]->(e:Entity)
RETURN type(r) AS relationship, e.name AS entity
ORDER BY relationship, entity`,
		map[string]any{"name": patientName},
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get patient entities", goerr.V("patient", patientName))
	}

	for _, record := range rels.Records {
		rel, _, err := neo4j.GetRecordValue[string](record, "relationship")
		if err != nil {
			return nil, goerr.Wrap(err, "invalid relationship record")
		}
		entity, isNil, err := neo4j.GetRecordValue[string](record, "entity")
		if err != nil || isNil {
			continue
		}
		knowledge.Entities.Add(model.EntityKindFromRelationship(rel), entity)
	}

	return knowledge, nil
}

// applyProperties copies node properties into knowledge, known profile keys
// first and any others by name
func applyProperties(knowledge *model.Knowledge, props map[string]any) {
	seen := map[string]bool{"name": true}
	for _, key := range model.ProfileKeys() {
		seen[key] = true
		if v, ok := props[key]; ok {
			knowledge.SetProperty(key, fmt.Sprint(v))
		}
	}

	var rest []string
	for key := range props {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		knowledge.SetProperty(key, fmt.Sprint(props[key]))
	}
}

func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
