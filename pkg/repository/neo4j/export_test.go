package neo4j

import (
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// EntityStatements exposes the queries SaveEntities runs in its transaction
func EntityStatements(patientName string, entities map[string][]string) ([]string, error) {
	e := make(model.Entities, len(entities))
	for kind, values := range entities {
		e.Add(types.EntityKind(kind), values...)
	}

	stmts, err := entityStatements(patientName, e)
	if err != nil {
		return nil, err
	}
	queries := make([]string, len(stmts))
	for i, stmt := range stmts {
		queries[i] = stmt.query
	}
	return queries, nil
}
