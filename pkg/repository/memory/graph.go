package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

// Graph is an in-process KnowledgeGraph keyed by patient full name
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*model.Knowledge
}

var _ interfaces.KnowledgeGraph = &Graph{}

// NewGraph creates an empty in-memory knowledge graph
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*model.Knowledge),
	}
}

func (g *Graph) node(name string) *model.Knowledge {
	k, ok := g.nodes[name]
	if !ok {
		k = model.NewKnowledge(name)
		g.nodes[name] = k
	}
	return k
}

func (g *Graph) SavePatient(ctx context.Context, patient *model.Patient) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := g.node(patient.FullName())
	for _, prop := range model.ProfileProperties(patient) {
		k.SetProperty(prop.Key, prop.Value)
	}
	return nil
}

func (g *Graph) SaveEntities(ctx context.Context, patientName string, entities model.Entities) error {
	for _, kind := range entities.Kinds() {
		if err := kind.Validate(); err != nil {
			return goerr.Wrap(err, "invalid entity kind", goerr.V("patient", patientName))
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.node(patientName).Entities.Merge(entities)
	return nil
}

func (g *Graph) GetKnowledge(ctx context.Context, patientName string) (*model.Knowledge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	k, ok := g.nodes[patientName]
	if !ok {
		return model.NewKnowledge(patientName), nil
	}

	copied := &model.Knowledge{
		PatientName: k.PatientName,
		Profile:     append([]model.KnowledgeProperty(nil), k.Profile...),
		Entities:    k.Entities.Clone(),
	}
	return copied, nil
}

func (g *Graph) Close(ctx context.Context) error {
	return nil
}
