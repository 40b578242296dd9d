package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"github.com/secmon-lab/healthbot/pkg/repository/memory"
	"github.com/secmon-lab/healthbot/pkg/repository/neo4j"
)

func runKnowledgeGraphTest(t *testing.T, newGraph func(t *testing.T) interfaces.KnowledgeGraph) {
	t.Helper()

	t.Run("unknown patient has empty knowledge", func(t *testing.T) {
		g := newGraph(t)
		k, err := g.GetKnowledge(context.Background(), fmt.Sprintf("Nobody %d", time.Now().UnixNano()))
		gt.NoError(t, err).Required()
		gt.Value(t, k.Format()).Equal("")
	})

	t.Run("profile and entities are merged", func(t *testing.T) {
		g := newGraph(t)
		ctx := context.Background()

		p := newTestPatient("Graph")
		gt.NoError(t, g.SavePatient(ctx, p)).Required()

		e1 := model.Entities{}
		e1.Add(types.EntityMedication, "metformin")
		e1.Add(types.EntitySymptom, "headache")
		gt.NoError(t, g.SaveEntities(ctx, p.FullName(), e1)).Required()

		e2 := model.Entities{}
		e2.Add(types.EntityMedication, "metformin", "insulin")
		gt.NoError(t, g.SaveEntities(ctx, p.FullName(), e2)).Required()

		k, err := g.GetKnowledge(ctx, p.FullName())
		gt.NoError(t, err).Required()
		gt.Array(t, k.Entities.Values(types.EntityMedication)).Length(2)
		gt.Array(t, k.Entities.Values(types.EntitySymptom)).Equal([]string{"headache"})

		text := k.Format()
		gt.String(t, text).Contains("Medical Condition: Type 2 diabetes")
		gt.String(t, text).Contains("Doctor Name: Smith")
		gt.String(t, text).Contains("Symptom: headache")
	})

	t.Run("invalid kind is rejected", func(t *testing.T) {
		g := newGraph(t)
		e := model.Entities{}
		e.Add("bad kind]->()", "x")
		gt.Value(t, g.SaveEntities(context.Background(), "Someone", e)).NotNil()
	})

	t.Run("rejected batch writes nothing", func(t *testing.T) {
		g := newGraph(t)
		ctx := context.Background()
		name := fmt.Sprintf("Partial %d", time.Now().UnixNano())

		e := model.Entities{}
		e.Add(types.EntityMedication, "metformin")
		e.Add("zz bad]->()", "x")
		gt.Value(t, g.SaveEntities(ctx, name, e)).NotNil()

		k, err := g.GetKnowledge(ctx, name)
		gt.NoError(t, err).Required()
		gt.Bool(t, k.Entities.Has(types.EntityMedication)).False()
	})
}

func TestMemoryKnowledgeGraph(t *testing.T) {
	runKnowledgeGraphTest(t, func(t *testing.T) interfaces.KnowledgeGraph {
		return memory.NewGraph()
	})
}

func TestNeo4jKnowledgeGraph(t *testing.T) {
	runKnowledgeGraphTest(t, func(t *testing.T) interfaces.KnowledgeGraph {
		uri := os.Getenv("TEST_NEO4J_URI")
		if uri == "" {
			t.Skip("TEST_NEO4J_URI not set")
		}

		ctx := context.Background()
		g, err := neo4j.New(ctx, uri, os.Getenv("TEST_NEO4J_USER"), os.Getenv("TEST_NEO4J_PASSWORD"))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, g.Close(ctx))
		})
		return g
	})
}
