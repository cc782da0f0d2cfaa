package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgraph/internal/platform/config"
)

func TestNewWiresSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())
	cfg.Log.Path = ""

	app, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	_, err = app.EntityCLI.CreatePerson(ctx, "Alice", 34)
	require.NoError(t, err)
	_, err = app.EntityCLI.CreateDisease(ctx, "Flu", "Viral infection")
	require.NoError(t, err)

	hits, err := app.SearchCLI.Search(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Alice", hits[0].Name)

	res, err := app.GraphCLI.Link(ctx, "Alice", "Flu")
	require.NoError(t, err)
	assert.Equal(t, "Successfully created relationship between 'Alice' and 'Flu'", res.Message)
	assert.Len(t, res.Graph.Nodes, 2)

	rec, err := app.ConsultCLI.Consult(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.Patient.Name)
}

func TestNewRejectsUnreachableNeo4j(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Log.Path = ""
	cfg.Backend.Kind = config.BackendNeo4j
	cfg.Backend.Neo4j.URI = "bogus://nowhere"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
