package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spec-synth/internal/config"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/ui"
)

const (
	shopRoot = "../../testdata/shop"
	petSpec  = "../../testdata/specfile/openapi.yaml"
)

type countingDescriber struct {
	mu    sync.Mutex
	calls int
}

func (d *countingDescriber) Describe(ctx context.Context, level model.DetailLevel, req nlp.Request) (*nlp.Response, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return &nlp.Response{MediumDescription: "Generated for " + req.Signature + "."}, nil
}

func shopConfig() *config.Config {
	cfg := config.Default()
	cfg.Project.RootDir = shopRoot
	cfg.Project.Name = "shop"
	return cfg
}

func TestGenerateShop(t *testing.T) {
	cfg := shopConfig()
	cfg.Generation.Validate = true

	out, err := Generate(context.Background(), cfg, Options{})
	require.NoError(t, err)

	assert.False(t, out.FromSpecFile())
	assert.Equal(t, 8, out.Endpoints)
	assert.Equal(t, 8, out.Document.OperationCount())
	assert.Equal(t, 0, out.Enriched)
	assert.Empty(t, out.ValidationErrors)
	assert.Equal(t, model.MechanismBearerJWT, out.Security.Mechanism)

	_, ok := out.Document.Components.SecuritySchemes.Get("bearerAuth")
	assert.True(t, ok)

	del := out.Document.Operation(model.MethodDelete, "/api/orders/{id}")
	require.NotNil(t, del)
	roles, ok := del.Extension("x-required-roles")
	require.True(t, ok)
	assert.Equal(t, []string{"ADMIN"}, roles)

	var broken bool
	for _, d := range out.Diagnostics {
		if strings.HasSuffix(d.File, "Broken.java") && d.Level == logger.LevelWarn {
			broken = true
		}
	}
	assert.True(t, broken, "unparsable file should be reported")
}

func TestGenerateEnrichesEveryEndpoint(t *testing.T) {
	d := &countingDescriber{}
	var drawn bytes.Buffer
	progress := ui.NewPipelineWithOutput(ui.GeneratePhases, &drawn)

	out, err := Generate(context.Background(), shopConfig(), Options{Describer: d, Progress: progress})
	require.NoError(t, err)

	assert.Equal(t, 8, d.calls)
	assert.Equal(t, 8, out.Enriched)
	assert.Equal(t, ui.PhaseEnriching, progress.Current())

	get := out.Document.Operation(model.MethodGet, "/api/orders/{id}")
	require.NotNil(t, get)
	assert.Equal(t, "Generated for GET /api/orders/{id}.", get.Description)
}

func TestGenerateFallsBackToSpecFile(t *testing.T) {
	root := t.TempDir()
	data, err := os.ReadFile(petSpec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "openapi.yaml"), data, 0644))

	cfg := config.Default()
	cfg.Project.RootDir = root

	out, err := Generate(context.Background(), cfg, Options{})
	require.NoError(t, err)
	assert.True(t, out.FromSpecFile())
	assert.Nil(t, out.Document)
	assert.Contains(t, string(out.SpecYAML), "Pet API")

	raw, err := out.Render("json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "paths")

	_, err = Generate(context.Background(), cfg, Options{NoSpecFallback: true})
	assert.True(t, errors.Is(err, ErrNoEndpoints))
}

func TestGenerateNoEndpoints(t *testing.T) {
	cfg := config.Default()
	cfg.Project.RootDir = t.TempDir()

	_, err := Generate(context.Background(), cfg, Options{})
	assert.True(t, errors.Is(err, ErrNoEndpoints))
}

func TestGenerateRejectsBadLevel(t *testing.T) {
	cfg := shopConfig()
	cfg.Generation.Level = "verbose"

	_, err := Generate(context.Background(), cfg, Options{})
	assert.Error(t, err)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, shopConfig(), Options{Describer: &countingDescriber{}})
	assert.Error(t, err)
}

func TestFindSpecFile(t *testing.T) {
	root := t.TempDir()
	_, ok := FindSpecFile(root)
	assert.False(t, ok)

	// A directory with a matching name is not a document
	require.NoError(t, os.Mkdir(filepath.Join(root, "openapi.yaml"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "swagger.json"), []byte("{}"), 0644))
	path, ok := FindSpecFile(root)
	require.True(t, ok)
	assert.Equal(t, "swagger.json", filepath.Base(path))

	require.NoError(t, os.WriteFile(filepath.Join(root, "openapi.yml"), []byte("openapi: 3.0.3"), 0644))
	path, ok = FindSpecFile(root)
	require.True(t, ok)
	assert.Equal(t, "openapi.yml", filepath.Base(path))
}

func TestRequests(t *testing.T) {
	reqs, err := Requests(shopConfig())
	require.NoError(t, err)
	require.Len(t, reqs, 8)

	first := reqs[0]
	assert.Equal(t, "GET /api/orders/{id}", first.Signature)
	assert.Equal(t, "OrderController_getOrder", first.Symbol)
	assert.Equal(t, "Returns a single order.", first.Comment)
	assert.Equal(t, []string{"repository by primary key"}, first.Notes)
}

func TestRender(t *testing.T) {
	out, err := Generate(context.Background(), shopConfig(), Options{})
	require.NoError(t, err)

	y, err := out.Render("yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(y), "openapi: 3.0.3"))

	j, err := out.Render("json")
	require.NoError(t, err)
	assert.True(t, json.Valid(j))

	_, err = out.Render("xml")
	assert.Error(t, err)
}

func TestNewDescriber(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, NewDescriber(cfg))

	cfg.NLP.Enabled = false
	assert.Nil(t, NewDescriber(cfg))
}
