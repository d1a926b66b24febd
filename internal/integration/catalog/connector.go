package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/config"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/integration/common"
	pkghttp "github.com/owlingo/console-backend/pkg/http"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	cacheKeySources = "sources"
	cacheKeySkills  = "skills"
	cacheKeyUnits   = "units:"
)

// Connector serves the catalog lookups backing the wizard's selection steps.
// The catalog changes rarely, so successful responses are cached with a TTL.
type Connector struct {
	config    config.CatalogConnectorConfig
	connector *pkghttp.Connector
	cache     *cache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CatalogConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL/2),
		logger:    logger,
	}
}

// ListSources returns the selectable content sources.
func (c *Connector) ListSources(ctx context.Context) ([]entity.Source, error) {
	if v, ok := c.cache.Get(cacheKeySources); ok {
		return v.([]entity.Source), nil
	}

	var resp struct {
		Sources []entity.Source `json:"sources"`
	}
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.SourcesEndpoint, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	ctxzap.Debug(ctx, "sources fetched", zap.Int("count", len(resp.Sources)))

	c.cache.SetDefault(cacheKeySources, resp.Sources)
	return resp.Sources, nil
}

// ListUnits returns the sub-units of one source.
// GET {units_endpoint} with {source_id} substituted
func (c *Connector) ListUnits(ctx context.Context, sourceID string) ([]entity.Unit, error) {
	key := cacheKeyUnits + sourceID
	if v, ok := c.cache.Get(key); ok {
		return v.([]entity.Unit), nil
	}

	endpoint := strings.Replace(c.config.UnitsEndpoint, "{source_id}", sourceID, 1)

	var resp struct {
		Units []entity.Unit `json:"units"`
	}
	err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}

	ctxzap.Debug(ctx, "units fetched",
		zap.String("source_id", sourceID),
		zap.Int("count", len(resp.Units)),
	)

	c.cache.SetDefault(key, resp.Units)
	return resp.Units, nil
}

// ListSkills returns the skills with their formats.
func (c *Connector) ListSkills(ctx context.Context) ([]entity.Skill, error) {
	if v, ok := c.cache.Get(cacheKeySkills); ok {
		return v.([]entity.Skill), nil
	}

	var resp struct {
		Skills []entity.Skill `json:"skills"`
	}
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.SkillsEndpoint, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}

	ctxzap.Debug(ctx, "skills fetched", zap.Int("count", len(resp.Skills)))

	c.cache.SetDefault(cacheKeySkills, resp.Skills)
	return resp.Skills, nil
}
