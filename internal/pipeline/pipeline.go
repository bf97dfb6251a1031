// Package pipeline implements Component H (§4.6): the thin driver that
// wires the escrow adapter, entity parsers, graph builder, slicer and
// emitter into one run, consulting the memoisation cache at the two
// points spec.md names (the parsed entity set and the built graph).
package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"github.com/modslice/modslice/internal/cache"
	"github.com/modslice/modslice/internal/cparse"
	"github.com/modslice/modslice/internal/emit"
	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/escrow"
	"github.com/modslice/modslice/internal/graph"
	"github.com/modslice/modslice/internal/slice"
)

// Source is one area's raw text input: a concatenation of every file
// the caller collected for that area (the preprocessor driver and
// filesystem walk are external collaborators — internal/collaborators
// states their interface only; by the time text reaches here it is
// already assembled).
type Source struct {
	Kernel string
	Module string
}

// Request bundles one pipeline run's inputs.
type Request struct {
	Source  Source
	Targets []string
	Options emit.Options

	// Sentinels overrides the escrow sentinel set; zero value selects
	// escrow.DefaultSentinels().
	Sentinels *escrow.Sentinels
}

// Result bundles one run's outputs: the emitted buckets plus every
// non-fatal warning raised while parsing either area.
type Result struct {
	Output   *emit.Output
	Warnings []cparse.Warning
}

// Run executes the full pipeline for req, consulting c (which may be
// nil to disable memoisation entirely) for the two cacheable stages:
// the parsed entity set (level 1, keyed per area) and the built graph
// (level 2, keyed over both areas together).
func Run(req Request, c *cache.Cache) (*Result, error) {
	sentinels := escrow.DefaultSentinels()
	if req.Sentinels != nil {
		sentinels = *req.Sentinels
	}

	registry := entity.NewRegistry()
	var warnings []cparse.Warning

	kernelAt := escrow.Adapt(req.Source.Kernel, sentinels)
	moduleAt := escrow.Adapt(req.Source.Module, sentinels)

	if err := parseArea(registry, entity.Kernel, kernelAt, c, &warnings); err != nil {
		return nil, err
	}
	if err := parseArea(registry, entity.Module, moduleAt, c, &warnings); err != nil {
		return nil, err
	}

	entities := registry.All()

	var g *graph.Graph
	graphKey := graphCacheKey(entities)
	if c != nil {
		if cached, err := loadGraph(c, graphKey); err == nil {
			g = cached
		}
	}
	if g == nil {
		g = graph.BuildFromEntities(entities)
		if c != nil {
			_ = storeGraph(c, graphKey, g)
		}
	}

	targetIDs, err := slice.ResolveTargets(entities, req.Targets)
	if err != nil {
		return nil, err
	}

	sub, vertices, err := slice.Slice(g, registry, targetIDs)
	if err != nil {
		return nil, err
	}

	targetSet := make(map[entity.ID]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targetSet[id] = struct{}{}
	}

	out, err := emit.Emit(sub, registry, vertices, kernelAt, moduleAt, targetSet, req.Options)
	if err != nil {
		return nil, err
	}

	return &Result{Output: out, Warnings: warnings}, nil
}

// entitySnapshot is the gob-portable shape of one parsed entity, used
// only for the level-1 cache: Entity.ID is a process-unique handle
// assigned by Registry and is never itself cached, since a cache hit
// re-registers each snapshot through registry.New and gets a fresh id
// for this run.
type entitySnapshot struct {
	Kind               entity.Kind
	Area               entity.Area
	Name               string
	Code               string
	IDs                map[string]struct{}
	TagTokens          map[string]struct{}
	ForwardDeclaration string
}

// parseArea runs the entity parsers for one area, consulting and
// populating the level-1 entity cache when c is non-nil. A cache hit
// skips re-running the regex scanners entirely (and so reports no
// duplicate-name warnings, since those were already surfaced the run
// that populated the cache); a miss parses normally and stores the
// result keyed on the area's adapted body text.
func parseArea(registry *entity.Registry, area entity.Area, at *escrow.AdaptedText, c *cache.Cache, warnings *[]cparse.Warning) error {
	key := entityCacheKey(area, at.Body)

	if c != nil {
		if snapshots, err := loadEntitySnapshots(c, key); err == nil {
			for _, s := range snapshots {
				e := registry.New(s.Kind, s.Area, s.Name, s.Code, s.IDs, s.TagTokens)
				e.ForwardDeclaration = s.ForwardDeclaration
			}
			return nil
		}
	}

	p := cparse.NewParser(registry, area)
	entities, warns := p.ParseAll(at.Body, at.Escrows[escrow.MacroLine])
	*warnings = append(*warnings, warns...)

	if c != nil {
		_ = storeEntitySnapshots(c, key, entities)
	}
	return nil
}

func entityCacheKey(area entity.Area, body string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", area, body)))
	return hex.EncodeToString(h[:])
}

func storeEntitySnapshots(c *cache.Cache, key string, entities []*entity.Entity) error {
	snapshots := make([]entitySnapshot, len(entities))
	for i, e := range entities {
		snapshots[i] = entitySnapshot{
			Kind:               e.Kind,
			Area:               e.Area,
			Name:               e.Name,
			Code:               e.Code,
			IDs:                e.IDs,
			TagTokens:          e.TagTokens,
			ForwardDeclaration: e.ForwardDeclaration,
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshots); err != nil {
		return fmt.Errorf("encode entity snapshots: %w", err)
	}
	return c.Put(cache.KindEntities, key, buf.Bytes())
}

func loadEntitySnapshots(c *cache.Cache, key string) ([]entitySnapshot, error) {
	data, err := c.Get(cache.KindEntities, key)
	if err != nil {
		return nil, err
	}
	var snapshots []entitySnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snapshots); err != nil {
		return nil, fmt.Errorf("decode entity snapshots: %w", err)
	}
	return snapshots, nil
}

// graphCacheKey derives a stable key for the level-2 graph cache from
// the content hash of every entity presently in the registry. Order
// matters for determinism, so entities are walked in Registry.All's
// creation order rather than a map iteration.
func graphCacheKey(entities []*entity.Entity) string {
	h := sha256.New()
	for _, e := range entities {
		h.Write([]byte(e.Hash()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// graphBlob is the gob-encoded shape stored for a level-2 cache hit.
type graphBlob struct {
	Edges        map[entity.ID][]entity.ID
	ReverseEdges map[entity.ID][]entity.ID
}

func storeGraph(c *cache.Cache, key string, g *graph.Graph) error {
	var buf bytes.Buffer
	blob := graphBlob{Edges: g.Edges, ReverseEdges: g.ReverseEdges}
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return fmt.Errorf("encode graph blob: %w", err)
	}
	return c.Put(cache.KindGraph, key, buf.Bytes())
}

func loadGraph(c *cache.Cache, key string) (*graph.Graph, error) {
	data, err := c.Get(cache.KindGraph, key)
	if err != nil {
		return nil, err
	}
	var blob graphBlob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&blob); err != nil {
		return nil, fmt.Errorf("decode graph blob: %w", err)
	}
	return &graph.Graph{Edges: blob.Edges, ReverseEdges: blob.ReverseEdges}, nil
}
