package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"propgraph/internal/codec"
	"propgraph/internal/graph"
	"propgraph/internal/models"
	"propgraph/internal/quantity"
	"propgraph/internal/repository"
	"propgraph/internal/storage"
	"propgraph/internal/symbols"
)

// EvaluationService provides the evaluate-aggregate-persist pipeline
// for materials.
type EvaluationService struct {
	registry *symbols.Registry
	catalog  *models.Catalog
	factory  *quantity.Factory
	repo     repository.Repository
	eventBus *EventBus
	metrics  *graph.Metrics
}

// ServiceOption customizes the evaluation service.
type ServiceOption func(*EvaluationService)

// WithRepository enables persistence of evaluated materials.
func WithRepository(repo repository.Repository) ServiceOption {
	return func(s *EvaluationService) { s.repo = repo }
}

// WithEventBus publishes pipeline events.
func WithEventBus(bus *EventBus) ServiceOption {
	return func(s *EvaluationService) { s.eventBus = bus }
}

// WithMetrics attaches engine metrics to the per-material graphs.
func WithMetrics(m *graph.Metrics) ServiceOption {
	return func(s *EvaluationService) { s.metrics = m }
}

// NewEvaluationService creates the pipeline over a registry and catalog.
func NewEvaluationService(reg *symbols.Registry, catalog *models.Catalog, opts ...ServiceOption) *EvaluationService {
	s := &EvaluationService{
		registry: reg,
		catalog:  catalog,
		factory:  quantity.NewFactory(reg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadMaterials builds materials from a parsed input document.
func (s *EvaluationService) LoadMaterials(doc *codec.MaterialInput) ([]*graph.Material, error) {
	var mats []*graph.Material
	for _, im := range doc.Materials {
		mat := graph.NewMaterial()
		if im.ID != "" {
			mat = graph.NewMaterialWithID(im.ID)
		}
		for _, iq := range im.Quantities {
			var opts []quantity.Option
			if iq.Units != "" {
				opts = append(opts, quantity.WithUnits(iq.Units))
			}
			if len(iq.Tags) > 0 {
				opts = append(opts, quantity.WithTags(iq.Tags...))
			}
			if iq.Uncertainty != nil {
				opts = append(opts, quantity.WithUncertainty(iq.Uncertainty))
			}
			q, err := s.factory.Create(iq.Symbol, iq.Value, opts...)
			if err != nil {
				return nil, fmt.Errorf("material %s: %w", mat.ID(), err)
			}
			mat.Add(q)
		}
		mats = append(mats, mat)
	}
	return mats, nil
}

// EvaluateMaterial runs one material through evaluation, aggregation,
// and persistence, against a private graph.
func (s *EvaluationService) EvaluateMaterial(ctx context.Context, mat *graph.Material) error {
	before := make(map[string]bool)
	for _, q := range mat.Quantities() {
		before[q.InternalID()] = true
	}

	g := graph.New(s.registry, s.catalog, graph.WithMetrics(s.metrics))
	if err := g.Evaluate(mat); err != nil {
		return fmt.Errorf("evaluate material %s: %w", mat.ID(), err)
	}

	for _, q := range mat.Quantities() {
		if before[q.InternalID()] {
			continue
		}
		s.eventBus.Publish(Event{Type: EventQuantityDerived, Payload: QuantityEvent{
			MaterialID: mat.ID(),
			Symbol:     q.SymbolName(),
			InternalID: q.InternalID(),
			Model:      q.Provenance().Model,
		}})
	}

	if err := g.Aggregate(mat); err != nil {
		return fmt.Errorf("aggregate material %s: %w", mat.ID(), err)
	}
	for _, q := range mat.Quantities() {
		if q.Provenance().Model == quantity.ModelAggregation {
			s.eventBus.Publish(Event{Type: EventQuantityAggregated, Payload: QuantityEvent{
				MaterialID: mat.ID(),
				Symbol:     q.SymbolName(),
				InternalID: q.InternalID(),
				Model:      quantity.ModelAggregation,
			}})
		}
	}

	if s.repo != nil {
		if err := s.persist(ctx, mat); err != nil {
			return err
		}
	}

	s.eventBus.Publish(Event{Type: EventMaterialEvaluated, Payload: MaterialEvent{
		MaterialID: mat.ID(),
		Quantities: len(mat.Quantities()),
	}})
	return nil
}

func (s *EvaluationService) persist(ctx context.Context, mat *graph.Material) error {
	qs := mat.Quantities()
	records := make([]*storage.StorageQuantity, len(qs))
	for i, q := range qs {
		records[i] = storage.FromQuantity(q, s.registry)
	}
	if err := s.repo.SaveMaterial(ctx, mat.ID(), records); err != nil {
		return fmt.Errorf("persist material %s: %w", mat.ID(), err)
	}
	return nil
}

// EvaluateAll evaluates independent materials in parallel, each against
// its own graph. workers limits concurrency; zero or negative means one
// goroutine per material.
func (s *EvaluationService) EvaluateAll(ctx context.Context, mats []*graph.Material, workers int) error {
	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for _, mat := range mats {
		eg.Go(func() error {
			return s.EvaluateMaterial(ctx, mat)
		})
	}
	return eg.Wait()
}

// LoadStoredMaterial rebuilds a persisted material, resolving stripped
// provenance values through the repository's arena.
func (s *EvaluationService) LoadStoredMaterial(ctx context.Context, materialID string) (*graph.Material, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no repository configured")
	}
	records, err := s.repo.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	lookup := s.repo.Lookup(ctx)
	mat := graph.NewMaterialWithID(materialID)
	for _, sq := range records {
		q, err := sq.ToQuantity(s.factory, lookup)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", materialID, err)
		}
		mat.Add(q)
	}
	return mat, nil
}

// ExportDocument collects materials into the exported record form.
func (s *EvaluationService) ExportDocument(mats []*graph.Material) *codec.MaterialOutput {
	doc := &codec.MaterialOutput{}
	for _, mat := range mats {
		out := codec.OutputMaterial{ID: mat.ID()}
		for _, q := range mat.Quantities() {
			out.Quantities = append(out.Quantities, storage.FromQuantity(q, s.registry))
		}
		doc.Materials = append(doc.Materials, out)
	}
	return doc
}
