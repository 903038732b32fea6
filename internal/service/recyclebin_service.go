package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pyhumph/jriit-cms-sub001/internal/event"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

const tracerName = "github.com/pyhumph/jriit-cms-sub001/internal/service"

const (
	auditStatusSuccess = "success"
	auditStatusFailed  = "failed"
)

// CacheInvalidator drops derived state for a resource type. It is called
// synchronously before a lifecycle operation returns.
type CacheInvalidator interface {
	Invalidate(rt model.ResourceType)
}

// RecycleBinService owns the soft-delete lifecycle across every registered
// resource type.
type RecycleBinService struct {
	registry       *Registry
	audit          *AuditService
	bus            event.Bus
	tracer         trace.Tracer
	cleanupTimeout time.Duration
	invalidators   []CacheInvalidator
}

// NewRecycleBinService wires the lifecycle to its registry, audit trail and
// event bus. bus may be nil. A non-positive cleanupTimeout falls back to five
// seconds.
func NewRecycleBinService(registry *Registry, audit *AuditService, bus event.Bus, cleanupTimeout time.Duration) *RecycleBinService {
	if cleanupTimeout <= 0 {
		cleanupTimeout = 5 * time.Second
	}

	return &RecycleBinService{
		registry:       registry,
		audit:          audit,
		bus:            bus,
		tracer:         otel.Tracer(tracerName),
		cleanupTimeout: cleanupTimeout,
	}
}

// SetTracer replaces the global tracer. A nil tracer is ignored.
func (s *RecycleBinService) SetTracer(tracer trace.Tracer) {
	if tracer != nil {
		s.tracer = tracer
	}
}

// AddInvalidator registers inv for every successful soft delete, restore and
// purge. Call it before serving requests.
func (s *RecycleBinService) AddInvalidator(inv CacheInvalidator) {
	s.invalidators = append(s.invalidators, inv)
}

// List returns every soft-deleted record across all types, most recently
// deleted first. A failure in any single type fails the whole listing.
func (s *RecycleBinService) List(ctx context.Context) ([]model.RecycleBinEntry, error) {
	ctx, span := s.tracer.Start(ctx, "recyclebin.List")
	defer span.End()

	adapters := s.registry.Adapters()
	slots := make([][]model.RecycleBinEntry, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			items, err := adapter.ListDeleted(gctx)
			if err != nil {
				return fmt.Errorf("list deleted %s: %w", adapter.ResourceType(), err)
			}

			entries := make([]model.RecycleBinEntry, 0, len(items))
			for _, item := range items {
				entries = append(entries, model.RecycleBinEntry{
					ItemType:  adapter.ResourceType(),
					ItemID:    item.ID,
					ItemName:  item.DisplayName,
					DeletedAt: item.DeletedAt,
					DeletedBy: item.DeletedBy,
				})
			}
			slots[i] = entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	total := 0
	for _, slot := range slots {
		total += len(slot)
	}

	merged := make([]model.RecycleBinEntry, 0, total)
	for _, slot := range slots {
		merged = append(merged, slot...)
	}
	sortRecycleBin(merged)

	span.SetAttributes(attribute.Int("recyclebin.items", len(merged)))
	return merged, nil
}

// sortRecycleBin orders entries by deletion time, newest first. Ties keep
// registration order.
func sortRecycleBin(entries []model.RecycleBinEntry) {
	sort.SliceStable(entries, func(i int, j int) bool {
		return entries[i].DeletedAt.After(entries[j].DeletedAt)
	})
}

// SoftDelete moves a live record into the recycle bin on behalf of actor.
func (s *RecycleBinService) SoftDelete(ctx context.Context, itemType string, itemID string, actor model.AuditActor) error {
	ctx, span := s.startItemSpan(ctx, "recyclebin.SoftDelete", itemType, itemID)
	defer span.End()

	adapter, rt, err := s.registry.Resolve(itemType)
	if err != nil {
		recordSpanError(span, err)
		return err
	}

	resource := auditResource(rt, itemID)
	if err := adapter.MarkDeleted(ctx, itemID, actor.UserID); err != nil {
		recordSpanError(span, err)
		s.audit.Log(ctx, model.AuditActionSoftDelete, actor, auditStatusFailed, resource, nil, nil, err.Error())
		return err
	}

	s.invalidate(rt)
	s.audit.Log(ctx, model.AuditActionSoftDelete, actor, auditStatusSuccess, resource, nil, map[string]any{"deleted_by": actor.UserID}, "")
	s.publish(event.TypeItemSoftDeleted, actor, rt, itemID)
	return nil
}

// Restore clears the deletion metadata of a record. Restoring a record that
// is not in the recycle bin succeeds without changes.
func (s *RecycleBinService) Restore(ctx context.Context, itemType string, itemID string, actor model.AuditActor) error {
	ctx, span := s.startItemSpan(ctx, "recyclebin.Restore", itemType, itemID)
	defer span.End()

	adapter, rt, err := s.registry.Resolve(itemType)
	if err != nil {
		recordSpanError(span, err)
		return err
	}

	resource := auditResource(rt, itemID)
	if err := adapter.ClearDeletion(ctx, itemID); err != nil {
		recordSpanError(span, err)
		s.audit.Log(ctx, model.AuditActionRestore, actor, auditStatusFailed, resource, nil, nil, err.Error())
		return err
	}

	s.invalidate(rt)
	s.audit.Log(ctx, model.AuditActionRestore, actor, auditStatusSuccess, resource, nil, nil, "")
	s.publish(event.TypeItemRestored, actor, rt, itemID)
	return nil
}

// PermanentDelete removes a record for good. Types that own external files
// get a bounded, best-effort cleanup first; its failure never blocks the
// purge.
func (s *RecycleBinService) PermanentDelete(ctx context.Context, itemType string, itemID string, actor model.AuditActor) error {
	ctx, span := s.startItemSpan(ctx, "recyclebin.PermanentDelete", itemType, itemID)
	defer span.End()

	adapter, rt, err := s.registry.Resolve(itemType)
	if err != nil {
		recordSpanError(span, err)
		return err
	}

	cleanup := "skipped"
	if cleaner, ok := adapter.(PhysicalCleaner); ok {
		if s.runCleanup(ctx, cleaner, rt, itemID) {
			cleanup = "done"
		} else {
			cleanup = "failed"
		}
	}
	span.SetAttributes(attribute.String("recyclebin.cleanup", cleanup))

	resource := auditResource(rt, itemID)
	before := map[string]any{"cleanup": cleanup}
	if err := adapter.Purge(ctx, itemID); err != nil {
		if cleanup != "skipped" && !errors.Is(err, model.ErrItemNotFound) {
			slog.Error("record purge failed after physical cleanup; stored files may already be gone",
				"item_type", rt, "item_id", itemID, "cleanup", cleanup, "error", err)
		}
		recordSpanError(span, err)
		s.audit.Log(ctx, model.AuditActionPermanentDelete, actor, auditStatusFailed, resource, before, nil, err.Error())
		return err
	}

	s.invalidate(rt)
	s.audit.Log(ctx, model.AuditActionPermanentDelete, actor, auditStatusSuccess, resource, before, nil, "")
	s.publish(event.TypeItemPurged, actor, rt, itemID)
	return nil
}

// runCleanup reports whether cleanup finished successfully within the
// configured timeout. A cleanup still running after the timeout is abandoned.
func (s *RecycleBinService) runCleanup(ctx context.Context, cleaner PhysicalCleaner, rt model.ResourceType, itemID string) bool {
	cleanupCtx, cancel := context.WithTimeout(ctx, s.cleanupTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cleaner.PhysicalCleanup(cleanupCtx, itemID)
	}()

	var err error
	select {
	case err = <-done:
	case <-cleanupCtx.Done():
		err = cleanupCtx.Err()
	}

	if err != nil {
		slog.Warn("physical cleanup failed, purging record anyway",
			"item_type", rt, "item_id", itemID,
			"error", fmt.Errorf("%w: %w", model.ErrCleanupFailed, err))
		return false
	}

	return true
}

func (s *RecycleBinService) invalidate(rt model.ResourceType) {
	for _, inv := range s.invalidators {
		inv.Invalidate(rt)
	}
}

func (s *RecycleBinService) publish(t event.Type, actor model.AuditActor, rt model.ResourceType, itemID string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.New(t, actor.UserID, event.ItemPayload{ItemType: rt.String(), ItemID: itemID}))
}

func (s *RecycleBinService) startItemSpan(ctx context.Context, name string, itemType string, itemID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("recyclebin.item_type", itemType),
		attribute.String("recyclebin.item_id", itemID),
	))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func auditResource(rt model.ResourceType, itemID string) string {
	return rt.String() + "/" + itemID
}
