package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
	"github.com/freshcart/marketplace/internal/pkg/pagination"
)

const defaultMaxRetries = 3

// TrustDeps groups the collaborators of TrustService.
type TrustDeps struct {
	Accounts   ports.AccountRepository
	Reviews    ports.ReviewRepository
	Orders     ports.OrderRepository
	Products   ports.ProductRepository
	Audit      ports.SecurityLog
	Publisher  ports.EventPublisher // optional
	Serializer ports.Serializer     // optional, defaults to running inline
}

// TrustService applies reviews and admin adjustments to vendor scores.
//
// Every mutation for a vendor runs through the serializer keyed by vendor ID
// and is written with a version check. A version conflict re-runs the whole
// read, compute and write cycle up to maxRetries times.
type TrustService struct {
	deps       TrustDeps
	maxRetries int
	log        zerolog.Logger
}

func NewTrustService(deps TrustDeps, maxRetries int, log zerolog.Logger) *TrustService {
	if deps.Serializer == nil {
		deps.Serializer = inlineSerializer{}
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &TrustService{deps: deps, maxRetries: maxRetries, log: log}
}

func (s *TrustService) SubmitReview(ctx context.Context, actor domain.Actor, in ports.SubmitReviewInput) (*ports.ReviewResult, error) {
	if !actor.Can(domain.ActionSubmitReview) {
		return nil, domain.ErrForbidden
	}
	if err := trust.ValidateRating(in.Rating); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyReviewText
	}

	order, err := s.deps.Orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != actor.ID {
		return nil, domain.ErrOrderNotFound
	}
	if order.Reviewed {
		return nil, domain.ErrAlreadyReviewed
	}
	if !order.Reviewable() {
		return nil, domain.ErrOrderNotReviewable
	}

	var (
		result   ports.ReviewResult
		previous float64
		version  int64
	)
	err = s.deps.Serializer.Do(ctx, order.VendorID, func(ctx context.Context) error {
		err := s.retryOnConflict(ctx, order.VendorID, func() error {
			vendor, err := s.loadVendor(ctx, order.VendorID)
			if err != nil {
				return err
			}

			out, err := trust.RecordReview(vendor.TrustScore, vendor.ReviewCount, in.Rating)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			review := &domain.Review{
				ID:         uuid.New().String(),
				OrderID:    order.ID,
				VendorID:   vendor.ID,
				CustomerID: actor.ID,
				Rating:     in.Rating,
				Text:       text,
				CreatedAt:  now,
			}
			commit := ports.ReviewCommit{
				Review: review,
				Trust: ports.TrustUpdate{
					AccountID:       vendor.ID,
					ExpectedVersion: vendor.Version,
					Score:           out.NewScore,
					ReviewCount:     out.NewReviewCount,
					Entry: domain.TrustHistoryEntry{
						Score:     out.NewScore,
						Reason:    domain.ReasonCustomerReview,
						Timestamp: now,
					},
				},
			}
			if err := s.deps.Reviews.Commit(ctx, commit); err != nil {
				return err
			}

			previous = vendor.TrustScore
			version = vendor.Version + 1
			result = ports.ReviewResult{
				Review:      review,
				VendorScore: out.NewScore,
				ReviewCount: out.NewReviewCount,
				Tier:        trust.Classify(out.NewScore),
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.propagateToProducts(ctx, order.VendorID, result.VendorScore, version)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTrustChange(ctx, trustChange{
		eventType:   ports.EventTrustReviewRecorded,
		vendorID:    order.VendorID,
		actorID:     actor.ID,
		orderID:     order.ID,
		reason:      domain.ReasonCustomerReview,
		oldScore:    previous,
		newScore:    result.VendorScore,
		reviewCount: result.ReviewCount,
	})

	s.log.Info().
		Str("vendor_id", order.VendorID).
		Str("order_id", order.ID).
		Int("rating", in.Rating).
		Float64("score", result.VendorScore).
		Msg("review recorded")

	return &result, nil
}

func (s *TrustService) AdjustVendorTrust(ctx context.Context, actor domain.Actor, vendorID string, delta int) (*ports.TrustSummary, error) {
	if !actor.Can(domain.ActionManageTrust) {
		return nil, domain.ErrForbidden
	}

	var (
		updated  domain.Account
		previous float64
	)
	err := s.deps.Serializer.Do(ctx, vendorID, func(ctx context.Context) error {
		err := s.retryOnConflict(ctx, vendorID, func() error {
			vendor, err := s.loadVendor(ctx, vendorID)
			if err != nil {
				return err
			}

			score, err := trust.ApplyAdminAdjustment(vendor.TrustScore, delta)
			if err != nil {
				return err
			}

			entry := domain.TrustHistoryEntry{
				Score:     score,
				Reason:    domain.ReasonAdminAdjustment,
				Timestamp: time.Now().UTC(),
			}
			err = s.deps.Accounts.UpdateTrust(ctx, ports.TrustUpdate{
				AccountID:       vendor.ID,
				ExpectedVersion: vendor.Version,
				Score:           score,
				ReviewCount:     vendor.ReviewCount,
				Entry:           entry,
			})
			if err != nil {
				return err
			}

			previous = vendor.TrustScore
			updated = *vendor
			updated.TrustScore = score
			updated.Version++
			updated.TrustHistory = append(slices.Clone(vendor.TrustHistory), entry)
			return nil
		})
		if err != nil {
			return err
		}
		s.propagateToProducts(ctx, vendorID, updated.TrustScore, updated.Version)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTrustChange(ctx, trustChange{
		eventType:   ports.EventTrustAdjusted,
		vendorID:    vendorID,
		actorID:     actor.ID,
		reason:      domain.ReasonAdminAdjustment,
		oldScore:    previous,
		newScore:    updated.TrustScore,
		reviewCount: updated.ReviewCount,
	})

	s.log.Info().
		Str("vendor_id", vendorID).
		Str("admin_id", actor.ID).
		Int("delta", delta).
		Float64("score", updated.TrustScore).
		Msg("vendor trust adjusted")

	return summarize(&updated), nil
}

func (s *TrustService) Summary(ctx context.Context, accountID string) (*ports.TrustSummary, error) {
	account, err := s.deps.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return summarize(account), nil
}

func (s *TrustService) VendorReviews(ctx context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error) {
	page, limit = pagination.Normalize(page, limit)
	return s.deps.Reviews.ListByVendor(ctx, vendorID, page, limit)
}

// loadVendor resolves id to a vendor account.
func (s *TrustService) loadVendor(ctx context.Context, id string) (*domain.Account, error) {
	vendor, err := s.deps.Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor.Role != domain.RoleVendor {
		return nil, fmt.Errorf("%w: %s is not a vendor", domain.ErrUnknownAccount, id)
	}
	return vendor, nil
}

func (s *TrustService) retryOnConflict(ctx context.Context, vendorID string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err = fn(); !errors.Is(err, domain.ErrPersistenceConflict) {
			return err
		}
		s.log.Warn().Str("vendor_id", vendorID).Int("attempt", attempt).Msg("trust write conflict, retrying")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("update trust for %s after %d attempts: %w", vendorID, s.maxRetries, err)
}

type trustChange struct {
	eventType   string
	vendorID    string
	actorID     string
	orderID     string
	reason      string
	oldScore    float64
	newScore    float64
	reviewCount int
}

// propagateToProducts copies a committed score onto the vendor's listings.
// Must run inside the vendor's serialized section. The copy is stamped with
// the account version; a failed copy is repaired by the vendor's next trust
// change or next listing.
func (s *TrustService) propagateToProducts(ctx context.Context, vendorID string, score float64, version int64) {
	if s.deps.Products == nil {
		return
	}
	if err := s.deps.Products.SetVendorTrust(ctx, vendorID, score, version); err != nil {
		s.log.Warn().Err(err).Str("vendor_id", vendorID).Int64("version", version).Msg("failed to propagate trust score to products")
	}
}

// afterTrustChange runs the best-effort side effects of a committed score
// change. None of them can undo the commit.
func (s *TrustService) afterTrustChange(ctx context.Context, c trustChange) {
	if s.deps.Publisher != nil {
		err := s.deps.Publisher.PublishTrustEvent(ctx, ports.TrustEvent{
			Type:        c.eventType,
			VendorID:    c.vendorID,
			Score:       c.newScore,
			ReviewCount: c.reviewCount,
			Reason:      c.reason,
			OrderID:     c.orderID,
			ActorID:     c.actorID,
			OccurredAt:  time.Now().UTC(),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("vendor_id", c.vendorID).Msg("failed to publish trust event")
		}
	}

	recordSecurityEvent(ctx, s.deps.Audit, s.log, c.vendorID, domain.EventTrustScoreUpdated, map[string]string{
		"old_score":  formatScore(c.oldScore),
		"new_score":  formatScore(c.newScore),
		"reason":     c.reason,
		"updated_by": c.actorID,
	})
}

func summarize(a *domain.Account) *ports.TrustSummary {
	return &ports.TrustSummary{
		AccountID:       a.ID,
		Role:            a.Role,
		Score:           a.TrustScore,
		Tier:            trust.Classify(a.TrustScore),
		Description:     trust.LevelDescription(a.TrustScore),
		ReviewCount:     a.ReviewCount,
		LowTrustWarning: trust.NeedsLowTrustWarning(a.TrustScore),
		History:         slices.Clone(a.TrustHistory),
	}
}

// inlineSerializer runs fn on the caller's goroutine. Used when no
// process-wide serializer is wired.
type inlineSerializer struct{}

func (inlineSerializer) Do(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
