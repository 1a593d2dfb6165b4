// Package backlog manages the staging area of candidate terms and their
// promotion into scheduled cards. Exact-key duplicates are enforced here
// (and backed by a unique constraint in storage); fuzzy matches are
// returned as advisory suggestions and never block an insert on their own.
package backlog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/lexbox/internal/database"
	"github.com/example/lexbox/internal/dedup"
	"github.com/example/lexbox/pkg/models"
)

var (
	// ErrDuplicate means the owner already has a card or backlog item with
	// the same normalized key
	ErrDuplicate = errors.New("backlog: term already exists for this owner")
	// ErrDailyLimitReached means the owner hit their daily new-card quota
	ErrDailyLimitReached = errors.New("backlog: daily new card limit reached")
	// ErrNotEligible means the item's scheduled_for time has not passed yet
	ErrNotEligible = errors.New("backlog: item is not yet eligible for promotion")
	// ErrEmptyTerm means the term normalized to nothing
	ErrEmptyTerm = errors.New("backlog: term is empty after normalization")
)

// Enricher produces the opaque card content for a term. The service never
// inspects the result beyond attaching it to the card.
type Enricher interface {
	Enrich(ctx context.Context, term string) (models.CardContent, error)
}

// suggestionLimit caps the advisory "did you mean" list
const suggestionLimit = 3

// Service coordinates backlog inserts and promotions
type Service struct {
	cards    *database.CardRepository
	items    *database.BacklogRepository
	settings *database.SettingsRepository
	enricher Enricher
}

// NewService creates a backlog service. enricher may be nil; cards are then
// promoted with empty content.
func NewService(enricher Enricher) *Service {
	return &Service{
		cards:    database.NewCardRepository(),
		items:    database.NewBacklogRepository(),
		settings: database.NewSettingsRepository(),
		enricher: enricher,
	}
}

// Add inserts a candidate term into the owner's backlog. Exact duplicates
// (same normalized key on a card or backlog item) are rejected with
// ErrDuplicate. Near-duplicates are returned as suggestions alongside the
// created item; the term is still stored.
func (s *Service) Add(ctx context.Context, userID int64, term string, priority models.Priority, source string, now time.Time) (*models.BacklogItem, []dedup.Match, error) {
	key := dedup.Normalize(term)
	if key == "" {
		return nil, nil, ErrEmptyTerm
	}
	if !priority.IsValid() {
		priority = models.PriorityMedium
	}

	if exists, err := s.cards.ExistsKey(ctx, userID, key); err != nil {
		return nil, nil, err
	} else if exists {
		return nil, nil, ErrDuplicate
	}
	if exists, err := s.items.ExistsKey(ctx, userID, key); err != nil {
		return nil, nil, err
	} else if exists {
		return nil, nil, ErrDuplicate
	}

	// Advisory fuzzy suggestions against existing card terms.
	var suggestions []dedup.Match
	if terms, err := s.cards.Terms(ctx, userID); err == nil {
		suggestions = dedup.FindBestMatches(term, terms, suggestionLimit, dedup.DefaultThreshold)
	} else {
		log.Printf("fuzzy suggestion lookup failed for user %d: %v", userID, err)
	}

	item := &models.BacklogItem{
		ID:            uuid.NewString(),
		UserID:        userID,
		Term:          term,
		NormalizedKey: key,
		ScheduledFor:  now,
		Priority:      priority,
		Source:        source,
		CreatedAt:     now,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, nil, err
	}
	return item, suggestions, nil
}

// Promote turns a backlog item into a scheduled card: box 1, due
// immediately. The backlog item is destroyed on success. The daily quota is
// accounted against created_at of the owner's cards since local midnight.
func (s *Service) Promote(ctx context.Context, itemID string, now time.Time) (*models.Card, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsEligible(now) {
		return nil, ErrNotEligible
	}

	settings, err := s.settings.GetByUser(ctx, item.UserID)
	if err != nil {
		return nil, err
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	created, err := s.cards.CountCreatedSince(ctx, item.UserID, startOfDay)
	if err != nil {
		return nil, err
	}
	if created >= settings.DailyNewLimit {
		return nil, ErrDailyLimitReached
	}

	// Without this check the unique constraint would surface as a raw
	// driver error.
	if exists, err := s.cards.ExistsKey(ctx, item.UserID, item.NormalizedKey); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrDuplicate
	}

	var content models.CardContent
	if s.enricher != nil {
		content, err = s.enricher.Enrich(ctx, item.Term)
		if err != nil {
			// A failed lookup never costs the user their term.
			log.Printf("enrichment failed for %q: %v", item.Term, err)
			content = models.CardContent{}
		}
	}

	card := &models.Card{
		ID:            uuid.NewString(),
		UserID:        item.UserID,
		Term:          item.Term,
		NormalizedKey: item.NormalizedKey,
		Content:       content,
		BoxIndex:      1,
		NextReviewAt:  now, // new cards are immediately due
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Card insert and backlog delete commit together: the owner never holds
	// both a card and a backlog item with the same normalized key.
	tx, err := database.DB.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin promotion: %w", err)
	}
	if err := s.cards.CreateIn(ctx, tx, card); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := s.items.DeleteIn(ctx, tx, itemID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit promotion: %w", err)
	}
	return card, nil
}

// Discard removes a backlog item without promoting it
func (s *Service) Discard(ctx context.Context, itemID string) error {
	return s.items.Delete(ctx, itemID)
}

// CheckBatch runs the cumulative duplicate check for a batch of candidate
// terms against everything the owner already has, cards and backlog alike.
func (s *Service) CheckBatch(ctx context.Context, userID int64, terms []string) (dedup.BatchResult, error) {
	existing, err := s.cards.Keys(ctx, userID)
	if err != nil {
		return dedup.BatchResult{}, err
	}
	backlogKeys, err := s.items.Keys(ctx, userID)
	if err != nil {
		return dedup.BatchResult{}, err
	}
	for k := range backlogKeys {
		existing[k] = true
	}
	return dedup.CheckMany(terms, existing), nil
}
