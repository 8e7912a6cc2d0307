package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/config"
	"github.com/mauv0809/courtqueue/internal/match"
	"github.com/mauv0809/courtqueue/internal/metrics"
	"github.com/mauv0809/courtqueue/internal/notifier"
	"github.com/mauv0809/courtqueue/internal/pubsub"
	"github.com/mauv0809/courtqueue/internal/queue"
)

// New creates a new Service. dryRun is passed through to result notifications.
func New(store match.Store, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, catalog config.Catalog, dryRun bool) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
		catalog:  catalog,
		dryRun:   dryRun,
		now:      time.Now,
	}
}

// Register creates a pending match in the registration's scope.
func (s *Service) Register(ctx context.Context, r Registration) (*match.Match, error) {
	defer s.observe("register", time.Now())
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	m := &match.Match{
		Scope:   r.Scope.Normalize(),
		Player1: strings.TrimSpace(r.Player1),
		Player2: strings.TrimSpace(r.Player2),
		Status:  match.StatusPending,
	}
	if m.Player1 == "" || m.Player2 == "" {
		return nil, fmt.Errorf("%w: both player names are required", match.ErrValidation)
	}
	if err := s.validateScope(m.Scope); err != nil {
		return nil, err
	}
	if r.Tags != nil {
		tags := match.Tags{
			RoundType: strings.TrimSpace(r.Tags.RoundType),
			Gender:    strings.TrimSpace(r.Tags.Gender),
			MatchType: strings.TrimSpace(r.Tags.MatchType),
		}
		if tags != (match.Tags{}) {
			if m.Scope.Kind == match.KindGroup {
				return nil, fmt.Errorf("%w: group matches have no round, gender or match type", match.ErrValidation)
			}
			if err := s.validateTags(&tags.RoundType, &tags.Gender, &tags.MatchType); err != nil {
				return nil, err
			}
			m.Tags = &tags
		}
	}

	id, err := s.store.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id

	log.Info("Registered match", "id", id, "scope", m.Scope, "player1", m.Player1, "player2", m.Player2)
	s.metrics.IncMatchesRegistered(string(m.Scope.Kind))
	s.publish(pubsub.EventMatchRegistered, m)
	return m, nil
}

// Edit changes the descriptive fields or player names of a match. Status and
// scores are never touched, and finished matches may still be edited.
func (s *Service) Edit(ctx context.Context, id int64, e match.Edit) (*match.Match, error) {
	defer s.observe("edit", time.Now())
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	var err error
	if e.Player1, err = trimPlayer(e.Player1); err != nil {
		return nil, err
	}
	if e.Player2, err = trimPlayer(e.Player2); err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.TouchesTags() {
		if current.Scope.Kind == match.KindGroup {
			return nil, fmt.Errorf("%w: group matches have no round, gender or match type", match.ErrValidation)
		}
		if err := s.validateTags(e.RoundType, e.Gender, e.MatchType); err != nil {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, id, e); err != nil {
		return nil, err
	}
	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info("Edited match", "id", id, "scope", updated.Scope)
	s.metrics.IncMatchesEdited()
	s.publish(pubsub.EventMatchUpdated, updated)
	return updated, nil
}

// RecordResult stores the scores and marks the match finished. Recording again
// overwrites the previous scores.
func (s *Service) RecordResult(ctx context.Context, id int64, score1, score2 int) (*match.Match, error) {
	defer s.observe("record_result", time.Now())
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if score1 < 0 || score2 < 0 {
		return nil, fmt.Errorf("%w: scores cannot be negative", match.ErrValidation)
	}

	if err := s.store.SetResult(ctx, id, score1, score2); err != nil {
		return nil, err
	}
	finished, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info("Recorded result", "id", id, "scope", finished.Scope, "score1", score1, "score2", score2)
	s.metrics.IncResultsRecorded()
	s.publish(pubsub.EventMatchFinished, finished)
	if err := s.notifier.SendResultNotification(finished, s.dryRun || isDryRun(ctx)); err != nil {
		log.Error("Failed to send result notification", "error", err, "id", id)
	}
	return finished, nil
}

// Delete removes a match in any status.
func (s *Service) Delete(ctx context.Context, id int64) error {
	defer s.observe("delete", time.Now())
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("Deleted match", "id", id, "scope", current.Scope, "status", current.Status)
	s.metrics.IncMatchesDeleted()
	s.publish(pubsub.EventMatchDeleted, current)
	return nil
}

// ListPending returns the numbered queue of scope. Available to every caller.
func (s *Service) ListPending(ctx context.Context, scope match.Scope) ([]queue.Entry, error) {
	defer s.observe("list_pending", time.Now())
	scope = scope.Normalize()
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return queue.Pending(ctx, s.store, scope)
}

// Get returns one match by id.
func (s *Service) Get(ctx context.Context, id int64) (*match.Match, error) {
	return s.store.Get(ctx, id)
}

// Results returns finished matches selected by f, oldest first.
func (s *Service) Results(ctx context.Context, f match.Filter) ([]*match.Match, error) {
	defer s.observe("results", time.Now())
	f.Status = match.StatusFinished
	f.Scope = nil
	return s.store.Find(ctx, f)
}

// Catalog returns the enumerated options accepted by Register and Edit.
func (s *Service) Catalog() config.Catalog {
	return s.catalog
}

func trimPlayer(p *string) (*string, error) {
	if p == nil {
		return nil, nil
	}
	name := strings.TrimSpace(*p)
	if name == "" {
		return nil, fmt.Errorf("%w: player names cannot be empty", match.ErrValidation)
	}
	return &name, nil
}

func requireAdmin(ctx context.Context) error {
	if !auth.FromContext(ctx).IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) validateScope(scope match.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	switch scope.Kind {
	case match.KindOfficial:
		if !s.catalog.AllowsCourt(scope.Tournament, scope.Place, scope.Court) {
			return fmt.Errorf("%w: unknown court %s", match.ErrValidation, scope)
		}
	case match.KindGroup:
		if !s.catalog.AllowsGroup(scope.Group) {
			return fmt.Errorf("%w: unknown group %q", match.ErrValidation, scope.Group)
		}
	}
	return nil
}

// validateTags checks each set tag against the catalog. Nil and empty tags are unset.
func (s *Service) validateTags(roundType, gender, matchType *string) error {
	if isSet(roundType) && !s.catalog.AllowsRoundType(*roundType) {
		return fmt.Errorf("%w: unknown round type %q", match.ErrValidation, *roundType)
	}
	if isSet(gender) && !s.catalog.AllowsGender(*gender) {
		return fmt.Errorf("%w: unknown gender %q", match.ErrValidation, *gender)
	}
	if isSet(matchType) && !s.catalog.AllowsMatchType(*matchType) {
		return fmt.Errorf("%w: unknown match type %q", match.ErrValidation, *matchType)
	}
	return nil
}

func isSet(tag *string) bool {
	return tag != nil && *tag != ""
}

func (s *Service) observe(operation string, start time.Time) {
	s.metrics.ObserveOperationDuration(operation, time.Since(start).Seconds())
}

// publish sends a lifecycle event. The write has already committed, so a
// failure is logged and counted only.
func (s *Service) publish(event pubsub.EventType, m *match.Match) {
	err := s.pubsub.SendMessage(event, pubsub.MatchEvent{
		Type:       event,
		MatchID:    m.ID,
		Kind:       string(m.Scope.Kind),
		Scope:      m.Scope.String(),
		Player1:    m.Player1,
		Player2:    m.Player2,
		Score1:     m.Score1,
		Score2:     m.Score2,
		Status:     string(m.Status),
		OccurredAt: s.now(),
	})
	if err != nil {
		s.metrics.IncEventsFailed()
		log.Error("Failed to publish match event", "error", err, "event", event, "id", m.ID)
		return
	}
	s.metrics.IncEventsPublished()
}
