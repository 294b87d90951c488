package storage

import (
	"context"

	"scripture-journey/internal/journey"
)

// JourneySource exposes the stored records and sessions as the journey's upstream.
type JourneySource struct {
	records  RecordStore
	sessions SessionStore
}

// NewJourneySource creates a JourneySource.
func NewJourneySource(records RecordStore, sessions SessionStore) *JourneySource {
	return &JourneySource{records: records, sessions: sessions}
}

// JourneyRecords implements journey.Upstream.
func (s *JourneySource) JourneyRecords(ctx context.Context) ([]journey.JourneyRecord, error) {
	return s.records.List(ctx)
}

// GuidedSessions implements journey.Upstream.
func (s *JourneySource) GuidedSessions(ctx context.Context) ([]journey.GuidedSession, error) {
	return s.sessions.List(ctx)
}

var _ journey.Upstream = (*JourneySource)(nil)
var _ journey.KeyValue = (*KVRepo)(nil)
