package journey

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// InsightsKey is the key-value slot holding the serialized insight collection.
const InsightsKey = "journey.insights"

const insightsVersion = 1

// KeyValue is a single-slot-per-key blob store.
type KeyValue interface {
	// Get returns the stored value. A missing key is an error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

type insightsEnvelope struct {
	Version  int           `json:"version"`
	Insights []UnifiedItem `json:"insights"`
}

// InsightPersistence loads and saves the whole insight collection as one blob.
// Failures are logged and otherwise ignored: callers keep whatever they hold in memory.
type InsightPersistence struct {
	kv     KeyValue
	key    string
	logger *slog.Logger
}

// NewInsightPersistence creates an adapter over kv using InsightsKey.
func NewInsightPersistence(kv KeyValue) *InsightPersistence {
	return &InsightPersistence{
		kv:     kv,
		key:    InsightsKey,
		logger: slog.Default(),
	}
}

// Load returns the stored insights, or an empty collection when the slot is
// missing or cannot be decoded.
func (p *InsightPersistence) Load(ctx context.Context) []UnifiedItem {
	if p == nil || p.kv == nil {
		return []UnifiedItem{}
	}

	raw, err := p.kv.Get(ctx, p.key)
	if err != nil {
		p.logger.DebugContext(ctx, "no stored insights", "key", p.key, "error", err)
		return []UnifiedItem{}
	}

	insights, err := decodeInsights(raw)
	if err != nil {
		p.logger.WarnContext(ctx, "discarding unreadable insights", "key", p.key, "error", err)
		return []UnifiedItem{}
	}
	return insights
}

// Save overwrites the stored blob with insights.
func (p *InsightPersistence) Save(ctx context.Context, insights []UnifiedItem) {
	if p == nil || p.kv == nil {
		return
	}

	raw, err := json.Marshal(insightsEnvelope{Version: insightsVersion, Insights: insights})
	if err != nil {
		p.logger.WarnContext(ctx, "failed to encode insights", "error", err)
		return
	}
	if err := p.kv.Set(ctx, p.key, raw); err != nil {
		p.logger.WarnContext(ctx, "failed to save insights", "key", p.key, "count", len(insights), "error", err)
	}
}

func decodeInsights(raw []byte) ([]UnifiedItem, error) {
	var env insightsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Version != insightsVersion {
		return nil, fmt.Errorf("unsupported insights version %d", env.Version)
	}
	if env.Insights == nil {
		return []UnifiedItem{}, nil
	}
	return env.Insights, nil
}
