package journey

// Source names an upstream collection.
type Source string

const (
	SourceRecords  Source = "records"
	SourceSessions Source = "sessions"
)

// Feed delivers upstream change notifications to a single consumer.
//
// Notifications coalesce: while one is pending, further ones are dropped.
// The consumer rebuilds from the current upstream state, so nothing is lost.
type Feed struct {
	ch chan Source
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan Source, 1)}
}

// Notify records that source changed. It never blocks.
func (f *Feed) Notify(source Source) {
	if f == nil {
		return
	}
	select {
	case f.ch <- source:
	default:
	}
}

// C returns the notification channel.
func (f *Feed) C() <-chan Source {
	return f.ch
}
