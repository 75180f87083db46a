package report

import "github.com/efreitasn/matchingengine/internal/domain"

// Reporter is the sink interface shared by everything in this package.
type Reporter interface {
	Report(ev domain.Event)
}

// Multi forwards every event to each of its reporters in order.
type Multi []Reporter

// Fanout combines reporters. A single reporter is returned unchanged.
func Fanout(reporters ...Reporter) Reporter {
	if len(reporters) == 1 {
		return reporters[0]
	}
	return Multi(reporters)
}

// Report forwards ev.
func (m Multi) Report(ev domain.Event) {
	for _, r := range m {
		r.Report(ev)
	}
}
