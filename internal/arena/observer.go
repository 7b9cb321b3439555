package arena

// Drop reasons reported to Observer.ObserveDrop.
const (
	DropUnknownType = "unknown_type"
	DropMalformed   = "malformed"
)

// Observer is notified of merge results. Implementations must not touch
// the arena that is reporting.
type Observer interface {
	ObserveAssign(Outcome)
	ObserveDrop(reason string)
}

type nopObserver struct{}

func (nopObserver) ObserveAssign(Outcome) {}
func (nopObserver) ObserveDrop(string)    {}
