package ai

// Observer receives progress and status notifications from the pipeline.
// Implementations should not panic, but the pipeline isolates each call
// defensively so a misbehaving observer cannot stop processing.
type Observer interface {
	// OnProgress reports overall completion as a percentage in [0, 100].
	OnProgress(percent int)
	// OnStatus reports a human-readable status message.
	OnStatus(message string)
}

// NopObserver is an Observer that discards all notifications.
type NopObserver struct{}

func (NopObserver) OnProgress(int)  {}
func (NopObserver) OnStatus(string) {}

// safeProgress invokes OnProgress, swallowing any panic from the observer.
func safeProgress(obs Observer, percent int) {
	if obs == nil {
		return
	}
	defer func() { _ = recover() }()
	obs.OnProgress(percent)
}

// safeStatus invokes OnStatus, swallowing any panic from the observer.
func safeStatus(obs Observer, message string) {
	if obs == nil {
		return
	}
	defer func() { _ = recover() }()
	obs.OnStatus(message)
}
