package validator

// Subscriber dispatches controller events to typed handlers.
type Subscriber struct {
	done                chan struct{}
	startedHandler      func(ControllerStarted)
	boundaryHandler     func(BoundaryChecked)
	cycleStartedHandler func(CycleStarted)
	scoredHandler       func(IdentityScored)
	scoreFailedHandler  func(IdentityScoreFailed)
	submittedHandler    func(WeightsSubmitted)
	submitFailedHandler func(SubmitFailed)
	cycleErrorHandler   func(CycleError)
	shutdownHandler     func(ControllerShutdown)
}

// OnControllerStarted sets the handler for ControllerStarted events
func OnControllerStarted(fn func(ControllerStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.startedHandler = fn }
}

// OnBoundaryChecked sets the handler for BoundaryChecked events
func OnBoundaryChecked(fn func(BoundaryChecked)) func(*Subscriber) {
	return func(s *Subscriber) { s.boundaryHandler = fn }
}

// OnCycleStarted sets the handler for CycleStarted events
func OnCycleStarted(fn func(CycleStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.cycleStartedHandler = fn }
}

// OnIdentityScored sets the handler for IdentityScored events
func OnIdentityScored(fn func(IdentityScored)) func(*Subscriber) {
	return func(s *Subscriber) { s.scoredHandler = fn }
}

// OnIdentityScoreFailed sets the handler for IdentityScoreFailed events
func OnIdentityScoreFailed(fn func(IdentityScoreFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.scoreFailedHandler = fn }
}

// OnWeightsSubmitted sets the handler for WeightsSubmitted events
func OnWeightsSubmitted(fn func(WeightsSubmitted)) func(*Subscriber) {
	return func(s *Subscriber) { s.submittedHandler = fn }
}

// OnSubmitFailed sets the handler for SubmitFailed events
func OnSubmitFailed(fn func(SubmitFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.submitFailedHandler = fn }
}

// OnCycleError sets the handler for CycleError events
func OnCycleError(fn func(CycleError)) func(*Subscriber) {
	return func(s *Subscriber) { s.cycleErrorHandler = fn }
}

// OnControllerShutdown sets the handler for ControllerShutdown events
func OnControllerShutdown(fn func(ControllerShutdown)) func(*Subscriber) {
	return func(s *Subscriber) { s.shutdownHandler = fn }
}

// NewSubscriber creates a Subscriber with the given options and starts the dispatch loop.
// Returns a closer function that blocks until the events channel is drained.
//
// Example:
//
//	closer := validator.NewSubscriber(events,
//	  validator.OnWeightsSubmitted(func(e validator.WeightsSubmitted) { ... }),
//	)
//	defer closer()
func NewSubscriber(events <-chan Event, opts ...func(*Subscriber)) func() {
	s := &Subscriber{
		done:                make(chan struct{}),
		startedHandler:      func(ControllerStarted) {},   // nop by default
		boundaryHandler:     func(BoundaryChecked) {},     // nop by default
		cycleStartedHandler: func(CycleStarted) {},        // nop by default
		scoredHandler:       func(IdentityScored) {},      // nop by default
		scoreFailedHandler:  func(IdentityScoreFailed) {}, // nop by default
		submittedHandler:    func(WeightsSubmitted) {},    // nop by default
		submitFailedHandler: func(SubmitFailed) {},        // nop by default
		cycleErrorHandler:   func(CycleError) {},          // nop by default
		shutdownHandler:     func(ControllerShutdown) {},  // nop by default
	}

	for _, opt := range opts {
		opt(s)
	}

	go func() {
		defer close(s.done)
		for ev := range events {
			switch e := ev.(type) {
			case ControllerStarted:
				s.startedHandler(e)
			case BoundaryChecked:
				s.boundaryHandler(e)
			case CycleStarted:
				s.cycleStartedHandler(e)
			case IdentityScored:
				s.scoredHandler(e)
			case IdentityScoreFailed:
				s.scoreFailedHandler(e)
			case WeightsSubmitted:
				s.submittedHandler(e)
			case SubmitFailed:
				s.submitFailedHandler(e)
			case CycleError:
				s.cycleErrorHandler(e)
			case ControllerShutdown:
				s.shutdownHandler(e)
			}
		}
	}()

	return func() {
		<-s.done
	}
}
