package services

// Recorder receives auth outcome events. *metrics.Metrics implements it.
type Recorder interface {
	ObserveRegistration(outcome string)
	ObserveLogin(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRegistration(string) {}
func (nopRecorder) ObserveLogin(string)        {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
