package trace

import "github.com/sirupsen/logrus"

// Sink receives customer events as they happen.
// Implementations must not mutate simulation state.
type Sink interface {
	Emit(rec Record)
}

// Recorder collects records in memory, in emission order.
type Recorder struct {
	Records []Record
}

// NewRecorder creates a Recorder ready for recording.
func NewRecorder() *Recorder {
	return &Recorder{Records: make([]Record, 0)}
}

// Emit appends a record.
func (r *Recorder) Emit(rec Record) {
	r.Records = append(r.Records, rec)
}

// Filter returns the records of the given kind.
func (r *Recorder) Filter(kind Kind) []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

// LogSink writes every record as a timestamped debug line.
type LogSink struct {
	Logger logrus.FieldLogger
}

// Emit logs the record at debug level.
func (l LogSink) Emit(rec Record) {
	logger := l.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"run":      rec.RunID,
		"customer": rec.Customer,
		"event":    string(rec.Kind),
	}).Debug(rec.String())
}

// Multi fans a record out to several sinks, in order.
type Multi []Sink

// Emit forwards rec to every non-nil sink.
func (m Multi) Emit(rec Record) {
	for _, s := range m {
		if s != nil {
			s.Emit(rec)
		}
	}
}
