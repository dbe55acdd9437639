package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Structured logging and periodic progress reporting.
 *
 *----------------------------------------------------------------*/

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// NewLogger builds the run's logger: quiet drops everything below
// error, verbose drops to debug, the default is info. All operator
// messages go to stderr; stdout carries the PCM output stream.
func NewLogger(w io.Writer, quiet, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	switch {
	case quiet:
		l.SetLevel(log.ErrorLevel)
	case verbose:
		l.SetLevel(log.DebugLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// progressReporter emits a status line every ProgressSeconds of
// processed audio.
type progressReporter struct {
	logger      *log.Logger
	rate        int
	period      int64 // samples between reports
	lastMark    int64
	transitions int
}

func newProgressReporter(logger *log.Logger, rate, periodSeconds int) *progressReporter {
	return &progressReporter{logger: logger, rate: rate, period: int64(periodSeconds) * int64(rate)}
}

func (p *progressReporter) noteTransition() { p.transitions++ }

// maybeReport logs a progress line if period samples have elapsed
// since the last one.
func (p *progressReporter) maybeReport(numSamples int64, mode Mode, written, discarded int64) {
	if p.period <= 0 || numSamples-p.lastMark < p.period {
		return
	}
	p.lastMark = numSamples

	elapsed := time.Duration(float64(numSamples) / float64(p.rate) * float64(time.Second))
	stamp, _ := strftime.Format("%H:%M:%S", time.Time{}.Add(elapsed))

	p.logger.Info("progress",
		"elapsed", stamp,
		"mode", mode.String(),
		"written", written,
		"discarded", discarded,
		"transitions", p.transitions,
	)
}
