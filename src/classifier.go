package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Two-state hysteresis classifier.
 *
 * A trailing ring of descriptor scores drives per-class up-counters
 * against minimum dwell times. A transition is confirmed only after a
 * sustained run of one tendency; a pending transition contested for
 * too long is cancelled outright.
 *
 *----------------------------------------------------------------*/

// Mode is the run's detected class.
type Mode int

const (
	ModeNone Mode = iota
	ModeMusic
	ModeTalk
)

func (m Mode) String() string {
	switch m {
	case ModeMusic:
		return "MUSIC"
	case ModeTalk:
		return "TALK"
	default:
		return "NONE"
	}
}

// Transition is emitted when the classifier confirms a mode change.
type Transition struct {
	From, To         Mode
	TransitionSample int64
}

// Classifier converts a stream of per-window scores into confirmed
// MUSIC/TALK transitions with hysteresis: minimum dwell per class and
// an ambiguity timeout that washes out a stalled pending transition.
type Classifier struct {
	threshold float64

	scores *scoreRing

	currentMode Mode
	musicUp     int
	talkUp      int
	pendUp      int

	minMusic int
	minTalk  int
	maxPend  int

	rate int

	confirmedSample int64
	cancellations   int
}

// NewClassifier builds a classifier for the given sample rate and
// tendency threshold (DefaultThreshold unless overridden by the
// defaults file or the -m/-t flags).
func NewClassifier(rate int, threshold float64) *Classifier {
	return &Classifier{
		threshold: threshold,
		scores:    newScoreRing(),
		rate:      rate,
		minMusic:  minMusicCount(),
		minTalk:   minTalkCount(),
		maxPend:   maxPendCount(),
	}
}

// CurrentMode reports the classifier's confirmed mode.
func (c *Classifier) CurrentMode() Mode { return c.currentMode }

// ConfirmedSample reports the frontier up to which decisions are final.
// Audio before this sample index can never be touched by a future
// transition, so the splicer may safely write or discard it.
func (c *Classifier) ConfirmedSample() int64 { return c.confirmedSample }

// Cancellations reports how many pending transitions were washed out
// by sustained ambiguity rather than confirmed.
func (c *Classifier) Cancellations() int { return c.cancellations }

// Push feeds one descriptor's signed score into the trailing average
// and advances the state machine. numSamples is the total count of
// mono samples analyzed up to and including the window that produced
// this score. It returns a non-nil Transition exactly when a mode
// change is confirmed this step.
func (c *Classifier) Push(score int, numSamples int64) *Transition {
	full := c.scores.push(score)

	if full {
		tendency := ModeTalk
		if float64(c.scores.Sum()) > c.threshold*float64(AverageCount) {
			tendency = ModeMusic
		}

		switch tendency {
		case ModeMusic:
			if c.currentMode != ModeMusic {
				c.musicUp++
			} else if c.talkUp > 0 {
				c.talkUp--
			}
		case ModeTalk:
			if c.currentMode != ModeTalk {
				c.talkUp++
			} else if c.musicUp > 0 {
				c.musicUp--
			}
		}
	}

	var transition *Transition

	pending := c.musicUp > 0 || c.talkUp > 0
	if pending {
		c.pendUp++
		if c.pendUp >= c.maxPend {
			// Contested for the full ambiguity budget without ever
			// reaching a dwell minimum: cancel outright.
			c.musicUp = 0
			c.talkUp = 0
			c.pendUp = 0
			c.cancellations++
			pending = false
		}
	} else {
		c.pendUp = 0
	}

	// The newly dominant class began to win half a window-plus-average
	// span ago; that center is the crossfade anchor.
	anchor := numSamples - int64(roundInt((WindowSeconds+AverageSeconds)*float64(c.rate)/2))

	switch {
	case c.musicUp >= c.minMusic && c.currentMode != ModeMusic:
		transition = &Transition{From: c.currentMode, To: ModeMusic, TransitionSample: anchor}
		c.currentMode = ModeMusic
		c.musicUp, c.talkUp, c.pendUp = 0, 0, 0
	case c.talkUp >= c.minTalk && c.currentMode != ModeTalk:
		transition = &Transition{From: c.currentMode, To: ModeTalk, TransitionSample: anchor}
		c.currentMode = ModeTalk
		c.musicUp, c.talkUp, c.pendUp = 0, 0, 0
	}

	if !pending && transition == nil {
		c.confirmedSample = numSamples - int64(roundInt(
			(WindowSeconds+AverageSeconds)*float64(c.rate)/2+
				StepSeconds*float64(c.rate)/2+
				CrossfadeSecs*float64(c.rate)/2))
	}

	return transition
}
