package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Single-threaded synchronous pipeline wiring the input
 * stage, window analyzer, scorer, classifier and splicer.
 *
 * Ordering inside the loop is by monotonically increasing sample
 * index; there are no goroutines or channels. Latency is set by the
 * look-ahead constants, not by scheduling.
 *
 *----------------------------------------------------------------*/

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/charmbracelet/log"
)

// readBlockSeconds bounds each input read to at most one second of
// audio.
const readBlockSeconds = 1

// Pipeline owns every stage and ring buffer for one run. All buffers
// are allocated in NewPipeline; nothing is allocated per sample in the
// steady state.
type Pipeline struct {
	cfg    Config
	tensor *Tensor
	logger *log.Logger

	input      *inputStage
	analyzer   *windowAnalyzer
	classifier *Classifier
	splicer    *Splicer

	analysisOut io.Writer
	progress    *progressReporter

	numSamples    int64
	lastScore     int8
	cancellations int
}

// NewPipeline allocates every stage from cfg and tensor. analysisOut
// may be nil if -a was not requested.
func NewPipeline(cfg Config, tensor *Tensor, out io.Writer, analysisOut io.Writer, logger *log.Logger) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		tensor:      tensor,
		logger:      logger,
		input:       newInputStage(cfg.Rate, cfg.Channels),
		analyzer:    newWindowAnalyzer(cfg.Rate),
		classifier:  NewClassifier(cfg.Rate, cfg.Threshold),
		splicer:     NewSplicer(cfg.Rate, out, cfg.Policy, cfg.KeepAlive),
		analysisOut: analysisOut,
	}
	if logger != nil && cfg.Verbose {
		p.progress = newProgressReporter(logger, cfg.Rate, cfg.ProgressSeconds)
	}
	return p
}

// Run drives raw PCM from r to the splicer's configured output until
// EOF, then drains the output ring.
func (p *Pipeline) Run(r io.Reader) error {
	frameBytes := 2 * p.cfg.Channels
	blockFrames := readBlockSeconds * p.cfg.Rate
	buf := make([]byte, blockFrames*frameBytes)

	for {
		n, err := io.ReadAtLeast(r, buf, frameBytes)
		if n > 0 {
			if perr := p.processBlock(buf[:n-(n%frameBytes)]); perr != nil {
				return perr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return resourceError("reading input", err)
		}
	}

	return p.splicer.Drain()
}

func (p *Pipeline) processBlock(block []byte) error {
	frameBytes := 2 * p.cfg.Channels
	for off := 0; off+frameBytes <= len(block); off += frameBytes {
		l := int16(binary.LittleEndian.Uint16(block[off:]))
		r := l
		if p.cfg.Channels == 2 {
			r = int16(binary.LittleEndian.Uint16(block[off+2:]))
		}
		if err := p.processFrame(l, r); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) processFrame(l, r int16) error {
	mono := p.input.downmix(l, r)
	filtered, energy := p.input.push(mono)
	p.numSamples++

	if desc, full := p.analyzer.push(energy); full {
		if err := p.emitDescriptor(desc); err != nil {
			return err
		}

		score := p.tensor.Score(desc)
		p.lastScore = score

		if t := p.classifier.Push(int(score), p.numSamples); t != nil {
			if err := p.splicer.HandleTransition(*t); err != nil {
				return err
			}
			if p.logger != nil {
				p.logger.Debug("transition confirmed",
					"from", t.From.String(), "to", t.To.String(),
					"sample", t.TransitionSample)
			}
			if p.progress != nil {
				p.progress.noteTransition()
			}
		}
		if c := p.classifier.Cancellations(); c > p.cancellations {
			p.cancellations = c
			if p.logger != nil {
				p.logger.Info("pending transition cancelled after sustained ambiguity",
					"sample", p.numSamples)
			}
		}
	}

	outL, outR := p.debugSamples(l, r, filtered, energy)
	if err := p.splicer.Push(outL, outR); err != nil {
		return err
	}

	confirmed := p.classifier.ConfirmedSample()
	if err := p.splicer.MaybeFlush(confirmed); err != nil {
		return err
	}

	if p.progress != nil {
		p.progress.maybeReport(p.numSamples, p.splicer.CurrentMode(), p.splicer.SamplesWritten(), p.splicer.SamplesDiscarded())
	}
	return nil
}

// debugSamples applies the -l/-r channel selectors; the normal mode
// writes left=input[0], right=input[channels-1].
func (p *Pipeline) debugSamples(l, r int16, filtered, energy float64) (int16, int16) {
	mono := l
	if p.cfg.Channels == 2 {
		mono = saturateInt16((float64(l) + float64(r)) / 2)
	}
	return p.debugChannel(p.cfg.LeftDebug, l, mono, filtered, energy),
		p.debugChannel(p.cfg.RightDebug, r, mono, filtered, energy)
}

func (p *Pipeline) debugChannel(sel DebugChannel, raw, mono int16, filtered, energy float64) int16 {
	switch sel {
	case DebugMono:
		return mono
	case DebugFiltered:
		return saturateInt16(filtered)
	case DebugLevel:
		return saturateInt16(levelToInt16(energy))
	case DebugTensor:
		return scoreToInt16(p.lastScore)
	default:
		return raw
	}
}

// levelToInt16 maps a mean-square energy value (roughly [0, 32768^2])
// onto the int16 range via its square root, so the level channel is
// viewable as a waveform envelope in an audio editor.
func levelToInt16(energy float64) float64 {
	if energy < 0 {
		energy = 0
	}
	return math.Sqrt(energy)
}

// scoreToInt16 maps a signed tensor score in [-99,99] onto the int16
// range. The value holds constant for the duration of each analysis
// window, so the tensor channel plots the classifier's view over time.
func scoreToInt16(score int8) int16 {
	return int16(int(score) * 32767 / TensorScoreMax)
}

// emitDescriptor writes one descriptor record to the analysis output,
// if configured.
func (p *Pipeline) emitDescriptor(d Descriptor) error {
	if p.analysisOut == nil {
		return nil
	}
	if _, err := p.analysisOut.Write(d.MarshalBinary()); err != nil {
		return resourceError("writing descriptor record", err)
	}
	return nil
}
