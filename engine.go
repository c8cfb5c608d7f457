// Package talkbox implements a real-time fixed-point cross-synthesis
// ("talk-box") vocoder: a carrier signal is reshaped, sample by sample, by
// the short-term spectral envelope of a modulator signal, estimated
// block-by-block on a separate analysis thread.
package talkbox

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/cbegin/talkbox-go/internal/autocorr"
	"github.com/cbegin/talkbox-go/internal/config"
	"github.com/cbegin/talkbox-go/internal/diag"
	"github.com/cbegin/talkbox-go/internal/durbin"
	"github.com/cbegin/talkbox-go/internal/fixedpoint"
	"github.com/cbegin/talkbox-go/internal/lpcfilter"
	"github.com/cbegin/talkbox-go/internal/preemphasis"
)

const (
	defaultOrder            = 50
	defaultBlockLength      = 512
	defaultNumACF           = 4
	defaultMemoryRMSSize    = 4
	defaultFractionalDigits = 24

	oneQ1_31 = float64(0x7FFFFFFF) // Q1.31 "one"
)

// Option configures an Engine at construction. The zero-value configuration
// matches the original engine's compile-time constants.
type Option func(*engineConfig)

type engineConfig struct {
	order            int
	blockLength      int
	numACF           int
	memoryRMSSize    int
	fractionalDigits uint
	diagSink         diag.Sink
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		order:            defaultOrder,
		blockLength:      defaultBlockLength,
		numACF:           defaultNumACF,
		memoryRMSSize:    defaultMemoryRMSSize,
		fractionalDigits: defaultFractionalDigits,
		diagSink:         diag.NopSink{},
	}
}

// WithOrder sets the all-pole model order. Fixed for the engine's lifetime.
func WithOrder(order int) Option {
	return func(cfg *engineConfig) { cfg.order = order }
}

// WithBlockLength sets the number of samples analyzed per block. Must be a
// power of two.
func WithBlockLength(n int) Option {
	return func(cfg *engineConfig) { cfg.blockLength = n }
}

// WithNumACF sets how many past per-block autocorrelations are averaged.
// Must be a power of two.
func WithNumACF(n int) Option {
	return func(cfg *engineConfig) { cfg.numACF = n }
}

// WithMemoryRMSSize sets the length of the RMS envelope FIR integrator. Must
// be a power of two.
func WithMemoryRMSSize(n int) Option {
	return func(cfg *engineConfig) { cfg.memoryRMSSize = n }
}

// WithFractionalDigits sets the Q-format of the coefficient vector.
func WithFractionalDigits(n uint) Option {
	return func(cfg *engineConfig) { cfg.fractionalDigits = n }
}

// WithDiagSink installs the sink that receives "timing error" and similar
// diagnostics. The default discards them.
func WithDiagSink(sink diag.Sink) Option {
	return func(cfg *engineConfig) {
		if sink != nil {
			cfg.diagSink = sink
		}
	}
}

// Engine is a single carrier/modulator voice. It is safe for concurrent use
// from exactly two goroutines: one audio thread calling Process, and one
// analysis thread calling CalculateLPCCoefficients.
type Engine struct {
	fs               float64
	order            int
	blockLength      int
	numACF           int
	memoryRMSSize    int
	fractionalDigits uint
	nShiftBlock      uint
	nShiftMemory     uint
	diagSink         diag.Sink

	coeffMu sync.Mutex
	a       []int32 // published coefficients, order entries, Q(32-fractionalDigits).fractionalDigits
	aTmp    []int32 // analysis-thread scratch, copied into a under coeffMu

	lpc *lpcfilter.Filter

	fillBuffer     []int32
	analysisBuffer []int32
	fillPos        int
	blockReady     atomic.Bool

	hp           *preemphasis.Filter
	highPassRaw  atomic.Int32
	memoryRMS    []int32
	acfRing      [][]int32
	acfIndex     int
	acfSmooth    []int32
	acfAlpha0    int32
	acfAlpha1    int32
	gateLevel    atomic.Int32
	voiceRMS     atomic.Int32
	errorGain    atomic.Int32
}

// New constructs an Engine for sample rate fs (Hz), applying the default
// 30ms smoothing time, gate off, and 20kHz pre-emphasis cutoff, matching the
// original engine's constructor.
func New(fs float64, opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		fs:               fs,
		order:            cfg.order,
		blockLength:      cfg.blockLength,
		numACF:           cfg.numACF,
		memoryRMSSize:    cfg.memoryRMSSize,
		fractionalDigits: cfg.fractionalDigits,
		nShiftBlock:      log2Shift(cfg.blockLength),
		nShiftMemory:     log2Shift(cfg.memoryRMSSize),
		diagSink:         cfg.diagSink,

		a:    make([]int32, cfg.order),
		aTmp: make([]int32, cfg.order),
		lpc:  lpcfilter.New(cfg.order, cfg.fractionalDigits),

		fillBuffer:     make([]int32, cfg.blockLength),
		analysisBuffer: make([]int32, cfg.blockLength),

		hp:        preemphasis.New(20000, fs),
		memoryRMS: make([]int32, cfg.memoryRMSSize),
		acfSmooth: make([]int32, cfg.order+1),
	}
	e.acfRing = make([][]int32, cfg.numACF)
	for i := range e.acfRing {
		e.acfRing[i] = make([]int32, cfg.order+1)
	}
	e.highPassRaw.Store(e.hp.Coeff())

	e.SetSmoothingTime(0.03)
	e.gateLevel.Store(0)

	return e
}

// log2Shift returns the base-2 logarithm of n, counted the way the original
// engine counts it (incrementing once per doubling starting at 1).
func log2Shift(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}

// Process is the audio-thread entry point: carrier is shaped by the current
// coefficient vector and returned; modulator is appended to the fill buffer.
// It never allocates and holds the coefficient lock only long enough to run
// one filter step.
func (e *Engine) Process(carrier, modulator int32) int32 {
	y := int32((int64(e.errorGain.Load()) * int64(carrier)) >> 31)
	y = int32((int64(e.voiceRMS.Load()) * int64(y)) >> 31)

	e.coeffMu.Lock()
	out := e.lpc.FilterOne(y, e.a)
	e.coeffMu.Unlock()

	e.fillBuffer[e.fillPos] = modulator
	e.fillPos++

	if e.fillPos == e.blockLength {
		e.fillPos = 0
		if e.blockReady.Load() {
			e.diagSink.TimingError()
		}
		e.fillBuffer, e.analysisBuffer = e.analysisBuffer, e.fillBuffer
		e.blockReady.Store(true)
	}

	return out
}

// CalculateLPCCoefficients is the analysis-thread entry point. It must be
// invoked repeatedly from a non-audio goroutine; it is a no-op whenever no
// block is ready.
func (e *Engine) CalculateLPCCoefficients() {
	if !e.blockReady.Load() {
		return
	}
	b := e.analysisBuffer

	var absVoice int64
	for _, s := range b {
		v := int64(s)
		if v < 0 {
			v = -v
		}
		absVoice += v
	}
	absVoice >>= e.nShiftBlock

	e.hp.SetCoeffRaw(e.highPassRaw.Load())
	for i, s := range b {
		b[i] = e.hp.Process(s)
	}

	copy(e.memoryRMS[1:], e.memoryRMS[:len(e.memoryRMS)-1])
	e.memoryRMS[0] = int32(absVoice)

	var rmsSum int64
	for _, m := range e.memoryRMS {
		rmsSum += int64(m)
	}
	voiceRMS := int32(rmsSum >> e.nShiftMemory)
	if voiceRMS < (1 << 29) {
		voiceRMS <<= 2
	} else {
		voiceRMS = 0x7FFFFFFF
	}
	if voiceRMS < e.gateLevel.Load() {
		voiceRMS = 0
	}
	e.voiceRMS.Store(voiceRMS)

	autocorr.Compute(e.acfRing[e.acfIndex], b)

	numACFShift := log2Shift(e.numACF)
	avg := make([]int32, e.order+1)
	for i := range avg {
		var sum int64
		for j := 0; j < e.numACF; j++ {
			sum += int64(e.acfRing[j][i])
		}
		avg[i] = int32(sum >> numACFShift)
	}
	copy(e.acfRing[e.acfIndex], avg)

	for i := range e.acfSmooth {
		sum := int64(e.acfSmooth[i])*int64(e.acfAlpha0) + int64(avg[i])*int64(e.acfAlpha1)
		e.acfSmooth[i] = int32(sum >> 31)
	}

	if voiceRMS > 0 {
		errPower := durbin.Recurse(e.acfSmooth, e.aTmp, e.order, e.fractionalDigits, durbin.KMax)
		var gain int32
		if errPower > 0 {
			halfLog := fixedpoint.LogFixed(errPower, fixedpoint.LLog) >> 1
			gain = fixedpoint.ExpFixed(halfLog, fixedpoint.ELog)
		}
		e.errorGain.Store(gain)

		e.coeffMu.Lock()
		copy(e.a, e.aTmp)
		e.coeffMu.Unlock()
	} else {
		e.errorGain.Store(0)
	}

	e.acfIndex = (e.acfIndex + 1) % e.numACF
	e.blockReady.Store(false)
}

// SetSmoothingTime sets the exponential-smoothing time constant (seconds)
// applied to the autocorrelation vector between blocks. tau <= 0 disables
// smoothing (alpha = 0, i.e. every block replaces history outright).
func (e *Engine) SetSmoothingTime(tauSeconds float64) {
	var alpha float64
	if tauSeconds > 0 {
		alpha = 1 - float64(e.blockLength)/(tauSeconds*e.fs)
		if alpha < 0 {
			alpha = 0
		}
	}
	e.acfAlpha0 = int32(alpha * oneQ1_31)
	e.acfAlpha1 = int32((1 - alpha) * oneQ1_31)
}

// SetGateLevel sets the voice-RMS gate threshold, clamped to [0, 1].
func (e *Engine) SetGateLevel(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	e.gateLevel.Store(int32(level * oneQ1_31))
}

// SetPreemphasis sets the pre-emphasis high-pass cutoff in Hz, clamped below
// Nyquist. Takes effect on the next CalculateLPCCoefficients call.
func (e *Engine) SetPreemphasis(fcHz float64) {
	nyquist := e.fs / 2
	if fcHz >= nyquist {
		fcHz = nyquist - 1
	}
	if fcHz < 0 {
		fcHz = 0
	}
	e.highPassRaw.Store(preemphasis.CoeffForCutoff(fcHz, e.fs))
}

// ApplyPreset applies a config.Preset through the engine's own setters, so
// the usual parameter clamping still applies.
func (e *Engine) ApplyPreset(p config.Preset) {
	e.SetSmoothingTime(p.SmoothingTimeSeconds)
	e.SetGateLevel(p.GateLevel)
	e.SetPreemphasis(p.PreemphasisHz)
}

// GetNumCoeffs returns the all-pole model order.
func (e *Engine) GetNumCoeffs() int {
	return e.order
}

// GetCoefficients writes the current coefficient vector into out as
// floating-point values, scaled by the coefficient Q-format. out must have
// length >= GetNumCoeffs().
func (e *Engine) GetCoefficients(out []float64) {
	scale := float64(int64(1) << e.fractionalDigits)
	e.coeffMu.Lock()
	defer e.coeffMu.Unlock()
	for i := 0; i < e.order; i++ {
		out[i] = float64(e.a[i]) / scale
	}
}

// GetPreemphasis returns the current pre-emphasis coefficient as a float in
// [-1, 1].
func (e *Engine) GetPreemphasis() float64 {
	return float64(e.highPassRaw.Load()) / oneQ1_31
}

// GetErrorGain returns the current prediction-error gain (sqrt of residual
// error power), a float in [0, 1].
func (e *Engine) GetErrorGain() float64 {
	return float64(e.errorGain.Load()) / oneQ1_31
}

// GetVoiceGain returns the current gated voice-RMS envelope, a float in
// [0, 1].
func (e *Engine) GetVoiceGain() float64 {
	return float64(e.voiceRMS.Load()) / oneQ1_31
}

// ResetStates zeroes all runtime state: buffers, delay lines, accumulators,
// gains, and the block-ready rendezvous flag. Configuration (order, block
// length, smoothing, gate, pre-emphasis) is left untouched.
func (e *Engine) ResetStates() {
	e.coeffMu.Lock()
	for i := range e.a {
		e.a[i] = 0
	}
	e.coeffMu.Unlock()
	for i := range e.aTmp {
		e.aTmp[i] = 0
	}
	e.lpc.Reset()
	for i := range e.fillBuffer {
		e.fillBuffer[i] = 0
	}
	for i := range e.analysisBuffer {
		e.analysisBuffer[i] = 0
	}
	e.fillPos = 0
	e.blockReady.Store(false)
	e.hp.Reset()
	for i := range e.memoryRMS {
		e.memoryRMS[i] = 0
	}
	for _, row := range e.acfRing {
		for i := range row {
			row[i] = 0
		}
	}
	e.acfIndex = 0
	for i := range e.acfSmooth {
		e.acfSmooth[i] = 0
	}
	e.voiceRMS.Store(0)
	e.errorGain.Store(0)
}
