// Command talkboxdemo drives a talkbox.Engine against synthetic carrier and
// modulator streams and plays the result through the system's audio output.
// It exists to exercise the engine end-to-end, not as a production host.
package main

import (
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"

	"github.com/cbegin/talkbox-go"
	intaudio "github.com/cbegin/talkbox-go/internal/audio"
	"github.com/cbegin/talkbox-go/internal/config"
	"github.com/cbegin/talkbox-go/internal/diag"
)

// voiceSource is the audio-thread side of the demo: it synthesizes a carrier
// buzz and a formant-swept modulator, runs them through the engine sample by
// sample, and hands the shaped carrier to the audio backend as a (mono
// duplicated to stereo) float32 stream.
type voiceSource struct {
	engine     *talkbox.Engine
	sampleRate int
	carrierHz  float64
	phase      float64
	t          float64
}

func (v *voiceSource) Process(dst []float32) {
	frames := len(dst) / 2
	dt := 1.0 / float64(v.sampleRate)
	for i := 0; i < frames; i++ {
		v.phase += v.carrierHz * dt
		if v.phase >= 1 {
			v.phase -= math.Trunc(v.phase)
		}
		carrier := sawtooth(v.phase) * 0.8 * float64(math.MaxInt32)

		modulator := formantSweep(v.t) * 0.8 * float64(math.MaxInt32)
		v.t += dt

		out := v.engine.Process(int32(carrier), int32(modulator))
		sample := float32(out) / float32(math.MaxInt32)
		dst[i*2] = sample
		dst[i*2+1] = sample
	}
}

func sawtooth(phase float64) float64 {
	return 2*phase - 1
}

// formantSweep synthesizes a vowel-like signal whose two lowest formants
// drift slowly, giving the analysis thread something nontrivial to track.
func formantSweep(t float64) float64 {
	f1 := 500 + 200*math.Sin(2*math.Pi*0.2*t)
	f2 := 1500 + 400*math.Cos(2*math.Pi*0.13*t)
	fundamental := 120.0
	return (math.Sin(2*math.Pi*f1*t) + math.Sin(2*math.Pi*f2*t) + 0.5*math.Sin(2*math.Pi*fundamental*t)) / 2.5
}

func main() {
	var (
		sampleRate   = pflag.IntP("sample-rate", "r", 48000, "output sample rate")
		carrierHz    = pflag.Float64P("carrier-hz", "c", 110, "carrier fundamental frequency in Hz")
		order        = pflag.IntP("order", "o", 50, "all-pole model order")
		presetPath   = pflag.StringP("preset", "p", "", "path to a YAML parameter preset")
		seconds      = pflag.Float64P("duration", "d", 0, "stop after N seconds (0 = run until interrupted)")
		analysisHz   = pflag.Float64("analysis-rate", 200, "analysis-thread poll rate in Hz")
		verbose      = pflag.BoolP("verbose", "v", false, "log engine meters periodically")
	)
	pflag.Parse()

	engine := talkbox.New(float64(*sampleRate), talkbox.WithOrder(*order), talkbox.WithDiagSink(diag.NewStdLogSink(nil)))

	if *presetPath != "" {
		preset, err := config.LoadPreset(*presetPath)
		if err != nil {
			log.Fatal(err)
		}
		engine.ApplyPreset(preset)
	}

	source := &voiceSource{engine: engine, sampleRate: *sampleRate, carrierHz: *carrierHz}

	player, err := intaudio.NewPlayer(*sampleRate, source)
	if err != nil {
		log.Fatal(err)
	}
	player.Play()

	var stop atomic.Bool
	go analysisLoop(engine, *analysisHz, &stop)

	if *verbose {
		go meterLoop(engine, &stop)
	}

	if *seconds > 0 {
		time.Sleep(time.Duration(*seconds * float64(time.Second)))
	} else {
		select {} // run until killed
	}

	stop.Store(true)
	if err := player.Stop(); err != nil {
		log.Fatal(err)
	}
}

// analysisLoop is the analysis-thread entry point: it polls
// CalculateLPCCoefficients at a fixed rate, independent of the audio
// callback, matching the engine's two-thread concurrency model.
func analysisLoop(engine *talkbox.Engine, hz float64, stop *atomic.Bool) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	defer ticker.Stop()
	for !stop.Load() {
		<-ticker.C
		engine.CalculateLPCCoefficients()
	}
}

func meterLoop(engine *talkbox.Engine, stop *atomic.Bool) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for !stop.Load() {
		<-ticker.C
		fmt.Printf("voice=%.3f error=%.3f preemphasis=%.3f\n",
			engine.GetVoiceGain(), engine.GetErrorGain(), engine.GetPreemphasis())
	}
}
