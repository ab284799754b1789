package audio

import (
	"io"
	"math"
)

// Style selects one of the procedural fallback tracks.
type Style int

const (
	StyleGroove Style = iota // mid tempo, syncopated bass, lots of highs
	StyleDrive               // four on the floor, pulsing sub bass
	StyleNoir                // slow, pad heavy, sparse drums
	styleCount
)

var styleNames = [styleCount]string{"groove", "drive", "noir"}

func (s Style) String() string {
	if s < 0 || s >= styleCount {
		return "unknown"
	}
	return styleNames[s]
}

type song struct {
	tempo    float64 // beats per second
	chordLen int     // beats per chord
	chords   [][3]float64
}

var songs = [styleCount]song{
	StyleGroove: {tempo: 118.0 / 60, chordLen: 2, chords: [][3]float64{
		{220.00, 261.63, 329.63}, {196.00, 246.94, 293.66},
		{174.61, 220.00, 261.63}, {196.00, 246.94, 329.63},
	}},
	StyleDrive: {tempo: 128.0 / 60, chordLen: 4, chords: [][3]float64{
		{146.83, 174.61, 220.00}, {130.81, 155.56, 196.00},
		{116.54, 146.83, 174.61}, {130.81, 164.81, 196.00},
	}},
	StyleNoir: {tempo: 84.0 / 60, chordLen: 4, chords: [][3]float64{
		{164.81, 196.00, 246.94}, {146.83, 174.61, 220.00},
		{130.81, 164.81, 196.00}, {123.47, 146.83, 185.00},
	}},
}

// SynthTrack generates music on the fly so the installation runs without
// audio files.
type SynthTrack struct {
	style Style
}

func NewSynthTrack(style Style) *SynthTrack {
	if style < 0 || style >= styleCount {
		style = StyleGroove
	}
	return &SynthTrack{style: style}
}

func (t *SynthTrack) Name() string { return "synth-" + t.style.String() }
func (t *SynthTrack) Style() Style { return t.style }

func (t *SynthTrack) Open() (io.Reader, error) {
	return &synthReader{song: songs[t.style], style: t.style, seed: 0x9e3779b97f4a7c15 + uint64(t.style)}, nil
}

type synthReader struct {
	song  song
	style Style
	seed  uint64
	n     int64 // frames generated
}

func (r *synthReader) Read(p []byte) (int, error) {
	frames := len(p) / BytesPerFrame
	for i := 0; i < frames; i++ {
		l, rr := r.next()
		putStereo(p, i, l, rr)
	}
	return frames * BytesPerFrame, nil
}

func (r *synthReader) next() (float64, float64) {
	t := float64(r.n) / SampleRate
	r.n++

	tempo := r.song.tempo
	beatLen := 1 / tempo
	trig := math.Mod(t, beatLen)
	beatPos := trig / beatLen
	beat := int(t * tempo)
	chord := r.song.chords[(beat/r.song.chordLen)%len(r.song.chords)]
	sixteenth := math.Mod(t*tempo*4, 1)
	step := int(t*tempo*4) % 16

	var s float64
	switch r.style {
	case StyleGroove:
		s = pad(t, chord, 0.6) * 0.6
		if beat%4 == 0 || beat%4 == 3 || (beat%4 == 1 && beatPos > 0.5) {
			s += bass(t, chord[0]/2, math.Exp(-trig*14))
		}
		s += arp(t, chord[step%3]*2, math.Exp(-sixteenth*10)) * 0.45
		if beat%2 == 0 {
			s += kick(trig) * 0.9
		} else {
			s += snare(trig, &r.seed) * 0.75
		}
		s += hihat(math.Mod(t*tempo*2, 1)/(tempo*2), beat%4 == 3, &r.seed)
	case StyleDrive:
		s = pad(t, chord, 0.8) * 0.7
		pulse := 0.5 + 0.5*math.Sin(t*tempo*math.Pi)
		s += bass(t, chord[0]/2, pulse*0.8)
		s += kick(trig)
		if beat%2 == 1 {
			s += snare(trig, &r.seed) * 0.85
		}
		s += hihat(sixteenth/(tempo*4), false, &r.seed) * 1.1
		s += arp(t, chord[2-step%3]*2, math.Exp(-sixteenth*8)) * 0.5
	case StyleNoir:
		s = pad(t, chord, 0.95)
		s += bass(t, chord[0]/2, adsr(beatPos, 0.05, 0.3, 0.5, 0.2)*0.7)
		if beat%4 == 0 {
			s += kick(trig) * 0.7
		}
		if beat%4 == 2 {
			s += snare(trig, &r.seed) * 0.5
		}
		if step%3 == 0 {
			s += arp(t, chord[1]*4, math.Exp(-sixteenth*6)) * 0.25
		}
	}

	duck := 1 - 0.16*math.Exp(-trig*20)
	s = softSat(s * 0.85 * duck)
	pan := 0.1 * math.Sin(2*math.Pi*0.09*t+float64(r.style))
	return softSat(s * (1 - pan)), softSat(s * (1 + pan))
}

func softSat(x float64) float64 {
	switch {
	case x > 1:
		return 1 - 0.5/x
	case x < -1:
		return -1 - 0.5/x
	}
	return x - x*x*x/3
}

// adsr evaluates an envelope at progress in [0,1]; stage lengths are
// fractions of the note.
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1 - (progress-attack)/decay*(1-sustain)
	case progress < 1-release:
		return sustain
	}
	return sustain * (1 - (progress-(1-release))/release)
}

func fm(t, carrier, ratio, index float64) float64 {
	return math.Sin(2*math.Pi*carrier*t + index*math.Sin(2*math.Pi*carrier*ratio*t))
}

// noise advances an LCG and returns a value in [-1,1].
func noise(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}

func kick(trig float64) float64 {
	if trig > 0.25 {
		return 0
	}
	phase := 2 * math.Pi * 185 / 12.5 * (1 - math.Exp(-trig*12.5))
	body := math.Sin(phase) * math.Exp(-trig*18) * 0.8
	click := math.Sin(2*math.Pi*2100*trig) * math.Exp(-trig*250) * 0.24
	return softSat(body + click)
}

func snare(trig float64, seed *uint64) float64 {
	if trig > 0.2 {
		return 0
	}
	env := math.Exp(-trig * 26)
	body := math.Sin(2*math.Pi*188*trig) * 0.24 * env
	hiss := (noise(seed) - 0.55*noise(seed)) * env * 0.6
	return softSat(body + hiss)
}

func hihat(trig float64, open bool, seed *uint64) float64 {
	decay, limit := 42.0, 0.06
	if open {
		decay, limit = 15, 0.18
	}
	if trig > limit {
		return 0
	}
	metal := math.Sin(2*math.Pi*7300*trig) + 0.6*math.Sin(2*math.Pi*9200*trig)
	return softSat((noise(seed)*0.8 + metal*0.2) * math.Exp(-trig*decay) * 0.07)
}

func bass(t, freq, env float64) float64 {
	b := fm(t, freq, 0.5, 1.25*env) * env * 0.48
	b += math.Sin(2*math.Pi*freq*t) * env * 0.26
	return softSat(b)
}

func pad(t float64, chord [3]float64, env float64) float64 {
	var s float64
	for _, freq := range chord {
		for _, d := range [...]float64{-0.003, 0.002, 0.005} {
			s += fm(t, freq*(1+d), 1.45, 0.75*env) * 0.06
		}
	}
	return softSat(s)
}

func arp(t, freq, env float64) float64 {
	s := fm(t, freq, 2, 3.2*env) * env * 0.2
	s += math.Sin(2*math.Pi*freq*2*t) * env * 0.08
	return softSat(s)
}
