package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

const (
	preEmphasis = 0.97
	logFloor    = 1e-10
	melLowFreq  = 20.0
	// MFCCs are taken from at least this many mel bins.
	minMFCCMelBins = 23
)

// frameSignal cuts samples into overlapping frames. Only frames that fit
// entirely inside the signal are kept.
func frameSignal(samples []float64, frameLen, shift int) [][]float64 {
	if frameLen <= 0 || shift <= 0 || len(samples) < frameLen {
		return nil
	}
	numFrames := 1 + (len(samples)-frameLen)/shift
	frames := make([][]float64, numFrames)
	buf := make([]float64, numFrames*frameLen)
	for i := range frames {
		frames[i] = buf[i*frameLen : (i+1)*frameLen]
		copy(frames[i], samples[i*shift:i*shift+frameLen])
	}
	return frames
}

// poveyWindow is a Hann window raised to the power 0.85.
func poveyWindow(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		hann := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		window[i] = math.Pow(hann, 0.85)
	}
	return window
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func melScale(freq float64) float64 {
	return 1127.0 * math.Log(1.0+freq/700.0)
}

// melFilterbank holds triangular filters over the bins of a power spectrum.
type melFilterbank struct {
	offsets []int
	weights [][]float64
}

func newMelFilterbank(numBins, fftSize, sampleRate int) *melFilterbank {
	nyquist := float64(sampleRate) / 2
	melLow, melHigh := melScale(melLowFreq), melScale(nyquist)
	if melLowFreq >= nyquist {
		melLow = 0
	}
	melDelta := (melHigh - melLow) / float64(numBins+1)
	binWidth := float64(sampleRate) / float64(fftSize)
	numFFTBins := fftSize/2 + 1

	fb := &melFilterbank{
		offsets: make([]int, numBins),
		weights: make([][]float64, numBins),
	}
	for bin := 0; bin < numBins; bin++ {
		left := melLow + float64(bin)*melDelta
		center := left + melDelta
		right := center + melDelta
		first, weights := -1, make([]float64, 0)
		for i := 0; i < numFFTBins; i++ {
			mel := melScale(binWidth * float64(i))
			if mel <= left || mel >= right {
				continue
			}
			var weight float64
			if mel <= center {
				weight = (mel - left) / (center - left)
			} else {
				weight = (right - mel) / (right - center)
			}
			if first < 0 {
				first = i
			}
			// Bins between first and i that fell outside are zero weighted.
			for len(weights) < i-first {
				weights = append(weights, 0)
			}
			weights = append(weights, weight)
		}
		if first < 0 {
			first = 0
		}
		fb.offsets[bin] = first
		fb.weights[bin] = weights
	}
	return fb
}

func (fb *melFilterbank) apply(power []float64, out []float64) {
	for bin, weights := range fb.weights {
		var energy float64
		offset := fb.offsets[bin]
		for i, weight := range weights {
			energy += weight * power[offset+i]
		}
		out[bin] = energy
	}
}

// dctMatrix returns an orthonormal DCT-II basis keeping numCeps
// coefficients of numBins inputs.
func dctMatrix(numCeps, numBins int) [][]float64 {
	basis := make([][]float64, numCeps)
	for k := range basis {
		basis[k] = make([]float64, numBins)
		scale := math.Sqrt(2.0 / float64(numBins))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(numBins))
		}
		for n := range basis[k] {
			basis[k][n] = scale * math.Cos(
				math.Pi*float64(k)*(float64(n)+0.5)/float64(numBins))
		}
	}
	return basis
}

// extractor computes log mel (or cepstral) features frame by frame,
// reusing its buffers between frames.
type extractor struct {
	frameLen int
	shift    int
	window   []float64
	fft      *fourier.FFT
	padded   []float64
	coeffs   []complex128
	power    []float64
	mel      *melFilterbank
	melBuf   []float64
	dct      [][]float64
}

func newExtractor(cfg Config, sampleRate int) *extractor {
	frameLen := int(float64(sampleRate) * cfg.FrameLength / 1000.0)
	shift := int(float64(sampleRate) * cfg.FrameShift / 1000.0)
	fftSize := nextPowerOfTwo(frameLen)
	numMelBins := cfg.FeatDim
	var dct [][]float64
	if cfg.FeatType == FeatMFCC {
		numMelBins = max(minMFCCMelBins, cfg.FeatDim)
		dct = dctMatrix(cfg.FeatDim, numMelBins)
	}
	return &extractor{
		frameLen: frameLen,
		shift:    shift,
		window:   poveyWindow(max(frameLen, 1)),
		fft:      fourier.NewFFT(fftSize),
		padded:   make([]float64, fftSize),
		coeffs:   make([]complex128, fftSize/2+1),
		power:    make([]float64, fftSize/2+1),
		mel:      newMelFilterbank(numMelBins, fftSize, sampleRate),
		melBuf:   make([]float64, numMelBins),
		dct:      dct,
	}
}

func (e *extractor) frame(frame []float64, out []float64) {
	mean := stat.Mean(frame, nil)
	for i := range frame {
		frame[i] -= mean
	}
	for i := len(frame) - 1; i > 0; i-- {
		frame[i] -= preEmphasis * frame[i-1]
	}
	frame[0] -= preEmphasis * frame[0]
	for i := range e.padded {
		if i < len(frame) {
			e.padded[i] = frame[i] * e.window[i]
		} else {
			e.padded[i] = 0
		}
	}
	e.coeffs = e.fft.Coefficients(e.coeffs, e.padded)
	for i, c := range e.coeffs {
		e.power[i] = real(c)*real(c) + imag(c)*imag(c)
	}
	e.mel.apply(e.power, e.melBuf)
	for i, energy := range e.melBuf {
		e.melBuf[i] = math.Log(math.Max(energy, logFloor))
	}
	if e.dct == nil {
		copy(out, e.melBuf)
		return
	}
	for k, basis := range e.dct {
		var acc float64
		for n, b := range basis {
			acc += b * e.melBuf[n]
		}
		out[k] = acc
	}
}

func (e *extractor) extract(samples []float64, dim int) [][]float64 {
	frames := frameSignal(samples, e.frameLen, e.shift)
	feats := make([][]float64, len(frames))
	buf := make([]float64, len(frames)*dim)
	for i, frame := range frames {
		feats[i] = buf[i*dim : (i+1)*dim]
		e.frame(frame, feats[i])
	}
	return feats
}

// applyCMVN normalizes every dimension to zero mean and, where the
// variance allows it, unit variance over the utterance.
func applyCMVN(feats [][]float64) {
	if len(feats) == 0 {
		return
	}
	column := make([]float64, len(feats))
	for d := range feats[0] {
		for t := range feats {
			column[t] = feats[t][d]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if len(feats) < 2 || math.IsNaN(std) || std < 1e-10 {
			std = 1
		}
		for t := range feats {
			feats[t][d] = (feats[t][d] - mean) / std
		}
	}
}

// delta computes regression coefficients over +/- window frames, repeating
// the edge frames past either end.
func delta(feats [][]float64, window int) [][]float64 {
	numFrames := len(feats)
	if numFrames == 0 {
		return nil
	}
	dim := len(feats[0])
	denom := 0.0
	for n := 1; n <= window; n++ {
		denom += float64(n * n)
	}
	denom *= 2
	out := make([][]float64, numFrames)
	buf := make([]float64, numFrames*dim)
	for t := range out {
		out[t] = buf[t*dim : (t+1)*dim]
		for d := 0; d < dim; d++ {
			var num float64
			for n := 1; n <= window; n++ {
				next := min(t+n, numFrames-1)
				prev := max(t-n, 0)
				num += float64(n) * (feats[next][d] - feats[prev][d])
			}
			out[t][d] = num / denom
		}
	}
	return out
}

// appendDeltas concatenates the features with `order` successive deltas.
func appendDeltas(feats [][]float64, order, window int) [][]float64 {
	if order <= 0 || len(feats) == 0 {
		return feats
	}
	dim := len(feats[0])
	out := make([][]float64, len(feats))
	for t := range out {
		out[t] = make([]float64, dim*(order+1))
		copy(out[t], feats[t])
	}
	current := feats
	for o := 1; o <= order; o++ {
		current = delta(current, window)
		for t := range out {
			copy(out[t][o*dim:(o+1)*dim], current[t])
		}
	}
	return out
}
