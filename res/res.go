// Package res loads and decodes audio assets into reusable sample
// buffers. Both successful decodes and permanent misses are cached by
// path, so a missing asset is fetched at most once.
package res

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"miu2d/conlog"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"
)

const resampleQuality = 4

// Loader decodes audio files from an fs.FS into *beep.Buffer values
// at a fixed sample rate. Safe for concurrent use.
type Loader struct {
	mu    sync.Mutex
	fsys  fs.FS
	rate  beep.SampleRate
	cache map[string]*beep.Buffer // nil entry marks a known miss
}

func NewLoader(fsys fs.FS, rate beep.SampleRate) *Loader {
	return &Loader{
		fsys:  fsys,
		rate:  rate,
		cache: make(map[string]*beep.Buffer),
	}
}

// LoadAudio returns the decoded buffer for p, or nil if the asset is
// missing or undecodable. Failures are logged once and then cached.
func (l *Loader) LoadAudio(p string) *beep.Buffer {
	l.mu.Lock()
	if buf, ok := l.cache[p]; ok {
		l.mu.Unlock()
		return buf
	}
	l.mu.Unlock()

	buf, err := l.decode(p)
	if err != nil {
		conlog.Printf("res: %v\n", err)
		buf = nil
	}

	l.mu.Lock()
	// A concurrent load may have raced us here. Keep whichever result
	// landed first so callers holding the other buffer stay consistent.
	if prev, ok := l.cache[p]; ok {
		buf = prev
	} else {
		l.cache[p] = buf
	}
	l.mu.Unlock()
	return buf
}

func (l *Loader) decode(p string) (*beep.Buffer, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", p)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(path.Ext(p)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	case ".mp3":
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case ".wav":
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	default:
		return nil, errors.Errorf("unsupported audio format: %s", p)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", p)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != l.rate {
		src = beep.Resample(resampleQuality, format.SampleRate, l.rate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{
		SampleRate:  l.rate,
		NumChannels: 2,
		Precision:   2,
	})
	buf.Append(src)
	return buf, nil
}
