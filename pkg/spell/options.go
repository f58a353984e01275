package spell

import (
	"runtime"

	"github.com/charmbracelet/log"
)

// DefaultOptions are applied before any Option passed to New.
var DefaultOptions = Options{
	Workers:       runtime.NumCPU(),
	MaxCandidates: 8,
	CacheSize:     0,
}

// Options tune a Corrector. None of them change which word is chosen.
type Options struct {
	Workers       int // goroutines used by CorrectAll
	MaxCandidates int // ranked candidates kept in a Result, 0 keeps all
	CacheSize     int // recent Results kept by Correct, 0 disables the cache
	Logger        *log.Logger
}

type Option interface {
	Apply(options *Options)
}

type FuncOption struct {
	ops func(options *Options)
}

func (f FuncOption) Apply(options *Options) {
	f.ops(options)
}

func NewFuncOption(f func(options *Options)) *FuncOption {
	return &FuncOption{ops: f}
}

// WithWorkers bounds the parallelism of CorrectAll. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return NewFuncOption(func(options *Options) {
		if n > 0 {
			options.Workers = n
		}
	})
}

// WithMaxCandidates caps the ranked candidates reported per Result.
func WithMaxCandidates(n int) Option {
	return NewFuncOption(func(options *Options) {
		if n >= 0 {
			options.MaxCandidates = n
		}
	})
}

// WithCacheSize keeps up to n recent Results. 0 disables the cache.
func WithCacheSize(n int) Option {
	return NewFuncOption(func(options *Options) {
		if n >= 0 {
			options.CacheSize = n
		}
	})
}

// WithLogger replaces the default "spell" logger.
func WithLogger(l *log.Logger) Option {
	return NewFuncOption(func(options *Options) {
		options.Logger = l
	})
}
