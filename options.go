package vizsync

import (
	"log/slog"

	"github.com/hupe1980/vizsync/blobstore"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/store/sqlite"
)

// Mode selects what a Factory does with the objects it records.
type Mode uint8

const (
	// ModeLive drives one actor per object and presents a frame per Render.
	ModeLive Mode = iota
	// ModeRecord writes only to the store for later replay.
	ModeRecord
)

func (m Mode) String() string {
	if m == ModeRecord {
		return "record"
	}
	return "live"
}

type options struct {
	mode             Mode
	store            store.Store
	recordingPath    string
	sqliteOptions    []func(*sqlite.Options)
	backend          render.Backend
	blobStore        blobstore.BlobStore
	uploadName       string
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Factory behavior.
type Option func(*options)

// WithMode selects live or record mode. The default is ModeLive.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithStore uses st as the object store. The Factory does not close it.
//
// Without WithStore or WithRecording an in-memory store is used.
func WithStore(st store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithRecording stores objects in a SQLite database at path, which can be
// replayed later. The Factory owns and closes the database.
//
// Example:
//
//	f, _ := vizsync.Open(ctx,
//	    vizsync.WithMode(vizsync.ModeRecord),
//	    vizsync.WithRecording("./scene.db", func(o *sqlite.Options) {
//	        o.Compression = codec.CompressionZSTD
//	    }),
//	)
func WithRecording(path string, optFns ...func(*sqlite.Options)) Option {
	return func(o *options) {
		o.recordingPath = path
		o.sqliteOptions = optFns
	}
}

// WithBackend renders live objects through b. The default is a headless
// in-memory backend. The Factory closes the backend on Close.
func WithBackend(b render.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithUpload publishes the recording to bs under name when the Factory is
// closed. Requires WithRecording.
func WithUpload(bs blobstore.BlobStore, name string) Option {
	return func(o *options) {
		o.blobStore = bs
		o.uploadName = name
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vizsync.BasicMetricsCollector{}
//	f, _ := vizsync.Open(ctx, vizsync.WithMetricsCollector(metrics))
//	// ... use f ...
//	stats := metrics.GetStats()
//	fmt.Printf("Adds: %d, Frames: %d\n", stats.AddCount, stats.RenderCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mode:             ModeLive,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
