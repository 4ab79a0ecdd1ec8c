package mmkv

// Mode selects the process-visibility and write behavior of a store.
type Mode int

const (
	// SingleProcess disables inter-process locking; cheapest, but unsafe if
	// more than one process opens the same mmapID concurrently.
	SingleProcess Mode = 0
	// MultiProcess enables the advisory inter-process lock on the meta file.
	MultiProcess Mode = 1 << iota
	// ReadOnly refuses every write operation; OR it together with one of the
	// two modes above, e.g. MultiProcess|ReadOnly.
	ReadOnly
)

func (m Mode) isMultiProcess() bool { return m&MultiProcess != 0 }
func (m Mode) isReadOnly() bool     { return m&ReadOnly != 0 }

// ErrorType distinguishes the two recoverable integrity failures a store can
// hit while loading from disk.
type ErrorType int

const (
	ErrorTypeCRCCheckFail ErrorType = iota
	ErrorTypeFileLength
)

// RecoverStrategy is returned by an ErrorHandler to tell the engine how to
// proceed after a CRC or file-length failure.
type RecoverStrategy int

const (
	// Discard empties the log and meta file and continues with an empty store.
	Discard RecoverStrategy = iota
	// KeepSameAsOldStrategy keeps whatever the engine managed to parse and
	// continues with a partial index rather than discarding everything.
	KeepSameAsOldStrategy
)

// ErrorHandler is consulted when loadFromFile hits a CRC mismatch or a
// corrupt length header. mmapID identifies which store hit the error.
type ErrorHandler func(mmapID string, kind ErrorType) RecoverStrategy

// ContentChangeHandler is invoked after checkLoadData detects that another
// process advanced the store's sequence and reloads it.
type ContentChangeHandler func(mmapID string)

// options collects the recognized, closed set of configuration knobs.
// Values are set via functional Option values passed to Open.
type options struct {
	mode         Mode
	cryptKey     string
	relativePath string
	initialSize  int
	errorHandler ErrorHandler
}

// Option configures a store at Open time.
type Option func(*options)

// WithMode sets the process-visibility/write mode. Default is SingleProcess.
func WithMode(mode Mode) Option {
	return func(o *options) { o.mode = mode }
}

// WithCryptKey enables AES-128 CFB encryption of payload bytes using the
// given key. An empty key is equivalent to not calling this option.
func WithCryptKey(key string) Option {
	return func(o *options) { o.cryptKey = key }
}

// WithRelativePath stores the data and meta files under a directory other
// than the package-wide default root (set via Initialize).
func WithRelativePath(path string) Option {
	return func(o *options) { o.relativePath = path }
}

// WithInitialSize overrides the default initial mmap size (one OS page).
func WithInitialSize(size int) Option {
	return func(o *options) { o.initialSize = size }
}

// WithErrorHandler installs a per-open error handler; if unset, the
// process-wide handler registered via RegisterErrorHandler applies.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.errorHandler = h }
}

func defaultOptions() *options {
	return &options{
		mode:        SingleProcess,
		initialSize: defaultMmapSize(),
	}
}
