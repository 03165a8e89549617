package host

import (
	"time"

	"go.uber.org/zap"
)

// InitWorker defers mod initialization until the client has actually
// started. The proxy DLL loads long before the game window exists, and
// most client singletons are still null at that point, so initialization
// waits on a background goroutine instead of blocking DllMain.
type InitWorker struct {
	// Present reports whether the client is far enough along to touch.
	Present func() bool
	// Ready runs exactly once, on the worker goroutine, when Present
	// first reports true.
	Ready func()
	// Interval is the poll spacing. Zero means 500ms.
	Interval time.Duration

	stop chan struct{}
	done chan struct{}
	log  *zap.SugaredLogger
}

func NewInitWorker(present func() bool, ready func()) *InitWorker {
	return &InitWorker{
		Present: present,
		Ready:   ready,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		log:     zap.S().Named("init"),
	}
}

// Start launches the poll loop. Call Stop to cancel it; a worker whose
// Ready already ran ignores Stop.
func (w *InitWorker) Start() {
	go w.run()
}

func (w *InitWorker) run() {
	defer close(w.done)
	interval := w.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	w.log.Info("waiting for client window")
	for {
		if w.Present() {
			w.log.Info("client window up, initializing")
			w.Ready()
			return
		}
		select {
		case <-w.stop:
			w.log.Info("cancelled before client window appeared")
			return
		case <-time.After(interval):
		}
	}
}

// Stop cancels a worker that is still waiting and blocks until its
// goroutine exits. Safe to call more than once.
func (w *InitWorker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.done
}
