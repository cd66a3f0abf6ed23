package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync/atomic"

	"github.com/dimiro1/banner"

	"github.com/arielhakim/voyago/pkg/transports"
)

type State int32

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StateStopped
)

const EngineVersion = "dev"

func PrintBanner() {
	tpl := "{{ .Title \"VOYAGO\" \"\" 0 }}\nVersion: " + EngineVersion + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

// Runner drives a transport's lifecycle: banner, serve, shutdown on
// context cancellation.
type Runner struct {
	transport transports.Transport
	state     int32
}

func New(transport transports.Transport) *Runner {
	return &Runner{transport: transport}
}

func (r *Runner) State() State {
	return State(atomic.LoadInt32(&r.state))
}

// Run blocks until ctx is cancelled or the transport fails.
func (r *Runner) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&r.state, int32(StateNew), int32(StateStarting)) {
		return errors.New("invalid state transition")
	}
	PrintBanner()
	atomic.StoreInt32(&r.state, int32(StateRunning))
	err := r.transport.Start(ctx)
	atomic.StoreInt32(&r.state, int32(StateStopped))
	return err
}

func (r *Runner) Stop() error {
	atomic.StoreInt32(&r.state, int32(StateStopped))
	return r.transport.Stop()
}
