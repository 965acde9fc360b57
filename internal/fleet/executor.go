package fleet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ucifleet/internal/pathmatch"
	"ucifleet/internal/reconcile"
	"ucifleet/internal/transport"
	"ucifleet/internal/uciconf"
	"ucifleet/pkg/logging"
	"ucifleet/pkg/uci"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Dialer builds a connection for one device. Injected so tests can
// substitute in-memory transports.
type Dialer func(name string, device Device, defaults Defaults) transport.Connection

// SSHDialer is the production dialer.
func SSHDialer(name string, device Device, defaults Defaults) transport.Connection {
	return &transport.SSHConnection{
		Host:     device.Target,
		Port:     device.Port,
		User:     device.EffectiveUsername(defaults),
		Password: device.Password,
		KeyFile:  device.KeyFile,
		Timeout:  time.Duration(device.EffectiveTimeout(defaults)) * time.Second,
	}
}

// Options control one fleet run.
type Options struct {
	Selector Selector
	// CommitDelay overrides the fleet default when positive.
	CommitDelay int
	// DryRun resolves and reconciles only; devices are read, never written.
	DryRun bool
	// RemoveUnmanaged stages deletes for remote-only entries.
	RemoveUnmanaged bool
	// OnDeviceDone is called as each device finishes a phase. Optional;
	// used by the CLI for progress reporting.
	OnDeviceDone func(phase Phase, result DeviceResult)
}

// Executor drives staging and committing of reconciled change sets across
// the targeted devices of a fleet. Staging is all-or-nothing: either every
// device's pending changes are committed together, or staged changes are
// rolled back everywhere.
type Executor struct {
	config *Config
	dial   Dialer
}

// NewExecutor builds an executor that connects over SSH.
func NewExecutor(config *Config) *Executor {
	return &Executor{config: config, dial: SSHDialer}
}

// NewExecutorWithDialer builds an executor with a custom transport factory.
func NewExecutorWithDialer(config *Config, dial Dialer) *Executor {
	return &Executor{config: config, dial: dial}
}

// resolved is one device's desired state after merging its config layers.
type resolved struct {
	name     string
	device   Device
	commands []uci.Command
	policy   *pathmatch.Policy
	packages []string
}

// Run executes the full rollout state machine: Resolve, then Stage on every
// selected device in parallel, then either Rollback (any stage failure) or
// a coordinated deferred Commit.
//
// The commit is not a consensus protocol: each device commits on its own
// timer after the dispatched delay. This approximates simultaneity so that
// interdependent devices (mesh nodes) restart together, but it is
// best-effort timing, not an atomic multi-device commit.
func (e *Executor) Run(ctx context.Context, opts Options) (*Result, error) {
	runID := uuid.NewString()

	targets, err := e.resolve(opts.Selector)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no devices matched the selection")
	}

	if opts.DryRun {
		result := e.preview(ctx, runID, targets, opts)
		return result, nil
	}

	logging.Info("FleetExecutor", "run %s: staging %d devices", runID, len(targets))
	result, conns := e.stage(ctx, runID, targets, opts)

	if !result.Success() {
		logging.Warn("FleetExecutor", "run %s: %d device(s) failed staging, rolling back", runID, result.FailureCount())
		e.rollback(result, conns)
		result.RolledBack = true
		return result, nil
	}

	delay := e.config.Defaults.CommitDelay
	if opts.CommitDelay > 0 {
		delay = opts.CommitDelay
	}
	e.commit(ctx, result, targets, conns, delay, opts)
	result.Phase = PhaseCommit
	return result, nil
}

// resolve merges each selected device's config layers into one desired
// command sequence. It runs before any device is touched; a resolution
// error aborts the whole run.
func (e *Executor) resolve(selector Selector) ([]resolved, error) {
	names := Select(e.config, selector)

	targets := make([]resolved, 0, len(names))
	for _, name := range names {
		device := e.config.Devices[name]
		doc, err := uciconf.LoadMerged(e.config.BaseDir, device.Configs)
		if err != nil {
			return nil, fmt.Errorf("resolving config for device %s: %w", name, err)
		}
		policy, err := doc.Policy()
		if err != nil {
			return nil, fmt.Errorf("retention policy for device %s: %w", name, err)
		}

		var packages []string
		for pkg := range doc.Packages {
			packages = append(packages, pkg)
		}
		sort.Strings(packages)

		targets = append(targets, resolved{
			name:     name,
			device:   device,
			commands: doc.Commands(),
			policy:   policy,
			packages: packages,
		})
	}
	return targets, nil
}

// preview reconciles every device without writing anything.
func (e *Executor) preview(ctx context.Context, runID string, targets []resolved, opts Options) *Result {
	result := &Result{RunID: runID, Phase: PhasePreview, Devices: make([]DeviceResult, len(targets))}

	var g errgroup.Group
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			res, conn := e.withTimeout(ctx, target, func(conn transport.Connection) DeviceResult {
				diff, err := e.reconcileDevice(conn, target)
				if err != nil {
					return DeviceResult{Name: target.name, Target: target.device.Target, Err: err}
				}
				return DeviceResult{
					Name:        target.name,
					Target:      target.device.Target,
					Success:     true,
					ChangeCount: diff.ChangeCount(),
					Diff:        diff,
				}
			})
			if conn != nil {
				conn.Close()
			}
			result.Devices[i] = res
			notify(opts, PhasePreview, res)
			return nil
		})
	}
	g.Wait()
	return result
}

// stage pushes each device's reconciled changes without committing. All
// stage tasks run to completion before the rollback-or-commit decision: the
// barrier is the errgroup Wait. Each task owns its result slot and its
// connection exclusively.
func (e *Executor) stage(ctx context.Context, runID string, targets []resolved, opts Options) (*Result, []transport.Connection) {
	result := &Result{RunID: runID, Phase: PhaseStage, Devices: make([]DeviceResult, len(targets))}
	conns := make([]transport.Connection, len(targets))

	var g errgroup.Group
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			res, conn := e.withTimeout(ctx, target, func(conn transport.Connection) DeviceResult {
				return e.stageDevice(conn, target, opts.RemoveUnmanaged)
			})
			if res.Success {
				// Connection stays open for the commit phase.
				conns[i] = conn
			} else if conn != nil {
				conn.Close()
			}
			result.Devices[i] = res
			notify(opts, PhaseStage, res)
			return nil
		})
	}
	g.Wait()
	return result, conns
}

// stageDevice reconciles one device and executes the resulting commands as
// pending, uncommitted writes. The first failing command stops the device.
func (e *Executor) stageDevice(conn transport.Connection, target resolved, removeUnmanaged bool) DeviceResult {
	diff, err := e.reconcileDevice(conn, target)
	if err != nil {
		return DeviceResult{Name: target.name, Target: target.device.Target, Err: err}
	}

	commands := diff.StagingCommands(removeUnmanaged)
	for _, cmd := range commands {
		if _, err := transport.Run(conn, cmd.String()); err != nil {
			return DeviceResult{
				Name:   target.name,
				Target: target.device.Target,
				Diff:   diff,
				Err:    fmt.Errorf("staging %s: %w", cmd.Path, err),
			}
		}
	}

	logging.Info("FleetExecutor", "staged %d change(s) on %s", len(commands), target.name)
	return DeviceResult{
		Name:        target.name,
		Target:      target.device.Target,
		Success:     true,
		ChangeCount: len(commands),
		Diff:        diff,
	}
}

// reconcileDevice fetches the device's live configuration for every package
// the desired state touches and computes the classified diff.
func (e *Executor) reconcileDevice(conn transport.Connection, target resolved) (*reconcile.Diff, error) {
	if err := conn.Connect(); err != nil {
		return nil, err
	}

	var remote []uci.Command
	for _, pkg := range target.packages {
		raw, err := transport.FetchPackage(conn, pkg)
		if err != nil {
			var execErr *transport.ExecError
			if errors.As(err, &execErr) {
				// A package the device does not have yet is not fatal;
				// everything local becomes an addition.
				logging.Warn("FleetExecutor", "%s: could not fetch package %s: %v", target.name, pkg, err)
				continue
			}
			return nil, err
		}
		remote = append(remote, uci.Parse(pkg, raw)...)
	}

	return reconcile.Reconcile(target.commands, remote, target.policy)
}

// rollback reverts pending changes on every device that staged successfully
// in this run. Devices that failed or were never reached need no action.
func (e *Executor) rollback(result *Result, conns []transport.Connection) {
	var g errgroup.Group
	for i, conn := range conns {
		if conn == nil || !result.Devices[i].Success {
			continue
		}
		conn := conn
		name := result.Devices[i].Name
		g.Go(func() error {
			defer conn.Close()
			if err := transport.Revert(conn); err != nil {
				logging.Error("FleetExecutor", err, "rollback failed on %s", name)
			} else {
				logging.Info("FleetExecutor", "rolled back pending changes on %s", name)
			}
			return nil
		})
	}
	g.Wait()
}

// commit dispatches the deferred commit instruction to every staged device
// in parallel, each dispatch under that device's timeout. Dispatch is
// fire-and-forget: the orchestrator confirms only that the device accepted
// the instruction, never waits for the timer.
func (e *Executor) commit(ctx context.Context, result *Result, targets []resolved, conns []transport.Connection, delay int, opts Options) {
	var g errgroup.Group
	for i, conn := range conns {
		if conn == nil {
			continue
		}
		i, conn := i, conn
		target := targets[i]
		g.Go(func() error {
			defer conn.Close()
			res := &result.Devices[i]
			err := e.guardDevice(ctx, target, conn, func() error {
				return transport.DispatchDeferredCommit(conn, delay)
			})
			if err != nil {
				res.Success = false
				res.Err = fmt.Errorf("commit dispatch: %w", err)
				logging.Error("FleetExecutor", err, "commit dispatch failed on %s", res.Name)
			} else {
				logging.Info("FleetExecutor", "dispatched deferred commit (%ds) to %s", delay, res.Name)
			}
			notify(opts, PhaseCommit, *res)
			return nil
		})
	}
	g.Wait()
}

// guardDevice runs one unit of device work under that device's timeout. On
// timeout the connection is closed underneath the worker, which is left to
// drain; the caller gets a TimeoutError for this device only, and other
// in-flight devices keep running.
func (e *Executor) guardDevice(ctx context.Context, target resolved, conn transport.Connection, work func() error) error {
	seconds := target.device.EffectiveTimeout(e.config.Defaults)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- work()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		conn.Close()
		go func() { <-done }()
		return &TimeoutError{Device: target.name, Seconds: seconds}
	}
}

// withTimeout dials one device and runs its stage or preview work under the
// device's timeout. The connection is returned only when the work finished;
// a timed-out device yields a failed DeviceResult and no connection.
func (e *Executor) withTimeout(ctx context.Context, target resolved, work func(transport.Connection) DeviceResult) (DeviceResult, transport.Connection) {
	conn := e.dial(target.name, target.device, e.config.Defaults)

	var res DeviceResult
	err := e.guardDevice(ctx, target, conn, func() error {
		res = work(conn)
		return nil
	})
	if err != nil {
		return DeviceResult{
			Name:   target.name,
			Target: target.device.Target,
			Err:    err,
		}, nil
	}
	return res, conn
}

func notify(opts Options, phase Phase, result DeviceResult) {
	if opts.OnDeviceDone != nil {
		opts.OnDeviceDone(phase, result)
	}
}
