package codeaction

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"codeact/internal/diag"
	"codeact/internal/metrics"
	"codeact/internal/order"
	"codeact/internal/source"
	"codeact/internal/trace"
)

// FaultKind distinguishes how a provider failed.
type FaultKind uint8

const (
	FaultError FaultKind = iota
	FaultPanic
)

func (k FaultKind) String() string {
	if k == FaultPanic {
		return "panic"
	}
	return "error"
}

// ProviderFault records a provider that failed during a request. Faults
// never abort the request.
type ProviderFault struct {
	Provider string // fully-qualified identity
	Name     string // declared name
	Kind     FaultKind
	Err      error
}

func (f ProviderFault) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Provider, f.Kind, f.Err)
}

func (f ProviderFault) Unwrap() error { return f.Err }

// errPanic wraps a recovered panic value.
type errPanic struct {
	value any
	stack []byte
}

func (e *errPanic) Error() string { return fmt.Sprintf("panic: %v", e.value) }

// invocation is one call of one provider within a request.
type invocation struct {
	reg  Registration
	call func(ctx context.Context, register func(*Action)) error
}

// outcome is what one invocation produced.
type outcome struct {
	nodes []*order.Node[candidate]
	fault *ProviderFault
}

// hasFix reports whether the fix provider registered as reg may be invoked
// for diagnosticID.
func hasFix(policy Policy, reg Registration, p FixProvider, diagnosticID string) bool {
	if policy != nil && policy.IsDisallowed(reg.ID) {
		return false
	}
	if reg.ID == UnusedImportsProviderID {
		return acceptsUnusedImport(reg.ID, diagnosticID)
	}
	for _, id := range p.FixableDiagnosticIDs() {
		if id == diagnosticID {
			return true
		}
	}
	return false
}

// fixInvocations plans the fix provider calls for groups: groups in order,
// providers in registration order, only providers that recognize at least
// one diagnostic of the group.
func fixInvocations(doc Document, policy Policy, fixes []FixEntry, groups []DiagnosticGroup) []invocation {
	var out []invocation
	for _, g := range groups {
		for _, entry := range fixes {
			entry := entry
			var fixable []diag.Diagnostic
			for _, d := range g.Diagnostics {
				if hasFix(policy, entry.Registration, entry.Provider, d.ID) {
					fixable = append(fixable, d)
				}
			}
			if len(fixable) == 0 {
				continue
			}
			span := g.Span
			out = append(out, invocation{
				reg: entry.Registration,
				call: func(ctx context.Context, register func(*Action)) error {
					return entry.Provider.RegisterFixes(ctx, &FixContext{
						Document:    doc,
						Span:        span,
						Diagnostics: fixable,
						register:    register,
					})
				},
			})
		}
	}
	return out
}

// refactoringInvocations plans one call per allowed refactoring provider.
func refactoringInvocations(doc Document, policy Policy, refactorings []RefactoringEntry, span source.Span) []invocation {
	out := make([]invocation, 0, len(refactorings))
	for _, entry := range refactorings {
		entry := entry
		if policy != nil && policy.IsDisallowed(entry.ID) {
			continue
		}
		out = append(out, invocation{
			reg: entry.Registration,
			call: func(ctx context.Context, register func(*Action)) error {
				return entry.Provider.ComputeRefactorings(ctx, &RefactoringContext{
					Document: doc,
					Span:     span,
					register: register,
				})
			},
		})
	}
	return out
}

// invoker runs planned invocations with fault isolation.
type invoker struct {
	parallel bool
	jobs     int
	logf     func(format string, args ...any)
	metrics  *metrics.Collector
}

// run executes invs and returns their nodes and faults in plan order,
// whatever order the invocations completed in. It fails only when ctx is
// cancelled.
func (iv *invoker) run(ctx context.Context, invs []invocation) ([]*order.Node[candidate], []ProviderFault, error) {
	results := make([]outcome, len(invs))

	if iv.parallel && len(invs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		if iv.jobs > 0 {
			g.SetLimit(iv.jobs)
		}
		for i := range invs {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = iv.invoke(gctx, invs[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i := range invs {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			results[i] = iv.invoke(ctx, invs[i])
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var nodes []*order.Node[candidate]
	var faults []ProviderFault
	for _, r := range results {
		nodes = append(nodes, r.nodes...)
		if r.fault != nil {
			faults = append(faults, *r.fault)
		}
	}
	return nodes, faults, nil
}

// invoke calls one provider, converting errors and panics into a fault.
func (iv *invoker) invoke(ctx context.Context, inv invocation) (res outcome) {
	ctx, span := trace.Start(ctx, trace.ScopeProvider, "provider:"+inv.reg.Name)
	start := time.Now()
	constraints := inv.reg.constraints()

	register := func(a *Action) {
		res.nodes = append(res.nodes, order.NewNode(candidate{action: a, provider: inv.reg.Name}, inv.reg.Name, constraints...))
	}

	defer func() {
		outcomeLabel := metrics.OutcomeOK
		if r := recover(); r != nil {
			res.fault = &ProviderFault{
				Provider: inv.reg.ID,
				Name:     inv.reg.Name,
				Kind:     FaultPanic,
				Err:      &errPanic{value: r, stack: debug.Stack()},
			}
			outcomeLabel = metrics.OutcomePanic
		} else if res.fault != nil {
			outcomeLabel = metrics.OutcomeError
			if errors.Is(res.fault.Err, context.Canceled) || errors.Is(res.fault.Err, context.DeadlineExceeded) {
				outcomeLabel = metrics.OutcomeCanceled
			}
		}
		if res.fault != nil {
			// actions registered before the failure are kept
			var pe *errPanic
			if errors.As(res.fault.Err, &pe) {
				iv.logf("panic running %s: %v\n%s", inv.reg.ID, pe.value, pe.stack)
			} else {
				iv.logf("error running %s: %v", inv.reg.ID, res.fault.Err)
			}
			trace.Error(ctx, trace.ScopeProvider, "fault:"+inv.reg.Name, res.fault.Error())
		}
		iv.metrics.ObserveInvocation(inv.reg.Name, outcomeLabel, time.Since(start))
		span.WithExtra("actions", fmt.Sprint(len(res.nodes))).End(outcomeLabel)
	}()

	if err := inv.call(ctx, register); err != nil {
		res.fault = &ProviderFault{
			Provider: inv.reg.ID,
			Name:     inv.reg.Name,
			Kind:     FaultError,
			Err:      err,
		}
	}
	return res
}
