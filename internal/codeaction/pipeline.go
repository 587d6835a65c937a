package codeaction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"codeact/internal/metrics"
	"codeact/internal/observ"
	"codeact/internal/order"
	"codeact/internal/source"
	"codeact/internal/trace"
)

var (
	ErrNilWorkspace      = errors.New("codeaction: nil workspace")
	ErrNilBundle         = errors.New("codeaction: nil bundle")
	ErrNilProvider       = errors.New("codeaction: nil provider")
	ErrDuplicateProvider = errors.New("codeaction: duplicate provider")
)

// Options tune a Service.
type Options struct {
	// Policy disables providers by identity. Nil allows everything.
	Policy Policy
	// Parallel invokes independent providers concurrently, at most Jobs at
	// a time (Jobs <= 0 means no limit).
	Parallel bool
	Jobs     int
	// Logf receives provider faults. Defaults to stderr.
	Logf    func(format string, args ...any)
	Metrics *metrics.Collector
}

// Request selects a location in a document. Selection, when set, takes
// precedence over Position.
type Request struct {
	FileName  string
	Position  source.Position
	Selection *source.Range
	// Document, when set, is used instead of resolving FileName in the
	// workspace. Hosts with versioned documents pin the snapshot they will
	// convert the resulting edits against.
	Document Document
}

// Result is the outcome of one request.
type Result struct {
	Actions []Presentable
	Faults  []ProviderFault
	// Cycles lists ordering edges ignored to break constraint cycles.
	Cycles []order.Cycle
	Timing observ.Report
}

// Service computes available actions over a fixed provider set.
type Service struct {
	workspace    Workspace
	fixes        []FixEntry
	refactorings []RefactoringEntry
	invoker      invoker
	metrics      *metrics.Collector

	mu     sync.RWMutex
	policy Policy
}

// NewService validates the providers of bundles and returns a Service
// invoking them in bundle order, then registration order.
func NewService(ws Workspace, bundles []Bundle, opts Options) (*Service, error) {
	if ws == nil {
		return nil, ErrNilWorkspace
	}
	s := &Service{
		workspace: ws,
		metrics:   opts.Metrics,
		policy:    opts.Policy,
	}
	logf := opts.Logf
	if logf == nil {
		logf = stderrLogf
	}
	s.invoker = invoker{
		parallel: opts.Parallel,
		jobs:     opts.Jobs,
		logf:     logf,
		metrics:  opts.Metrics,
	}

	fixIDs := make(map[string]struct{})
	refactoringIDs := make(map[string]struct{})
	for i, b := range bundles {
		if b == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilBundle, i)
		}
		for j, entry := range b.FixProviders() {
			if entry.Provider == nil {
				return nil, fmt.Errorf("%w: bundle %s fix provider %d", ErrNilProvider, b.Name(), j)
			}
			entry.Registration = normalizeRegistration(entry.Registration, entry.Provider)
			if _, dup := fixIDs[entry.ID]; dup {
				return nil, fmt.Errorf("%w: fix provider %s", ErrDuplicateProvider, entry.ID)
			}
			fixIDs[entry.ID] = struct{}{}
			s.fixes = append(s.fixes, entry)
		}
		for j, entry := range b.RefactoringProviders() {
			if entry.Provider == nil {
				return nil, fmt.Errorf("%w: bundle %s refactoring provider %d", ErrNilProvider, b.Name(), j)
			}
			entry.Registration = normalizeRegistration(entry.Registration, entry.Provider)
			if _, dup := refactoringIDs[entry.ID]; dup {
				return nil, fmt.Errorf("%w: refactoring provider %s", ErrDuplicateProvider, entry.ID)
			}
			refactoringIDs[entry.ID] = struct{}{}
			s.refactorings = append(s.refactorings, entry)
		}
	}
	return s, nil
}

func normalizeRegistration(reg Registration, provider any) Registration {
	reg.ID = strings.TrimSpace(reg.ID)
	if reg.ID == "" {
		reg.ID = providerIdentity(provider)
	}
	reg.Name = strings.TrimSpace(reg.Name)
	if reg.Name == "" {
		reg.Name = shortName(reg.ID)
	}
	return reg
}

func stderrLogf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "codeaction: "+format+"\n", args...)
}

// SetPolicy replaces the disallow policy for subsequent requests.
func (s *Service) SetPolicy(p Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

func (s *Service) currentPolicy() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// FixProviders returns the registered fix providers in invocation order.
func (s *Service) FixProviders() []FixEntry {
	return append([]FixEntry(nil), s.fixes...)
}

// RefactoringProviders returns the registered refactoring providers in
// invocation order.
func (s *Service) RefactoringProviders() []RefactoringEntry {
	return append([]RefactoringEntry(nil), s.refactorings...)
}

// Addresses reports whether the fix provider declared as name is invoked
// for diagnostics with diagnosticID under the current policy.
func (s *Service) Addresses(name, diagnosticID string) bool {
	policy := s.currentPolicy()
	for _, e := range s.fixes {
		if e.Name == name && hasFix(policy, e.Registration, e.Provider, diagnosticID) {
			return true
		}
	}
	return false
}

// IsDisallowed reports whether the current policy disables id.
func (s *Service) IsDisallowed(id string) bool {
	p := s.currentPolicy()
	return p != nil && p.IsDisallowed(id)
}

// GetAvailableActions returns the ordered actions available at req.
// A document unknown to the workspace yields an empty result. The only
// errors are document read failures and cancellation of ctx.
func (s *Service) GetAvailableActions(ctx context.Context, req Request) (res Result, err error) {
	started := time.Now()
	timer := observ.NewTimer()
	ctx, span := trace.Start(ctx, trace.ScopeRequest, "actions")
	defer func() {
		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case len(res.Faults) > 0:
			result = "faulted"
		}
		s.metrics.ObserveRequest(result, time.Since(started), len(res.Actions))
		res.Timing = timer.Report()
		span.WithExtra("file", req.FileName).End(result)
	}()

	doc, ok := req.Document, req.Document != nil
	if !ok {
		doc, ok = s.workspace.Document(req.FileName)
	}
	if !ok {
		trace.Point(ctx, trace.ScopeRequest, "missing-document", req.FileName)
		return Result{}, nil
	}

	var query source.Span
	phase := timer.Begin("span")
	text, err := doc.Text(ctx)
	if err != nil {
		timer.End(phase, "")
		return Result{}, fmt.Errorf("codeaction: read %s: %w", req.FileName, err)
	}
	query = querySpan(source.NewVirtualFile(doc.Name(), text), req)
	timer.End(phase, query.String())

	phase = timer.Begin("aggregate")
	diags, err := doc.Diagnostics(ctx)
	if err != nil {
		timer.End(phase, "")
		return Result{}, fmt.Errorf("codeaction: diagnostics of %s: %w", req.FileName, err)
	}
	groups := Aggregate(diags, query)
	timer.End(phase, fmt.Sprintf("%d groups", len(groups)))

	policy := s.currentPolicy()

	nodes, err := s.runPhase(ctx, timer, "fixes", fixInvocations(doc, policy, s.fixes, groups), &res)
	if err != nil {
		return Result{}, err
	}
	refactorNodes, err := s.runPhase(ctx, timer, "refactorings", refactoringInvocations(doc, policy, s.refactorings, query), &res)
	if err != nil {
		return Result{}, err
	}
	nodes = append(nodes, refactorNodes...)

	var sorted []candidate
	timer.Measure("order", func() string {
		_, ps := trace.Start(ctx, trace.ScopePhase, "order")
		graph := order.Build(nodes)
		sorted = graph.TopologicalSort()
		res.Cycles = append(res.Cycles, graph.Cycles()...)
		for _, c := range res.Cycles {
			trace.Point(ctx, trace.ScopeProvider, "cycle", c.From+" -> "+c.To)
		}
		s.metrics.AddCycles(len(res.Cycles))
		ps.End("")
		return fmt.Sprintf("%d nodes, %d cycles", graph.Len(), len(res.Cycles))
	})

	timer.Measure("normalize", func() string {
		res.Actions = normalize(sorted)
		return fmt.Sprintf("%d actions", len(res.Actions))
	})
	return res, nil
}

// runPhase runs one batch of invocations under its own timer phase and
// trace span, appending faults to res.
func (s *Service) runPhase(ctx context.Context, timer *observ.Timer, name string, invs []invocation, res *Result) ([]*order.Node[candidate], error) {
	idx := timer.Begin(name)
	ctx, span := trace.Start(ctx, trace.ScopePhase, name)
	nodes, faults, err := s.invoker.run(ctx, invs)
	if err != nil {
		timer.End(idx, "canceled")
		span.End("canceled")
		return nil, err
	}
	res.Faults = append(res.Faults, faults...)
	note := fmt.Sprintf("%d invocations, %d actions", len(invs), len(nodes))
	timer.End(idx, note)
	span.End(note)
	return nodes, nil
}

// querySpan resolves the request location to a span of file.
func querySpan(file *source.File, req Request) source.Span {
	if req.Selection != nil {
		return file.SpanOf(*req.Selection)
	}
	return source.SpanAt(file.OffsetOf(req.Position))
}
