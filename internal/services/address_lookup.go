package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

// MsgCEPNotFound is shown under the postal code field when a lookup fails
const MsgCEPNotFound = "CEP não encontrado ou inválido"

// CEPBackend resolves canonical postal codes
type CEPBackend interface {
	LookupCEP(ctx context.Context, cep string) (models.AddressFragment, error)
}

// CEPResolver is shared by every page session. It consults the cache and
// coalesces identical concurrent lookups into one backend call.
type CEPResolver struct {
	backend CEPBackend
	cache   *CEPCache
	group   singleflight.Group
	logger  *logging.SafeLogger
}

// NewCEPResolver creates a resolver; cache may be nil
func NewCEPResolver(backend CEPBackend, cache *CEPCache, logger *logging.SafeLogger) *CEPResolver {
	return &CEPResolver{
		backend: backend,
		cache:   cache,
		logger:  logger.Named("cep_resolver"),
	}
}

// Resolve returns the address fragment for a canonical 8-digit CEP
func (r *CEPResolver) Resolve(ctx context.Context, cep string) (models.AddressFragment, error) {
	if len(cep) != utils.MaxDigits(utils.FieldCEP) {
		return models.AddressFragment{}, ErrIncompleteCEP
	}

	if frag, ok := r.cache.Get(ctx, cep); ok {
		observability.CEPLookups.WithLabelValues("cache_hit").Inc()
		return frag, nil
	}

	// the shared call must outlive a single caller giving up
	ch := r.group.DoChan(cep, func() (interface{}, error) {
		frag, err := r.backend.LookupCEP(context.WithoutCancel(ctx), cep)
		if err != nil {
			return models.AddressFragment{}, err
		}
		r.cache.Set(context.WithoutCancel(ctx), cep, frag)
		return frag, nil
	})

	select {
	case <-ctx.Done():
		return models.AddressFragment{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			observability.CEPLookups.WithLabelValues("not_found").Inc()
			return models.AddressFragment{}, res.Err
		}
		observability.CEPLookups.WithLabelValues("found").Inc()
		return res.Val.(models.AddressFragment), nil
	}
}

// AddressTarget receives lookup outcomes; PersonForm implements it
type AddressTarget interface {
	ApplyAddress(frag models.AddressFragment)
	ApplyLookupError(msg string)
	CurrentCEP() string
	Detached() bool
}

// LookupResult reports what a lookup did to the form
type LookupResult struct {
	// Applied is false when a newer lookup superseded this one
	Applied bool                   `json:"applied"`
	Address models.AddressFragment `json:"address"`
	Error   string                 `json:"error,omitempty"`
}

// AddressLookup is the per-form lookup client. Each lookup takes a token
// from its SequenceGuard; only the latest token may touch the form.
type AddressLookup struct {
	resolver *CEPResolver
	target   AddressTarget
	guard    SequenceGuard

	mu       sync.Mutex
	inFlight atomic.Int32
	logger   *logging.SafeLogger
}

// NewAddressLookup binds a lookup client to a form
func NewAddressLookup(resolver *CEPResolver, target AddressTarget) *AddressLookup {
	return &AddressLookup{
		resolver: resolver,
		target:   target,
		logger:   resolver.logger,
	}
}

// Invalidate supersedes any lookup in flight, e.g. after the CEP was edited.
// Callers must not hold the form lock.
func (l *AddressLookup) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.guard.Next()
}

// Loading reports whether a lookup is in flight
func (l *AddressLookup) Loading() bool {
	return l.inFlight.Load() > 0
}

// Lookup resolves maskedCEP and applies the outcome to the form. Lookup
// failures are form state, reported in LookupResult.Error; the returned
// error is ErrIncompleteCEP (no call made) or ErrSessionClosed.
func (l *AddressLookup) Lookup(ctx context.Context, maskedCEP string) (LookupResult, error) {
	cep := utils.Canonical(maskedCEP)
	if len(cep) != utils.MaxDigits(utils.FieldCEP) {
		return LookupResult{}, ErrIncompleteCEP
	}
	if l.target.Detached() {
		return LookupResult{}, ErrSessionClosed
	}

	ctx, span := utils.TraceBusinessLogic(ctx, "cep_lookup")
	defer span.End()

	l.mu.Lock()
	token := l.guard.Next()
	l.mu.Unlock()
	l.inFlight.Add(1)

	frag, err := l.resolver.Resolve(ctx, cep)

	// check and apply happen under mu so no newer token slips in between
	l.inFlight.Add(-1)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.target.Detached() {
		observability.CEPLookups.WithLabelValues("suppressed").Inc()
		return LookupResult{}, ErrSessionClosed
	}
	if !l.guard.IsLatest(token) || utils.Canonical(l.target.CurrentCEP()) != cep {
		observability.CEPLookups.WithLabelValues("stale").Inc()
		utils.AddSpanAttribute(span, "lookup.stale", true)
		return LookupResult{Applied: false}, nil
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return LookupResult{Applied: false}, nil
		}
		l.logger.Debug("cep lookup failed", zap.String("cep", cep), zap.Error(err))
		l.target.ApplyLookupError(MsgCEPNotFound)
		return LookupResult{Applied: true, Error: MsgCEPNotFound}, nil
	}

	l.target.ApplyAddress(frag)
	return LookupResult{Applied: true, Address: frag}, nil
}
