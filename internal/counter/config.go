package counter

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultNamespace is the attribute prefix counter settings live under.
const DefaultNamespace = "data-purecounter-"

// MinDelay is the shortest tick interval, in milliseconds.
const MinDelay = 1

// Config is the resolved configuration for one animation run.
type Config struct {
	Start           float64
	End             float64
	Duration        int // milliseconds; 0 displays End immediately
	Delay           int // milliseconds between ticks
	Once            bool
	Decimals        int
	Legacy          bool
	Currency        bool
	CurrencySymbol  string // empty when no symbol is configured
	Separator       bool
	SeparatorSymbol string
}

// DefaultConfig returns the settings used when an attribute is absent.
func DefaultConfig() Config {
	return Config{
		Start:           0,
		End:             9001,
		Duration:        2000,
		Delay:           10,
		Once:            true,
		Decimals:        0,
		Legacy:          true,
		Currency:        false,
		CurrencySymbol:  "",
		Separator:       false,
		SeparatorSymbol: ",",
	}
}

// Resolver builds Configs from element attributes.
type Resolver struct {
	namespace string
	defaults  Config
	log       logrus.FieldLogger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithNamespace overrides the attribute prefix.
func WithNamespace(ns string) ResolverOption {
	return func(r *Resolver) {
		if ns != "" {
			r.namespace = strings.ToLower(ns)
		}
	}
}

// WithDefaults overrides the default settings.
func WithDefaults(cfg Config) ResolverOption {
	return func(r *Resolver) { r.defaults = cfg }
}

// WithResolverLogger sets the logger used for fallback decisions.
func WithResolverLogger(log logrus.FieldLogger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver returns a resolver for the default namespace.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		namespace: DefaultNamespace,
		defaults:  DefaultConfig(),
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Namespace returns the attribute prefix.
func (r *Resolver) Namespace() string {
	return r.namespace
}

// Resolve applies namespaced attributes over the defaults. It never fails:
// values that cannot be read fall back to the default for that field.
func (r *Resolver) Resolve(attrs map[string]string) Config {
	cfg := r.defaults

	// Sorted so that duplicate keys differing only in case resolve deterministically.
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, r.namespace) {
			continue
		}
		key := strings.TrimPrefix(lower, r.namespace)
		r.apply(&cfg, key, attrs[name])
	}

	if cfg.Delay < MinDelay {
		r.log.WithField("delay", cfg.Delay).Debug("counter delay below minimum, clamping")
		cfg.Delay = MinDelay
	}
	if cfg.Decimals < 0 {
		cfg.Decimals = 0
	}
	if cfg.Duration < 0 {
		cfg.Duration = 0
	}
	return cfg
}

func (r *Resolver) apply(cfg *Config, key, raw string) {
	v := CastDataType(raw)
	switch key {
	case "start":
		r.number(key, v, &cfg.Start)
	case "end":
		r.number(key, v, &cfg.End)
	case "duration":
		// Declared in seconds.
		if n, ok := v.Number(); ok {
			cfg.Duration = int(math.Trunc(n * 1000))
		} else {
			r.fallback(key, raw)
		}
	case "delay":
		r.integer(key, v, &cfg.Delay)
	case "decimals":
		r.integer(key, v, &cfg.Decimals)
	case "once":
		r.boolean(key, v, &cfg.Once)
	case "legacy":
		r.boolean(key, v, &cfg.Legacy)
	case "currency":
		r.boolean(key, v, &cfg.Currency)
	case "separator":
		r.boolean(key, v, &cfg.Separator)
	case "currencysymbol":
		if b, ok := v.Bool(); ok && !b && v.Kind == KindString {
			cfg.CurrencySymbol = ""
			return
		}
		cfg.CurrencySymbol = raw
	case "separatorsymbol":
		cfg.SeparatorSymbol = raw
	default:
		r.log.WithField("key", key).Debug("ignoring unknown counter attribute")
	}
}

func (r *Resolver) number(key string, v Value, dst *float64) {
	n, ok := v.Number()
	if !ok {
		r.fallback(key, v.Str)
		return
	}
	*dst = n
}

func (r *Resolver) integer(key string, v Value, dst *int) {
	n, ok := v.Number()
	if !ok {
		r.fallback(key, v.Str)
		return
	}
	*dst = int(math.Trunc(n))
}

func (r *Resolver) boolean(key string, v Value, dst *bool) {
	b, ok := v.Bool()
	if !ok {
		r.fallback(key, v.Str)
		return
	}
	*dst = b
}

func (r *Resolver) fallback(key, raw string) {
	r.log.WithFields(logrus.Fields{"key": key, "value": raw}).Debug("unreadable counter attribute, using default")
}
