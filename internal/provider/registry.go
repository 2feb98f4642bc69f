// Package provider holds the static registry of cloud/PaaS providers
// and the fingerprints used to recognise them.
package provider

import (
	"fmt"
)

// Provider describes one cloud platform and its recognition signatures.
type Provider struct {
	Key   string
	Name  string
	Icon  string
	Color string

	// HeaderSignatures are matched case-insensitively against the
	// flattened "key=value" form of response headers.
	HeaderSignatures []string

	// DomainSuffixes are matched case-insensitively against the final
	// effective hostname.
	DomainSuffixes []string

	// IndexQuery is the search expression used by the index-based
	// discovery source. Empty means the provider is skipped there.
	IndexQuery string
}

// Registry is an ordered, immutable provider table. Iteration order is
// insertion order; earlier providers win classification ties.
type Registry struct {
	providers []Provider
	byKey     map[string]int
}

// Load validates a provider list and returns a registry over it.
func Load(providers []Provider) (*Registry, error) {
	byKey := make(map[string]int, len(providers))
	for i, p := range providers {
		if p.Key == "" {
			return nil, fmt.Errorf("provider at index %d has empty key", i)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("provider %q has empty name", p.Key)
		}
		if _, dup := byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate provider key %q", p.Key)
		}
		if len(p.HeaderSignatures) == 0 && len(p.DomainSuffixes) == 0 {
			return nil, fmt.Errorf("provider %q has no signatures", p.Key)
		}
		byKey[p.Key] = i
	}

	reg := &Registry{
		providers: make([]Provider, len(providers)),
		byKey:     byKey,
	}
	copy(reg.providers, providers)
	return reg, nil
}

// All returns the providers in registry order.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Get returns the provider for a key.
func (r *Registry) Get(key string) (Provider, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Provider{}, false
	}
	return r.providers[i], true
}

// Has reports whether the key is a known provider.
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}

// Default returns the built-in registry. Order matters: it is the
// classification tie-break order.
func Default() *Registry {
	reg, err := Load(defaultProviders)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return reg
}

var defaultProviders = []Provider{
	{
		Key: "heroku", Name: "Heroku", Icon: "🟣", Color: "#6762a6",
		HeaderSignatures: []string{"cowboy", "vegur", "heroku"},
		DomainSuffixes:   []string{".herokuapp.com"},
		IndexQuery:       `ssl:"herokuapp.com"`,
	},
	{
		Key: "aws", Name: "Amazon AWS", Icon: "🟠", Color: "#ff9900",
		HeaderSignatures: []string{"x-amz-", "awselb", "cloudfront"},
		DomainSuffixes:   []string{".elasticbeanstalk.com", ".awsglobalaccelerator.com"},
		IndexQuery:       `ssl:"elasticbeanstalk.com"`,
	},
	{
		Key: "gcp", Name: "Google Cloud", Icon: "🔵", Color: "#4285f4",
		HeaderSignatures: []string{"google frontend", "x-cloud-trace-context"},
		DomainSuffixes:   []string{".appspot.com", ".run.app"},
		IndexQuery:       `ssl:"appspot.com"`,
	},
	{
		Key: "azure", Name: "Microsoft Azure", Icon: "🔷", Color: "#0078d4",
		HeaderSignatures: []string{"x-azure-ref", "arr-disable-session-affinity"},
		DomainSuffixes:   []string{".azurewebsites.net"},
		IndexQuery:       `ssl:"azurewebsites.net"`,
	},
	{
		Key: "digitalocean", Name: "DigitalOcean", Icon: "🟢", Color: "#0080ff",
		HeaderSignatures: []string{"x-do-app-origin", "digitalocean"},
		DomainSuffixes:   []string{".ondigitalocean.app"},
		IndexQuery:       `ssl:"ondigitalocean.app"`,
	},
	{
		Key: "netlify", Name: "Netlify", Icon: "🟤", Color: "#00c7b7",
		HeaderSignatures: []string{"netlify", "x-nf-request-id"},
		DomainSuffixes:   []string{".netlify.app"},
		IndexQuery:       `ssl:"netlify.app"`,
	},
	{
		Key: "vercel", Name: "Vercel", Icon: "⚫", Color: "#000000",
		HeaderSignatures: []string{"x-vercel-id", "server=vercel"},
		DomainSuffixes:   []string{".vercel.app"},
		IndexQuery:       `ssl:"vercel.app"`,
	},
	{
		Key: "render", Name: "Render", Icon: "🟠", Color: "#46e3b7",
		HeaderSignatures: []string{"x-render-origin-server", "render"},
		DomainSuffixes:   []string{".onrender.com"},
		IndexQuery:       `ssl:"onrender.com"`,
	},
	{
		Key: "scalingo", Name: "Scalingo", Icon: "🇫🇷", Color: "#3b4aff",
		HeaderSignatures: []string{"x-request-id=scalingo", "scalingo"},
		DomainSuffixes:   []string{".scalingo.io"},
		IndexQuery:       `ssl:"scalingo.io"`,
	},
	{
		Key: "railway", Name: "Railway", Icon: "🚂", Color: "#0b0d0e",
		HeaderSignatures: []string{"x-railway-request-id", "railway-edge"},
		DomainSuffixes:   []string{".railway.app", ".up.railway.app"},
		IndexQuery:       `ssl:"railway.app"`,
	},
	{
		Key: "fly", Name: "Fly.io", Icon: "✈️", Color: "#7b3ff2",
		HeaderSignatures: []string{"fly-request-id", "via=fly.io"},
		DomainSuffixes:   []string{".fly.dev"},
		IndexQuery:       `ssl:"fly.dev"`,
	},
}
