// Package importmap maps bare package specifiers to CDN module URLs.
package importmap

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"livepreview/internal/cache/memory"
)

const (
	DefaultCDN          = "https://esm.sh"
	DefaultReactVersion = "19.2.0"
)

// Pinned packages always resolve to the engine's React version so the
// preview never loads two copies of the renderer's singletons.
var Pinned = []string{"react", "react-dom"}

var distTagRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// ImportMap is the document embedded as <script type="importmap">.
type ImportMap struct {
	Imports map[string]string `json:"imports"`
}

// Resolve applies import map matching to a bare specifier: an exact key, the
// longest trailing-slash prefix key, then a package key expanded to a subpath.
func (m ImportMap) Resolve(specifier string) (string, bool) {
	if len(m.Imports) == 0 {
		return specifier, false
	}
	if v, ok := m.Imports[specifier]; ok {
		return v, true
	}
	if !strings.ContainsRune(specifier, '/') {
		return specifier, false
	}

	var prefixes, packages []string
	for k := range m.Imports {
		if strings.HasSuffix(k, "/") {
			prefixes = append(prefixes, k)
		} else {
			packages = append(packages, k)
		}
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	for _, k := range prefixes {
		if strings.HasPrefix(specifier, k) {
			return m.Imports[k] + specifier[len(k):], true
		}
	}

	sort.Slice(packages, func(i, j int) bool { return len(packages[i]) > len(packages[j]) })
	for _, k := range packages {
		if !strings.HasPrefix(specifier, k+"/") {
			continue
		}
		base, query := splitQuery(m.Imports[k])
		url := base + specifier[len(k):]
		if query != "" {
			url += "?" + query
		}
		return url, true
	}
	return specifier, false
}

// JSON renders the map for embedding in HTML. The encoder escapes '<', so
// the output cannot close the surrounding script element.
func (m ImportMap) JSON() string {
	b, err := json.Marshal(m)
	if err != nil {
		return `{"imports":{}}`
	}
	return string(b)
}

type Options struct {
	CDN          string
	ReactVersion string
	CacheEntries int
	CacheTTL     time.Duration
}

type Builder struct {
	cdn          string
	reactVersion string
	cache        *memory.LRUTTL[string, ImportMap]
	log          *logrus.Entry
}

func NewBuilder(opts Options) *Builder {
	log := logrus.WithField("component", "importmap")
	cdn := strings.TrimRight(strings.TrimSpace(opts.CDN), "/")
	if cdn == "" {
		cdn = DefaultCDN
	}
	version := strings.TrimSpace(opts.ReactVersion)
	if v, err := semver.StrictNewVersion(version); err != nil {
		if version != "" {
			log.WithField("react_version", version).Warn("invalid react version, using default")
		}
		version = DefaultReactVersion
	} else {
		version = v.String()
	}
	entries := opts.CacheEntries
	if entries <= 0 {
		entries = 64
	}
	return &Builder{
		cdn:          cdn,
		reactVersion: version,
		cache:        memory.NewLRUTTL[string, ImportMap](entries, 0, opts.CacheTTL),
		log:          log,
	}
}

func (b *Builder) ReactVersion() string { return b.reactVersion }

// BuildFromManifest parses raw and builds its import map, memoized by content
// hash. Absent or malformed manifests produce only the pinned entries.
func (b *Builder) BuildFromManifest(raw []byte) ImportMap {
	sum := sha256.Sum256(raw)
	key := hex.EncodeToString(sum[:])
	if m, ok := b.cache.Get(key); ok {
		return m
	}
	m := b.Build(ParseManifest(raw))
	b.cache.Set(key, m, len(raw))
	return m
}

// Build maps every declared package. Pinned packages ignore the declared
// version. Versions that do not name a registry release are skipped.
func (b *Builder) Build(manifest Manifest) ImportMap {
	imports := make(map[string]string)
	for _, name := range Pinned {
		url := b.cdn + "/" + name + "@" + b.reactVersion
		imports[name] = url
		imports[name+"/"] = url + "/"
	}

	for name, raw := range manifest.Merged() {
		if isPinned(name) || !validPackageName(name) {
			continue
		}
		version, ok := normalizeVersion(raw)
		if !ok {
			b.log.WithFields(logrus.Fields{"package": name, "version": raw}).Debug("skipping non-registry dependency")
			continue
		}
		spec := name
		if version != "" {
			spec += "@" + version
		}
		imports[name] = b.cdn + "/" + spec + "?external=" + strings.Join(Pinned, ",")
		// Subpath modules cannot carry a query, so they use the CDN's
		// external-all form and take every bare import from this map.
		imports[name+"/"] = b.cdn + "/*" + spec + "/"
	}
	return ImportMap{Imports: imports}
}

// normalizeVersion strips a leading range operator and reports whether the
// result can be embedded in a CDN URL. An empty version means "latest".
func normalizeVersion(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	switch {
	case v == "", v == "*", v == "latest", v == "x":
		return "", true
	case strings.HasPrefix(v, "file:"), strings.HasPrefix(v, "link:"),
		strings.HasPrefix(v, "workspace:"), strings.HasPrefix(v, "portal:"),
		strings.HasPrefix(v, "git"), strings.HasPrefix(v, "github:"),
		strings.Contains(v, "://"), strings.HasPrefix(v, "npm:"):
		return "", false
	}
	v = strings.TrimLeft(v, "^~")
	if parsed, err := semver.NewVersion(v); err == nil {
		return parsed.Original(), true
	}
	if v != "" && v[0] >= '0' && v[0] <= '9' && !strings.ContainsAny(v, " |<>=") {
		if _, err := semver.NewConstraint(v); err == nil {
			return v, true
		}
	}
	if distTagRe.MatchString(v) {
		return v, true
	}
	return "", true
}

func isPinned(name string) bool {
	return slices.Contains(Pinned, name)
}

func validPackageName(name string) bool {
	if name == "" || strings.ContainsAny(name, " \\?#") || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasPrefix(name, "@") {
		parts := strings.Split(name, "/")
		return len(parts) == 2 && len(parts[0]) > 1 && parts[1] != ""
	}
	return !strings.Contains(name, "/")
}

func splitQuery(s string) (string, string) {
	if i := strings.LastIndexByte(s, '?'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
