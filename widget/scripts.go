package widget

import "fmt"

// Embed scripts per network
var embedScripts = map[string]string{
	"instagram": "https://www.instagram.com/embed.js",
}

// Elfsight platform script and the global it installs
const (
	ElfsightPlatformSrc    = "https://static.elfsight.com/platform/platform.js"
	ElfsightPlatformGlobal = "eapps"
)

// ScriptRegistry injects each network's embed script at most once into a
// document, tracked with a per-network loaded flag.
type ScriptRegistry struct {
	doc     *Document
	sources map[string]string
	loaded  map[string]bool
}

// NewScriptRegistry creates a registry bound to doc. Networks whose script
// the document already carries start out as loaded.
func NewScriptRegistry(doc *Document) *ScriptRegistry {
	r := &ScriptRegistry{
		doc:     doc,
		sources: embedScripts,
		loaded:  make(map[string]bool),
	}
	for network, src := range r.sources {
		if doc.HasScript(src) {
			r.loaded[network] = true
		}
	}
	return r
}

// Load makes sure the embed script of network is on the page. It returns
// true when this call injected it and false when it was already loaded.
func (r *ScriptRegistry) Load(network string) (bool, error) {
	src, ok := r.sources[network]
	if !ok {
		return false, fmt.Errorf("no embed script for network %q", network)
	}
	if r.loaded[network] {
		return false, nil
	}
	r.loaded[network] = true
	return r.doc.AddScript(src), nil
}

// Loaded reports the flag for network
func (r *ScriptRegistry) Loaded(network string) bool {
	return r.loaded[network]
}

// EnsureElfsightPlatform loads the Elfsight platform script once. When the
// tag is already on the page but the platform has not initialized yet, a
// one-shot load listener runs init and removes itself; awaiting reports that
// case so the render can emit the same listener for the browser.
func EnsureElfsightPlatform(doc *Document, init func()) (awaiting bool) {
	if doc.HasScript(ElfsightPlatformSrc) {
		if doc.Initialized(ElfsightPlatformGlobal) {
			return false
		}
		var remove func()
		remove = doc.OnLoad(ElfsightPlatformSrc, func() {
			remove()
			doc.MarkInitialized(ElfsightPlatformGlobal)
			if init != nil {
				init()
			}
		})
		return true
	}
	doc.AddScript(ElfsightPlatformSrc)
	return false
}
