package widget

// Document models the page a widget is rendered into: which external scripts
// it already carries, which script globals are initialized and who waits for
// a script to finish loading. One Document is used per render and is not safe
// for concurrent use.
type Document struct {
	clientSide  bool
	scripts     []string
	present     map[string]bool
	added       []string
	initialized map[string]bool
	listeners   map[string]map[int]func()
	nextID      int
}

// NewDocument creates a document. clientSide reports whether the render
// happens inside an already running page rather than as the initial server
// response. present lists script sources the page already carries.
func NewDocument(clientSide bool, present ...string) *Document {
	d := &Document{
		clientSide:  clientSide,
		present:     make(map[string]bool),
		initialized: make(map[string]bool),
		listeners:   make(map[string]map[int]func()),
	}
	for _, src := range present {
		if !d.present[src] {
			d.present[src] = true
			d.scripts = append(d.scripts, src)
		}
	}
	return d
}

func (d *Document) ClientSide() bool {
	return d.clientSide
}

// HasScript reports whether a script tag with src is on the page
func (d *Document) HasScript(src string) bool {
	return d.present[src]
}

// AddScript puts a script tag on the page. Adding a source twice is a no-op
// and returns false.
func (d *Document) AddScript(src string) bool {
	if d.present[src] {
		return false
	}
	d.present[src] = true
	d.scripts = append(d.scripts, src)
	d.added = append(d.added, src)
	return true
}

// Scripts returns every script source on the page in insertion order
func (d *Document) Scripts() []string {
	return append([]string(nil), d.scripts...)
}

// Added returns the script sources added during this render. These are the
// tags the render has to emit.
func (d *Document) Added() []string {
	return append([]string(nil), d.added...)
}

// Initialized reports whether the script global name has been set up
func (d *Document) Initialized(global string) bool {
	return d.initialized[global]
}

// MarkInitialized records that the script global name is ready
func (d *Document) MarkInitialized(global string) {
	d.initialized[global] = true
}

// OnLoad registers fn to run when the script src reports loaded. The returned
// func removes the listener; calling it more than once is harmless.
func (d *Document) OnLoad(src string, fn func()) (remove func()) {
	if d.listeners[src] == nil {
		d.listeners[src] = make(map[int]func())
	}
	id := d.nextID
	d.nextID++
	d.listeners[src][id] = fn
	return func() { delete(d.listeners[src], id) }
}

// Listeners returns how many load listeners wait on src
func (d *Document) Listeners(src string) int {
	return len(d.listeners[src])
}

// DispatchLoad runs the load listeners registered for src
func (d *Document) DispatchLoad(src string) {
	fns := make([]func(), 0, len(d.listeners[src]))
	for _, fn := range d.listeners[src] {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn()
	}
}
