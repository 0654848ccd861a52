package asset

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/udisondev/horde/internal/event"
	"github.com/udisondev/horde/internal/model"
)

// Handle is a resolved, renderable species.
type Handle struct {
	Species string
	Sprite  string
	Bytes   int
}

// Host is what the runtime needs from the asset side.
type Host interface {
	// Resolve returns the species handle, starting an async load if needed.
	Resolve(species string) (Handle, bool)
	// PlayAnimation is fire-and-forget; one-shot cues report completion.
	PlayAnimation(id model.EntityID, cue model.Cue)
}

type playback struct {
	species string
	cue     model.Cue
	until   time.Duration
}

type loadResult struct {
	handle Handle
}

// Library loads species assets off the tick goroutine and times one-shot
// animations. Results come back as queue messages; everything except Run
// is called from the tick goroutine.
type Library struct {
	manifest *Manifest
	queue    *event.Queue

	requests chan string
	results  map[string]Handle
	pending  map[string]bool
	loaded   chan loadResult

	attached map[model.EntityID]string
	playing  map[model.EntityID]playback
	clock    time.Duration
}

// NewLibrary creates a library reporting into queue.
func NewLibrary(manifest *Manifest, queue *event.Queue) *Library {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	return &Library{
		manifest: manifest,
		queue:    queue,
		requests: make(chan string, 64),
		results:  make(map[string]Handle),
		pending:  make(map[string]bool),
		loaded:   make(chan loadResult, 64),
		attached: make(map[model.EntityID]string),
		playing:  make(map[model.EntityID]playback),
	}
}

// Run loads requested species until ctx is done.
func (l *Library) Run(ctx context.Context) error {
	slog.Info("asset loader started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("asset loader stopping")
			return nil
		case species := <-l.requests:
			h := l.load(species)
			select {
			case l.loaded <- loadResult{handle: h}:
			case <-ctx.Done():
				return nil
			}
			l.queue.Push(event.Message{Kind: event.AssetReady, Species: species})
		}
	}
}

func (l *Library) load(species string) Handle {
	h := Handle{Species: species, Sprite: l.manifest.SpritePath(species)}
	if h.Sprite == "" {
		return h
	}
	data, err := os.ReadFile(h.Sprite)
	if err != nil {
		slog.Warn("sprite not loaded, using placeholder", "species", species, "path", h.Sprite, "error", err)
		return h
	}
	h.Bytes = len(data)
	return h
}

// Collect moves finished loads into the resolved set. Called in the
// bookkeeping phase before the queue is drained.
func (l *Library) Collect() {
	for {
		select {
		case res := <-l.loaded:
			l.results[res.handle.Species] = res.handle
			delete(l.pending, res.handle.Species)
		default:
			return
		}
	}
}

// Resolve returns the species handle once loaded. The first miss
// requests an async load; a full request channel retries on a later call.
func (l *Library) Resolve(species string) (Handle, bool) {
	if h, ok := l.results[species]; ok {
		return h, true
	}
	if l.pending[species] {
		return Handle{}, false
	}
	select {
	case l.requests <- species:
		l.pending[species] = true
	default:
		slog.Debug("asset load queue full", "species", species)
	}
	return Handle{}, false
}

// Attach links an entity to its species animations.
func (l *Library) Attach(id model.EntityID, species string) {
	l.attached[id] = species
}

// Detach forgets an entity and any animation in flight.
func (l *Library) Detach(id model.EntityID) {
	delete(l.attached, id)
	delete(l.playing, id)
}

// PlayAnimation starts cue on id. A death animation in flight is never replaced.
func (l *Library) PlayAnimation(id model.EntityID, cue model.Cue) {
	species, ok := l.attached[id]
	if !ok {
		return
	}
	if cur, ok := l.playing[id]; ok && cur.cue == model.CueDeath {
		return
	}
	if !cue.OneShot() {
		delete(l.playing, id)
		return
	}
	l.playing[id] = playback{
		species: species,
		cue:     cue,
		until:   l.clock + l.manifest.Duration(species, cue),
	}
}

// Advance moves the animation clock and reports finished one-shot cues.
func (l *Library) Advance(now time.Duration) {
	l.clock = now

	var done []event.Message
	for id, pb := range l.playing {
		if now < pb.until {
			continue
		}
		delete(l.playing, id)
		done = append(done, event.Message{
			Kind:    event.AnimationFinished,
			Entity:  id,
			Species: pb.species,
			Cue:     pb.cue,
		})
	}
	// map order is random; keep the queue deterministic
	slices.SortFunc(done, func(a, b event.Message) int { return cmp.Compare(a.Entity, b.Entity) })
	for _, msg := range done {
		l.queue.Push(msg)
	}
}

// Playing returns the one-shot cue in flight for id.
func (l *Library) Playing(id model.EntityID) (model.Cue, bool) {
	pb, ok := l.playing[id]
	return pb.cue, ok
}

var _ Host = (*Library)(nil)
