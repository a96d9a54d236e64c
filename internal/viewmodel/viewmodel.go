package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
	"github.com/matheuskafuri/apod/internal/repository"
)

// Repository is what the view-model needs from the data layer.
type Repository interface {
	FetchPhotosFromDatabase(ctx context.Context) <-chan repository.PhotosResult
	DownloadPhotoOfToday(ctx context.Context) <-chan repository.PhotosResult
	DownloadPhotoOfDay(ctx context.Context, date nasa.Date) <-chan repository.PhotosResult
	DownloadPhotosSince(ctx context.Context, start nasa.Date) <-chan repository.PhotosResult
	DownloadPhotosBetween(ctx context.Context, start, end nasa.Date) <-chan repository.PhotosResult
}

// State is the list the UI renders.
type State struct {
	Loading bool
	Photos  []cache.Photo
}

// Effect is a one-shot notification for the UI, such as an error toast.
type Effect struct {
	Toast string
}

// Event is a user intent handled by the view-model.
type Event interface {
	name() string
}

type FetchDatabasePhotos struct{}
type DownloadPhotoOfToday struct{}
type DownloadPhotoOfDay struct{ Date nasa.Date }
type DownloadPhotosSince struct{ Start nasa.Date }
type DownloadPhotosBetween struct{ Start, End nasa.Date }
type LoadMoreDays struct{}

func (FetchDatabasePhotos) name() string   { return "fetch_database" }
func (DownloadPhotoOfToday) name() string  { return "download_today" }
func (DownloadPhotoOfDay) name() string    { return "download_day" }
func (DownloadPhotosSince) name() string   { return "download_since" }
func (DownloadPhotosBetween) name() string { return "download_between" }
func (LoadMoreDays) name() string          { return "load_more_days" }

const effectBuffer = 16

type ViewModel struct {
	repo  Repository
	pager *Pager
	log   *slog.Logger

	mu      sync.Mutex
	state   State
	paging  bool
	closed  bool
	subs    map[int]chan State
	nextSub int

	effects chan Effect
	wg      sync.WaitGroup
}

func New(repo Repository, pager *Pager, logger *slog.Logger) *ViewModel {
	if pager == nil {
		pager = NewPager(DefaultPageDays)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewModel{
		repo:    repo,
		pager:   pager,
		log:     logger,
		subs:    make(map[int]chan State),
		effects: make(chan Effect, effectBuffer),
	}
}

// State returns the current snapshot.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Subscribe returns a channel that always holds the latest state. A slow
// reader skips intermediate states. The current state is delivered first.
func (vm *ViewModel) Subscribe() (<-chan State, func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id := vm.nextSub
	vm.nextSub++
	ch := make(chan State, 1)
	ch <- vm.state
	vm.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			vm.mu.Lock()
			defer vm.mu.Unlock()
			delete(vm.subs, id)
			close(ch)
		})
	}
}

// Effects delivers toasts. Effects are dropped when nobody keeps up.
func (vm *ViewModel) Effects() <-chan Effect {
	return vm.effects
}

// StartEvent handles ev in the background. Events started after ctx is done
// or after Wait has begun are dropped.
func (vm *ViewModel) StartEvent(ctx context.Context, ev Event) {
	if ctx.Err() != nil {
		return
	}
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.wg.Add(1)
	vm.mu.Unlock()

	go func() {
		defer vm.wg.Done()
		vm.Process(ctx, ev)
	}()
}

// Wait blocks until every event started with StartEvent has finished and
// refuses new ones.
func (vm *ViewModel) Wait() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
	vm.wg.Wait()
}

// Process handles ev and returns once its repository sequence is drained.
func (vm *ViewModel) Process(ctx context.Context, ev Event) {
	log := vm.log.With("event", ev.name(), "event_id", uuid.NewString())

	var results <-chan repository.PhotosResult
	switch e := ev.(type) {
	case FetchDatabasePhotos:
		results = vm.repo.FetchPhotosFromDatabase(ctx)
	case DownloadPhotoOfToday:
		results = vm.repo.DownloadPhotoOfToday(ctx)
	case DownloadPhotoOfDay:
		results = vm.repo.DownloadPhotoOfDay(ctx, e.Date)
	case DownloadPhotosSince:
		results = vm.repo.DownloadPhotosSince(ctx, e.Start)
	case DownloadPhotosBetween:
		results = vm.repo.DownloadPhotosBetween(ctx, e.Start, e.End)
	case LoadMoreDays:
		start, end, ok := vm.beginPage()
		if !ok {
			log.Debug("load more ignored")
			return
		}
		log = log.With("start", start.String(), "end", end.String())
		log.Debug("processing event")
		failed := vm.consume(log, vm.repo.DownloadPhotosBetween(ctx, start, end))
		vm.endPage(start, !failed && ctx.Err() == nil)
		return
	default:
		log.Warn("unknown event", "type", fmt.Sprintf("%T", ev))
		return
	}

	log.Debug("processing event")
	vm.consume(log, results)
}

// beginPage claims the single paging slot and computes the next window.
func (vm *ViewModel) beginPage() (start, end nasa.Date, ok bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.paging || vm.state.Loading {
		return nasa.Date{}, nasa.Date{}, false
	}
	start, end, ok = vm.pager.Next(vm.state.Photos)
	if !ok {
		vm.emit(Effect{Toast: "no pictures before " + nasa.FirstDate.String()})
		return nasa.Date{}, nasa.Date{}, false
	}
	vm.paging = true
	vm.state.Loading = true
	vm.publish()
	return start, end, true
}

// endPage releases the paging slot. A window that failed is offered again on
// the next load.
func (vm *ViewModel) endPage(start nasa.Date, done bool) {
	if done {
		vm.pager.Advance(start)
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.paging = false
}

// consume applies a result sequence to the state and reports whether it
// carried an error.
func (vm *ViewModel) consume(log *slog.Logger, results <-chan repository.PhotosResult) (failed bool) {
	for res := range results {
		vm.mu.Lock()
		vm.state.Loading = res.IsLoading()
		switch {
		case res.IsSuccess():
			vm.state.Photos = MergePhotos(vm.state.Photos, res.Data)
			log.Debug("state updated", "photos", len(vm.state.Photos))
		case res.IsError():
			failed = true
			log.Warn("event failed", "message", res.Message)
			vm.emit(Effect{Toast: res.Message})
		}
		vm.publish()
		vm.mu.Unlock()
	}

	// A cancelled sequence can close right after Loading.
	vm.mu.Lock()
	if vm.state.Loading {
		vm.state.Loading = false
		vm.publish()
	}
	vm.mu.Unlock()
	return failed
}

// publish must be called with mu held.
func (vm *ViewModel) publish() {
	for _, ch := range vm.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- vm.state:
		default:
		}
	}
}

func (vm *ViewModel) emit(e Effect) {
	select {
	case vm.effects <- e:
	default:
		vm.log.Warn("dropping effect", "toast", e.Toast)
	}
}
