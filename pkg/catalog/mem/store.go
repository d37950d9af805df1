// Package mem implements an in-memory config file catalogue.
package mem

import (
	"fmt"
	"sync"
	"time"

	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/extension"
	"github.com/runic/mailman/pkg/extension/event"
)

// Store implements an in-memory config file catalogue.  Writes are last-write-wins.
type Store struct {
	sync.Mutex
	order   []catalog.Service // Services in catalogue order.
	boxes   map[string]*svcBox
	extHost *extension.Host
}

type svcBox struct {
	sync.RWMutex
	service catalog.Service
	names   []string // File names in catalogue order.
	files   map[string]*catalog.ConfigFile
}

var _ catalog.Store = &Store{}

// New returns a store populated from seed.  extHost may be nil.
func New(seed *catalog.Seed, extHost *extension.Host) *Store {
	s := &Store{
		boxes:   make(map[string]*svcBox),
		extHost: extHost,
	}
	for _, ss := range seed.Services {
		box := &svcBox{
			service: ss.Service,
			files:   make(map[string]*catalog.ConfigFile, len(ss.Files)),
		}
		for _, f := range ss.Files {
			f.Service = ss.ID
			box.names = append(box.names, f.Name)
			box.files[f.Name] = &f
		}
		s.order = append(s.order, ss.Service)
		s.boxes[ss.ID] = box
	}
	return s
}

// Services lists the catalogue services.
func (s *Store) Services() []catalog.Service {
	s.Lock()
	defer s.Unlock()
	return append([]catalog.Service(nil), s.order...)
}

// Service returns the service with the given id.
func (s *Store) Service(id string) (svc catalog.Service, err error) {
	err = s.withService(id, false, func(box *svcBox) {
		svc = box.service
	})
	return svc, err
}

// Files lists the files of a service.
func (s *Store) Files(service string) (fs []catalog.ConfigFile, err error) {
	err = s.withService(service, false, func(box *svcBox) {
		fs = make([]catalog.ConfigFile, 0, len(box.names))
		for _, name := range box.names {
			fs = append(fs, *box.files[name])
		}
	})
	return fs, err
}

// File returns a single file.
func (s *Store) File(service, name string) (f catalog.ConfigFile, err error) {
	found := false
	err = s.withService(service, false, func(box *svcBox) {
		if cf, ok := box.files[name]; ok {
			f, found = *cf, true
		}
	})
	if err == nil && !found {
		err = fmt.Errorf("%w: %s/%s", catalog.ErrNotExist, service, name)
	}
	return f, err
}

// Update replaces the content of a file and emits an after-saved event.
func (s *Store) Update(service, name, content string) error {
	var saved *event.ConfigSaved
	err := s.withService(service, true, func(box *svcBox) {
		cf, ok := box.files[name]
		if !ok {
			return
		}
		cf.Content = content
		saved = &event.ConfigSaved{
			Service: service,
			File:    name,
			Path:    cf.Path,
			Size:    int64(len(content)),
			Time:    time.Now(),
		}
	})
	if err != nil {
		return err
	}
	if saved == nil {
		return fmt.Errorf("%w: %s/%s", catalog.ErrNotExist, service, name)
	}
	if s.extHost != nil {
		s.extHost.Events.AfterConfigSaved.Emit(saved)
	}
	return nil
}

// withService finds a service box, locks it, then calls f.  Services are never created on demand.
func (s *Store) withService(service string, writeLock bool, f func(box *svcBox)) error {
	s.Lock()
	box, ok := s.boxes[service]
	s.Unlock()
	if !ok {
		return fmt.Errorf("%w: service %q", catalog.ErrNotExist, service)
	}
	if writeLock {
		box.Lock()
		defer box.Unlock()
	} else {
		box.RLock()
		defer box.RUnlock()
	}
	f(box)
	return nil
}
