// Package editor implements the configuration editor: selection of a service and one of its files,
// an in-memory edit buffer, validation, and save/restart through a Backend.
package editor

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/action"
	"github.com/runic/mailman/pkg/catalog"
	"github.com/runic/mailman/pkg/metric"
)

// DefaultService is the service selected by a new editor.
const DefaultService = "postfix"

var (
	// ErrUnknownService indicates a service id that is not in the catalogue.
	ErrUnknownService = errors.New("unknown service")

	// ErrNoFile indicates an operation that requires a selected file.
	ErrNoFile = errors.New("no file selected")
)

var (
	expSaves       *metric.Counter
	expSaveErrors  *metric.Counter
	expInvalid     *metric.Counter
	expRestarts    *metric.Counter
	expBusyRefusal *metric.Counter
)

func init() {
	m := expvar.NewMap("editor")
	expSaves = metric.NewCounter(m, "Saves")
	expSaveErrors = metric.NewCounter(m, "SaveErrors")
	expInvalid = metric.NewCounter(m, "ValidationFailures")
	expRestarts = metric.NewCounter(m, "Restarts")
	expBusyRefusal = metric.NewCounter(m, "BusyRefusals")
}

// Editor holds the per-session editor state.
type Editor struct {
	store         catalog.Store
	backend       Backend
	successWindow time.Duration
	logger        zerolog.Logger

	mu         sync.Mutex
	service    string
	file       string // Empty when no file is selected.
	buffer     string
	validation string // Message of the last failed validation.
	success    bool
	successGen uint64 // Bumped on every successful save, guards the clear timer.

	saving     action.Flag
	restarting action.Flag
}

// New returns an editor with the default service selected and no file.
func New(store catalog.Store, backend Backend, successWindow time.Duration) *Editor {
	return &Editor{
		store:         store,
		backend:       backend,
		successWindow: successWindow,
		logger:        log.With().Str("module", "editor").Logger(),
		service:       DefaultService,
	}
}

// WithLogger replaces the editor logger, typically to add session fields.
func (e *Editor) WithLogger(logger zerolog.Logger) *Editor {
	e.logger = logger
	return e
}

// SelectService makes id the active service, discarding the selected file and buffer.
func (e *Editor) SelectService(id string) error {
	if _, err := e.store.Service(id); err != nil {
		if errors.Is(err, catalog.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrUnknownService, id)
		}
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.service = id
	e.file = ""
	e.buffer = ""
	e.validation = ""
	e.success = false
	return nil
}

// SelectFile selects a file of the active service and loads its stored content into the buffer.
func (e *Editor) SelectFile(name string) error {
	e.mu.Lock()
	service := e.service
	e.mu.Unlock()

	f, err := e.store.File(service, name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.service != service {
		// Service changed underneath us, the file no longer belongs to it.
		return fmt.Errorf("%w: %s/%s", catalog.ErrNotExist, e.service, name)
	}
	e.file = f.Name
	e.buffer = f.Content
	e.validation = ""
	e.success = false
	return nil
}

// EditBuffer replaces the edit buffer.
func (e *Editor) EditBuffer(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = text
	e.success = false
}

// Validate checks the buffer of the selected file, recording or clearing the validation message.
func (e *Editor) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lockedValidate()
}

func (e *Editor) lockedValidate() error {
	err := Validate(e.service, e.file, e.buffer)
	if err != nil {
		e.validation = err.Error()
		return err
	}
	e.validation = ""
	return nil
}

// Save validates the buffer and, if it passes, writes it through the backend.  It blocks until the
// backend completes; cancelling ctx does not abort a save in progress.  The success flag is raised
// afterwards and lowered again once the success window passes.
func (e *Editor) Save(ctx context.Context) error {
	if e.saving.Busy() {
		expBusyRefusal.Add(1)
		return action.ErrBusy
	}

	e.mu.Lock()
	if e.file == "" {
		e.mu.Unlock()
		return ErrNoFile
	}
	if err := e.lockedValidate(); err != nil {
		e.mu.Unlock()
		expInvalid.Add(1)
		e.logger.Debug().Str("service", e.service).Str("file", e.file).Err(err).
			Msg("Save refused")
		return err
	}
	f := catalog.ConfigFile{Service: e.service, Name: e.file, Content: e.buffer}
	e.mu.Unlock()

	err := action.Run(ctx, &e.saving, func(ctx context.Context) error {
		return e.backend.Save(ctx, f)
	})
	if err != nil {
		if errors.Is(err, action.ErrBusy) {
			expBusyRefusal.Add(1)
		} else {
			expSaveErrors.Add(1)
			e.logger.Warn().Str("service", f.Service).Str("file", f.Name).Err(err).
				Msg("Save failed")
		}
		return err
	}
	expSaves.Add(1)
	e.logger.Info().Str("service", f.Service).Str("file", f.Name).Int("size", len(f.Content)).
		Msg("Config file saved")

	e.mu.Lock()
	e.success = true
	e.successGen++
	gen := e.successGen
	e.mu.Unlock()
	time.AfterFunc(e.successWindow, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.successGen == gen {
			e.success = false
		}
	})
	return nil
}

// Restart restarts the active service through the backend, blocking until it completes.
func (e *Editor) Restart(ctx context.Context) error {
	e.mu.Lock()
	service := e.service
	e.mu.Unlock()

	err := action.Run(ctx, &e.restarting, func(ctx context.Context) error {
		return e.backend.Restart(ctx, service)
	})
	switch {
	case errors.Is(err, action.ErrBusy):
		expBusyRefusal.Add(1)
		return err
	case err != nil:
		e.logger.Warn().Str("service", service).Err(err).Msg("Restart failed")
		return err
	}
	expRestarts.Add(1)
	e.logger.Info().Str("service", service).Msg("Service restarted")
	return nil
}

// State is a snapshot of the editor for rendering.
type State struct {
	Service         catalog.Service      `json:"service"`
	Services        []catalog.Service    `json:"services"`
	Files           []catalog.ConfigFile `json:"files"`
	File            *catalog.ConfigFile  `json:"file,omitempty"` // Stored copy of the selected file.
	Buffer          string               `json:"buffer"`
	ValidationError string               `json:"validationError,omitempty"`
	Saved           bool                 `json:"saved"`
	Saving          bool                 `json:"saving"`
	Restarting      bool                 `json:"restarting"`
}

// Modified reports whether the buffer differs from the stored content of the selected file.
func (s State) Modified() bool {
	return s.File != nil && s.File.Content != s.Buffer
}

// State returns a snapshot of the editor.
func (e *Editor) State() (State, error) {
	e.mu.Lock()
	st := State{
		Buffer:          e.buffer,
		ValidationError: e.validation,
		Saved:           e.success,
	}
	service, file := e.service, e.file
	e.mu.Unlock()
	st.Saving = e.saving.Busy()
	st.Restarting = e.restarting.Busy()

	var err error
	st.Services = e.store.Services()
	if st.Service, err = e.store.Service(service); err != nil {
		return st, err
	}
	if st.Files, err = e.store.Files(service); err != nil {
		return st, err
	}
	if file != "" {
		f, err := e.store.File(service, file)
		if err != nil {
			return st, err
		}
		st.File = &f
	}
	return st, nil
}

// Selection returns the active service id and selected file name.
func (e *Editor) Selection() (service, file string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.service, e.file
}
