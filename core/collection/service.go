package collection

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/escolaware/secretaria/core"
)

type (
	// Repository persists one collection as a whole; implementations live in
	// storage/. Load distinguishes "no data yet" (empty slice) from a broken
	// data source (error).
	Repository interface {
		Load() ([]Record, error)
		Save([]Record) error
	}

	Service struct {
		def      Definition
		repo     Repository
		validate *validator.Validate

		// optional write-time behavior, configured per resource
		hashFields    []string
		mailSvc       core.EmailService
		notifyInbox   mail.Address
		notifySubject string

		mu      sync.RWMutex
		records []Record
	}

	ServiceOption func(*Service)
)

// WithPasswordHashing bcrypt-hashes the named fields before any write.
func WithPasswordHashing(fields ...string) ServiceOption {
	return func(svc *Service) { svc.hashFields = fields }
}

// WithCreateNotification emails a summary of every created record to inbox.
// Sending is fire-and-forget and never fails the request.
func WithCreateNotification(mailSvc core.EmailService, inbox mail.Address, subject string) ServiceOption {
	return func(svc *Service) {
		svc.mailSvc = mailSvc
		svc.notifyInbox = inbox
		svc.notifySubject = subject
	}
}

// NewService loads the collection from its repository and owns it from then
// on: all mutations go through the service, which holds its lock across the
// whole mutate-persist sequence (single logical writer per backing file).
func NewService(def Definition, repo Repository, validate *validator.Validate, opts ...ServiceOption) (*Service, error) {
	svc := &Service{
		def:      def,
		repo:     repo,
		validate: validate,
	}
	for _, opt := range opts {
		opt(svc)
	}

	recs, err := repo.Load()
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q collection", def.Name)
	}
	if recs == nil {
		recs = []Record{}
	}
	svc.records = recs
	return svc, nil
}

func (svc *Service) Definition() Definition {
	return svc.def
}

// QueryAll returns every record in insertion order; possibly empty, never nil.
func (svc *Service) QueryAll() []Record {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	out := make([]Record, len(svc.records))
	for i, rec := range svc.records {
		out[i] = rec.clone()
	}
	return out
}

func (svc *Service) GetByID(id string) (Record, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if i := svc.indexOf(id); i >= 0 {
		return svc.records[i].clone(), nil
	}
	return nil, svc.notFound()
}

// FindByField does a case-insensitive exact match on a string field and
// returns zero or more records.
func (svc *Service) FindByField(field, value string) []Record {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	value = core.CleanString(value, true /* lower */)
	out := make([]Record, 0)
	for _, rec := range svc.records {
		if s, ok := rec[field].(string); ok && strings.ToLower(s) == value {
			out = append(out, rec.clone())
		}
	}
	return out
}

// Create validates the payload, attaches a generated id, appends the record
// and persists the collection. A failed save rolls the append back: a write is
// fully applied or fully rejected.
func (svc *Service) Create(payload Record) (Record, error) {
	rec := payload.clone()
	delete(rec, IDField) // client-submitted ids are never honored

	if err := svc.def.ValidatePayload(svc.validate, rec); err != nil {
		return nil, err
	}
	if err := svc.applyWriteHooks(rec); err != nil {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	rec[IDField] = newID()
	svc.records = append(svc.records, rec)
	if err := svc.persist(); err != nil {
		svc.records = svc.records[:len(svc.records)-1]
		return nil, err
	}

	svc.notifyCreated(rec)
	return rec.clone(), nil
}

// Replace overwrites the record wholesale, preserving only its id; any id in
// the payload is ignored.
func (svc *Service) Replace(id string, payload Record) (Record, error) {
	rec := payload.clone()
	delete(rec, IDField)

	svc.mu.Lock()
	defer svc.mu.Unlock()

	i := svc.indexOf(id)
	if i < 0 {
		return nil, svc.notFound()
	}
	if err := svc.def.ValidatePayload(svc.validate, rec); err != nil {
		return nil, err
	}
	if err := svc.applyWriteHooks(rec); err != nil {
		return nil, err
	}

	rec[IDField] = id
	prev := svc.records[i]
	svc.records[i] = rec
	if err := svc.persist(); err != nil {
		svc.records[i] = prev
		return nil, err
	}
	return rec.clone(), nil
}

// Remove splices the record out and persists, returning the removed record.
func (svc *Service) Remove(id string) (Record, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	i := svc.indexOf(id)
	if i < 0 {
		return nil, svc.notFound()
	}

	removed := svc.records[i]
	remaining := make([]Record, 0, len(svc.records)-1)
	remaining = append(remaining, svc.records[:i]...)
	remaining = append(remaining, svc.records[i+1:]...)

	prev := svc.records
	svc.records = remaining
	if err := svc.persist(); err != nil {
		svc.records = prev
		return nil, err
	}
	return removed, nil
}

// indexOf must be called with the lock held.
func (svc *Service) indexOf(id string) int {
	for i, rec := range svc.records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

func (svc *Service) notFound() error {
	return core.NewNotFoundError(svc.def.NotFound)
}

func (svc *Service) persist() error {
	return errors.Wrapf(svc.repo.Save(svc.records), "persisting %q collection", svc.def.Name)
}

func (svc *Service) applyWriteHooks(rec Record) error {
	for _, f := range svc.hashFields {
		val, ok := rec[f].(string)
		if !ok || val == "" {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(val), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrapf(err, "hashing %q", f)
		}
		rec[f] = string(hash)
	}
	return nil
}

func (svc *Service) notifyCreated(rec Record) {
	if svc.mailSvc == nil {
		return
	}

	fields := make([]string, 0, len(rec))
	for k := range rec {
		if k == IDField {
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)

	body := new(strings.Builder)
	for _, k := range fields {
		_, _ = fmt.Fprintf(body, "%s: %v\r\n", k, rec[k])
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{svc.notifyInbox},
		Subject: svc.notifySubject,
		Body:    body.String(),
	})
}
