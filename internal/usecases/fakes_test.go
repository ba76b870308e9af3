package usecases_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
)

// memStore is an in-memory stand-in for the gorm repositories. Writes made
// inside memUoW.Do are rolled back when the callback fails.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]entities.User
	contracts map[uuid.UUID]entities.Contract
	documents map[uuid.UUID]entities.Document
	payments  map[uuid.UUID]entities.Payment
	audit     []entities.AuditEntry

	auditErr     error
	listRolesErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uuid.UUID]entities.User{},
		contracts: map[uuid.UUID]entities.Contract{},
		documents: map[uuid.UUID]entities.Document{},
		payments:  map[uuid.UUID]entities.Payment{},
	}
}

type memSnapshot struct {
	contracts map[uuid.UUID]entities.Contract
	documents map[uuid.UUID]entities.Document
	payments  map[uuid.UUID]entities.Payment
	audit     []entities.AuditEntry
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		contracts: make(map[uuid.UUID]entities.Contract, len(s.contracts)),
		documents: make(map[uuid.UUID]entities.Document, len(s.documents)),
		payments:  make(map[uuid.UUID]entities.Payment, len(s.payments)),
		audit:     append([]entities.AuditEntry(nil), s.audit...),
	}
	for k, v := range s.contracts {
		snap.contracts[k] = v
	}
	for k, v := range s.documents {
		snap.documents[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = snap.contracts
	s.documents = snap.documents
	s.payments = snap.payments
	s.audit = snap.audit
}

func (s *memStore) addUser(role entities.UserRole) entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entities.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s-%d@academy.test", role, len(s.users)),
		Name:     string(role),
		Role:     role,
		IsActive: true,
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addContract(c entities.Contract) entities.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ContractType == "" {
		c.ContractType = entities.ContractTypeService
	}
	if c.Title == "" {
		c.Title = "Coach"
	}
	s.contracts[c.ID] = c
	return c
}

func (s *memStore) addDocument(d entities.Document) entities.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.documents[d.ID] = d
	return d
}

func (s *memStore) addPayment(p entities.Payment) entities.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.payments[p.ID] = p
	return p
}

func (s *memStore) contract(id uuid.UUID) entities.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contracts[id]
}

func (s *memStore) document(id uuid.UUID) entities.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documents[id]
}

func (s *memStore) payment(id uuid.UUID) entities.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id]
}

func (s *memStore) documentsOf(contractID uuid.UUID) []entities.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Document
	for _, d := range s.documents {
		if d.ContractID == contractID {
			out = append(out, d)
		}
	}
	return out
}

func (s *memStore) auditTrail() []entities.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.AuditEntry(nil), s.audit...)
}

// memUoW serializes transactions the way row locks would.
type memUoW struct {
	s       *memStore
	txMu    sync.Mutex
	locked  int32
	calls   int32
	beginFn func() error
}

func (u *memUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	atomic.AddInt32(&u.calls, 1)
	if u.beginFn != nil {
		if err := u.beginFn(); err != nil {
			return err
		}
	}
	u.txMu.Lock()
	defer u.txMu.Unlock()
	snap := u.s.snapshot()
	if err := fn(ctx); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

func (u *memUoW) WithLock(ctx context.Context) context.Context {
	atomic.AddInt32(&u.locked, 1)
	return ctx
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memUserRepo) Update(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUserRepo) List(_ context.Context, search string, role *entities.UserRole) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.User
	for _, u := range r.s.users {
		if role != nil && u.Role != *role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name+u.Email), strings.ToLower(search)) {
			continue
		}
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (r memUserRepo) ListIDsByRoles(_ context.Context, roles []entities.UserRole) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.listRolesErr != nil {
		return nil, r.s.listRolesErr
	}
	var out []uuid.UUID
	for _, u := range r.s.users {
		if !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u.ID)
			}
		}
	}
	return out, nil
}

func (r memUserRepo) CountByRole(_ context.Context, role entities.UserRole) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memContractRepo struct{ s *memStore }

func (r memContractRepo) Create(_ context.Context, c *entities.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.contracts[c.ID] = *c
	return nil
}

func (r memContractRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &c, nil
}

func (r memContractRepo) match(c entities.Contract, collaboratorID *uuid.UUID, statuses []entities.ContractStatus) bool {
	if collaboratorID != nil && c.CollaboratorID != *collaboratorID {
		return false
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

func (r memContractRepo) List(_ context.Context, filter entities.ContractFilter) ([]*entities.Contract, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Contract
	for _, c := range r.s.contracts {
		if r.match(c, filter.CollaboratorID, filter.Statuses) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	total := int64(len(out))
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r memContractRepo) Transition(_ context.Context, c *entities.Contract, from entities.ContractStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.contracts[c.ID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if stored.Status != from {
		return domainerrors.InvalidTransition("contract moved concurrently")
	}
	r.s.contracts[c.ID] = *c
	return nil
}

func (r memContractRepo) UpdateDetails(_ context.Context, c *entities.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.contracts[c.ID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if stored.Status != c.Status {
		return domainerrors.InvalidTransition("contract moved concurrently")
	}
	r.s.contracts[c.ID] = *c
	return nil
}

func (r memContractRepo) Count(_ context.Context, collaboratorID *uuid.UUID, statuses ...entities.ContractStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.contracts {
		if r.match(c, collaboratorID, statuses) {
			n++
		}
	}
	return n, nil
}

type memDocumentRepo struct{ s *memStore }

func (r memDocumentRepo) Create(_ context.Context, d *entities.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.documents {
		if existing.ContractID == d.ContractID && existing.DocumentType == d.DocumentType {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.s.documents[d.ID] = *d
	return nil
}

func (r memDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &d, nil
}

func (r memDocumentRepo) GetByContractAndType(_ context.Context, contractID uuid.UUID, docType entities.DocumentType) (*entities.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.documents {
		if d.ContractID == contractID && d.DocumentType == docType {
			d := d
			return &d, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r memDocumentRepo) ListByContract(_ context.Context, contractID uuid.UUID) ([]*entities.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Document
	for _, d := range r.s.documents {
		if d.ContractID == contractID {
			d := d
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r memDocumentRepo) Transition(_ context.Context, d *entities.Document, from entities.DocumentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.documents[d.ID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if stored.Status != from {
		return domainerrors.InvalidTransition("document moved concurrently")
	}
	r.s.documents[d.ID] = *d
	return nil
}

func (r memDocumentRepo) owned(d entities.Document, collaboratorID *uuid.UUID) bool {
	return collaboratorID == nil || r.s.contracts[d.ContractID].CollaboratorID == *collaboratorID
}

func (r memDocumentRepo) ListExpiring(_ context.Context, from, to time.Time, collaboratorID *uuid.UUID, limit int) ([]*entities.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Document
	for _, d := range r.s.documents {
		if d.Status != entities.DocumentStatusApproved || !d.ExpiryDate.Valid || !r.owned(d, collaboratorID) {
			continue
		}
		if d.ExpiryDate.Time.Before(from) || d.ExpiryDate.Time.After(to) {
			continue
		}
		d := d
		out = append(out, &d)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memDocumentRepo) CountExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID) (int64, error) {
	docs, err := r.ListExpiring(ctx, from, to, collaboratorID, 0)
	return int64(len(docs)), err
}

func (r memDocumentRepo) CountByStatus(_ context.Context, collaboratorID *uuid.UUID, statuses ...entities.DocumentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, d := range r.s.documents {
		if !r.owned(d, collaboratorID) {
			continue
		}
		for _, s := range statuses {
			if d.Status == s {
				n++
			}
		}
	}
	return n, nil
}

type memPaymentRepo struct{ s *memStore }

func (r memPaymentRepo) Create(_ context.Context, p *entities.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[p.ID] = *p
	return nil
}

func (r memPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &p, nil
}

func (r memPaymentRepo) match(p entities.Payment, contractIDs []uuid.UUID, statuses []entities.PaymentStatus) bool {
	if contractIDs != nil {
		found := false
		for _, id := range contractIDs {
			if p.ContractID == id {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if p.Status == s {
			return true
		}
	}
	return false
}

func (r memPaymentRepo) List(_ context.Context, filter entities.PaymentFilter) ([]*entities.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Payment
	for _, p := range r.s.payments {
		if r.match(p, filter.ContractIDs, filter.Statuses) {
			p := p
			out = append(out, &p)
		}
	}
	total := int64(len(out))
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r memPaymentRepo) Transition(_ context.Context, p *entities.Payment, from entities.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payments[p.ID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if stored.Status != from {
		return domainerrors.InvalidTransition("payment moved concurrently")
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r memPaymentRepo) Count(_ context.Context, contractIDs []uuid.UUID, statuses ...entities.PaymentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.payments {
		if r.match(p, contractIDs, statuses) {
			n++
		}
	}
	return n, nil
}

type memAuditRepo struct{ s *memStore }

func (r memAuditRepo) Append(_ context.Context, e *entities.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	r.s.audit = append(r.s.audit, *e)
	return nil
}

func (r memAuditRepo) ListByEntity(_ context.Context, entityType entities.EntityType, id uuid.UUID) ([]*entities.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.AuditEntry
	for _, e := range r.s.audit {
		if e.EntityType == entityType && e.EntityID == id {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

// fakeBlobStore uses the upload name as the file id.
type fakeBlobStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	deleted  []string
	storeErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{files: map[string][]byte{}}
}

func (b *fakeBlobStore) Store(ctx context.Context, r io.Reader, _ int64, _ string, name string) (string, error) {
	if b.storeErr != nil {
		return "", b.storeErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("store called without a deadline")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[name] = data
	return name, nil
}

func (b *fakeBlobStore) Retrieve(_ context.Context, fileID string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.files[fileID]
	if !ok {
		return nil, domainerrors.NotFound("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlobStore) URL(_ context.Context, fileID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.files[fileID]; !ok {
		return "", domainerrors.NotFound("file not found")
	}
	return "https://files.test/" + fileID, nil
}

func (b *fakeBlobStore) Delete(_ context.Context, fileID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.files, fileID)
	b.deleted = append(b.deleted, fileID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []entities.NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event entities.NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) to(recipient uuid.UUID) []entities.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []entities.NotificationEvent
	for _, e := range n.events {
		if e.RecipientID == recipient {
			out = append(out, e)
		}
	}
	return out
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveTransition(entity, action, outcome string, _ time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, entity+"/"+action+"/"+outcome)
}

type stubLocker struct {
	err      error
	acquired []string
	released int32
}

func (l *stubLocker) Acquire(_ context.Context, key string) (func(context.Context), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, key)
	return func(context.Context) { atomic.AddInt32(&l.released, 1) }, nil
}
