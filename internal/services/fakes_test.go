package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/utils"
)

// memStore is the shared in-memory backing for the fake repositories.
// The mutex stands in for the row locks the SQL layer takes: every
// atomic repository operation runs fully inside one critical section,
// so the concurrency tests exercise the same
// check-then-act races the production queries have to survive.
type memStore struct {
	mu sync.Mutex

	users    map[uuid.UUID]*models.User
	rooms    map[uuid.UUID]*models.Room
	regs     map[uuid.UUID]*models.RoomRegistration
	swaps    map[uuid.UUID]*models.RoomSwap
	invoices map[uuid.UUID]*models.Invoice
	details  map[uuid.UUID][]*models.InvoiceDetail
	feeTypes map[uuid.UUID]*models.FeeType
	devices  []*models.Device
	notifs   []*models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*models.User),
		rooms:    make(map[uuid.UUID]*models.Room),
		regs:     make(map[uuid.UUID]*models.RoomRegistration),
		swaps:    make(map[uuid.UUID]*models.RoomSwap),
		invoices: make(map[uuid.UUID]*models.Invoice),
		details:  make(map[uuid.UUID][]*models.InvoiceDetail),
		feeTypes: make(map[uuid.UUID]*models.FeeType),
	}
}

// countActiveLocked counts active registrations in a room. Callers hold mu.
func (s *memStore) countActiveLocked(roomID uuid.UUID) int {
	n := 0
	for _, reg := range s.regs {
		if reg.Active && reg.RoomID == roomID {
			n++
		}
	}
	return n
}

func (s *memStore) activeRegLocked(studentID uuid.UUID) *models.RoomRegistration {
	for _, reg := range s.regs {
		if reg.Active && reg.StudentID == studentID {
			return reg
		}
	}
	return nil
}

/* ---------- users ---------- */

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

/* ---------- rooms ---------- */

type fakeRoomRepo struct{ s *memStore }

func (r *fakeRoomRepo) Create(_ context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *room
	r.s.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *room
	cp.OccupantCount = r.s.countActiveLocked(id)
	return &cp, nil
}

func (r *fakeRoomRepo) List(_ context.Context, filter repositories.RoomFilter) ([]*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Room
	for _, room := range r.s.rooms {
		if filter.BuildingID != nil && room.BuildingID != *filter.BuildingID {
			continue
		}
		if filter.GenderRestriction != nil && room.GenderRestriction != *filter.GenderRestriction {
			continue
		}
		cp := *room
		cp.OccupantCount = r.s.countActiveLocked(room.ID)
		if filter.IsFull != nil && cp.IsFull() != *filter.IsFull {
			continue
		}
		out = append(out, &cp)
	}
	return out, nil
}

/* ---------- registrations ---------- */

type fakeRegRepo struct{ s *memStore }

func (r *fakeRegRepo) CreateActive(_ context.Context, reg *models.RoomRegistration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.activeRegLocked(reg.StudentID) != nil {
		return utils.ErrAlreadyRegistered
	}
	room, ok := r.s.rooms[reg.RoomID]
	if !ok {
		return utils.ErrNotFound
	}
	if r.s.countActiveLocked(reg.RoomID) >= room.Capacity {
		return utils.ErrCapacityExceeded
	}
	cp := *reg
	cp.Active = true
	r.s.regs[reg.ID] = &cp
	return nil
}

func (r *fakeRegRepo) GetActiveByStudent(_ context.Context, studentID uuid.UUID) (*models.RoomRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if reg := r.s.activeRegLocked(studentID); reg != nil {
		cp := *reg
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeRegRepo) ListActiveByRoom(_ context.Context, roomID uuid.UUID) ([]*models.RoomRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.RoomRegistration
	for _, reg := range r.s.regs {
		if reg.Active && reg.RoomID == roomID {
			cp := *reg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRegRepo) ListAll(_ context.Context) ([]*models.RoomRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.RoomRegistration
	for _, reg := range r.s.regs {
		cp := *reg
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRegRepo) CountActiveByRoom(_ context.Context, roomID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countActiveLocked(roomID), nil
}

/* ---------- swaps ---------- */

type fakeSwapRepo struct{ s *memStore }

func (r *fakeSwapRepo) Create(_ context.Context, swap *models.RoomSwap) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sw := range r.s.swaps {
		if sw.StudentID == swap.StudentID && !sw.Approved {
			return utils.ErrPendingSwapExists
		}
	}
	cp := *swap
	r.s.swaps[swap.ID] = &cp
	return nil
}

func (r *fakeSwapRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RoomSwap, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sw, ok := r.s.swaps[id]
	if !ok {
		return nil, nil
	}
	cp := *sw
	return &cp, nil
}

func (r *fakeSwapRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*models.RoomSwap, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.RoomSwap
	for _, sw := range r.s.swaps {
		if sw.StudentID == studentID {
			cp := *sw
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSwapRepo) HasPending(_ context.Context, studentID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sw := range r.s.swaps {
		if sw.StudentID == studentID && !sw.Approved {
			return true, nil
		}
	}
	return false, nil
}

// Approve mirrors the single-transaction semantics of the SQL
// implementation: re-check state, move the registration and resolve
// the swap without releasing the lock in between.
func (r *fakeSwapRepo) Approve(_ context.Context, swapID, adminID uuid.UUID, now time.Time) (*models.RoomSwap, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sw, ok := r.s.swaps[swapID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if sw.Approved {
		return nil, utils.ErrAlreadyApproved
	}

	desired, ok := r.s.rooms[sw.DesiredRoomID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if r.s.countActiveLocked(sw.DesiredRoomID) >= desired.Capacity {
		return nil, utils.ErrCapacityExceeded
	}

	current := r.s.activeRegLocked(sw.StudentID)
	if current == nil {
		return nil, utils.ErrNoCurrentRoom
	}
	current.Active = false
	end := now
	current.EndDate = &end

	newReg := &models.RoomRegistration{
		ID:        uuid.New(),
		StudentID: sw.StudentID,
		RoomID:    sw.DesiredRoomID,
		Active:    true,
		StartDate: now,
	}
	r.s.regs[newReg.ID] = newReg

	sw.Approved = true
	sw.ProcessedBy = &adminID
	sw.ProcessedAt = &now

	cp := *sw
	return &cp, nil
}

/* ---------- fee types ---------- */

type fakeFeeTypeRepo struct{ s *memStore }

func (r *fakeFeeTypeRepo) Create(_ context.Context, ft *models.FeeType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *ft
	r.s.feeTypes[ft.ID] = &cp
	return nil
}

func (r *fakeFeeTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.FeeType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ft, ok := r.s.feeTypes[id]
	if !ok {
		return nil, nil
	}
	cp := *ft
	return &cp, nil
}

func (r *fakeFeeTypeRepo) GetByName(_ context.Context, name string) (*models.FeeType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ft := range r.s.feeTypes {
		if ft.Name == name {
			cp := *ft
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFeeTypeRepo) ListAll(_ context.Context) ([]*models.FeeType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.FeeType
	for _, ft := range r.s.feeTypes {
		cp := *ft
		out = append(out, &cp)
	}
	return out, nil
}

/* ---------- invoices ---------- */

type fakeInvoiceRepo struct{ s *memStore }

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *models.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invoices {
		if existing.RoomID == inv.RoomID && existing.BillingPeriod.Equal(inv.BillingPeriod) {
			return utils.ErrDuplicateInvoice
		}
	}
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) ListAll(_ context.Context) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByRoom(_ context.Context, roomID uuid.UUID) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if inv.RoomID == roomID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListUnpaidDueBefore(_ context.Context, cutoff time.Time) ([]*models.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invoice
	for _, inv := range r.s.invoices {
		if !inv.Paid && inv.DueDate().Before(cutoff) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) SetPaymentMethod(_ context.Context, id uuid.UUID, method models.PaymentMethodType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return utils.ErrNotFound
	}
	inv.PaymentMethod = method
	return nil
}

func (r *fakeInvoiceRepo) MarkPaid(_ context.Context, id uuid.UUID, method models.PaymentMethodType, paidAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.Paid {
		return false, nil
	}
	inv.Paid = true
	inv.PaidAt = &paidAt
	inv.PaymentMethod = method
	return true, nil
}

func (r *fakeInvoiceRepo) AddDetail(_ context.Context, d *models.InvoiceDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.details[d.InvoiceID] {
		if existing.FeeTypeID == d.FeeTypeID {
			return utils.ErrDuplicateFeeType
		}
	}
	cp := *d
	if ft, ok := r.s.feeTypes[d.FeeTypeID]; ok {
		cp.FeeTypeName = ft.Name
	}
	r.s.details[d.InvoiceID] = append(r.s.details[d.InvoiceID], &cp)
	return nil
}

func (r *fakeInvoiceRepo) ListDetails(_ context.Context, invoiceID uuid.UUID) ([]*models.InvoiceDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.InvoiceDetail
	for _, d := range r.s.details[invoiceID] {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) TotalAmount(_ context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, d := range r.s.details[invoiceID] {
		total = total.Add(d.Amount)
	}
	return total, nil
}

/* ---------- devices / notifications ---------- */

type fakeDeviceRepo struct{ s *memStore }

func (r *fakeDeviceRepo) Upsert(_ context.Context, d *models.Device) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.devices {
		if existing.UserID == d.UserID && existing.Token == d.Token {
			return nil
		}
	}
	cp := *d
	r.s.devices = append(r.s.devices, &cp)
	return nil
}

func (r *fakeDeviceRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Device, error) {
	return r.ListByUsers(context.Background(), []uuid.UUID{userID})
}

func (r *fakeDeviceRepo) ListByUsers(_ context.Context, userIDs []uuid.UUID) ([]*models.Device, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var out []*models.Device
	for _, d := range r.s.devices {
		if want[d.UserID] {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeNotifRepo struct{ s *memStore }

func (r *fakeNotifRepo) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *n
	r.s.notifs = append(r.s.notifs, &cp)
	return nil
}

func (r *fakeNotifRepo) ListAll(_ context.Context) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifs {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeNotifRepo) ListByTarget(_ context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifs {
		for _, target := range n.TargetIDs {
			if target == userID {
				cp := *n
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

/* ---------- outbound senders ---------- */

type sentEmail struct {
	To      string
	Subject string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeEmailSender) SendEmail(_, recipientAddr, subject, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{To: recipientAddr, Subject: subject})
	return nil
}

func (f *fakeEmailSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type sentPush struct {
	Token string
	Title string
	Data  map[string]string
}

type fakePushSender struct {
	mu sync.Mutex
	// failTokens simulates dead devices; sends to them report failure
	// but must not stop the fan-out.
	failTokens map[string]bool
	sent       []sentPush
}

func (f *fakePushSender) SendPush(_ context.Context, token, title, _ string, data map[string]string) PushResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTokens[token] {
		return PushUnregistered
	}
	f.sent = append(f.sent, sentPush{Token: token, Title: title, Data: data})
	return PushOK
}

func (f *fakePushSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSMSSender struct {
	mu   sync.Mutex
	sent []string // recipient phone numbers
}

func (f *fakeSMSSender) SendSMS(to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

/* ---------- fixture ---------- */

type testEnv struct {
	store *memStore

	users    *fakeUserRepo
	rooms    *fakeRoomRepo
	regs     *fakeRegRepo
	swaps    *fakeSwapRepo
	fees     *fakeFeeTypeRepo
	invoices *fakeInvoiceRepo
	devices  *fakeDeviceRepo
	notifs   *fakeNotifRepo

	email *fakeEmailSender
	push  *fakePushSender
	sms   *fakeSMSSender

	notifier *NotificationService
}

func newTestEnv() *testEnv {
	s := newMemStore()
	env := &testEnv{
		store:    s,
		users:    &fakeUserRepo{s: s},
		rooms:    &fakeRoomRepo{s: s},
		regs:     &fakeRegRepo{s: s},
		swaps:    &fakeSwapRepo{s: s},
		fees:     &fakeFeeTypeRepo{s: s},
		invoices: &fakeInvoiceRepo{s: s},
		devices:  &fakeDeviceRepo{s: s},
		notifs:   &fakeNotifRepo{s: s},
		email:    &fakeEmailSender{},
		push:     &fakePushSender{failTokens: map[string]bool{}},
		sms:      &fakeSMSSender{},
	}
	env.notifier = NewNotificationService(
		env.regs, env.users, env.devices, env.notifs,
		env.email, env.push, env.sms,
	)
	return env
}

func genderPtr(g models.GenderType) *models.GenderType { return &g }

func (e *testEnv) addStudent(name string, gender *models.GenderType) *models.User {
	u := &models.User{
		ID:       uuid.New(),
		Username: name,
		FullName: name,
		Email:    name + "@student.test",
		Role:     models.RoleStudent,
		Gender:   gender,
		Active:   true,
	}
	_ = e.users.Create(context.Background(), u)
	return u
}

func (e *testEnv) addAdmin(name string) *models.User {
	u := &models.User{
		ID:       uuid.New(),
		Username: name,
		FullName: name,
		Email:    name + "@dorms.test",
		Role:     models.RoleAdmin,
		Active:   true,
	}
	_ = e.users.Create(context.Background(), u)
	return u
}

func (e *testEnv) addRoom(name string, capacity int, restriction models.GenderType) *models.Room {
	r := &models.Room{
		ID:                uuid.New(),
		BuildingID:        uuid.New(),
		Name:              name,
		Capacity:          capacity,
		GenderRestriction: restriction,
		MonthlyPrice:      decimal.NewFromInt(500000),
	}
	_ = e.rooms.Create(context.Background(), r)
	return r
}

func (e *testEnv) moveIn(student *models.User, room *models.Room) *models.RoomRegistration {
	reg := &models.RoomRegistration{
		ID:        uuid.New(),
		StudentID: student.ID,
		RoomID:    room.ID,
		Active:    true,
		StartDate: time.Now().UTC(),
	}
	if err := e.regs.CreateActive(context.Background(), reg); err != nil {
		panic("fixture moveIn: " + err.Error())
	}
	return reg
}

func (e *testEnv) addFeeType(name string) *models.FeeType {
	ft := &models.FeeType{ID: uuid.New(), Name: name}
	_ = e.fees.Create(context.Background(), ft)
	return ft
}
