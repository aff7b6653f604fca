package clinic

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
	"github.com/healthflow/clinic-api/internal/service/audit"
	"github.com/healthflow/clinic-api/pkg/cache"
	"github.com/healthflow/clinic-api/pkg/cnpj"
	apperrors "github.com/healthflow/clinic-api/pkg/errors"
	"github.com/healthflow/clinic-api/pkg/logger"
)

const validCNPJ = "11222333000181"

type fakeClinicRepo struct {
	mu      sync.Mutex
	clinics map[uuid.UUID]*model.Clinic
	rooms   *fakeRoomRepo
	listErr error
}

func newFakeClinicRepo(rooms *fakeRoomRepo) *fakeClinicRepo {
	return &fakeClinicRepo{clinics: map[uuid.UUID]*model.Clinic{}, rooms: rooms}
}

func (r *fakeClinicRepo) Create(_ context.Context, clinic *model.Clinic, rooms []*model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clinics {
		if existing.DeletedAt == nil && existing.CNPJ == clinic.CNPJ {
			return repository.ErrDuplicate
		}
	}
	copied := *clinic
	r.clinics[clinic.ID] = &copied
	if r.rooms != nil {
		for _, room := range rooms {
			r.rooms.store(room)
		}
	}
	return nil
}

func (r *fakeClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clinic, ok := r.clinics[id]
	if !ok || clinic.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	copied := *clinic
	return &copied, nil
}

func (r *fakeClinicRepo) GetByCNPJ(_ context.Context, cnpjDigits string) (*model.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, clinic := range r.clinics {
		if clinic.DeletedAt == nil && clinic.CNPJ == cnpj.Normalize(cnpjDigits) {
			copied := *clinic
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeClinicRepo) GetByCNES(_ context.Context, cnes string) (*model.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, clinic := range r.clinics {
		if clinic.DeletedAt == nil && clinic.CNES != nil && *clinic.CNES == cnes {
			copied := *clinic
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeClinicRepo) List(_ context.Context, filter *model.ClinicFilter) ([]*model.ClinicSummary, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var summaries []*model.ClinicSummary
	for _, clinic := range r.clinics {
		if clinic.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Search != "" && !strings.Contains(
			strings.ToLower(clinic.TradeName), strings.ToLower(filter.Search)) {
			continue
		}
		summaries = append(summaries, &model.ClinicSummary{Clinic: *clinic})
	}
	return summaries, int64(len(summaries)), nil
}

func (r *fakeClinicRepo) Update(_ context.Context, clinic *model.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clinics[clinic.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *clinic
	r.clinics[clinic.ID] = &copied
	return nil
}

func (r *fakeClinicRepo) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clinic, ok := r.clinics[id]
	if !ok || clinic.DeletedAt != nil {
		return repository.ErrNotFound
	}
	clinic.DeletedAt = &at
	clinic.Active = false
	return nil
}

func (r *fakeClinicRepo) Counts(_ context.Context, _ uuid.UUID) (*model.ClinicCounts, error) {
	return &model.ClinicCounts{}, nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*model.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: map[uuid.UUID]*model.Room{}}
}

func (r *fakeRoomRepo) store(room *model.Room) {
	copied := *room
	r.rooms[room.ID] = &copied
}

func (r *fakeRoomRepo) Create(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rooms {
		if existing.ClinicID == room.ClinicID && existing.Name == room.Name {
			return repository.ErrDuplicate
		}
	}
	r.store(room)
	return nil
}

func (r *fakeRoomRepo) Get(_ context.Context, clinicID, roomID uuid.UUID) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok || room.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *fakeRoomRepo) Update(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.rooms {
		if existing.ID != room.ID && existing.ClinicID == room.ClinicID && existing.Name == room.Name {
			return repository.ErrDuplicate
		}
	}
	r.store(room)
	return nil
}

func (r *fakeRoomRepo) Deactivate(_ context.Context, clinicID, roomID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok || room.ClinicID != clinicID {
		return repository.ErrNotFound
	}
	room.Active = false
	return nil
}

func (r *fakeRoomRepo) ListByClinic(_ context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms := []*model.Room{}
	for _, room := range r.rooms {
		if room.ClinicID != clinicID {
			continue
		}
		if activeOnly && !room.Active {
			continue
		}
		copied := *room
		rooms = append(rooms, &copied)
	}
	return rooms, nil
}

type membershipKey struct {
	clinicID uuid.UUID
	personID uuid.UUID
}

type fakeMembershipRepo struct {
	mu       sync.Mutex
	doctors  map[membershipKey]*model.ClinicDoctor
	patients map[membershipKey]*model.ClinicPatient
	profiles *fakePeople
}

func newFakeMembershipRepo(profiles *fakePeople) *fakeMembershipRepo {
	return &fakeMembershipRepo{
		doctors:  map[membershipKey]*model.ClinicDoctor{},
		patients: map[membershipKey]*model.ClinicPatient{},
		profiles: profiles,
	}
}

func (r *fakeMembershipRepo) AddDoctor(_ context.Context, m *model.ClinicDoctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{m.ClinicID, m.DoctorID}
	if _, ok := r.doctors[key]; ok {
		return repository.ErrDuplicate
	}
	copied := *m
	r.doctors[key] = &copied
	return nil
}

func (r *fakeMembershipRepo) GetDoctor(_ context.Context, clinicID, doctorID uuid.UUID) (*model.ClinicDoctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.doctors[membershipKey{clinicID, doctorID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMembershipRepo) RemoveDoctor(_ context.Context, clinicID, doctorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{clinicID, doctorID}
	if _, ok := r.doctors[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.doctors, key)
	return nil
}

func (r *fakeMembershipRepo) ListDoctors(_ context.Context, clinicID uuid.UUID, _ *model.DoctorMembershipFilter) ([]*model.ClinicDoctorDetail, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	details := []*model.ClinicDoctorDetail{}
	for key, m := range r.doctors {
		if key.clinicID != clinicID {
			continue
		}
		detail := &model.ClinicDoctorDetail{ClinicDoctor: *m}
		if doctor, ok := r.profiles.doctors[m.DoctorID]; ok {
			detail.Doctor = *doctor
		}
		details = append(details, detail)
	}
	return details, int64(len(details)), nil
}

func (r *fakeMembershipRepo) AddPatient(_ context.Context, m *model.ClinicPatient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{m.ClinicID, m.PatientID}
	if _, ok := r.patients[key]; ok {
		return repository.ErrDuplicate
	}
	copied := *m
	r.patients[key] = &copied
	return nil
}

func (r *fakeMembershipRepo) GetPatient(_ context.Context, clinicID, patientID uuid.UUID) (*model.ClinicPatient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.patients[membershipKey{clinicID, patientID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMembershipRepo) ListPatients(_ context.Context, clinicID uuid.UUID, _ *model.PatientMembershipFilter) ([]*model.ClinicPatientDetail, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	details := []*model.ClinicPatientDetail{}
	for key, m := range r.patients {
		if key.clinicID != clinicID {
			continue
		}
		detail := &model.ClinicPatientDetail{ClinicPatient: *m}
		if patient, ok := r.profiles.patients[m.PatientID]; ok {
			detail.Patient = *patient
		}
		details = append(details, detail)
	}
	return details, int64(len(details)), nil
}

type fakeAppointmentRepo struct {
	futureByClinic map[uuid.UUID]int64
	futureByDoctor map[uuid.UUID]int64
	stats          *model.ClinicStats
}

func (r *fakeAppointmentRepo) CountFuture(_ context.Context, guard model.AppointmentGuard) (int64, error) {
	if guard.DoctorID != nil {
		return r.futureByDoctor[*guard.DoctorID], nil
	}
	return r.futureByClinic[guard.ClinicID], nil
}

func (r *fakeAppointmentRepo) Stats(_ context.Context, _ uuid.UUID, _ model.StatsRange) (*model.ClinicStats, error) {
	if r.stats == nil {
		return &model.ClinicStats{}, nil
	}
	copied := *r.stats
	return &copied, nil
}

type fakePeople struct {
	doctors  map[uuid.UUID]*model.Doctor
	patients map[uuid.UUID]*model.Patient
}

func newFakePeople() *fakePeople {
	return &fakePeople{
		doctors:  map[uuid.UUID]*model.Doctor{},
		patients: map[uuid.UUID]*model.Patient{},
	}
}

type fakeDoctorRepo struct{ people *fakePeople }

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, ok := r.people.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *doctor
	return &copied, nil
}

type fakePatientRepo struct{ people *fakePeople }

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, ok := r.people.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *patient
	return &copied, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _ *model.AuditFilter) ([]*model.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, int64(len(r.entries)), nil
}

type publishedEvent struct {
	eventType string
	payload   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, payload})
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.eventType)
	}
	return types
}

type fixture struct {
	service      *Service
	clinics      *fakeClinicRepo
	rooms        *fakeRoomRepo
	memberships  *fakeMembershipRepo
	appointments *fakeAppointmentRepo
	people       *fakePeople
	auditRepo    *fakeAuditRepo
	publisher    *fakePublisher
	cache        cache.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	people := newFakePeople()
	rooms := newFakeRoomRepo()
	clinics := newFakeClinicRepo(rooms)
	memberships := newFakeMembershipRepo(people)
	appointments := &fakeAppointmentRepo{
		futureByClinic: map[uuid.UUID]int64{},
		futureByDoctor: map[uuid.UUID]int64{},
	}
	auditRepo := &fakeAuditRepo{}
	publisher := &fakePublisher{}
	cacheStore := cache.NewMemoryCache(time.Minute, time.Minute)

	service := NewService(
		clinics, rooms, memberships, appointments,
		&fakeDoctorRepo{people}, &fakePatientRepo{people},
		cacheStore, audit.NewService(auditRepo), publisher,
		logger.NewLogger(nil),
	)

	return &fixture{
		service:      service,
		clinics:      clinics,
		rooms:        rooms,
		memberships:  memberships,
		appointments: appointments,
		people:       people,
		auditRepo:    auditRepo,
		publisher:    publisher,
		cache:        cacheStore,
	}
}

func createInput() *CreateClinicInput {
	return &CreateClinicInput{
		LegalName: "Clínica Boa Saúde LTDA",
		TradeName: "Boa Saúde",
		CNPJ:      "11.222.333/0001-81",
		Email:     "contato@boasaude.example",
		Phone:     "+55 11 4002-8922",
		Address: model.Address{
			Street: "Rua das Flores", Number: "100",
			City: "São Paulo", State: "SP", ZipCode: "01000-000",
		},
	}
}

func (f *fixture) createClinic(t *testing.T) *model.Clinic {
	t.Helper()
	clinic, err := f.service.Create(context.Background(), createInput(), uuid.New())
	require.NoError(t, err)
	return clinic
}

func TestCreateClinic(t *testing.T) {
	f := newFixture(t)

	clinic, err := f.service.Create(context.Background(), createInput(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, validCNPJ, clinic.CNPJ, "CNPJ stored digits-only")
	assert.Equal(t, model.DefaultTimezone, clinic.Timezone)
	assert.True(t, clinic.Active)
	assert.NotNil(t, clinic.WorkingHours)
	assert.Equal(t, []string{model.EventClinicCreated}, f.publisher.eventTypes())
	require.Len(t, f.auditRepo.entries, 1)
	assert.Equal(t, "CREATE", f.auditRepo.entries[0].Action)
}

func TestCreateClinicDuplicateCNPJ(t *testing.T) {
	f := newFixture(t)
	f.createClinic(t)

	// Same CNPJ with different formatting must still collide.
	in := createInput()
	in.CNPJ = "11222333000181"
	_, err := f.service.Create(context.Background(), in, uuid.New())
	assert.True(t, apperrors.IsConflict(err), "expected conflict, got %v", err)
}

func TestCreateClinicInvalidCNPJ(t *testing.T) {
	f := newFixture(t)

	in := createInput()
	in.CNPJ = "11.222.333/0001-82"
	_, err := f.service.Create(context.Background(), in, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), "expected bad request, got %v", err)
}

func TestCreateClinicWithInitialRooms(t *testing.T) {
	f := newFixture(t)

	in := createInput()
	in.Rooms = []CreateRoomInput{{Name: "Sala 1"}, {Name: "Sala 2"}}
	clinic, err := f.service.Create(context.Background(), in, uuid.New())
	require.NoError(t, err)

	rooms, err := f.service.ListRooms(context.Background(), clinic.ID, true)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestGetClinicCacheRoundTrip(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	ctx := context.Background()

	detail, err := f.service.Get(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, clinic.ID, detail.Clinic.ID)

	// Second read is served from cache.
	_, err = f.cache.Get(ctx, cacheKey(clinic.ID))
	require.NoError(t, err)

	// Update invalidates, so the next read sees fresh data.
	newName := "Boa Saúde Premium"
	_, err = f.service.Update(ctx, clinic.ID, &UpdateClinicInput{TradeName: &newName}, uuid.New())
	require.NoError(t, err)

	_, err = f.cache.Get(ctx, cacheKey(clinic.ID))
	assert.ErrorIs(t, err, cache.ErrMiss)

	detail, err = f.service.Get(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, newName, detail.Clinic.TradeName)
}

func TestGetClinicNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateClinicPartial(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)

	phone := "+55 11 99999-0000"
	updated, err := f.service.Update(context.Background(), clinic.ID, &UpdateClinicInput{Phone: &phone}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, clinic.TradeName, updated.TradeName, "untouched fields survive")
	assert.Equal(t, clinic.CNPJ, updated.CNPJ, "CNPJ is immutable")
}

func TestDeleteClinic(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	ctx := context.Background()

	require.NoError(t, f.service.Delete(ctx, clinic.ID, uuid.New()))

	_, err := f.service.Get(ctx, clinic.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, f.publisher.eventTypes(), model.EventClinicDeleted)
}

func TestDeleteClinicBlockedByFutureAppointments(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	f.appointments.futureByClinic[clinic.ID] = 3

	err := f.service.Delete(context.Background(), clinic.ID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), "expected bad request, got %v", err)
	assert.Contains(t, err.Error(), "3 agendamento(s) futuro(s)")

	// The clinic survives the refused delete.
	_, err = f.service.Get(context.Background(), clinic.ID)
	require.NoError(t, err)
}

func TestAddDoctor(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	doctorID := uuid.New()
	f.people.doctors[doctorID] = &model.Doctor{
		ID: doctorID, FullName: "Dra. Ana Lima",
		Specialties: model.StringList{"cardiologia"},
	}

	detail, err := f.service.AddDoctor(context.Background(), clinic.ID, &AddDoctorInput{DoctorID: doctorID}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, doctorID, detail.DoctorID)
	assert.Equal(t, model.StringList{"cardiologia"}, detail.Specialties,
		"empty specialties default to the doctor's own")
	assert.Equal(t, "Dra. Ana Lima", detail.Doctor.FullName)

	// Linking again is a conflict.
	_, err = f.service.AddDoctor(context.Background(), clinic.ID, &AddDoctorInput{DoctorID: doctorID}, uuid.New())
	assert.True(t, apperrors.IsConflict(err))
}

func TestAddDoctorUnknownDoctor(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)

	_, err := f.service.AddDoctor(context.Background(), clinic.ID, &AddDoctorInput{DoctorID: uuid.New()}, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRemoveDoctorBlockedByFutureAppointments(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	doctorID := uuid.New()
	f.people.doctors[doctorID] = &model.Doctor{ID: doctorID, FullName: "Dr. Caio Souza"}

	_, err := f.service.AddDoctor(context.Background(), clinic.ID, &AddDoctorInput{DoctorID: doctorID}, uuid.New())
	require.NoError(t, err)

	f.appointments.futureByDoctor[doctorID] = 2
	err = f.service.RemoveDoctor(context.Background(), clinic.ID, doctorID, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), "expected bad request, got %v", err)

	f.appointments.futureByDoctor[doctorID] = 0
	require.NoError(t, f.service.RemoveDoctor(context.Background(), clinic.ID, doctorID, uuid.New()))

	err = f.service.RemoveDoctor(context.Background(), clinic.ID, doctorID, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddPatientGeneratesMRN(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	patientID := uuid.New()
	f.people.patients[patientID] = &model.Patient{ID: patientID, FullName: "João Pereira"}

	detail, err := f.service.AddPatient(context.Background(), clinic.ID, &AddPatientInput{PatientID: patientID}, uuid.New())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(detail.MedicalRecordNumber, "MRN-"))
	assert.Len(t, detail.MedicalRecordNumber, len("MRN-")+10)

	_, err = f.service.AddPatient(context.Background(), clinic.ID, &AddPatientInput{PatientID: patientID}, uuid.New())
	assert.True(t, apperrors.IsConflict(err))
}

func TestAddRoomDuplicateName(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	ctx := context.Background()

	_, err := f.service.AddRoom(ctx, clinic.ID, &CreateRoomInput{Name: "Sala 1"}, uuid.New())
	require.NoError(t, err)

	_, err = f.service.AddRoom(ctx, clinic.ID, &CreateRoomInput{Name: "Sala 1"}, uuid.New())
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeactivateRoom(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	ctx := context.Background()

	room, err := f.service.AddRoom(ctx, clinic.ID, &CreateRoomInput{Name: "Sala 1"}, uuid.New())
	require.NoError(t, err)

	require.NoError(t, f.service.DeactivateRoom(ctx, clinic.ID, room.ID, uuid.New()))

	active, err := f.service.ListRooms(ctx, clinic.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.service.ListRooms(ctx, clinic.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListClinicsEmpty(t *testing.T) {
	f := newFixture(t)

	page, err := f.service.List(context.Background(), &model.ClinicFilter{})
	require.NoError(t, err)

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.TotalPages)
}

func TestListClinicsRadiusUnsupported(t *testing.T) {
	f := newFixture(t)
	f.clinics.listErr = repository.ErrUnsupportedFilter

	_, err := f.service.List(context.Background(), &model.ClinicFilter{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)
	f.appointments.stats = &model.ClinicStats{
		TotalAppointments:     10,
		CompletedAppointments: 7,
	}

	stats, err := f.service.Stats(context.Background(), clinic.ID, model.StatsRange{})
	require.NoError(t, err)

	assert.Equal(t, 70, stats.OccupancyRate)
	assert.False(t, stats.PeriodStart.IsZero())
	assert.False(t, stats.PeriodEnd.IsZero())
	assert.InDelta(t, 30, stats.PeriodEnd.Sub(stats.PeriodStart).Hours()/24, 1)
}

func TestStatsInvalidRange(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)

	rng := model.StatsRange{
		Start: time.Now(),
		End:   time.Now().AddDate(0, 0, -1),
	}
	_, err := f.service.Stats(context.Background(), clinic.ID, rng)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestStatsZeroAppointments(t *testing.T) {
	f := newFixture(t)
	clinic := f.createClinic(t)

	stats, err := f.service.Stats(context.Background(), clinic.ID, model.StatsRange{})
	require.NoError(t, err)
	assert.Zero(t, stats.OccupancyRate)
}
