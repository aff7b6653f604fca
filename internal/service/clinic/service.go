package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthflow/clinic-api/internal/model"
	"github.com/healthflow/clinic-api/internal/repository"
	"github.com/healthflow/clinic-api/internal/service/audit"
	"github.com/healthflow/clinic-api/pkg/cache"
	"github.com/healthflow/clinic-api/pkg/cnpj"
	apperrors "github.com/healthflow/clinic-api/pkg/errors"
	"github.com/healthflow/clinic-api/pkg/logger"
	"github.com/healthflow/clinic-api/pkg/messaging"
)

const (
	cacheTTL       = time.Hour
	cacheKeyPrefix = "clinic:"
)

type ClinicServicer interface {
	List(ctx context.Context, filter *model.ClinicFilter) (model.Page[*model.ClinicSummary], error)
	Get(ctx context.Context, id uuid.UUID) (*model.ClinicDetail, error)
	GetByCNPJ(ctx context.Context, raw string) (*model.Clinic, error)
	GetByCNES(ctx context.Context, cnes string) (*model.Clinic, error)
	Create(ctx context.Context, in *CreateClinicInput, actorID uuid.UUID) (*model.Clinic, error)
	Update(ctx context.Context, id uuid.UUID, in *UpdateClinicInput, actorID uuid.UUID) (*model.Clinic, error)
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error

	AddDoctor(ctx context.Context, clinicID uuid.UUID, in *AddDoctorInput, actorID uuid.UUID) (*model.ClinicDoctorDetail, error)
	RemoveDoctor(ctx context.Context, clinicID, doctorID, actorID uuid.UUID) error
	ListDoctors(ctx context.Context, clinicID uuid.UUID, filter *model.DoctorMembershipFilter) (model.Page[*model.ClinicDoctorDetail], error)

	AddPatient(ctx context.Context, clinicID uuid.UUID, in *AddPatientInput, actorID uuid.UUID) (*model.ClinicPatientDetail, error)
	ListPatients(ctx context.Context, clinicID uuid.UUID, filter *model.PatientMembershipFilter) (model.Page[*model.ClinicPatientDetail], error)

	AddRoom(ctx context.Context, clinicID uuid.UUID, in *CreateRoomInput, actorID uuid.UUID) (*model.Room, error)
	UpdateRoom(ctx context.Context, clinicID, roomID uuid.UUID, in *UpdateRoomInput, actorID uuid.UUID) (*model.Room, error)
	DeactivateRoom(ctx context.Context, clinicID, roomID, actorID uuid.UUID) error
	ListRooms(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Room, error)

	Stats(ctx context.Context, clinicID uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error)
}

type Service struct {
	clinics      repository.ClinicRepository
	rooms        repository.RoomRepository
	memberships  repository.MembershipRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	cache        cache.Cache
	auditor      *audit.Service
	publisher    messaging.Publisher
	logger       *logger.Logger
}

func NewService(
	clinics repository.ClinicRepository,
	rooms repository.RoomRepository,
	memberships repository.MembershipRepository,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	cacheStore cache.Cache,
	auditor *audit.Service,
	publisher messaging.Publisher,
	log *logger.Logger,
) *Service {
	return &Service{
		clinics:      clinics,
		rooms:        rooms,
		memberships:  memberships,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		cache:        cacheStore,
		auditor:      auditor,
		publisher:    publisher,
		logger:       log,
	}
}

// CreateClinicInput is the creation payload. CNPJ accepts any formatting
// and is stored digits-only.
type CreateClinicInput struct {
	LegalName    string                `json:"legal_name" binding:"required"`
	TradeName    string                `json:"trade_name" binding:"required"`
	CNPJ         string                `json:"cnpj" binding:"required,cnpj"`
	CNES         *string               `json:"cnes"`
	Email        string                `json:"email" binding:"required,email"`
	Phone        string                `json:"phone" binding:"required"`
	Website      *string               `json:"website"`
	Address      model.Address         `json:"address" binding:"required"`
	Settings     *model.ClinicSettings `json:"settings"`
	WorkingHours model.WorkingHours    `json:"working_hours"`
	LogoURL      *string               `json:"logo_url"`
	BrandColor   *string               `json:"brand_color"`
	Timezone     string                `json:"timezone"`
	Rooms        []CreateRoomInput     `json:"rooms"`
}

// UpdateClinicInput is a partial update: nil fields are left untouched.
type UpdateClinicInput struct {
	LegalName    *string               `json:"legal_name"`
	TradeName    *string               `json:"trade_name"`
	CNES         *string               `json:"cnes"`
	Email        *string               `json:"email" binding:"omitempty,email"`
	Phone        *string               `json:"phone"`
	Website      *string               `json:"website"`
	Address      *model.Address        `json:"address"`
	Settings     *model.ClinicSettings `json:"settings"`
	WorkingHours *model.WorkingHours   `json:"working_hours"`
	LogoURL      *string               `json:"logo_url"`
	BrandColor   *string               `json:"brand_color"`
	Timezone     *string               `json:"timezone"`
}

type AddDoctorInput struct {
	DoctorID     uuid.UUID          `json:"doctor_id" binding:"required"`
	IsPrimary    bool               `json:"is_primary"`
	Specialties  model.StringList   `json:"specialties"`
	WorkingHours model.WorkingHours `json:"working_hours"`
}

type AddPatientInput struct {
	PatientID           uuid.UUID `json:"patient_id" binding:"required"`
	MedicalRecordNumber string    `json:"medical_record_number"`
}

type CreateRoomInput struct {
	Name        string           `json:"name" binding:"required"`
	Code        *string          `json:"code"`
	Floor       *string          `json:"floor"`
	Description *string          `json:"description"`
	Equipment   model.StringList `json:"equipment"`
}

// UpdateRoomInput is a partial update: nil fields are left untouched.
type UpdateRoomInput struct {
	Name        *string           `json:"name"`
	Code        *string           `json:"code"`
	Floor       *string           `json:"floor"`
	Description *string           `json:"description"`
	Equipment   *model.StringList `json:"equipment"`
}

func cacheKey(id uuid.UUID) string {
	return cacheKeyPrefix + id.String()
}

func (s *Service) List(ctx context.Context, filter *model.ClinicFilter) (model.Page[*model.ClinicSummary], error) {
	filter.Normalize()

	summaries, total, err := s.clinics.List(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrUnsupportedFilter) {
			return model.Page[*model.ClinicSummary]{}, apperrors.BadRequest("busca por raio geográfico não é suportada", err)
		}
		return model.Page[*model.ClinicSummary]{}, fmt.Errorf("failed to list clinics: %w", err)
	}

	return model.NewPage(summaries, total, filter.Pagination), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ClinicDetail, error) {
	key := cacheKey(id)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var detail model.ClinicDetail
		if err := json.Unmarshal(data, &detail); err == nil {
			return &detail, nil
		}
		// Corrupt entry, drop it and fall through to the database.
		s.cache.Delete(ctx, key)
	}

	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clínica não encontrada", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	doctors, _, err := s.memberships.ListDoctors(ctx, id, &model.DoctorMembershipFilter{
		Pagination: model.Pagination{Page: 1, Limit: model.MaxPageLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic doctors: %w", err)
	}

	rooms, err := s.rooms.ListByClinic(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic rooms: %w", err)
	}

	counts, err := s.clinics.Counts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic counts: %w", err)
	}

	detail := &model.ClinicDetail{
		Clinic:  *clinic,
		Counts:  *counts,
		Doctors: doctors,
		Rooms:   rooms,
	}

	if data, err := json.Marshal(detail); err == nil {
		if err := s.cache.Set(ctx, key, data, cacheTTL); err != nil {
			s.logger.Warn("failed to populate clinic cache", "clinic_id", id.String())
		}
	}

	return detail, nil
}

func (s *Service) GetByCNPJ(ctx context.Context, raw string) (*model.Clinic, error) {
	return s.clinics.GetByCNPJ(ctx, raw)
}

func (s *Service) GetByCNES(ctx context.Context, cnes string) (*model.Clinic, error) {
	return s.clinics.GetByCNES(ctx, cnes)
}

func (s *Service) Create(ctx context.Context, in *CreateClinicInput, actorID uuid.UUID) (*model.Clinic, error) {
	normalized := cnpj.Normalize(in.CNPJ)

	existing, err := s.clinics.GetByCNPJ(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check cnpj uniqueness: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("já existe uma clínica cadastrada com este CNPJ", nil)
	}

	if in.CNES != nil && *in.CNES != "" {
		existing, err := s.clinics.GetByCNES(ctx, *in.CNES)
		if err != nil {
			return nil, fmt.Errorf("failed to check cnes uniqueness: %w", err)
		}
		if existing != nil {
			return nil, apperrors.Conflict("já existe uma clínica cadastrada com este CNES", nil)
		}
	}

	if !cnpj.IsValid(normalized) {
		return nil, apperrors.BadRequest("CNPJ inválido", nil)
	}

	now := time.Now()
	clinic := &model.Clinic{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		LegalName:    strings.TrimSpace(in.LegalName),
		TradeName:    strings.TrimSpace(in.TradeName),
		CNPJ:         normalized,
		CNES:         in.CNES,
		Email:        in.Email,
		Phone:        in.Phone,
		Website:      in.Website,
		Address:      in.Address,
		WorkingHours: in.WorkingHours,
		LogoURL:      in.LogoURL,
		BrandColor:   in.BrandColor,
		Timezone:     in.Timezone,
		Active:       true,
	}
	if in.Settings != nil {
		clinic.Settings = *in.Settings
	}
	if clinic.Timezone == "" {
		clinic.Timezone = model.DefaultTimezone
	}
	if clinic.WorkingHours == nil {
		clinic.WorkingHours = model.WorkingHours{}
	}

	rooms := make([]*model.Room, 0, len(in.Rooms))
	for _, rin := range in.Rooms {
		rooms = append(rooms, newRoom(clinic.ID, &rin, now))
	}

	if err := s.clinics.Create(ctx, clinic, rooms); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a concurrent create race; the unique constraint is the
			// real arbiter.
			return nil, apperrors.Conflict("já existe uma clínica cadastrada com este CNPJ", err)
		}
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	s.audit(ctx, actorID, "CREATE", "clinic", clinic.ID, fmt.Sprintf("clínica %s criada", clinic.TradeName), nil, clinic)
	s.publish(ctx, model.EventClinicCreated, clinic)

	return clinic, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *UpdateClinicInput, actorID uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clínica não encontrada", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	before := *clinic
	applyClinicUpdate(clinic, in)

	if err := s.clinics.Update(ctx, clinic); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("já existe uma clínica cadastrada com este CNES", err)
		}
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}

	s.invalidate(ctx, id)
	s.audit(ctx, actorID, "UPDATE", "clinic", id, fmt.Sprintf("clínica %s atualizada", clinic.TradeName), &before, clinic)
	s.publish(ctx, model.EventClinicUpdated, clinic)

	return clinic, nil
}

// applyClinicUpdate copies only the fields present in the input; absent
// fields are left untouched, not nulled.
func applyClinicUpdate(clinic *model.Clinic, in *UpdateClinicInput) {
	if in.LegalName != nil {
		clinic.LegalName = strings.TrimSpace(*in.LegalName)
	}
	if in.TradeName != nil {
		clinic.TradeName = strings.TrimSpace(*in.TradeName)
	}
	if in.CNES != nil {
		clinic.CNES = in.CNES
	}
	if in.Email != nil {
		clinic.Email = *in.Email
	}
	if in.Phone != nil {
		clinic.Phone = *in.Phone
	}
	if in.Website != nil {
		clinic.Website = in.Website
	}
	if in.Address != nil {
		clinic.Address = *in.Address
	}
	if in.Settings != nil {
		clinic.Settings = *in.Settings
	}
	if in.WorkingHours != nil {
		clinic.WorkingHours = *in.WorkingHours
	}
	if in.LogoURL != nil {
		clinic.LogoURL = in.LogoURL
	}
	if in.BrandColor != nil {
		clinic.BrandColor = in.BrandColor
	}
	if in.Timezone != nil {
		clinic.Timezone = *in.Timezone
	}
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("clínica não encontrada", err)
		}
		return fmt.Errorf("failed to get clinic: %w", err)
	}

	count, err := s.appointments.CountFuture(ctx, model.AppointmentGuard{
		ClinicID: id,
		From:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to count future appointments: %w", err)
	}
	if count > 0 {
		return apperrors.BadRequest(
			fmt.Sprintf("não é possível excluir a clínica: existem %d agendamento(s) futuro(s)", count), nil)
	}

	if err := s.clinics.SoftDelete(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}

	s.invalidate(ctx, id)
	s.audit(ctx, actorID, "DELETE", "clinic", id, fmt.Sprintf("clínica %s desativada", clinic.TradeName), clinic, nil)
	s.publish(ctx, model.EventClinicDeleted, map[string]interface{}{"id": id})

	return nil
}

func (s *Service) AddDoctor(ctx context.Context, clinicID uuid.UUID, in *AddDoctorInput, actorID uuid.UUID) (*model.ClinicDoctorDetail, error) {
	if _, err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.Get(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("médico não encontrado", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if _, err := s.memberships.GetDoctor(ctx, clinicID, in.DoctorID); err == nil {
		return nil, apperrors.Conflict("médico já vinculado a esta clínica", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check doctor membership: %w", err)
	}

	specialties := in.Specialties
	if len(specialties) == 0 {
		specialties = doctor.Specialties
	}

	membership := &model.ClinicDoctor{
		ID:           uuid.New(),
		ClinicID:     clinicID,
		DoctorID:     in.DoctorID,
		IsPrimary:    in.IsPrimary,
		Specialties:  specialties,
		WorkingHours: in.WorkingHours,
		CreatedAt:    time.Now(),
	}

	if err := s.memberships.AddDoctor(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("médico já vinculado a esta clínica", err)
		}
		return nil, fmt.Errorf("failed to add doctor membership: %w", err)
	}

	s.invalidate(ctx, clinicID)
	s.audit(ctx, actorID, "CREATE", "clinic_doctor", membership.ID,
		fmt.Sprintf("médico %s vinculado à clínica", doctor.FullName), nil, membership)
	s.publish(ctx, model.EventClinicDoctorAdded, membership)

	return &model.ClinicDoctorDetail{ClinicDoctor: *membership, Doctor: *doctor}, nil
}

func (s *Service) RemoveDoctor(ctx context.Context, clinicID, doctorID, actorID uuid.UUID) error {
	membership, err := s.memberships.GetDoctor(ctx, clinicID, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("vínculo de médico não encontrado", err)
		}
		return fmt.Errorf("failed to get doctor membership: %w", err)
	}

	count, err := s.appointments.CountFuture(ctx, model.AppointmentGuard{
		ClinicID: clinicID,
		DoctorID: &doctorID,
		From:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to count future appointments: %w", err)
	}
	if count > 0 {
		return apperrors.BadRequest(
			fmt.Sprintf("não é possível desvincular o médico: existem %d agendamento(s) futuro(s)", count), nil)
	}

	if err := s.memberships.RemoveDoctor(ctx, clinicID, doctorID); err != nil {
		return fmt.Errorf("failed to remove doctor membership: %w", err)
	}

	s.invalidate(ctx, clinicID)
	s.audit(ctx, actorID, "DELETE", "clinic_doctor", membership.ID, "médico desvinculado da clínica", membership, nil)
	s.publish(ctx, model.EventClinicDoctorRemoved, map[string]interface{}{
		"clinic_id": clinicID,
		"doctor_id": doctorID,
	})

	return nil
}

func (s *Service) ListDoctors(ctx context.Context, clinicID uuid.UUID, filter *model.DoctorMembershipFilter) (model.Page[*model.ClinicDoctorDetail], error) {
	filter.Normalize()

	memberships, total, err := s.memberships.ListDoctors(ctx, clinicID, filter)
	if err != nil {
		return model.Page[*model.ClinicDoctorDetail]{}, fmt.Errorf("failed to list doctor memberships: %w", err)
	}
	return model.NewPage(memberships, total, filter.Pagination), nil
}

func (s *Service) AddPatient(ctx context.Context, clinicID uuid.UUID, in *AddPatientInput, actorID uuid.UUID) (*model.ClinicPatientDetail, error) {
	if _, err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("paciente não encontrado", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if _, err := s.memberships.GetPatient(ctx, clinicID, in.PatientID); err == nil {
		return nil, apperrors.Conflict("paciente já vinculado a esta clínica", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check patient membership: %w", err)
	}

	mrn := in.MedicalRecordNumber
	if mrn == "" {
		mrn = newMedicalRecordNumber()
	}

	membership := &model.ClinicPatient{
		ID:                  uuid.New(),
		ClinicID:            clinicID,
		PatientID:           in.PatientID,
		MedicalRecordNumber: mrn,
		CreatedAt:           time.Now(),
	}

	if err := s.memberships.AddPatient(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("paciente já vinculado a esta clínica", err)
		}
		return nil, fmt.Errorf("failed to add patient membership: %w", err)
	}

	s.invalidate(ctx, clinicID)
	s.audit(ctx, actorID, "CREATE", "clinic_patient", membership.ID,
		fmt.Sprintf("paciente %s vinculado à clínica", patient.FullName), nil, membership)
	s.publish(ctx, model.EventClinicPatientAdded, membership)

	return &model.ClinicPatientDetail{ClinicPatient: *membership, Patient: *patient}, nil
}

func (s *Service) ListPatients(ctx context.Context, clinicID uuid.UUID, filter *model.PatientMembershipFilter) (model.Page[*model.ClinicPatientDetail], error) {
	filter.Normalize()

	memberships, total, err := s.memberships.ListPatients(ctx, clinicID, filter)
	if err != nil {
		return model.Page[*model.ClinicPatientDetail]{}, fmt.Errorf("failed to list patient memberships: %w", err)
	}
	return model.NewPage(memberships, total, filter.Pagination), nil
}

func (s *Service) AddRoom(ctx context.Context, clinicID uuid.UUID, in *CreateRoomInput, actorID uuid.UUID) (*model.Room, error) {
	if _, err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	room := newRoom(clinicID, in, time.Now())

	// Name uniqueness within the clinic is enforced by the (clinic_id,
	// name) constraint, not an application pre-check.
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("já existe uma sala com este nome nesta clínica", err)
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.invalidate(ctx, clinicID)
	s.audit(ctx, actorID, "CREATE", "room", room.ID, fmt.Sprintf("sala %s criada", room.Name), nil, room)
	s.publish(ctx, model.EventClinicRoomAdded, room)

	return room, nil
}

func (s *Service) UpdateRoom(ctx context.Context, clinicID, roomID uuid.UUID, in *UpdateRoomInput, actorID uuid.UUID) (*model.Room, error) {
	room, err := s.rooms.Get(ctx, clinicID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("sala não encontrada", err)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	before := *room
	if in.Name != nil {
		room.Name = *in.Name
	}
	if in.Code != nil {
		room.Code = in.Code
	}
	if in.Floor != nil {
		room.Floor = in.Floor
	}
	if in.Description != nil {
		room.Description = in.Description
	}
	if in.Equipment != nil {
		room.Equipment = *in.Equipment
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("já existe uma sala com este nome nesta clínica", err)
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	s.invalidate(ctx, clinicID)
	s.audit(ctx, actorID, "UPDATE", "room", roomID, fmt.Sprintf("sala %s atualizada", room.Name), &before, room)
	s.publish(ctx, model.EventClinicRoomUpdated, room)

	return room, nil
}

func (s *Service) DeactivateRoom(ctx context.Context, clinicID, roomID, actorID uuid.UUID) error {
	room, err := s.rooms.Get(ctx, clinicID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("sala não encontrada", err)
		}
		return fmt.Errorf("failed to get room: %w", err)
	}

	count, err := s.appointments.CountFuture(ctx, model.AppointmentGuard{
		ClinicID: clinicID,
		RoomID:   &roomID,
		From:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to count future appointments: %w", err)
	}
	if count > 0 {
		return apperrors.BadRequest(
			fmt.Sprintf("não é possível desativar a sala: existem %d agendamento(s) futuro(s)", count), nil)
	}

	if err := s.rooms.Deactivate(ctx, clinicID, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("sala não encontrada", err)
		}
		return fmt.Errorf("failed to deactivate room: %w", err)
	}

	s.invalidate(ctx, clinicID)
	s.audit(ctx, actorID, "DELETE", "room", roomID, fmt.Sprintf("sala %s desativada", room.Name), room, nil)
	s.publish(ctx, model.EventClinicRoomDeactivated, map[string]interface{}{
		"clinic_id": clinicID,
		"room_id":   roomID,
	})

	return nil
}

func (s *Service) ListRooms(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Room, error) {
	if _, err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.rooms.ListByClinic(ctx, clinicID, activeOnly)
}

func (s *Service) Stats(ctx context.Context, clinicID uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error) {
	if _, err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	if rng.End.IsZero() {
		rng.End = time.Now()
	}
	if rng.Start.IsZero() {
		rng.Start = rng.End.AddDate(0, 0, -30)
	}
	if rng.End.Before(rng.Start) {
		return nil, apperrors.BadRequest("período inválido: data final anterior à inicial", nil)
	}

	stats, err := s.appointments.Stats(ctx, clinicID, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic stats: %w", err)
	}

	if stats.TotalAppointments > 0 {
		stats.OccupancyRate = int(math.Round(
			float64(stats.CompletedAppointments) / float64(stats.TotalAppointments) * 100))
	}
	stats.PeriodStart = rng.Start
	stats.PeriodEnd = rng.End

	return stats, nil
}

func (s *Service) requireClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.clinics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clínica não encontrada", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) invalidate(ctx context.Context, clinicID uuid.UUID) {
	if err := s.cache.Delete(ctx, cacheKey(clinicID)); err != nil {
		s.logger.Warn("failed to invalidate clinic cache", "clinic_id", clinicID.String())
	}
}

// audit and publish are fire-and-forget from the caller's perspective:
// failures are logged, the mutation itself has already committed.
func (s *Service) audit(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, description string, oldValues, newValues interface{}) {
	err := s.auditor.Log(ctx, actorID, action, entityType, entityID, description, &audit.LogOptions{
		OldValues: oldValues,
		NewValues: newValues,
	})
	if err != nil {
		s.logger.Error(err, "failed to write audit log", "entity_type", entityType, "action", action)
	}
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to publish event", "event_type", eventType)
	}
}

func newRoom(clinicID uuid.UUID, in *CreateRoomInput, now time.Time) *model.Room {
	equipment := in.Equipment
	if equipment == nil {
		equipment = model.StringList{}
	}
	return &model.Room{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClinicID:    clinicID,
		Name:        strings.TrimSpace(in.Name),
		Code:        in.Code,
		Floor:       in.Floor,
		Description: in.Description,
		Equipment:   equipment,
		Active:      true,
	}
}

func newMedicalRecordNumber() string {
	id := uuid.New()
	return "MRN-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}
