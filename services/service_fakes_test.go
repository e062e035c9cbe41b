package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"kayit.link/configs/configslog"
	"kayit.link/models"
	"kayit.link/pkg/queryparams"
	"kayit.link/repositories"
)

func TestMain(m *testing.M) {
	configslog.InitLogger()
	os.Exit(m.Run())
}

// fakeRegistrationRepo bellek içi IRegistrationRepository.
// createErrs ile Create çağrılarına sırayla hata kuyruklanabilir.
type fakeRegistrationRepo struct {
	mu          sync.Mutex
	nextID      uint
	byID        map[uint]*models.Registration
	byCode      map[string]uint
	createErrs  []error
	createCalls int
	findErr     error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		byID:   map[uint]*models.Registration{},
		byCode: map[string]uint{},
	}
}

func (f *fakeRegistrationRepo) add(reg *models.Registration) *models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	reg.ID = f.nextID
	f.byID[reg.ID] = reg
	f.byCode[reg.ReferenceCode] = reg.ID
	return reg
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, registration *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := f.byCode[registration.ReferenceCode]; exists {
		return fmt.Errorf("%w: duplicate key value violates unique constraint", repositories.ErrDuplicateKey)
	}
	f.nextID++
	registration.ID = f.nextID
	f.byID[registration.ID] = registration
	f.byCode[registration.ReferenceCode] = registration.ID
	return nil
}

func (f *fakeRegistrationRepo) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	reg, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeRegistrationRepo) FindByReferenceCode(ctx context.Context, code string) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	id, ok := f.byCode[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *f.byID[id]
	return &copied, nil
}

func (f *fakeRegistrationRepo) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Registration, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Registration, 0, len(f.byID))
	for _, reg := range f.byID {
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRegistrationRepo) FindAllForExport(ctx context.Context, eventID uint, search string) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Registration, 0)
	for _, reg := range f.byID {
		if eventID == 0 || reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) FindAllByEventID(ctx context.Context, eventID uint) ([]models.Registration, error) {
	return f.FindAllForExport(ctx, eventID, "")
}

func (f *fakeRegistrationRepo) Update(ctx context.Context, registration *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[registration.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	*existing = *registration
	return nil
}

func (f *fakeRegistrationRepo) CountByEventID(ctx context.Context, eventID uint) (int64, error) {
	regs, _ := f.FindAllForExport(ctx, eventID, "")
	return int64(len(regs)), nil
}

func (f *fakeRegistrationRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

// fakeCheckInRepo bellek içi ICheckInRepository. registration_id başına tek
// satır kuralını gerçek unique index gibi kilit altında uygular.
type fakeCheckInRepo struct {
	mu             sync.Mutex
	nextID         uint
	byRegistration map[uint]*models.CheckIn
	regRepo        *fakeRegistrationRepo
	createErr      error
}

func newFakeCheckInRepo(regRepo *fakeRegistrationRepo) *fakeCheckInRepo {
	return &fakeCheckInRepo{
		byRegistration: map[uint]*models.CheckIn{},
		regRepo:        regRepo,
	}
}

func (f *fakeCheckInRepo) CreateWithStatus(ctx context.Context, registrationID, staffID uint) (*models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byRegistration[registrationID]; exists {
		return nil, fmt.Errorf("%w: duplicate key value violates unique constraint", repositories.ErrDuplicateKey)
	}
	f.nextID++
	checkIn := &models.CheckIn{
		RegistrationID: registrationID,
		StaffID:        staffID,
		ScannedAt:      time.Now().UTC(),
	}
	checkIn.ID = f.nextID
	f.byRegistration[registrationID] = checkIn

	if f.regRepo != nil {
		f.regRepo.mu.Lock()
		if reg, ok := f.regRepo.byID[registrationID]; ok {
			reg.Status = models.RegStatusConfirmed
		}
		f.regRepo.mu.Unlock()
	}
	return checkIn, nil
}

func (f *fakeCheckInRepo) FindByRegistrationID(ctx context.Context, registrationID uint) (*models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	checkIn, ok := f.byRegistration[registrationID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *checkIn
	return &copied, nil
}

func (f *fakeCheckInRepo) DeleteByRegistrationID(ctx context.Context, registrationID uint, deletedByUserID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byRegistration[registrationID]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byRegistration, registrationID)
	return nil
}

func (f *fakeCheckInRepo) FindRecentByEventID(ctx context.Context, eventID uint, limit int) ([]models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CheckIn, 0, len(f.byRegistration))
	for _, checkIn := range f.byRegistration {
		out = append(out, *checkIn)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCheckInRepo) CountByEventID(ctx context.Context, eventID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byRegistration)), nil
}

func (f *fakeCheckInRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byRegistration)
}

// fakeEventRepo bellek içi IEventRepository.
type fakeEventRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Event
	bySlug map[string]uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   map[uint]*models.Event{},
		bySlug: map[string]uint{},
	}
}

func (f *fakeEventRepo) add(event *models.Event) *models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	event.ID = f.nextID
	f.byID[event.ID] = event
	f.bySlug[event.Slug] = event.ID
	return event
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.bySlug[event.Slug]; exists {
		return fmt.Errorf("%w: duplicate key value violates unique constraint", repositories.ErrDuplicateKey)
	}
	f.nextID++
	event.ID = f.nextID
	f.byID[event.ID] = event
	f.bySlug[event.Slug] = event.ID
	return nil
}

func (f *fakeEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.bySlug[slug]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *f.byID[id]
	return &copied, nil
}

func (f *fakeEventRepo) FindActiveBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := f.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !event.IsEnabled {
		return nil, repositories.ErrNotFound
	}
	return event, nil
}

func (f *fakeEventRepo) SlugExists(ctx context.Context, slug string, excludeEventID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.bySlug[slug]
	return ok && id != excludeEventID, nil
}

func (f *fakeEventRepo) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Event, 0, len(f.byID))
	for _, event := range f.byID {
		out = append(out, *event)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) FindAllActive(ctx context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Event, 0)
	for _, event := range f.byID {
		if event.IsEnabled {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[event.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(f.bySlug, existing.Slug)
	*existing = *event
	f.bySlug[event.Slug] = event.ID
	return nil
}

func (f *fakeEventRepo) UpdateDetail(ctx context.Context, detail *models.EventDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.byID[detail.EventID]
	if !ok {
		return repositories.ErrNotFound
	}
	event.Detail = *detail
	return nil
}

func (f *fakeEventRepo) ReplaceFormFields(ctx context.Context, eventID uint, fields []models.FormField) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.byID[eventID]
	if !ok {
		return repositories.ErrNotFound
	}
	event.FormFields = fields
	return nil
}

func (f *fakeEventRepo) Archive(ctx context.Context, event *models.Event, archivedByUserID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[event.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.IsEnabled = false
	return nil
}

func (f *fakeEventRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

// Arayüz uyumluluğu kontrolleri
var (
	_ repositories.IRegistrationRepository = (*fakeRegistrationRepo)(nil)
	_ repositories.ICheckInRepository      = (*fakeCheckInRepo)(nil)
	_ repositories.IEventRepository        = (*fakeEventRepo)(nil)
)
