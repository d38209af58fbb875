package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/hr-employee-names/internal/core/query"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// EmployeeNameSyncer は filter に一致する社員へ氏名を伝播します。
type EmployeeNameSyncer interface {
	PropagateName(ctx context.Context, name string, filter query.Expr) (int, error)
}

// employeeContactField は社員側で連絡先を参照するフィールドです。
const employeeContactField = "work_contact_id"

// SyncOptions は呼び出し単位の伝播制御フラグです。
// AllowEmployeeSync が true かつ SkipEmployeeSync が false の場合のみ社員へ伝播します。
type SyncOptions struct {
	AllowEmployeeSync bool
	SkipEmployeeSync  bool
}

func (o SyncOptions) propagate() bool {
	return o.AllowEmployeeSync && !o.SkipEmployeeSync
}

// Service は連絡先に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	syncer EmployeeNameSyncer
	clock  Clock
	tx     TransactionManager
	logger *slog.Logger
}

// UseCase は連絡先ユースケースの公開インターフェースです。
type UseCase interface {
	CreateContact(ctx context.Context, in CreateContactInput) (*Contact, error)
	GetContact(ctx context.Context, in GetContactInput) (*Contact, error)
	UpdateContact(ctx context.Context, in UpdateContactInput, opts SyncOptions) (*UpdateContactResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, syncer EmployeeNameSyncer, clock Clock, tx TransactionManager, logger *slog.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, syncer: syncer, clock: clock, tx: tx, logger: logger}
}

// CreateContactInput は連絡先作成時の入力です。
type CreateContactInput struct {
	Name string
}

// GetContactInput は連絡先取得時の入力です。
type GetContactInput struct {
	ID string
}

// UpdateContactInput は連絡先更新時の入力です。
type UpdateContactInput struct {
	ID   string
	Name *string
}

// UpdateContactResult は更新結果と伝播した社員数です。
type UpdateContactResult struct {
	Contact         *Contact
	EmployeesSynced int
	PropagationRan  bool
}

// CreateContact は連絡先を作成します。
func (s *Service) CreateContact(ctx context.Context, in CreateContactInput) (*Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	var created *Contact
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Contact{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// GetContact は連絡先を取得します。
func (s *Service) GetContact(ctx context.Context, in GetContactInput) (*Contact, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Contact
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		found = c
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateContact は連絡先を更新し、許可されていれば紐づく社員へ氏名を伝播します。
// 連絡先の更新と伝播は同じトランザクションで確定します。
func (s *Service) UpdateContact(ctx context.Context, in UpdateContactInput, opts SyncOptions) (*UpdateContactResult, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
	}

	result := &UpdateContactResult{}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			existing.Name = name
		}
		existing.UpdatedAt = s.clock.Now()

		updated, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		result.Contact = updated

		if in.Name == nil || !opts.propagate() || s.syncer == nil {
			return nil
		}

		n, err := s.syncer.PropagateName(txCtx, name, query.Cond{Field: employeeContactField, Op: query.OpIn, Value: []string{updated.ID}})
		if err != nil {
			return err
		}
		result.PropagationRan = true
		result.EmployeesSynced = n
		return nil
	}); err != nil {
		return nil, err
	}

	if result.PropagationRan {
		s.logger.DebugContext(ctx, "contact name propagated", "contact_id", result.Contact.ID, "employees", result.EmployeesSynced)
	}
	return result, nil
}
