package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
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
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// NameFormatter は氏名の合成とフォーマット解決を行います。
type NameFormatter interface {
	Compose(ctx context.Context, parts nameformat.Parts, override nameformat.Format) (string, error)
	SystemFormat(ctx context.Context) (nameformat.Format, error)
	ConfiguredFormat(ctx context.Context) (nameformat.Format, error)
	EffectiveFormat(ctx context.Context, override nameformat.Format) (nameformat.Format, error)
}

// 同期経路の識別子です。メトリクスのラベルに使われます。
const (
	SyncPathCompose   = "compose"
	SyncPathDecompose = "decompose"
	SyncPathContact   = "contact"
	SyncPathBackfill  = "backfill"
	SyncPathRecompute = "recompute"
)

// SyncRecorder は氏名同期の件数を記録します。
type SyncRecorder interface {
	RecordNameSync(path string, n int)
}

type noopRecorder struct{}

func (noopRecorder) RecordNameSync(string, int) {}

const (
	// UnknownLastName は連絡先からの伝播で姓が得られなかった場合の値です。
	UnknownLastName = "Unknown"

	defaultSearchLimit        = 100
	defaultBackfillBatchSize  = 200
	defaultRecomputeBatchSize = 500
)

// Service は社員氏名に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	formatter NameFormatter
	clock     Clock
	tx        TransactionManager
	logger    *slog.Logger
	recorder  SyncRecorder
	newID     func() string

	backfillBatchSize  int
	recomputeBatchSize int
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput, opts WriteOptions) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	DisplayName(ctx context.Context, e *Employee) (string, error)
	SearchByName(ctx context.Context, in SearchByNameInput) ([]NameMatch, error)
	DefaultNameFormat(ctx context.Context) (nameformat.Format, error)
	Backfill(ctx context.Context) (*BatchResult, error)
	RecomputeNames(ctx context.Context) (*BatchResult, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithLogger はロガーを設定します。
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder は同期件数の記録先を設定します。
func WithRecorder(r SyncRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithBatchSizes はバックフィルと再計算のバッチサイズを設定します。0 以下は既定値です。
func WithBatchSizes(backfill, recompute int) Option {
	return func(s *Service) {
		if backfill > 0 {
			s.backfillBatchSize = backfill
		}
		if recompute > 0 {
			s.recomputeBatchSize = recompute
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, formatter NameFormatter, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:               repo,
		formatter:          formatter,
		clock:              clock,
		tx:                 tx,
		logger:             slog.Default(),
		recorder:           noopRecorder{},
		newID:              uuid.NewString,
		backfillBatchSize:  defaultBackfillBatchSize,
		recomputeBatchSize: defaultRecomputeBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	FirstName     string
	LastName      string
	NickName      *string
	NameFormat    nameformat.Format
	WorkContactID *string
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
// Name は氏名の直接書き込みで、構造化フィールドが指定された場合は無視されます。
type UpdateEmployeeInput struct {
	ID               string
	FirstName        *string
	LastName         *string
	NickName         *string
	NameFormat       *nameformat.Format
	Name             *string
	WorkContactID    *string
	WorkContactIDSet bool
}

// WriteOptions は書き込み単位の同期制御フラグです。
type WriteOptions struct {
	// SkipNameSync は直接書き込まれた氏名を構造化フィールドへ分解しません。
	SkipNameSync bool
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// SearchByNameInput は氏名検索の入力です。
type SearchByNameInput struct {
	Query    string
	Operator query.Op
	Filter   query.Expr
	Limit    int
}

// BatchResult はバッチ処理の結果です。
type BatchResult struct {
	Scanned int
	Updated int
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.FirstName) == "" && strings.TrimSpace(in.LastName) == "" {
		return nil, ErrNameRequired
	}

	nick := ""
	if in.NickName != nil {
		nick = *in.NickName
	}
	if err := validateNameParts(in.FirstName, in.LastName, nick); err != nil {
		return nil, err
	}
	if nick == "" {
		nick = in.FirstName
		if nick == "" {
			nick = in.LastName
		}
	}

	format := nameformat.ParseFormat(string(in.NameFormat))
	if !format.IsRecordFormat() {
		return nil, ErrInvalidNameFormat
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		emp := &Employee{
			ID:            s.newID(),
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			NickName:      nick,
			NameFormat:    format,
			WorkContactID: normalizeOptionalID(in.WorkContactID),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := s.recompose(txCtx, emp); err != nil {
			return err
		}

		result, err := s.repo.Create(txCtx, emp)
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

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput, opts WriteOptions) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var (
		updated  *Employee
		syncPath string
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		result, path, err := s.write(txCtx, existing, in, opts)
		if err != nil {
			return err
		}
		updated = result
		syncPath = path
		return nil
	}); err != nil {
		return nil, err
	}

	if syncPath != "" {
		s.recorder.RecordNameSync(syncPath, 1)
	}

	return updated, nil
}

// write は既存の社員に変更を適用して保存します。
// 構造化フィールドの変更は氏名を再合成し、氏名の直接書き込みは構造化フィールドへ分解します。
// 一回の書き込みでどちらか一方の経路しか通らず、通った経路の識別子を返します (どちらも通らなければ空)。
func (s *Service) write(ctx context.Context, existing *Employee, in UpdateEmployeeInput, opts WriteOptions) (*Employee, string, error) {
	previousFirst := existing.FirstName
	structured := in.FirstName != nil || in.LastName != nil || in.NameFormat != nil

	if in.FirstName != nil {
		existing.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		existing.LastName = *in.LastName
	}
	if in.NameFormat != nil {
		format := nameformat.ParseFormat(string(*in.NameFormat))
		if !format.IsRecordFormat() {
			return nil, "", ErrInvalidNameFormat
		}
		existing.NameFormat = format
	}
	if in.NickName != nil {
		if strings.TrimSpace(*in.NickName) == "" && in.FirstName == nil {
			existing.NickName = previousFirst
		} else {
			existing.NickName = *in.NickName
		}
	}
	if in.WorkContactIDSet {
		existing.WorkContactID = normalizeOptionalID(in.WorkContactID)
	}

	if err := validateNameParts(existing.FirstName, existing.LastName, existing.NickName); err != nil {
		return nil, "", err
	}

	path := ""
	switch {
	case structured:
		if err := s.recompose(ctx, existing); err != nil {
			return nil, "", err
		}
		path = SyncPathCompose
	case in.Name != nil:
		decomposed, err := s.applyDirectName(ctx, existing, *in.Name, opts)
		if err != nil {
			return nil, "", err
		}
		if decomposed {
			path = SyncPathDecompose
		}
	}

	if existing.FirstName == "" && existing.LastName == "" {
		return nil, "", ErrNameRequired
	}

	existing.UpdatedAt = s.clock.Now()
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, "", err
	}
	return saved, path, nil
}

// applyDirectName は直接書き込まれた氏名を保存し、差分のある構造化フィールドだけを書き戻します。
// 氏名は再合成しません。
func (s *Service) applyDirectName(ctx context.Context, e *Employee, raw string, opts WriteOptions) (bool, error) {
	full := strings.Join(strings.Fields(raw), " ")
	if full == "" {
		return false, s.recompose(ctx, e)
	}

	e.Name = full
	if opts.SkipNameSync {
		return false, nil
	}

	format, err := s.formatter.EffectiveFormat(ctx, e.NameFormat)
	if err != nil {
		return false, err
	}

	parts := nameformat.Split(full, format)
	if parts.First != "" && parts.First != e.FirstName {
		e.FirstName = parts.First
	}
	if parts.Last != "" && parts.Last != e.LastName {
		e.LastName = parts.Last
	}
	return true, nil
}

func (s *Service) recompose(ctx context.Context, e *Employee) error {
	name, err := s.formatter.Compose(ctx, nameformat.Parts{First: e.FirstName, Last: e.LastName, Nickname: e.NickName}, e.NameFormat)
	if err != nil {
		return err
	}
	e.Name = name
	return nil
}

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// DisplayName は表示名を返します。
// ニックネームが名と異なる場合は "ニックネーム (氏名)" 形式になります。
func (s *Service) DisplayName(ctx context.Context, e *Employee) (string, error) {
	if e == nil {
		return "", nil
	}

	nick := strings.TrimSpace(e.NickName)
	if nick == "" || nick == strings.TrimSpace(e.FirstName) {
		return e.Name, nil
	}

	base := e.Name
	if base == "" {
		composed, err := s.formatter.Compose(ctx, nameformat.Parts{First: e.FirstName, Last: e.LastName, Nickname: e.NickName}, e.NameFormat)
		if err != nil {
			return "", err
		}
		base = composed
	}
	return fmt.Sprintf("%s (%s)", nick, base), nil
}

// SearchByName は氏名・名・姓・ニックネームのいずれかに一致する社員を検索します。
func (s *Service) SearchByName(ctx context.Context, in SearchByNameInput) ([]NameMatch, error) {
	limit := in.Limit
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = defaultSearchLimit
	}

	op := in.Operator
	if op == "" {
		op = query.OpILike
	}
	if op != query.OpILike && op != query.OpEq {
		return nil, ErrInvalidOperator
	}

	filter := in.Filter
	if in.Query != "" {
		filter = query.Join(filter, query.Or{
			query.Cond{Field: FieldName, Op: op, Value: in.Query},
			query.Cond{Field: FieldFirstName, Op: op, Value: in.Query},
			query.Cond{Field: FieldLastName, Op: op, Value: in.Query},
			query.Cond{Field: FieldNickName, Op: op, Value: in.Query},
		})
	}

	var matches []NameMatch
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.Search(txCtx, filter, SearchOptions{Limit: limit, Order: OrderByName})
		if err != nil {
			return err
		}

		matches = make([]NameMatch, 0, len(found))
		for _, emp := range found {
			display, err := s.DisplayName(txCtx, emp)
			if err != nil {
				return err
			}
			if display == "" {
				display = emp.Name
			}
			matches = append(matches, NameMatch{ID: emp.ID, DisplayName: display})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return matches, nil
}

// DefaultNameFormat は新規社員フォームの既定フォーマットを返します。
// システム設定が社員単位で指定可能なフォーマットでなければ空 (システム既定) です。
func (s *Service) DefaultNameFormat(ctx context.Context) (nameformat.Format, error) {
	format, err := s.formatter.ConfiguredFormat(ctx)
	if err != nil {
		return "", err
	}
	if format == nameformat.FormatWestern || format == nameformat.FormatAsian {
		return format, nil
	}
	return nameformat.FormatDefault, nil
}

// PropagateName は連絡先の氏名を filter に一致する社員の名・姓へ書き込みます。
// 分解にはシステム設定のフォーマットを使い、姓が得られない場合は UnknownLastName を設定します。
func (s *Service) PropagateName(ctx context.Context, newName string, filter query.Expr) (int, error) {
	if strings.TrimSpace(newName) == "" {
		return 0, nil
	}
	if filter == nil {
		return 0, errors.New("employee: propagation filter is required")
	}

	updated := 0
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		employees, err := s.repo.Search(txCtx, filter, SearchOptions{Order: OrderByID})
		if err != nil {
			return err
		}
		if len(employees) == 0 {
			return nil
		}

		format, err := s.formatter.SystemFormat(txCtx)
		if err != nil {
			return err
		}

		parts := nameformat.Split(newName, format)
		if parts.First == "" {
			return nil
		}
		last := parts.Last
		if last == "" {
			last = UnknownLastName
		}

		for _, emp := range employees {
			first := parts.First
			lastName := last
			if _, _, err := s.write(txCtx, emp, UpdateEmployeeInput{ID: emp.ID, FirstName: &first, LastName: &lastName}, WriteOptions{SkipNameSync: true}); err != nil {
				return fmt.Errorf("propagate name to %s: %w", emp.ID, err)
			}
			updated++
		}
		return nil
	}); err != nil {
		return 0, err
	}

	if updated > 0 {
		s.recorder.RecordNameSync(SyncPathContact, updated)
		s.logger.InfoContext(ctx, "propagated contact name to employees", "count", updated)
	}
	return updated, nil
}

// Backfill は名・姓・ニックネームが欠けた社員を既存の氏名から補完します。
// ID 順のバッチで処理し、各バッチを一つのトランザクションで確定します。再実行しても結果は変わりません。
func (s *Service) Backfill(ctx context.Context) (*BatchResult, error) {
	format, err := s.formatter.SystemFormat(ctx)
	if err != nil {
		return nil, err
	}

	missing := query.Or{
		query.Cond{Field: FieldFirstName, Op: query.OpEq, Value: ""},
		query.Cond{Field: FieldLastName, Op: query.OpEq, Value: ""},
		query.Cond{Field: FieldNickName, Op: query.OpEq, Value: ""},
	}

	result := &BatchResult{}
	err = s.inBatches(ctx, missing, s.backfillBatchSize, func(txCtx context.Context, batch []*Employee) error {
		for _, emp := range batch {
			changed, err := s.backfillOne(txCtx, emp, format)
			if err != nil {
				return fmt.Errorf("backfill %s: %w", emp.ID, err)
			}
			if changed {
				result.Updated++
			}
		}
		result.Scanned += len(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.RecordNameSync(SyncPathBackfill, result.Updated)
	s.logger.InfoContext(ctx, "employee name backfill finished", "scanned", result.Scanned, "updated", result.Updated)
	return result, nil
}

func (s *Service) backfillOne(ctx context.Context, emp *Employee, format nameformat.Format) (bool, error) {
	in := UpdateEmployeeInput{ID: emp.ID}
	first := strings.TrimSpace(emp.FirstName)
	last := strings.TrimSpace(emp.LastName)

	if first == "" || last == "" {
		parsed := nameformat.Split(emp.Name, format)
		if first == "" && parsed.First != "" {
			first = parsed.First
			in.FirstName = &first
		}
		if last == "" && parsed.Last != "" {
			last = parsed.Last
			in.LastName = &last
		}
	}

	if emp.NickName == "" && first != "" {
		nick := first
		in.NickName = &nick
	}

	if in.FirstName == nil && in.LastName == nil && in.NickName == nil {
		return false, nil
	}

	if _, _, err := s.write(ctx, emp, in, WriteOptions{SkipNameSync: true}); err != nil {
		return false, err
	}
	return true, nil
}

// RecomputeNames は全社員の氏名を構造化フィールドから再計算します。構造化フィールドは変更しません。
func (s *Service) RecomputeNames(ctx context.Context) (*BatchResult, error) {
	result := &BatchResult{}
	err := s.inBatches(ctx, nil, s.recomputeBatchSize, func(txCtx context.Context, batch []*Employee) error {
		for _, emp := range batch {
			previous := emp.Name
			if err := s.recompose(txCtx, emp); err != nil {
				return err
			}
			if emp.Name == previous {
				continue
			}
			emp.UpdatedAt = s.clock.Now()
			if _, err := s.repo.Update(txCtx, emp); err != nil {
				return fmt.Errorf("recompute %s: %w", emp.ID, err)
			}
			result.Updated++
		}
		result.Scanned += len(batch)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.RecordNameSync(SyncPathRecompute, result.Updated)
	s.logger.InfoContext(ctx, "employee name recompute finished", "scanned", result.Scanned, "updated", result.Updated)
	return result, nil
}

// inBatches は filter に一致する社員を ID 昇順のキーセットページングで走査します。
// 進捗は最後に処理した ID で管理するため、途中で中断しても再開できます。
func (s *Service) inBatches(ctx context.Context, filter query.Expr, size int, fn func(context.Context, []*Employee) error) error {
	lastID := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		where := filter
		if lastID != "" {
			where = query.Join(query.Cond{Field: FieldID, Op: query.OpGt, Value: lastID}, filter)
		}

		var batch []*Employee
		if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			found, err := s.repo.Search(txCtx, where, SearchOptions{Limit: size, Order: OrderByID})
			if err != nil {
				return err
			}
			batch = found
			if len(found) == 0 {
				return nil
			}
			return fn(txCtx, found)
		}); err != nil {
			return err
		}

		if len(batch) == 0 {
			return nil
		}
		lastID = batch[len(batch)-1].ID
		s.logger.DebugContext(ctx, "processed employee batch", "size", len(batch), "last_id", lastID)

		if len(batch) < size {
			return nil
		}
	}
}

func validateNameParts(first, last, nick string) error {
	if first != strings.TrimSpace(first) {
		return ErrInvalidFirstName
	}
	if last != strings.TrimSpace(last) {
		return ErrInvalidLastName
	}
	if nick != strings.TrimSpace(nick) {
		return ErrInvalidNickName
	}
	return nil
}

func normalizeOptionalID(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
