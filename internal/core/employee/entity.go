package employee

import (
	"time"

	"github.com/ogurasousui/hr-employee-names/internal/core/nameformat"
)

// 検索条件で参照できるフィールド名です。
const (
	FieldID            = "id"
	FieldName          = "name"
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldNickName      = "nick_name"
	FieldNameFormat    = "name_format"
	FieldWorkContactID = "work_contact_id"
)

// Employee は社員エンティティです。
// Name は FirstName / LastName / NameFormat から合成され永続化されます。
type Employee struct {
	ID            string
	FirstName     string
	LastName      string
	NickName      string
	NameFormat    nameformat.Format
	Name          string
	WorkContactID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Field は query.Record を満たします。
func (e *Employee) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return e.ID, true
	case FieldName:
		return e.Name, true
	case FieldFirstName:
		return e.FirstName, true
	case FieldLastName:
		return e.LastName, true
	case FieldNickName:
		return e.NickName, true
	case FieldNameFormat:
		return string(e.NameFormat), true
	case FieldWorkContactID:
		if e.WorkContactID == nil {
			return "", true
		}
		return *e.WorkContactID, true
	default:
		return nil, false
	}
}

// NameMatch は氏名検索の結果です。
type NameMatch struct {
	ID          string
	DisplayName string
}
